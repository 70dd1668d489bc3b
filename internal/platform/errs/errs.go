package errs

import "fmt"

// Kind categorizes application errors for HTTP status mapping.
type Kind int

const (
	// Unknown represents an unclassified error.
	Unknown Kind = iota
	// InvalidInput indicates the URL or request was malformed (HTTP 400).
	InvalidInput
	// Unreachable indicates the target page could not be fetched (HTTP 502).
	Unreachable
	// Timeout indicates the analysis ran past its deadline (HTTP 504).
	Timeout
	// DegradedSpeedProbe marks a failed timing probe. It is logged and
	// recorded on the speed metrics but never returned to callers.
	DegradedSpeedProbe
	// NotFound indicates a stored report does not exist (HTTP 404).
	NotFound
	// Unavailable indicates an optional collaborator is not configured (HTTP 503).
	Unavailable
)

func (k Kind) String() string {
	switch k {
	case InvalidInput:
		return "invalid_input"
	case Unreachable:
		return "unreachable"
	case Timeout:
		return "timeout"
	case DegradedSpeedProbe:
		return "degraded_speed_probe"
	case NotFound:
		return "not_found"
	case Unavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// AppError carries a category, user message, and original cause.
type AppError struct {
	Kind           Kind
	UpstreamStatus int // HTTP status code returned by the target page
	Message        string
	Cause          error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}
