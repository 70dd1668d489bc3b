package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/rankscore/aeo-insight/internal/model"
	"github.com/rankscore/aeo-insight/internal/platform/errs"
)

const (
	analyzeTimeout  = 60 * time.Second
	batchTimeout    = 5 * time.Minute
	liteTimeout     = 30 * time.Second
	maxRequestBody  = 1 << 20 // 1 MB
	accountIDHeader = "X-Account-ID"
)

var (
	errURLRequired  = errors.New("the \"url\" field is required")
	errURLsRequired = errors.New("the \"urls\" field must contain at least one URL")
	errTooManyURLs  = fmt.Errorf("at most %d URLs may be analyzed per batch", MaxBatchURLs)
)

// Transport handles HTTP requests for page analysis.
type Transport struct {
	service *Service
	logger  *slog.Logger
}

// NewTransport creates an HTTP transport backed by the given service.
func NewTransport(service *Service, logger *slog.Logger) *Transport {
	return &Transport{service: service, logger: logger}
}

// RegisterRoutes attaches the transport's handlers to the given mux.
func (t *Transport) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", t.handleHealth)
	mux.HandleFunc("POST /analyze", t.handleAnalyze)
	mux.HandleFunc("POST /analyze/batch", t.handleBatch)
	mux.HandleFunc("GET /reports/{id}", t.handleGetReport)
	mux.HandleFunc("GET /reports", t.handleListReports)
	mux.HandleFunc("POST /lite", t.handleLite)
}

type analyzeRequest struct {
	URL string `json:"url"`
}

func (r analyzeRequest) validate() error {
	if r.URL == "" {
		return errURLRequired
	}
	return nil
}

type batchRequest struct {
	URLs []string `json:"urls"`
}

func (r batchRequest) validate() error {
	if len(r.URLs) == 0 {
		return errURLsRequired
	}
	if len(r.URLs) > MaxBatchURLs {
		return errTooManyURLs
	}
	return nil
}

type batchEntry struct {
	URL    string               `json:"url"`
	Report *model.Report        `json:"report,omitempty"`
	Error  *model.ErrorResponse `json:"error,omitempty"`
}

type batchResponse struct {
	Results []batchEntry `json:"results"`
}

type liteRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	URL   string `json:"url"`
}

type liteResponse struct {
	Tips string `json:"tips"`
}

type listResponse struct {
	Reports []model.Report `json:"reports"`
}

func (t *Transport) handleHealth(w http.ResponseWriter, _ *http.Request) {
	t.renderJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (t *Transport) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !t.decode(w, r, &req, "Invalid request body. Please send a JSON object with a \"url\" field.") {
		return
	}

	if err := req.validate(); err != nil {
		t.renderError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), analyzeTimeout)
	defer cancel()

	report, err := t.service.Analyze(ctx, r.Header.Get(accountIDHeader), req.URL)
	if err != nil {
		t.handleServiceError(w, err)
		return
	}

	t.renderJSON(w, http.StatusOK, report)
}

func (t *Transport) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if !t.decode(w, r, &req, "Invalid request body. Please send a JSON object with a \"urls\" array.") {
		return
	}

	if err := req.validate(); err != nil {
		t.renderError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), batchTimeout)
	defer cancel()

	results := t.service.AnalyzeBatch(ctx, r.Header.Get(accountIDHeader), req.URLs)

	resp := batchResponse{Results: make([]batchEntry, len(results))}
	for i, res := range results {
		entry := batchEntry{URL: res.URL, Report: res.Report}
		if res.Err != nil {
			status, msg := statusFor(res.Err)
			entry.Error = &model.ErrorResponse{Error: http.StatusText(status), StatusCode: status, Message: msg}
		}
		resp.Results[i] = entry
	}

	t.renderJSON(w, http.StatusOK, resp)
}

func (t *Transport) handleGetReport(w http.ResponseWriter, r *http.Request) {
	report, err := t.service.Report(r.Context(), r.PathValue("id"))
	if err != nil {
		t.handleServiceError(w, err)
		return
	}
	t.renderJSON(w, http.StatusOK, report)
}

func (t *Transport) handleListReports(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	target := q.Get("url")
	if target == "" {
		t.renderError(w, http.StatusBadRequest, errURLRequired.Error())
		return
	}

	var limit int
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			t.renderError(w, http.StatusBadRequest, "The \"limit\" parameter must be a positive integer.")
			return
		}
		limit = n
	}

	reports, err := t.service.Reports(r.Context(), target, limit)
	if err != nil {
		t.handleServiceError(w, err)
		return
	}
	if reports == nil {
		reports = []model.Report{}
	}
	t.renderJSON(w, http.StatusOK, listResponse{Reports: reports})
}

func (t *Transport) handleLite(w http.ResponseWriter, r *http.Request) {
	var req liteRequest
	if !t.decode(w, r, &req, "Invalid request body. Please send a JSON object with \"email\" and \"url\" fields.") {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), liteTimeout)
	defer cancel()

	tips, err := t.service.Lite(ctx, LiteRequest(req))
	if err != nil {
		t.handleServiceError(w, err)
		return
	}
	t.renderJSON(w, http.StatusOK, liteResponse{Tips: tips})
}

// decode reads a size-limited JSON body into dst, rendering a 400 on failure.
func (t *Transport) decode(w http.ResponseWriter, r *http.Request, dst any, msg string) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		t.renderError(w, http.StatusBadRequest, msg)
		return false
	}
	return true
}

// statusFor maps an error to its HTTP status and user-facing message.
func statusFor(err error) (int, string) {
	var appErr *errs.AppError
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError, "An unexpected error occurred."
	}

	switch appErr.Kind {
	case errs.InvalidInput:
		return http.StatusBadRequest, appErr.Message
	case errs.Unreachable:
		return http.StatusBadGateway, appErr.Message
	case errs.Timeout:
		return http.StatusGatewayTimeout, appErr.Message
	case errs.NotFound:
		return http.StatusNotFound, appErr.Message
	case errs.Unavailable:
		return http.StatusServiceUnavailable, appErr.Message
	case errs.DegradedSpeedProbe, errs.Unknown:
		return http.StatusInternalServerError, appErr.Message
	}
	return http.StatusInternalServerError, appErr.Message
}

func (t *Transport) handleServiceError(w http.ResponseWriter, err error) {
	status, msg := statusFor(err)
	t.renderError(w, status, msg)
}

func (t *Transport) renderJSON(w http.ResponseWriter, status int, data any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		t.logger.Error("failed to encode response", "error", err)
		http.Error(w, `{"error":"Internal Server Error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (t *Transport) renderError(w http.ResponseWriter, status int, message string) {
	t.renderJSON(w, status, model.ErrorResponse{
		Error:      http.StatusText(status),
		StatusCode: status,
		Message:    message,
	})
}
