package pageinsight

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/rankscore/aeo-insight/internal/model"
	"github.com/rankscore/aeo-insight/internal/platform/errs"
)

const invalidURLMessage = "Invalid URL format. Please ensure you entered a valid URL (e.g., https://example.com)."

// PageSnapshot is a fetched page. FetchDuration covers the request and the
// full body read.
type PageSnapshot struct {
	URL           string
	HTML          string
	FetchedAt     time.Time
	FetchDuration time.Duration
}

// Engine runs the full pipeline for a single URL: fetch, parse, analyze,
// estimate speed, score, and prioritize.
type Engine struct {
	fetcher Fetcher
	speed   *SpeedEstimator
}

// NewEngine returns an Engine that fetches pages with fetcher and times them with prober.
func NewEngine(fetcher Fetcher, prober Prober, logger *slog.Logger) *Engine {
	return &Engine{
		fetcher: fetcher,
		speed:   NewSpeedEstimator(prober, logger),
	}
}

// Analyze produces a complete report for targetURL, or a single error when
// the URL is invalid or the page cannot be fetched.
func (e *Engine) Analyze(ctx context.Context, targetURL string) (*model.Report, error) {
	if err := ValidateURL(targetURL); err != nil {
		return nil, err
	}

	snap, err := e.snapshot(ctx, targetURL)
	if err != nil {
		return nil, err
	}

	doc := ParseDocument(snap.HTML)
	findings := AnalyzeMarkup(doc)
	speed := e.speed.Estimate(ctx, targetURL, doc, snap.FetchDuration)

	return &model.Report{
		ID:         uuid.NewString(),
		URL:        targetURL,
		AnalyzedAt: snap.FetchedAt,
		RankScore:  Score(findings, speed),
		Issues:     Prioritize(findings, speed),
		Findings:   findings,
		Speed:      speed,
	}, nil
}

// ValidateURL accepts absolute http and https URLs only.
func ValidateURL(targetURL string) error {
	parsed, err := url.Parse(targetURL)
	if err != nil {
		return &errs.AppError{Kind: errs.InvalidInput, Message: invalidURLMessage, Cause: err}
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return &errs.AppError{Kind: errs.InvalidInput, Message: invalidURLMessage}
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return &errs.AppError{Kind: errs.InvalidInput, Message: "Only http and https URLs are supported."}
	}
	return nil
}

func (e *Engine) snapshot(ctx context.Context, targetURL string) (*PageSnapshot, error) {
	start := time.Now()

	body, statusCode, err := e.fetcher.Fetch(ctx, targetURL)
	if err != nil {
		return nil, &errs.AppError{
			Kind:    errs.Unreachable,
			Message: "The provided URL could not be reached. Check the address.",
			Cause:   err,
		}
	}
	defer func() { _ = body.Close() }()

	if !isSuccess(statusCode) {
		return nil, &errs.AppError{
			Kind:           errs.Unreachable,
			UpstreamStatus: statusCode,
			Message:        "The provided URL returned a non-success status.",
		}
	}

	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, &errs.AppError{
			Kind:    errs.Unreachable,
			Message: "The page body could not be read.",
			Cause:   err,
		}
	}

	return &PageSnapshot{
		URL:           targetURL,
		HTML:          string(raw),
		FetchedAt:     start.UTC(),
		FetchDuration: time.Since(start),
	}, nil
}
