package analyzer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rankscore/aeo-insight/internal/model"
	"github.com/rankscore/aeo-insight/internal/platform/errs"
	"github.com/rankscore/aeo-insight/internal/platform/requestid"
)

const defaultBatchConcurrency = 5

// Service orchestrates a ReportProvider and the optional collaborators around it.
type Service struct {
	provider    ReportProvider
	sinks       []ReportSink
	reader      ReportReader
	tips        TipGenerator
	leads       LeadCapturer
	concurrency int
	logger      *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithSinks registers sinks that receive every successful report.
func WithSinks(sinks ...ReportSink) Option {
	return func(s *Service) { s.sinks = append(s.sinks, sinks...) }
}

// WithReportReader enables report lookups.
func WithReportReader(r ReportReader) Option {
	return func(s *Service) { s.reader = r }
}

// WithTips enables the lite tips flow.
func WithTips(t TipGenerator) Option {
	return func(s *Service) { s.tips = t }
}

// WithLeads enables lead capture in the lite flow.
func WithLeads(l LeadCapturer) Option {
	return func(s *Service) { s.leads = l }
}

// WithBatchConcurrency sets the number of batch workers. Values below 1 are ignored.
func WithBatchConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// NewService creates a Service backed by the given provider.
func NewService(provider ReportProvider, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		provider:    provider,
		concurrency: defaultBatchConcurrency,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Analyze delegates to the provider, logs the outcome, and hands the report
// to every sink.
func (s *Service) Analyze(ctx context.Context, accountID, targetURL string) (*model.Report, error) {
	logger := s.logger.With("url", targetURL, requestid.Attr(ctx))

	report, err := s.provider.Analyze(ctx, targetURL)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = &errs.AppError{
				Kind:    errs.Timeout,
				Message: "Analysis timed out. The target URL may be slow to respond.",
				Cause:   err,
			}
		}

		attrs := []any{"error", err}
		var appErr *errs.AppError
		if errors.As(err, &appErr) {
			attrs = append(attrs, "kind", appErr.Kind.String())
			if appErr.UpstreamStatus != 0 {
				attrs = append(attrs, "target_status", appErr.UpstreamStatus)
			}
		}
		logger.Error("analysis failed", attrs...)
		return nil, err
	}

	logger.Info("analysis complete",
		"report_id", report.ID,
		"total_score", report.RankScore.TotalScore,
		"performance_score", report.Speed.PerformanceScore,
		"issues", len(report.Issues),
		"speed_degraded", report.Speed.Error != "",
	)

	for _, sink := range s.sinks {
		if err := sink.Save(ctx, accountID, report); err != nil {
			logger.Warn("report sink failed", "report_id", report.ID, "sink", fmt.Sprintf("%T", sink), "error", err)
		}
	}

	return report, nil
}

// Report returns a stored report by ID.
func (s *Service) Report(ctx context.Context, id string) (*model.Report, error) {
	if s.reader == nil {
		return nil, errHistoryDisabled
	}
	return s.reader.Get(ctx, id)
}

// Reports lists the most recent stored reports for targetURL.
func (s *Service) Reports(ctx context.Context, targetURL string, limit int) ([]model.Report, error) {
	if s.reader == nil {
		return nil, errHistoryDisabled
	}
	return s.reader.ListByURL(ctx, targetURL, limit)
}

var errHistoryDisabled = &errs.AppError{
	Kind:    errs.Unavailable,
	Message: "Report history is not enabled on this server.",
}
