package analyzer

import (
	"context"

	"github.com/rankscore/aeo-insight/internal/model"
)

// ReportProvider defines the contract for any analysis engine.
type ReportProvider interface {
	Analyze(ctx context.Context, targetURL string) (*model.Report, error)
}

// ReportSink receives every successful report. Sink failures never fail the analysis.
type ReportSink interface {
	Save(ctx context.Context, accountID string, r *model.Report) error
}

// ReportReader looks up previously stored reports.
type ReportReader interface {
	Get(ctx context.Context, id string) (*model.Report, error)
	ListByURL(ctx context.Context, targetURL string, limit int) ([]model.Report, error)
}

// TipGenerator produces free-form improvement tips for a URL.
type TipGenerator interface {
	Generate(ctx context.Context, targetURL string) (string, error)
}

// LeadCapturer records a visitor on a mailing list.
type LeadCapturer interface {
	Subscribe(ctx context.Context, email, name, website string) error
}
