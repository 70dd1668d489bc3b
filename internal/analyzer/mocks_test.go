package analyzer

import (
	"context"
	"errors"
	"sync"

	"github.com/rankscore/aeo-insight/internal/model"
	"github.com/rankscore/aeo-insight/internal/platform/errs"
)

var errUpstream = errors.New("upstream exploded")

// mockProvider implements ReportProvider for testing.
type mockProvider struct {
	report *model.Report
	err    error
}

func (m *mockProvider) Analyze(_ context.Context, targetURL string) (*model.Report, error) {
	if m.err != nil {
		return nil, m.err
	}
	r := *m.report
	r.URL = targetURL
	return &r, nil
}

// urlProvider fails for URLs listed in failures and succeeds otherwise.
type urlProvider struct {
	failures map[string]error
}

func (p *urlProvider) Analyze(_ context.Context, targetURL string) (*model.Report, error) {
	if err, ok := p.failures[targetURL]; ok {
		return nil, err
	}
	return &model.Report{ID: "id-" + targetURL, URL: targetURL}, nil
}

// deadlineProvider blocks until the context ends.
type deadlineProvider struct{}

func (deadlineProvider) Analyze(ctx context.Context, _ string) (*model.Report, error) {
	<-ctx.Done()
	return nil, &errs.AppError{Kind: errs.Unreachable, Message: "fetch failed", Cause: ctx.Err()}
}

// mockSink records saved reports.
type mockSink struct {
	mu       sync.Mutex
	saved    []string
	accounts []string
	err      error
}

func (m *mockSink) Save(_ context.Context, accountID string, r *model.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, r.ID)
	m.accounts = append(m.accounts, accountID)
	return m.err
}

// mockReader implements ReportReader for testing.
type mockReader struct {
	reports   map[string]*model.Report
	lastURL   string
	lastLimit int
}

func (m *mockReader) Get(_ context.Context, id string) (*model.Report, error) {
	r, ok := m.reports[id]
	if !ok {
		return nil, &errs.AppError{Kind: errs.NotFound, Message: "Report not found."}
	}
	return r, nil
}

func (m *mockReader) ListByURL(_ context.Context, targetURL string, limit int) ([]model.Report, error) {
	m.lastURL, m.lastLimit = targetURL, limit
	var out []model.Report
	for _, r := range m.reports {
		if r.URL == targetURL {
			out = append(out, *r)
		}
	}
	return out, nil
}

// mockTips implements TipGenerator for testing.
type mockTips struct {
	tips string
	err  error
}

func (m *mockTips) Generate(_ context.Context, _ string) (string, error) {
	return m.tips, m.err
}

// mockLeads implements LeadCapturer for testing.
type mockLeads struct {
	calls   int
	email   string
	name    string
	website string
	err     error
}

func (m *mockLeads) Subscribe(_ context.Context, email, name, website string) error {
	m.calls++
	m.email, m.name, m.website = email, name, website
	return m.err
}
