package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rankscore/aeo-insight/internal/model"
	"github.com/rankscore/aeo-insight/internal/platform/errs"
)

func newTestMux(provider ReportProvider, opts ...Option) *http.ServeMux {
	logger := discardLogger()
	svc := NewService(provider, logger, opts...)
	transport := NewTransport(svc, logger)
	mux := http.NewServeMux()
	transport.RegisterRoutes(mux)
	return mux
}

func doJSON(mux http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	rec := doJSON(newTestMux(&mockProvider{}), http.MethodGet, "/healthz", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestHandleAnalyze_Success(t *testing.T) {
	sink := &mockSink{}
	provider := &mockProvider{
		report: &model.Report{
			ID:        "r1",
			RankScore: model.RankScore{TotalScore: 55},
			Issues:    []model.Issue{{Type: "Missing FAQ Schema", Priority: 2, Effort: model.EffortMedium}},
		},
	}
	mux := newTestMux(provider, WithSinks(sink))

	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(`{"url": "https://example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(accountIDHeader, "acct-9")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var result model.Report
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result.URL != "https://example.com" || result.RankScore.TotalScore != 55 {
		t.Errorf("report = %+v", result)
	}
	if len(sink.accounts) != 1 || sink.accounts[0] != "acct-9" {
		t.Errorf("sink accounts = %v, want [acct-9]", sink.accounts)
	}
}

func TestHandleAnalyze_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "empty url", body: `{"url": ""}`},
		{name: "missing body", body: ``},
		{name: "malformed json", body: `{invalid json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(newTestMux(&mockProvider{}), http.MethodPost, "/analyze", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestHandleAnalyze_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "invalid input", err: &errs.AppError{Kind: errs.InvalidInput, Message: "bad url"}, want: http.StatusBadRequest},
		{name: "unreachable", err: &errs.AppError{Kind: errs.Unreachable, Message: "cannot reach", UpstreamStatus: 404}, want: http.StatusBadGateway},
		{name: "timeout", err: &errs.AppError{Kind: errs.Timeout, Message: "too slow", Cause: context.DeadlineExceeded}, want: http.StatusGatewayTimeout},
		{name: "unknown kind", err: &errs.AppError{Kind: errs.Unknown, Message: "?"}, want: http.StatusInternalServerError},
		{name: "plain error", err: errUpstream, want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(newTestMux(&mockProvider{err: tt.err}), http.MethodPost, "/analyze", `{"url": "https://example.com"}`)

			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}

			var resp model.ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode error: %v", err)
			}
			if resp.StatusCode != tt.want || resp.Error != http.StatusText(tt.want) {
				t.Errorf("error body = %+v", resp)
			}
		})
	}
}

func TestHandleAnalyze_WrongMethod(t *testing.T) {
	rec := doJSON(newTestMux(&mockProvider{}), http.MethodGet, "/analyze", "")

	// ServeMux returns 405 for method mismatch.
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}

func TestHandleBatch(t *testing.T) {
	provider := &urlProvider{failures: map[string]error{
		"https://down.example.com": &errs.AppError{Kind: errs.Unreachable, Message: "cannot reach"},
	}}
	mux := newTestMux(provider)

	body := `{"urls": ["https://a.example.com", "https://down.example.com", "https://b.example.com"]}`
	rec := doJSON(mux, http.MethodPost, "/analyze/batch", body)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var resp batchResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Results) != 3 {
		t.Fatalf("got %d results, want 3", len(resp.Results))
	}
	if resp.Results[0].Report == nil || resp.Results[0].URL != "https://a.example.com" {
		t.Errorf("results[0] = %+v", resp.Results[0])
	}
	if resp.Results[1].Report != nil || resp.Results[1].Error == nil || resp.Results[1].Error.StatusCode != http.StatusBadGateway {
		t.Errorf("results[1] = %+v", resp.Results[1])
	}
	if resp.Results[2].Report == nil || resp.Results[2].Error != nil {
		t.Errorf("results[2] = %+v", resp.Results[2])
	}
}

func TestHandleBatch_Limits(t *testing.T) {
	urls := make([]string, MaxBatchURLs+1)
	for i := range urls {
		urls[i] = fmt.Sprintf("%q", fmt.Sprintf("https://example.com/%d", i))
	}

	tests := []struct {
		name string
		body string
	}{
		{name: "empty list", body: `{"urls": []}`},
		{name: "missing field", body: `{}`},
		{name: "too many", body: `{"urls": [` + strings.Join(urls, ",") + `]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(newTestMux(&urlProvider{}), http.MethodPost, "/analyze/batch", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestHandleGetReport(t *testing.T) {
	reader := &mockReader{reports: map[string]*model.Report{
		"r1": {ID: "r1", URL: "https://example.com"},
	}}
	mux := newTestMux(&urlProvider{}, WithReportReader(reader))

	rec := doJSON(mux, http.MethodGet, "/reports/r1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	rec = doJSON(mux, http.MethodGet, "/reports/missing", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestHandleGetReport_HistoryDisabled(t *testing.T) {
	rec := doJSON(newTestMux(&urlProvider{}), http.MethodGet, "/reports/r1", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestHandleListReports(t *testing.T) {
	reader := &mockReader{reports: map[string]*model.Report{
		"r1": {ID: "r1", URL: "https://example.com"},
		"r2": {ID: "r2", URL: "https://other.com"},
	}}
	mux := newTestMux(&urlProvider{}, WithReportReader(reader))

	rec := doJSON(mux, http.MethodGet, "/reports?url=https://example.com&limit=5", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var resp listResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Reports) != 1 || resp.Reports[0].ID != "r1" {
		t.Errorf("reports = %+v", resp.Reports)
	}
	if reader.lastLimit != 5 {
		t.Errorf("limit = %d, want 5", reader.lastLimit)
	}

	for _, target := range []string{"/reports", "/reports?url=https://example.com&limit=zero", "/reports?url=x&limit=-1"} {
		if rec := doJSON(mux, http.MethodGet, target, ""); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want %d", target, rec.Code, http.StatusBadRequest)
		}
	}
}

func TestHandleLite(t *testing.T) {
	leads := &mockLeads{}
	mux := newTestMux(&urlProvider{}, WithTips(&mockTips{tips: "- add FAQ schema"}), WithLeads(leads))

	rec := doJSON(mux, http.MethodPost, "/lite", `{"email":"ada@example.com","name":"Ada","url":"https://example.com"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var resp liteResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Tips != "- add FAQ schema" {
		t.Errorf("tips = %q", resp.Tips)
	}
	if leads.email != "ada@example.com" || leads.name != "Ada" || leads.website != "https://example.com" {
		t.Errorf("lead = %+v", leads)
	}
}

func TestHandleLite_Errors(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
		body string
		want int
	}{
		{name: "missing email", opts: []Option{WithTips(&mockTips{})}, body: `{"url":"https://example.com"}`, want: http.StatusBadRequest},
		{name: "malformed", opts: []Option{WithTips(&mockTips{})}, body: `{`, want: http.StatusBadRequest},
		{name: "not configured", body: `{"email":"a@b.c","url":"https://example.com"}`, want: http.StatusServiceUnavailable},
		{name: "tips failure", opts: []Option{WithTips(&mockTips{err: errUpstream})}, body: `{"email":"a@b.c","url":"https://example.com"}`, want: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(newTestMux(&urlProvider{}, tt.opts...), http.MethodPost, "/lite", tt.body)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}
