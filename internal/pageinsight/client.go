package pageinsight

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Fetcher defines how the engine retrieves raw HTML.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (body io.ReadCloser, statusCode int, err error)
}

// Prober measures how long a server takes to start answering.
type Prober interface {
	Probe(ctx context.Context, url string) (time.Duration, error)
}

// limitedReadCloser reads from a LimitReader but closes the original body.
type limitedReadCloser struct {
	io.Reader
	io.Closer
}

// HTTPClient implements Fetcher and Prober over net/http. The probe and the
// content fetch use separate clients so each carries its own timeout.
type HTTPClient struct {
	client *http.Client
	probe  *http.Client
}

const (
	maxRedirects    = 5
	maxResponseBody = 10 << 20
	userAgent       = "AEOInsightBot/1.0"
)

var (
	errTooManyRedirects = errors.New("too many redirects")
	errBlockedRedirect  = errors.New("redirect to non-http(s) scheme blocked")
	errProbeStatus      = errors.New("probe returned non-success status")
)

// NewHTTPClient returns an HTTPClient whose probe and content fetch time out
// after probeTimeout and fetchTimeout respectively. Both share a transport
// that blocks connections to private/reserved IP ranges, and both validate
// redirects to prevent SSRF via redirect chains.
func NewHTTPClient(probeTimeout, fetchTimeout time.Duration) *HTTPClient {
	transport := &http.Transport{
		DialContext:         safeDialer().DialContext,
		MaxConnsPerHost:     10,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}

	return &HTTPClient{
		client: &http.Client{
			Timeout:       fetchTimeout,
			Transport:     transport,
			CheckRedirect: safeRedirectPolicy,
		},
		probe: &http.Client{
			Timeout:       probeTimeout,
			Transport:     transport,
			CheckRedirect: safeRedirectPolicy,
		},
	}
}

// safeRedirectPolicy validates redirect targets and limits the redirect chain length.
func safeRedirectPolicy(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return fmt.Errorf("%w: stopped after %d", errTooManyRedirects, maxRedirects)
	}
	if req.URL.Scheme != "http" && req.URL.Scheme != "https" {
		return fmt.Errorf("%w: %s", errBlockedRedirect, req.URL.Scheme)
	}
	return nil
}

// isSuccess reports whether status is 2xx. Redirects that were not followed
// and informational responses carry no page to analyze.
func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

func newRequest(ctx context.Context, targetURL string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html")
	return req, nil
}

// Fetch retrieves the page at the given URL and returns its body, capped at 10 MiB.
func (c *HTTPClient) Fetch(ctx context.Context, targetURL string) (io.ReadCloser, int, error) {
	req, err := newRequest(ctx, targetURL)
	if err != nil {
		return nil, 0, err
	}

	resp, err := c.client.Do(req) //nolint:bodyclose // body is returned to caller via limitedReadCloser
	if err != nil {
		return nil, 0, err
	}

	limited := &limitedReadCloser{
		Reader: io.LimitReader(resp.Body, maxResponseBody),
		Closer: resp.Body,
	}

	return limited, resp.StatusCode, nil
}

// Probe issues a GET and returns the elapsed time until response headers
// arrived. The body is discarded unread.
func (c *HTTPClient) Probe(ctx context.Context, targetURL string) (time.Duration, error) {
	req, err := newRequest(ctx, targetURL)
	if err != nil {
		return 0, err
	}

	start := time.Now()
	resp, err := c.probe.Do(req)
	if err != nil {
		return 0, err
	}
	elapsed := time.Since(start)
	_ = resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return 0, fmt.Errorf("%w: %d", errProbeStatus, resp.StatusCode)
	}
	return elapsed, nil
}
