// Package leads subscribes lite-report visitors to a Mailchimp audience.
package leads

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rankscore/aeo-insight/internal/platform/config"
)

// Tag marks every lead captured by the lite flow.
const Tag = "RankScore Lite Leads"

// Mailchimp adds members to one audience through the Marketing API.
type Mailchimp struct {
	baseURL    string
	apiKey     string
	audienceID string
	httpClient *http.Client
}

// NewMailchimp builds a client for the data center named by cfg.ServerPrefix.
func NewMailchimp(cfg config.MailchimpConfig) *Mailchimp {
	return &Mailchimp{
		baseURL:    "https://" + cfg.ServerPrefix + ".api.mailchimp.com/3.0",
		apiKey:     cfg.APIKey,
		audienceID: cfg.AudienceID,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type memberRequest struct {
	EmailAddress string            `json:"email_address"`
	Status       string            `json:"status"`
	MergeFields  map[string]string `json:"merge_fields"`
	Tags         []string          `json:"tags"`
}

// Subscribe adds email to the audience with the visitor's name and website.
func (m *Mailchimp) Subscribe(ctx context.Context, email, name, website string) error {
	body, err := json.Marshal(memberRequest{
		EmailAddress: email,
		Status:       "subscribed",
		MergeFields:  map[string]string{"FNAME": name, "WEBSITE": website},
		Tags:         []string{Tag},
	})
	if err != nil {
		return fmt.Errorf("leads: marshal member: %w", err)
	}

	endpoint := m.baseURL + "/lists/" + url.PathEscape(m.audienceID) + "/members"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("leads: new request: %w", err)
	}
	req.SetBasicAuth("aeo-insight", m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("leads: send: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("leads: mailchimp error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}
	return nil
}
