// Package tips asks an OpenAI-compatible chat completions API for quick AEO
// improvement ideas.
package tips

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rankscore/aeo-insight/internal/platform/config"
)

const promptTemplate = "Analyze %s for quick Answer Engine Optimization wins. " +
	"Provide 3 simple improvements (e.g., meta tags, load speed) in a concise bulleted list."

var (
	errMisconfigured = errors.New("tips: client misconfigured")
	errNoChoices     = errors.New("tips: response contained no choices")
)

// Client implements text generation over a chat completions endpoint.
type Client struct {
	endpoint   string
	model      string
	apiKey     string
	httpClient *http.Client
}

// NewClient builds a Client from configuration.
func NewClient(cfg config.TipsConfig) *Client {
	return &Client{
		endpoint: cfg.Endpoint,
		model:    cfg.Model,
		apiKey:   cfg.APIKey,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Prompt returns the user message sent for targetURL.
func Prompt(targetURL string) string {
	return fmt.Sprintf(promptTemplate, targetURL)
}

// Generate returns free-form improvement tips for targetURL.
func (c *Client) Generate(ctx context.Context, targetURL string) (string, error) {
	if c.apiKey == "" || c.endpoint == "" || c.model == "" {
		return "", errMisconfigured
	}

	body, err := json.Marshal(chatRequest{
		Model:    c.model,
		Messages: []chatMessage{{Role: "user", Content: Prompt(targetURL)}},
	})
	if err != nil {
		return "", fmt.Errorf("tips: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("tips: new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("tips: send: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("tips: upstream error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("tips: decode response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", errNoChoices
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}
