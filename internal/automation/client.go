// Package automation provides the HTTP client for the external
// AI-workflow engine. The engine performs the actual generation work
// (script writing, image/video/audio synthesis) and returns asset URLs;
// this service only proxies requests to it.
package automation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Static errors for automation client operations.
var (
	// ErrWebhookURLRequired is returned when the webhook URL is not provided.
	ErrWebhookURLRequired = errors.New("automation: webhook URL is required")
	// ErrActionRequired is returned when the action name is not provided.
	ErrActionRequired = errors.New("automation: action is required")
	// ErrServerError is returned when the engine returns a 5xx status code.
	ErrServerError = errors.New("automation: server error")
	// ErrRateLimited is returned when the engine returns a 429 status code.
	ErrRateLimited = errors.New("automation: rate limited")
	// ErrRequestFailed is returned when the request fails with a non-2xx status code.
	ErrRequestFailed = errors.New("automation: request failed")
)

// Client defines the interface for triggering workflow-engine actions.
type Client interface {
	// Trigger posts an action with its payload to the engine and returns
	// the raw JSON result.
	Trigger(ctx context.Context, action string, payload map[string]any) (json.RawMessage, error)
}

// HTTPClient is the HTTP implementation of the automation Client interface.
type HTTPClient struct {
	webhookURL  string
	apiKey      string
	httpClient  *http.Client
	maxRetries  int
	baseBackoff time.Duration
}

// ClientOption is a function that configures an HTTPClient.
type ClientOption func(*HTTPClient)

// WithAPIKey sets the API key sent with each request.
func WithAPIKey(key string) ClientOption {
	return func(hc *HTTPClient) {
		hc.apiKey = key
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(hc *HTTPClient) {
		hc.httpClient = c
	}
}

// WithMaxRetries sets the maximum number of retries for transient failures.
func WithMaxRetries(n int) ClientOption {
	return func(hc *HTTPClient) {
		hc.maxRetries = n
	}
}

// WithBaseBackoff sets the initial backoff duration for retries.
func WithBaseBackoff(d time.Duration) ClientOption {
	return func(hc *HTTPClient) {
		hc.baseBackoff = d
	}
}

// NewClient creates a new automation HTTP client pointed at the engine's
// webhook URL.
func NewClient(webhookURL string, opts ...ClientOption) (*HTTPClient, error) {
	if webhookURL == "" {
		return nil, ErrWebhookURLRequired
	}

	c := &HTTPClient{
		webhookURL:  webhookURL,
		httpClient:  &http.Client{Timeout: 120 * time.Second},
		maxRetries:  3,
		baseBackoff: 1 * time.Second,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// triggerRequest is the wire format sent to the engine.
type triggerRequest struct {
	Action  string         `json:"action"`
	Payload map[string]any `json:"payload,omitempty"`
}

// Trigger posts the action to the webhook and returns the raw JSON body.
// 429 and 5xx responses are retried with exponential backoff; anything
// else fails immediately.
func (c *HTTPClient) Trigger(ctx context.Context, action string, payload map[string]any) (json.RawMessage, error) {
	if action == "" {
		return nil, ErrActionRequired
	}

	body, err := json.Marshal(triggerRequest{Action: action, Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("automation: marshal request: %w", err)
	}

	var lastErr error
	backoff := c.baseBackoff

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("automation: context cancelled: %w", ctx.Err())
			case <-time.After(backoff):
				backoff *= 2 // Exponential backoff
			}
		}

		result, err := c.doRequest(ctx, body)
		if err == nil {
			return result, nil
		}

		if !isRetryable(err) {
			return nil, err
		}

		lastErr = err
	}

	return nil, fmt.Errorf("automation: max retries exceeded: %w", lastErr)
}

// doRequest performs a single HTTP request to the webhook.
func (c *HTTPClient) doRequest(ctx context.Context, body []byte) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("automation: create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("automation: request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("automation: read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: %s", ErrRateLimited, respBody)
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: status %d: %s", ErrServerError, resp.StatusCode, respBody)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("%w: status %d: %s", ErrRequestFailed, resp.StatusCode, respBody)
	}

	return json.RawMessage(respBody), nil
}

// isRetryable reports whether a request should be retried.
func isRetryable(err error) bool {
	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrServerError)
}
