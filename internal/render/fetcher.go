package render

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// Fetcher retrieves a remote media asset into a local file.
type Fetcher interface {
	// Fetch issues a GET request for url and streams the response body to
	// dest. Non-success statuses and transport failures surface as a
	// *RetrievalError. There is no retry at this layer: transient failures
	// propagate to the orchestrator, which aborts the render.
	Fetch(ctx context.Context, url, dest string) error
}

// HTTPFetcher is the production Fetcher backed by net/http.
type HTTPFetcher struct {
	client *http.Client
}

// FetcherOption configures an HTTPFetcher.
type FetcherOption func(*HTTPFetcher)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) FetcherOption {
	return func(f *HTTPFetcher) {
		f.client = c
	}
}

// NewHTTPFetcher creates a fetcher with a default 60 second client timeout.
// Per-fetch deadlines are controlled by the caller's context.
func NewHTTPFetcher(opts ...FetcherOption) *HTTPFetcher {
	f := &HTTPFetcher{
		client: &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch downloads url into dest, creating exactly one file per call.
func (f *HTTPFetcher) Fetch(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &RetrievalError{URL: url, Err: err}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return &RetrievalError{URL: url, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &RetrievalError{URL: url, StatusCode: resp.StatusCode}
	}

	out, err := os.Create(dest) // #nosec G304 - dest is inside the job's workspace
	if err != nil {
		return fmt.Errorf("create asset file: %w", err)
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		_ = out.Close()
		_ = os.Remove(dest)
		return &RetrievalError{URL: url, Err: err}
	}

	if err := out.Close(); err != nil {
		_ = os.Remove(dest)
		return fmt.Errorf("close asset file: %w", err)
	}

	return nil
}
