// Package source fetches raw event payloads and decodes them into records.
package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"
)

// maxPayloadBytes bounds how much of a response body is read.
const maxPayloadBytes = 256 << 20

// Fetcher retrieves one raw payload.
type Fetcher interface {
	// Name identifies the source in logs and errors.
	Name() string
	Fetch(ctx context.Context) ([]byte, error)
}

// ForLocation returns an HTTPFetcher for http(s) URLs and a FileFetcher for
// anything else.
func ForLocation(location string, timeout time.Duration, logger *slog.Logger) Fetcher {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return NewHTTPFetcher(location, timeout, logger)
	}
	return FileFetcher{Path: location}
}

// FileFetcher reads a payload from the local filesystem.
type FileFetcher struct {
	Path string
}

func (f FileFetcher) Name() string { return f.Path }

func (f FileFetcher) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return b, nil
}

// HTTPFetcher downloads a payload with a GET request.
type HTTPFetcher struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewHTTPFetcher creates a fetcher whose requests time out after timeout.
func NewHTTPFetcher(url string, timeout time.Duration, logger *slog.Logger) *HTTPFetcher {
	return &HTTPFetcher{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

func (f *HTTPFetcher) Name() string { return f.url }

// Fetch returns the response body. Any status other than 2xx is an error.
func (f *HTTPFetcher) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/geo+json, application/json")

	start := time.Now()
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	f.logger.Debug("payload fetched", "url", f.url, "bytes", len(b), "duration", time.Since(start))
	return b, nil
}
