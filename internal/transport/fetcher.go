package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"stitcher/internal/config"
)

// Fetcher resolves a queued video reference to a local file.
type Fetcher interface {
	// Fetch downloads the video at url into dest, replacing any existing file.
	Fetch(ctx context.Context, url, dest string) error
}

// NewFetcher builds an HTTP Fetcher with the configured download timeout.
func NewFetcher(cfg *config.Config) Fetcher {
	timeout := time.Duration(cfg.Workflow.DownloadTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return &httpFetcher{client: &http.Client{Timeout: timeout}}
}

type httpFetcher struct {
	client *http.Client
}

func (f *httpFetcher) Fetch(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("fetch request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", url, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("fetch: create %s: %w", dest, err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		_ = out.Close()
		_ = os.Remove(dest)
		return fmt.Errorf("fetch: write %s: %w", dest, err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dest)
		return fmt.Errorf("fetch: close %s: %w", dest, err)
	}
	return nil
}
