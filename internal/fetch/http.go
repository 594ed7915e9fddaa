package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const userAgent = "Mozilla/5.0 (compatible; RivalScan/1.0; +https://rivalscan.io/bot)"

// HTTPFetcher fetches pages with a plain HTTP GET. It cannot execute
// JavaScript, so client-rendered pages come back thin.
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher constructs an HTTPFetcher with the given timeout.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPFetcher{
		client: &http.Client{Timeout: timeout},
	}
}

// Fetch retrieves the URL and extracts markdown and metadata from the HTML.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (Content, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Content{}, fmt.Errorf("build fetch request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return Content{}, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Content{}, fmt.Errorf("fetch %s: http status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return Content{}, fmt.Errorf("read %s: %w", url, err)
	}

	content, err := Extract(string(body))
	if err != nil {
		return Content{}, err
	}
	content.Metadata.FinalURL = resp.Request.URL.String()
	content.Metadata.Renderer = "http"
	content.Metadata.FetchMillis = time.Since(start).Milliseconds()
	return content, nil
}
