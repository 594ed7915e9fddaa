package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// ChromeFetcher renders pages in headless Chrome so client-rendered content is
// visible to the scorers.
type ChromeFetcher struct {
	chromePath string
	timeout    time.Duration
}

// NewChromeFetcher constructs a ChromeFetcher. chromePath may be empty to
// auto-detect the binary.
func NewChromeFetcher(chromePath string, timeout time.Duration) *ChromeFetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &ChromeFetcher{chromePath: chromePath, timeout: timeout}
}

// Fetch navigates to the URL in headless Chrome and extracts content from the
// rendered DOM.
func (f *ChromeFetcher) Fetch(ctx context.Context, url string) (Content, error) {
	start := time.Now()

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoDefaultBrowserCheck,
		chromedp.NoFirstRun,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.UserAgent(userAgent),
		chromedp.WindowSize(1366, 900),
	)
	if f.chromePath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(f.chromePath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer allocCancel()

	// Browser startup plus render need headroom beyond the page fetch itself.
	runCtx, cancel := context.WithTimeout(allocCtx, f.timeout*2)
	defer cancel()

	runCtx, browserCancel := chromedp.NewContext(runCtx)
	defer browserCancel()

	var html, finalURL string
	err := chromedp.Run(runCtx,
		network.Enable(),
		network.SetExtraHTTPHeaders(network.Headers{"Accept-Language": "en-US,en;q=0.9"}),
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(500*time.Millisecond),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
		chromedp.Location(&finalURL),
	)
	if err != nil {
		return Content{}, fmt.Errorf("browser fetch %s: %w", url, err)
	}

	content, err := Extract(html)
	if err != nil {
		return Content{}, err
	}
	content.Metadata.FinalURL = finalURL
	content.Metadata.Renderer = "chrome"
	content.Metadata.FetchMillis = time.Since(start).Milliseconds()
	return content, nil
}
