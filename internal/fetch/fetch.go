// Package fetch retrieves rendered page content with a browser-rendering
// variant and a plain-HTTP fallback exposing the same shape.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rivalscan-backend/internal/shared/telemetry"
)

// DefaultTimeout bounds a single page fetch.
const DefaultTimeout = 15 * time.Second

// Metadata describes how a page was fetched.
type Metadata struct {
	FinalURL    string `json:"finalUrl"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Renderer    string `json:"renderer"`
	FetchMillis int64  `json:"fetchMillis"`
}

// Content is the rendered content of a single page.
type Content struct {
	Markdown string   `json:"markdown"`
	HTML     string   `json:"html"`
	Metadata Metadata `json:"metadata"`
}

// Fetcher fetches rendered content for a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (Content, error)
}

// ErrEmptyPage is returned when a fetch succeeds but yields no usable content.
var ErrEmptyPage = errors.New("page has no usable content")

// Fallback tries the rich fetcher first and falls back to the plain one.
type Fallback struct {
	Rich  Fetcher
	Plain Fetcher
}

// NewFallback builds a Fallback. Rich may be nil when browser rendering is not
// configured.
func NewFallback(rich, plain Fetcher) *Fallback {
	return &Fallback{Rich: rich, Plain: plain}
}

// Fetch returns rich content when available, plain content otherwise.
func (f *Fallback) Fetch(ctx context.Context, url string) (Content, error) {
	if f.Rich != nil {
		content, err := f.Rich.Fetch(ctx, url)
		if err == nil {
			return content, nil
		}
		telemetry.Warn("fetch.rich_failed", map[string]any{
			"url":   url,
			"error": err.Error(),
		})
	}
	if f.Plain == nil {
		return Content{}, fmt.Errorf("no fetcher configured")
	}
	return f.Plain.Fetch(ctx, url)
}
