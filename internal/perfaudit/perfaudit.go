// Package perfaudit abstracts page-performance audit providers.
package perfaudit

import (
	"context"
	"errors"
)

// Report is the normalized output of a performance audit.
type Report struct {
	PerformanceScore   int `json:"performanceScore"`
	SEOScore           int `json:"seoScore"`
	AccessibilityScore int `json:"accessibilityScore"`
	BestPracticesScore int `json:"bestPracticesScore"`

	CoreWebVitals CoreWebVitals `json:"coreWebVitals"`
	Opportunities []string      `json:"opportunities,omitempty"`
}

// CoreWebVitals holds the lab measurements relevant to scoring.
type CoreWebVitals struct {
	LCPMillis float64 `json:"lcpMillis"`
	CLS       float64 `json:"cls"`
	TBTMillis float64 `json:"tbtMillis"`
}

// Client abstracts a performance-audit capability.
type Client interface {
	Available() bool
	Analyze(ctx context.Context, url string) (Report, error)
}

// ErrUnavailable is returned when the provider is not configured.
var ErrUnavailable = errors.New("performance audit unavailable")

// Unavailable is the client used when no provider is configured.
type Unavailable struct{}

func (Unavailable) Available() bool { return false }

func (Unavailable) Analyze(context.Context, string) (Report, error) {
	return Report{}, ErrUnavailable
}
