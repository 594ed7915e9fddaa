// Package pagespeed implements perfaudit.Client against the PageSpeed
// Insights API.
package pagespeed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"rivalscan-backend/internal/perfaudit"
	"rivalscan-backend/internal/shared/metrics"
)

const defaultBaseURL = "https://www.googleapis.com/pagespeedonline/v5/runPagespeed"

// Client calls the PageSpeed Insights API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a PageSpeed client. An empty key yields an unavailable
// client.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Available reports whether an API key is configured.
func (c *Client) Available() bool {
	return strings.TrimSpace(c.apiKey) != ""
}

type lighthouseResponse struct {
	LighthouseResult struct {
		Categories map[string]struct {
			Score float64 `json:"score"`
		} `json:"categories"`
		Audits map[string]struct {
			NumericValue float64 `json:"numericValue"`
			Score        float64 `json:"score"`
			Title        string  `json:"title"`
		} `json:"audits"`
	} `json:"lighthouseResult"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Analyze audits the given URL and normalizes the Lighthouse result.
func (c *Client) Analyze(ctx context.Context, target string) (perfaudit.Report, error) {
	if !c.Available() {
		return perfaudit.Report{}, perfaudit.ErrUnavailable
	}

	q := url.Values{}
	q.Set("url", target)
	q.Set("key", c.apiKey)
	q.Set("strategy", "mobile")
	for _, cat := range []string{"performance", "seo", "accessibility", "best-practices"} {
		q.Add("category", cat)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return perfaudit.Report{}, fmt.Errorf("build pagespeed request: %w", err)
	}

	metrics.IncProviderCall("pagespeed")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.IncProviderFailure("pagespeed")
		return perfaudit.Report{}, fmt.Errorf("pagespeed request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		metrics.IncProviderFailure("pagespeed")
		return perfaudit.Report{}, fmt.Errorf("read pagespeed response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.IncProviderFailure("pagespeed")
		return perfaudit.Report{}, fmt.Errorf("pagespeed http status %d", resp.StatusCode)
	}

	var parsed lighthouseResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return perfaudit.Report{}, fmt.Errorf("parse pagespeed response: %w", err)
	}
	if parsed.Error != nil {
		metrics.IncProviderFailure("pagespeed")
		return perfaudit.Report{}, fmt.Errorf("pagespeed error: %s", parsed.Error.Message)
	}

	report := perfaudit.Report{
		PerformanceScore:   categoryScore(parsed, "performance"),
		SEOScore:           categoryScore(parsed, "seo"),
		AccessibilityScore: categoryScore(parsed, "accessibility"),
		BestPracticesScore: categoryScore(parsed, "best-practices"),
	}
	if audit, ok := parsed.LighthouseResult.Audits["largest-contentful-paint"]; ok {
		report.CoreWebVitals.LCPMillis = audit.NumericValue
	}
	if audit, ok := parsed.LighthouseResult.Audits["cumulative-layout-shift"]; ok {
		report.CoreWebVitals.CLS = audit.NumericValue
	}
	if audit, ok := parsed.LighthouseResult.Audits["total-blocking-time"]; ok {
		report.CoreWebVitals.TBTMillis = audit.NumericValue
	}
	for name, audit := range parsed.LighthouseResult.Audits {
		if strings.HasPrefix(name, "uses-") && audit.Score < 0.9 && audit.Title != "" {
			report.Opportunities = append(report.Opportunities, audit.Title)
		}
	}
	sort.Strings(report.Opportunities)
	return report, nil
}

func categoryScore(parsed lighthouseResponse, category string) int {
	cat, ok := parsed.LighthouseResult.Categories[category]
	if !ok {
		return 0
	}
	score := int(cat.Score*100 + 0.5)
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}
