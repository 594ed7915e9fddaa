package pagespeed

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"rivalscan-backend/internal/perfaudit"
)

func TestAnalyzeNormalizesLighthouseResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("url"); got != "https://acme-hvac.com" {
			t.Errorf("url param = %q", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"lighthouseResult": map[string]any{
				"categories": map[string]any{
					"performance": map[string]any{"score": 0.82},
					"seo":         map[string]any{"score": 0.91},
				},
				"audits": map[string]any{
					"largest-contentful-paint": map[string]any{"numericValue": 2300.0},
					"cumulative-layout-shift":  map[string]any{"numericValue": 0.04},
					"uses-optimized-images":    map[string]any{"score": 0.3, "title": "Efficiently encode images"},
				},
			},
		})
	}))
	defer srv.Close()

	c := NewClient("key")
	c.baseURL = srv.URL

	got, err := c.Analyze(context.Background(), "https://acme-hvac.com")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if got.PerformanceScore != 82 || got.SEOScore != 91 {
		t.Errorf("scores = %d/%d, want 82/91", got.PerformanceScore, got.SEOScore)
	}
	if got.CoreWebVitals.LCPMillis != 2300 {
		t.Errorf("lcp = %v", got.CoreWebVitals.LCPMillis)
	}
	if len(got.Opportunities) != 1 || got.Opportunities[0] != "Efficiently encode images" {
		t.Errorf("opportunities = %v", got.Opportunities)
	}
}

func TestAnalyzeUnavailableWithoutKey(t *testing.T) {
	c := NewClient("")
	if _, err := c.Analyze(context.Background(), "https://acme-hvac.com"); !errors.Is(err, perfaudit.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}
