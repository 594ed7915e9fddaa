// Package dataforseo implements keywordintel.Client against the DataForSEO
// Labs and SERP APIs.
package dataforseo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"rivalscan-backend/internal/keywordintel"
	"rivalscan-backend/internal/shared/metrics"
)

const defaultBaseURL = "https://api.dataforseo.com"

// Client calls DataForSEO with basic auth.
type Client struct {
	login      string
	password   string
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a DataForSEO client. Empty credentials yield an
// unavailable client rather than an error.
func NewClient(login, password string) *Client {
	return &Client{
		login:    login,
		password: password,
		baseURL:  defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Available reports whether credentials are configured.
func (c *Client) Available() bool {
	return strings.TrimSpace(c.login) != "" && strings.TrimSpace(c.password) != ""
}

type taskEnvelope struct {
	StatusCode int    `json:"status_code"`
	StatusMsg  string `json:"status_message"`
	Tasks      []struct {
		Result []json.RawMessage `json:"result"`
	} `json:"tasks"`
}

// OrganicCompetitors returns domains ranked by keyword overlap with the subject.
func (c *Client) OrganicCompetitors(ctx context.Context, domain string, limit int) ([]keywordintel.OrganicCompetitor, error) {
	if limit <= 0 {
		limit = 10
	}
	payload := []map[string]any{{
		"target":        domain,
		"limit":         limit,
		"language_name": "English",
		"location_code": 2840,
	}}

	raw, err := c.post(ctx, "/v3/dataforseo_labs/google/competitors_domain/live", payload)
	if err != nil {
		return nil, err
	}

	var result struct {
		Items []struct {
			Domain string `json:"domain"`
			Metrics struct {
				Organic struct {
					Count int `json:"count"`
					ETV   float64 `json:"etv"`
				} `json:"organic"`
			} `json:"metrics"`
			Intersections int `json:"intersections"`
		} `json:"items"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("parse competitors result: %w", err)
	}

	out := make([]keywordintel.OrganicCompetitor, 0, len(result.Items))
	for _, item := range result.Items {
		out = append(out, keywordintel.OrganicCompetitor{
			Domain:          item.Domain,
			OverlapCount:    item.Intersections,
			KeywordCount:    item.Metrics.Organic.Count,
			TrafficEstimate: int(item.Metrics.Organic.ETV),
		})
	}
	return out, nil
}

// Gap summarizes keyword intersection between subject and competitor.
func (c *Client) Gap(ctx context.Context, subject, competitor string) (keywordintel.KeywordGap, error) {
	payload := []map[string]any{{
		"target1":       subject,
		"target2":       competitor,
		"language_name": "English",
		"location_code": 2840,
	}}

	raw, err := c.post(ctx, "/v3/dataforseo_labs/google/domain_intersection/live", payload)
	if err != nil {
		return keywordintel.KeywordGap{}, err
	}

	var result struct {
		TotalCount int `json:"total_count"`
		Items      []struct {
			FirstDomainPositions  *int `json:"first_domain_positions"`
			SecondDomainPositions *int `json:"second_domain_positions"`
		} `json:"items"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return keywordintel.KeywordGap{}, fmt.Errorf("parse gap result: %w", err)
	}

	gap := keywordintel.KeywordGap{SharedKeywords: result.TotalCount}
	for _, item := range result.Items {
		switch {
		case item.FirstDomainPositions != nil && item.SecondDomainPositions == nil:
			gap.SubjectOnly++
		case item.FirstDomainPositions == nil && item.SecondDomainPositions != nil:
			gap.CompetitorOnly++
		}
	}
	gap.MissingKeywords = gap.CompetitorOnly
	return gap, nil
}

// SearchOrganic runs a live organic SERP query and returns result domains in
// rank order.
func (c *Client) SearchOrganic(ctx context.Context, query string) ([]keywordintel.SERPResult, error) {
	payload := []map[string]any{{
		"keyword":       query,
		"language_name": "English",
		"location_code": 2840,
		"depth":         20,
	}}

	raw, err := c.post(ctx, "/v3/serp/google/organic/live/regular", payload)
	if err != nil {
		return nil, err
	}

	var result struct {
		Items []struct {
			Type        string `json:"type"`
			Domain      string `json:"domain"`
			URL         string `json:"url"`
			Title       string `json:"title"`
			Description string `json:"description"`
		} `json:"items"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("parse serp result: %w", err)
	}

	out := make([]keywordintel.SERPResult, 0, len(result.Items))
	for _, item := range result.Items {
		if item.Type != "" && item.Type != "organic" {
			continue
		}
		out = append(out, keywordintel.SERPResult{
			Domain:      item.Domain,
			URL:         item.URL,
			Title:       item.Title,
			Description: item.Description,
		})
	}
	return out, nil
}

func (c *Client) post(ctx context.Context, path string, payload any) (json.RawMessage, error) {
	if !c.Available() {
		return nil, keywordintel.ErrUnavailable
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal dataforseo request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build dataforseo request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.login, c.password)

	metrics.IncProviderCall("dataforseo")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.IncProviderFailure("dataforseo")
		return nil, fmt.Errorf("dataforseo request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		metrics.IncProviderFailure("dataforseo")
		return nil, fmt.Errorf("read dataforseo response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.IncProviderFailure("dataforseo")
		return nil, fmt.Errorf("dataforseo http status %d", resp.StatusCode)
	}

	var envelope taskEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("parse dataforseo envelope: %w", err)
	}
	if envelope.StatusCode >= 40000 {
		metrics.IncProviderFailure("dataforseo")
		return nil, fmt.Errorf("dataforseo error: %s", envelope.StatusMsg)
	}
	if len(envelope.Tasks) == 0 || len(envelope.Tasks[0].Result) == 0 {
		return json.RawMessage(`{}`), nil
	}
	return envelope.Tasks[0].Result[0], nil
}
