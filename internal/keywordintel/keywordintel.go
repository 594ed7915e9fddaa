// Package keywordintel abstracts keyword-overlap and SERP data providers.
package keywordintel

import (
	"context"
	"errors"
)

// OrganicCompetitor is a domain competing for the same organic keywords.
type OrganicCompetitor struct {
	Domain          string `json:"domain"`
	OverlapCount    int    `json:"overlapCount"`
	KeywordCount    int    `json:"keywordCount"`
	TrafficEstimate int    `json:"trafficEstimate"`
}

// SERPResult is one organic search result.
type SERPResult struct {
	Domain      string `json:"domain"`
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// KeywordGap summarizes keyword coverage between two domains.
type KeywordGap struct {
	SharedKeywords  int `json:"sharedKeywords"`
	MissingKeywords int `json:"missingKeywords"`
	SubjectOnly     int `json:"subjectOnly"`
	CompetitorOnly  int `json:"competitorOnly"`
}

// Client abstracts a keyword-intelligence capability. Implementations must
// report availability so callers can skip rather than fail when the provider
// is not configured.
type Client interface {
	Available() bool
	OrganicCompetitors(ctx context.Context, domain string, limit int) ([]OrganicCompetitor, error)
	Gap(ctx context.Context, subject, competitor string) (KeywordGap, error)
	SearchOrganic(ctx context.Context, query string) ([]SERPResult, error)
}

// ErrUnavailable is returned when the provider is not configured.
var ErrUnavailable = errors.New("keyword intelligence unavailable")

// Unavailable is the client used when no provider is configured.
type Unavailable struct{}

func (Unavailable) Available() bool { return false }

func (Unavailable) OrganicCompetitors(context.Context, string, int) ([]OrganicCompetitor, error) {
	return nil, ErrUnavailable
}

func (Unavailable) Gap(context.Context, string, string) (KeywordGap, error) {
	return KeywordGap{}, ErrUnavailable
}

func (Unavailable) SearchOrganic(context.Context, string) ([]SERPResult, error) {
	return nil, ErrUnavailable
}
