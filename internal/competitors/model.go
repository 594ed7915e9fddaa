// Package competitors discovers and validates competitor domains through an
// ordered cascade of discovery tiers.
package competitors

import "context"

// Candidate provenance tags.
const (
	SourceAISuggested = "ai_suggested"
	SourceDataForSEO  = "dataforseo"
	SourceSERP        = "serp"
	SourceDirectory   = "directory"
)

// Analysis scopes.
const (
	ScopeLocal    = "local"
	ScopeNational = "national"
)

// Metrics carries optional keyword-intelligence numbers for a candidate.
type Metrics struct {
	KeywordCount    int `json:"keywordCount,omitempty"`
	TrafficEstimate int `json:"trafficEstimate,omitempty"`
	OverlapCount    int `json:"overlapCount,omitempty"`
}

// Candidate is a validated competitor domain proposal. The user selects
// exactly one to promote into an analysis run.
type Candidate struct {
	Domain      string   `json:"domain"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Similarity  float64  `json:"similarity"`
	Source      string   `json:"source"`
	Metrics     *Metrics `json:"metrics,omitempty"`
}

// DomainValidator probes candidate domains and returns the live subset,
// preserving input order.
type DomainValidator interface {
	ValidateBatch(ctx context.Context, domains []string) []string
}
