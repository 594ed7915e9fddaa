// Package runs owns the competitor-analysis run: its state machine, the
// interactive competitor-selection step, and the asynchronous pipeline
// execution behind it.
package runs

import (
	"time"

	"rivalscan-backend/internal/analysis"
	"rivalscan-backend/internal/competitors"
	"rivalscan-backend/internal/costs"
	"rivalscan-backend/internal/profile"
)

// Run statuses. A run only moves forward; failed is reachable from any
// non-terminal status.
const (
	StatusPending   = "pending"
	StatusSelecting = "selecting_competitor"
	StatusCrawling  = "crawling"
	StatusAnalyzing = "analyzing"
	StatusComplete  = "complete"
	StatusFailed    = "failed"
)

// Run is one competitor-analysis job from submission to result.
type Run struct {
	ID            string `json:"id"`
	AccessToken   string `json:"-"`
	LeadRef       string `json:"leadRef,omitempty"`
	SubjectURL    string `json:"subjectUrl"`
	CompetitorURL string `json:"competitorUrl,omitempty"`
	Scope         string `json:"scope"`

	Status        string `json:"status"`
	Progress      int    `json:"progress"`
	StatusMessage string `json:"statusMessage,omitempty"`

	ErrorCode      string `json:"errorCode,omitempty"`
	ErrorRetryable bool   `json:"errorRetryable,omitempty"`

	Profile    *profile.BusinessProfile `json:"profile,omitempty"`
	Candidates []competitors.Candidate  `json:"candidates,omitempty"`
	Result     *analysis.Result         `json:"result,omitempty"`

	CostCents   int           `json:"costCents,omitempty"`
	CostEntries []costs.Entry `json:"-"`

	CreatedAt   time.Time  `json:"createdAt"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Terminal reports whether the run can change state again.
func (r Run) Terminal() bool {
	return r.Status == StatusComplete || r.Status == StatusFailed
}

// forward lists the single legal forward transition per status.
var forward = map[string]string{
	StatusPending:   StatusSelecting,
	StatusSelecting: StatusCrawling,
	StatusCrawling:  StatusAnalyzing,
	StatusAnalyzing: StatusComplete,
}

// canTransition reports whether a run may move from one status to another.
// The state machine is a strict forward chain; failed is an escape hatch from
// every non-terminal status.
func canTransition(from, to string) bool {
	if from == to {
		return true
	}
	if to == StatusFailed {
		return from != StatusComplete && from != StatusFailed
	}
	return forward[from] == to
}

// allowedPredecessors returns the statuses a run may hold immediately before
// entering the given status. Used by the Postgres repo to enforce the state
// machine in the UPDATE predicate.
func allowedPredecessors(to string) []string {
	if to == StatusFailed {
		return []string{StatusPending, StatusSelecting, StatusCrawling, StatusAnalyzing, StatusFailed}
	}
	out := []string{to}
	for from, next := range forward {
		if next == to {
			out = append(out, from)
		}
	}
	return out
}
