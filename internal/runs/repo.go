package runs

import (
	"context"
	"time"

	"rivalscan-backend/internal/analysis"
	"rivalscan-backend/internal/competitors"
	"rivalscan-backend/internal/costs"
	"rivalscan-backend/internal/profile"
)

// Repo defines persistence operations for runs. Implementations enforce the
// status state machine: updates that would move a run backward, or mark it
// complete without a result, return ErrInvalidTransition.
type Repo interface {
	Create(ctx context.Context, run Run) error
	GetByID(ctx context.Context, runID string) (Run, error)

	// UpdateStatus advances status, progress, and the user-facing message.
	// It refuses StatusComplete; only UpdateResult can complete a run.
	UpdateStatus(ctx context.Context, runID, status string, progress int, message string) error

	// UpdateCandidates attaches the business profile and offered candidates.
	UpdateCandidates(ctx context.Context, runID string, prof profile.BusinessProfile, cands []competitors.Candidate) error

	// UpdateSelection records the chosen competitor URL.
	UpdateSelection(ctx context.Context, runID, competitorURL string) error

	// UpdateResult atomically attaches the result and marks the run complete.
	UpdateResult(ctx context.Context, runID string, result *analysis.Result, completedAt time.Time) error

	// UpdateFailure marks the run failed with a classification.
	UpdateFailure(ctx context.Context, runID, code, message string, retryable bool, completedAt time.Time) error

	// SaveCosts persists the run's cost entries.
	SaveCosts(ctx context.Context, runID string, entries []costs.Entry) error

	// ListByLeadRef returns runs for a lead reference, newest first.
	ListByLeadRef(ctx context.Context, leadRef string, limit, offset int) ([]Run, error)
}
