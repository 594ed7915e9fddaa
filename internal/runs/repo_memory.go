package runs

import (
	"context"
	"sort"
	"sync"
	"time"

	"rivalscan-backend/internal/analysis"
	"rivalscan-backend/internal/competitors"
	"rivalscan-backend/internal/costs"
	"rivalscan-backend/internal/profile"
)

// defaultTTL is how long a run survives in memory after its last update.
const defaultTTL = 24 * time.Hour

// MemoryRepo stores runs in memory and is safe for concurrent use. It is the
// fallback when no database is configured; a janitor evicts stale runs so the
// process does not grow without bound.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]Run
	ttl  time.Duration
	now  func() time.Time
}

// NewMemoryRepo constructs a MemoryRepo with the default TTL.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID: make(map[string]Run),
		ttl:  defaultTTL,
		now:  time.Now,
	}
}

// StartJanitor evicts expired runs every interval until stop is called.
func (r *MemoryRepo) StartJanitor(interval time.Duration) (stop func()) {
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				r.evictExpired()
			case <-done:
				return
			}
		}
	}()
	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}

func (r *MemoryRepo) evictExpired() {
	cutoff := r.now().Add(-r.ttl)
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, run := range r.byID {
		if run.UpdatedAt.Before(cutoff) {
			delete(r.byID, id)
		}
	}
}

// Create stores the run.
func (r *MemoryRepo) Create(ctx context.Context, run Run) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	run.UpdatedAt = r.now().UTC()
	r.byID[run.ID] = run
	return nil
}

// GetByID returns a run by its ID.
func (r *MemoryRepo) GetByID(ctx context.Context, runID string) (Run, error) {
	if err := ctx.Err(); err != nil {
		return Run{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	run, ok := r.byID[runID]
	if !ok {
		return Run{}, ErrNotFound
	}
	return run, nil
}

// UpdateStatus advances the state machine. Complete is refused here so a run
// can never be complete without its result attached.
func (r *MemoryRepo) UpdateStatus(ctx context.Context, runID, status string, progress int, message string) error {
	if status == StatusComplete {
		return ErrInvalidTransition
	}
	return r.mutate(ctx, runID, func(run *Run) error {
		if !canTransition(run.Status, status) {
			return ErrInvalidTransition
		}
		if run.Status != status && run.StartedAt == nil && status != StatusFailed {
			now := r.now().UTC()
			run.StartedAt = &now
		}
		run.Status = status
		if progress > run.Progress {
			run.Progress = progress
		}
		run.StatusMessage = message
		return nil
	})
}

// UpdateCandidates attaches the profile and offered candidates.
func (r *MemoryRepo) UpdateCandidates(ctx context.Context, runID string, prof profile.BusinessProfile, cands []competitors.Candidate) error {
	return r.mutate(ctx, runID, func(run *Run) error {
		p := prof
		run.Profile = &p
		run.Candidates = cands
		return nil
	})
}

// UpdateSelection records the chosen competitor URL.
func (r *MemoryRepo) UpdateSelection(ctx context.Context, runID, competitorURL string) error {
	return r.mutate(ctx, runID, func(run *Run) error {
		run.CompetitorURL = competitorURL
		return nil
	})
}

// UpdateResult atomically completes the run with its result.
func (r *MemoryRepo) UpdateResult(ctx context.Context, runID string, result *analysis.Result, completedAt time.Time) error {
	if result == nil {
		return ErrInvalidTransition
	}
	return r.mutate(ctx, runID, func(run *Run) error {
		if !canTransition(run.Status, StatusComplete) {
			return ErrInvalidTransition
		}
		run.Status = StatusComplete
		run.Progress = 100
		run.StatusMessage = ""
		run.Result = result
		run.CompletedAt = &completedAt
		return nil
	})
}

// UpdateFailure marks the run failed.
func (r *MemoryRepo) UpdateFailure(ctx context.Context, runID, code, message string, retryable bool, completedAt time.Time) error {
	return r.mutate(ctx, runID, func(run *Run) error {
		if !canTransition(run.Status, StatusFailed) {
			return ErrInvalidTransition
		}
		run.Status = StatusFailed
		run.StatusMessage = message
		run.ErrorCode = code
		run.ErrorRetryable = retryable
		run.CompletedAt = &completedAt
		return nil
	})
}

// SaveCosts attaches cost entries and refreshes the run total.
func (r *MemoryRepo) SaveCosts(ctx context.Context, runID string, entries []costs.Entry) error {
	return r.mutate(ctx, runID, func(run *Run) error {
		run.CostEntries = entries
		total := 0
		for _, e := range entries {
			total += e.CostCents
		}
		run.CostCents = total
		return nil
	})
}

// ListByLeadRef returns runs for a lead reference, newest first.
func (r *MemoryRepo) ListByLeadRef(ctx context.Context, leadRef string, limit, offset int) ([]Run, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = 20
	}

	r.mu.RLock()
	matched := make([]Run, 0)
	for _, run := range r.byID {
		if run.LeadRef == leadRef {
			matched = append(matched, run)
		}
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	if offset >= len(matched) {
		return []Run{}, nil
	}
	end := len(matched)
	if offset+limit < end {
		end = offset + limit
	}
	return matched[offset:end], nil
}

func (r *MemoryRepo) mutate(ctx context.Context, runID string, fn func(run *Run) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	run, ok := r.byID[runID]
	if !ok {
		return ErrNotFound
	}
	if err := fn(&run); err != nil {
		return err
	}
	run.UpdatedAt = r.now().UTC()
	r.byID[runID] = run
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
