package runs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"rivalscan-backend/internal/analysis"
	"rivalscan-backend/internal/competitors"
	"rivalscan-backend/internal/costs"
	"rivalscan-backend/internal/profile"
)

// PGRepo implements Repo using Postgres. Status predicates in the UPDATE
// statements enforce the state machine at the database level, so concurrent
// writers cannot move a run backward.
type PGRepo struct {
	DB *sql.DB
}

const runColumns = `
id, access_token, lead_ref, subject_url, competitor_url, scope,
status, progress, status_message, error_code, error_retryable,
profile, candidates, result,
(SELECT COALESCE(SUM(cost_cents), 0) FROM run_costs WHERE run_costs.run_id = runs.id),
created_at, started_at, completed_at, updated_at`

// Create inserts a new run.
func (r *PGRepo) Create(ctx context.Context, run Run) error {
	const query = `
INSERT INTO runs (
	id, access_token, lead_ref, subject_url, competitor_url, scope,
	status, progress, status_message, created_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.DB.ExecContext(ctx, query,
		run.ID,
		run.AccessToken,
		run.LeadRef,
		run.SubjectURL,
		run.CompetitorURL,
		run.Scope,
		run.Status,
		run.Progress,
		run.StatusMessage,
		run.CreatedAt,
	)
	return err
}

// GetByID returns a run by ID.
func (r *PGRepo) GetByID(ctx context.Context, runID string) (Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE id = $1 LIMIT 1`
	run, err := scanRun(r.DB.QueryRowContext(ctx, query, runID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, ErrNotFound
		}
		return Run{}, err
	}
	return run, nil
}

// UpdateStatus advances status, progress, and message. The WHERE predicate
// restricts the update to legal predecessor statuses; complete is refused
// outright because only UpdateResult may complete a run.
func (r *PGRepo) UpdateStatus(ctx context.Context, runID, status string, progress int, message string) error {
	if status == StatusComplete {
		return ErrInvalidTransition
	}
	const query = `
UPDATE runs
SET status = $2,
    progress = GREATEST(progress, $3),
    status_message = $4,
    started_at = CASE
        WHEN started_at IS NULL AND $2 <> 'pending' AND $2 <> 'failed' THEN now()
        ELSE started_at
    END,
    updated_at = now()
WHERE id = $1 AND status = ANY($5::text[])`

	res, err := r.DB.ExecContext(ctx, query, runID, status, progress, message, statusArray(allowedPredecessors(status)))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return r.notFoundOrInvalid(ctx, runID)
	}
	return nil
}

// UpdateCandidates attaches the profile and offered candidates.
func (r *PGRepo) UpdateCandidates(ctx context.Context, runID string, prof profile.BusinessProfile, cands []competitors.Candidate) error {
	const query = `
UPDATE runs
SET profile = $2::jsonb,
    candidates = $3::jsonb,
    updated_at = now()
WHERE id = $1`

	profilePayload, err := json.Marshal(prof)
	if err != nil {
		return err
	}
	candidatesPayload, err := json.Marshal(cands)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, query, runID, profilePayload, candidatesPayload)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateSelection records the chosen competitor URL.
func (r *PGRepo) UpdateSelection(ctx context.Context, runID, competitorURL string) error {
	const query = `
UPDATE runs
SET competitor_url = $2,
    updated_at = now()
WHERE id = $1`

	res, err := r.DB.ExecContext(ctx, query, runID, competitorURL)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateResult atomically attaches the result and completes the run.
func (r *PGRepo) UpdateResult(ctx context.Context, runID string, result *analysis.Result, completedAt time.Time) error {
	if result == nil {
		return ErrInvalidTransition
	}
	const query = `
UPDATE runs
SET status = 'complete',
    progress = 100,
    status_message = '',
    result = $2::jsonb,
    completed_at = $3::timestamptz,
    updated_at = now()
WHERE id = $1 AND status = ANY($4::text[])`

	payload, err := json.Marshal(result)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, query, runID, payload, completedAt, statusArray(allowedPredecessors(StatusComplete)))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return r.notFoundOrInvalid(ctx, runID)
	}
	return nil
}

// UpdateFailure marks the run failed.
func (r *PGRepo) UpdateFailure(ctx context.Context, runID, code, message string, retryable bool, completedAt time.Time) error {
	const query = `
UPDATE runs
SET status = 'failed',
    status_message = $2,
    error_code = $3,
    error_retryable = $4,
    completed_at = $5::timestamptz,
    updated_at = now()
WHERE id = $1 AND status = ANY($6::text[])`

	res, err := r.DB.ExecContext(ctx, query, runID, message, code, retryable, completedAt, statusArray(allowedPredecessors(StatusFailed)))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return r.notFoundOrInvalid(ctx, runID)
	}
	return nil
}

// SaveCosts persists the run's cost entries.
func (r *PGRepo) SaveCosts(ctx context.Context, runID string, entries []costs.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const query = `
INSERT INTO run_costs (run_id, provider, operation, cost_cents, created_at)
VALUES ($1, $2, $3, $4, $5)`
	for _, e := range entries {
		if _, err := tx.ExecContext(ctx, query, runID, e.Provider, e.Operation, e.CostCents, e.RecordedAt); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListByLeadRef lists runs for a lead reference ordered newest-first.
func (r *PGRepo) ListByLeadRef(ctx context.Context, leadRef string, limit, offset int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	query := `SELECT ` + runColumns + ` FROM runs
WHERE lead_ref = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, leadRef, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

// notFoundOrInvalid distinguishes a missing run from a rejected transition
// after a zero-row update.
func (r *PGRepo) notFoundOrInvalid(ctx context.Context, runID string) error {
	var exists bool
	if err := r.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM runs WHERE id = $1)`, runID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return ErrInvalidTransition
}

// statusArray renders a Postgres text[] literal. Statuses are internal
// constants, never user input.
func statusArray(statuses []string) string {
	return "{" + strings.Join(statuses, ",") + "}"
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var run Run
	var competitorURL sql.NullString
	var statusMessage sql.NullString
	var errorCode sql.NullString
	var errorRetryable sql.NullBool
	var profilePayload sql.NullString
	var candidatesPayload sql.NullString
	var resultPayload sql.NullString
	var startedAt sql.NullTime
	var completedAt sql.NullTime

	err := row.Scan(
		&run.ID,
		&run.AccessToken,
		&run.LeadRef,
		&run.SubjectURL,
		&competitorURL,
		&run.Scope,
		&run.Status,
		&run.Progress,
		&statusMessage,
		&errorCode,
		&errorRetryable,
		&profilePayload,
		&candidatesPayload,
		&resultPayload,
		&run.CostCents,
		&run.CreatedAt,
		&startedAt,
		&completedAt,
		&run.UpdatedAt,
	)
	if err != nil {
		return Run{}, err
	}

	if competitorURL.Valid {
		run.CompetitorURL = competitorURL.String
	}
	if statusMessage.Valid {
		run.StatusMessage = statusMessage.String
	}
	if errorCode.Valid {
		run.ErrorCode = errorCode.String
	}
	if errorRetryable.Valid {
		run.ErrorRetryable = errorRetryable.Bool
	}
	if profilePayload.Valid {
		var prof profile.BusinessProfile
		if err := json.Unmarshal([]byte(profilePayload.String), &prof); err == nil {
			run.Profile = &prof
		}
	}
	if candidatesPayload.Valid {
		_ = json.Unmarshal([]byte(candidatesPayload.String), &run.Candidates)
	}
	if resultPayload.Valid {
		var result analysis.Result
		if err := json.Unmarshal([]byte(resultPayload.String), &result); err == nil {
			run.Result = &result
		}
	}
	if startedAt.Valid {
		run.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		run.CompletedAt = &completedAt.Time
	}
	return run, nil
}

var _ Repo = (*PGRepo)(nil)
