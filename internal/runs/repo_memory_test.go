package runs

import (
	"context"
	"errors"
	"testing"
	"time"

	"rivalscan-backend/internal/analysis"
	"rivalscan-backend/internal/costs"
)

func seedRun(t *testing.T, repo *MemoryRepo, status string) Run {
	t.Helper()
	run := Run{
		ID:          "run-1",
		AccessToken: "token-1",
		SubjectURL:  "https://acme-hvac.com",
		Scope:       "local",
		Status:      status,
		CreatedAt:   time.Now().UTC(),
	}
	if err := repo.Create(context.Background(), run); err != nil {
		t.Fatalf("Create: %v", err)
	}
	return run
}

func TestMemoryRepoStatusAdvances(t *testing.T) {
	repo := NewMemoryRepo()
	seedRun(t, repo, StatusPending)

	if err := repo.UpdateStatus(context.Background(), "run-1", StatusSelecting, 20, "choose"); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	got, _ := repo.GetByID(context.Background(), "run-1")
	if got.Status != StatusSelecting || got.Progress != 20 {
		t.Errorf("run = %+v", got)
	}
	if got.StartedAt == nil {
		t.Error("StartedAt not stamped on first advance")
	}
}

func TestMemoryRepoRejectsBackwardTransition(t *testing.T) {
	repo := NewMemoryRepo()
	seedRun(t, repo, StatusAnalyzing)

	err := repo.UpdateStatus(context.Background(), "run-1", StatusCrawling, 10, "")
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition", err)
	}
}

func TestMemoryRepoRejectsCompleteViaUpdateStatus(t *testing.T) {
	repo := NewMemoryRepo()
	seedRun(t, repo, StatusAnalyzing)

	err := repo.UpdateStatus(context.Background(), "run-1", StatusComplete, 100, "")
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition", err)
	}
}

func TestMemoryRepoCompleteRequiresResult(t *testing.T) {
	repo := NewMemoryRepo()
	seedRun(t, repo, StatusAnalyzing)

	if err := repo.UpdateResult(context.Background(), "run-1", nil, time.Now().UTC()); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("nil result err = %v, want ErrInvalidTransition", err)
	}

	result := &analysis.Result{Verdict: "winning"}
	if err := repo.UpdateResult(context.Background(), "run-1", result, time.Now().UTC()); err != nil {
		t.Fatalf("UpdateResult: %v", err)
	}
	got, _ := repo.GetByID(context.Background(), "run-1")
	if got.Status != StatusComplete || got.Result == nil || got.Progress != 100 {
		t.Errorf("run = %+v", got)
	}
}

func TestMemoryRepoCompleteIsFinal(t *testing.T) {
	repo := NewMemoryRepo()
	seedRun(t, repo, StatusAnalyzing)
	if err := repo.UpdateResult(context.Background(), "run-1", &analysis.Result{}, time.Now().UTC()); err != nil {
		t.Fatalf("UpdateResult: %v", err)
	}

	if err := repo.UpdateFailure(context.Background(), "run-1", ErrorCodeInternal, "boom", false, time.Now().UTC()); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("failing a complete run: err = %v", err)
	}
}

func TestMemoryRepoFailureFromEarlyStatus(t *testing.T) {
	repo := NewMemoryRepo()
	seedRun(t, repo, StatusPending)

	if err := repo.UpdateFailure(context.Background(), "run-1", ErrorCodeFetch, "could not load", true, time.Now().UTC()); err != nil {
		t.Fatalf("UpdateFailure: %v", err)
	}
	got, _ := repo.GetByID(context.Background(), "run-1")
	if got.Status != StatusFailed || got.ErrorCode != ErrorCodeFetch || !got.ErrorRetryable {
		t.Errorf("run = %+v", got)
	}
}

func TestMemoryRepoSaveCostsTotals(t *testing.T) {
	repo := NewMemoryRepo()
	seedRun(t, repo, StatusAnalyzing)

	entries := []costs.Entry{
		{Provider: "openai", Operation: "suggest", CostCents: 2},
		{Provider: "dataforseo", Operation: "serp", CostCents: 3},
	}
	if err := repo.SaveCosts(context.Background(), "run-1", entries); err != nil {
		t.Fatalf("SaveCosts: %v", err)
	}
	got, _ := repo.GetByID(context.Background(), "run-1")
	if got.CostCents != 5 {
		t.Errorf("CostCents = %d", got.CostCents)
	}
}

func TestMemoryRepoListByLeadRef(t *testing.T) {
	repo := NewMemoryRepo()
	base := time.Now().UTC()
	for i, id := range []string{"run-a", "run-b", "run-c"} {
		run := Run{ID: id, LeadRef: "lead-1", Status: StatusPending, CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		if err := repo.Create(context.Background(), run); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	if err := repo.Create(context.Background(), Run{ID: "run-x", LeadRef: "lead-2", Status: StatusPending, CreatedAt: base}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.ListByLeadRef(context.Background(), "lead-1", 2, 0)
	if err != nil {
		t.Fatalf("ListByLeadRef: %v", err)
	}
	if len(got) != 2 || got[0].ID != "run-c" || got[1].ID != "run-b" {
		t.Errorf("runs = %+v", got)
	}
}

func TestMemoryRepoEviction(t *testing.T) {
	repo := NewMemoryRepo()
	current := time.Now().UTC()
	repo.now = func() time.Time { return current }
	seedRun(t, repo, StatusComplete)

	current = current.Add(25 * time.Hour)
	repo.evictExpired()

	if _, err := repo.GetByID(context.Background(), "run-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expired run still present, err = %v", err)
	}
}
