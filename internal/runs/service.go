package runs

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"rivalscan-backend/internal/analysis"
	"rivalscan-backend/internal/competitors"
	"rivalscan-backend/internal/costs"
	"rivalscan-backend/internal/domains"
	"rivalscan-backend/internal/fetch"
	"rivalscan-backend/internal/profile"
	"rivalscan-backend/internal/shared/metrics"
	"rivalscan-backend/internal/shared/telemetry"
)

// asyncTimeout bounds each background phase of a run.
const asyncTimeout = 5 * time.Minute

// Service contains business logic for runs.
type Service struct {
	Repo     Repo
	Fetcher  fetch.Fetcher
	Profiler *profile.Profiler
	Resolver *competitors.Resolver
	Pipeline *analysis.Pipeline
	Ledger   *costs.Ledger
}

// Create registers a new run and kicks off asynchronous competitor discovery.
// The returned run carries the access token; it is shown once and gates every
// later read.
func (s *Service) Create(ctx context.Context, rawURL, scope, leadRef string) (Run, error) {
	subject := domains.Normalize(rawURL)
	if subject == "" || !strings.Contains(subject, ".") {
		return Run{}, fmt.Errorf("subject url %q is not a valid domain", rawURL)
	}
	subjectURL := domains.EnsureURL(strings.TrimSpace(rawURL))
	if scope != competitors.ScopeNational {
		scope = competitors.ScopeLocal
	}

	run := Run{
		ID:            uuid.NewString(),
		AccessToken:   newAccessToken(),
		LeadRef:       strings.TrimSpace(leadRef),
		SubjectURL:    subjectURL,
		Scope:         scope,
		Status:        StatusPending,
		StatusMessage: "Analyzing your website",
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, run); err != nil {
		return Run{}, err
	}
	metrics.IncRunStarted()
	telemetry.Info("run.status", map[string]any{
		"run_id":  run.ID,
		"status":  StatusPending,
		"subject": domains.Normalize(subjectURL),
		"scope":   scope,
	})

	go s.discoverAsync(run.ID)
	return run, nil
}

// Get returns a run when the caller presents its access token. A wrong token
// is indistinguishable from a missing run.
func (s *Service) Get(ctx context.Context, runID, token string) (Run, error) {
	if runID == "" || token == "" {
		return Run{}, ErrNotFound
	}
	run, err := s.Repo.GetByID(ctx, runID)
	if err != nil {
		return Run{}, err
	}
	if subtle.ConstantTimeCompare([]byte(run.AccessToken), []byte(token)) != 1 {
		return Run{}, ErrNotFound
	}
	return run, nil
}

// Candidates returns the profile and offered candidates for the selection
// step.
func (s *Service) Candidates(ctx context.Context, runID, token string) (Run, error) {
	return s.Get(ctx, runID, token)
}

// SelectCompetitor promotes one offered candidate into the analysis and
// launches the pipeline. Only a run in selecting_competitor accepts a
// selection, and only for a domain that was actually offered.
func (s *Service) SelectCompetitor(ctx context.Context, runID, token, domain string) (Run, error) {
	run, err := s.Get(ctx, runID, token)
	if err != nil {
		return Run{}, err
	}
	if run.Status != StatusSelecting {
		return Run{}, ErrNotReady
	}

	selected := domains.Normalize(domain)
	offered := false
	for _, cand := range run.Candidates {
		if domains.SameDomain(cand.Domain, selected) {
			offered = true
			break
		}
	}
	if !offered {
		return Run{}, ErrCompetitorNotOffered
	}

	competitorURL := domains.EnsureURL(selected)
	if err := s.Repo.UpdateSelection(ctx, runID, competitorURL); err != nil {
		return Run{}, err
	}
	if err := s.transition(ctx, run, StatusCrawling, 30, "Crawling both websites"); err != nil {
		return Run{}, err
	}

	go s.analyzeAsync(runID)

	run, err = s.Repo.GetByID(ctx, runID)
	if err != nil {
		return Run{}, err
	}
	return run, nil
}

// List returns runs recorded against a lead reference, newest first. This is
// the back-office boundary; it is not token-gated.
func (s *Service) List(ctx context.Context, leadRef string, limit, offset int) ([]Run, error) {
	if strings.TrimSpace(leadRef) == "" {
		return nil, errors.New("leadRef is required")
	}
	return s.Repo.ListByLeadRef(ctx, leadRef, limit, offset)
}

// discoverAsync profiles the subject site and resolves competitor candidates,
// then offers them for selection.
func (s *Service) discoverAsync(runID string) {
	ctx, cancel := context.WithTimeout(context.Background(), asyncTimeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			s.failRun(ctx, runID, fmt.Errorf("panic: %v", r))
		}
	}()

	run, err := s.Repo.GetByID(ctx, runID)
	if err != nil {
		s.failRun(ctx, runID, fmt.Errorf("run lookup: %w", err))
		return
	}
	subject := domains.Normalize(run.SubjectURL)

	var content fetch.Content
	if s.Fetcher != nil {
		content, err = s.Fetcher.Fetch(ctx, run.SubjectURL)
		if err != nil {
			// Profiling degrades to domain-only heuristics; discovery
			// still has the guaranteed tier behind it.
			telemetry.Warn("run.subject_fetch_failed", map[string]any{
				"run_id": runID,
				"error":  err.Error(),
			})
		}
	}

	profiler := *s.Profiler
	profiler.OnCost = s.costRecorder(runID)
	prof := profiler.Build(ctx, subject, content)

	resolver := *s.Resolver
	resolver.OnCost = s.costRecorder(runID)
	cands := resolver.Resolve(ctx, subject, prof, run.Scope)
	if len(cands) == 0 {
		s.failRun(ctx, runID, errors.New("no candidates after guaranteed fallback"))
		return
	}

	if err := s.Repo.UpdateCandidates(ctx, runID, prof, cands); err != nil {
		s.failRun(ctx, runID, fmt.Errorf("store candidates: %w", err))
		return
	}
	if err := s.transition(ctx, run, StatusSelecting, 20, "Choose a competitor to compare against"); err != nil {
		s.failRun(ctx, runID, fmt.Errorf("offer candidates: %w", err))
		return
	}
	telemetry.Info("run.candidates_offered", map[string]any{
		"run_id":     runID,
		"candidates": len(cands),
		"industry":   string(prof.Industry),
	})
}

// analyzeAsync runs the pipeline for a selected competitor and completes or
// fails the run.
func (s *Service) analyzeAsync(runID string) {
	ctx, cancel := context.WithTimeout(context.Background(), asyncTimeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			s.failRun(ctx, runID, fmt.Errorf("panic: %v", r))
		}
	}()

	run, err := s.Repo.GetByID(ctx, runID)
	if err != nil {
		s.failRun(ctx, runID, fmt.Errorf("run lookup: %w", err))
		return
	}
	startedAt := time.Now().UTC()

	pipeline := *s.Pipeline
	pipeline.OnCost = s.costRecorder(runID)

	status := StatusCrawling
	onProgress := func(stage string, percent int, message string) {
		if stage != "fetch" && status == StatusCrawling {
			status = StatusAnalyzing
		}
		if err := s.Repo.UpdateStatus(ctx, runID, status, percent, message); err != nil {
			telemetry.Warn("run.progress_update_failed", map[string]any{
				"run_id": runID,
				"stage":  stage,
				"error":  err.Error(),
			})
		}
	}

	result, err := pipeline.Run(ctx, run.SubjectURL, run.CompetitorURL, runID, onProgress)
	if err != nil {
		s.failRun(ctx, runID, err)
		return
	}

	costCents := 0
	if s.Ledger != nil {
		costCents = s.Ledger.Total(runID)
	}
	s.flushCosts(ctx, runID)
	completedAt := time.Now().UTC()
	if err := s.Repo.UpdateResult(ctx, runID, result, completedAt); err != nil {
		s.failRun(ctx, runID, fmt.Errorf("store result: %w", err))
		return
	}
	metrics.IncRunCompleted()
	metrics.ObserveRunDurationMs(float64(completedAt.Sub(startedAt).Milliseconds()))
	telemetry.Info("run.status", map[string]any{
		"run_id":            runID,
		"status":            StatusComplete,
		"status_transition": "analyzing->complete",
		"verdict":           result.Verdict,
		"cost_cents":        costCents,
		"duration_ms":       completedAt.Sub(startedAt).Milliseconds(),
	})
}

// transition advances the run's status after checking the state machine
// locally; the repo enforces it again at the storage level.
func (s *Service) transition(ctx context.Context, run Run, to string, progress int, message string) error {
	if !canTransition(run.Status, to) {
		return ErrInvalidTransition
	}
	if err := s.Repo.UpdateStatus(ctx, run.ID, to, progress, message); err != nil {
		return err
	}
	telemetry.Info("run.status", map[string]any{
		"run_id":            run.ID,
		"status":            to,
		"status_transition": run.Status + "->" + to,
	})
	return nil
}

func (s *Service) failRun(ctx context.Context, runID string, err error) {
	code, retryable := classifyFailure(err)
	telemetry.Error("run.failed", map[string]any{
		"run_id":    runID,
		"code":      code,
		"retryable": retryable,
		"error":     sanitizeError(err),
	})

	s.flushCosts(ctx, runID)
	completedAt := time.Now().UTC()
	if updateErr := s.Repo.UpdateFailure(context.Background(), runID, code, userMessage(code), retryable, completedAt); updateErr != nil {
		telemetry.Error("run.fail_update_failed", map[string]any{
			"run_id": runID,
			"error":  updateErr.Error(),
		})
	}
	metrics.IncRunFailed()
}

func (s *Service) costRecorder(runID string) func(provider, operation string, cents int) {
	if s.Ledger == nil {
		return nil
	}
	return func(provider, operation string, cents int) {
		s.Ledger.Record(runID, provider, operation, cents)
		metrics.IncProviderCall(provider)
	}
}

func (s *Service) flushCosts(ctx context.Context, runID string) {
	if s.Ledger == nil {
		return
	}
	entries := s.Ledger.Entries(runID)
	if len(entries) == 0 {
		return
	}
	if err := s.Repo.SaveCosts(ctx, runID, entries); err != nil {
		telemetry.Warn("run.cost_flush_failed", map[string]any{
			"run_id": runID,
			"error":  err.Error(),
		})
		return
	}
	// Runs flush once, at a terminal status. Releasing the entries here keeps
	// the ledger bounded by in-flight runs.
	s.Ledger.Forget(runID)
}

// classifyFailure maps an internal error to a persisted failure code and a
// retryable flag.
func classifyFailure(err error) (string, bool) {
	if err == nil {
		return ErrorCodeInternal, false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorCodeTimeout, true
	}
	if errors.Is(err, analysis.ErrBothFetchesFailed) {
		return ErrorCodeFetch, true
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "no candidates") {
		return ErrorCodeNoCompetitors, false
	}
	if strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline") {
		return ErrorCodeTimeout, true
	}
	if strings.Contains(msg, "store candidates") || strings.Contains(msg, "store result") || strings.Contains(msg, "run lookup") || strings.Contains(msg, "offer candidates") {
		return ErrorCodeStorage, true
	}
	return ErrorCodeInternal, false
}

// userMessage maps a failure code to the short, non-technical message shown
// to the caller. Internal error text never reaches this field.
func userMessage(code string) string {
	switch code {
	case ErrorCodeFetch:
		return "We couldn't load one of the websites. Please try again."
	case ErrorCodeNoCompetitors:
		return "We couldn't find comparable competitors for this website."
	case ErrorCodeTimeout:
		return "The analysis took too long. Please try again."
	case ErrorCodeStorage:
		return "Something went wrong saving your analysis. Please try again."
	default:
		return "Something went wrong. Please try again."
	}
}

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.ReplaceAll(err.Error(), "\n", " ")
	msg = strings.ReplaceAll(msg, "\r", " ")
	msg = strings.TrimSpace(msg)
	const maxLen = 500
	if len(msg) > maxLen {
		msg = msg[:maxLen]
	}
	return msg
}

func newAccessToken() string {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the process is unusable anyway.
		panic(err)
	}
	return hex.EncodeToString(buf)
}
