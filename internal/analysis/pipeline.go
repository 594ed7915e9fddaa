// Package analysis orchestrates fetching, scoring, and aggregation for one
// subject-versus-competitor run.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"rivalscan-backend/internal/fetch"
	"rivalscan-backend/internal/keywordintel"
	"rivalscan-backend/internal/llm"
	"rivalscan-backend/internal/perfaudit"
	"rivalscan-backend/internal/scoring"
	"rivalscan-backend/internal/shared/telemetry"
)

// ErrBothFetchesFailed is the unrecoverable case: neither site produced
// content, so there is nothing to compare.
var ErrBothFetchesFailed = errors.New("could not load either website")

// ProgressFunc receives stage updates as the pipeline advances. percent is
// 0-100 over the whole run.
type ProgressFunc func(stage string, percent int, message string)

// CostFunc records the cost of one billable provider call.
type CostFunc func(provider, operation string, cents int)

// Result is the assembled comparison for a completed run.
type Result struct {
	SubjectURL      string                  `json:"subjectUrl"`
	CompetitorURL   string                  `json:"competitorUrl"`
	Categories      []scoring.CategoryScore `json:"categories"`
	SubjectScore    float64                 `json:"subjectScore"`
	CompetitorScore float64                 `json:"competitorScore"`
	Verdict         string                  `json:"verdict"`
	Degraded        []string                `json:"degraded,omitempty"`
	GeneratedAt     time.Time               `json:"generatedAt"`
}

// Pipeline runs the analysis stages. Providers may be unavailable; the
// pipeline degrades rather than fails unless both fetches fail.
type Pipeline struct {
	Fetcher  fetch.Fetcher
	Perf     perfaudit.Client
	Keywords keywordintel.Client
	LLM      llm.Client

	// OnCost, when set, is invoked once per billable provider call.
	OnCost CostFunc

	// scorers overrides the default set in tests.
	scorers []scoring.Scorer
}

// Scorers returns the category scorers in evaluation order.
func (p *Pipeline) Scorers() []scoring.Scorer {
	if p.scorers != nil {
		return p.scorers
	}
	return []scoring.Scorer{
		scoring.TechnicalScorer{},
		scoring.OnPageScorer{},
		scoring.ContentScorer{},
		scoring.AIReadyScorer{},
		scoring.BrandVoiceScorer{LLM: p.LLM, OnCost: p.OnCost},
		scoring.UXScorer{},
	}
}

// Run executes the full pipeline for one run. It is not re-entrant for the
// same runID; the caller serializes launches. Persistence of the result is
// the caller's responsibility.
func (p *Pipeline) Run(ctx context.Context, subjectURL, competitorURL, runID string, onProgress ProgressFunc) (*Result, error) {
	progress := func(stage string, percent int, message string) {
		if onProgress != nil {
			onProgress(stage, percent, message)
		}
	}
	started := time.Now()

	progress("fetch", 5, "Loading both websites")
	subject, competitor, degraded, err := p.fetchBoth(ctx, subjectURL, competitorURL)
	if err != nil {
		return nil, err
	}

	progress("audit", 30, "Running performance audits")
	p.auditBoth(ctx, subject, competitor)

	progress("keywords", 45, "Comparing keyword coverage")
	p.attachKeywordGap(ctx, subject, competitor, runID)

	progress("scoring", 55, "Scoring both websites")
	categories, skipped := p.scoreBoth(ctx, subject, competitor, runID, progress)
	degraded = append(degraded, skipped...)

	progress("aggregate", 92, "Computing overall comparison")
	subjScore, compScore := scoring.Aggregate(categories)

	result := &Result{
		SubjectURL:      subjectURL,
		CompetitorURL:   competitorURL,
		Categories:      categories,
		SubjectScore:    subjScore,
		CompetitorScore: compScore,
		Verdict:         scoring.Verdict(subjScore, compScore),
		Degraded:        degraded,
		GeneratedAt:     time.Now().UTC(),
	}

	telemetry.Info("analysis.complete", map[string]any{
		"run_id":           runID,
		"subject_score":    subjScore,
		"competitor_score": compScore,
		"verdict":          result.Verdict,
		"degraded":         len(degraded),
		"duration_ms":      time.Since(started).Milliseconds(),
	})
	progress("assemble", 100, "Analysis complete")
	return result, nil
}

// fetchBoth loads subject and competitor concurrently. One failed fetch
// degrades that side to a zero-signal site; two failed fetches are fatal.
func (p *Pipeline) fetchBoth(ctx context.Context, subjectURL, competitorURL string) (subject, competitor *scoring.Site, degraded []string, err error) {
	sites := make([]*scoring.Site, 2)
	urls := []string{subjectURL, competitorURL}

	g, gctx := errgroup.WithContext(ctx)
	for i, u := range urls {
		i, u := i, u
		g.Go(func() error {
			content, ferr := p.Fetcher.Fetch(gctx, u)
			if ferr != nil {
				telemetry.Warn("analysis.fetch_failed", map[string]any{
					"url":   u,
					"error": ferr.Error(),
				})
				return nil
			}
			sites[i] = &scoring.Site{
				URL:      u,
				Page:     scoring.ParsePage(u, content.HTML),
				Markdown: content.Markdown,
			}
			return nil
		})
	}
	_ = g.Wait()

	if sites[0] == nil && sites[1] == nil {
		return nil, nil, nil, ErrBothFetchesFailed
	}
	for i, site := range sites {
		if site == nil {
			sites[i] = &scoring.Site{URL: urls[i]}
			label := "subject"
			if i == 1 {
				label = "competitor"
			}
			degraded = append(degraded, fmt.Sprintf("%s site content unavailable", label))
		}
	}
	return sites[0], sites[1], degraded, nil
}

// auditBoth attaches performance reports when the audit provider is
// configured. Failures leave the report nil and the scorer degrades.
func (p *Pipeline) auditBoth(ctx context.Context, subject, competitor *scoring.Site) {
	if p.Perf == nil || !p.Perf.Available() {
		return
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, site := range []*scoring.Site{subject, competitor} {
		if site.Page == nil {
			continue
		}
		site := site
		g.Go(func() error {
			report, err := p.Perf.Analyze(gctx, site.URL)
			p.recordCost("pagespeed", "analyze", 1)
			if err != nil {
				telemetry.Warn("analysis.audit_failed", map[string]any{
					"url":   site.URL,
					"error": err.Error(),
				})
				return nil
			}
			site.Perf = &report
			return nil
		})
	}
	_ = g.Wait()
}

// attachKeywordGap adds keyword-coverage data to the subject side when the
// keyword provider is configured.
func (p *Pipeline) attachKeywordGap(ctx context.Context, subject, competitor *scoring.Site, runID string) {
	if p.Keywords == nil || !p.Keywords.Available() {
		return
	}
	if subject.Page == nil || competitor.Page == nil {
		return
	}
	gap, err := p.Keywords.Gap(ctx, subject.Page.Host, competitor.Page.Host)
	p.recordCost("dataforseo", "domain_intersection", 5)
	if err != nil {
		telemetry.Warn("analysis.keyword_gap_failed", map[string]any{
			"run_id": runID,
			"error":  err.Error(),
		})
		return
	}
	subject.KeywordGap = &gap
	mirrored := keywordintel.KeywordGap{
		SharedKeywords:  gap.SharedKeywords,
		MissingKeywords: gap.SubjectOnly,
		SubjectOnly:     gap.CompetitorOnly,
		CompetitorOnly:  gap.SubjectOnly,
	}
	competitor.KeywordGap = &mirrored
}

// scoreBoth runs every scorer on both sites. A scorer that panics or returns
// garbage is dropped from the comparison and reported as degraded; the
// aggregate renormalizes over the remaining categories.
func (p *Pipeline) scoreBoth(ctx context.Context, subject, competitor *scoring.Site, runID string, progress ProgressFunc) ([]scoring.CategoryScore, []string) {
	scorers := p.Scorers()
	categories := make([]scoring.CategoryScore, 0, len(scorers))
	var degraded []string

	for i, scorer := range scorers {
		percent := 55 + (35*(i+1))/len(scorers)
		progress("scoring", percent, fmt.Sprintf("Scoring %s", scorer.Category()))

		subjScore, ok1 := p.safeScore(ctx, scorer, subject, runID)
		compScore, ok2 := p.safeScore(ctx, scorer, competitor, runID)
		if !ok1 || !ok2 {
			degraded = append(degraded, fmt.Sprintf("%s analysis unavailable", scorer.Category()))
			continue
		}
		categories = append(categories, scoring.Merge(scorer.Category(), subjScore, compScore))
	}
	return categories, degraded
}

// safeScore contains scorer panics so one bad category cannot take down the
// run.
func (p *Pipeline) safeScore(ctx context.Context, scorer scoring.Scorer, site *scoring.Site, runID string) (result scoring.SiteScore, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			telemetry.Error("analysis.scorer_panic", map[string]any{
				"run_id":   runID,
				"category": scorer.Category(),
				"panic":    fmt.Sprintf("%v", r),
			})
			ok = false
		}
	}()
	return scorer.Score(ctx, site), true
}

func (p *Pipeline) recordCost(provider, operation string, cents int) {
	if p.OnCost != nil {
		p.OnCost(provider, operation, cents)
	}
}
