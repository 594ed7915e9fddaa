package competitors

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"rivalscan-backend/internal/classify"
	"rivalscan-backend/internal/domains"
	"rivalscan-backend/internal/keywordintel"
	"rivalscan-backend/internal/llm"
	"rivalscan-backend/internal/profile"
	"rivalscan-backend/internal/shared/telemetry"
)

const (
	// TargetCandidates is how many validated candidates resolution aims for.
	TargetCandidates = 5

	// maxRawCandidates caps how many unvalidated candidates a single tier
	// may consider.
	maxRawCandidates = 20

	// organicSufficient is the validated-count at which the organic-keyword
	// tier is considered to have filled the list on its own.
	organicSufficient = 3
)

// CostFunc records the cost of one external call, in minor currency units.
type CostFunc func(provider, operation string, cents int)

// Resolver produces a ranked list of validated competitor candidates through
// ordered discovery tiers.
type Resolver struct {
	LLM       llm.Client
	Keywords  keywordintel.Client
	Validator DomainValidator

	// OnCost, when set, is invoked once per billable external call.
	OnCost CostFunc
}

// resolution accumulates state across tiers for a single Resolve call.
type resolution struct {
	subject  string
	prof     profile.BusinessProfile
	scope    string
	accepted []Candidate
	seen     map[string]struct{}
}

type tier struct {
	name string
	// scopes lists the scopes the tier applies to; empty means both.
	scopes []string
	// onlyIfEmpty restricts the tier to runs where no earlier tier produced
	// anything.
	onlyIfEmpty bool
	// satisfiedAt overrides TargetCandidates as the stop threshold after
	// this tier; zero means use the target.
	satisfiedAt int
	run         func(ctx context.Context, r *resolution) []Candidate
}

// Resolve returns validated competitor candidates for the subject, ordered by
// tier and capped at the target count. Provider failures inside a tier are
// swallowed and logged; the cascade's guaranteed tier means a reachable
// service never yields an empty list.
func (rv *Resolver) Resolve(ctx context.Context, subject string, prof profile.BusinessProfile, scope string) []Candidate {
	if scope != ScopeNational {
		scope = ScopeLocal
	}
	r := &resolution{
		subject: domains.Normalize(subject),
		prof:    prof,
		scope:   scope,
		seen:    map[string]struct{}{},
	}

	tiers := []tier{
		{name: "ai_suggested", scopes: []string{ScopeLocal}, run: rv.aiSuggestedTier},
		{name: "serp", scopes: []string{ScopeLocal}, run: rv.serpTier},
		{name: "curated_local", scopes: []string{ScopeLocal}, onlyIfEmpty: true, run: rv.curatedLocalTier},
		{name: "organic_keywords", scopes: []string{ScopeNational}, satisfiedAt: organicSufficient, run: rv.organicKeywordTier},
		{name: "curated_directory", run: rv.curatedDirectoryTier},
		{name: "guaranteed", onlyIfEmpty: true, run: rv.guaranteedTier},
	}

	for _, t := range tiers {
		if len(r.accepted) >= TargetCandidates {
			break
		}
		if !t.applies(scope) {
			continue
		}
		if t.onlyIfEmpty && len(r.accepted) > 0 {
			continue
		}

		before := len(r.accepted)
		for _, cand := range t.run(ctx, r) {
			if len(r.accepted) >= TargetCandidates {
				break
			}
			r.accept(cand)
		}
		telemetry.Info("competitors.tier", map[string]any{
			"tier":     t.name,
			"scope":    scope,
			"subject":  r.subject,
			"accepted": len(r.accepted) - before,
			"total":    len(r.accepted),
		})

		if t.satisfiedAt > 0 && len(r.accepted) >= t.satisfiedAt {
			break
		}
	}

	return r.accepted
}

func (t tier) applies(scope string) bool {
	if len(t.scopes) == 0 {
		return true
	}
	for _, s := range t.scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// accept adds a candidate unless it is blacklisted, the subject itself, or a
// duplicate of one already accepted. Candidates reaching here have already
// been validated (or come from the pre-vetted guaranteed table).
func (r *resolution) accept(cand Candidate) {
	normalized := domains.Normalize(cand.Domain)
	if normalized == "" || normalized == r.subject {
		return
	}
	if domains.Blacklisted(normalized) {
		return
	}
	if _, dup := r.seen[normalized]; dup {
		return
	}
	r.seen[normalized] = struct{}{}
	cand.Domain = normalized
	r.accepted = append(r.accepted, cand)
}

// eligible reports whether a raw candidate is worth validating.
func (r *resolution) eligible(domain string) bool {
	normalized := domains.Normalize(domain)
	if normalized == "" || normalized == r.subject {
		return false
	}
	if domains.Blacklisted(normalized) {
		return false
	}
	_, dup := r.seen[normalized]
	return !dup
}

// validateCandidates probes candidates through the validator's batch and
// returns the validated subset in input order.
func (rv *Resolver) validateCandidates(ctx context.Context, cands []Candidate) []Candidate {
	if len(cands) == 0 {
		return nil
	}
	if len(cands) > maxRawCandidates {
		cands = cands[:maxRawCandidates]
	}

	doms := make([]string, len(cands))
	for i, cand := range cands {
		doms[i] = cand.Domain
	}
	live := make(map[string]struct{}, len(doms))
	for _, d := range rv.Validator.ValidateBatch(ctx, doms) {
		live[d] = struct{}{}
	}

	valid := make([]Candidate, 0, len(cands))
	for _, cand := range cands {
		if _, ok := live[cand.Domain]; ok {
			valid = append(valid, cand)
		}
	}
	return valid
}

const suggestPromptTemplate = `List up to %d real companies in the %s industry that serve %s. Respond with a JSON array only, each element: {"name": string, "domain": string, "description": string}. Use the company's primary website domain. No prose.`

// aiSuggestedTier asks the text-completion capability for local competitors.
func (rv *Resolver) aiSuggestedTier(ctx context.Context, r *resolution) []Candidate {
	if !llm.Available(rv.LLM) {
		return nil
	}
	location := r.prof.LocationLabel()
	if location == "" {
		location = "the United States"
	}

	prompt := fmt.Sprintf(suggestPromptTemplate, maxRawCandidates/2, r.prof.Industry, location)
	raw, err := rv.LLM.Complete(ctx, prompt)
	rv.recordCost("openai", "suggest_competitors", 2)
	if err != nil {
		tierFailed("ai_suggested", err)
		return nil
	}

	var suggested []struct {
		Name        string `json:"name"`
		Domain      string `json:"domain"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal([]byte(extractJSONArray(raw)), &suggested); err != nil {
		tierFailed("ai_suggested", fmt.Errorf("parse suggestions: %w", err))
		return nil
	}

	var cands []Candidate
	for _, s := range suggested {
		if !r.eligible(s.Domain) {
			continue
		}
		cands = append(cands, Candidate{
			Domain:      s.Domain,
			Name:        s.Name,
			Description: s.Description,
			Similarity:  0.7,
			Source:      SourceAISuggested,
		})
	}
	return rv.validateCandidates(ctx, cands)
}

// serpTier queries organic search results for the primary service near the
// subject's location.
func (rv *Resolver) serpTier(ctx context.Context, r *resolution) []Candidate {
	if rv.Keywords == nil || !rv.Keywords.Available() {
		return nil
	}
	location := r.prof.LocationLabel()
	if location == "" {
		return nil
	}

	query := fmt.Sprintf("%s companies %s", r.prof.PrimaryService(), location)
	results, err := rv.Keywords.SearchOrganic(ctx, query)
	rv.recordCost("dataforseo", "serp_search", 3)
	if err != nil {
		tierFailed("serp", err)
		return nil
	}

	var cands []Candidate
	for _, res := range results {
		if !r.eligible(res.Domain) {
			continue
		}
		cands = append(cands, Candidate{
			Domain:      res.Domain,
			Name:        nameFromSERPTitle(res.Title, res.Domain),
			Description: res.Description,
			Similarity:  0.65,
			Source:      SourceSERP,
		})
	}
	return rv.validateCandidates(ctx, cands)
}

// curatedLocalTier serves the hand-maintained regional table, falling back to
// national franchises when the state is unknown or unlisted.
func (rv *Resolver) curatedLocalTier(ctx context.Context, r *resolution) []Candidate {
	var table []Candidate
	if r.prof.Location != nil {
		if byState, ok := curatedLocal[r.prof.Industry]; ok {
			table = byState[strings.ToUpper(r.prof.Location.State)]
		}
	}
	if len(table) == 0 {
		table = curatedNationalFranchises[r.prof.Industry]
	}

	var cands []Candidate
	for _, cand := range table {
		if r.eligible(cand.Domain) {
			cands = append(cands, cand)
		}
	}
	return rv.validateCandidates(ctx, cands)
}

// organicKeywordTier ranks domains by keyword overlap with the subject.
func (rv *Resolver) organicKeywordTier(ctx context.Context, r *resolution) []Candidate {
	if rv.Keywords == nil || !rv.Keywords.Available() {
		return nil
	}

	overlaps, err := rv.Keywords.OrganicCompetitors(ctx, r.subject, maxRawCandidates)
	rv.recordCost("dataforseo", "organic_competitors", 5)
	if err != nil {
		tierFailed("organic_keywords", err)
		return nil
	}

	var cands []Candidate
	for _, oc := range overlaps {
		if !r.eligible(oc.Domain) {
			continue
		}
		cands = append(cands, Candidate{
			Domain:     oc.Domain,
			Name:       domains.Normalize(oc.Domain),
			Similarity: overlapSimilarity(oc.OverlapCount),
			Source:     SourceDataForSEO,
			Metrics: &Metrics{
				KeywordCount:    oc.KeywordCount,
				TrafficEstimate: oc.TrafficEstimate,
				OverlapCount:    oc.OverlapCount,
			},
		})
	}
	// Provider already returns overlap-ranked results; keep that order.
	return rv.validateCandidates(ctx, cands)
}

// curatedDirectoryTier serves the industry directory table.
func (rv *Resolver) curatedDirectoryTier(ctx context.Context, r *resolution) []Candidate {
	table := curatedDirectory[r.prof.Industry]
	if len(table) == 0 {
		table = curatedDirectory[classify.TagGeneral]
	}

	var cands []Candidate
	for _, cand := range table {
		if r.eligible(cand.Domain) {
			cands = append(cands, cand)
		}
	}
	return rv.validateCandidates(ctx, cands)
}

// guaranteedTier serves pre-vetted brands without validation so resolution
// can never come back empty.
func (rv *Resolver) guaranteedTier(ctx context.Context, r *resolution) []Candidate {
	_ = ctx
	table := guaranteedFallback[r.prof.Industry]
	if len(table) == 0 {
		table = guaranteedFallback[classify.TagGeneral]
	}
	return table
}

func (rv *Resolver) recordCost(provider, operation string, cents int) {
	if rv.OnCost != nil {
		rv.OnCost(provider, operation, cents)
	}
}

func tierFailed(name string, err error) {
	telemetry.Warn("competitors.tier_failed", map[string]any{
		"tier":  name,
		"error": err.Error(),
	})
}

// overlapSimilarity maps a keyword-overlap count to a similarity score. The
// mapping is monotonic and capped below 1.
func overlapSimilarity(overlap int) float64 {
	sim := 0.5 + float64(overlap)/200
	if sim > 0.95 {
		sim = 0.95
	}
	return sim
}

// extractJSONArray pulls the first JSON array out of model output that may be
// wrapped in code fences or prose.
func extractJSONArray(raw string) string {
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start < 0 || end <= start {
		return raw
	}
	return raw[start : end+1]
}

func nameFromSERPTitle(title, domain string) string {
	for _, sep := range []string{"|", " - ", "–"} {
		if idx := strings.Index(title, sep); idx > 0 {
			return strings.TrimSpace(title[:idx])
		}
	}
	if t := strings.TrimSpace(title); t != "" {
		return t
	}
	return domain
}
