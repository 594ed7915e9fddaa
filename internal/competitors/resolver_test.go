package competitors

import (
	"context"
	"errors"
	"math"
	"testing"

	"rivalscan-backend/internal/classify"
	"rivalscan-backend/internal/keywordintel"
	"rivalscan-backend/internal/llm"
	"rivalscan-backend/internal/profile"
)

type fakeLLM struct {
	resp string
	err  error
}

func (f fakeLLM) Complete(ctx context.Context, prompt string) (string, error) {
	return f.resp, f.err
}

type fakeKeywords struct {
	available bool
	organic   []keywordintel.OrganicCompetitor
	serp      []keywordintel.SERPResult
	err       error
}

func (f fakeKeywords) Available() bool { return f.available }

func (f fakeKeywords) OrganicCompetitors(ctx context.Context, domain string, limit int) ([]keywordintel.OrganicCompetitor, error) {
	return f.organic, f.err
}

func (f fakeKeywords) Gap(ctx context.Context, subject, competitor string) (keywordintel.KeywordGap, error) {
	return keywordintel.KeywordGap{}, f.err
}

func (f fakeKeywords) SearchOrganic(ctx context.Context, query string) ([]keywordintel.SERPResult, error) {
	return f.serp, f.err
}

// allowAll validates every domain.
type allowAll struct{}

func (allowAll) ValidateBatch(ctx context.Context, ds []string) []string { return ds }

// allowOnly validates only listed domains.
type allowOnly map[string]bool

func (a allowOnly) ValidateBatch(ctx context.Context, ds []string) []string {
	var out []string
	for _, d := range ds {
		if a[d] {
			out = append(out, d)
		}
	}
	return out
}

func hvacProfile() profile.BusinessProfile {
	return profile.BusinessProfile{
		Name:     "Acme HVAC",
		Industry: classify.TagHVAC,
		Services: []string{"ac repair"},
		Location: &profile.Location{City: "Austin", State: "TX"},
	}
}

func TestResolveAISuggested(t *testing.T) {
	rv := &Resolver{
		LLM: fakeLLM{resp: `[
			{"name": "Cool Air Co", "domain": "coolairco.com", "description": "HVAC in Austin"},
			{"name": "Acme HVAC", "domain": "acme-hvac.com", "description": "the subject itself"},
			{"name": "Yelp", "domain": "yelp.com", "description": "a directory"},
			{"name": "Frosty Techs", "domain": "frostytechs.com", "description": "AC repair"}
		]`},
		Keywords:  keywordintel.Unavailable{},
		Validator: allowAll{},
	}

	got := rv.Resolve(context.Background(), "acme-hvac.com", hvacProfile(), ScopeLocal)
	if len(got) == 0 {
		t.Fatal("expected candidates")
	}
	for _, c := range got {
		if c.Domain == "acme-hvac.com" {
			t.Error("subject returned as its own competitor")
		}
		if c.Domain == "yelp.com" {
			t.Error("blacklisted domain returned")
		}
	}
	if got[0].Domain != "coolairco.com" || got[0].Source != SourceAISuggested {
		t.Errorf("first candidate = %+v", got[0])
	}
}

func TestResolveFallsThroughToCurated(t *testing.T) {
	// AI returns garbage and SERP is unavailable, so local scope must fall
	// through to the curated table and still produce validated candidates.
	rv := &Resolver{
		LLM:       fakeLLM{resp: "no structured output here"},
		Keywords:  keywordintel.Unavailable{},
		Validator: allowAll{},
	}

	got := rv.Resolve(context.Background(), "acme-hvac.com", hvacProfile(), ScopeLocal)
	if len(got) == 0 {
		t.Fatal("expected curated candidates")
	}
	for _, c := range got {
		if c.Source != SourceDirectory {
			t.Errorf("unexpected source %q for %s", c.Source, c.Domain)
		}
	}
}

func TestResolveNationalUsesKeywordOverlap(t *testing.T) {
	rv := &Resolver{
		LLM: llm.Unavailable{},
		Keywords: fakeKeywords{
			available: true,
			organic: []keywordintel.OrganicCompetitor{
				{Domain: "bigrival.com", OverlapCount: 120, KeywordCount: 900, TrafficEstimate: 40000},
				{Domain: "midrival.com", OverlapCount: 40, KeywordCount: 300, TrafficEstimate: 8000},
				{Domain: "smallrival.com", OverlapCount: 10, KeywordCount: 90, TrafficEstimate: 500},
			},
		},
		Validator: allowAll{},
	}

	got := rv.Resolve(context.Background(), "acme-hvac.com", hvacProfile(), ScopeNational)
	if len(got) != 3 {
		t.Fatalf("got %d candidates, want 3", len(got))
	}
	if got[0].Domain != "bigrival.com" || got[0].Source != SourceDataForSEO {
		t.Errorf("first candidate = %+v", got[0])
	}
	if got[0].Similarity <= got[1].Similarity {
		t.Errorf("similarity not monotonic: %v then %v", got[0].Similarity, got[1].Similarity)
	}
	if got[0].Metrics == nil || got[0].Metrics.OverlapCount != 120 {
		t.Errorf("metrics = %+v", got[0].Metrics)
	}
}

func TestResolveNationalSkipsUnavailableProvider(t *testing.T) {
	rv := &Resolver{
		LLM:       llm.Unavailable{},
		Keywords:  keywordintel.Unavailable{},
		Validator: allowAll{},
	}

	got := rv.Resolve(context.Background(), "acme-hvac.com", hvacProfile(), ScopeNational)
	if len(got) == 0 {
		t.Fatal("expected directory candidates when keyword provider is unavailable")
	}
	for _, c := range got {
		if c.Source == SourceDataForSEO {
			t.Errorf("keyword tier ran despite unavailable provider: %+v", c)
		}
	}
}

func TestResolveProviderErrorDoesNotAbort(t *testing.T) {
	rv := &Resolver{
		LLM:       llm.Unavailable{},
		Keywords:  fakeKeywords{available: true, err: errors.New("quota exceeded")},
		Validator: allowAll{},
	}

	got := rv.Resolve(context.Background(), "acme-hvac.com", hvacProfile(), ScopeNational)
	if len(got) == 0 {
		t.Fatal("expected candidates despite provider error")
	}
}

func TestResolveGuaranteedFallback(t *testing.T) {
	// Nothing validates, so only the guaranteed tier can produce output.
	rv := &Resolver{
		LLM:       llm.Unavailable{},
		Keywords:  keywordintel.Unavailable{},
		Validator: allowOnly{},
	}

	got := rv.Resolve(context.Background(), "acme-hvac.com", hvacProfile(), ScopeLocal)
	if len(got) == 0 {
		t.Fatal("guaranteed tier must keep the result non-empty")
	}
}

func TestResolveGuaranteedFallbackGeneralIndustry(t *testing.T) {
	rv := &Resolver{
		LLM:       llm.Unavailable{},
		Keywords:  keywordintel.Unavailable{},
		Validator: allowOnly{},
	}
	prof := profile.BusinessProfile{Name: "Mystery Co", Industry: classify.TagGeneral}

	got := rv.Resolve(context.Background(), "mysteryco.com", prof, ScopeLocal)
	if len(got) == 0 {
		t.Fatal("expected general-industry fallback")
	}
}

func TestResolveNeverReturnsBlacklisted(t *testing.T) {
	rv := &Resolver{
		LLM: fakeLLM{resp: `[
			{"name": "Yelp", "domain": "www.yelp.com"},
			{"name": "Angi", "domain": "angi.com"},
			{"name": "Facebook", "domain": "facebook.com"}
		]`},
		Keywords: fakeKeywords{
			available: true,
			serp: []keywordintel.SERPResult{
				{Domain: "yellowpages.com", Title: "Yellow Pages"},
				{Domain: "realrival.com", Title: "Real Rival | HVAC"},
			},
		},
		Validator: allowAll{},
	}

	got := rv.Resolve(context.Background(), "acme-hvac.com", hvacProfile(), ScopeLocal)
	for _, c := range got {
		for _, bad := range []string{"yelp.com", "angi.com", "facebook.com", "yellowpages.com"} {
			if c.Domain == bad {
				t.Errorf("blacklisted domain %s returned", bad)
			}
		}
	}
	found := false
	for _, c := range got {
		if c.Domain == "realrival.com" {
			found = true
			if c.Name != "Real Rival" {
				t.Errorf("serp name = %q", c.Name)
			}
		}
	}
	if !found {
		t.Error("valid serp candidate missing")
	}
}

func TestResolveDedupesAcrossTiers(t *testing.T) {
	// AI and SERP both return the same domain; it must appear once.
	rv := &Resolver{
		LLM: fakeLLM{resp: `[{"name": "Cool Air Co", "domain": "coolairco.com"}]`},
		Keywords: fakeKeywords{
			available: true,
			serp: []keywordintel.SERPResult{
				{Domain: "www.coolairco.com", Title: "Cool Air Co"},
				{Domain: "otherrival.com", Title: "Other Rival"},
			},
		},
		Validator: allowAll{},
	}

	got := rv.Resolve(context.Background(), "acme-hvac.com", hvacProfile(), ScopeLocal)
	count := 0
	for _, c := range got {
		if c.Domain == "coolairco.com" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("coolairco.com appeared %d times", count)
	}
}

func TestResolveCapsAtTarget(t *testing.T) {
	rv := &Resolver{
		LLM: fakeLLM{resp: `[
			{"name": "A", "domain": "rival-a.com"},
			{"name": "B", "domain": "rival-b.com"},
			{"name": "C", "domain": "rival-c.com"},
			{"name": "D", "domain": "rival-d.com"},
			{"name": "E", "domain": "rival-e.com"},
			{"name": "F", "domain": "rival-f.com"},
			{"name": "G", "domain": "rival-g.com"}
		]`},
		Keywords:  keywordintel.Unavailable{},
		Validator: allowAll{},
	}

	got := rv.Resolve(context.Background(), "acme-hvac.com", hvacProfile(), ScopeLocal)
	if len(got) != TargetCandidates {
		t.Errorf("got %d candidates, want %d", len(got), TargetCandidates)
	}
}

func TestResolveSkipsUnvalidatedCandidates(t *testing.T) {
	rv := &Resolver{
		LLM: fakeLLM{resp: `[
			{"name": "Live", "domain": "liverival.com"},
			{"name": "Dead", "domain": "deadrival.com"}
		]`},
		Keywords:  keywordintel.Unavailable{},
		Validator: allowOnly{"liverival.com": true},
	}

	got := rv.Resolve(context.Background(), "acme-hvac.com", hvacProfile(), ScopeLocal)
	for _, c := range got {
		if c.Domain == "deadrival.com" {
			t.Error("unvalidated domain returned")
		}
	}
}

func TestResolveRecordsCosts(t *testing.T) {
	var calls []string
	rv := &Resolver{
		LLM: fakeLLM{resp: `[{"name": "Cool Air Co", "domain": "coolairco.com"}]`},
		Keywords: fakeKeywords{
			available: true,
			serp:      []keywordintel.SERPResult{{Domain: "otherrival.com", Title: "Other Rival"}},
		},
		Validator: allowAll{},
		OnCost: func(provider, operation string, cents int) {
			calls = append(calls, provider+"/"+operation)
			if cents <= 0 {
				t.Errorf("non-positive cost for %s/%s", provider, operation)
			}
		},
	}

	rv.Resolve(context.Background(), "acme-hvac.com", hvacProfile(), ScopeLocal)
	if len(calls) < 2 {
		t.Fatalf("cost calls = %v", calls)
	}
}

func TestOverlapSimilarity(t *testing.T) {
	cases := []struct {
		overlap int
		want    float64
	}{
		{0, 0.5},
		{50, 0.75},
		{90, 0.95},
		{500, 0.95},
	}
	for _, tc := range cases {
		if got := overlapSimilarity(tc.overlap); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("overlapSimilarity(%d) = %v, want %v", tc.overlap, got, tc.want)
		}
	}
}
