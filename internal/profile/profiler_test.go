package profile

import (
	"context"
	"errors"
	"testing"

	"rivalscan-backend/internal/classify"
	"rivalscan-backend/internal/fetch"
	"rivalscan-backend/internal/llm"
)

type staticLLM struct {
	resp string
	err  error
}

func (s staticLLM) Complete(ctx context.Context, prompt string) (string, error) {
	return s.resp, s.err
}

var hvacContent = fetch.Content{
	Markdown: "# Acme HVAC\n\n## AC Repair\n\nFamily owned and operated in Austin, TX, offering ac repair and furnace installation.",
	Metadata: fetch.Metadata{
		Title:       "Acme HVAC | Austin Heating & Cooling",
		Description: "HVAC repair in Austin",
	},
}

func TestBuildFromLLM(t *testing.T) {
	p := &Profiler{LLM: staticLLM{resp: `{
		"name": "Acme HVAC",
		"industry": "hvac",
		"niche": "residential hvac",
		"services": ["ac repair", "furnace installation"],
		"targetMarket": "local",
		"city": "Austin",
		"state": "Texas",
		"businessType": "B2C",
		"keywords": ["hvac austin"]
	}`}}

	prof := p.Build(context.Background(), "acme-hvac.com", hvacContent)
	if prof.Name != "Acme HVAC" {
		t.Errorf("name = %q", prof.Name)
	}
	if prof.Industry != classify.TagHVAC {
		t.Errorf("industry = %q", prof.Industry)
	}
	if prof.TargetMarket != MarketLocal || prof.BusinessType != TypeB2C {
		t.Errorf("market/type = %q/%q", prof.TargetMarket, prof.BusinessType)
	}
	if prof.Location == nil || prof.Location.State != "TX" {
		t.Errorf("location = %+v", prof.Location)
	}
}

func TestBuildStripsCodeFence(t *testing.T) {
	p := &Profiler{LLM: staticLLM{resp: "```json\n{\"name\": \"Acme HVAC\"}\n```"}}
	prof := p.Build(context.Background(), "acme-hvac.com", hvacContent)
	if prof.Name != "Acme HVAC" {
		t.Errorf("name = %q", prof.Name)
	}
}

func TestBuildFallsBackOnLLMError(t *testing.T) {
	p := &Profiler{LLM: staticLLM{err: errors.New("rate limited")}}
	prof := p.Build(context.Background(), "acme-hvac.com", hvacContent)

	if prof.Name != "Acme HVAC" {
		t.Errorf("heuristic name = %q", prof.Name)
	}
	if prof.Industry != classify.TagHVAC {
		t.Errorf("heuristic industry = %q", prof.Industry)
	}
	if prof.Location == nil || prof.Location.City != "Austin" || prof.Location.State != "TX" {
		t.Errorf("heuristic location = %+v", prof.Location)
	}
	if prof.TargetMarket != MarketLocal {
		t.Errorf("heuristic market = %q", prof.TargetMarket)
	}
	if len(prof.Services) == 0 {
		t.Error("heuristic services empty")
	}
}

func TestBuildFallsBackOnGarbageOutput(t *testing.T) {
	p := &Profiler{LLM: staticLLM{resp: "I am sorry, I cannot help with that."}}
	prof := p.Build(context.Background(), "acme-hvac.com", hvacContent)
	if prof.Name != "Acme HVAC" {
		t.Errorf("fallback name = %q", prof.Name)
	}
}

func TestBuildWithUnavailableLLM(t *testing.T) {
	p := &Profiler{LLM: llm.Unavailable{}}
	prof := p.Build(context.Background(), "acme-hvac.com", hvacContent)
	if prof.Name == "" {
		t.Error("expected heuristic profile without LLM")
	}
}

func TestBuildRecordsCost(t *testing.T) {
	var costs []string
	record := func(provider, operation string, cents int) {
		costs = append(costs, provider+"/"+operation)
	}

	// Costs accrue per completion call, even when the output is unusable.
	p := &Profiler{LLM: staticLLM{resp: "I am sorry, I cannot help with that."}, OnCost: record}
	p.Build(context.Background(), "acme-hvac.com", hvacContent)
	if len(costs) != 1 || costs[0] != "openai/extract_profile" {
		t.Errorf("costs = %v", costs)
	}

	costs = nil
	p = &Profiler{LLM: llm.Unavailable{}, OnCost: record}
	p.Build(context.Background(), "acme-hvac.com", hvacContent)
	if len(costs) != 0 {
		t.Errorf("unavailable provider recorded costs: %v", costs)
	}
}

func TestPrimaryServiceAndLocationLabel(t *testing.T) {
	prof := BusinessProfile{
		Industry: classify.TagHVAC,
		Services: []string{"ac repair"},
		Location: &Location{City: "Austin", State: "TX"},
	}
	if got := prof.PrimaryService(); got != "ac repair" {
		t.Errorf("PrimaryService = %q", got)
	}
	if got := prof.LocationLabel(); got != "Austin, TX" {
		t.Errorf("LocationLabel = %q", got)
	}

	empty := BusinessProfile{Industry: classify.TagHVAC}
	if got := empty.PrimaryService(); got != "hvac" {
		t.Errorf("PrimaryService fallback = %q", got)
	}
	if got := empty.LocationLabel(); got != "" {
		t.Errorf("LocationLabel empty = %q", got)
	}
}
