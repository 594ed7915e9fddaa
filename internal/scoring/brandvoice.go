package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"rivalscan-backend/internal/llm"
	"rivalscan-backend/internal/shared/telemetry"
)

const brandVoicePromptTemplate = `Rate the brand voice of this website copy on a 0-100 scale for clarity, trust signals, and differentiation. Respond with a JSON object only: {"score": number, "evidence": [string], "issues": [string]}.

Copy:
%s`

const (
	maxBrandVoiceContent = 4000

	brandVoiceCostCents = 2
)

// BrandVoiceScorer grades copy tone and trust signals, preferring the LLM and
// falling back to word-list heuristics when it is unavailable or unparseable.
type BrandVoiceScorer struct {
	LLM llm.Client

	// OnCost, when set, is invoked once per completion call.
	OnCost func(provider, operation string, cents int)
}

func (BrandVoiceScorer) Category() string { return CategoryBrandVoice }

func (b BrandVoiceScorer) Score(ctx context.Context, site *Site) SiteScore {
	if site == nil || strings.TrimSpace(site.Markdown) == "" {
		return SiteScore{Issues: []string{"No copy available to evaluate"}}
	}
	if llm.Available(b.LLM) {
		if s, err := b.fromLLM(ctx, site.Markdown); err == nil {
			return s
		} else {
			telemetry.Warn("scoring.brandvoice_fallback", map[string]any{
				"url":   site.URL,
				"error": err.Error(),
			})
		}
	}
	return heuristicBrandVoice(site.Markdown)
}

func (b BrandVoiceScorer) fromLLM(ctx context.Context, markdown string) (SiteScore, error) {
	body := markdown
	if len(body) > maxBrandVoiceContent {
		body = body[:maxBrandVoiceContent]
	}
	raw, err := b.LLM.Complete(ctx, fmt.Sprintf(brandVoicePromptTemplate, body))
	if b.OnCost != nil {
		b.OnCost("openai", "brand_voice", brandVoiceCostCents)
	}
	if err != nil {
		return SiteScore{}, err
	}

	var parsed struct {
		Score    float64  `json:"score"`
		Evidence []string `json:"evidence"`
		Issues   []string `json:"issues"`
	}
	if err := json.Unmarshal([]byte(stripFence(raw)), &parsed); err != nil {
		return SiteScore{}, fmt.Errorf("brand voice parse: %w", err)
	}
	return SiteScore{
		Score:    clamp(parsed.Score),
		Evidence: parsed.Evidence,
		Issues:   parsed.Issues,
	}, nil
}

var trustSignals = []string{
	"licensed", "insured", "guarantee", "warranty", "certified", "award",
	"years of experience", "family owned", "reviews", "testimonial",
}

var genericFiller = []string{
	"best in class", "world class", "one stop shop", "cutting edge", "synergy",
}

func heuristicBrandVoice(markdown string) SiteScore {
	var s SiteScore
	text := strings.ToLower(markdown)
	score := 40.0

	found := 0
	for _, signal := range trustSignals {
		if strings.Contains(text, signal) {
			found++
		}
	}
	switch {
	case found >= 3:
		score += 35
		s.Evidence = append(s.Evidence, fmt.Sprintf("%d trust signals in the copy", found))
	case found >= 1:
		score += 20
		s.Evidence = append(s.Evidence, "Some trust signals present")
	default:
		s.Issues = append(s.Issues, "No trust signals (licensing, guarantees, reviews) in the copy")
		s.Recommendations = append(s.Recommendations, "Mention licensing, guarantees, and customer reviews")
	}

	filler := 0
	for _, phrase := range genericFiller {
		if strings.Contains(text, phrase) {
			filler++
		}
	}
	if filler > 0 {
		score -= float64(filler) * 5
		s.Issues = append(s.Issues, "Copy relies on generic marketing phrases")
	} else {
		score += 15
		s.Evidence = append(s.Evidence, "Copy avoids generic marketing filler")
	}

	if strings.Contains(text, "we ") || strings.Contains(text, "our ") {
		score += 10
		s.Evidence = append(s.Evidence, "Copy speaks in a consistent first-person voice")
	}

	s.Score = clamp(score)
	return s
}

func stripFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
