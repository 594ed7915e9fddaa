package scoring

import (
	"context"
	"strings"
)

// AIReadyScorer grades how well a page can be quoted by answer engines:
// structured data, question-shaped headings, and directly answerable copy.
type AIReadyScorer struct{}

func (AIReadyScorer) Category() string { return CategoryAIReady }

var questionWords = []string{"how ", "what ", "why ", "when ", "where ", "which ", "can ", "should "}

func (AIReadyScorer) Score(ctx context.Context, site *Site) SiteScore {
	var s SiteScore
	if site == nil || site.Page == nil {
		s.Issues = append(s.Issues, "Page could not be analyzed")
		return s
	}
	p := site.Page
	score := 20.0

	if p.HasStructuredData {
		score += 30
		s.Evidence = append(s.Evidence, "Structured data (JSON-LD) present")
	} else {
		s.Issues = append(s.Issues, "No structured data markup")
		s.Recommendations = append(s.Recommendations, "Add LocalBusiness and Service schema markup")
	}

	if p.HasFAQ {
		score += 25
		s.Evidence = append(s.Evidence, "FAQ content present")
	} else {
		s.Recommendations = append(s.Recommendations, "Add an FAQ section answering common customer questions")
	}

	if questions := questionHeadings(site.Markdown); questions > 0 {
		score += 15
		s.Evidence = append(s.Evidence, "Headings are phrased as questions customers ask")
	}

	if p.H2Count+p.H3Count >= 3 {
		score += 10
		s.Evidence = append(s.Evidence, "Semantic heading structure supports extraction")
	} else {
		s.Issues = append(s.Issues, "Flat heading structure makes answers hard to extract")
	}

	s.Score = clamp(score)
	return s
}

func questionHeadings(markdown string) int {
	count := 0
	for _, line := range strings.Split(markdown, "\n") {
		if !strings.HasPrefix(line, "#") {
			continue
		}
		heading := strings.ToLower(strings.TrimLeft(line, "# "))
		if strings.HasSuffix(strings.TrimSpace(heading), "?") {
			count++
			continue
		}
		for _, q := range questionWords {
			if strings.HasPrefix(heading, q) {
				count++
				break
			}
		}
	}
	return count
}
