package scoring

import (
	"context"
	"fmt"
)

// OnPageScorer grades the HTML head and heading structure.
type OnPageScorer struct{}

func (OnPageScorer) Category() string { return CategoryOnPage }

func (OnPageScorer) Score(ctx context.Context, site *Site) SiteScore {
	var s SiteScore
	if site == nil || site.Page == nil {
		s.Issues = append(s.Issues, "Page could not be analyzed")
		return s
	}
	p := site.Page
	score := 20.0

	switch n := len(p.Title); {
	case n == 0:
		s.Issues = append(s.Issues, "Missing page title")
		s.Recommendations = append(s.Recommendations, "Write a descriptive title under 60 characters")
	case n > 70:
		score += 10
		s.Issues = append(s.Issues, fmt.Sprintf("Title is %d characters, likely truncated in results", n))
	default:
		score += 20
		s.Evidence = append(s.Evidence, fmt.Sprintf("Title present (%d characters)", n))
	}

	switch n := len(p.MetaDescription); {
	case n == 0:
		s.Issues = append(s.Issues, "Missing meta description")
		s.Recommendations = append(s.Recommendations, "Add a meta description of 120 to 160 characters")
	case n < 50 || n > 170:
		score += 10
		s.Issues = append(s.Issues, fmt.Sprintf("Meta description is %d characters, outside the useful range", n))
	default:
		score += 20
		s.Evidence = append(s.Evidence, "Meta description is well sized")
	}

	switch p.H1Count {
	case 1:
		score += 20
		s.Evidence = append(s.Evidence, "Exactly one H1 heading")
	case 0:
		s.Issues = append(s.Issues, "No H1 heading")
		s.Recommendations = append(s.Recommendations, "Add a single H1 naming the primary service")
	default:
		score += 8
		s.Issues = append(s.Issues, fmt.Sprintf("%d H1 headings, expected one", p.H1Count))
	}

	if p.H2Count > 0 {
		score += 15
		s.Evidence = append(s.Evidence, fmt.Sprintf("%d H2 section headings", p.H2Count))
	} else {
		s.Issues = append(s.Issues, "No H2 section headings")
	}

	if p.HasOpenGraph {
		score += 15
		s.Evidence = append(s.Evidence, "Open Graph tags present")
	} else {
		s.Recommendations = append(s.Recommendations, "Add Open Graph tags for link sharing")
	}

	if p.ImageCount > 0 && p.ImagesMissingAlt == 0 {
		score += 10
		s.Evidence = append(s.Evidence, "All images have alt text")
	} else if p.ImagesMissingAlt > 0 {
		s.Issues = append(s.Issues, fmt.Sprintf("%d of %d images missing alt text", p.ImagesMissingAlt, p.ImageCount))
	}

	s.Score = clamp(score)
	return s
}
