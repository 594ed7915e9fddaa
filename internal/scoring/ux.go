package scoring

import (
	"context"
	"fmt"
)

// UXScorer grades navigability and conversion affordances.
type UXScorer struct{}

func (UXScorer) Category() string { return CategoryUX }

func (UXScorer) Score(ctx context.Context, site *Site) SiteScore {
	var s SiteScore
	if site == nil || site.Page == nil {
		s.Issues = append(s.Issues, "Page could not be analyzed")
		return s
	}
	p := site.Page
	score := 15.0

	if p.HasViewport {
		score += 25
		s.Evidence = append(s.Evidence, "Page is mobile-ready")
	} else {
		s.Issues = append(s.Issues, "Page is not mobile-ready")
		s.Recommendations = append(s.Recommendations, "Add a responsive viewport and test on mobile widths")
	}

	if p.HasNav {
		score += 20
		s.Evidence = append(s.Evidence, "Navigation landmark present")
	} else {
		s.Issues = append(s.Issues, "No navigation landmark found")
	}

	switch {
	case p.CTACount >= 2:
		score += 25
		s.Evidence = append(s.Evidence, fmt.Sprintf("%d calls to action on the page", p.CTACount))
	case p.CTACount == 1:
		score += 15
		s.Evidence = append(s.Evidence, "One call to action on the page")
		s.Recommendations = append(s.Recommendations, "Repeat the primary call to action after each major section")
	default:
		s.Issues = append(s.Issues, "No clear call to action")
		s.Recommendations = append(s.Recommendations, "Add a prominent contact or quote button above the fold")
	}

	if p.ImageCount > 0 && p.ImagesMissingAlt == 0 {
		score += 15
		s.Evidence = append(s.Evidence, "Images are accessible")
	} else if p.ImagesMissingAlt > 0 {
		score += 5
		s.Issues = append(s.Issues, "Some images lack alt text for assistive technology")
	}

	s.Score = clamp(score)
	return s
}
