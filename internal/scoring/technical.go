package scoring

import (
	"context"
	"fmt"
)

// TechnicalScorer grades transport security, crawlability basics, and the
// performance audit when one is available.
type TechnicalScorer struct{}

func (TechnicalScorer) Category() string { return CategoryTechnical }

func (TechnicalScorer) Score(ctx context.Context, site *Site) SiteScore {
	var s SiteScore
	if site == nil || site.Page == nil {
		s.Issues = append(s.Issues, "Page could not be analyzed")
		return s
	}
	p := site.Page

	base := baseScore(p)
	s.Subscores = append(s.Subscores, base)

	if p.HTTPS {
		s.Evidence = append(s.Evidence, "Site is served over HTTPS")
	} else {
		s.Issues = append(s.Issues, "Site is not served over HTTPS")
		s.Recommendations = append(s.Recommendations, "Serve all pages over HTTPS with a valid certificate")
	}
	if p.Canonical != "" {
		s.Evidence = append(s.Evidence, "Canonical URL is declared")
	} else {
		s.Issues = append(s.Issues, "No canonical URL declared")
		s.Recommendations = append(s.Recommendations, "Add a canonical link tag to avoid duplicate-content dilution")
	}
	if p.HasViewport {
		s.Evidence = append(s.Evidence, "Mobile viewport is configured")
	} else {
		s.Issues = append(s.Issues, "Missing mobile viewport meta tag")
	}

	if site.Perf != nil {
		perf := perfSubscore(site)
		s.Subscores = append(s.Subscores, perf)
		s.Score = base.Score*0.4 + perf.Score*0.6
		s.Recommendations = append(s.Recommendations, site.Perf.Opportunities...)
	} else {
		s.Evidence = append(s.Evidence, "Performance audit unavailable")
		s.Score = base.Score
	}
	return s
}

func baseScore(p *Page) Subscore {
	sub := Subscore{Name: "foundations", Weight: 40}
	score := 40.0
	if p.HTTPS {
		score += 25
	}
	if p.Canonical != "" {
		score += 15
	}
	if p.HasViewport {
		score += 15
	}
	if p.Title != "" {
		score += 5
	}
	sub.Score = clamp(score)
	return sub
}

func perfSubscore(site *Site) Subscore {
	r := site.Perf
	sub := Subscore{Name: "performance", Weight: 60}
	sub.Score = clamp(float64(r.PerformanceScore)*0.7 + float64(r.BestPracticesScore)*0.3)
	sub.Evidence = append(sub.Evidence,
		fmt.Sprintf("Performance score %d, best practices %d", r.PerformanceScore, r.BestPracticesScore))
	if r.CoreWebVitals.LCPMillis > 2500 {
		sub.Issues = append(sub.Issues,
			fmt.Sprintf("Largest Contentful Paint is %.1fs (target under 2.5s)", r.CoreWebVitals.LCPMillis/1000))
	}
	if r.CoreWebVitals.CLS > 0.1 {
		sub.Issues = append(sub.Issues,
			fmt.Sprintf("Cumulative Layout Shift is %.2f (target under 0.1)", r.CoreWebVitals.CLS))
	}
	return sub
}
