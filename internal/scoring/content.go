package scoring

import (
	"context"
	"fmt"
	"strings"
)

// ContentScorer grades content depth and, when keyword intelligence supplied a
// gap report, keyword coverage against the competitor.
type ContentScorer struct{}

func (ContentScorer) Category() string { return CategoryContent }

func (ContentScorer) Score(ctx context.Context, site *Site) SiteScore {
	var s SiteScore
	if site == nil || site.Page == nil {
		s.Issues = append(s.Issues, "Page could not be analyzed")
		return s
	}
	p := site.Page
	score := 15.0

	switch {
	case p.WordCount >= 800:
		score += 35
		s.Evidence = append(s.Evidence, fmt.Sprintf("Substantial page content (%d words)", p.WordCount))
	case p.WordCount >= 300:
		score += 22
		s.Evidence = append(s.Evidence, fmt.Sprintf("Moderate page content (%d words)", p.WordCount))
	default:
		s.Issues = append(s.Issues, fmt.Sprintf("Thin page content (%d words)", p.WordCount))
		s.Recommendations = append(s.Recommendations, "Expand the page to at least 300 words covering services and service area")
	}

	headings := p.H2Count + p.H3Count
	switch {
	case headings >= 4:
		score += 20
		s.Evidence = append(s.Evidence, fmt.Sprintf("Content is organized under %d section headings", headings))
	case headings >= 1:
		score += 10
	default:
		s.Issues = append(s.Issues, "Content is not broken into sections")
	}

	if avgSentenceLength(site.Markdown) <= 25 {
		score += 15
		s.Evidence = append(s.Evidence, "Sentences are readable in length")
	} else {
		score += 5
		s.Issues = append(s.Issues, "Long average sentence length hurts readability")
	}

	if p.InternalLinks >= 5 {
		score += 15
		s.Evidence = append(s.Evidence, fmt.Sprintf("%d internal links support discovery", p.InternalLinks))
	} else {
		s.Recommendations = append(s.Recommendations, "Link to related service pages from the body content")
	}

	if gap := site.KeywordGap; gap != nil {
		sub := Subscore{Name: "keyword coverage", Weight: 20}
		total := gap.SharedKeywords + gap.CompetitorOnly
		if total > 0 {
			sub.Score = clamp(float64(gap.SharedKeywords) / float64(total) * 100)
		}
		sub.Evidence = append(sub.Evidence,
			fmt.Sprintf("Ranks for %d shared keywords; competitor ranks alone for %d", gap.SharedKeywords, gap.CompetitorOnly))
		if gap.CompetitorOnly > gap.SharedKeywords {
			sub.Issues = append(sub.Issues, "Competitor covers more unique keywords")
			s.Recommendations = append(s.Recommendations, "Create content targeting keywords the competitor ranks for alone")
		}
		s.Subscores = append(s.Subscores, sub)
		score = score*0.8 + sub.Score*0.2
	} else {
		s.Evidence = append(s.Evidence, "Keyword coverage data unavailable")
	}

	s.Score = clamp(score)
	return s
}

// avgSentenceLength is a rough readability proxy: words per sentence over the
// markdown body.
func avgSentenceLength(markdown string) float64 {
	words := len(strings.Fields(markdown))
	if words == 0 {
		return 0
	}
	sentences := strings.Count(markdown, ".") + strings.Count(markdown, "!") + strings.Count(markdown, "?")
	if sentences == 0 {
		sentences = 1
	}
	return float64(words) / float64(sentences)
}
