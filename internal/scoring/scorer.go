package scoring

import (
	"context"

	"rivalscan-backend/internal/keywordintel"
	"rivalscan-backend/internal/perfaudit"
)

// Comparison statuses, always from the subject's point of view.
const (
	StatusWinning = "winning"
	StatusLosing  = "losing"
	StatusTied    = "tied"
)

// tieBand is the absolute score delta inside which two sites are tied.
const tieBand = 3.0

// Site is everything the scorers know about one fetched site. Perf and
// KeywordGap are nil when their providers were unavailable.
type Site struct {
	URL        string
	Page       *Page
	Markdown   string
	Perf       *perfaudit.Report
	KeywordGap *keywordintel.KeywordGap
}

// Subscore is one weighted component inside a category.
type Subscore struct {
	Name     string   `json:"name"`
	Score    float64  `json:"score"`
	Weight   float64  `json:"weight"`
	Evidence []string `json:"evidence,omitempty"`
	Issues   []string `json:"issues,omitempty"`
}

// SiteScore is one scorer's verdict on one site.
type SiteScore struct {
	Score           float64
	Evidence        []string
	Issues          []string
	Recommendations []string
	Subscores       []Subscore
}

// CategoryScore compares subject and competitor within one category. The
// evidence, issues, and recommendations describe the subject site.
type CategoryScore struct {
	Category        string     `json:"category"`
	SubjectScore    float64    `json:"subjectScore"`
	CompetitorScore float64    `json:"competitorScore"`
	Status          string     `json:"status"`
	Evidence        []string   `json:"evidence,omitempty"`
	Issues          []string   `json:"issues,omitempty"`
	Recommendations []string   `json:"recommendations,omitempty"`
	Subscores       []Subscore `json:"subscores,omitempty"`
}

// Scorer evaluates a single site within one category. Implementations must
// not panic on nil or zero-signal input; a weak site is a low score, not an
// error.
type Scorer interface {
	Category() string
	Score(ctx context.Context, site *Site) SiteScore
}

// Merge combines per-site verdicts into a category comparison.
func Merge(category string, subject, competitor SiteScore) CategoryScore {
	return CategoryScore{
		Category:        category,
		SubjectScore:    clamp(subject.Score),
		CompetitorScore: clamp(competitor.Score),
		Status:          statusFor(subject.Score, competitor.Score),
		Evidence:        subject.Evidence,
		Issues:          subject.Issues,
		Recommendations: subject.Recommendations,
		Subscores:       subject.Subscores,
	}
}

func statusFor(subject, competitor float64) string {
	delta := clamp(subject) - clamp(competitor)
	switch {
	case delta > tieBand:
		return StatusWinning
	case delta < -tieBand:
		return StatusLosing
	default:
		return StatusTied
	}
}

func clamp(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
