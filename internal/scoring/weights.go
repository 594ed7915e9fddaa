package scoring

// Category names.
const (
	CategoryTechnical  = "technical"
	CategoryOnPage     = "onpage"
	CategoryContent    = "content"
	CategoryAIReady    = "aiready"
	CategoryBrandVoice = "brandvoice"
	CategoryUX         = "ux"
)

// Weights assigns each category its share of the aggregate score. The values
// sum to 100.
var Weights = map[string]float64{
	CategoryTechnical:  25,
	CategoryOnPage:     20,
	CategoryContent:    20,
	CategoryAIReady:    15,
	CategoryBrandVoice: 10,
	CategoryUX:         10,
}

// Aggregate computes the weighted overall score for both sides. The same
// formula runs on subject and competitor scores so the comparison stays
// symmetric. Categories missing from Weights contribute nothing.
func Aggregate(scores []CategoryScore) (subject, competitor float64) {
	var weightSum float64
	for _, cs := range scores {
		w, ok := Weights[cs.Category]
		if !ok {
			continue
		}
		subject += cs.SubjectScore * w
		competitor += cs.CompetitorScore * w
		weightSum += w
	}
	if weightSum == 0 {
		return 0, 0
	}
	return clamp(subject / weightSum), clamp(competitor / weightSum)
}

// Verdict summarizes the aggregate comparison from the subject's point of
// view, using the same tie band as per-category statuses.
func Verdict(subject, competitor float64) string {
	return statusFor(subject, competitor)
}
