package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"rivalscan-backend/internal/classify"
	"rivalscan-backend/internal/fetch"
	"rivalscan-backend/internal/llm"
	"rivalscan-backend/internal/shared/telemetry"
)

const profilePromptTemplate = `You are analyzing a business website. From the page content below, extract a JSON object with exactly these fields:
{"name": string, "industry": string, "niche": string, "services": [string], "targetMarket": "local"|"regional"|"national"|"unknown", "city": string, "state": string, "businessType": "B2B"|"B2C"|"both"|"unknown", "keywords": [string]}
Use empty strings or empty arrays when a field cannot be determined. Respond with the JSON object only, no prose.

Domain: %s

Page content:
%s`

const (
	maxPromptContent = 6000

	extractProfileCostCents = 2
)

// Profiler builds a BusinessProfile from fetched content, preferring the LLM
// and falling back to deterministic text heuristics.
type Profiler struct {
	LLM llm.Client

	// OnCost, when set, is invoked once per completion call.
	OnCost func(provider, operation string, cents int)
}

// Build extracts a profile for the given domain from its page content. It
// never fails: when the LLM is unavailable or returns garbage, the heuristic
// path produces a usable profile.
func (p *Profiler) Build(ctx context.Context, domain string, content fetch.Content) BusinessProfile {
	if llm.Available(p.LLM) {
		prof, err := p.fromLLM(ctx, domain, content)
		if err == nil {
			return prof
		}
		telemetry.Warn("profile.llm_fallback", map[string]any{
			"domain": domain,
			"error":  err.Error(),
		})
	}
	return heuristicProfile(domain, content)
}

type llmProfile struct {
	Name         string   `json:"name"`
	Industry     string   `json:"industry"`
	Niche        string   `json:"niche"`
	Services     []string `json:"services"`
	TargetMarket string   `json:"targetMarket"`
	City         string   `json:"city"`
	State        string   `json:"state"`
	BusinessType string   `json:"businessType"`
	Keywords     []string `json:"keywords"`
}

func (p *Profiler) fromLLM(ctx context.Context, domain string, content fetch.Content) (BusinessProfile, error) {
	body := content.Markdown
	if len(body) > maxPromptContent {
		body = body[:maxPromptContent]
	}
	raw, err := p.LLM.Complete(ctx, fmt.Sprintf(profilePromptTemplate, domain, body))
	if p.OnCost != nil {
		p.OnCost("openai", "extract_profile", extractProfileCostCents)
	}
	if err != nil {
		return BusinessProfile{}, err
	}

	var parsed llmProfile
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &parsed); err != nil {
		return BusinessProfile{}, fmt.Errorf("llm profile parse: %w", err)
	}
	if strings.TrimSpace(parsed.Name) == "" {
		return BusinessProfile{}, fmt.Errorf("llm profile missing name")
	}

	prof := BusinessProfile{
		Name:         strings.TrimSpace(parsed.Name),
		Industry:     classify.Industry(parsed.Industry, parsed.Niche, parsed.Name, strings.Join(parsed.Services, " ")),
		Niche:        strings.TrimSpace(parsed.Niche),
		Services:     trimAll(parsed.Services),
		TargetMarket: normalizeMarket(parsed.TargetMarket),
		BusinessType: normalizeType(parsed.BusinessType),
		Keywords:     trimAll(parsed.Keywords),
	}
	if parsed.City != "" || parsed.State != "" {
		prof.Location = &Location{
			City:  strings.TrimSpace(parsed.City),
			State: normalizeState(parsed.State),
		}
	}
	return prof, nil
}

// stripCodeFence removes a surrounding markdown code fence some models insist
// on adding around JSON output.
func stripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

var serviceKeywords = []string{
	"ac repair", "furnace installation", "duct cleaning", "water heater repair",
	"drain cleaning", "panel upgrades", "roof replacement", "gutter installation",
	"lawn care", "tree removal", "house cleaning", "pest control", "termite treatment",
	"tax preparation", "bookkeeping", "estate planning", "personal injury",
	"teeth whitening", "implants", "web design", "seo", "ppc management",
	"kitchen remodeling", "bathroom remodeling",
}

// cityStatePattern matches "Austin, TX" style fragments.
var cityStatePattern = regexp.MustCompile(`\b([A-Z][a-zA-Z]+(?: [A-Z][a-zA-Z]+)?),\s*([A-Z]{2})\b`)

func heuristicProfile(domain string, content fetch.Content) BusinessProfile {
	title := content.Metadata.Title
	text := strings.ToLower(content.Markdown)

	name := nameFromTitle(title)
	if name == "" {
		name = domain
	}

	var services []string
	for _, kw := range serviceKeywords {
		if strings.Contains(text, kw) {
			services = append(services, kw)
		}
		if len(services) >= 5 {
			break
		}
	}

	prof := BusinessProfile{
		Name:         name,
		Industry:     classify.Industry(title, content.Metadata.Description, content.Markdown),
		Services:     services,
		TargetMarket: MarketUnknown,
		BusinessType: TypeUnknown,
		Keywords:     keywordsFromHeadings(content.Markdown),
	}

	if m := cityStatePattern.FindStringSubmatch(content.Markdown); m != nil {
		prof.Location = &Location{City: m[1], State: m[2]}
		prof.TargetMarket = MarketLocal
	} else if strings.Contains(text, "nationwide") || strings.Contains(text, "across the country") {
		prof.TargetMarket = MarketNational
	}

	return prof
}

// nameFromTitle takes the first segment of a "Name | Tagline" or
// "Name - Tagline" page title.
func nameFromTitle(title string) string {
	for _, sep := range []string{"|", " - ", "–", "—"} {
		if idx := strings.Index(title, sep); idx > 0 {
			return strings.TrimSpace(title[:idx])
		}
	}
	return strings.TrimSpace(title)
}

func keywordsFromHeadings(markdown string) []string {
	var keywords []string
	seen := map[string]struct{}{}
	for _, line := range strings.Split(markdown, "\n") {
		if !strings.HasPrefix(line, "#") {
			continue
		}
		heading := strings.ToLower(strings.TrimSpace(strings.TrimLeft(line, "# ")))
		if heading == "" {
			continue
		}
		if _, ok := seen[heading]; ok {
			continue
		}
		seen[heading] = struct{}{}
		keywords = append(keywords, heading)
		if len(keywords) >= 8 {
			break
		}
	}
	return keywords
}

func normalizeMarket(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case MarketLocal:
		return MarketLocal
	case MarketRegional:
		return MarketRegional
	case MarketNational:
		return MarketNational
	default:
		return MarketUnknown
	}
}

func normalizeType(raw string) string {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "B2B":
		return TypeB2B
	case "B2C":
		return TypeB2C
	case "BOTH":
		return TypeBoth
	default:
		return TypeUnknown
	}
}

var stateNames = map[string]string{
	"alabama": "AL", "alaska": "AK", "arizona": "AZ", "arkansas": "AR",
	"california": "CA", "colorado": "CO", "connecticut": "CT", "delaware": "DE",
	"florida": "FL", "georgia": "GA", "hawaii": "HI", "idaho": "ID",
	"illinois": "IL", "indiana": "IN", "iowa": "IA", "kansas": "KS",
	"kentucky": "KY", "louisiana": "LA", "maine": "ME", "maryland": "MD",
	"massachusetts": "MA", "michigan": "MI", "minnesota": "MN", "mississippi": "MS",
	"missouri": "MO", "montana": "MT", "nebraska": "NE", "nevada": "NV",
	"new hampshire": "NH", "new jersey": "NJ", "new mexico": "NM", "new york": "NY",
	"north carolina": "NC", "north dakota": "ND", "ohio": "OH", "oklahoma": "OK",
	"oregon": "OR", "pennsylvania": "PA", "rhode island": "RI", "south carolina": "SC",
	"south dakota": "SD", "tennessee": "TN", "texas": "TX", "utah": "UT",
	"vermont": "VT", "virginia": "VA", "washington": "WA", "west virginia": "WV",
	"wisconsin": "WI", "wyoming": "WY",
}

// normalizeState maps a full US state name or code to its two-letter code.
func normalizeState(raw string) string {
	s := strings.TrimSpace(raw)
	if len(s) == 2 {
		return strings.ToUpper(s)
	}
	if code, ok := stateNames[strings.ToLower(s)]; ok {
		return code
	}
	return s
}

func trimAll(items []string) []string {
	var out []string
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
