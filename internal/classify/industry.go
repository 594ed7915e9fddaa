// Package classify maps free-text business descriptions to industry tags.
package classify

import (
	"regexp"
	"strings"
)

// Tag is a coarse industry classification used to key curated competitor tables.
type Tag string

const (
	TagHVAC         Tag = "hvac"
	TagPlumbing     Tag = "plumbing"
	TagElectrical   Tag = "electrical"
	TagRoofing      Tag = "roofing"
	TagLandscaping  Tag = "landscaping"
	TagCleaning     Tag = "cleaning"
	TagPestControl  Tag = "pest_control"
	TagLegal        Tag = "legal"
	TagDental       Tag = "dental"
	TagMedical      Tag = "medical"
	TagRealEstate   Tag = "real_estate"
	TagAccounting   Tag = "accounting"
	TagInsurance    Tag = "insurance"
	TagAutoRepair   Tag = "auto_repair"
	TagRestaurant   Tag = "restaurant"
	TagFitness      Tag = "fitness"
	TagMarketing    Tag = "marketing"
	TagSoftware     Tag = "software"
	TagEcommerce    Tag = "ecommerce"
	TagConstruction Tag = "construction"
	TagGeneral      Tag = "general"
)

type rule struct {
	pattern *regexp.Regexp
	tag     Tag
}

// Rules are evaluated in order; the first match wins. More specific trades are
// listed before the broad ones so "hvac contractor" doesn't land on construction.
var rules = []rule{
	{regexp.MustCompile(`\b(hvac|heating|cooling|air condition|furnace|heat pump)\b`), TagHVAC},
	{regexp.MustCompile(`\b(plumb|drain|water heater|sewer)\b`), TagPlumbing},
	{regexp.MustCompile(`\b(electric|wiring|panel upgrade)\b`), TagElectrical},
	{regexp.MustCompile(`\b(roof|shingle|gutter)\b`), TagRoofing},
	{regexp.MustCompile(`\b(landscap|lawn|tree service|irrigation|mowing)\b`), TagLandscaping},
	{regexp.MustCompile(`\b(cleaning|maid|janitorial|housekeep)\b`), TagCleaning},
	{regexp.MustCompile(`\b(pest|exterminat|termite|rodent)\b`), TagPestControl},
	{regexp.MustCompile(`\b(law firm|attorney|lawyer|legal)\b`), TagLegal},
	{regexp.MustCompile(`\b(dental|dentist|orthodont)\b`), TagDental},
	{regexp.MustCompile(`\b(medical|clinic|physician|doctor|health ?care|chiropract)\b`), TagMedical},
	{regexp.MustCompile(`\b(real estate|realtor|property management|broker)\b`), TagRealEstate},
	{regexp.MustCompile(`\b(account|bookkeep|cpa|tax prep)\b`), TagAccounting},
	{regexp.MustCompile(`\b(insurance|underwrit)\b`), TagInsurance},
	{regexp.MustCompile(`\b(auto repair|mechanic|auto body|car repair|transmission)\b`), TagAutoRepair},
	{regexp.MustCompile(`\b(restaurant|cafe|catering|bakery|pizzeria)\b`), TagRestaurant},
	{regexp.MustCompile(`\b(gym|fitness|yoga|crossfit|personal train)\b`), TagFitness},
	{regexp.MustCompile(`\b(marketing|seo agency|advertis|digital agency|branding)\b`), TagMarketing},
	{regexp.MustCompile(`\b(software|saas|app develop|web develop|it services|technology)\b`), TagSoftware},
	{regexp.MustCompile(`\b(ecommerce|e-commerce|online store|online shop|retail)\b`), TagEcommerce},
	{regexp.MustCompile(`\b(construction|remodel|renovation|general contractor|builder)\b`), TagConstruction},
}

// Industry classifies the concatenation of the given text fragments into a
// single industry tag. The first matching rule wins; unmatched text maps to
// TagGeneral.
func Industry(fragments ...string) Tag {
	text := strings.ToLower(strings.Join(fragments, " "))
	for _, r := range rules {
		if r.pattern.MatchString(text) {
			return r.tag
		}
	}
	return TagGeneral
}
