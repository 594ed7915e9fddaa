package competitors

import "rivalscan-backend/internal/classify"

// curatedLocal maps industry -> US state code -> known regional competitors.
// Used only when AI and SERP discovery both come up empty.
var curatedLocal = map[classify.Tag]map[string][]Candidate{
	classify.TagHVAC: {
		"TX": {
			{Domain: "abacusplumbing.com", Name: "Abacus Plumbing & Air Conditioning", Source: SourceDirectory, Similarity: 0.6},
			{Domain: "strandbrothers.com", Name: "Strand Brothers Service Experts", Source: SourceDirectory, Similarity: 0.6},
		},
		"FL": {
			{Domain: "delair.com", Name: "Del-Air Heating & Air Conditioning", Source: SourceDirectory, Similarity: 0.6},
		},
		"CA": {
			{Domain: "servicechampions.com", Name: "Service Champions", Source: SourceDirectory, Similarity: 0.6},
		},
	},
	classify.TagPlumbing: {
		"TX": {
			{Domain: "radiantplumbing.com", Name: "Radiant Plumbing & Air Conditioning", Source: SourceDirectory, Similarity: 0.6},
		},
	},
}

// curatedNationalFranchises maps industry -> national franchise competitors,
// used for local scope when no state table applies.
var curatedNationalFranchises = map[classify.Tag][]Candidate{
	classify.TagHVAC: {
		{Domain: "onehourheatandair.com", Name: "One Hour Heating & Air Conditioning", Source: SourceDirectory, Similarity: 0.55},
		{Domain: "aireserv.com", Name: "Aire Serv", Source: SourceDirectory, Similarity: 0.55},
		{Domain: "horizonservices.com", Name: "Horizon Services", Source: SourceDirectory, Similarity: 0.55},
	},
	classify.TagPlumbing: {
		{Domain: "mrrooter.com", Name: "Mr. Rooter Plumbing", Source: SourceDirectory, Similarity: 0.55},
		{Domain: "rotorooter.com", Name: "Roto-Rooter", Source: SourceDirectory, Similarity: 0.55},
	},
	classify.TagElectrical: {
		{Domain: "mrelectric.com", Name: "Mr. Electric", Source: SourceDirectory, Similarity: 0.55},
	},
	classify.TagRoofing: {
		{Domain: "mightydogroofing.com", Name: "Mighty Dog Roofing", Source: SourceDirectory, Similarity: 0.55},
	},
	classify.TagCleaning: {
		{Domain: "mollymaid.com", Name: "Molly Maid", Source: SourceDirectory, Similarity: 0.55},
		{Domain: "merrymaids.com", Name: "Merry Maids", Source: SourceDirectory, Similarity: 0.55},
	},
	classify.TagPestControl: {
		{Domain: "orkin.com", Name: "Orkin", Source: SourceDirectory, Similarity: 0.55},
		{Domain: "terminix.com", Name: "Terminix", Source: SourceDirectory, Similarity: 0.55},
	},
	classify.TagLandscaping: {
		{Domain: "trugreen.com", Name: "TruGreen", Source: SourceDirectory, Similarity: 0.55},
	},
}

// curatedDirectory maps industry -> national competitors used by the
// always-available directory tier.
var curatedDirectory = map[classify.Tag][]Candidate{
	classify.TagHVAC: {
		{Domain: "arslservices.com", Name: "ARS/Rescue Rooter", Source: SourceDirectory, Similarity: 0.5},
		{Domain: "sereneair.com", Name: "Serene Air", Source: SourceDirectory, Similarity: 0.5},
	},
	classify.TagLegal: {
		{Domain: "morganandmorgan.com", Name: "Morgan & Morgan", Source: SourceDirectory, Similarity: 0.5},
	},
	classify.TagDental: {
		{Domain: "aspendental.com", Name: "Aspen Dental", Source: SourceDirectory, Similarity: 0.5},
	},
	classify.TagMarketing: {
		{Domain: "webfx.com", Name: "WebFX", Source: SourceDirectory, Similarity: 0.5},
		{Domain: "ignitevisibility.com", Name: "Ignite Visibility", Source: SourceDirectory, Similarity: 0.5},
	},
	classify.TagSoftware: {
		{Domain: "thoughtbot.com", Name: "thoughtbot", Source: SourceDirectory, Similarity: 0.5},
	},
	classify.TagGeneral: {
		{Domain: "expertise.com", Name: "Expertise.com", Source: SourceDirectory, Similarity: 0.3},
	},
}

// guaranteedFallback maps industry -> pre-vetted major brands. These domains
// are maintained by hand and skip validation, so the resolver can never return
// an empty list while the process is healthy.
var guaranteedFallback = map[classify.Tag][]Candidate{
	classify.TagHVAC: {
		{Domain: "onehourheatandair.com", Name: "One Hour Heating & Air Conditioning", Source: SourceDirectory, Similarity: 0.5},
		{Domain: "aireserv.com", Name: "Aire Serv", Source: SourceDirectory, Similarity: 0.5},
	},
	classify.TagPlumbing: {
		{Domain: "rotorooter.com", Name: "Roto-Rooter", Source: SourceDirectory, Similarity: 0.5},
	},
	classify.TagPestControl: {
		{Domain: "orkin.com", Name: "Orkin", Source: SourceDirectory, Similarity: 0.5},
	},
	classify.TagMarketing: {
		{Domain: "webfx.com", Name: "WebFX", Source: SourceDirectory, Similarity: 0.5},
	},
	classify.TagGeneral: {
		{Domain: "neighborly.com", Name: "Neighborly", Source: SourceDirectory, Similarity: 0.2},
	},
}
