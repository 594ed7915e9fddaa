package domains

// Domains that are never valid competitors: platforms, social networks,
// marketplaces, directories, review sites, and website builders.
var blacklist = map[string]struct{}{
	"google.com":        {},
	"youtube.com":       {},
	"facebook.com":      {},
	"instagram.com":     {},
	"twitter.com":       {},
	"x.com":             {},
	"linkedin.com":      {},
	"pinterest.com":     {},
	"tiktok.com":        {},
	"reddit.com":        {},
	"amazon.com":        {},
	"ebay.com":          {},
	"etsy.com":          {},
	"walmart.com":       {},
	"wikipedia.org":     {},
	"yelp.com":          {},
	"angi.com":          {},
	"angieslist.com":    {},
	"homeadvisor.com":   {},
	"thumbtack.com":     {},
	"houzz.com":         {},
	"bbb.org":           {},
	"yellowpages.com":   {},
	"mapquest.com":      {},
	"foursquare.com":    {},
	"tripadvisor.com":   {},
	"glassdoor.com":     {},
	"indeed.com":        {},
	"craigslist.org":    {},
	"nextdoor.com":      {},
	"trustpilot.com":    {},
	"wix.com":           {},
	"squarespace.com":   {},
	"wordpress.com":     {},
	"godaddy.com":       {},
	"shopify.com":       {},
	"weebly.com":        {},
	"webflow.com":       {},
	"blogspot.com":      {},
	"medium.com":        {},
	"apple.com":         {},
	"microsoft.com":     {},
	"zillow.com":        {},
	"realtor.com":       {},
	"groupon.com":       {},
	"patch.com":         {},
	"chamberofcommerce.com": {},
	"manta.com":         {},
	"porch.com":         {},
}

// Blacklisted reports whether the domain can never be a competitor. The check
// is by exact match after normalization.
func Blacklisted(domain string) bool {
	_, ok := blacklist[Normalize(domain)]
	return ok
}
