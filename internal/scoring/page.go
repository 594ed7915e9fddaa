// Package scoring evaluates a site across weighted categories and merges the
// per-site results into subject-versus-competitor comparisons.
package scoring

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Page holds the signals extracted from one fetched page. The HTML is parsed
// once here; scorers read fields instead of re-walking the document.
type Page struct {
	URL             string
	Host            string
	HTTPS           bool
	Title           string
	MetaDescription string
	Canonical       string
	HasViewport     bool
	HasOpenGraph    bool

	H1Count int
	H2Count int
	H3Count int

	WordCount        int
	ImageCount       int
	ImagesMissingAlt int
	InternalLinks    int
	ExternalLinks    int

	HasStructuredData bool
	HasFAQ            bool
	HasNav            bool
	CTACount          int
}

var ctaWords = []string{
	"contact", "quote", "schedule", "book", "call", "get started",
	"free estimate", "sign up", "request",
}

// ParsePage extracts scoring signals from raw HTML. Parse failures return a
// zero-signal page rather than an error; scorers treat that as a weak site.
func ParsePage(pageURL, html string) *Page {
	p := &Page{URL: pageURL}
	if u, err := url.Parse(pageURL); err == nil {
		p.Host = strings.TrimPrefix(u.Hostname(), "www.")
		p.HTTPS = u.Scheme == "https"
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return p
	}

	p.Title = strings.TrimSpace(doc.Find("title").First().Text())
	if desc, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
		p.MetaDescription = strings.TrimSpace(desc)
	}
	if canonical, ok := doc.Find(`link[rel="canonical"]`).Attr("href"); ok {
		p.Canonical = strings.TrimSpace(canonical)
	}
	p.HasViewport = doc.Find(`meta[name="viewport"]`).Length() > 0
	p.HasOpenGraph = doc.Find(`meta[property^="og:"]`).Length() > 0

	p.H1Count = doc.Find("h1").Length()
	p.H2Count = doc.Find("h2").Length()
	p.H3Count = doc.Find("h3").Length()

	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		p.HasStructuredData = true
		if strings.Contains(s.Text(), "FAQPage") {
			p.HasFAQ = true
		}
	})

	doc.Find("script, style, noscript").Remove()
	p.WordCount = len(strings.Fields(doc.Find("body").Text()))

	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		p.ImageCount++
		if alt, ok := s.Attr("alt"); !ok || strings.TrimSpace(alt) == "" {
			p.ImagesMissingAlt++
		}
	})

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		switch {
		case href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:"):
			return
		case strings.HasPrefix(href, "http"):
			if target, err := url.Parse(href); err == nil &&
				strings.TrimPrefix(target.Hostname(), "www.") == p.Host {
				p.InternalLinks++
			} else {
				p.ExternalLinks++
			}
		default:
			p.InternalLinks++
		}
		text := strings.ToLower(s.Text())
		for _, cta := range ctaWords {
			if strings.Contains(text, cta) {
				p.CTACount++
				break
			}
		}
	})
	doc.Find("button").Each(func(_ int, s *goquery.Selection) {
		text := strings.ToLower(s.Text())
		for _, cta := range ctaWords {
			if strings.Contains(text, cta) {
				p.CTACount++
				break
			}
		}
	})

	p.HasNav = doc.Find("nav").Length() > 0 || doc.Find(`[role="navigation"]`).Length() > 0

	if !p.HasFAQ {
		doc.Find("h1, h2, h3").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			heading := strings.ToLower(s.Text())
			if strings.Contains(heading, "faq") || strings.Contains(heading, "frequently asked") {
				p.HasFAQ = true
				return false
			}
			return true
		})
	}

	return p
}
