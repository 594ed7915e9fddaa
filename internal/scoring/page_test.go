package scoring

import "testing"

const sampleHTML = `<!DOCTYPE html>
<html>
<head>
<title>Acme HVAC | Austin Heating &amp; Cooling</title>
<meta name="description" content="Licensed HVAC repair and installation serving Austin, TX since 1995.">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta property="og:title" content="Acme HVAC">
<link rel="canonical" href="https://acme-hvac.com/">
<script type="application/ld+json">{"@type": "FAQPage"}</script>
</head>
<body>
<nav><a href="/services">Services</a><a href="/about">About</a></nav>
<h1>Austin HVAC Repair</h1>
<h2>AC Repair</h2>
<p>We are licensed and insured. Call for a free estimate today.</p>
<h2>Frequently Asked Questions</h2>
<p>How fast can you arrive? Usually within two hours.</p>
<img src="/truck.jpg" alt="Service truck">
<img src="/team.jpg">
<a href="https://acme-hvac.com/contact">Contact us for a quote</a>
<a href="https://www.google.com/maps">Directions</a>
<button>Schedule service</button>
</body>
</html>`

func TestParsePage(t *testing.T) {
	p := ParsePage("https://acme-hvac.com/", sampleHTML)

	if !p.HTTPS {
		t.Error("HTTPS not detected")
	}
	if p.Title != "Acme HVAC | Austin Heating & Cooling" {
		t.Errorf("title = %q", p.Title)
	}
	if p.MetaDescription == "" {
		t.Error("meta description missing")
	}
	if p.Canonical != "https://acme-hvac.com/" {
		t.Errorf("canonical = %q", p.Canonical)
	}
	if !p.HasViewport || !p.HasOpenGraph {
		t.Errorf("viewport=%v opengraph=%v", p.HasViewport, p.HasOpenGraph)
	}
	if p.H1Count != 1 || p.H2Count != 2 {
		t.Errorf("h1=%d h2=%d", p.H1Count, p.H2Count)
	}
	if !p.HasStructuredData || !p.HasFAQ {
		t.Errorf("structured=%v faq=%v", p.HasStructuredData, p.HasFAQ)
	}
	if !p.HasNav {
		t.Error("nav not detected")
	}
	if p.ImageCount != 2 || p.ImagesMissingAlt != 1 {
		t.Errorf("images=%d missingAlt=%d", p.ImageCount, p.ImagesMissingAlt)
	}
	if p.InternalLinks != 3 || p.ExternalLinks != 1 {
		t.Errorf("internal=%d external=%d", p.InternalLinks, p.ExternalLinks)
	}
	if p.CTACount < 2 {
		t.Errorf("cta count = %d", p.CTACount)
	}
	if p.WordCount == 0 {
		t.Error("word count zero")
	}
}

func TestParsePageEmptyInput(t *testing.T) {
	p := ParsePage("https://example.com/", "")
	if p.Title != "" || p.WordCount != 0 {
		t.Errorf("empty page parsed as %+v", p)
	}
	if p.Host != "example.com" {
		t.Errorf("host = %q", p.Host)
	}
}
