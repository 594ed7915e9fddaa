package fetch

import (
	"errors"
	"strings"
	"testing"
)

const samplePage = `<!doctype html>
<html>
<head>
<title>Acme HVAC | Austin Heating &amp; Cooling</title>
<meta name="description" content="24/7 HVAC repair in Austin, TX.">
<script>window.tracking = true;</script>
</head>
<body>
<h1>Austin's Trusted HVAC Company</h1>
<p>We repair and install furnaces,   heat pumps, and AC units.</p>
<h2>Services</h2>
<ul><li>AC Repair</li><li>Furnace Installation</li></ul>
</body>
</html>`

func TestExtractBuildsMarkdown(t *testing.T) {
	content, err := Extract(samplePage)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if content.Metadata.Title != "Acme HVAC | Austin Heating & Cooling" {
		t.Errorf("title = %q", content.Metadata.Title)
	}
	if content.Metadata.Description != "24/7 HVAC repair in Austin, TX." {
		t.Errorf("description = %q", content.Metadata.Description)
	}

	for _, want := range []string{
		"# Austin's Trusted HVAC Company",
		"## Services",
		"- AC Repair",
		"We repair and install furnaces, heat pumps, and AC units.",
	} {
		if !strings.Contains(content.Markdown, want) {
			t.Errorf("markdown missing %q:\n%s", want, content.Markdown)
		}
	}
	if strings.Contains(content.Markdown, "tracking") {
		t.Error("script content leaked into markdown")
	}
}

func TestExtractRejectsEmptyPage(t *testing.T) {
	if _, err := Extract("<html><body></body></html>"); !errors.Is(err, ErrEmptyPage) {
		t.Errorf("expected ErrEmptyPage, got %v", err)
	}
}
