package fetch

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Extract parses raw HTML into Content with a markdown rendition of the
// visible text and basic page metadata.
func Extract(html string) (Content, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Content{}, fmt.Errorf("parse html: %w", err)
	}

	doc.Find("script, style, noscript, iframe, svg").Remove()

	title := strings.TrimSpace(doc.Find("title").First().Text())
	description, _ := doc.Find(`meta[name="description"]`).First().Attr("content")

	var b strings.Builder
	if title != "" {
		b.WriteString("# " + title + "\n\n")
	}
	doc.Find("h1, h2, h3, p, li").Each(func(_ int, s *goquery.Selection) {
		text := collapseWhitespace(s.Text())
		if text == "" {
			return
		}
		switch goquery.NodeName(s) {
		case "h1":
			b.WriteString("# " + text + "\n\n")
		case "h2":
			b.WriteString("## " + text + "\n\n")
		case "h3":
			b.WriteString("### " + text + "\n\n")
		case "li":
			b.WriteString("- " + text + "\n")
		default:
			b.WriteString(text + "\n\n")
		}
	})

	markdown := strings.TrimSpace(b.String())
	if markdown == "" && title == "" {
		return Content{}, ErrEmptyPage
	}

	return Content{
		Markdown: markdown,
		HTML:     html,
		Metadata: Metadata{
			Title:       title,
			Description: strings.TrimSpace(description),
		},
	}, nil
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
