package fetch

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

// Elements dropped together with their content before sanitizing.
const removeSelectors = "script, style, noscript, iframe, svg, canvas, template, form, " +
	"button, input, select, textarea, object, embed, link, meta"

//nolint:gochecknoglobals // Policies are safe for concurrent use once built.
var policy = bluemonday.UGCPolicy()

// Sanitize strips scripting, styling and other unsafe markup from doc and
// returns the remaining HTML with trimmed lines and no blank lines.
func Sanitize(doc *goquery.Document) (string, error) {
	doc.Find(removeSelectors).Remove()

	raw, err := doc.Html()
	if err != nil {
		return "", fmt.Errorf("render document: %w", err)
	}

	return compactLines(policy.Sanitize(raw)), nil
}

// SanitizeString is Sanitize for raw markup.
func SanitizeString(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("create document from reader: %w", err)
	}

	return Sanitize(doc)
}

func compactLines(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}

	return strings.Join(out, "\n")
}
