// Package richtext reduces CMS rich-text HTML to plain text for meta tags.
package richtext

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Excerpt strips markup from an HTML fragment and returns at most max runes
// of its text, cut at a word boundary with a trailing ellipsis. Unparseable
// input falls back to the raw string trimmed.
func Excerpt(html string, max int) string {
	text := strings.TrimSpace(html)
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(html)); err == nil {
		text = doc.Text()
	}
	text = strings.Join(strings.Fields(text), " ")
	if max <= 0 || len([]rune(text)) <= max {
		return text
	}
	runes := []rune(text)[:max]
	if i := strings.LastIndex(string(runes), " "); i > 0 {
		runes = []rune(string(runes)[:i])
	}
	return strings.TrimRight(string(runes), " .,;:") + "…"
}
