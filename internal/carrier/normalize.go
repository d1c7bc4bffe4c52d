package carrier

import (
	"regexp"
	"strings"
)

var (
	lineBreakTags  = regexp.MustCompile(`(?i)<br\b[^>]*>`)
	anyTag         = regexp.MustCompile(`<[^>]+>`)
	whitespaceRuns = regexp.MustCompile(`\s+`)

	entityReplacer = strings.NewReplacer(
		"&nbsp;", " ", "&#160;", " ",
		"&amp;", "&", "&#38;", "&",
		"&lt;", "<", "&#60;", "<",
		"&gt;", ">", "&#62;", ">",
	)
)

// CleanFragment reduces a markup fragment to a single human-readable line.
// Line breaks become ", ", remaining tags are dropped, the common entities
// are decoded, and whitespace runs collapse to one space. It never fails;
// empty input yields empty output.
func CleanFragment(fragment string) string {
	if fragment == "" {
		return ""
	}
	s := lineBreakTags.ReplaceAllString(fragment, ", ")
	s = anyTag.ReplaceAllString(s, " ")
	s = entityReplacer.Replace(s)
	s = whitespaceRuns.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	// A trailing break leaves a dangling separator once the tail is trimmed.
	return strings.TrimSuffix(s, ",")
}
