package carrier

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DOMExtractor is the DOM-traversal strategy, built on goquery. It accepts
// the same pages as PatternExtractor and exists so the pipeline is not
// married to regular-expression scraping.
type DOMExtractor struct{}

// ByLabel implements Extractor.
func (DOMExtractor) ByLabel(page, label string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return ""
	}
	var value string
	doc.Find("th a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if strings.TrimSpace(a.Text()) != label {
			return true
		}
		cell := a.Closest("th").Next()
		if !cell.Is("td") {
			return true
		}
		inner, herr := cell.Html()
		if herr != nil {
			inner = cell.Text()
		}
		value = CleanFragment(inner)
		return false
	})
	return value
}

// MarkedSection implements Extractor. Scope is the table containing the
// section anchor; when that table yields no marked rows the whole document
// is rescanned, mirroring the pattern strategy's fallback.
func (DOMExtractor) MarkedSection(page, sectionLabel string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil
	}

	var scope *goquery.Selection
	doc.Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if strings.TrimSpace(a.Text()) != sectionLabel {
			return true
		}
		if table := a.Closest("table"); table.Length() > 0 {
			scope = table
		}
		return false
	})

	var marks []string
	if scope != nil {
		marks = collectMarkedCells(scope)
	}
	if len(marks) == 0 {
		marks = collectMarkedCells(doc.Selection)
	}
	return marks
}

func collectMarkedCells(scope *goquery.Selection) []string {
	seen := make(map[string]struct{})
	var out []string
	scope.Find("td").Each(func(_ int, cell *goquery.Selection) {
		if strings.TrimSpace(cell.Text()) != "X" {
			return
		}
		next := cell.Next()
		if !next.Is("td") {
			return
		}
		label := CleanFragment(next.Text())
		if label == "" {
			return
		}
		if _, dup := seen[label]; dup {
			return
		}
		seen[label] = struct{}{}
		out = append(out, label)
	})
	return out
}
