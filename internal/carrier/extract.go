package carrier

import (
	"regexp"
	"strings"
	"sync"
)

// Extractor locates labeled fields and marked classification rows in a
// snapshot page. Implementations may scan patterns or walk the DOM; callers
// must not depend on which strategy is behind the interface.
type Extractor interface {
	// ByLabel returns the normalized content of the data cell adjacent to
	// the header cell whose anchor text equals label, or "" when absent.
	ByLabel(page, label string) string
	// MarkedSection returns the label text of every row in the section's
	// table whose marker cell carries a literal "X", duplicates removed,
	// first-seen order.
	MarkedSection(page, sectionLabel string) []string
}

// Field labels as they appear on the snapshot page, trailing colon included.
const (
	LabelLegalName       = "Legal Name:"
	LabelDBAName         = "DBA Name:"
	LabelEntityType      = "Entity Type:"
	LabelAuthorityStatus = "Operating Authority Status:"
	LabelFormDate        = "MCS-150 Form Date:"
	LabelPowerUnits      = "Power Units:"
	LabelDrivers         = "Drivers:"
	LabelPhysicalAddress = "Physical Address:"
	LabelMailingAddress  = "Mailing Address:"
	LabelPhone           = "Phone:"

	SectionOperationClass = "Operation Classification:"
	SectionCargoCarried   = "Cargo Carried:"
)

// PatternExtractor is the regular-expression scanning strategy. It tolerates
// attribute noise inside the structural tags but matches labels literally.
type PatternExtractor struct{}

var markedRow = regexp.MustCompile(`(?is)<td[^>]*>\s*X\s*</td>\s*<td[^>]*>(.*?)</td>`)

// labelPatterns caches the compiled scan pattern per label. The label set is
// small and fixed, so the cache never grows past a handful of entries.
var labelPatterns sync.Map

func compiledPattern(expr string) *regexp.Regexp {
	if cached, ok := labelPatterns.Load(expr); ok {
		return cached.(*regexp.Regexp)
	}
	re := regexp.MustCompile(expr)
	labelPatterns.Store(expr, re)
	return re
}

// ByLabel implements Extractor.
func (PatternExtractor) ByLabel(page, label string) string {
	re := compiledPattern(
		`(?is)<a[^>]*>\s*` + regexp.QuoteMeta(label) + `\s*</a>\s*</th>\s*<td[^>]*>(.*?)</td>`,
	)
	m := re.FindStringSubmatch(page)
	if m == nil {
		return ""
	}
	return CleanFragment(m[1])
}

// MarkedSection implements Extractor. When no marked row is found inside the
// table that follows the section anchor, the whole page is rescanned: the
// first classification table on some pages lacks the nested-table wrapper
// the other sections have.
func (PatternExtractor) MarkedSection(page, sectionLabel string) []string {
	re := compiledPattern(
		`(?is)<a[^>]*>\s*` + regexp.QuoteMeta(sectionLabel) + `\s*</a>.*?<table[^>]*>(.*?)</table>`,
	)
	scope := page
	if m := re.FindStringSubmatch(page); m != nil {
		scope = m[1]
	}
	marks := collectMarkedRows(scope)
	if len(marks) == 0 && scope != page {
		marks = collectMarkedRows(page)
	}
	return marks
}

func collectMarkedRows(scope string) []string {
	rows := markedRow.FindAllStringSubmatch(scope, -1)
	if len(rows) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(rows))
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		label := CleanFragment(row[1])
		if label == "" {
			continue
		}
		if _, dup := seen[label]; dup {
			continue
		}
		seen[label] = struct{}{}
		out = append(out, label)
	}
	return out
}

// InferOperation maps a marked classification set to an operation category.
// Priority is fixed: property beats passenger beats broker.
func InferOperation(marks []string) OperationCategory {
	for _, probe := range []struct {
		needle string
		cat    OperationCategory
	}{
		{"property", OperationProperty},
		{"passenger", OperationPassenger},
		{"broker", OperationBroker},
	} {
		for _, mark := range marks {
			if strings.Contains(strings.ToLower(mark), probe.needle) {
				return probe.cat
			}
		}
	}
	return ""
}
