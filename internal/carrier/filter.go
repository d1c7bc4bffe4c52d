package carrier

import (
	"strconv"
	"strings"
	"time"

	"carrierscope/internal/clock"
)

// Page markers checked by the existence predicate.
const (
	markerNotFound = "record not found"
	markerInactive = "record inactive"
)

var formDateLayouts = []string{"01/02/2006", "2006-01-02"}

// Filter is the ordered eligibility predicate chain. The first failing
// predicate short-circuits with its rejection reason.
type Filter struct {
	extractor  Extractor
	minAgeDays int
	clock      clock.Clock
}

// NewFilter builds a Filter around an extraction strategy.
func NewFilter(extractor Extractor, minAgeDays int, clk clock.Clock) *Filter {
	if clk == nil {
		clk = clock.System{}
	}
	return &Filter{
		extractor:  extractor,
		minAgeDays: minAgeDays,
		clock:      clk,
	}
}

type predicate func(page string) (RejectReason, bool)

// Check runs every predicate in order against the snapshot page. It returns
// ok=true when the page passes all of them, otherwise the first reason.
func (f *Filter) Check(page string) (RejectReason, bool) {
	for _, p := range []predicate{
		f.checkExistence,
		f.checkAuthorization,
		f.checkMinimumAge,
		f.checkFleetSize,
		f.checkDriverCount,
	} {
		if reason, ok := p(page); !ok {
			return reason, false
		}
	}
	return "", true
}

func (f *Filter) checkExistence(page string) (RejectReason, bool) {
	lower := strings.ToLower(page)
	if strings.Contains(lower, markerNotFound) || strings.Contains(lower, markerInactive) {
		return ReasonNotFound, false
	}
	return "", true
}

func (f *Filter) checkAuthorization(page string) (RejectReason, bool) {
	status := strings.ToLower(f.extractor.ByLabel(page, LabelAuthorityStatus))
	if strings.Contains(status, "not authorized") {
		return ReasonNotAuthorized, false
	}
	if !strings.Contains(status, "authorized") {
		return ReasonNotAuthorized, false
	}
	return "", true
}

func (f *Filter) checkMinimumAge(page string) (RejectReason, bool) {
	raw := f.extractor.ByLabel(page, LabelFormDate)
	if raw == "" {
		return ReasonMissingFormDate, false
	}
	formDate, ok := parseFormDate(raw)
	if !ok {
		return ReasonMissingFormDate, false
	}
	age := f.clock.Now().Sub(formDate)
	if age < 0 {
		age = -age
	}
	if int(age.Hours()/24) < f.minAgeDays {
		return ReasonTooNew, false
	}
	return "", true
}

func (f *Filter) checkFleetSize(page string) (RejectReason, bool) {
	if !atLeastOne(f.extractor.ByLabel(page, LabelPowerUnits)) {
		return ReasonFleetTooSmall, false
	}
	return "", true
}

func (f *Filter) checkDriverCount(page string) (RejectReason, bool) {
	if !atLeastOne(f.extractor.ByLabel(page, LabelDrivers)) {
		return ReasonTooFewDrivers, false
	}
	return "", true
}

func parseFormDate(raw string) (time.Time, bool) {
	for _, layout := range formDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// atLeastOne parses a count field after stripping thousands separators and
// requires a non-negative integer >= 1.
func atLeastOne(raw string) bool {
	n, err := strconv.Atoi(strings.ReplaceAll(strings.TrimSpace(raw), ",", ""))
	if err != nil {
		return false
	}
	return n >= 1
}
