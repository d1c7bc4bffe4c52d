package carrier

import (
	"regexp"
	"strings"
)

// cityStateZip matches "<anything>, <two-letter region> <postal code>", with
// an optional comma between region and postal code.
var cityStateZip = regexp.MustCompile(`(?s)^(.+),\s*([A-Za-z]{2})[,\s]+(\d{5}(?:-\d{4})?)\s*$`)

// ParseAddress decomposes a normalized free-text address. When the primary
// city/region/postal pattern misses, the last two comma-separated segments
// are taken as (city, region) with no postal code; anything shorter keeps
// only the raw text.
func ParseAddress(raw string) Address {
	addr := Address{Raw: strings.TrimSpace(raw)}
	if addr.Raw == "" {
		return addr
	}
	if m := cityStateZip.FindStringSubmatch(addr.Raw); m != nil {
		addr.City = strings.TrimSpace(m[1])
		addr.State = strings.ToUpper(m[2])
		addr.Zip = m[3]
		return addr
	}
	parts := strings.Split(addr.Raw, ",")
	if len(parts) >= 2 {
		addr.City = strings.TrimSpace(parts[len(parts)-2])
		addr.State = strings.TrimSpace(parts[len(parts)-1])
	}
	return addr
}
