package geocoding

import (
	"regexp"
	"strings"
)

var abbreviations = map[string]string{
	"st":   "street",
	"ave":  "avenue",
	"blvd": "boulevard",
	"dr":   "drive",
	"rd":   "road",
	"ln":   "lane",
	"ct":   "court",
	"pkwy": "parkway",
	"pl":   "place",
	"cir":  "circle",
	"hwy":  "highway",
	"apt":  "apartment",
	"ste":  "suite",
	"fl":   "floor",
	"n":    "north",
	"s":    "south",
	"e":    "east",
	"w":    "west",
	"ne":   "northeast",
	"nw":   "northwest",
	"se":   "southeast",
	"sw":   "southwest",
}

var (
	unitDesignator = regexp.MustCompile(`#\s*\w+`)
	whitespace     = regexp.MustCompile(`\s+`)
	word           = regexp.MustCompile(`\b\w+\b`)
	innerPeriod    = regexp.MustCompile(`\.\s`)
	trailingPeriod = regexp.MustCompile(`\.$`)
)

// NormalizeAddress canonicalizes an address for cache lookups: lower case,
// unit designators like "#E" removed, common street and direction
// abbreviations expanded, stray periods dropped. Applying it twice gives the
// same result as applying it once.
func NormalizeAddress(address string) string {
	normalized := address
	for i := 0; i < 4; i++ {
		next := normalizeOnce(normalized)
		if next == normalized {
			break
		}
		normalized = next
	}
	return normalized
}

func normalizeOnce(address string) string {
	s := strings.TrimSpace(strings.ToLower(address))
	s = unitDesignator.ReplaceAllString(s, "")
	s = whitespace.ReplaceAllString(s, " ")
	s = word.ReplaceAllStringFunc(s, func(w string) string {
		if full, ok := abbreviations[w]; ok {
			return full
		}
		return w
	})
	s = innerPeriod.ReplaceAllString(s, " ")
	s = trailingPeriod.ReplaceAllString(s, "")
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}
