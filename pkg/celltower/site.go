// Package celltower defines antenna sites, the interchange dataset file and
// the string categorization applied when importing raw records.
package celltower

import (
	"slices"
	"strings"
	"unicode"

	"github.com/matzehuels/celltower/pkg/geo"
)

// Power categories, from weakest to strongest.
const (
	PowerVeryLow = "very-low"
	PowerLow     = "low"
	PowerMedium  = "medium"
	PowerHigh    = "high"
)

// PowerLevels lists the categories in classification priority order.
var PowerLevels = []string{PowerVeryLow, PowerLow, PowerMedium, PowerHigh}

// powerKeywords selects each category. The OFCOM data uses French
// descriptors ("Puissance très faible", ...) matched as substrings; the
// English words must appear as whole words so "yellow" is not "low".
var powerKeywords = map[string]struct{ fr, en []string }{
	PowerVeryLow: {fr: []string{"très faible", "tres faible"}, en: []string{"very low"}},
	PowerLow:     {fr: []string{"faible"}, en: []string{"low"}},
	PowerMedium:  {fr: []string{"moyenne"}, en: []string{"medium"}},
	PowerHigh:    {fr: []string{"forte"}, en: []string{"high"}},
}

// Site is one antenna site.
type Site struct {
	Coordinates geo.GeoPoint `json:"coordinates"`
	Operator    string       `json:"operator"`
	Technology  string       `json:"technology"`
	Power       string       `json:"power"`
	Station     string       `json:"station,omitempty"`
}

// Label is the name shown in popups: the station when known, else the operator.
func (s Site) Label() string {
	if s.Station != "" {
		return s.Station
	}
	return s.Operator
}

// Generation returns the network generation digit of the site's technology.
func (s Site) Generation() string { return Generation(s.Technology) }

// OperatorFromStation returns the first space-delimited token of a station
// name, e.g. "Swisscom" for "Swisscom (Suisse) SA BEBE".
func OperatorFromStation(station string) string {
	op, _, _ := strings.Cut(station, " ")
	return op
}

// ClassifyPower maps a free-text power descriptor to one of [PowerLevels].
// Matching is case-insensitive and the first category in priority order
// wins. Text that matches nothing is returned unchanged.
func ClassifyPower(descriptor string) string {
	lower := strings.ToLower(descriptor)
	words := splitWords(lower)
	for _, level := range PowerLevels {
		kw := powerKeywords[level]
		for _, fr := range kw.fr {
			if strings.Contains(lower, fr) {
				return level
			}
		}
		for _, en := range kw.en {
			if containsWords(words, splitWords(en)) {
				return level
			}
		}
	}
	return descriptor
}

// splitWords splits s on everything but letters and digits, so "very-low"
// and "very low" both give [very low].
func splitWords(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// containsWords reports whether phrase occurs as a contiguous run in words.
func containsWords(words, phrase []string) bool {
	for i := 0; i+len(phrase) <= len(words); i++ {
		if slices.Equal(words[i:i+len(phrase)], phrase) {
			return true
		}
	}
	return false
}

// Generation returns "5", "4", "3" or "2" for the newest of 5G/4G/3G/2G
// named in a technology label, or "" when none is.
func Generation(technology string) string {
	for _, g := range []string{"5", "4", "3", "2"} {
		if strings.Contains(technology, g+"G") {
			return g
		}
	}
	return ""
}

// PowerRank orders power categories for sorting; unknown values rank last.
func PowerRank(power string) int {
	for i, level := range PowerLevels {
		if level == power {
			return i
		}
	}
	return len(PowerLevels)
}
