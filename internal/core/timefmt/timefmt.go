// Package timefmt converts between minute counts and the "HhrMM" notation
// used for project totals in daily notes.
package timefmt

import (
	"fmt"
	"regexp"
	"strconv"
)

var durationPattern = regexp.MustCompile(`(\d+)hr(\d+)`)

// Format renders minutes as "HhrMM": hours unpadded, minutes two digits.
func Format(totalMinutes int) string {
	if totalMinutes < 0 {
		totalMinutes = 0
	}
	return fmt.Sprintf("%dhr%02d", totalMinutes/60, totalMinutes%60)
}

// Parse extracts the first "HhrMM" token from value and returns it in minutes.
// ok is false when no token is present.
func Parse(value string) (minutes int, ok bool) {
	match := durationPattern.FindStringSubmatch(value)
	if match == nil {
		return 0, false
	}
	hours, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}
	mins, err := strconv.Atoi(match[2])
	if err != nil {
		return 0, false
	}
	return hours*60 + mins, true
}

// Minutes is Parse without the ok flag: unparseable text counts as zero,
// since notes are edited by hand and may hold half-typed values.
func Minutes(value string) int {
	minutes, _ := Parse(value)
	return minutes
}

// Add parses existing leniently, adds minutes and formats the result.
func Add(existing string, minutes int) string {
	return Format(Minutes(existing) + minutes)
}

// IsToken reports whether value is exactly one duration token.
func IsToken(value string) bool {
	loc := durationPattern.FindStringIndex(value)
	return loc != nil && loc[0] == 0 && loc[1] == len(value)
}
