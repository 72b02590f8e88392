package dataset

import (
	"strconv"
	"strings"
	"time"

	"github.com/trytocodeee/Indian-Unemployment-Dashboard/internal/models"
)

var columnReplacer = strings.NewReplacer(" ", "_", "-", "_")

// NormalizeColumn lowercases a header and replaces spaces and hyphens with
// underscores. Applying it twice gives the same result as applying it once.
func NormalizeColumn(name string) string {
	return columnReplacer.Replace(strings.ToLower(name))
}

func NormalizeColumns(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = NormalizeColumn(n)
	}
	return out
}

// missingTokens mirrors the default NA markers of common dataframe readers.
var missingTokens = map[string]bool{
	"":         true,
	"#N/A":     true,
	"#N/A N/A": true,
	"#NA":      true,
	"-1.#IND":  true,
	"-1.#QNAN": true,
	"-NaN":     true,
	"-nan":     true,
	"1.#IND":   true,
	"1.#QNAN":  true,
	"<NA>":     true,
	"N/A":      true,
	"NA":       true,
	"NULL":     true,
	"NaN":      true,
	"None":     true,
	"n/a":      true,
	"nan":      true,
	"null":     true,
}

func IsMissing(value string) bool {
	return missingTokens[strings.TrimSpace(value)]
}

// ParseFloat reports ok=false for missing or non-numeric cells.
func ParseFloat(value string) (float64, bool) {
	if IsMissing(value) {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// dateLayouts are tried in order; day-first dashed dates come before
// month-first slashed dates.
var dateLayouts = []string{
	time.RFC3339,
	models.DateLayout,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006/01/02",
	"02-01-2006",
	"01/02/2006",
	"02.01.2006",
	"2 Jan 2006",
	"Jan 2, 2006",
	"02-Jan-2006",
	"January 2006",
}

// ParseDate returns the calendar date at UTC midnight.
func ParseDate(value string) (time.Time, bool) {
	if IsMissing(value) {
		return time.Time{}, false
	}
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}
