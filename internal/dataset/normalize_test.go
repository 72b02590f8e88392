package dataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeColumn(t *testing.T) {
	tests := map[string]string{
		"Region":                    "region",
		"Unemployment Rate":         "unemployment_rate",
		"Labour-Participation Rate": "labour_participation_rate",
		"ESTIMATED EMPLOYED":        "estimated_employed",
		"already_normal":            "already_normal",
		" Date":                     "_date",
	}
	for in, want := range tests {
		got := NormalizeColumn(in)
		assert.Equal(t, want, got, "NormalizeColumn(%q)", in)
		assert.Equal(t, got, NormalizeColumn(got), "not idempotent for %q", in)
	}
}

func TestParseDate(t *testing.T) {
	want := time.Date(2020, 5, 31, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{
		"2020-05-31",
		" 2020-05-31 ",
		"2020-05-31 10:30:00",
		"2020-05-31T10:30:00Z",
		"2020/05/31",
		"31-05-2020",
		"05/31/2020",
		"31.05.2020",
		"31 May 2020",
		"May 31, 2020",
		"31-May-2020",
	} {
		got, ok := ParseDate(in)
		if assert.True(t, ok, "ParseDate(%q)", in) {
			assert.Equal(t, want, got, "ParseDate(%q)", in)
		}
	}

	got, ok := ParseDate("May 2020")
	assert.True(t, ok)
	assert.Equal(t, time.Date(2020, 5, 1, 0, 0, 0, 0, time.UTC), got)

	for _, in := range []string{"", "NA", "yesterday", "2020-13-01"} {
		_, ok := ParseDate(in)
		assert.False(t, ok, "ParseDate(%q)", in)
	}
}

func TestParseFloat(t *testing.T) {
	f, ok := ParseFloat(" 7.25 ")
	assert.True(t, ok)
	assert.Equal(t, 7.25, f)

	for _, in := range []string{"", "NaN", "null", "N/A", "seven"} {
		_, ok := ParseFloat(in)
		assert.False(t, ok, "ParseFloat(%q)", in)
	}
}
