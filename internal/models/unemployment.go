package models

import (
	"slices"
	"time"
)

// Column names after header normalization.
const (
	ColumnRegion                  = "region"
	ColumnDate                    = "date"
	ColumnUnemploymentRate        = "unemployment_rate"
	ColumnLabourParticipationRate = "labour_participation_rate"
	ColumnEstimatedEmployed       = "estimated_employed"
)

const DateLayout = "2006-01-02"

// Record is one observation row. Values holds every normalized column's raw
// cell in header order so extra columns survive a round trip.
type Record struct {
	Region                  string
	Date                    time.Time
	UnemploymentRate        float64
	LabourParticipationRate float64
	EstimatedEmployed       float64
	Values                  []string
}

type FilterCriteria struct {
	Region  string     `json:"region"`
	Start   *time.Time `json:"start,omitempty"`
	End     *time.Time `json:"end,omitempty"`
	Compare []string   `json:"compare,omitempty"`
}

// Normalize drops duplicate comparison regions and the selected region from
// Compare. The first occurrence of each region keeps its position.
func (c FilterCriteria) Normalize() FilterCriteria {
	out := c
	out.Compare = make([]string, 0, len(c.Compare))
	seen := map[string]bool{c.Region: true}
	for _, r := range c.Compare {
		if r == "" || seen[r] {
			continue
		}
		seen[r] = true
		out.Compare = append(out.Compare, r)
	}
	return out
}

// Regions returns the selected region followed by the comparison regions.
func (c FilterCriteria) Regions() []string {
	return append([]string{c.Region}, c.Compare...)
}

func (c FilterCriteria) Equal(o FilterCriteria) bool {
	return c.Region == o.Region &&
		equalTime(c.Start, o.Start) &&
		equalTime(c.End, o.End) &&
		slices.Equal(c.Compare, o.Compare)
}

func equalTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

type SummaryStats struct {
	Column string  `json:"column"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Median float64 `json:"median"`
}

type GroupMean struct {
	Key   string  `json:"key"`
	Mean  float64 `json:"mean"`
	Count int     `json:"count"`
}

// GroupSummary is ordered by Mean, highest first.
type GroupSummary []GroupMean

type Point struct {
	Index int       `json:"index"`
	Date  time.Time `json:"date,omitzero"`
	Value float64   `json:"value"`
}

type Series struct {
	Name   string  `json:"name"`
	Points []Point `json:"points"`
}
