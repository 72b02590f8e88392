// Package filter derives Views from a Dataset by region and date predicates.
// Every function returns a new View and leaves its input untouched.
package filter

import (
	"slices"
	"time"

	"github.com/trytocodeee/Indian-Unemployment-Dashboard/internal/dataset"
	"github.com/trytocodeee/Indian-Unemployment-Dashboard/internal/models"
)

// ByRegion keeps rows whose region equals region exactly.
func ByRegion(v dataset.View, region string) dataset.View {
	return v.Where(func(r models.Record) bool {
		return r.Region == region
	})
}

// ByDateRange keeps rows with start <= date <= end. A nil bound is
// unconstrained. Views without a date column are returned unchanged.
func ByDateRange(v dataset.View, start, end *time.Time) dataset.View {
	if !v.Schema().HasDate() || (start == nil && end == nil) {
		return v
	}
	return v.Where(func(r models.Record) bool {
		if start != nil && r.Date.Before(*start) {
			return false
		}
		if end != nil && r.Date.After(*end) {
			return false
		}
		return true
	})
}

// ByRegionSet keeps rows whose region is in regions. An empty set yields an
// empty View.
func ByRegionSet(v dataset.View, regions []string) dataset.View {
	set := make(map[string]struct{}, len(regions))
	for _, r := range regions {
		set[r] = struct{}{}
	}
	return v.Where(func(r models.Record) bool {
		_, ok := set[r.Region]
		return ok
	})
}

// Result holds the Views one dashboard render works with.
type Result struct {
	// Bounded is the whole dataset restricted to the date range.
	Bounded dataset.View
	// Selected is Bounded restricted to the selected region.
	Selected dataset.View
	// Comparison is Bounded restricted to the selected and compared regions.
	Comparison dataset.View
}

// Apply runs the date filter on the whole dataset first and the region
// filters on that time-bounded view, so every section shares the same dates.
func Apply(v dataset.View, c models.FilterCriteria) Result {
	c = c.Normalize()
	bounded := ByDateRange(v, c.Start, c.End)
	res := Result{
		Bounded:  bounded,
		Selected: ByRegion(bounded, c.Region),
	}
	if len(c.Compare) > 0 {
		res.Comparison = ByRegionSet(bounded, c.Regions())
	} else {
		res.Comparison = dataset.NewView(v.Schema(), nil)
	}
	return res
}

// Regions returns the distinct region values sorted ascending.
func Regions(v dataset.View) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, r := range v.All {
		if _, ok := seen[r.Region]; ok {
			continue
		}
		seen[r.Region] = struct{}{}
		out = append(out, r.Region)
	}
	slices.Sort(out)
	return out
}

// DateBounds returns the earliest and latest date, or ok=false when the view
// is empty or has no date column.
func DateBounds(v dataset.View) (lo, hi time.Time, ok bool) {
	if v.Empty() || !v.Schema().HasDate() {
		return time.Time{}, time.Time{}, false
	}
	for i, r := range v.All {
		if i == 0 || r.Date.Before(lo) {
			lo = r.Date
		}
		if i == 0 || r.Date.After(hi) {
			hi = r.Date
		}
	}
	return lo, hi, true
}
