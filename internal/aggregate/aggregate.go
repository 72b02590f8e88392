package aggregate

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/trytocodeee/Indian-Unemployment-Dashboard/internal/dataset"
	"github.com/trytocodeee/Indian-Unemployment-Dashboard/internal/models"
)

// Summarize computes mean, min, max and median of a numeric column.
func Summarize(v dataset.View, column string) (models.SummaryStats, error) {
	values, err := numeric(v, column)
	if err != nil {
		return models.SummaryStats{}, err
	}

	stats := models.SummaryStats{
		Column: column,
		Count:  len(values),
		Mean:   mean(values),
		Min:    slices.Min(values),
		Max:    slices.Max(values),
		Median: median(values),
	}
	return stats, nil
}

// Mean returns the arithmetic mean of a numeric column.
func Mean(v dataset.View, column string) (float64, error) {
	values, err := numeric(v, column)
	if err != nil {
		return 0, err
	}
	return mean(values), nil
}

// GroupMeans partitions rows by groupColumn and averages valueColumn within
// each partition. The result is sorted by mean, highest first; equal means
// keep the order in which their keys first appear in the view.
func GroupMeans(v dataset.View, groupColumn, valueColumn string) (models.GroupSummary, error) {
	keys, err := v.Strings(groupColumn)
	if err != nil {
		return nil, err
	}
	values, err := v.Floats(valueColumn)
	if err != nil {
		return nil, err
	}

	type acc struct {
		sum   float64
		count int
	}
	groups := make(map[string]*acc)
	order := make([]string, 0)
	for i, key := range keys {
		g, ok := groups[key]
		if !ok {
			g = &acc{}
			groups[key] = g
			order = append(order, key)
		}
		g.sum += values[i]
		g.count++
	}

	result := make(models.GroupSummary, 0, len(order))
	for _, key := range order {
		g := groups[key]
		result = append(result, models.GroupMean{
			Key:   key,
			Mean:  g.sum / float64(g.count),
			Count: g.count,
		})
	}
	slices.SortStableFunc(result, func(a, b models.GroupMean) int {
		return cmp.Compare(b.Mean, a.Mean)
	})
	return result, nil
}

// Series returns a column as chart points ordered by date, or by row order
// when the view has no date column.
func Series(v dataset.View, column string) (models.Series, error) {
	values, err := v.Floats(column)
	if err != nil {
		return models.Series{}, err
	}

	points := make([]models.Point, len(values))
	for i, r := range v.All {
		points[i] = models.Point{Index: i, Date: r.Date, Value: values[i]}
	}
	if v.Schema().HasDate() {
		slices.SortStableFunc(points, func(a, b models.Point) int {
			return a.Date.Compare(b.Date)
		})
	}
	return models.Series{Name: column, Points: points}, nil
}

func numeric(v dataset.View, column string) ([]float64, error) {
	values, err := v.Floats(column)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: no rows for %q", dataset.ErrEmptyView, column)
	}
	return values, nil
}

func mean(values []float64) float64 {
	var sum float64
	for _, x := range values {
		sum += x
	}
	return sum / float64(len(values))
}

func median(values []float64) float64 {
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
