package dataset

import (
	"fmt"
	"slices"
	"time"

	"github.com/trytocodeee/Indian-Unemployment-Dashboard/internal/models"
)

// Schema is the ordered set of normalized column names shared by every row of
// a Dataset and the Views derived from it.
type Schema struct {
	columns []string
	index   map[string]int
}

func NewSchema(columns []string) (*Schema, error) {
	s := &Schema{
		columns: slices.Clone(columns),
		index:   make(map[string]int, len(columns)),
	}
	for i, c := range columns {
		if _, dup := s.index[c]; dup {
			return nil, fmt.Errorf("duplicate column %q", c)
		}
		s.index[c] = i
	}
	return s, nil
}

func (s *Schema) Columns() []string {
	if s == nil {
		return nil
	}
	return slices.Clone(s.columns)
}

func (s *Schema) Len() int {
	if s == nil {
		return 0
	}
	return len(s.columns)
}

func (s *Schema) Index(column string) (int, bool) {
	if s == nil {
		return 0, false
	}
	i, ok := s.index[column]
	return i, ok
}

func (s *Schema) Has(column string) bool {
	_, ok := s.Index(column)
	return ok
}

func (s *Schema) HasDate() bool {
	return s.Has(models.ColumnDate)
}

// Require returns ErrMissingColumn for the first absent column.
func (s *Schema) Require(columns ...string) error {
	for _, c := range columns {
		if !s.Has(c) {
			return missingColumn(c)
		}
	}
	return nil
}

// View is a read-only table. Filtering produces new Views; the rows of the
// source are never modified.
type View struct {
	schema *Schema
	rows   []models.Record
}

func NewView(schema *Schema, rows []models.Record) View {
	return View{schema: schema, rows: rows}
}

func (v View) Schema() *Schema { return v.schema }

func (v View) Len() int { return len(v.rows) }

func (v View) Empty() bool { return len(v.rows) == 0 }

func (v View) Row(i int) models.Record { return v.rows[i] }

// Rows returns a copy of the row slice.
func (v View) Rows() []models.Record { return slices.Clone(v.rows) }

func (v View) All(yield func(int, models.Record) bool) {
	for i, r := range v.rows {
		if !yield(i, r) {
			return
		}
	}
}

// Where keeps the rows matching keep, in order.
func (v View) Where(keep func(models.Record) bool) View {
	out := make([]models.Record, 0, len(v.rows))
	for _, r := range v.rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	return View{schema: v.schema, rows: out}
}

func (v View) Head(n int) View {
	if n < 0 {
		n = 0
	}
	if n > len(v.rows) {
		n = len(v.rows)
	}
	return View{schema: v.schema, rows: v.rows[:n:n]}
}

// Strings returns the raw values of a column, one per row.
func (v View) Strings(column string) ([]string, error) {
	idx, ok := v.schema.Index(column)
	if !ok {
		return nil, missingColumn(column)
	}
	out := make([]string, len(v.rows))
	for i, r := range v.rows {
		switch column {
		case models.ColumnRegion:
			out[i] = r.Region
		default:
			out[i] = r.Values[idx]
		}
	}
	return out, nil
}

// Floats returns the numeric values of a column. Columns that are absent or
// hold non-numeric values report ErrMissingColumn.
func (v View) Floats(column string) ([]float64, error) {
	idx, ok := v.schema.Index(column)
	if !ok {
		return nil, missingColumn(column)
	}
	out := make([]float64, len(v.rows))
	for i, r := range v.rows {
		switch column {
		case models.ColumnUnemploymentRate:
			out[i] = r.UnemploymentRate
		case models.ColumnLabourParticipationRate:
			out[i] = r.LabourParticipationRate
		case models.ColumnEstimatedEmployed:
			out[i] = r.EstimatedEmployed
		default:
			f, ok := ParseFloat(r.Values[idx])
			if !ok {
				return nil, fmt.Errorf("%w %q: non-numeric value %q", ErrMissingColumn, column, r.Values[idx])
			}
			out[i] = f
		}
	}
	return out, nil
}

// Dataset is the base View loaded from a source, with the metadata used to
// decide whether a cached copy is still current.
type Dataset struct {
	View
	Source   string
	ModTime  time.Time
	Size     int64
	LoadedAt time.Time
	RowsRead int
	Dropped  int
}
