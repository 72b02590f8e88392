// Package export writes Views as downloadable CSV and Excel files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/trytocodeee/Indian-Unemployment-Dashboard/internal/dataset"
	"github.com/trytocodeee/Indian-Unemployment-Dashboard/internal/models"
)

const DefaultSheet = "Unemployment"

const (
	ContentTypeCSV  = "text/csv; charset=utf-8"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// FileName returns the download name for a region, e.g.
// unemployment_Bihar.csv. Path separators in the region are replaced.
func FileName(region, ext string) string {
	safe := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', '"', 0:
			return '_'
		}
		return r
	}, region)
	return fmt.Sprintf("unemployment_%s.%s", safe, strings.TrimPrefix(ext, "."))
}

// records returns the header followed by one row per record. Dates are
// rewritten in ISO form; every other cell is passed through as read.
func records(v dataset.View) [][]string {
	schema := v.Schema()
	dateIdx, hasDate := schema.Index(models.ColumnDate)

	out := make([][]string, 0, v.Len()+1)
	out = append(out, schema.Columns())
	for _, r := range v.All {
		row := make([]string, len(r.Values))
		copy(row, r.Values)
		if hasDate {
			row[dateIdx] = r.Date.Format(models.DateLayout)
		}
		out = append(out, row)
	}
	return out
}

// WriteCSV writes the view with a header row and no index column.
func WriteCSV(w io.Writer, v dataset.View) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(records(v)); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// numericColumns lists the schema positions of the measure columns.
func numericColumns(schema *dataset.Schema) map[int]bool {
	out := make(map[int]bool, 3)
	for _, name := range []string{
		models.ColumnUnemploymentRate,
		models.ColumnEstimatedEmployed,
		models.ColumnLabourParticipationRate,
	} {
		if i, ok := schema.Index(name); ok {
			out[i] = true
		}
	}
	return out
}

// WriteXLSX writes the view as a single-sheet workbook. Measure columns are
// stored as numbers so spreadsheets can chart them directly; every other
// column is written as text.
func WriteXLSX(w io.Writer, v dataset.View, sheet string) error {
	if sheet == "" {
		sheet = DefaultSheet
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	numeric := numericColumns(v.Schema())
	rows := records(v)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		values := make([]any, len(row))
		for j, s := range row {
			values[j] = s
			if i == 0 || !numeric[j] {
				continue
			}
			if num, ok := dataset.ParseFloat(s); ok {
				values[j] = num
			}
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if len(rows) > 0 {
		if err := f.SetPanes(sheet, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		}); err != nil {
			return fmt.Errorf("freeze header: %w", err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}
