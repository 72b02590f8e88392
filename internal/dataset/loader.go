package dataset

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/trytocodeee/Indian-Unemployment-Dashboard/internal/models"
)

const (
	defaultBatchSize  = 1000
	defaultMaxWorkers = 8
	utf8BOM           = "\ufeff"
)

var tracer = otel.Tracer("github.com/trytocodeee/Indian-Unemployment-Dashboard/internal/dataset")

type loader struct {
	batchSize  int
	maxWorkers int
	logger     *slog.Logger
}

type Option func(*loader)

func WithBatchSize(n int) Option {
	return func(l *loader) {
		if n > 0 {
			l.batchSize = n
		}
	}
}

func WithMaxWorkers(n int) Option {
	return func(l *loader) {
		if n > 0 {
			l.maxWorkers = n
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(l *loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

func newLoader(opts []Option) *loader {
	l := &loader{
		batchSize:  defaultBatchSize,
		maxWorkers: defaultMaxWorkers,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads the CSV file at path. A missing file yields a LoadError of kind
// KindNotFound; every other failure is KindMalformed.
func Load(ctx context.Context, path string, opts ...Option) (*Dataset, error) {
	ctx, span := tracer.Start(ctx, "dataset.Load")
	defer span.End()
	span.SetAttributes(attribute.String("dataset.source", path))

	ds, err := load(ctx, path, newLoader(opts))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("dataset.rows", ds.Len()),
		attribute.Int("dataset.dropped", ds.Dropped),
	)
	return ds, nil
}

func load(ctx context.Context, path string, l *loader) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, notFound(path, err)
		}
		return nil, malformed(path, fmt.Errorf("open file: %w", err))
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, malformed(path, fmt.Errorf("stat file: %w", err))
	}
	if info.IsDir() {
		return nil, malformed(path, errors.New("source is a directory"))
	}

	ds, err := l.read(ctx, bufio.NewReader(file), path)
	if err != nil {
		return nil, err
	}
	ds.ModTime = info.ModTime()
	ds.Size = info.Size()
	return ds, nil
}

// Read parses CSV content from r. source only labels errors and log lines.
func Read(ctx context.Context, r io.Reader, source string, opts ...Option) (*Dataset, error) {
	return newLoader(opts).read(ctx, r, source)
}

func (l *loader) read(ctx context.Context, r io.Reader, source string) (*Dataset, error) {
	start := time.Now()

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, malformed(source, errors.New("empty file: missing header row"))
	}
	if err != nil {
		return nil, malformed(source, fmt.Errorf("read header: %w", err))
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	schema, err := NewSchema(NormalizeColumns(header))
	if err != nil {
		return nil, malformed(source, err)
	}
	if err := schema.Require(models.ColumnRegion, models.ColumnUnemploymentRate); err != nil {
		return nil, malformed(source, err)
	}

	var raw [][]string
	for {
		if err := ctx.Err(); err != nil {
			return nil, malformed(source, err)
		}
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, malformed(source, fmt.Errorf("read row: %w", err))
		}
		if len(row) > schema.Len() {
			line, _ := reader.FieldPos(0)
			return nil, malformed(source, fmt.Errorf("line %d: expected %d fields, saw %d", line, schema.Len(), len(row)))
		}
		raw = append(raw, row)
	}

	rows, err := l.parseRows(ctx, schema, raw)
	if err != nil {
		return nil, malformed(source, err)
	}

	ds := &Dataset{
		View:     NewView(schema, rows),
		Source:   source,
		LoadedAt: time.Now(),
		RowsRead: len(raw),
		Dropped:  len(raw) - len(rows),
	}

	l.logger.InfoContext(ctx, "dataset loaded",
		"source", source,
		"columns", schema.Len(),
		"rows_read", ds.RowsRead,
		"rows_kept", ds.Len(),
		"rows_dropped", ds.Dropped,
		"duration", time.Since(start),
	)
	return ds, nil
}

// parseRows converts raw rows in fixed-size batches on a bounded worker pool.
// Output order matches input order; rows with a missing value are dropped.
func (l *loader) parseRows(ctx context.Context, schema *Schema, raw [][]string) ([]models.Record, error) {
	cols := resolveColumns(schema)

	parsed := make([]models.Record, len(raw))
	valid := make([]bool, len(raw))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.maxWorkers)

	for lo := 0; lo < len(raw); lo += l.batchSize {
		hi := min(lo+l.batchSize, len(raw))
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			for i := lo; i < hi; i++ {
				parsed[i], valid[i] = parseRecord(cols, raw[i])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rows := make([]models.Record, 0, len(raw))
	for i := range parsed {
		if valid[i] {
			rows = append(rows, parsed[i])
		}
	}
	return rows, nil
}

type columnIndex struct {
	width    int
	region   int
	rate     int
	date     int
	labour   int
	employed int
}

func resolveColumns(schema *Schema) columnIndex {
	idx := func(name string) int {
		if i, ok := schema.Index(name); ok {
			return i
		}
		return -1
	}
	return columnIndex{
		width:    schema.Len(),
		region:   idx(models.ColumnRegion),
		rate:     idx(models.ColumnUnemploymentRate),
		date:     idx(models.ColumnDate),
		labour:   idx(models.ColumnLabourParticipationRate),
		employed: idx(models.ColumnEstimatedEmployed),
	}
}

// parseRecord parses the date first so that an unparseable date counts as a
// missing value, then rejects the row if any cell is missing. Short rows are
// missing their trailing cells.
func parseRecord(cols columnIndex, raw []string) (models.Record, bool) {
	if len(raw) < cols.width {
		return models.Record{}, false
	}

	var rec models.Record
	if cols.date >= 0 {
		d, ok := ParseDate(raw[cols.date])
		if !ok {
			return models.Record{}, false
		}
		rec.Date = d
	}

	for _, cell := range raw {
		if IsMissing(cell) {
			return models.Record{}, false
		}
	}

	var ok bool
	if rec.UnemploymentRate, ok = ParseFloat(raw[cols.rate]); !ok {
		return models.Record{}, false
	}
	if cols.labour >= 0 {
		if rec.LabourParticipationRate, ok = ParseFloat(raw[cols.labour]); !ok {
			return models.Record{}, false
		}
	}
	if cols.employed >= 0 {
		if rec.EstimatedEmployed, ok = ParseFloat(raw[cols.employed]); !ok {
			return models.Record{}, false
		}
	}

	rec.Region = raw[cols.region]
	rec.Values = raw
	return rec, true
}
