package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/trytocodeee/Indian-Unemployment-Dashboard/internal/aggregate"
	"github.com/trytocodeee/Indian-Unemployment-Dashboard/internal/dataset"
	"github.com/trytocodeee/Indian-Unemployment-Dashboard/internal/export"
	"github.com/trytocodeee/Indian-Unemployment-Dashboard/internal/filter"
	"github.com/trytocodeee/Indian-Unemployment-Dashboard/internal/metrics"
	"github.com/trytocodeee/Indian-Unemployment-Dashboard/internal/models"
)

var tracer = otel.Tracer("github.com/trytocodeee/Indian-Unemployment-Dashboard/internal/services")

// Dashboard turns filter criteria into a ViewModel over one data source.
type Dashboard struct {
	cache   *DatasetCache
	source  string
	logger  *slog.Logger
	metrics *metrics.Manager
}

type DashboardOption func(*Dashboard)

func WithLogger(logger *slog.Logger) DashboardOption {
	return func(d *Dashboard) {
		if logger != nil {
			d.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Manager) DashboardOption {
	return func(d *Dashboard) {
		d.metrics = m
	}
}

func NewDashboard(cache *DatasetCache, source string, opts ...DashboardOption) *Dashboard {
	if cache == nil {
		cache = NewDatasetCache()
	}
	d := &Dashboard{
		cache:  cache,
		source: source,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Dashboard) Source() string { return d.source }

func (d *Dashboard) Dataset(ctx context.Context) (*dataset.Dataset, error) {
	return d.cache.Get(ctx, d.source)
}

// Reload drops the cached dataset and loads the source again.
func (d *Dashboard) Reload(ctx context.Context) (*dataset.Dataset, error) {
	d.cache.Invalidate(d.source)
	return d.Dataset(ctx)
}

// Selection is the filtered state shared by a render and the download and
// chart endpoints.
type Selection struct {
	Dataset  *dataset.Dataset
	Criteria models.FilterCriteria
	Regions  []string
	Notices  []string
	filter.Result
}

// Select resolves criteria against the current dataset: an empty region
// becomes the first region alphabetically, missing dates become the dataset
// bounds and unknown comparison regions are dropped with a notice.
func (d *Dashboard) Select(ctx context.Context, c models.FilterCriteria) (*Selection, error) {
	ds, err := d.Dataset(ctx)
	if err != nil {
		return nil, err
	}

	sel := &Selection{
		Dataset: ds,
		Regions: filter.Regions(ds.View),
	}

	c = c.Normalize()
	if c.Region == "" && len(sel.Regions) > 0 {
		c.Region = sel.Regions[0]
		c = c.Normalize()
	}
	if c.Region != "" && !slices.Contains(sel.Regions, c.Region) {
		sel.Notices = append(sel.Notices, fmt.Sprintf("Region %q is not in the dataset.", c.Region))
	}

	known := make([]string, 0, len(c.Compare))
	for _, r := range c.Compare {
		if slices.Contains(sel.Regions, r) {
			known = append(known, r)
			continue
		}
		sel.Notices = append(sel.Notices, fmt.Sprintf("Comparison region %q is not in the dataset and was ignored.", r))
	}
	c.Compare = known

	if lo, hi, ok := filter.DateBounds(ds.View); ok {
		if c.Start == nil {
			c.Start = &lo
		}
		if c.End == nil {
			c.End = &hi
		}
		if c.Start.After(*c.End) {
			sel.Notices = append(sel.Notices, "Start date is after end date.")
		}
	} else {
		c.Start, c.End = nil, nil
	}

	sel.Criteria = c
	sel.Result = filter.Apply(ds.View, c)
	return sel, nil
}

// Render computes every dashboard section for c. It never fails: a dataset
// that cannot be loaded yields an unavailable ViewModel, and a section that
// cannot be computed carries a message instead of data.
func (d *Dashboard) Render(ctx context.Context, c models.FilterCriteria) models.ViewModel {
	ctx, span := tracer.Start(ctx, "dashboard.Render")
	defer span.End()

	sel, err := d.Select(ctx, c)
	if err != nil {
		vm := models.ViewModel{
			Status:   models.StatusUnavailable,
			Message:  unavailableMessage(d.source, err),
			Criteria: c,
		}
		span.RecordError(err)
		d.metrics.RecordRender(string(vm.Status))
		d.logger.WarnContext(ctx, "dashboard unavailable", "source", d.source, "error", err)
		return vm
	}

	ds := sel.Dataset
	vm := models.ViewModel{
		Status:       models.StatusReady,
		Criteria:     sel.Criteria,
		Regions:      sel.Regions,
		Columns:      ds.Schema().Columns(),
		HasDate:      ds.Schema().HasDate(),
		RowCount:     sel.Selected.Len(),
		Notices:      sel.Notices,
		DownloadName: export.FileName(sel.Criteria.Region, "csv"),
		LoadedAt:     ds.LoadedAt,
	}
	if lo, hi, ok := filter.DateBounds(ds.View); ok {
		vm.MinDate, vm.MaxDate = &lo, &hi
	}

	span.SetAttributes(
		attribute.String("dashboard.region", sel.Criteria.Region),
		attribute.Int("dashboard.rows", sel.Selected.Len()),
		attribute.Int("dashboard.compare", len(sel.Criteria.Compare)),
	)

	d.renderPreview(&vm, sel)
	d.renderMetrics(ctx, &vm, sel)
	d.renderSummary(ctx, &vm, sel)
	d.renderTrend(ctx, &vm, sel)
	d.renderComparison(ctx, &vm, sel)

	d.metrics.RecordRender(string(vm.Status))
	return vm
}

func (d *Dashboard) renderPreview(vm *models.ViewModel, sel *Selection) {
	head := sel.Selected.Head(models.PreviewRows)
	vm.Preview = make([][]string, 0, head.Len())
	for _, r := range head.All {
		vm.Preview = append(vm.Preview, slices.Clone(r.Values))
	}
	if head.Empty() {
		vm.SetMessage(models.SectionPreview, sectionMessage(dataset.ErrEmptyView))
	}
}

func (d *Dashboard) renderMetrics(ctx context.Context, vm *models.ViewModel, sel *Selection) {
	rate, err := aggregate.Mean(sel.Selected, models.ColumnUnemploymentRate)
	if err != nil {
		d.sectionFailed(ctx, vm, models.SectionMetrics, err)
		return
	}
	m := &models.Metrics{AvgUnemploymentRate: rate}

	schema := sel.Dataset.Schema()
	if schema.Has(models.ColumnLabourParticipationRate) {
		if v, err := aggregate.Mean(sel.Selected, models.ColumnLabourParticipationRate); err == nil {
			m.AvgLabourParticipationRate = &v
		}
	}
	if schema.Has(models.ColumnEstimatedEmployed) {
		if v, err := aggregate.Mean(sel.Selected, models.ColumnEstimatedEmployed); err == nil {
			m.AvgEstimatedEmployed = &v
		}
	}
	vm.Metrics = m
}

func (d *Dashboard) renderSummary(ctx context.Context, vm *models.ViewModel, sel *Selection) {
	stats, err := aggregate.Summarize(sel.Selected, models.ColumnUnemploymentRate)
	if err != nil {
		d.sectionFailed(ctx, vm, models.SectionSummary, err)
		return
	}
	vm.Summary = &stats
}

func (d *Dashboard) renderTrend(ctx context.Context, vm *models.ViewModel, sel *Selection) {
	if sel.Selected.Empty() {
		d.sectionFailed(ctx, vm, models.SectionTrend, dataset.ErrEmptyView)
		return
	}
	trend, err := aggregate.Series(sel.Selected, models.ColumnUnemploymentRate)
	if err != nil {
		d.sectionFailed(ctx, vm, models.SectionTrend, err)
		return
	}
	vm.Trend = &trend

	if vm.HasDate && sel.Dataset.Schema().Has(models.ColumnLabourParticipationRate) {
		if labour, err := aggregate.Series(sel.Selected, models.ColumnLabourParticipationRate); err == nil {
			vm.Labour = &labour
		}
	}
}

func (d *Dashboard) renderComparison(ctx context.Context, vm *models.ViewModel, sel *Selection) {
	if len(sel.Criteria.Compare) == 0 {
		return
	}
	if !vm.HasDate {
		vm.SetMessage(models.SectionComparison, "Comparison needs a date column.")
		return
	}
	if sel.Comparison.Empty() {
		d.sectionFailed(ctx, vm, models.SectionComparison, dataset.ErrEmptyView)
		return
	}

	for _, region := range sel.Criteria.Regions() {
		s, err := aggregate.Series(filter.ByRegion(sel.Comparison, region), models.ColumnUnemploymentRate)
		if err != nil {
			d.sectionFailed(ctx, vm, models.SectionComparison, err)
			return
		}
		s.Name = region
		vm.Comparison = append(vm.Comparison, s)
	}

	ranking, err := aggregate.GroupMeans(sel.Comparison, models.ColumnRegion, models.ColumnUnemploymentRate)
	if err != nil {
		d.sectionFailed(ctx, vm, models.SectionComparison, err)
		return
	}
	vm.Ranking = ranking
}

func (d *Dashboard) sectionFailed(ctx context.Context, vm *models.ViewModel, section string, err error) {
	vm.SetMessage(section, sectionMessage(err))
	d.metrics.RecordSectionError(section)
	d.logger.DebugContext(ctx, "section not rendered", "section", section, "error", err)
}

func sectionMessage(err error) string {
	switch {
	case errors.Is(err, dataset.ErrEmptyView):
		return "No data for the current selection."
	case errors.Is(err, dataset.ErrMissingColumn):
		return fmt.Sprintf("This dataset cannot provide the section: %v.", err)
	default:
		return err.Error()
	}
}

func unavailableMessage(source string, err error) string {
	switch {
	case errors.Is(err, dataset.ErrNotFound):
		return fmt.Sprintf("%s not found. Make sure the data file exists or set CSV_FILE.", source)
	case errors.Is(err, dataset.ErrMissingColumn):
		return fmt.Sprintf("%s is missing a required column: %v", source, err)
	default:
		return fmt.Sprintf("Error loading data: %v", err)
	}
}

// Stats reports the loaded dataset for operational endpoints.
func (d *Dashboard) Stats(ctx context.Context) map[string]any {
	stats := map[string]any{
		"source": d.source,
		"cache":  d.cache.Stats(),
	}
	ds, err := d.Dataset(ctx)
	if err != nil {
		stats["status"] = models.StatusUnavailable
		stats["error"] = err.Error()
		return stats
	}
	stats["status"] = models.StatusReady
	stats["record_count"] = ds.Len()
	stats["rows_dropped"] = ds.Dropped
	stats["columns"] = ds.Schema().Columns()
	stats["regions"] = len(filter.Regions(ds.View))
	stats["last_loaded"] = ds.LoadedAt.Format(time.RFC3339)
	if !ds.ModTime.IsZero() {
		stats["last_modified"] = ds.ModTime.Format(time.RFC3339)
	}
	return stats
}
