// Command export writes one region's unemployment data as CSV or Excel, or
// prints the dashboard view for it as JSON.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/trytocodeee/Indian-Unemployment-Dashboard/internal/config"
	"github.com/trytocodeee/Indian-Unemployment-Dashboard/internal/export"
	"github.com/trytocodeee/Indian-Unemployment-Dashboard/internal/models"
	"github.com/trytocodeee/Indian-Unemployment-Dashboard/internal/observability"
	"github.com/trytocodeee/Indian-Unemployment-Dashboard/internal/services"
)

const (
	formatCSV  = "csv"
	formatXLSX = "xlsx"
	formatView = "view"
)

type options struct {
	file    string
	region  string
	start   string
	end     string
	compare string
	format  string
	output  string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "export:", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var opts options
	fs.StringVar(&opts.file, "file", cfg.Data.CSVFile, "path of the unemployment CSV")
	fs.StringVar(&opts.region, "region", "", "region to export (default: first region alphabetically)")
	fs.StringVar(&opts.start, "start", "", "first date to include, YYYY-MM-DD")
	fs.StringVar(&opts.end, "end", "", "last date to include, YYYY-MM-DD")
	fs.StringVar(&opts.compare, "compare", "", "comma separated regions to compare (view format only)")
	fs.StringVar(&opts.format, "format", formatCSV, "output format: csv, xlsx or view")
	fs.StringVar(&opts.output, "o", "", "output file; '-' for stdout, empty for the default download name")
	if err := fs.Parse(args); err != nil {
		return err
	}

	criteria, err := opts.criteria()
	if err != nil {
		return err
	}

	// Logs go to stderr so they never mix with data written to stdout.
	logger := observability.NewLoggerWithWriter(cfg.Logger, stderr)
	dashboard := services.NewDashboard(
		services.NewDatasetCache(services.WithReloadOnChange(false), services.WithCacheLogger(logger)),
		opts.file,
		services.WithLogger(logger),
	)

	ctx, cancel := context.WithTimeout(ctx, cfg.Data.LoadTimeout)
	defer cancel()

	switch opts.format {
	case formatView:
		vm := dashboard.Render(ctx, criteria)
		if !vm.Ready() {
			return errors.New(vm.Message)
		}
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(vm)

	case formatCSV, formatXLSX:
		sel, err := dashboard.Select(ctx, criteria)
		if err != nil {
			return err
		}
		for _, n := range sel.Notices {
			logger.Warn(n)
		}

		w, name, closeFn, err := opts.open(stdout, sel.Criteria.Region)
		if err != nil {
			return err
		}
		if opts.format == formatCSV {
			err = export.WriteCSV(w, sel.Selected)
		} else {
			err = export.WriteXLSX(w, sel.Selected, export.DefaultSheet)
		}
		if cerr := closeFn(); err == nil {
			err = cerr
		}
		if err != nil {
			return err
		}
		logger.Info("export written", "file", name, "rows", sel.Selected.Len())
		return nil

	default:
		return fmt.Errorf("unknown format %q", opts.format)
	}
}

func (o options) criteria() (models.FilterCriteria, error) {
	c := models.FilterCriteria{Region: strings.TrimSpace(o.region)}
	for _, r := range strings.Split(o.compare, ",") {
		if r = strings.TrimSpace(r); r != "" {
			c.Compare = append(c.Compare, r)
		}
	}
	for _, d := range []struct {
		name  string
		value string
		dst   **time.Time
	}{
		{"start", o.start, &c.Start},
		{"end", o.end, &c.End},
	} {
		if d.value == "" {
			continue
		}
		t, err := time.Parse(models.DateLayout, d.value)
		if err != nil {
			return models.FilterCriteria{}, fmt.Errorf("-%s must be a date in YYYY-MM-DD format", d.name)
		}
		*d.dst = &t
	}
	if c.Start != nil && c.End != nil && c.End.Before(*c.Start) {
		return models.FilterCriteria{}, errors.New("-end must not be before -start")
	}
	return c, nil
}

// open resolves the destination. An empty output uses the download name of
// the region in the working directory.
func (o options) open(stdout io.Writer, region string) (io.Writer, string, func() error, error) {
	name := o.output
	if name == "-" {
		return stdout, "stdout", func() error { return nil }, nil
	}
	if name == "" {
		name = export.FileName(region, o.format)
	}
	f, err := os.Create(name)
	if err != nil {
		return nil, "", nil, fmt.Errorf("create output: %w", err)
	}
	return f, name, f.Close, nil
}
