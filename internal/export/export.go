//-------------------------------------------------------------------------
//
// Customer Sales Analysis
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package export writes analysis results to files. Exporters register
// themselves by format name and are selected at run time.
package export

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/gosimple/slug"

	"github.com/nibeditans/Improved-Version-of-Customer-Sales-Analysis/internal/logging"
	"github.com/nibeditans/Improved-Version-of-Customer-Sales-Analysis/internal/pipeline"
)

// TimestampLayout names timestamped run directories.
const TimestampLayout = "20060102_150405"

// ErrUnknownExporter is returned for a format nobody registered.
var ErrUnknownExporter = errors.New("unknown export format")

// Exporter writes a result into a directory.
type Exporter interface {
	// Name is the format name used in configuration.
	Name() string

	// Extension is the file extension, including the dot.
	Extension() string

	// Export writes res into dir and returns the files it created.
	Export(res *pipeline.Result, dir string) ([]string, error)
}

var (
	registry = make(map[string]Exporter)
	mu       sync.RWMutex
)

// Register adds an exporter to the registry.
func Register(e Exporter) {
	mu.Lock()
	defer mu.Unlock()
	registry[e.Name()] = e
}

// Get retrieves an exporter by format name.
func Get(name string) (Exporter, error) {
	mu.RLock()
	defer mu.RUnlock()

	e, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownExporter, name)
	}
	return e, nil
}

// List returns the registered format names in sorted order.
func List() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Options controls ExportAll.
type Options struct {
	// Dir is the output directory. It is created when missing.
	Dir string

	// Formats lists exporter names. Empty means every registered format.
	Formats []string

	// Timestamp writes into a run_<timestamp> subdirectory of Dir.
	Timestamp bool
}

// ExportAll runs every selected exporter and returns all files written.
// Unknown formats are rejected before anything is written.
func ExportAll(res *pipeline.Result, opts Options) ([]string, error) {
	formats := opts.Formats
	if len(formats) == 0 {
		formats = List()
	}

	exporters := make([]Exporter, 0, len(formats))
	for _, f := range formats {
		e, err := Get(f)
		if err != nil {
			return nil, err
		}
		exporters = append(exporters, e)
	}

	dir := opts.Dir
	if opts.Timestamp {
		dir = filepath.Join(dir, "run_"+res.StartedAt.Format(TimestampLayout))
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	var files []string
	for _, e := range exporters {
		written, err := e.Export(res, dir)
		if err != nil {
			return files, fmt.Errorf("%s export: %w", e.Name(), err)
		}
		logging.Info().
			Str("format", e.Name()).
			Int("files", len(written)).
			Str("dir", dir).
			Msg("Exported results")
		files = append(files, written...)
	}
	return files, nil
}

// Table is one named output table.
type Table struct {
	Name  string
	Title string
	Frame dataframe.DataFrame
}

// Tables returns every table of a result in report order, ending with
// the cleaned data.
func Tables(res *pipeline.Result) []Table {
	var tables []Table
	add := func(title string, df dataframe.DataFrame) {
		tables = append(tables, Table{Name: slug.Make(title), Title: title, Frame: df})
	}

	for _, s := range res.Summaries() {
		add(s.Title, s.Frame())
	}
	add(res.SalesPivot.Title, res.SalesPivot.Frame())
	add("RFM Scores", res.RFM.Frame())
	add("Customer Lifetime Value", clvFrame(res))
	add("Cleaned Sales", res.Derived.Frame())
	return tables
}

// clvFrame lists the CLV figures. They are all NA when CLV is unavailable.
func clvFrame(res *pipeline.Result) dataframe.DataFrame {
	c := res.CLV
	values := []float64{
		c.AverageOrderValue,
		c.PurchaseFrequency,
		c.LifespanDays,
		c.LifespanYears,
		c.Value,
	}
	if !res.HasCLV() {
		for i := range values {
			values[i] = math.NaN()
		}
	}
	return dataframe.New(
		series.New([]string{
			"AVERAGE_ORDER_VALUE",
			"PURCHASE_FREQUENCY",
			"LIFESPAN_DAYS",
			"LIFESPAN_YEARS",
			"CLV",
		}, series.String, "METRIC"),
		series.New(values, series.Float, "VALUE"),
	)
}

func tablePath(dir string, t Table, ext string) string {
	return filepath.Join(dir, t.Name+ext)
}
