//-------------------------------------------------------------------------
//
// Customer Sales Analysis
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package pipeline runs the sales analysis stages in order over one
// input file: load, clean, derive, aggregate, customer value and
// statistics. Every stage is a synchronous function of the previous
// stage's output.
package pipeline

import (
	"fmt"
	"time"

	"github.com/go-gota/gota/dataframe"

	"github.com/nibeditans/Improved-Version-of-Customer-Sales-Analysis/internal/dataset"
	"github.com/nibeditans/Improved-Version-of-Customer-Sales-Analysis/internal/logging"
	"github.com/nibeditans/Improved-Version-of-Customer-Sales-Analysis/internal/metrics"
)

// Options holds every policy choice of a run.
type Options struct {
	Load  dataset.LoadOptions
	Clean dataset.CleanOptions

	// CostRatio is the share of the unit price assumed to be cost.
	CostRatio float64

	// StrictMSRP fails the run on a zero MSRP.
	StrictMSRP bool

	TieMethod metrics.TieMethod
	JoinMode  metrics.JoinMode

	// TopCountries limits the country distribution table.
	TopCountries int

	RollingWindow int
	HistogramBins int
}

// DefaultOptions returns the options matching the reference analysis.
func DefaultOptions() Options {
	return Options{
		Load:          dataset.DefaultLoadOptions(),
		Clean:         dataset.DefaultCleanOptions(),
		CostRatio:     metrics.DefaultCostRatio,
		TieMethod:     metrics.TieAverage,
		JoinMode:      metrics.JoinInner,
		TopCountries:  7,
		RollingWindow: 3,
		HistogramBins: 20,
	}
}

// Statistics are the exploratory figures of a run.
type Statistics struct {
	Describe        []metrics.Description `json:"describe"`
	SalesOutliers   metrics.Outliers      `json:"sales_outliers"`
	ProfitHistogram metrics.Histogram     `json:"profit_histogram"`

	// RollingSales has one entry per cleaned row, nil until the first
	// full window.
	RollingSales []*float64 `json:"rolling_sales"`

	// QuantitySalesCorrelation is nil when undefined.
	QuantitySalesCorrelation *float64 `json:"quantity_sales_correlation"`
}

// Result holds every table a run produces. It is read-only once Run
// returns.
type Result struct {
	Input     string             `json:"input"`
	StartedAt time.Time          `json:"started_at"`
	Duration  time.Duration      `json:"duration"`
	Clean     dataset.CleanStats `json:"clean"`

	Table   *dataset.Table   `json:"-"`
	Derived *metrics.Derived `json:"-"`

	InvalidDiscounts int `json:"invalid_discounts"`

	SalesByDay          metrics.Summary `json:"sales_by_day"`
	SalesBySeason       metrics.Summary `json:"sales_by_season"`
	SalesByQuarter      metrics.Summary `json:"sales_by_quarter"`
	SalesByMonth        metrics.Summary `json:"sales_by_month"`
	SalesByYear         metrics.Summary `json:"sales_by_year"`
	QuantityByDiscount  metrics.Summary `json:"quantity_by_discount"`
	SalesByProductLine  metrics.Summary `json:"sales_by_product_line"`
	CustomersByCountry  metrics.Summary `json:"customers_by_country"`
	TopCountries        metrics.Summary `json:"top_countries"`
	QuantityByOrderLine metrics.Summary `json:"quantity_by_order_line"`
	ProfitByProductLine metrics.Summary `json:"profit_by_product_line"`
	ProfitByQuarter     metrics.Summary `json:"profit_by_quarter"`
	SalesPivot          metrics.Pivot   `json:"sales_pivot"`

	RFM metrics.RFM `json:"rfm"`
	CLV metrics.CLV `json:"clv"`

	// CLVErr is set when CLV is undefined, for example when no order
	// date parses. CLV is then the zero value and every other table is
	// still filled in.
	CLVErr error `json:"-"`

	// CLVUnavailable is CLVErr's message in serialised results.
	CLVUnavailable string `json:"clv_unavailable,omitempty"`

	Stats Statistics `json:"stats"`
}

// HasCLV reports whether CLV could be computed.
func (r *Result) HasCLV() bool {
	return r.CLVErr == nil
}

// Summaries returns the one-key summary tables in report order.
func (r *Result) Summaries() []metrics.Summary {
	return []metrics.Summary{
		r.SalesByDay,
		r.SalesBySeason,
		r.SalesByQuarter,
		r.SalesByMonth,
		r.SalesByYear,
		r.QuantityByDiscount,
		r.SalesByProductLine,
		r.TopCountries,
		r.QuantityByOrderLine,
		r.ProfitByProductLine,
		r.ProfitByQuarter,
	}
}

// TotalSales returns the sum of SALES over every row.
func (r *Result) TotalSales() float64 {
	var total float64
	for _, l := range r.Table.Lines() {
		total += l.Sales
	}
	return total
}

// Run loads the file at path and analyses it.
func Run(path string, opts Options) (*Result, error) {
	raw, err := dataset.Load(path, opts.Load)
	if err != nil {
		return nil, err
	}
	res, err := Process(raw, opts)
	if err != nil {
		return nil, err
	}
	res.Input = path
	return res, nil
}

// Process analyses an already loaded raw frame.
func Process(raw dataframe.DataFrame, opts Options) (*Result, error) {
	start := time.Now()
	res := &Result{StartedAt: start.UTC()}

	table, stats, err := dataset.Clean(raw, opts.Clean)
	if err != nil {
		return nil, fmt.Errorf("clean: %w", err)
	}
	res.Table = table
	res.Clean = stats

	derived, err := metrics.Derive(table, metrics.DeriveOptions{
		CostRatio:  opts.CostRatio,
		StrictMSRP: opts.StrictMSRP,
	})
	if err != nil {
		return nil, fmt.Errorf("derive: %w", err)
	}
	res.Derived = derived
	res.InvalidDiscounts = derived.InvalidDiscounts

	aggregate(res, derived.Rows, opts)

	customerValue(res, derived.Rows, opts)

	res.Stats = statistics(derived.Rows, opts)
	res.Duration = time.Since(start)

	logging.Info().
		Int("rows", table.Len()).
		Int("invalid_dates", stats.InvalidDates).
		Int("customers", len(res.RFM.Customers)).
		Float64("clv", res.CLV.Value).
		Dur("duration", res.Duration).
		Msg("Analysis complete")

	return res, nil
}

func aggregate(res *Result, rows []metrics.Row, opts Options) {
	res.SalesByDay = metrics.SalesByDay(rows)
	res.SalesBySeason = metrics.SalesBySeason(rows)
	res.SalesByQuarter = metrics.SalesByQuarter(rows)
	res.SalesByMonth = metrics.SalesByMonth(rows)
	res.SalesByYear = metrics.SalesByYear(rows)
	res.QuantityByDiscount = metrics.QuantityByDiscount(rows)
	res.SalesByProductLine = metrics.SalesByProductLine(rows)
	res.CustomersByCountry = metrics.CustomersByCountry(rows)
	res.TopCountries = res.CustomersByCountry
	if opts.TopCountries > 0 {
		res.TopCountries = res.CustomersByCountry.Top(opts.TopCountries)
		res.TopCountries.Title = fmt.Sprintf("Top %d Countries by Customers", opts.TopCountries)
	}
	res.QuantityByOrderLine = metrics.QuantityByOrderLine(rows)
	res.ProfitByProductLine = metrics.ProfitByProductLine(rows)
	res.ProfitByQuarter = metrics.ProfitByQuarter(rows)
	res.SalesPivot = metrics.SalesByMonthAndProductLine(rows)
}

func customerValue(res *Result, rows []metrics.Row, opts Options) {
	res.RFM = metrics.ComputeRFM(rows, metrics.RFMOptions{
		TieMethod: opts.TieMethod,
		JoinMode:  opts.JoinMode,
	})
	if res.RFM.Excluded > 0 {
		logging.Warn().
			Int("excluded", res.RFM.Excluded).
			Str("join", string(res.RFM.JoinMode)).
			Msg("Customers without dated orders excluded from RFM")
	}

	clv, err := metrics.ComputeCLV(rows)
	if err != nil {
		res.CLVErr = fmt.Errorf("customer lifetime value: %w", err)
		res.CLVUnavailable = res.CLVErr.Error()
		logging.Warn().Err(err).Msg("Customer lifetime value unavailable")
		return
	}
	res.CLV = clv
}

func statistics(rows []metrics.Row, opts Options) Statistics {
	sales := metrics.Column(rows, metrics.SalesOf)
	quantity := metrics.Column(rows, metrics.QuantityOf)

	s := Statistics{
		Describe: []metrics.Description{
			metrics.Describe(dataset.ColSales, sales),
			metrics.Describe(dataset.ColQuantity, quantity),
			metrics.Describe(dataset.ColUnitPrice, metrics.Column(rows, metrics.UnitPriceOf)),
			metrics.Describe(dataset.ColMSRP, metrics.Column(rows, metrics.MSRPOf)),
		},
		SalesOutliers: metrics.FindOutliers(sales),
		RollingSales:  metrics.RollingMean(sales, opts.RollingWindow),
	}

	hist, err := metrics.NewHistogram(metrics.Column(rows, metrics.ProfitOf), opts.HistogramBins)
	if err != nil {
		logging.Debug().Err(err).Msg("Profit histogram skipped")
	}
	s.ProfitHistogram = hist

	if c, err := metrics.Correlation(quantity, sales); err == nil {
		s.QuantitySalesCorrelation = &c
	} else {
		logging.Debug().Err(err).Msg("Quantity/sales correlation undefined")
	}
	return s
}
