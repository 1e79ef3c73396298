//-------------------------------------------------------------------------
//
// Customer Sales Analysis
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package metrics derives per-row features from a cleaned sales table and
// computes the aggregate, customer value and statistical tables.
package metrics

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/nibeditans/Improved-Version-of-Customer-Sales-Analysis/internal/dataset"
	"github.com/nibeditans/Improved-Version-of-Customer-Sales-Analysis/internal/logging"
)

// ErrDivisionByZero is returned when a ratio has a zero denominator.
var ErrDivisionByZero = errors.New("division by zero")

// DefaultCostRatio is the assumed share of the unit price that is cost.
const DefaultCostRatio = 0.7

// Derived column names.
const (
	ColDayOfWeek        = "DAY_OF_WEEK"
	ColSeason           = "SEASON"
	ColDiscount         = "DISCOUNT"
	ColDiscountCategory = "DISCOUNT_CATEGORY"
	ColCost             = "COST"
	ColProfit           = "PROFIT"
)

// Seasons, in calendar order.
const (
	Winter = "Winter"
	Spring = "Spring"
	Summer = "Summer"
	Fall   = "Fall"
)

// SeasonOf maps a month to its meteorological season.
func SeasonOf(m time.Month) string {
	switch m {
	case time.December, time.January, time.February:
		return Winter
	case time.March, time.April, time.May:
		return Spring
	case time.June, time.July, time.August:
		return Summer
	default:
		return Fall
	}
}

// DiscountBin is a right-open discount percentage interval.
type DiscountBin struct {
	Label string
	Low   float64
	High  float64
}

// DiscountBins are the fixed discount categories, in order.
var DiscountBins = []DiscountBin{
	{"0-10%", 0, 10},
	{"10-20%", 10, 20},
	{"20-30%", 20, 30},
	{"30-50%", 30, 50},
	{"50-100%", 50, 100},
}

// Discount returns max(0, (msrp-unitPrice)/msrp*100) rounded to two
// decimals.
func Discount(msrp, unitPrice float64) (float64, error) {
	if msrp == 0 {
		return 0, fmt.Errorf("discount with zero MSRP: %w", ErrDivisionByZero)
	}
	pct := (msrp - unitPrice) / msrp * 100
	return Round2(math.Max(pct, 0)), nil
}

// DiscountCategory returns the label of the bin holding pct, or "" when
// pct falls outside every bin.
func DiscountCategory(pct float64) string {
	for _, b := range DiscountBins {
		if pct >= b.Low && pct < b.High {
			return b.Label
		}
	}
	return ""
}

// Row is a cleaned order line with its derived features.
type Row struct {
	dataset.OrderLine

	// DayOfWeek and Season are empty when the order date is missing.
	DayOfWeek string
	Season    string

	// Discount is only meaningful when DiscountValid is set.
	Discount         float64
	DiscountValid    bool
	DiscountCategory string

	Cost   float64
	Profit float64
}

// DeriveOptions configures feature derivation.
type DeriveOptions struct {
	CostRatio float64

	// StrictMSRP fails derivation on a zero MSRP instead of marking the
	// row's discount invalid.
	StrictMSRP bool
}

// DefaultDeriveOptions returns the default derivation options.
func DefaultDeriveOptions() DeriveOptions {
	return DeriveOptions{CostRatio: DefaultCostRatio}
}

// Derived is a cleaned table extended with feature columns.
type Derived struct {
	Table *dataset.Table
	Rows  []Row

	// InvalidDiscounts counts rows whose discount could not be computed.
	InvalidDiscounts int
}

// Derive computes the per-row features of t. Every feature depends only
// on its own row.
func Derive(t *dataset.Table, opts DeriveOptions) (*Derived, error) {
	lines := t.Lines()
	d := &Derived{Table: t, Rows: make([]Row, len(lines))}

	for i, l := range lines {
		r, err := DeriveRow(l, opts.CostRatio)
		if err != nil {
			if opts.StrictMSRP {
				return nil, fmt.Errorf("row %d: %w", i+1, err)
			}
			d.InvalidDiscounts++
		}
		d.Rows[i] = r
	}

	if d.InvalidDiscounts > 0 {
		logging.Warn().
			Int("count", d.InvalidDiscounts).
			Msg("Rows with zero MSRP excluded from discount figures")
	}
	return d, nil
}

// DeriveRow computes the features of one line. On a zero MSRP the row is
// still returned, with DiscountValid unset, alongside the error.
func DeriveRow(l dataset.OrderLine, costRatio float64) (Row, error) {
	r := Row{OrderLine: l}

	if l.HasDate() {
		r.DayOfWeek = l.OrderDate.Weekday().String()
		r.Season = SeasonOf(l.OrderDate.Month())
	}

	r.Cost = costRatio * l.UnitPrice
	r.Profit = l.Sales - r.Cost*float64(l.Quantity)

	disc, err := Discount(l.MSRP, l.UnitPrice)
	if err != nil {
		return r, err
	}
	r.Discount = disc
	r.DiscountValid = true
	r.DiscountCategory = DiscountCategory(disc)
	return r, nil
}

// Frame returns the cleaned frame with the derived columns appended.
// Missing values are NA.
func (d *Derived) Frame() dataframe.DataFrame {
	n := len(d.Rows)
	days := make([]string, n)
	seasons := make([]string, n)
	discounts := make([]float64, n)
	categories := make([]string, n)
	costs := make([]float64, n)
	profits := make([]float64, n)

	for i, r := range d.Rows {
		days[i] = naString(r.DayOfWeek)
		seasons[i] = naString(r.Season)
		discounts[i] = math.NaN()
		if r.DiscountValid {
			discounts[i] = r.Discount
		}
		categories[i] = naString(r.DiscountCategory)
		costs[i] = r.Cost
		profits[i] = r.Profit
	}

	extra := dataframe.New(
		series.New(days, series.String, ColDayOfWeek),
		series.New(seasons, series.String, ColSeason),
		series.New(discounts, series.Float, ColDiscount),
		series.New(categories, series.String, ColDiscountCategory),
		series.New(costs, series.Float, ColCost),
		series.New(profits, series.Float, ColProfit),
	)
	return d.Table.Frame().CBind(extra)
}

func naString(s string) string {
	if s == "" {
		return "NaN"
	}
	return s
}
