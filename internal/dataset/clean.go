//-------------------------------------------------------------------------
//
// Customer Sales Analysis
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package dataset

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/nibeditans/Improved-Version-of-Customer-Sales-Analysis/internal/logging"
)

// maxDateSamples caps the unparseable date values kept for reporting.
const maxDateSamples = 5

// DefaultDateLayouts are tried in order when parsing ORDER_DATE.
var DefaultDateLayouts = []string{
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
	"1/2/2006",
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006/01/02",
}

// CleanOptions configures the cleaning stage.
type CleanOptions struct {
	// DateLayouts are Go time layouts tried in order for ORDER_DATE.
	DateLayouts []string
}

// DefaultCleanOptions returns the default cleaning options.
func DefaultCleanOptions() CleanOptions {
	return CleanOptions{DateLayouts: DefaultDateLayouts}
}

// NullCount is the number of missing cells in one raw column.
type NullCount struct {
	Column string `json:"column"`
	Count  int    `json:"count"`
}

// CleanStats describes what cleaning found in the raw table.
type CleanStats struct {
	Rows               int         `json:"rows"`
	InvalidDates       int         `json:"invalid_dates"`
	InvalidDateSamples []string    `json:"invalid_date_samples,omitempty"`
	Duplicates         []int       `json:"duplicates,omitempty"`
	Nulls              []NullCount `json:"nulls"`
}

// Clean drops ADDRESS_LINE2, renames PRICE_EACH to UNIT_PRICE and parses
// ORDER_DATE. Unparseable dates become missing and are counted; a
// malformed required numeric cell fails the whole clean. Duplicate rows
// are reported in the stats but kept.
func Clean(raw dataframe.DataFrame, opts CleanOptions) (*Table, CleanStats, error) {
	stats := CleanStats{Rows: raw.Nrow()}

	if err := ValidateColumns(raw.Names()); err != nil {
		return nil, stats, err
	}

	layouts := opts.DateLayouts
	if len(layouts) == 0 {
		layouts = DefaultDateLayouts
	}

	stats.Nulls = NullCounts(raw)
	stats.Duplicates = Duplicates(raw)

	df := raw
	if hasColumn(df, ColAddressLine2) {
		df = df.Drop(ColAddressLine2)
	}
	df = df.Rename(ColUnitPrice, ColPriceEach)
	if df.Err != nil {
		return nil, stats, fmt.Errorf("failed to reshape table: %w", df.Err)
	}

	lines := make([]OrderLine, df.Nrow())
	dates := make([]string, df.Nrow())
	cols := newColumnSet(df)

	for i := range lines {
		line, err := cols.line(i)
		if err != nil {
			return nil, stats, err
		}

		rawDate := cols.str(ColOrderDate, i)
		if d, ok := ParseDate(rawDate, layouts); ok {
			line.OrderDate = d
			dates[i] = d.Format(DateLayout)
		} else {
			stats.InvalidDates++
			if len(stats.InvalidDateSamples) < maxDateSamples {
				stats.InvalidDateSamples = append(stats.InvalidDateSamples, rawDate)
			}
			dates[i] = "NaN"
		}
		lines[i] = line
	}

	df = df.Mutate(series.New(dates, series.String, ColOrderDate))
	if df.Err != nil {
		return nil, stats, fmt.Errorf("failed to store parsed dates: %w", df.Err)
	}

	if stats.InvalidDates > 0 {
		logging.Warn().
			Int("count", stats.InvalidDates).
			Strs("samples", stats.InvalidDateSamples).
			Msg("Unparseable order dates treated as missing")
	}
	if len(stats.Duplicates) > 0 {
		logging.Info().
			Int("count", len(stats.Duplicates)).
			Msg("Duplicate rows detected (kept)")
	}

	return &Table{lines: lines, frame: df}, stats, nil
}

// ParseDate parses s with the first matching layout and returns the
// calendar date in UTC.
func ParseDate(s string, layouts []string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range layouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// NullCounts returns the number of missing cells per column, in column
// order.
func NullCounts(df dataframe.DataFrame) []NullCount {
	names := df.Names()
	counts := make([]NullCount, 0, len(names))
	for _, name := range names {
		n := 0
		for _, na := range df.Col(name).IsNaN() {
			if na {
				n++
			}
		}
		counts = append(counts, NullCount{Column: name, Count: n})
	}
	return counts
}

// Duplicates returns the indices of rows identical to an earlier row.
func Duplicates(df dataframe.DataFrame) []int {
	records := df.Records()
	if len(records) < 2 {
		return nil
	}

	seen := make(map[string]struct{}, len(records)-1)
	var dups []int
	for i, rec := range records[1:] {
		key := strings.Join(rec, "\x1f")
		if _, ok := seen[key]; ok {
			dups = append(dups, i)
			continue
		}
		seen[key] = struct{}{}
	}
	return dups
}

func hasColumn(df dataframe.DataFrame, name string) bool {
	for _, n := range df.Names() {
		if n == name {
			return true
		}
	}
	return false
}

// columnSet gives row-wise access to the columns of a cleaned frame.
type columnSet map[string]series.Series

func newColumnSet(df dataframe.DataFrame) columnSet {
	cols := make(columnSet, df.Ncol())
	for _, name := range df.Names() {
		cols[name] = df.Col(name)
	}
	return cols
}

// str returns the trimmed cell value, or "" when the cell or column is
// missing.
func (c columnSet) str(name string, i int) string {
	s, ok := c[name]
	if !ok {
		return ""
	}
	e := s.Elem(i)
	if e.IsNA() {
		return ""
	}
	return strings.TrimSpace(e.String())
}

func (c columnSet) floatVal(name string, i int) (float64, error) {
	v := c.str(name, i)
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: row %d column %s: %q", ErrMalformedValue, i+1, name, v)
	}
	return f, nil
}

func (c columnSet) intVal(name string, i int) (int, error) {
	v := c.str(name, i)
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: row %d column %s: %q", ErrMalformedValue, i+1, name, v)
	}
	return n, nil
}

func (c columnSet) line(i int) (OrderLine, error) {
	l := OrderLine{
		OrderNumber:  c.str(ColOrderNumber, i),
		Status:       c.str(ColStatus, i),
		ProductLine:  c.str(ColProductLine, i),
		ProductCode:  c.str(ColProductCode, i),
		CustomerName: c.str(ColCustomerName, i),
		City:         c.str(ColCity, i),
		Country:      c.str(ColCountry, i),
		Territory:    c.str(ColTerritory, i),
		DealSize:     c.str(ColDealSize, i),
	}

	var err error
	ints := []struct {
		col string
		dst *int
	}{
		{ColQuantity, &l.Quantity},
		{ColOrderLineNumber, &l.OrderLineNumber},
		{ColQtrID, &l.QtrID},
		{ColMonthID, &l.MonthID},
		{ColYearID, &l.YearID},
	}
	for _, f := range ints {
		if *f.dst, err = c.intVal(f.col, i); err != nil {
			return l, err
		}
	}

	floats := []struct {
		col string
		dst *float64
	}{
		{ColUnitPrice, &l.UnitPrice},
		{ColSales, &l.Sales},
		{ColMSRP, &l.MSRP},
	}
	for _, f := range floats {
		if *f.dst, err = c.floatVal(f.col, i); err != nil {
			return l, err
		}
	}
	return l, nil
}

// linesFrame renders typed lines as a frame with typed columns.
func linesFrame(lines []OrderLine) dataframe.DataFrame {
	n := len(lines)
	var (
		orderNumbers = make([]string, n)
		quantities   = make([]int, n)
		prices       = make([]float64, n)
		lineNumbers  = make([]int, n)
		sales        = make([]float64, n)
		dates        = make([]string, n)
		statuses     = make([]string, n)
		qtrs         = make([]int, n)
		months       = make([]int, n)
		years        = make([]int, n)
		productLines = make([]string, n)
		msrps        = make([]float64, n)
		productCodes = make([]string, n)
		customers    = make([]string, n)
		cities       = make([]string, n)
		countries    = make([]string, n)
		territories  = make([]string, n)
		dealSizes    = make([]string, n)
	)
	for i, l := range lines {
		orderNumbers[i] = l.OrderNumber
		quantities[i] = l.Quantity
		prices[i] = l.UnitPrice
		lineNumbers[i] = l.OrderLineNumber
		sales[i] = l.Sales
		dates[i] = l.DateString()
		if dates[i] == "" {
			dates[i] = "NaN"
		}
		statuses[i] = l.Status
		qtrs[i] = l.QtrID
		months[i] = l.MonthID
		years[i] = l.YearID
		productLines[i] = l.ProductLine
		msrps[i] = l.MSRP
		productCodes[i] = l.ProductCode
		customers[i] = l.CustomerName
		cities[i] = l.City
		countries[i] = l.Country
		territories[i] = l.Territory
		dealSizes[i] = l.DealSize
	}

	return dataframe.New(
		series.New(orderNumbers, series.String, ColOrderNumber),
		series.New(quantities, series.Int, ColQuantity),
		series.New(prices, series.Float, ColUnitPrice),
		series.New(lineNumbers, series.Int, ColOrderLineNumber),
		series.New(sales, series.Float, ColSales),
		series.New(dates, series.String, ColOrderDate),
		series.New(statuses, series.String, ColStatus),
		series.New(qtrs, series.Int, ColQtrID),
		series.New(months, series.Int, ColMonthID),
		series.New(years, series.Int, ColYearID),
		series.New(productLines, series.String, ColProductLine),
		series.New(msrps, series.Float, ColMSRP),
		series.New(productCodes, series.String, ColProductCode),
		series.New(customers, series.String, ColCustomerName),
		series.New(cities, series.String, ColCity),
		series.New(countries, series.String, ColCountry),
		series.New(territories, series.String, ColTerritory),
		series.New(dealSizes, series.String, ColDealSize),
	)
}
