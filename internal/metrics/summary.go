//-------------------------------------------------------------------------
//
// Customer Sales Analysis
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package metrics

import (
	"sort"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/nibeditans/Improved-Version-of-Customer-Sales-Analysis/internal/dataset"
)

// Entry is one group of a summary.
type Entry struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
}

// Summary is a keyed one-measure aggregate, already in presentation
// order.
type Summary struct {
	Title     string  `json:"title"`
	KeyName   string  `json:"key_name"`
	ValueName string  `json:"value_name"`
	Entries   []Entry `json:"entries"`
}

// Total returns the sum of all entry values.
func (s Summary) Total() float64 {
	var total float64
	for _, e := range s.Entries {
		total += e.Value
	}
	return total
}

// Value looks up the value for key.
func (s Summary) Value(key string) (float64, bool) {
	for _, e := range s.Entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return 0, false
}

// Keys returns the entry keys in order.
func (s Summary) Keys() []string {
	keys := make([]string, len(s.Entries))
	for i, e := range s.Entries {
		keys[i] = e.Key
	}
	return keys
}

// Top returns a copy holding at most the first n entries.
func (s Summary) Top(n int) Summary {
	out := s
	if n < len(s.Entries) {
		out.Entries = append([]Entry(nil), s.Entries[:n]...)
	}
	return out
}

// Frame returns the summary as a two-column frame.
func (s Summary) Frame() dataframe.DataFrame {
	keys := make([]string, len(s.Entries))
	values := make([]float64, len(s.Entries))
	for i, e := range s.Entries {
		keys[i] = e.Key
		values[i] = e.Value
	}
	return dataframe.New(
		series.New(keys, series.String, s.KeyName),
		series.New(values, series.Float, s.ValueName),
	)
}

// Order is the presentation order of a summary.
type Order int

const (
	// ByValueDesc sorts by value, largest first. Ties keep first-seen order.
	ByValueDesc Order = iota

	// ByKeyAsc sorts by key, numerically when every key is an integer.
	ByKeyAsc

	// AsSeen keeps first-seen key order.
	AsSeen
)

// group accumulates values per key in first-seen order.
type group struct {
	keys   []string
	values map[string]float64
}

func newGroup() *group {
	return &group{values: make(map[string]float64)}
}

func (g *group) add(key string, v float64) {
	if _, ok := g.values[key]; !ok {
		g.keys = append(g.keys, key)
	}
	g.values[key] += v
}

func (g *group) summary(title, keyName, valueName string, order Order) Summary {
	entries := make([]Entry, len(g.keys))
	for i, k := range g.keys {
		entries[i] = Entry{Key: k, Value: g.values[k]}
	}

	switch order {
	case ByValueDesc:
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].Value > entries[j].Value
		})
	case ByKeyAsc:
		sortKeys(entries)
	}

	return Summary{Title: title, KeyName: keyName, ValueName: valueName, Entries: entries}
}

func sortKeys(entries []Entry) {
	numeric := true
	nums := make([]int, len(entries))
	for i, e := range entries {
		n, err := strconv.Atoi(e.Key)
		if err != nil {
			numeric = false
			break
		}
		nums[i] = n
	}

	if numeric {
		idx := make(map[string]int, len(entries))
		for i, e := range entries {
			idx[e.Key] = nums[i]
		}
		sort.SliceStable(entries, func(i, j int) bool {
			return idx[entries[i].Key] < idx[entries[j].Key]
		})
		return
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Key < entries[j].Key
	})
}

// sumBy groups rows by key and sums value. Rows for which key reports
// false are skipped.
func sumBy(rows []Row, key func(Row) (string, bool), value func(Row) float64) *group {
	g := newGroup()
	for _, r := range rows {
		k, ok := key(r)
		if !ok {
			continue
		}
		g.add(k, value(r))
	}
	return g
}

func sales(r Row) float64    { return r.Sales }
func quantity(r Row) float64 { return float64(r.Quantity) }
func profit(r Row) float64   { return r.Profit }

func byDay(r Row) (string, bool)         { return r.DayOfWeek, r.DayOfWeek != "" }
func bySeason(r Row) (string, bool)      { return r.Season, r.Season != "" }
func byQuarter(r Row) (string, bool)     { return strconv.Itoa(r.QtrID), true }
func byMonth(r Row) (string, bool)       { return strconv.Itoa(r.MonthID), true }
func byYear(r Row) (string, bool)        { return strconv.Itoa(r.YearID), true }
func byProductLine(r Row) (string, bool) { return r.ProductLine, r.ProductLine != "" }
func byOrderLine(r Row) (string, bool)   { return strconv.Itoa(r.OrderLineNumber), true }

// SalesByDay sums sales per day of week. Rows without a date are skipped.
func SalesByDay(rows []Row) Summary {
	return sumBy(rows, byDay, sales).
		summary("Sales by Day of Week", ColDayOfWeek, dataset.ColSales, ByValueDesc)
}

// SalesBySeason sums sales per season. Rows without a date are skipped.
func SalesBySeason(rows []Row) Summary {
	return sumBy(rows, bySeason, sales).
		summary("Sales by Season", ColSeason, dataset.ColSales, ByValueDesc)
}

// SalesByQuarter sums sales per QTR_ID.
func SalesByQuarter(rows []Row) Summary {
	return sumBy(rows, byQuarter, sales).
		summary("Sales by Quarter", dataset.ColQtrID, dataset.ColSales, ByValueDesc)
}

// SalesByMonth sums sales per MONTH_ID.
func SalesByMonth(rows []Row) Summary {
	return sumBy(rows, byMonth, sales).
		summary("Sales by Month", dataset.ColMonthID, dataset.ColSales, ByValueDesc)
}

// SalesByYear sums sales per YEAR_ID.
func SalesByYear(rows []Row) Summary {
	return sumBy(rows, byYear, sales).
		summary("Sales by Year", dataset.ColYearID, dataset.ColSales, ByValueDesc)
}

// SalesByProductLine sums sales per product line, ordered by name.
func SalesByProductLine(rows []Row) Summary {
	return sumBy(rows, byProductLine, sales).
		summary("Sales by Product Line", dataset.ColProductLine, dataset.ColSales, ByKeyAsc)
}

// QuantityByOrderLine sums quantity per ORDER_LINE_NUMBER, in line order.
func QuantityByOrderLine(rows []Row) Summary {
	return sumBy(rows, byOrderLine, quantity).
		summary("Quantity by Order Line Number", dataset.ColOrderLineNumber,
			dataset.ColQuantity, ByKeyAsc)
}

// ProfitByProductLine sums profit per product line.
func ProfitByProductLine(rows []Row) Summary {
	return sumBy(rows, byProductLine, profit).
		summary("Profit by Product Line", dataset.ColProductLine, ColProfit, ByValueDesc)
}

// ProfitByQuarter sums profit per QTR_ID, in quarter order.
func ProfitByQuarter(rows []Row) Summary {
	return sumBy(rows, byQuarter, profit).
		summary("Profit by Quarter", dataset.ColQtrID, ColProfit, ByKeyAsc)
}

// QuantityByDiscount sums quantity per discount category. Every category
// is present, in bin order, with zero for empty bins. Rows with an
// invalid or unmapped discount are skipped.
func QuantityByDiscount(rows []Row) Summary {
	g := newGroup()
	for _, b := range DiscountBins {
		g.add(b.Label, 0)
	}
	for _, r := range rows {
		if !r.DiscountValid || r.DiscountCategory == "" {
			continue
		}
		g.add(r.DiscountCategory, float64(r.Quantity))
	}
	return g.summary("Quantity by Discount Category", ColDiscountCategory,
		dataset.ColQuantity, AsSeen)
}

// CustomersByCountry counts distinct customer names per country.
func CustomersByCountry(rows []Row) Summary {
	g := newGroup()
	seen := make(map[string]map[string]struct{})
	for _, r := range rows {
		if r.Country == "" || r.CustomerName == "" {
			continue
		}
		names, ok := seen[r.Country]
		if !ok {
			names = make(map[string]struct{})
			seen[r.Country] = names
		}
		if _, dup := names[r.CustomerName]; dup {
			continue
		}
		names[r.CustomerName] = struct{}{}
		g.add(r.Country, 1)
	}
	return g.summary("Customers by Country", dataset.ColCountry, "CUSTOMERS", ByValueDesc)
}
