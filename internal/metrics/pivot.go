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
	"math"
	"sort"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/nibeditans/Improved-Version-of-Customer-Sales-Analysis/internal/dataset"
)

// Pivot is a two-key sum table. Filled marks the cells that had at least
// one contributing row; the matching Values entry is zero otherwise.
type Pivot struct {
	Title     string      `json:"title"`
	RowName   string      `json:"row_name"`
	Rows      []string    `json:"rows"`
	Columns   []string    `json:"columns"`
	Values    [][]float64 `json:"values"`
	Filled    [][]bool    `json:"filled"`
	ValueName string      `json:"value_name"`
}

// Cell returns the value at (row, col) and whether it was filled.
func (p Pivot) Cell(row, col string) (float64, bool) {
	ri := indexOf(p.Rows, row)
	ci := indexOf(p.Columns, col)
	if ri < 0 || ci < 0 {
		return 0, false
	}
	return p.Values[ri][ci], p.Filled[ri][ci]
}

// Frame returns the pivot with one row per row key and one column per
// column key. Unfilled cells are NA.
func (p Pivot) Frame() dataframe.DataFrame {
	cols := make([]series.Series, 0, len(p.Columns)+1)
	cols = append(cols, series.New(p.Rows, series.String, p.RowName))
	for ci, name := range p.Columns {
		vals := make([]float64, len(p.Rows))
		for ri := range p.Rows {
			vals[ri] = math.NaN()
			if p.Filled[ri][ci] {
				vals[ri] = p.Values[ri][ci]
			}
		}
		cols = append(cols, series.New(vals, series.Float, name))
	}
	return dataframe.New(cols...)
}

// SalesByMonthAndProductLine sums sales per MONTH_ID and product line.
// Months are in numeric order and product lines in name order.
func SalesByMonthAndProductLine(rows []Row) Pivot {
	monthSet := make(map[int]struct{})
	lineSet := make(map[string]struct{})
	for _, r := range rows {
		if r.ProductLine == "" {
			continue
		}
		monthSet[r.MonthID] = struct{}{}
		lineSet[r.ProductLine] = struct{}{}
	}

	months := make([]int, 0, len(monthSet))
	for m := range monthSet {
		months = append(months, m)
	}
	sort.Ints(months)

	lines := make([]string, 0, len(lineSet))
	for l := range lineSet {
		lines = append(lines, l)
	}
	sort.Strings(lines)

	p := Pivot{
		Title:     "Sales by Month and Product Line",
		RowName:   dataset.ColMonthID,
		Rows:      make([]string, len(months)),
		Columns:   lines,
		Values:    make([][]float64, len(months)),
		Filled:    make([][]bool, len(months)),
		ValueName: dataset.ColSales,
	}
	monthIdx := make(map[int]int, len(months))
	for i, m := range months {
		p.Rows[i] = strconv.Itoa(m)
		p.Values[i] = make([]float64, len(lines))
		p.Filled[i] = make([]bool, len(lines))
		monthIdx[m] = i
	}
	lineIdx := make(map[string]int, len(lines))
	for i, l := range lines {
		lineIdx[l] = i
	}

	for _, r := range rows {
		if r.ProductLine == "" {
			continue
		}
		ri, ci := monthIdx[r.MonthID], lineIdx[r.ProductLine]
		p.Values[ri][ci] += r.Sales
		p.Filled[ri][ci] = true
	}
	return p
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
