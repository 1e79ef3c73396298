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
	"time"

	"github.com/go-gota/gota/dataframe"
)

// DateLayout is the canonical rendering of a cleaned order date.
const DateLayout = "2006-01-02"

// OrderLine is one cleaned row of a sales file.
type OrderLine struct {
	OrderNumber     string
	Quantity        int
	UnitPrice       float64
	OrderLineNumber int
	Sales           float64

	// OrderDate is the calendar date of the order, or the zero time when
	// the source value could not be parsed.
	OrderDate time.Time

	Status       string
	QtrID        int
	MonthID      int
	YearID       int
	ProductLine  string
	MSRP         float64
	ProductCode  string
	CustomerName string
	City         string
	Country      string
	Territory    string
	DealSize     string
}

// HasDate reports whether the order date was parsed.
func (l OrderLine) HasDate() bool {
	return !l.OrderDate.IsZero()
}

// DateString returns the order date as YYYY-MM-DD, or "" when missing.
func (l OrderLine) DateString() string {
	if !l.HasDate() {
		return ""
	}
	return l.OrderDate.Format(DateLayout)
}

// Table is the cleaned sales table. It is not modified after Clean
// returns it.
type Table struct {
	lines []OrderLine
	frame dataframe.DataFrame
}

// NewTable builds a table from already-typed lines. The frame view holds
// only the typed columns.
func NewTable(lines []OrderLine) *Table {
	t := &Table{lines: lines}
	t.frame = linesFrame(lines)
	return t
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.lines)
}

// Lines returns the typed rows. Callers must not modify the slice.
func (t *Table) Lines() []OrderLine {
	return t.lines
}

// Frame returns the cleaned table as a frame. Column order follows the
// source file with ADDRESS_LINE2 dropped and PRICE_EACH renamed.
func (t *Table) Frame() dataframe.DataFrame {
	return t.frame.Copy()
}

// Columns returns the cleaned column names.
func (t *Table) Columns() []string {
	return t.frame.Names()
}
