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
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ErrInsufficientData is returned when a statistic needs more values
// than were given.
var ErrInsufficientData = errors.New("insufficient data")

// Description summarises one numeric column.
type Description struct {
	Column string  `json:"column"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Q25    float64 `json:"q25"`
	Median float64 `json:"median"`
	Q75    float64 `json:"q75"`
	Max    float64 `json:"max"`
}

// Describe returns count, mean, sample standard deviation, extremes and
// quartiles of values. Std is zero for fewer than two values.
func Describe(column string, values []float64) Description {
	d := Description{Column: column, Count: len(values)}
	if len(values) == 0 {
		return d
	}

	sorted := sortedCopy(values)
	d.Mean, d.Std = stat.MeanStdDev(sorted, nil)
	if len(values) < 2 {
		d.Std = 0
	}
	d.Min = floats.Min(sorted)
	d.Max = floats.Max(sorted)
	d.Q25 = quantile(0.25, sorted)
	d.Median = quantile(0.5, sorted)
	d.Q75 = quantile(0.75, sorted)
	return d
}

// quantile interpolates linearly between closest ranks of sorted data,
// matching the common spreadsheet definition. gonum's LinInterp places
// the sample points differently.
func quantile(p float64, sorted []float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	h := p * float64(n-1)
	lo := math.Floor(h)
	i := int(lo)
	if i+1 >= n {
		return sorted[n-1]
	}
	return sorted[i] + (h-lo)*(sorted[i+1]-sorted[i])
}

// Outliers are the values beyond the 1.5×IQR whiskers of a box plot.
type Outliers struct {
	Q1      float64 `json:"q1"`
	Q3      float64 `json:"q3"`
	Lower   float64 `json:"lower"`
	Upper   float64 `json:"upper"`
	Indices []int   `json:"indices"`
}

// FindOutliers applies the box plot rule to values and returns the
// indices of values below Q1-1.5·IQR or above Q3+1.5·IQR.
func FindOutliers(values []float64) Outliers {
	var o Outliers
	if len(values) == 0 {
		return o
	}
	sorted := sortedCopy(values)
	o.Q1 = quantile(0.25, sorted)
	o.Q3 = quantile(0.75, sorted)
	iqr := o.Q3 - o.Q1
	o.Lower = o.Q1 - 1.5*iqr
	o.Upper = o.Q3 + 1.5*iqr
	for i, v := range values {
		if v < o.Lower || v > o.Upper {
			o.Indices = append(o.Indices, i)
		}
	}
	return o
}

// RollingMean returns one entry per value: the mean of the window ending
// at that value. Entries before the first full window are nil.
func RollingMean(values []float64, window int) []*float64 {
	if window < 1 {
		return nil
	}
	out := make([]*float64, len(values))
	for i := window - 1; i < len(values); i++ {
		m := stat.Mean(values[i-window+1:i+1], nil)
		out[i] = &m
	}
	return out
}

// Histogram holds equal-width bin counts. Edges has one more entry than
// Counts; the last bin includes its upper edge.
type Histogram struct {
	Edges  []float64 `json:"edges"`
	Counts []float64 `json:"counts"`
}

// NewHistogram bins values into bins equal-width intervals spanning
// their range. A constant input spans value±0.5.
func NewHistogram(values []float64, bins int) (Histogram, error) {
	if bins < 1 || len(values) == 0 {
		return Histogram{}, ErrInsufficientData
	}

	sorted := sortedCopy(values)
	lo, hi := sorted[0], sorted[len(sorted)-1]
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}

	edges := make([]float64, bins+1)
	floats.Span(edges, lo, hi)

	// stat.Histogram treats the last divider as exclusive.
	dividers := append([]float64(nil), edges...)
	dividers[bins] = math.Nextafter(hi, math.Inf(1))

	counts := stat.Histogram(nil, dividers, sorted, nil)
	return Histogram{Edges: edges, Counts: counts}, nil
}

// Correlation returns the Pearson correlation of x and y.
func Correlation(x, y []float64) (float64, error) {
	if len(x) != len(y) || len(x) < 2 {
		return 0, ErrInsufficientData
	}
	c := stat.Correlation(x, y, nil)
	if math.IsNaN(c) {
		return 0, ErrDivisionByZero
	}
	return c, nil
}

func sortedCopy(values []float64) []float64 {
	s := append([]float64(nil), values...)
	sort.Float64s(s)
	return s
}

// Column extracts one measure from every row.
func Column(rows []Row, value func(Row) float64) []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = value(r)
	}
	return out
}

// Column accessors for the numeric measures.
var (
	SalesOf     = sales
	QuantityOf  = quantity
	ProfitOf    = profit
	UnitPriceOf = func(r Row) float64 { return r.UnitPrice }
	MSRPOf      = func(r Row) float64 { return r.MSRP }
)
