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
	"reflect"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestDescribe(t *testing.T) {
	d := Describe("SALES", []float64{4, 1, 3, 2})

	if d.Count != 4 {
		t.Errorf("Expected count 4, got %d", d.Count)
	}
	checks := []struct {
		name      string
		got, want float64
	}{
		{"mean", d.Mean, 2.5},
		{"std", d.Std, math.Sqrt(5.0 / 3.0)},
		{"min", d.Min, 1},
		{"q25", d.Q25, 1.75},
		{"median", d.Median, 2.5},
		{"q75", d.Q75, 3.25},
		{"max", d.Max, 4},
	}
	for _, c := range checks {
		if !almostEqual(c.got, c.want) {
			t.Errorf("Expected %s %v, got %v", c.name, c.want, c.got)
		}
	}
}

func TestDescribeEdgeCases(t *testing.T) {
	if d := Describe("X", nil); d.Count != 0 || d.Mean != 0 {
		t.Errorf("Expected zero description, got %+v", d)
	}
	d := Describe("X", []float64{7})
	if d.Std != 0 || d.Median != 7 || d.Q25 != 7 {
		t.Errorf("Expected single-value description, got %+v", d)
	}
}

func TestFindOutliers(t *testing.T) {
	o := FindOutliers([]float64{1, 2, 3, 4, 100, -50})

	// Sorted: -50 1 2 3 4 100, Q1 1.25, Q3 3.75, IQR 2.5.
	if !almostEqual(o.Q1, 1.25) || !almostEqual(o.Q3, 3.75) {
		t.Errorf("Expected quartiles 1.25 and 3.75, got %v and %v", o.Q1, o.Q3)
	}
	if !almostEqual(o.Lower, -2.5) || !almostEqual(o.Upper, 7.5) {
		t.Errorf("Expected whiskers -2.5 and 7.5, got %v and %v", o.Lower, o.Upper)
	}
	if !reflect.DeepEqual(o.Indices, []int{4, 5}) {
		t.Errorf("Expected outliers at 4 and 5, got %v", o.Indices)
	}
}

func TestRollingMean(t *testing.T) {
	tests := []struct {
		values []float64
		window int
		want   []float64 // NaN marks a missing entry
	}{
		{[]float64{1, 2, 3, 4, 5}, 3, []float64{math.NaN(), math.NaN(), 2, 3, 4}},
		{[]float64{4, 6}, 1, []float64{4, 6}},
		{[]float64{1, 2}, 3, []float64{math.NaN(), math.NaN()}},
	}
	for _, tt := range tests {
		got := RollingMean(tt.values, tt.window)
		if len(got) != len(tt.want) {
			t.Fatalf("Expected %d entries for %v, got %d", len(tt.want), tt.values, len(got))
		}
		for i, w := range tt.want {
			switch {
			case math.IsNaN(w) && got[i] != nil:
				t.Errorf("Expected missing entry %d for %v, got %v", i, tt.values, *got[i])
			case !math.IsNaN(w) && (got[i] == nil || *got[i] != w):
				t.Errorf("Expected %v at %d for %v, got %v", w, i, tt.values, got[i])
			}
		}
	}
	if got := RollingMean([]float64{1, 2}, 0); got != nil {
		t.Errorf("Expected nil for zero window, got %v", got)
	}
}

func TestNewHistogram(t *testing.T) {
	h, err := NewHistogram([]float64{4, 0, 1, 2, 3}, 4)
	if err != nil {
		t.Fatalf("NewHistogram failed: %v", err)
	}
	if !reflect.DeepEqual(h.Edges, []float64{0, 1, 2, 3, 4}) {
		t.Errorf("Expected edges 0..4, got %v", h.Edges)
	}
	// The maximum lands in the closed last bin.
	if !reflect.DeepEqual(h.Counts, []float64{1, 1, 1, 2}) {
		t.Errorf("Expected counts [1 1 1 2], got %v", h.Counts)
	}
}

func TestNewHistogramConstant(t *testing.T) {
	h, err := NewHistogram([]float64{5, 5}, 2)
	if err != nil {
		t.Fatalf("NewHistogram failed: %v", err)
	}
	if !reflect.DeepEqual(h.Edges, []float64{4.5, 5, 5.5}) {
		t.Errorf("Expected edges [4.5 5 5.5], got %v", h.Edges)
	}
	if !reflect.DeepEqual(h.Counts, []float64{0, 2}) {
		t.Errorf("Expected counts [0 2], got %v", h.Counts)
	}

	if _, err := NewHistogram(nil, 20); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("Expected ErrInsufficientData, got %v", err)
	}
}

func TestCorrelation(t *testing.T) {
	c, err := Correlation([]float64{1, 2, 3}, []float64{2, 4, 6})
	if err != nil {
		t.Fatalf("Correlation failed: %v", err)
	}
	if !almostEqual(c, 1) {
		t.Errorf("Expected correlation 1, got %v", c)
	}

	if _, err := Correlation([]float64{1, 1, 1}, []float64{1, 2, 3}); !errors.Is(err, ErrDivisionByZero) {
		t.Errorf("Expected ErrDivisionByZero for constant input, got %v", err)
	}
	if _, err := Correlation([]float64{1}, []float64{1}); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("Expected ErrInsufficientData, got %v", err)
	}
}

func TestColumn(t *testing.T) {
	rows := customerRows()
	got := Column(rows, SalesOf)
	if !reflect.DeepEqual(got, []float64{100, 200, 300, 50, 1000}) {
		t.Errorf("Expected sales column, got %v", got)
	}
}
