//-------------------------------------------------------------------------
//
// Customer Sales Analysis
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package metrics

import "fmt"

// CLV is the population-level customer lifetime value and its inputs.
// Each figure is rounded to two decimals, and Value is computed from
// the rounded inputs.
type CLV struct {
	// AverageOrderValue is total sales over the number of order lines.
	AverageOrderValue float64 `json:"average_order_value"`

	// PurchaseFrequency is distinct orders over distinct customers.
	PurchaseFrequency float64 `json:"purchase_frequency"`

	// LifespanYears is the mean first-to-last order span of customers
	// with at least one dated order, in 365-day years.
	LifespanYears float64 `json:"lifespan_years"`

	// LifespanDays is the unrounded mean span in days.
	LifespanDays float64 `json:"lifespan_days"`

	Value float64 `json:"clv"`
}

// ComputeCLV computes the CLV over every row. Empty inputs fail with
// ErrDivisionByZero rather than producing NaN.
func ComputeCLV(rows []Row) (CLV, error) {
	var (
		total     float64
		lineCount int
		orders    = make(map[string]struct{})
	)
	for _, r := range rows {
		total += r.Sales
		if r.OrderNumber != "" {
			lineCount++
			orders[r.OrderNumber] = struct{}{}
		}
	}
	if lineCount == 0 {
		return CLV{}, fmt.Errorf("average order value: no orders: %w", ErrDivisionByZero)
	}

	customers := aggregateCustomers(rows)
	if len(customers) == 0 {
		return CLV{}, fmt.Errorf("purchase frequency: no customers: %w", ErrDivisionByZero)
	}

	var spanDays float64
	dated := 0
	for _, c := range customers {
		if !c.dated() {
			continue
		}
		spanDays += c.last.Sub(c.first).Hours() / 24
		dated++
	}
	if dated == 0 {
		return CLV{}, fmt.Errorf("customer lifespan: no dated orders: %w", ErrDivisionByZero)
	}

	clv := CLV{
		AverageOrderValue: Round2(total / float64(lineCount)),
		PurchaseFrequency: Round2(float64(len(orders)) / float64(len(customers))),
		LifespanDays:      spanDays / float64(dated),
	}
	clv.LifespanYears = Round2(clv.LifespanDays / 365)
	clv.Value = Round2(clv.AverageOrderValue * clv.PurchaseFrequency * clv.LifespanYears)
	return clv, nil
}
