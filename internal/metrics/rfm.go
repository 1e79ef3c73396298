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
	"fmt"
	"sort"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/nibeditans/Improved-Version-of-Customer-Sales-Analysis/internal/dataset"
)

// JoinMode controls how customers without a recency figure are merged.
type JoinMode string

const (
	// JoinInner drops customers that have no dated order.
	JoinInner JoinMode = "inner"
	// JoinOuter keeps them with a recency score of zero.
	JoinOuter JoinMode = "outer"
)

// ParseJoinMode validates a join mode name.
func ParseJoinMode(s string) (JoinMode, error) {
	switch JoinMode(s) {
	case JoinInner, JoinOuter:
		return JoinMode(s), nil
	}
	return "", fmt.Errorf("unknown join mode %q (want inner or outer)", s)
}

// RFM column names.
const (
	ColLastOrderDate = "LAST_ORDER_DATE"
	ColFrequency     = "FREQUENCY"
	ColMonetary      = "MONETARY"
	ColRScore        = "R_SCORE"
	ColFScore        = "F_SCORE"
	ColMScore        = "M_SCORE"
	ColRFMScore      = "RFM_SCORE"
)

// CustomerRFM is one customer's recency, frequency and monetary figures
// and their ranks. Higher ranks are better on every dimension.
type CustomerRFM struct {
	Customer string `json:"customer"`

	// LastOrder is zero when the customer has no dated order.
	LastOrder time.Time `json:"last_order"`
	Frequency int       `json:"frequency"`
	Monetary  float64   `json:"monetary"`

	RScore float64 `json:"r_score"`
	FScore float64 `json:"f_score"`
	MScore float64 `json:"m_score"`
	Score  float64 `json:"rfm_score"`
}

// RFM is the customer ranking table, ordered by score descending and
// then by customer name.
type RFM struct {
	Customers []CustomerRFM `json:"customers"`
	TieMethod TieMethod     `json:"tie_method"`
	JoinMode  JoinMode      `json:"join_mode"`

	// Excluded counts customers dropped by an inner join.
	Excluded int `json:"excluded"`
}

// RFMOptions configures the ranking.
type RFMOptions struct {
	TieMethod TieMethod
	JoinMode  JoinMode
}

// DefaultRFMOptions returns average ties and an inner join.
func DefaultRFMOptions() RFMOptions {
	return RFMOptions{TieMethod: TieAverage, JoinMode: JoinInner}
}

// customerAgg is the per-customer aggregate shared by RFM and CLV.
type customerAgg struct {
	name  string
	first time.Time
	last  time.Time
	lines int
	sales float64
}

func (c *customerAgg) dated() bool {
	return !c.last.IsZero()
}

// aggregateCustomers groups rows by customer name in first-seen order.
// Rows with an empty customer name are skipped.
func aggregateCustomers(rows []Row) []*customerAgg {
	var order []*customerAgg
	byName := make(map[string]*customerAgg)
	for _, r := range rows {
		if r.CustomerName == "" {
			continue
		}
		c, ok := byName[r.CustomerName]
		if !ok {
			c = &customerAgg{name: r.CustomerName}
			byName[r.CustomerName] = c
			order = append(order, c)
		}
		if r.OrderNumber != "" {
			c.lines++
		}
		c.sales += r.Sales
		if r.HasDate() {
			if c.first.IsZero() || r.OrderDate.Before(c.first) {
				c.first = r.OrderDate
			}
			if r.OrderDate.After(c.last) {
				c.last = r.OrderDate
			}
		}
	}
	return order
}

// ComputeRFM ranks customers by recency, frequency and monetary value.
// Recency ranks ascend with the last order date, so the most recent
// customer gets the highest R score.
func ComputeRFM(rows []Row, opts RFMOptions) RFM {
	if opts.TieMethod == "" {
		opts.TieMethod = TieAverage
	}
	if opts.JoinMode == "" {
		opts.JoinMode = JoinInner
	}

	out := RFM{TieMethod: opts.TieMethod, JoinMode: opts.JoinMode}

	var kept []*customerAgg
	for _, c := range aggregateCustomers(rows) {
		if !c.dated() && opts.JoinMode == JoinInner {
			out.Excluded++
			continue
		}
		kept = append(kept, c)
	}

	freq := make([]float64, len(kept))
	money := make([]float64, len(kept))
	var recency []float64
	var datedIdx []int
	for i, c := range kept {
		freq[i] = float64(c.lines)
		money[i] = c.sales
		if c.dated() {
			recency = append(recency, float64(c.last.Unix()))
			datedIdx = append(datedIdx, i)
		}
	}

	fRank := Rank(freq, opts.TieMethod)
	mRank := Rank(money, opts.TieMethod)
	rRank := make([]float64, len(kept))
	for j, r := range Rank(recency, opts.TieMethod) {
		rRank[datedIdx[j]] = r
	}

	out.Customers = make([]CustomerRFM, len(kept))
	for i, c := range kept {
		out.Customers[i] = CustomerRFM{
			Customer:  c.name,
			LastOrder: c.last,
			Frequency: c.lines,
			Monetary:  c.sales,
			RScore:    rRank[i],
			FScore:    fRank[i],
			MScore:    mRank[i],
			Score:     rRank[i] + fRank[i] + mRank[i],
		}
	}

	sort.SliceStable(out.Customers, func(a, b int) bool {
		ca, cb := out.Customers[a], out.Customers[b]
		if ca.Score != cb.Score {
			return ca.Score > cb.Score
		}
		return ca.Customer < cb.Customer
	})
	return out
}

// Customer returns the row for name.
func (r RFM) Customer(name string) (CustomerRFM, bool) {
	for _, c := range r.Customers {
		if c.Customer == name {
			return c, true
		}
	}
	return CustomerRFM{}, false
}

// Frame returns the RFM table as a frame.
func (r RFM) Frame() dataframe.DataFrame {
	n := len(r.Customers)
	names := make([]string, n)
	last := make([]string, n)
	freq := make([]int, n)
	money := make([]float64, n)
	rs := make([]float64, n)
	fs := make([]float64, n)
	ms := make([]float64, n)
	score := make([]float64, n)

	for i, c := range r.Customers {
		names[i] = c.Customer
		last[i] = "NaN"
		if !c.LastOrder.IsZero() {
			last[i] = c.LastOrder.Format(dataset.DateLayout)
		}
		freq[i] = c.Frequency
		money[i] = c.Monetary
		rs[i] = c.RScore
		fs[i] = c.FScore
		ms[i] = c.MScore
		score[i] = c.Score
	}

	return dataframe.New(
		series.New(names, series.String, dataset.ColCustomerName),
		series.New(last, series.String, ColLastOrderDate),
		series.New(freq, series.Int, ColFrequency),
		series.New(money, series.Float, ColMonetary),
		series.New(rs, series.Float, ColRScore),
		series.New(fs, series.Float, ColFScore),
		series.New(ms, series.Float, ColMScore),
		series.New(score, series.Float, ColRFMScore),
	)
}
