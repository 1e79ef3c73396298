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
)

// TieMethod decides the rank shared by equal values.
type TieMethod string

const (
	// TieAverage gives every tied value the mean of the positions they span.
	TieAverage TieMethod = "average"
	// TieMin gives every tied value the lowest position.
	TieMin TieMethod = "min"
	// TieMax gives every tied value the highest position.
	TieMax TieMethod = "max"
	// TieFirst breaks ties by input order.
	TieFirst TieMethod = "first"
	// TieDense is like TieMin but ranks increase by one between groups.
	TieDense TieMethod = "dense"
)

// TieMethods lists the accepted tie methods.
var TieMethods = []TieMethod{TieAverage, TieMin, TieMax, TieFirst, TieDense}

// ParseTieMethod validates a tie method name.
func ParseTieMethod(s string) (TieMethod, error) {
	for _, m := range TieMethods {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown tie method %q (want one of %v)", s, TieMethods)
}

// Rank assigns 1-based ascending ranks: the smallest value gets rank 1.
func Rank(values []float64, method TieMethod) []float64 {
	n := len(values)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return values[order[a]] < values[order[b]]
	})

	ranks := make([]float64, n)
	dense := 0
	for start := 0; start < n; {
		end := start
		for end+1 < n && values[order[end+1]] == values[order[start]] {
			end++
		}
		dense++

		// Positions start+1 .. end+1 are shared by this group.
		for k := start; k <= end; k++ {
			var r float64
			switch method {
			case TieMin:
				r = float64(start + 1)
			case TieMax:
				r = float64(end + 1)
			case TieFirst:
				r = float64(k + 1)
			case TieDense:
				r = float64(dense)
			default:
				r = float64(start+end+2) / 2
			}
			ranks[order[k]] = r
		}
		start = end + 1
	}
	return ranks
}
