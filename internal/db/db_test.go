//-------------------------------------------------------------------------
//
// Customer Sales Analysis
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package db

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/nibeditans/Improved-Version-of-Customer-Sales-Analysis/internal/dataset"
	"github.com/nibeditans/Improved-Version-of-Customer-Sales-Analysis/internal/metrics"
	"github.com/nibeditans/Improved-Version-of-Customer-Sales-Analysis/internal/pipeline"
	"github.com/nibeditans/Improved-Version-of-Customer-Sales-Analysis/internal/testutil"
	"github.com/nibeditans/Improved-Version-of-Customer-Sales-Analysis/pkg/version"
)

func TestOrderLineRow(t *testing.T) {
	id := uuid.New()
	r := metrics.Row{
		OrderLine: dataset.OrderLine{
			OrderNumber:  "10107",
			CustomerName: "Acme",
			OrderDate:    time.Date(2004, 1, 5, 0, 0, 0, 0, time.UTC),
		},
		DiscountValid:    true,
		Discount:         15,
		DiscountCategory: "10-20%",
	}

	row := orderLineRow(id, 0, r)
	if len(row) != len(orderLineColumns) {
		t.Fatalf("Expected %d values, got %d", len(orderLineColumns), len(row))
	}
	if row[1] != 1 {
		t.Errorf("Expected line_no 1, got %v", row[1])
	}
	if row[8] != nil {
		t.Errorf("Expected empty status as NULL, got %v", row[8])
	}
	if row[22] != 15.0 || row[23] != "10-20%" {
		t.Errorf("Expected discount 15 and category, got %v %v", row[22], row[23])
	}

	undated := orderLineRow(id, 1, metrics.Row{})
	if undated[7] != nil || undated[22] != nil {
		t.Errorf("Expected NULL date and discount, got %v %v", undated[7], undated[22])
	}
}

func TestRFMRow(t *testing.T) {
	row := rfmRow(uuid.New(), metrics.CustomerRFM{Customer: "Gamma", Frequency: 1})
	if len(row) != len(rfmColumns) {
		t.Fatalf("Expected %d values, got %d", len(rfmColumns), len(row))
	}
	if row[2] != nil {
		t.Errorf("Expected NULL last order, got %v", row[2])
	}
}

func TestCLVValues(t *testing.T) {
	tests := []struct {
		name  string
		write func(*testing.T) string
		null  bool
	}{
		{"dated", testutil.WriteSample, false},
		{"undated", testutil.WriteUndated, true},
	}
	for _, tt := range tests {
		res, err := pipeline.Run(tt.write(t), pipeline.DefaultOptions())
		if err != nil {
			t.Fatalf("%s: pipeline.Run failed: %v", tt.name, err)
		}
		values := clvValues(res)
		if len(values) != 4 {
			t.Fatalf("%s: Expected 4 values, got %d", tt.name, len(values))
		}
		for i, v := range values {
			if (v == nil) != tt.null {
				t.Errorf("%s: Expected NULL %v at %d, got %v", tt.name, tt.null, i, v)
			}
		}
		if !tt.null && values[3] != res.CLV.Value {
			t.Errorf("%s: Expected CLV %v, got %v", tt.name, res.CLV.Value, values[3])
		}
	}
}

func TestSummaryNamesUnique(t *testing.T) {
	res, err := pipeline.Run(testutil.WriteSample(t), pipeline.DefaultOptions())
	if err != nil {
		t.Fatalf("pipeline.Run failed: %v", err)
	}
	seen := make(map[string]bool)
	for _, s := range res.Summaries() {
		name := summaryName(s)
		if seen[name] {
			t.Errorf("Duplicate summary name %s", name)
		}
		seen[name] = true
	}
}

func TestPublish(t *testing.T) {
	baseConn := testutil.SkipIfNoPostgres(t)
	connStr := testutil.CreateTestDB(t, baseConn)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := Connect(ctx, connStr)
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer pool.Close()

	if exists, err := SchemaExists(ctx, pool); err != nil || exists {
		t.Fatalf("Expected no schema yet, got %v %v", exists, err)
	}
	if err := CreateSchema(ctx, pool); err != nil {
		t.Fatalf("CreateSchema failed: %v", err)
	}

	res, err := pipeline.Run(testutil.WriteSample(t), pipeline.DefaultOptions())
	if err != nil {
		t.Fatalf("pipeline.Run failed: %v", err)
	}

	runID, err := Publish(ctx, pool, res)
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	run, err := GetRun(ctx, pool, runID)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if run.Lines != 7 || run.InvalidDates != 1 || run.Duplicates != 1 {
		t.Errorf("Unexpected run counts %+v", run)
	}
	if run.CLV == nil || *run.CLV != res.CLV.Value {
		t.Errorf("Expected CLV %v, got %v", res.CLV.Value, run.CLV)
	}
	if run.Version != version.Short() {
		t.Errorf("Expected version %s, got %s", version.Short(), run.Version)
	}

	var lines, undated int
	if err := pool.QueryRow(ctx, `
        SELECT count(*), count(*) FILTER (WHERE order_date IS NULL)
        FROM sales_order_lines WHERE run_id = $1
    `, runID).Scan(&lines, &undated); err != nil {
		t.Fatal(err)
	}
	if lines != 7 || undated != 1 {
		t.Errorf("Expected 7 lines with 1 undated, got %d and %d", lines, undated)
	}

	var monday float64
	if err := pool.QueryRow(ctx, `
        SELECT value FROM sales_summaries
        WHERE run_id = $1 AND table_name = $2 AND key = 'Monday'
    `, runID, metrics.ColDayOfWeek+":"+dataset.ColSales).Scan(&monday); err != nil {
		t.Fatal(err)
	}
	if monday != 9488.7 {
		t.Errorf("Expected Monday sales 9488.7, got %v", monday)
	}

	var customers int
	if err := pool.QueryRow(ctx, `SELECT count(*) FROM sales_rfm WHERE run_id = $1`, runID).Scan(&customers); err != nil {
		t.Fatal(err)
	}
	if customers != len(res.RFM.Customers) {
		t.Errorf("Expected %d RFM rows, got %d", len(res.RFM.Customers), customers)
	}

	last, err := GetMetadataValue(ctx, pool, MetaLastRunID)
	if err != nil || last != runID.String() {
		t.Errorf("Expected last run %s, got %q (%v)", runID, last, err)
	}

	runs, err := ListRuns(ctx, pool)
	if err != nil || len(runs) != 1 {
		t.Errorf("Expected 1 run listed, got %d (%v)", len(runs), err)
	}

	deleted, err := DeleteRun(ctx, pool, runID)
	if err != nil || !deleted {
		t.Fatalf("DeleteRun failed: %v %v", deleted, err)
	}
	if err := pool.QueryRow(ctx, `SELECT count(*) FROM sales_order_lines`).Scan(&lines); err != nil {
		t.Fatal(err)
	}
	if lines != 0 {
		t.Errorf("Expected cascade delete, %d lines remain", lines)
	}

	if err := DropSchema(ctx, pool); err != nil {
		t.Fatalf("DropSchema failed: %v", err)
	}
}
