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
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nibeditans/Improved-Version-of-Customer-Sales-Analysis/internal/logging"
	"github.com/nibeditans/Improved-Version-of-Customer-Sales-Analysis/internal/metrics"
	"github.com/nibeditans/Improved-Version-of-Customer-Sales-Analysis/internal/pipeline"
	"github.com/nibeditans/Improved-Version-of-Customer-Sales-Analysis/pkg/version"
)

var orderLineColumns = []string{
	"run_id", "line_no", "order_number", "quantity_ordered", "price_each",
	"order_line_number", "sales", "order_date", "status", "qtr_id",
	"month_id", "year_id", "product_line", "msrp", "product_code",
	"customer_name", "city", "country", "territory", "deal_size",
	"day_of_week", "season", "discount", "discount_category", "cost", "profit",
}

var rfmColumns = []string{
	"run_id", "customer", "last_order", "frequency", "monetary",
	"r_score", "f_score", "m_score", "rfm_score",
}

// Run is one published analysis as stored in sales_runs.
type Run struct {
	ID           uuid.UUID
	Input        string
	StartedAt    time.Time
	PublishedAt  time.Time
	Lines        int
	InvalidDates int
	Duplicates   int
	TotalSales   float64
	CLV          *float64 // nil when CLV was unavailable
	Version      string
}

// Publish writes res in one transaction and returns the new run id.
// The schema must already exist.
func Publish(ctx context.Context, pool *pgxpool.Pool, res *pipeline.Result) (uuid.UUID, error) {
	runID := uuid.New()

	tx, err := pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := insertRun(ctx, tx, runID, res); err != nil {
		return uuid.Nil, err
	}

	lines, err := tx.CopyFrom(ctx, pgx.Identifier{TableOrderLines}, orderLineColumns,
		pgx.CopyFromSlice(len(res.Derived.Rows), func(i int) ([]any, error) {
			return orderLineRow(runID, i, res.Derived.Rows[i]), nil
		}))
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to copy order lines: %w", err)
	}

	summaries, err := insertSummaries(ctx, tx, runID, res)
	if err != nil {
		return uuid.Nil, err
	}

	customers := res.RFM.Customers
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{TableRFM}, rfmColumns,
		pgx.CopyFromSlice(len(customers), func(i int) ([]any, error) {
			return rfmRow(runID, customers[i]), nil
		})); err != nil {
		return uuid.Nil, fmt.Errorf("failed to copy RFM scores: %w", err)
	}

	if err := SaveMetadata(ctx, tx, map[string]string{
		MetaSchemaVersion: SchemaVersion,
		MetaLastRunID:     runID.String(),
		MetaLastInput:     res.Input,
		MetaVersion:       version.Short(),
	}); err != nil {
		return uuid.Nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("failed to commit: %w", err)
	}

	logging.Info().
		Str("run_id", runID.String()).
		Int64("order_lines", lines).
		Int("summary_rows", summaries).
		Int("customers", len(customers)).
		Msg("Published results")

	return runID, nil
}

func insertRun(ctx context.Context, tx pgx.Tx, runID uuid.UUID, res *pipeline.Result) error {
	clv := clvValues(res)
	_, err := tx.Exec(ctx, `
        INSERT INTO sales_runs (run_id, input, started_at, line_count, invalid_dates,
            duplicates, total_sales, aov, purchase_freq, lifespan_years, clv,
            tie_method, join_mode, version)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
    `,
		runID,
		res.Input,
		res.StartedAt,
		res.Table.Len(),
		res.Clean.InvalidDates,
		len(res.Clean.Duplicates),
		metrics.Round2(res.TotalSales()),
		clv[0],
		clv[1],
		clv[2],
		clv[3],
		string(res.RFM.TieMethod),
		string(res.RFM.JoinMode),
		version.Short(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

func insertSummaries(ctx context.Context, tx pgx.Tx, runID uuid.UUID, res *pipeline.Result) (int, error) {
	batch := &pgx.Batch{}
	for _, s := range res.Summaries() {
		name := summaryName(s)
		for pos, e := range s.Entries {
			batch.Queue(`
                INSERT INTO sales_summaries (run_id, table_name, title, position,
                    key_name, key, value_name, value)
                VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
            `, runID, name, s.Title, pos+1, s.KeyName, e.Key, s.ValueName, e.Value)
		}
	}

	n := batch.Len()
	br := tx.SendBatch(ctx, batch)
	for i := 0; i < n; i++ {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return 0, fmt.Errorf("failed to insert summary row %d: %w", i, err)
		}
	}
	if err := br.Close(); err != nil {
		return 0, fmt.Errorf("failed to insert summaries: %w", err)
	}
	return n, nil
}

// clvValues returns AOV, purchase frequency, lifespan and CLV, or four
// NULLs when CLV is unavailable.
func clvValues(res *pipeline.Result) []any {
	if !res.HasCLV() {
		return []any{nil, nil, nil, nil}
	}
	c := res.CLV
	return []any{c.AverageOrderValue, c.PurchaseFrequency, c.LifespanYears, c.Value}
}

// summaryName keys a summary by grouping column and measure.
func summaryName(s metrics.Summary) string {
	return s.KeyName + ":" + s.ValueName
}

func orderLineRow(runID uuid.UUID, i int, r metrics.Row) []any {
	var orderDate, discount, category any
	if r.HasDate() {
		orderDate = r.OrderDate
	}
	if r.DiscountValid {
		discount = r.Discount
		if r.DiscountCategory != "" {
			category = r.DiscountCategory
		}
	}
	return []any{
		runID, i + 1, r.OrderNumber, r.Quantity, r.UnitPrice,
		r.OrderLineNumber, r.Sales, orderDate, nullable(r.Status), r.QtrID,
		r.MonthID, r.YearID, nullable(r.ProductLine), r.MSRP, nullable(r.ProductCode),
		nullable(r.CustomerName), nullable(r.City), nullable(r.Country), nullable(r.Territory), nullable(r.DealSize),
		nullable(r.DayOfWeek), nullable(r.Season), discount, category, r.Cost, r.Profit,
	}
}

func rfmRow(runID uuid.UUID, c metrics.CustomerRFM) []any {
	var last any
	if !c.LastOrder.IsZero() {
		last = c.LastOrder
	}
	return []any{
		runID, c.Customer, last, c.Frequency, c.Monetary,
		c.RScore, c.FScore, c.MScore, c.Score,
	}
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// GetRun reads one published run.
func GetRun(ctx context.Context, q Querier, runID uuid.UUID) (Run, error) {
	var r Run
	var id string
	err := q.QueryRow(ctx, `
        SELECT run_id::text, input, started_at, published_at, line_count,
            invalid_dates, duplicates, total_sales::float8, clv::float8, version
        FROM sales_runs WHERE run_id = $1
    `, runID).Scan(&id, &r.Input, &r.StartedAt, &r.PublishedAt, &r.Lines,
		&r.InvalidDates, &r.Duplicates, &r.TotalSales, &r.CLV, &r.Version)
	if err != nil {
		return Run{}, fmt.Errorf("failed to read run %s: %w", runID, err)
	}
	r.ID, err = uuid.Parse(id)
	return r, err
}

// ListRuns returns every published run, newest first.
func ListRuns(ctx context.Context, q Querier) ([]Run, error) {
	rows, err := q.Query(ctx, `
        SELECT run_id::text, input, started_at, published_at, line_count,
            invalid_dates, duplicates, total_sales::float8, clv::float8, version
        FROM sales_runs ORDER BY published_at DESC, run_id
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var id string
		if err := rows.Scan(&id, &r.Input, &r.StartedAt, &r.PublishedAt, &r.Lines,
			&r.InvalidDates, &r.Duplicates, &r.TotalSales, &r.CLV, &r.Version); err != nil {
			return nil, err
		}
		if r.ID, err = uuid.Parse(id); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// DeleteRun removes a run and, by cascade, everything published with it.
func DeleteRun(ctx context.Context, q Querier, runID uuid.UUID) (bool, error) {
	tag, err := q.Exec(ctx, `DELETE FROM sales_runs WHERE run_id = $1`, runID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
