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

	"github.com/jackc/pgx/v5/pgxpool"
)

// Table names.
const (
	TableRuns       = "sales_runs"
	TableOrderLines = "sales_order_lines"
	TableSummaries  = "sales_summaries"
	TableRFM        = "sales_rfm"
)

// Every table but sales_runs is keyed by run so repeated publishes of
// the same file stay separate.
const createSchemaSQL = `
CREATE TABLE IF NOT EXISTS sales_runs (
    run_id         UUID PRIMARY KEY,
    input          TEXT NOT NULL,
    started_at     TIMESTAMPTZ NOT NULL,
    published_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
    line_count     INTEGER NOT NULL,
    invalid_dates  INTEGER NOT NULL,
    duplicates     INTEGER NOT NULL,
    total_sales    NUMERIC(14,2) NOT NULL,
    aov            NUMERIC(14,2),
    purchase_freq  NUMERIC(14,2),
    lifespan_years NUMERIC(14,2),
    clv            NUMERIC(14,2),
    tie_method     TEXT NOT NULL,
    join_mode      TEXT NOT NULL,
    version        TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS sales_order_lines (
    run_id            UUID NOT NULL REFERENCES sales_runs(run_id) ON DELETE CASCADE,
    line_no           INTEGER NOT NULL,
    order_number      TEXT NOT NULL,
    quantity_ordered  INTEGER NOT NULL,
    price_each        DOUBLE PRECISION NOT NULL,
    order_line_number INTEGER NOT NULL,
    sales             DOUBLE PRECISION NOT NULL,
    order_date        DATE,
    status            TEXT,
    qtr_id            INTEGER NOT NULL,
    month_id          INTEGER NOT NULL,
    year_id           INTEGER NOT NULL,
    product_line      TEXT,
    msrp              DOUBLE PRECISION NOT NULL,
    product_code      TEXT,
    customer_name     TEXT,
    city              TEXT,
    country           TEXT,
    territory         TEXT,
    deal_size         TEXT,
    day_of_week       TEXT,
    season            TEXT,
    discount          DOUBLE PRECISION,
    discount_category TEXT,
    cost              DOUBLE PRECISION NOT NULL,
    profit            DOUBLE PRECISION NOT NULL,
    PRIMARY KEY (run_id, line_no)
);

CREATE TABLE IF NOT EXISTS sales_summaries (
    run_id     UUID NOT NULL REFERENCES sales_runs(run_id) ON DELETE CASCADE,
    table_name TEXT NOT NULL,
    title      TEXT NOT NULL,
    position   INTEGER NOT NULL,
    key_name   TEXT NOT NULL,
    key        TEXT NOT NULL,
    value_name TEXT NOT NULL,
    value      DOUBLE PRECISION NOT NULL,
    PRIMARY KEY (run_id, table_name, position)
);

CREATE TABLE IF NOT EXISTS sales_rfm (
    run_id     UUID NOT NULL REFERENCES sales_runs(run_id) ON DELETE CASCADE,
    customer   TEXT NOT NULL,
    last_order DATE,
    frequency  INTEGER NOT NULL,
    monetary   DOUBLE PRECISION NOT NULL,
    r_score    DOUBLE PRECISION NOT NULL,
    f_score    DOUBLE PRECISION NOT NULL,
    m_score    DOUBLE PRECISION NOT NULL,
    rfm_score  DOUBLE PRECISION NOT NULL,
    PRIMARY KEY (run_id, customer)
);

CREATE INDEX IF NOT EXISTS idx_sales_order_lines_customer
    ON sales_order_lines(run_id, customer_name);
`

const dropSchemaSQL = `
DROP TABLE IF EXISTS sales_rfm CASCADE;
DROP TABLE IF EXISTS sales_summaries CASCADE;
DROP TABLE IF EXISTS sales_order_lines CASCADE;
DROP TABLE IF EXISTS sales_runs CASCADE;
`

// CreateSchema creates the result tables and the metadata table.
func CreateSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, createSchemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	if _, err := pool.Exec(ctx, createMetadataTableSQL); err != nil {
		return fmt.Errorf("failed to create metadata table: %w", err)
	}
	return nil
}

// DropSchema drops every table CreateSchema creates.
func DropSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, dropSchemaSQL); err != nil {
		return fmt.Errorf("failed to drop schema: %w", err)
	}
	return DropMetadata(ctx, pool)
}
