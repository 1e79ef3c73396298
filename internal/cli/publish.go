//-------------------------------------------------------------------------
//
// Customer Sales Analysis
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"github.com/xeonx/timeago"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/nibeditans/Improved-Version-of-Customer-Sales-Analysis/internal/db"
	"github.com/nibeditans/Improved-Version-of-Customer-Sales-Analysis/internal/logging"
)

var (
	publishConnection     string
	publishDropExisting   bool
	publishNoCreateSchema bool
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Analyse a sales file and publish the results to PostgreSQL",
	Long: `Analyse a sales file and write the cleaned order lines, every summary
table and the RFM scores to PostgreSQL in one transaction. Each publish
is stored as a new run keyed by a generated run id.

Example:
  sales-analysis publish -i sales.csv --connection "postgres://..."
  sales-analysis publish -i sales.csv --connection "postgres://..." --drop-existing`,
	RunE: runPublish,
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List runs published to PostgreSQL",
	RunE:  runRuns,
}

var runsDeleteCmd = &cobra.Command{
	Use:   "delete <run-id>...",
	Short: "Delete published runs",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRunsDelete,
}

func init() {
	addPipelineFlags(publishCmd)
	addOutputFlags(publishCmd)
	publishCmd.Flags().StringVar(&publishConnection, "connection", "",
		"PostgreSQL connection string")
	publishCmd.Flags().BoolVar(&publishDropExisting, "drop-existing", false,
		"drop existing result tables before publishing")
	publishCmd.Flags().BoolVar(&publishNoCreateSchema, "no-create-schema", false,
		"fail instead of creating missing result tables")

	runsCmd.PersistentFlags().StringVar(&publishConnection, "connection", "",
		"PostgreSQL connection string")
	runsCmd.AddCommand(runsDeleteCmd)
}

func applyPublishFlags() {
	if publishConnection != "" {
		cfg.Publish.Connection = publishConnection
	}
	if publishDropExisting {
		cfg.Publish.DropExisting = true
	}
	if publishNoCreateSchema {
		cfg.Publish.CreateSchema = false
	}
}

func runPublish(cmd *cobra.Command, args []string) error {
	applyRunFlags()
	applyPublishFlags()

	if err := cfg.ValidatePublish(); err != nil {
		return err
	}

	res, err := analyze(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(context.Background())
	defer cancel()

	pool, err := db.Connect(ctx, cfg.Publish.Connection)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	if cfg.Publish.DropExisting {
		logging.Info().Msg("Dropping existing result tables")
		if err := db.DropSchema(ctx, pool); err != nil {
			return err
		}
	}

	exists, err := db.SchemaExists(ctx, pool)
	if err != nil {
		return fmt.Errorf("failed to check schema: %w", err)
	}
	if !exists {
		if !cfg.Publish.CreateSchema {
			return fmt.Errorf("result tables do not exist; re-run without --no-create-schema")
		}
		logging.Info().Msg("Creating result tables")
		if err := db.CreateSchema(ctx, pool); err != nil {
			return err
		}
	} else {
		v, err := db.GetMetadataValue(ctx, pool, db.MetaSchemaVersion)
		if err == nil && v != db.SchemaVersion {
			return fmt.Errorf(
				"result tables have schema version %s but %s is required; "+
					"use --drop-existing to recreate them", v, db.SchemaVersion)
		}
	}

	runID, err := db.Publish(ctx, pool, res)
	if err != nil {
		return err
	}

	cmd.Printf("Published run %s\n", runID)
	return nil
}

func connectRuns(ctx context.Context) (*pgxpool.Pool, error) {
	if publishConnection != "" {
		cfg.Publish.Connection = publishConnection
	}
	if cfg.Publish.Connection == "" {
		return nil, fmt.Errorf("connection string is required")
	}
	pool, err := db.Connect(ctx, cfg.Publish.Connection)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return pool, nil
}

func runRuns(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(context.Background())
	defer cancel()

	pool, err := connectRuns(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	runs, err := db.ListRuns(ctx, pool)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if len(runs) == 0 {
		cmd.Println("No published runs")
		return nil
	}

	p := message.NewPrinter(language.English)
	now := time.Now()
	for _, r := range runs {
		clv := "n/a"
		if r.CLV != nil {
			clv = p.Sprintf("%.2f", *r.CLV)
		}
		cmd.Print(p.Sprintf("%s  %-14s  %7d lines  sales %.2f  CLV %s  %s\n",
			r.ID, timeago.English.FormatReference(r.PublishedAt, now),
			r.Lines, r.TotalSales, clv, r.Input))
	}
	return nil
}

func runRunsDelete(cmd *cobra.Command, args []string) error {
	ids := make([]uuid.UUID, 0, len(args))
	for _, a := range args {
		id, err := uuid.Parse(a)
		if err != nil {
			return fmt.Errorf("invalid run id %q: %w", a, err)
		}
		ids = append(ids, id)
	}

	ctx, cancel := signalContext(context.Background())
	defer cancel()

	pool, err := connectRuns(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	for _, id := range ids {
		deleted, err := db.DeleteRun(ctx, pool, id)
		if err != nil {
			return fmt.Errorf("failed to delete run %s: %w", id, err)
		}
		if !deleted {
			logging.Warn().Str("run_id", id.String()).Msg("Run not found")
			continue
		}
		cmd.Printf("Deleted run %s\n", id)
	}
	return nil
}
