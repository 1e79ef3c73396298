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

	"github.com/spf13/cobra"

	"github.com/nibeditans/Improved-Version-of-Customer-Sales-Analysis/internal/datagen"
	"github.com/nibeditans/Improved-Version-of-Customer-Sales-Analysis/internal/logging"
)

var (
	genOutput        string
	genRows          int
	genCustomers     int
	genProducts      int
	genSeed          uint64
	genStart         string
	genEnd           string
	genBadDateRate   float64
	genDuplicateRate float64
	genZeroMSRPRate  float64
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write a synthetic sales file",
	Long: `Write a synthetic order-line sales file in the source column layout.
Optional rates inject unparseable dates, duplicate lines and zero MSRP
values so the cleaning stage has something to report.

Example:
  sales-analysis generate --output sales.csv --rows 10000 --seed 42
  sales-analysis generate -o dirty.csv --bad-date-rate 0.05 --duplicate-rate 0.01`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&genOutput, "output", "o", "",
		"file to write (default: sales_data_sample.csv)")
	generateCmd.Flags().IntVar(&genRows, "rows", 0,
		"number of order lines")
	generateCmd.Flags().IntVar(&genCustomers, "customers", 0,
		"number of distinct customers")
	generateCmd.Flags().IntVar(&genProducts, "products", 0,
		"number of distinct products")
	generateCmd.Flags().Uint64Var(&genSeed, "seed", 0,
		"random seed (0 = random)")
	generateCmd.Flags().StringVar(&genStart, "start", "",
		"first order date (YYYY-MM-DD)")
	generateCmd.Flags().StringVar(&genEnd, "end", "",
		"last order date (YYYY-MM-DD)")
	generateCmd.Flags().Float64Var(&genBadDateRate, "bad-date-rate", 0,
		"share of lines with an unparseable date")
	generateCmd.Flags().Float64Var(&genDuplicateRate, "duplicate-rate", 0,
		"share of lines repeating an earlier line")
	generateCmd.Flags().Float64Var(&genZeroMSRPRate, "zero-msrp-rate", 0,
		"share of lines with a zero MSRP")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if genOutput != "" {
		cfg.Generate.Output = genOutput
	}
	if genRows > 0 {
		cfg.Generate.Rows = genRows
	}
	if genCustomers > 0 {
		cfg.Generate.Customers = genCustomers
	}
	if genProducts > 0 {
		cfg.Generate.Products = genProducts
	}
	if genSeed > 0 {
		cfg.Generate.Seed = genSeed
	}
	if genStart != "" {
		cfg.Generate.Start = genStart
	}
	if genEnd != "" {
		cfg.Generate.End = genEnd
	}
	if genBadDateRate > 0 {
		cfg.Generate.BadDateRate = genBadDateRate
	}
	if genDuplicateRate > 0 {
		cfg.Generate.DuplicateRate = genDuplicateRate
	}
	if genZeroMSRPRate > 0 {
		cfg.Generate.ZeroMSRPRate = genZeroMSRPRate
	}

	if err := cfg.ValidateGenerate(); err != nil {
		return err
	}
	genCfg, err := cfg.GeneratorConfig()
	if err != nil {
		return err
	}

	g, err := datagen.NewGenerator(genCfg)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(context.Background())
	defer cancel()

	logging.Info().
		Str("output", cfg.Generate.Output).
		Int("rows", genCfg.Rows).
		Msg("Generating sales file")

	size, err := g.WriteFile(ctx, cfg.Generate.Output)
	if err != nil {
		if ctx.Err() != nil {
			logging.Info().Msg("Generation stopped")
			return nil
		}
		return fmt.Errorf("failed to generate data: %w", err)
	}

	cmd.Printf("Wrote %d lines (%s) to %s\n", genCfg.Rows, datagen.FormatSize(size), cfg.Generate.Output)
	return nil
}
