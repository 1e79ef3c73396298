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
	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyse a sales file and print the report",
	Long: `Load, clean and analyse a sales file, then print the report and
optionally export every result table.

Example:
  sales-analysis analyze --input sales_data_sample.csv
  sales-analysis analyze -i sales.csv -o out --format xlsx,parquet --timestamp
  sales-analysis analyze -i sales.csv --tie-method dense --join-mode outer --plain`,
	RunE: runAnalyze,
}

func init() {
	addPipelineFlags(analyzeCmd)
	addOutputFlags(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	applyRunFlags()

	if err := cfg.ValidateAnalyze(); err != nil {
		return err
	}

	_, err := analyze(cmd)
	return err
}
