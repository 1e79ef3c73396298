//-------------------------------------------------------------------------
//
// Customer Sales Analysis
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package cli implements the command-line interface for sales-analysis.
package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/nibeditans/Improved-Version-of-Customer-Sales-Analysis/internal/config"
	"github.com/nibeditans/Improved-Version-of-Customer-Sales-Analysis/internal/dataset"
	"github.com/nibeditans/Improved-Version-of-Customer-Sales-Analysis/internal/export"
	"github.com/nibeditans/Improved-Version-of-Customer-Sales-Analysis/internal/logging"
	"github.com/nibeditans/Improved-Version-of-Customer-Sales-Analysis/pkg/version"
)

var (
	// Global flags
	cfgFile   string
	inputPath string
	logLevel  string

	// Global config
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "sales-analysis",
		Short: "Customer sales analysis over order-line CSV files",
		Long: `sales-analysis loads an order-line sales file, cleans it, derives
discount, profit and calendar features, and reports sales aggregations,
RFM customer scores and customer lifetime value.

Results can be rendered in the terminal, exported to xlsx, csv, json and
parquet files, or published to PostgreSQL.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: ./sales-analysis.yaml)")
	rootCmd.PersistentFlags().StringVarP(&inputPath, "input", "i", "",
		"sales CSV file to analyse")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level (debug, info, warn, error)")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(columnsCmd)
	rootCmd.AddCommand(formatsCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(publishCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(watchCmd)
}

func initConfig() error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return err
	}

	// Override with CLI flags
	if inputPath != "" {
		cfg.Input.Path = inputPath
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Reinitialize logger with config
	logging.Init(logging.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})

	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(version.Info())
	},
}

var columnsCmd = &cobra.Command{
	Use:   "columns",
	Short: "List the columns of a sales file",
	Long: `List the columns a sales file carries, in file order. Columns marked
with * are required by the analysis; the rest are carried through.`,
	Run: func(cmd *cobra.Command, args []string) {
		required := make(map[string]bool, len(dataset.RequiredColumns))
		for _, c := range dataset.RequiredColumns {
			required[c] = true
		}

		cmd.Println("Sales file columns:")
		cmd.Println()
		for _, c := range dataset.SourceColumns {
			mark := " "
			if required[c] {
				mark = "*"
			}
			cmd.Printf("  %s %s\n", mark, c)
		}
		cmd.Println()
		cmd.Printf("Order dates are parsed with: %s\n", strings.Join(cfg.DateLayouts(), ", "))
	},
}

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List available export formats",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println("Available export formats:")
		cmd.Println()
		for _, name := range export.List() {
			e, _ := export.Get(name)
			cmd.Printf("  %-8s (%s)\n", name, e.Extension())
		}
	},
}
