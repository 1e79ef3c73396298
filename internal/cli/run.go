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
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nibeditans/Improved-Version-of-Customer-Sales-Analysis/internal/export"
	"github.com/nibeditans/Improved-Version-of-Customer-Sales-Analysis/internal/logging"
	"github.com/nibeditans/Improved-Version-of-Customer-Sales-Analysis/internal/pipeline"
	"github.com/nibeditans/Improved-Version-of-Customer-Sales-Analysis/internal/report"
)

// Pipeline flags shared by analyze, publish and watch.
var (
	runEncoding      string
	runDelimiter     string
	runCostRatio     float64
	runTieMethod     string
	runJoinMode      string
	runStrictMSRP    bool
	runTopCountries  int
	runOutputDir     string
	runFormats       []string
	runTimestamp     bool
	runPlain         bool
	runQuiet         bool
	runTopCustomers  int
	runRollingWindow int
)

func addPipelineFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&runEncoding, "encoding", "",
		"input encoding: auto or a label such as windows-1252")
	cmd.Flags().StringVar(&runDelimiter, "delimiter", "",
		"input field delimiter (default: ,)")
	cmd.Flags().Float64Var(&runCostRatio, "cost-ratio", 0,
		"share of the unit price treated as cost (default: 0.7)")
	cmd.Flags().StringVar(&runTieMethod, "tie-method", "",
		"RFM rank tie method: average, min, max, first, dense")
	cmd.Flags().StringVar(&runJoinMode, "join-mode", "",
		"RFM join for customers without dated orders: inner or outer")
	cmd.Flags().BoolVar(&runStrictMSRP, "strict-msrp", false,
		"fail on a zero MSRP instead of counting it")
	cmd.Flags().IntVar(&runTopCountries, "top-countries", 0,
		"number of countries in the distribution table")
	cmd.Flags().IntVar(&runRollingWindow, "rolling-window", 0,
		"window of the rolling sales mean")
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&runOutputDir, "output-dir", "o", "",
		"directory for exported files (no export when empty)")
	cmd.Flags().StringSliceVar(&runFormats, "format", nil,
		"export formats: csv, json, parquet, xlsx")
	cmd.Flags().BoolVar(&runTimestamp, "timestamp", false,
		"export into a timestamped sub-directory")
	cmd.Flags().BoolVar(&runPlain, "plain", false,
		"print the report as markdown without styling")
	cmd.Flags().BoolVarP(&runQuiet, "quiet", "q", false,
		"do not print the report")
	cmd.Flags().IntVar(&runTopCustomers, "top-customers", 0,
		"number of customers in the RFM table")
}

// applyRunFlags overrides config with CLI flags.
func applyRunFlags() {
	if runEncoding != "" {
		cfg.Input.Encoding = runEncoding
	}
	if runDelimiter != "" {
		cfg.Input.Delimiter = runDelimiter
	}
	if runCostRatio > 0 {
		cfg.Pipeline.CostRatio = runCostRatio
	}
	if runTieMethod != "" {
		cfg.Pipeline.TieMethod = runTieMethod
	}
	if runJoinMode != "" {
		cfg.Pipeline.JoinMode = runJoinMode
	}
	if runStrictMSRP {
		cfg.Pipeline.StrictMSRP = true
	}
	if runTopCountries > 0 {
		cfg.Pipeline.TopCountries = runTopCountries
	}
	if runRollingWindow > 0 {
		cfg.Pipeline.RollingWindow = runRollingWindow
	}
	if runOutputDir != "" {
		cfg.Export.Dir = runOutputDir
	}
	if len(runFormats) > 0 {
		cfg.Export.Formats = runFormats
	}
	if runTimestamp {
		cfg.Export.Timestamp = true
	}
	if runPlain {
		cfg.Report.Plain = true
	}
	if runTopCustomers > 0 {
		cfg.Report.TopCustomers = runTopCustomers
	}
}

// analyze runs the pipeline on the configured input, exports the
// result and prints the report.
func analyze(cmd *cobra.Command) (*pipeline.Result, error) {
	opts, err := cfg.PipelineOptions()
	if err != nil {
		return nil, err
	}

	res, err := pipeline.Run(cfg.Input.Path, opts)
	if err != nil {
		return nil, err
	}

	if cfg.Export.Dir != "" {
		if _, err := export.ExportAll(res, export.Options{
			Dir:       cfg.Export.Dir,
			Formats:   cfg.Export.Formats,
			Timestamp: cfg.Export.Timestamp,
		}); err != nil {
			return res, fmt.Errorf("export failed: %w", err)
		}
	}

	if !runQuiet {
		if err := printReport(cmd, res); err != nil {
			return res, err
		}
	}
	return res, nil
}

func printReport(cmd *cobra.Command, res *pipeline.Result) error {
	opts := report.DefaultOptions()
	opts.TopCustomers = cfg.Report.TopCustomers

	if cfg.Report.Plain {
		_, err := fmt.Fprint(cmd.OutOrStdout(), report.Markdown(res, opts))
		return err
	}
	out, err := report.Render(res, opts, cfg.Report.Width)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), out)
	return err
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			logging.Info().
				Str("signal", sig.String()).
				Msg("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
