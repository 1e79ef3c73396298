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
	"time"

	"github.com/spf13/cobra"

	"github.com/nibeditans/Improved-Version-of-Customer-Sales-Analysis/internal/logging"
	"github.com/nibeditans/Improved-Version-of-Customer-Sales-Analysis/internal/watch"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-run the analysis whenever the sales file changes",
	Long: `Analyse a sales file, then keep watching it and re-run the analysis
(and any configured exports) each time the file is rewritten. Stop with
Ctrl+C.

Example:
  sales-analysis watch -i sales.csv -o out --format xlsx --timestamp`,
	RunE: runWatch,
}

func init() {
	addPipelineFlags(watchCmd)
	addOutputFlags(watchCmd)
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 0,
		"quiet period before re-running (default: 500ms)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	applyRunFlags()
	if watchDebounce > 0 {
		cfg.Watch.Debounce = int(watchDebounce / time.Millisecond)
	}

	if err := cfg.ValidateAnalyze(); err != nil {
		return err
	}

	// A failed first run is not fatal; the file may be mid-write.
	if _, err := analyze(cmd); err != nil {
		logging.Error().Err(err).Msg("Analysis failed")
	}

	w, err := watch.New(cfg.Input.Path, cfg.DebounceDuration())
	if err != nil {
		return err
	}
	defer w.Close()

	ctx, cancel := signalContext(context.Background())
	defer cancel()

	logging.Info().Str("input", w.Path()).Msg("Watching for changes")
	err = w.Run(ctx, func(string) error {
		_, err := analyze(cmd)
		return err
	})
	logging.Info().Msg("Stopped watching")
	return err
}
