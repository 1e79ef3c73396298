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
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nibeditans/Improved-Version-of-Customer-Sales-Analysis/internal/testutil"
)

// execute runs the root command with fresh flag values.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cfgFile, inputPath, logLevel = "", "", ""
	runEncoding, runDelimiter, runTieMethod, runJoinMode = "", "", "", ""
	runCostRatio, runStrictMSRP, runTopCountries, runRollingWindow = 0, false, 0, 0
	runOutputDir, runFormats, runTimestamp = "", nil, false
	runPlain, runQuiet, runTopCustomers = false, false, 0
	genOutput, genRows, genCustomers, genProducts, genSeed = "", 0, 0, 0, 0
	genStart, genEnd = "", ""
	genBadDateRate, genDuplicateRate, genZeroMSRPRate = 0, 0, 0
	publishConnection, publishDropExisting, publishNoCreateSchema = "", false, false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestColumnsCommand(t *testing.T) {
	out, err := execute(t, "columns")
	if err != nil {
		t.Fatalf("columns failed: %v", err)
	}
	if !strings.Contains(out, "* ORDER_NUMBER") {
		t.Errorf("Expected ORDER_NUMBER marked required, got:\n%s", out)
	}
	if !strings.Contains(out, "  PHONE") || strings.Contains(out, "* PHONE") {
		t.Errorf("Expected PHONE listed as optional, got:\n%s", out)
	}
}

func TestFormatsCommand(t *testing.T) {
	out, err := execute(t, "formats")
	if err != nil {
		t.Fatalf("formats failed: %v", err)
	}
	for _, name := range []string{"csv", "json", "parquet", "xlsx"} {
		if !strings.Contains(out, name) {
			t.Errorf("Expected format %s in output:\n%s", name, out)
		}
	}
}

func TestAnalyzeCommand(t *testing.T) {
	input := testutil.WriteSample(t)
	outDir := t.TempDir()

	out, err := execute(t, "analyze", "--input", input, "--plain",
		"--output-dir", outDir, "--format", "csv,json", "--log-level", "error")
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}
	if !strings.Contains(out, "# Customer Sales Analysis") {
		t.Errorf("Expected markdown report, got:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(outDir, "sales-analysis.json")); err != nil {
		t.Errorf("Expected json export: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outDir, "sales-by-season.csv")); err != nil {
		t.Errorf("Expected csv export: %v", err)
	}
}

func TestAnalyzeCommandErrors(t *testing.T) {
	input := testutil.WriteSample(t)

	tests := []struct {
		name string
		args []string
	}{
		{"missing input", []string{"analyze"}},
		{"unknown tie method", []string{"analyze", "-i", input, "--tie-method", "coin"}},
		{"unknown format", []string{"analyze", "-i", input, "-o", t.TempDir(), "--format", "pdf"}},
		{"missing file", []string{"analyze", "-i", filepath.Join(t.TempDir(), "none.csv")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := execute(t, append(tt.args, "--log-level", "error")...); err == nil {
				t.Error("Expected an error")
			}
		})
	}
}

func TestGenerateThenAnalyze(t *testing.T) {
	path := filepath.Join(t.TempDir(), "generated.csv")

	out, err := execute(t, "generate", "--output", path, "--rows", "200",
		"--seed", "3", "--log-level", "error")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if !strings.Contains(out, "Wrote 200 lines") {
		t.Errorf("Unexpected generate output: %s", out)
	}

	out, err = execute(t, "analyze", "-i", path, "--quiet", "--log-level", "error")
	if err != nil {
		t.Fatalf("analyze of generated file failed: %v", err)
	}
	if out != "" {
		t.Errorf("Expected no output with --quiet, got:\n%s", out)
	}
}

func TestPublishRequiresConnection(t *testing.T) {
	input := testutil.WriteSample(t)
	_, err := execute(t, "publish", "-i", input, "--log-level", "error")
	if err == nil || !strings.Contains(err.Error(), "connection string is required") {
		t.Errorf("Expected missing connection error, got %v", err)
	}
}
