//-------------------------------------------------------------------------
//
// Customer Sales Analysis
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package datagen

import (
	"bytes"
	"context"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/gocarina/gocsv"

	"github.com/nibeditans/Improved-Version-of-Customer-Sales-Analysis/internal/dataset"
	"github.com/nibeditans/Improved-Version-of-Customer-Sales-Analysis/internal/pipeline"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Rows = 500
	cfg.Customers = 20
	cfg.Products = 15
	cfg.Seed = 42
	return cfg
}

func generate(t *testing.T, cfg Config) []Record {
	t.Helper()
	g, err := NewGenerator(cfg)
	if err != nil {
		t.Fatalf("NewGenerator failed: %v", err)
	}
	records, err := g.Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	return records
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"default", func(*Config) {}, false},
		{"no rows", func(c *Config) { c.Rows = 0 }, true},
		{"no customers", func(c *Config) { c.Customers = 0 }, true},
		{"reversed dates", func(c *Config) { c.End = c.Start }, true},
		{"rate above one", func(c *Config) { c.BadDateRate = 1.5 }, true},
		{"negative rate", func(c *Config) { c.DuplicateRate = -0.1 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGenerateRowCount(t *testing.T) {
	records := generate(t, testConfig())
	if len(records) != 500 {
		t.Fatalf("Expected 500 records, got %d", len(records))
	}
	for i, r := range records {
		if r.OrderLineNumber < 1 || r.QuantityOrdered < 1 {
			t.Fatalf("Record %d has invalid line or quantity: %+v", i, r)
		}
		if r.QtrID != (r.MonthID-1)/3+1 {
			t.Fatalf("Record %d quarter %d does not match month %d", i, r.QtrID, r.MonthID)
		}
	}
}

func TestGenerateDeterministic(t *testing.T) {
	a := generate(t, testConfig())
	b := generate(t, testConfig())
	if !reflect.DeepEqual(a, b) {
		t.Error("Same seed produced different records")
	}
}

func TestGenerateCancelled(t *testing.T) {
	g, err := NewGenerator(testConfig())
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := g.Generate(ctx); err == nil {
		t.Error("Expected error from cancelled context")
	}
}

func TestWriteCSVHeader(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, generate(t, testConfig())[:3]); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	header := strings.SplitN(buf.String(), "\n", 2)[0]
	if header != strings.Join(dataset.SourceColumns, ",") {
		t.Errorf("Expected source header, got %q", header)
	}

	var back []Record
	if err := gocsv.UnmarshalBytes(buf.Bytes(), &back); err != nil {
		t.Fatalf("UnmarshalBytes failed: %v", err)
	}
	if len(back) != 3 {
		t.Errorf("Expected 3 records back, got %d", len(back))
	}
}

func TestWriteFileAnalyses(t *testing.T) {
	cfg := testConfig()
	cfg.BadDateRate = 0.1
	cfg.DuplicateRate = 0.05
	cfg.ZeroMSRPRate = 0.02

	g, err := NewGenerator(cfg)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "synthetic.csv")
	size, err := g.WriteFile(context.Background(), path)
	if err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if size == 0 {
		t.Error("Expected a non-empty file")
	}

	res, err := pipeline.Run(path, pipeline.DefaultOptions())
	if err != nil {
		t.Fatalf("pipeline.Run failed: %v", err)
	}
	if res.Table.Len() != cfg.Rows {
		t.Errorf("Expected %d rows, got %d", cfg.Rows, res.Table.Len())
	}
	if res.Clean.InvalidDates == 0 {
		t.Error("Expected some unparseable dates")
	}
	if len(res.Clean.Duplicates) == 0 {
		t.Error("Expected some duplicate rows")
	}
	if res.InvalidDiscounts == 0 {
		t.Error("Expected some zero MSRP rows")
	}
}

func TestDealSize(t *testing.T) {
	tests := []struct {
		sales float64
		want  string
	}{
		{2999.99, "Small"},
		{3000, "Medium"},
		{6999, "Medium"},
		{7000, "Large"},
	}
	for _, tt := range tests {
		if got := dealSize(tt.sales); got != tt.want {
			t.Errorf("Expected %s for %v, got %s", tt.want, tt.sales, got)
		}
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{512, "512 B"},
		{2048, "2.00 KB"},
		{5 * 1024 * 1024, "5.00 MB"},
		{3 * 1024 * 1024 * 1024, "3.00 GB"},
	}
	for _, tt := range tests {
		if got := FormatSize(tt.bytes); got != tt.want {
			t.Errorf("FormatSize(%d) = %s, want %s", tt.bytes, got, tt.want)
		}
	}
}

func TestProgressReporter(t *testing.T) {
	p := NewProgressReporter("lines", 10, 3)
	for i := 0; i < 10; i++ {
		p.Update(1)
	}
	p.Done()
	if p.Rows() != 10 {
		t.Errorf("Expected 10 rows, got %d", p.Rows())
	}
}
