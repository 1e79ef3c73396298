//-------------------------------------------------------------------------
//
// Customer Sales Analysis
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package export

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/goccy/go-json"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xuri/excelize/v2"

	"github.com/nibeditans/Improved-Version-of-Customer-Sales-Analysis/internal/pipeline"
	"github.com/nibeditans/Improved-Version-of-Customer-Sales-Analysis/internal/testutil"
)

func sampleResult(t *testing.T) *pipeline.Result {
	t.Helper()
	res, err := pipeline.Run(testutil.WriteSample(t), pipeline.DefaultOptions())
	if err != nil {
		t.Fatalf("pipeline.Run failed: %v", err)
	}
	return res
}

func TestRegistry(t *testing.T) {
	want := []string{"csv", "json", "parquet", "xlsx"}
	if got := List(); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected formats %v, got %v", want, got)
	}

	if _, err := Get("pdf"); !errors.Is(err, ErrUnknownExporter) {
		t.Errorf("Expected ErrUnknownExporter, got %v", err)
	}
}

func TestTables(t *testing.T) {
	res := sampleResult(t)
	tables := Tables(res)

	if len(tables) != len(res.Summaries())+4 {
		t.Fatalf("Expected %d tables, got %d", len(res.Summaries())+4, len(tables))
	}
	if tables[0].Name != "sales-by-day-of-week" {
		t.Errorf("Expected slug name, got %q", tables[0].Name)
	}
	last := tables[len(tables)-1]
	if last.Name != "cleaned-sales" || last.Frame.Nrow() != 7 {
		t.Errorf("Expected cleaned table with 7 rows, got %s with %d", last.Name, last.Frame.Nrow())
	}
	for _, tbl := range tables {
		if len(sheetName(tbl.Name)) > maxSheetName {
			t.Errorf("Sheet name %q too long", tbl.Name)
		}
	}
}

func TestExportXLSX(t *testing.T) {
	res := sampleResult(t)
	files, err := XLSX{}.Export(res, t.TempDir())
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	f, err := excelize.OpenFile(files[0])
	if err != nil {
		t.Fatalf("Failed to open workbook: %v", err)
	}
	defer f.Close()

	if got := len(f.GetSheetList()); got != len(Tables(res)) {
		t.Errorf("Expected %d sheets, got %d", len(Tables(res)), got)
	}
	rows, err := f.GetRows("sales-by-day-of-week")
	if err != nil {
		t.Fatalf("GetRows failed: %v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("Expected header and 4 days, got %d rows", len(rows))
	}
	if rows[0][0] != "DAY_OF_WEEK" || rows[1][0] != "Monday" {
		t.Errorf("Unexpected sheet contents %v", rows[:2])
	}
}

func TestExportCSV(t *testing.T) {
	res := sampleResult(t)
	dir := t.TempDir()
	files, err := CSV{}.Export(res, dir)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if len(files) != len(Tables(res)) {
		t.Errorf("Expected one file per table, got %d", len(files))
	}

	fh, err := os.Open(filepath.Join(dir, "sales-by-season.csv"))
	if err != nil {
		t.Fatalf("Failed to open csv: %v", err)
	}
	defer fh.Close()

	df := dataframe.ReadCSV(fh)
	if df.Err != nil {
		t.Fatalf("ReadCSV failed: %v", df.Err)
	}
	if !reflect.DeepEqual(df.Names(), []string{"SEASON", "SALES"}) {
		t.Errorf("Unexpected columns %v", df.Names())
	}
}

func TestExportJSON(t *testing.T) {
	res := sampleResult(t)
	files, err := JSON{}.Export(res, t.TempDir())
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	data, err := os.ReadFile(files[0])
	if err != nil {
		t.Fatal(err)
	}
	var doc struct {
		CLV struct {
			Value float64 `json:"clv"`
		} `json:"clv"`
		Clean struct {
			InvalidDates int `json:"invalid_dates"`
		} `json:"clean"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if doc.CLV.Value != res.CLV.Value {
		t.Errorf("Expected CLV %v, got %v", res.CLV.Value, doc.CLV.Value)
	}
	if doc.Clean.InvalidDates != 1 {
		t.Errorf("Expected 1 invalid date, got %d", doc.Clean.InvalidDates)
	}
}

func TestExportUnavailableCLV(t *testing.T) {
	res, err := pipeline.Run(testutil.WriteUndated(t), pipeline.DefaultOptions())
	if err != nil {
		t.Fatalf("pipeline.Run failed: %v", err)
	}

	values := clvFrame(res).Col("VALUE")
	for i := 0; i < values.Len(); i++ {
		if !values.Elem(i).IsNA() {
			t.Errorf("Expected NA CLV value at row %d, got %v", i, values.Elem(i))
		}
	}

	files, err := JSON{}.Export(res, t.TempDir())
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	data, err := os.ReadFile(files[0])
	if err != nil {
		t.Fatal(err)
	}
	var doc struct {
		Unavailable string `json:"clv_unavailable"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if doc.Unavailable != res.CLVUnavailable || doc.Unavailable == "" {
		t.Errorf("Expected clv_unavailable %q, got %q", res.CLVUnavailable, doc.Unavailable)
	}

	if _, err := (XLSX{}).Export(res, t.TempDir()); err != nil {
		t.Errorf("Expected xlsx export without CLV to succeed, got %v", err)
	}
}

func TestExportParquet(t *testing.T) {
	res := sampleResult(t)
	files, err := Parquet{}.Export(res, t.TempDir())
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	fr, err := local.NewLocalFileReader(files[0])
	if err != nil {
		t.Fatalf("Failed to open parquet file: %v", err)
	}
	defer fr.Close()

	pr, err := reader.NewParquetReader(fr, new(LineRecord), 1)
	if err != nil {
		t.Fatalf("NewParquetReader failed: %v", err)
	}
	defer pr.ReadStop()

	n := int(pr.GetNumRows())
	if n != 7 {
		t.Fatalf("Expected 7 records, got %d", n)
	}
	records := make([]LineRecord, n)
	if err := pr.Read(&records); err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if records[0].CustomerName != "Land of Toys Inc." || records[0].OrderDate != "2003-02-24" {
		t.Errorf("Unexpected first record %+v", records[0])
	}
	if records[5].OrderDate != "" || records[5].DayOfWeek != "" {
		t.Errorf("Expected undated record, got %+v", records[5])
	}
}

func TestExportParquetLargeQuantity(t *testing.T) {
	res := sampleResult(t)
	quantity := int64(3_000_000_000)
	res.Derived.Rows[0].Quantity = int(quantity)
	res.Derived.Rows[0].YearID = 40000

	files, err := Parquet{}.Export(res, t.TempDir())
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	fr, err := local.NewLocalFileReader(files[0])
	if err != nil {
		t.Fatalf("Failed to open parquet file: %v", err)
	}
	defer fr.Close()

	pr, err := reader.NewParquetReader(fr, new(LineRecord), 1)
	if err != nil {
		t.Fatalf("NewParquetReader failed: %v", err)
	}
	defer pr.ReadStop()

	records := make([]LineRecord, 1)
	if err := pr.Read(&records); err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if records[0].QuantityOrdered != quantity || records[0].YearID != 40000 {
		t.Errorf("Expected quantity %d and year 40000, got %d and %d",
			quantity, records[0].QuantityOrdered, records[0].YearID)
	}
}

func TestExportAll(t *testing.T) {
	res := sampleResult(t)
	base := t.TempDir()

	files, err := ExportAll(res, Options{Dir: base, Formats: []string{"json", "xlsx"}, Timestamp: true})
	if err != nil {
		t.Fatalf("ExportAll failed: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("Expected 2 files, got %v", files)
	}
	runDir := filepath.Join(base, "run_"+res.StartedAt.Format(TimestampLayout))
	for _, f := range files {
		if !strings.HasPrefix(f, runDir) {
			t.Errorf("Expected %s under %s", f, runDir)
		}
	}
}

func TestExportAllUnknownFormat(t *testing.T) {
	res := sampleResult(t)
	dir := filepath.Join(t.TempDir(), "out")

	if _, err := ExportAll(res, Options{Dir: dir, Formats: []string{"csv", "pdf"}}); !errors.Is(err, ErrUnknownExporter) {
		t.Errorf("Expected ErrUnknownExporter, got %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Error("Expected nothing written for an unknown format")
	}
}
