//-------------------------------------------------------------------------
//
// Customer Sales Analysis
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const header = "ORDER_NUMBER,QUANTITY_ORDERED,PRICE_EACH,ORDER_LINE_NUMBER,SALES," +
	"ORDER_DATE,STATUS,QTR_ID,MONTH_ID,YEAR_ID,PRODUCT_LINE,MSRP,PRODUCT_CODE," +
	"CUSTOMER_NAME,ADDRESS_LINE2,COUNTRY\n"

const sample = header +
	"10107,30,95.70,2,2871.00,2/24/2003 0:00,Shipped,1,2,2003,Motorcycles,95,S10_1678,Land of Toys Inc.,,USA\n" +
	"10121,34,81.35,5,2765.90,5/7/2003 0:00,Shipped,2,5,2003,Motorcycles,95,S10_1678,Reims Collectables,Suite 400,France\n" +
	"10134,41,94.74,2,3884.34,not a date,Shipped,3,7,2003,Motorcycles,95,S10_1678,Lyon Souveniers,,France\n" +
	"10107,30,95.70,2,2871.00,2/24/2003 0:00,Shipped,1,2,2003,Motorcycles,95,S10_1678,Land of Toys Inc.,,USA\n"

func TestValidateColumns(t *testing.T) {
	if err := ValidateColumns(SourceColumns); err != nil {
		t.Errorf("Expected full schema to validate, got %v", err)
	}

	err := ValidateColumns([]string{ColOrderNumber, ColSales})
	if !errors.Is(err, ErrMissingColumns) {
		t.Fatalf("Expected ErrMissingColumns, got %v", err)
	}
	if !strings.Contains(err.Error(), ColMSRP) {
		t.Errorf("Expected error to name %s, got %q", ColMSRP, err.Error())
	}
	if strings.Contains(err.Error(), ColSales) {
		t.Errorf("Expected error not to name present column %s, got %q", ColSales, err.Error())
	}
}

func TestReadMissingColumns(t *testing.T) {
	_, err := Read(strings.NewReader("ORDER_NUMBER,SALES\n1,2\n"), DefaultLoadOptions())
	if !errors.Is(err, ErrMissingColumns) {
		t.Errorf("Expected ErrMissingColumns, got %v", err)
	}
}

func TestReadLegacyEncoding(t *testing.T) {
	// 0xe9 is "é" in Windows-1252 and invalid on its own in UTF-8.
	data := []byte(header +
		"1,1,10,1,10,1/5/2004,Shipped,1,1,2004,Planes,10,P1,Caf\xe9 Ltd,,France\n")

	df, err := Read(strings.NewReader(string(data)), DefaultLoadOptions())
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	got := df.Col(ColCustomerName).Elem(0).String()
	if got != "Café Ltd" {
		t.Errorf("Expected 'Café Ltd', got %q", got)
	}
}

func TestReadExplicitEncoding(t *testing.T) {
	data := header + "1,1,10,1,10,1/5/2004,Shipped,1,1,2004,Planes,10,P1,Acme,,USA\n"

	if _, err := Read(strings.NewReader(data), LoadOptions{Encoding: "latin1"}); err != nil {
		t.Errorf("Expected latin1 label to be accepted, got %v", err)
	}
	if _, err := Read(strings.NewReader(data), LoadOptions{Encoding: "no-such-charset"}); err == nil {
		t.Error("Expected error for unknown encoding")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sales.csv")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatal(err)
	}

	df, err := Load(path, DefaultLoadOptions())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if df.Nrow() != 4 {
		t.Errorf("Expected 4 rows, got %d", df.Nrow())
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.csv"), DefaultLoadOptions()); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestClean(t *testing.T) {
	raw, err := Read(strings.NewReader(sample), DefaultLoadOptions())
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	table, stats, err := Clean(raw, DefaultCleanOptions())
	if err != nil {
		t.Fatalf("Clean failed: %v", err)
	}

	if table.Len() != raw.Nrow() {
		t.Errorf("Expected row count %d unchanged, got %d", raw.Nrow(), table.Len())
	}

	cols := strings.Join(table.Columns(), ",")
	if strings.Contains(cols, ColAddressLine2) {
		t.Error("Expected ADDRESS_LINE2 to be dropped")
	}
	if strings.Contains(cols, ColPriceEach) || !strings.Contains(cols, ColUnitPrice) {
		t.Errorf("Expected PRICE_EACH renamed to UNIT_PRICE, got %s", cols)
	}

	if stats.InvalidDates != 1 {
		t.Errorf("Expected 1 invalid date, got %d", stats.InvalidDates)
	}
	if len(stats.InvalidDateSamples) != 1 || stats.InvalidDateSamples[0] != "not a date" {
		t.Errorf("Expected sample 'not a date', got %v", stats.InvalidDateSamples)
	}
	if len(stats.Duplicates) != 1 || stats.Duplicates[0] != 3 {
		t.Errorf("Expected duplicate at index 3, got %v", stats.Duplicates)
	}

	lines := table.Lines()
	want := time.Date(2003, 2, 24, 0, 0, 0, 0, time.UTC)
	if !lines[0].OrderDate.Equal(want) {
		t.Errorf("Expected %v, got %v", want, lines[0].OrderDate)
	}
	if lines[2].HasDate() {
		t.Error("Expected row 2 date to be missing")
	}
	if lines[1].UnitPrice != 81.35 {
		t.Errorf("Expected unit price 81.35, got %v", lines[1].UnitPrice)
	}

	dates := table.Frame().Col(ColOrderDate)
	if got := dates.Elem(0).String(); got != "2003-02-24" {
		t.Errorf("Expected frame date 2003-02-24, got %q", got)
	}
	if !dates.Elem(2).IsNA() {
		t.Error("Expected frame date for row 2 to be NA")
	}
}

func TestCleanNullCounts(t *testing.T) {
	raw, err := Read(strings.NewReader(sample), DefaultLoadOptions())
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	_, stats, err := Clean(raw, DefaultCleanOptions())
	if err != nil {
		t.Fatalf("Clean failed: %v", err)
	}

	counts := make(map[string]int)
	for _, nc := range stats.Nulls {
		counts[nc.Column] = nc.Count
	}
	if counts[ColAddressLine2] != 3 {
		t.Errorf("Expected 3 nulls in ADDRESS_LINE2, got %d", counts[ColAddressLine2])
	}
	if counts[ColSales] != 0 {
		t.Errorf("Expected 0 nulls in SALES, got %d", counts[ColSales])
	}
}

func TestCleanMalformedNumeric(t *testing.T) {
	data := header + "1,lots,10,1,10,1/5/2004,Shipped,1,1,2004,Planes,10,P1,Acme,,USA\n"
	raw, err := Read(strings.NewReader(data), DefaultLoadOptions())
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	_, _, err = Clean(raw, DefaultCleanOptions())
	if !errors.Is(err, ErrMalformedValue) {
		t.Fatalf("Expected ErrMalformedValue, got %v", err)
	}
	if !strings.Contains(err.Error(), ColQuantity) {
		t.Errorf("Expected error to name %s, got %q", ColQuantity, err.Error())
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"2/24/2003 0:00", "2003-02-24", true},
		{"12/1/2004 13:45:10", "2004-12-01", true},
		{"5/7/2003", "2003-05-07", true},
		{"2004-03-01", "2004-03-01", true},
		{"2004-03-01 10:11:12", "2004-03-01", true},
		{"2004/03/01", "2004-03-01", true},
		{"  1/5/2004 ", "2004-01-05", true},
		{"", "", false},
		{"13/45/2004", "", false},
		{"yesterday", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseDate(tt.input, DefaultDateLayouts)
			if ok != tt.ok {
				t.Fatalf("Expected ok=%v, got %v", tt.ok, ok)
			}
			if ok && got.Format(DateLayout) != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got.Format(DateLayout))
			}
		})
	}
}

func TestNewTable(t *testing.T) {
	lines := []OrderLine{
		{OrderNumber: "1", Quantity: 2, UnitPrice: 5, Sales: 10, CustomerName: "Acme",
			OrderDate: time.Date(2004, 1, 1, 0, 0, 0, 0, time.UTC)},
		{OrderNumber: "2", Quantity: 1, UnitPrice: 7, Sales: 7, CustomerName: "Beta"},
	}
	table := NewTable(lines)

	if table.Len() != 2 {
		t.Errorf("Expected 2 rows, got %d", table.Len())
	}
	df := table.Frame()
	if got := df.Col(ColSales).Float(); got[0] != 10 || got[1] != 7 {
		t.Errorf("Expected sales [10 7], got %v", got)
	}
	if !df.Col(ColOrderDate).Elem(1).IsNA() {
		t.Error("Expected missing date to be NA in frame")
	}
}
