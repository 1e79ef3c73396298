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
	"fmt"
	"path/filepath"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"

	"github.com/nibeditans/Improved-Version-of-Customer-Sales-Analysis/internal/pipeline"
)

// Excel limits sheet names to 31 characters.
const maxSheetName = 31

// XLSXFile is the workbook name.
const XLSXFile = "sales-analysis.xlsx"

// XLSX writes one workbook with a sheet per table.
type XLSX struct{}

func init() {
	Register(XLSX{})
}

// Name implements Exporter.
func (XLSX) Name() string { return "xlsx" }

// Extension implements Exporter.
func (XLSX) Extension() string { return ".xlsx" }

// Export implements Exporter.
func (XLSX) Export(res *pipeline.Result, dir string) ([]string, error) {
	f := excelize.NewFile()
	defer f.Close()

	for i, t := range Tables(res) {
		sheet := sheetName(t.Name)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return nil, err
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return nil, fmt.Errorf("sheet %s: %w", sheet, err)
		}
		if err := writeSheet(f, sheet, t.Frame); err != nil {
			return nil, fmt.Errorf("sheet %s: %w", sheet, err)
		}
	}
	f.SetActiveSheet(0)

	path := filepath.Join(dir, XLSXFile)
	if err := f.SaveAs(path); err != nil {
		return nil, fmt.Errorf("failed to save workbook: %w", err)
	}
	return []string{path}, nil
}

func writeSheet(f *excelize.File, sheet string, df dataframe.DataFrame) error {
	names := df.Names()
	header := make([]interface{}, len(names))
	for i, n := range names {
		header[i] = n
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	cols := make([]series.Series, len(names))
	for i, n := range names {
		cols[i] = df.Col(n)
	}
	for r := 0; r < df.Nrow(); r++ {
		row := make([]interface{}, len(names))
		for c, s := range cols {
			e := s.Elem(r)
			if e.IsNA() {
				continue
			}
			row[c] = e.Val()
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func sheetName(name string) string {
	if len(name) > maxSheetName {
		return name[:maxSheetName]
	}
	return name
}
