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
	"os"

	"github.com/go-gota/gota/dataframe"

	"github.com/nibeditans/Improved-Version-of-Customer-Sales-Analysis/internal/pipeline"
)

// CSV writes one file per table.
type CSV struct{}

func init() {
	Register(CSV{})
}

// Name implements Exporter.
func (CSV) Name() string { return "csv" }

// Extension implements Exporter.
func (CSV) Extension() string { return ".csv" }

// Export implements Exporter.
func (c CSV) Export(res *pipeline.Result, dir string) ([]string, error) {
	tables := Tables(res)
	files := make([]string, 0, len(tables))
	for _, t := range tables {
		path := tablePath(dir, t, c.Extension())
		if err := writeCSV(path, t.Frame); err != nil {
			return files, err
		}
		files = append(files, path)
	}
	return files, nil
}

func writeCSV(path string, df dataframe.DataFrame) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := df.WriteCSV(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
