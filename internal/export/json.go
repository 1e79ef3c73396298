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
	"path/filepath"

	"github.com/goccy/go-json"

	"github.com/nibeditans/Improved-Version-of-Customer-Sales-Analysis/internal/pipeline"
)

// JSONFile is the result document name.
const JSONFile = "sales-analysis.json"

// JSON writes the whole result as one indented document.
type JSON struct{}

func init() {
	Register(JSON{})
}

// Name implements Exporter.
func (JSON) Name() string { return "json" }

// Extension implements Exporter.
func (JSON) Extension() string { return ".json" }

// Export implements Exporter.
func (JSON) Export(res *pipeline.Result, dir string) ([]string, error) {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}

	path := filepath.Join(dir, JSONFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write JSON: %w", err)
	}
	return []string{path}, nil
}
