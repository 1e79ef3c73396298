//-------------------------------------------------------------------------
//
// Customer Sales Analysis
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package main is the entry point for sales-analysis.
package main

import (
	"fmt"
	"os"

	"github.com/nibeditans/Improved-Version-of-Customer-Sales-Analysis/internal/cli"

	// Register exporters
	_ "github.com/nibeditans/Improved-Version-of-Customer-Sales-Analysis/internal/export"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
