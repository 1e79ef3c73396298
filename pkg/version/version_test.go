//-------------------------------------------------------------------------
//
// Customer Sales Analysis
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package version

import (
	"strings"
	"testing"
)

func TestInfo(t *testing.T) {
	info := Info()
	if !strings.HasPrefix(info, "sales-analysis "+Version) {
		t.Errorf("Expected info to start with binary name and version, got %q", info)
	}
	if Short() != Version {
		t.Errorf("Expected Short() %q, got %q", Version, Short())
	}
}
