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
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"

	"github.com/nibeditans/Improved-Version-of-Customer-Sales-Analysis/internal/logging"
)

// EncodingAuto passes valid UTF-8 through and decodes anything else as
// Windows-1252.
const EncodingAuto = "auto"

// NAValues are the cell values read as missing.
var NAValues = []string{"", "NA", "NaN", "N/A", "null"}

// LoadOptions configures how a sales file is read.
type LoadOptions struct {
	// Encoding is "auto" or any WHATWG encoding label (utf-8, latin1, ...).
	Encoding string

	// Delimiter separates fields. Zero means comma.
	Delimiter rune
}

// DefaultLoadOptions returns the options used for the sample dataset.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		Encoding:  EncodingAuto,
		Delimiter: ',',
	}
}

// Load reads the sales file at path into a raw frame of string columns.
func Load(path string, opts LoadOptions) (dataframe.DataFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()

	df, err := Read(f, opts)
	if err != nil {
		return df, fmt.Errorf("failed to read %s: %w", path, err)
	}

	logging.Info().
		Str("input", path).
		Int("rows", df.Nrow()).
		Int("columns", df.Ncol()).
		Msg("Loaded sales data")

	return df, nil
}

// Read decodes r and parses it as a delimited file with a header row.
// Every column is kept as strings; typing happens in Clean so malformed
// cells can be reported by row and column.
func Read(r io.Reader, opts LoadOptions) (dataframe.DataFrame, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return dataframe.DataFrame{}, err
	}

	data, err = decode(data, opts.Encoding)
	if err != nil {
		return dataframe.DataFrame{}, err
	}

	delim := opts.Delimiter
	if delim == 0 {
		delim = ','
	}

	df := dataframe.ReadCSV(bytes.NewReader(data),
		dataframe.WithDelimiter(delim),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(NAValues),
	)
	if df.Err != nil {
		return df, fmt.Errorf("failed to parse csv: %w", df.Err)
	}

	if err := ValidateColumns(df.Names()); err != nil {
		return df, err
	}
	return df, nil
}

func decode(data []byte, label string) ([]byte, error) {
	label = strings.ToLower(strings.TrimSpace(label))

	var enc encoding.Encoding
	switch label {
	case "", EncodingAuto:
		if utf8.Valid(data) {
			enc = unicode.UTF8BOM
		} else {
			logging.Debug().Msg("Input is not valid UTF-8, decoding as Windows-1252")
			enc = charmap.Windows1252
		}
	case "utf-8", "utf8":
		enc = unicode.UTF8BOM
	default:
		var err error
		enc, err = htmlindex.Get(label)
		if err != nil {
			return nil, fmt.Errorf("unsupported encoding %q: %w", label, err)
		}
	}

	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode input as %s: %w", label, err)
	}
	return out, nil
}
