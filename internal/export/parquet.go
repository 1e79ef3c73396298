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

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/nibeditans/Improved-Version-of-Customer-Sales-Analysis/internal/logging"
	"github.com/nibeditans/Improved-Version-of-Customer-Sales-Analysis/internal/metrics"
	"github.com/nibeditans/Improved-Version-of-Customer-Sales-Analysis/internal/pipeline"
)

// ParquetFile is the cleaned table file name.
const ParquetFile = "cleaned-sales.parquet"

// LineRecord is one cleaned and derived order line as stored in parquet.
// OrderDate is empty when the date could not be parsed.
type LineRecord struct {
	OrderNumber      string  `json:"order_number" parquet:"name=order_number, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	QuantityOrdered  int64   `json:"quantity_ordered" parquet:"name=quantity_ordered, type=INT64"`
	PriceEach        float64 `json:"price_each" parquet:"name=price_each, type=DOUBLE"`
	OrderLineNumber  int64   `json:"order_line_number" parquet:"name=order_line_number, type=INT64"`
	Sales            float64 `json:"sales" parquet:"name=sales, type=DOUBLE"`
	OrderDate        string  `json:"order_date" parquet:"name=order_date, type=BYTE_ARRAY, convertedtype=UTF8"`
	Status           string  `json:"status" parquet:"name=status, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	QtrID            int64   `json:"qtr_id" parquet:"name=qtr_id, type=INT64"`
	MonthID          int64   `json:"month_id" parquet:"name=month_id, type=INT64"`
	YearID           int64   `json:"year_id" parquet:"name=year_id, type=INT64"`
	ProductLine      string  `json:"product_line" parquet:"name=product_line, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	MSRP             float64 `json:"msrp" parquet:"name=msrp, type=DOUBLE"`
	ProductCode      string  `json:"product_code" parquet:"name=product_code, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	CustomerName     string  `json:"customer_name" parquet:"name=customer_name, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	City             string  `json:"city" parquet:"name=city, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Country          string  `json:"country" parquet:"name=country, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Territory        string  `json:"territory" parquet:"name=territory, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	DealSize         string  `json:"deal_size" parquet:"name=deal_size, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	DayOfWeek        string  `json:"day_of_week" parquet:"name=day_of_week, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Season           string  `json:"season" parquet:"name=season, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Discount         float64 `json:"discount" parquet:"name=discount, type=DOUBLE"`
	DiscountValid    bool    `json:"discount_valid" parquet:"name=discount_valid, type=BOOLEAN"`
	DiscountCategory string  `json:"discount_category" parquet:"name=discount_category, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Cost             float64 `json:"cost" parquet:"name=cost, type=DOUBLE"`
	Profit           float64 `json:"profit" parquet:"name=profit, type=DOUBLE"`
}

// NewLineRecord flattens a derived row.
func NewLineRecord(r metrics.Row) LineRecord {
	return LineRecord{
		OrderNumber:      r.OrderNumber,
		QuantityOrdered:  int64(r.Quantity),
		PriceEach:        r.UnitPrice,
		OrderLineNumber:  int64(r.OrderLineNumber),
		Sales:            r.Sales,
		OrderDate:        r.DateString(),
		Status:           r.Status,
		QtrID:            int64(r.QtrID),
		MonthID:          int64(r.MonthID),
		YearID:           int64(r.YearID),
		ProductLine:      r.ProductLine,
		MSRP:             r.MSRP,
		ProductCode:      r.ProductCode,
		CustomerName:     r.CustomerName,
		City:             r.City,
		Country:          r.Country,
		Territory:        r.Territory,
		DealSize:         r.DealSize,
		DayOfWeek:        r.DayOfWeek,
		Season:           r.Season,
		Discount:         r.Discount,
		DiscountValid:    r.DiscountValid,
		DiscountCategory: r.DiscountCategory,
		Cost:             r.Cost,
		Profit:           r.Profit,
	}
}

// Parquet writes the cleaned table with its derived columns.
type Parquet struct{}

func init() {
	Register(Parquet{})
}

// Name implements Exporter.
func (Parquet) Name() string { return "parquet" }

// Extension implements Exporter.
func (Parquet) Extension() string { return ".parquet" }

// Export implements Exporter.
func (Parquet) Export(res *pipeline.Result, dir string) ([]string, error) {
	path := filepath.Join(dir, ParquetFile)

	fh, err := local.NewLocalFileWriter(path)
	if err != nil {
		return nil, fmt.Errorf("cannot create %s: %w", path, err)
	}
	defer fh.Close()

	pw, err := writer.NewParquetWriter(fh, new(LineRecord), 4)
	if err != nil {
		return nil, fmt.Errorf("parquet writer: %w", err)
	}
	pw.RowGroupSize = 128 * 1024 * 1024 // 128M
	pw.PageSize = 8 * 1024              // 8k
	pw.CompressionType = parquet.CompressionCodec_ZSTD

	for i, r := range res.Derived.Rows {
		rec := NewLineRecord(r)
		if err := pw.Write(rec); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		return nil, fmt.Errorf("parquet write failed: %w", err)
	}

	logging.Debug().
		Int("records", len(res.Derived.Rows)).
		Str("file", path).
		Msg("Parquet write finished")
	return []string{path}, nil
}
