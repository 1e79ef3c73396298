//-------------------------------------------------------------------------
//
// Customer Sales Analysis
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package dataset loads and cleans sales order-line files.
package dataset

import (
	"errors"
	"fmt"
	"strings"
)

// Source column names.
const (
	ColOrderNumber      = "ORDER_NUMBER"
	ColQuantity         = "QUANTITY_ORDERED"
	ColPriceEach        = "PRICE_EACH"
	ColOrderLineNumber  = "ORDER_LINE_NUMBER"
	ColSales            = "SALES"
	ColOrderDate        = "ORDER_DATE"
	ColStatus           = "STATUS"
	ColQtrID            = "QTR_ID"
	ColMonthID          = "MONTH_ID"
	ColYearID           = "YEAR_ID"
	ColProductLine      = "PRODUCT_LINE"
	ColMSRP             = "MSRP"
	ColProductCode      = "PRODUCT_CODE"
	ColCustomerName     = "CUSTOMER_NAME"
	ColPhone            = "PHONE"
	ColAddressLine1     = "ADDRESS_LINE1"
	ColAddressLine2     = "ADDRESS_LINE2"
	ColCity             = "CITY"
	ColState            = "STATE"
	ColPostalCode       = "POSTAL_CODE"
	ColCountry          = "COUNTRY"
	ColTerritory        = "TERRITORY"
	ColContactLastName  = "CONTACT_LAST_NAME"
	ColContactFirstName = "CONTACT_FIRST_NAME"
	ColDealSize         = "DEAL_SIZE"

	// ColUnitPrice replaces ColPriceEach after cleaning.
	ColUnitPrice = "UNIT_PRICE"
)

// SourceColumns lists every column of a sales file in file order.
var SourceColumns = []string{
	ColOrderNumber, ColQuantity, ColPriceEach, ColOrderLineNumber, ColSales,
	ColOrderDate, ColStatus, ColQtrID, ColMonthID, ColYearID, ColProductLine,
	ColMSRP, ColProductCode, ColCustomerName, ColPhone, ColAddressLine1,
	ColAddressLine2, ColCity, ColState, ColPostalCode, ColCountry,
	ColTerritory, ColContactLastName, ColContactFirstName, ColDealSize,
}

// RequiredColumns are the raw columns the analysis reads. Any other
// column is carried through untouched.
var RequiredColumns = []string{
	ColOrderNumber, ColQuantity, ColPriceEach, ColOrderLineNumber, ColSales,
	ColOrderDate, ColQtrID, ColMonthID, ColYearID, ColProductLine, ColMSRP,
	ColCustomerName, ColCountry,
}

var (
	// ErrMissingColumns is returned when a file lacks required columns.
	ErrMissingColumns = errors.New("missing required columns")

	// ErrMalformedValue is returned when a required numeric cell cannot be parsed.
	ErrMalformedValue = errors.New("malformed value")
)

// ValidateColumns checks that every required column is present.
func ValidateColumns(names []string) error {
	present := make(map[string]bool, len(names))
	for _, n := range names {
		present[n] = true
	}

	var missing []string
	for _, req := range RequiredColumns {
		if !present[req] {
			missing = append(missing, req)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}
	return nil
}
