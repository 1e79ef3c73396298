//-------------------------------------------------------------------------
//
// Customer Sales Analysis
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package datagen

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/nibeditans/Improved-Version-of-Customer-Sales-Analysis/internal/logging"
	"github.com/nibeditans/Improved-Version-of-Customer-Sales-Analysis/internal/metrics"
)

// SourceDateLayout is how order dates appear in source files.
const SourceDateLayout = "1/2/2006 15:04"

// Record is one order line in the source column layout. Field order is
// the file's column order.
type Record struct {
	OrderNumber      int     `csv:"ORDER_NUMBER"`
	QuantityOrdered  int     `csv:"QUANTITY_ORDERED"`
	PriceEach        float64 `csv:"PRICE_EACH"`
	OrderLineNumber  int     `csv:"ORDER_LINE_NUMBER"`
	Sales            float64 `csv:"SALES"`
	OrderDate        string  `csv:"ORDER_DATE"`
	Status           string  `csv:"STATUS"`
	QtrID            int     `csv:"QTR_ID"`
	MonthID          int     `csv:"MONTH_ID"`
	YearID           int     `csv:"YEAR_ID"`
	ProductLine      string  `csv:"PRODUCT_LINE"`
	MSRP             int     `csv:"MSRP"`
	ProductCode      string  `csv:"PRODUCT_CODE"`
	CustomerName     string  `csv:"CUSTOMER_NAME"`
	Phone            string  `csv:"PHONE"`
	AddressLine1     string  `csv:"ADDRESS_LINE1"`
	AddressLine2     string  `csv:"ADDRESS_LINE2"`
	City             string  `csv:"CITY"`
	State            string  `csv:"STATE"`
	PostalCode       string  `csv:"POSTAL_CODE"`
	Country          string  `csv:"COUNTRY"`
	Territory        string  `csv:"TERRITORY"`
	ContactLastName  string  `csv:"CONTACT_LAST_NAME"`
	ContactFirstName string  `csv:"CONTACT_FIRST_NAME"`
	DealSize         string  `csv:"DEAL_SIZE"`
}

// Config configures a generation run.
type Config struct {
	// Rows is the exact number of order lines to write.
	Rows int

	// Customers is the size of the customer pool.
	Customers int

	// Products is the size of the product catalogue.
	Products int

	// Seed makes output reproducible. Zero picks a random seed.
	Seed uint64

	Start time.Time
	End   time.Time

	// BadDateRate is the share of lines with an unparseable date.
	BadDateRate float64

	// DuplicateRate is the share of lines that repeat an earlier line.
	DuplicateRate float64

	// ZeroMSRPRate is the share of lines whose MSRP is zero.
	ZeroMSRPRate float64

	// ProgressInterval is how often to log progress (in rows).
	ProgressInterval int64
}

// DefaultConfig returns a configuration shaped like the reference data:
// about 2,800 lines over 2003 to mid 2005.
func DefaultConfig() Config {
	return Config{
		Rows:             2823,
		Customers:        92,
		Products:         109,
		Start:            time.Date(2003, 1, 6, 0, 0, 0, 0, time.UTC),
		End:              time.Date(2005, 5, 31, 0, 0, 0, 0, time.UTC),
		ProgressInterval: 1000,
	}
}

// Validate checks that the configuration can produce a file.
func (c Config) Validate() error {
	if c.Rows < 1 {
		return errors.New("rows must be at least 1")
	}
	if c.Customers < 1 || c.Products < 1 {
		return errors.New("customers and products must be at least 1")
	}
	if !c.End.After(c.Start) {
		return errors.New("end date must be after start date")
	}
	for name, r := range map[string]float64{
		"bad_date_rate":  c.BadDateRate,
		"duplicate_rate": c.DuplicateRate,
		"zero_msrp_rate": c.ZeroMSRPRate,
	} {
		if r < 0 || r > 1 {
			return fmt.Errorf("%s must be between 0 and 1", name)
		}
	}
	return nil
}

var productLines = []string{
	"Classic Cars", "Vintage Cars", "Motorcycles", "Trucks and Buses",
	"Planes", "Ships", "Trains",
}

var productLineWeights = []int{34, 21, 12, 11, 11, 8, 3}

var statuses = []string{"Shipped", "Cancelled", "Resolved", "On Hold", "In Process", "Disputed"}

var statusWeights = []int{92, 2, 2, 2, 1, 1}

type countryInfo struct {
	name      string
	territory string
	hasState  bool
}

var countries = []countryInfo{
	{"USA", "NA", true},
	{"Spain", "EMEA", false},
	{"France", "EMEA", false},
	{"Australia", "APAC", true},
	{"UK", "EMEA", false},
	{"Italy", "EMEA", false},
	{"Finland", "EMEA", false},
	{"Norway", "EMEA", false},
	{"Singapore", "Japan", false},
	{"Canada", "NA", true},
	{"Denmark", "EMEA", false},
	{"Germany", "EMEA", false},
	{"Sweden", "EMEA", false},
	{"Austria", "EMEA", false},
	{"Japan", "Japan", true},
	{"Switzerland", "EMEA", false},
	{"Belgium", "EMEA", false},
	{"Philippines", "Japan", false},
	{"Ireland", "EMEA", false},
}

var countryWeights = []int{35, 12, 11, 6, 5, 4, 3, 3, 3, 3, 2, 2, 2, 2, 2, 1, 1, 1, 1}

var badDates = []string{"", "not recorded", "31/31/2004", "TBD", "0/0/0000 0:00"}

type customer struct {
	name, phone, address1, address2 string
	city, state, postal             string
	country                         countryInfo
	lastName, firstName             string
}

type product struct {
	code string
	line string
	msrp int
}

// Generator produces synthetic order lines.
type Generator struct {
	cfg       Config
	faker     *Faker
	customers []customer
	products  []product
}

// NewGenerator creates a generator. The customer pool and catalogue are
// drawn up front so every line reuses them.
func NewGenerator(cfg Config) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	f := NewFaker()
	if cfg.Seed != 0 {
		f = NewFakerWithSeed(cfg.Seed)
	}

	g := &Generator{cfg: cfg, faker: f}
	g.customers = make([]customer, cfg.Customers)
	for i := range g.customers {
		g.customers[i] = g.newCustomer()
	}
	g.products = make([]product, cfg.Products)
	for i := range g.products {
		g.products[i] = g.newProduct()
	}
	return g, nil
}

func (g *Generator) newCustomer() customer {
	f := g.faker
	c := customer{
		name:      f.Company(),
		phone:     f.Phone(),
		address1:  f.Street(),
		city:      f.City(),
		postal:    f.Zip(),
		country:   ChooseWeighted(f, countries, countryWeights),
		lastName:  f.LastName(),
		firstName: f.FirstName(),
	}
	if f.Chance(0.1) {
		c.address2 = "Level " + strconv.Itoa(f.Int(1, 15))
	}
	if c.country.hasState {
		c.state = f.State()
	}
	return c
}

func (g *Generator) newProduct() product {
	f := g.faker
	return product{
		code: fmt.Sprintf("S%d_%s", Choose(f, []int{10, 12, 18, 24, 32, 50, 72}), f.Digits(4)),
		line: ChooseWeighted(f, productLines, productLineWeights),
		msrp: f.Int(33, 214),
	}
}

// Generate returns cfg.Rows order lines grouped into orders.
func (g *Generator) Generate(ctx context.Context) ([]Record, error) {
	f := g.faker
	records := make([]Record, 0, g.cfg.Rows)
	progress := NewProgressReporter("order lines", int64(g.cfg.Rows), g.cfg.ProgressInterval)

	orderNumber := 10100
	for len(records) < g.cfg.Rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		cust := Choose(f, g.customers)
		date := f.Date(g.cfg.Start, g.cfg.End)
		status := ChooseWeighted(f, statuses, statusWeights)
		lines := f.Int(1, 18)

		for n := 1; n <= lines && len(records) < g.cfg.Rows; n++ {
			if len(records) > 0 && f.Chance(g.cfg.DuplicateRate) {
				records = append(records, Choose(f, records))
			} else {
				records = append(records, g.line(orderNumber, n, date, status, cust))
			}
			progress.Update(1)
		}
		orderNumber++
	}
	progress.Done()

	return records, nil
}

func (g *Generator) line(order, lineNumber int, date time.Time, status string, c customer) Record {
	f := g.faker
	p := Choose(f, g.products)

	qty := f.Int(6, 97)
	msrp := p.msrp
	price := metrics.Round2(float64(msrp) * f.Float64(0.62, 1.15))
	sales := metrics.Round2(float64(qty) * price)
	if f.Chance(g.cfg.ZeroMSRPRate) {
		msrp = 0
	}

	orderDate := date.Format(SourceDateLayout)
	if f.Chance(g.cfg.BadDateRate) {
		orderDate = Choose(f, badDates)
	}

	return Record{
		OrderNumber:      order,
		QuantityOrdered:  qty,
		PriceEach:        price,
		OrderLineNumber:  lineNumber,
		Sales:            sales,
		OrderDate:        orderDate,
		Status:           status,
		QtrID:            (int(date.Month())-1)/3 + 1,
		MonthID:          int(date.Month()),
		YearID:           date.Year(),
		ProductLine:      p.line,
		MSRP:             msrp,
		ProductCode:      p.code,
		CustomerName:     c.name,
		Phone:            c.phone,
		AddressLine1:     c.address1,
		AddressLine2:     c.address2,
		City:             c.city,
		State:            c.state,
		PostalCode:       c.postal,
		Country:          c.country.name,
		Territory:        c.country.territory,
		ContactLastName:  c.lastName,
		ContactFirstName: c.firstName,
		DealSize:         dealSize(sales),
	}
}

// dealSize buckets a line's sales the way the reference data does.
func dealSize(sales float64) string {
	switch {
	case sales < 3000:
		return "Small"
	case sales < 7000:
		return "Medium"
	default:
		return "Large"
	}
}

// WriteCSV writes records with a header row.
func WriteCSV(w io.Writer, records []Record) error {
	return gocsv.Marshal(&records, w)
}

// WriteFile generates a file at path and returns its size in bytes.
func (g *Generator) WriteFile(ctx context.Context, path string) (int64, error) {
	records, err := g.Generate(ctx)
	if err != nil {
		return 0, err
	}

	fh, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WriteCSV(fh, records); err != nil {
		fh.Close()
		return 0, fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := fh.Close(); err != nil {
		return 0, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	logging.Info().
		Str("file", path).
		Int("rows", len(records)).
		Str("size", FormatSize(info.Size())).
		Msg("Generated sales file")
	return info.Size(), nil
}

// ProgressReporter tracks and reports generation progress.
type ProgressReporter struct {
	label            string
	totalRows        int64
	currentRow       int64
	progressInterval int64
}

// NewProgressReporter creates a new progress reporter.
func NewProgressReporter(label string, totalRows int64, interval int64) *ProgressReporter {
	return &ProgressReporter{
		label:            label,
		totalRows:        totalRows,
		progressInterval: interval,
	}
}

// Update adds generated rows and logs every progressInterval rows.
func (p *ProgressReporter) Update(rows int64) {
	before := p.currentRow
	p.currentRow += rows

	if p.progressInterval > 0 && p.currentRow/p.progressInterval > before/p.progressInterval {
		pct := float64(p.currentRow) / float64(p.totalRows) * 100
		logging.Debug().
			Str("table", p.label).
			Int64("rows", p.currentRow).
			Int64("total", p.totalRows).
			Float64("percent", pct).
			Msg("Generating data")
	}
}

// Rows returns the rows reported so far.
func (p *ProgressReporter) Rows() int64 {
	return p.currentRow
}

// Done logs completion.
func (p *ProgressReporter) Done() {
	logging.Debug().
		Str("table", p.label).
		Int64("rows", p.currentRow).
		Msg("Generation complete")
}

// FormatSize formats a byte count as a human-readable string.
func FormatSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.2f GB", float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%.2f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.2f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
