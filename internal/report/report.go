//-------------------------------------------------------------------------
//
// Customer Sales Analysis
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package report formats analysis results for people: a markdown
// document and its terminal rendering.
package report

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/xeonx/timeago"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/nibeditans/Improved-Version-of-Customer-Sales-Analysis/internal/dataset"
	"github.com/nibeditans/Improved-Version-of-Customer-Sales-Analysis/internal/metrics"
	"github.com/nibeditans/Improved-Version-of-Customer-Sales-Analysis/internal/pipeline"
)

// DefaultWidth is the terminal wrap width.
const DefaultWidth = 80

// Options controls the report contents.
type Options struct {
	// TopCustomers limits the RFM table. Zero or less shows every customer.
	TopCustomers int

	// Now anchors relative dates. The zero value means time.Now.
	Now time.Time
}

// DefaultOptions returns the default report options.
func DefaultOptions() Options {
	return Options{TopCustomers: 10}
}

// Markdown returns the full report as markdown.
func Markdown(res *pipeline.Result, opts Options) string {
	p := message.NewPrinter(language.English)
	var b strings.Builder

	b.WriteString("# Customer Sales Analysis\n\n")
	writeDetails(&b, p, res, opts)

	for _, s := range res.Summaries() {
		writeSummary(&b, p, s)
	}
	writePivot(&b, p, res.SalesPivot)
	writeRFM(&b, p, res.RFM, opts.TopCustomers)
	writeCLV(&b, p, res)
	writeStats(&b, p, res.Stats)

	return b.String()
}

// Render returns the KPI box followed by the markdown report rendered
// for a terminal of the given width.
func Render(res *pipeline.Result, opts Options, width int) (string, error) {
	if width <= 0 {
		width = DefaultWidth
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create renderer: %w", err)
	}

	out, err := r.Render(Markdown(res, opts))
	if err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	return KPIBox(res) + "\n" + out, nil
}

// KPIBox returns the headline figures in a bordered box.
func KPIBox(res *pipeline.Result) string {
	p := message.NewPrinter(language.English)
	keyword := func(s string) string {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Render(s)
	}

	var sb strings.Builder
	fmt.Fprintln(&sb, lipgloss.NewStyle().Bold(true).Render("SALES SUMMARY"))
	fmt.Fprintf(&sb, "\nOrder lines: %s", keyword(p.Sprintf("%d", res.Table.Len())))
	fmt.Fprintf(&sb, "\nTotal sales: %s", keyword(p.Sprintf("%.2f", res.TotalSales())))
	fmt.Fprintf(&sb, "\nCustomers ranked: %s", keyword(p.Sprintf("%d", len(res.RFM.Customers))))
	clv := "n/a"
	if res.HasCLV() {
		clv = p.Sprintf("%.2f", res.CLV.Value)
	}
	fmt.Fprintf(&sb, "\nCustomer lifetime value: %s", keyword(clv))

	return lipgloss.NewStyle().
		Width(48).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63")).
		Padding(1, 2).
		Render(sb.String())
}

func writeDetails(b *strings.Builder, p *message.Printer, res *pipeline.Result, opts Options) {
	b.WriteString("## Details\n\n")
	if res.Input != "" {
		fmt.Fprintf(b, "Input: `%s`\n\n", res.Input)
	}
	b.WriteString(p.Sprintf("  * Order lines: %d\n", res.Table.Len()))
	b.WriteString(p.Sprintf("  * Unparseable dates: %d\n", res.Clean.InvalidDates))
	b.WriteString(p.Sprintf("  * Duplicate rows: %d\n", len(res.Clean.Duplicates)))
	b.WriteString(p.Sprintf("  * Rows without discount: %d\n", res.InvalidDiscounts))

	first, last, ok := dateRange(res.Table.Lines())
	if !ok {
		b.WriteString("  * Orders: no valid dates\n\n")
		return
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	cfg := timeago.English
	cfg.DefaultLayout = dataset.DateLayout
	fmt.Fprintf(b, "  * Orders: %s to %s (latest %s)\n\n",
		first.Format(dataset.DateLayout), last.Format(dataset.DateLayout),
		cfg.FormatReference(last, now))
}

func writeSummary(b *strings.Builder, p *message.Printer, s metrics.Summary) {
	fmt.Fprintf(b, "## %s\n\n", s.Title)
	fmt.Fprintf(b, "| %s | %s |\n|---|---:|\n", s.KeyName, s.ValueName)
	for _, e := range s.Entries {
		fmt.Fprintf(b, "| %s | %s |\n", e.Key, number(p, e.Value))
	}
	b.WriteString("\n")
}

func writePivot(b *strings.Builder, p *message.Printer, pv metrics.Pivot) {
	fmt.Fprintf(b, "## %s\n\n", pv.Title)
	fmt.Fprintf(b, "| %s | %s |\n", pv.RowName, strings.Join(pv.Columns, " | "))
	b.WriteString("|---" + strings.Repeat("|---:", len(pv.Columns)) + "|\n")
	for i, row := range pv.Rows {
		cells := make([]string, len(pv.Columns))
		for j := range pv.Columns {
			if pv.Filled[i][j] {
				cells[j] = number(p, pv.Values[i][j])
			}
		}
		fmt.Fprintf(b, "| %s | %s |\n", row, strings.Join(cells, " | "))
	}
	b.WriteString("\n")
}

func writeRFM(b *strings.Builder, p *message.Printer, rfm metrics.RFM, top int) {
	b.WriteString("## RFM Scores\n\n")
	fmt.Fprintf(b, "Ties: %s, join: %s", rfm.TieMethod, rfm.JoinMode)
	if rfm.Excluded > 0 {
		b.WriteString(p.Sprintf(", %d customers without dated orders excluded", rfm.Excluded))
	}
	b.WriteString("\n\n")

	b.WriteString("| Customer | Last order | Orders | Sales | R | F | M | Score |\n")
	b.WriteString("|---|---|---:|---:|---:|---:|---:|---:|\n")
	customers := rfm.Customers
	if top > 0 && top < len(customers) {
		customers = customers[:top]
	}
	for _, c := range customers {
		last := ""
		if !c.LastOrder.IsZero() {
			last = c.LastOrder.Format(dataset.DateLayout)
		}
		fmt.Fprintf(b, "| %s | %s | %d | %s | %s | %s | %s | %s |\n",
			c.Customer, last, c.Frequency, p.Sprintf("%.2f", c.Monetary),
			number(p, c.RScore), number(p, c.FScore), number(p, c.MScore), number(p, c.Score))
	}
	b.WriteString("\n")
}

func writeCLV(b *strings.Builder, p *message.Printer, res *pipeline.Result) {
	b.WriteString("## Customer Lifetime Value\n\n")
	if !res.HasCLV() {
		b.WriteString(p.Sprintf("  * **CLV: unavailable** (%v)\n\n", res.CLVErr))
		return
	}
	c := res.CLV
	b.WriteString(p.Sprintf("  * Average order value: %.2f\n", c.AverageOrderValue))
	b.WriteString(p.Sprintf("  * Purchase frequency: %.2f\n", c.PurchaseFrequency))
	b.WriteString(p.Sprintf("  * Customer lifespan: %.2f years (%.1f days)\n", c.LifespanYears, c.LifespanDays))
	b.WriteString(p.Sprintf("  * **CLV: %.2f**\n\n", c.Value))
}

func writeStats(b *strings.Builder, p *message.Printer, s pipeline.Statistics) {
	b.WriteString("## Statistics\n\n")
	b.WriteString("| Column | Count | Mean | Std | Min | 25% | 50% | 75% | Max |\n")
	b.WriteString("|---|---:|---:|---:|---:|---:|---:|---:|---:|\n")
	for _, d := range s.Describe {
		fmt.Fprintf(b, "| %s | %d | %s | %s | %s | %s | %s | %s | %s |\n",
			d.Column, d.Count,
			p.Sprintf("%.2f", d.Mean), p.Sprintf("%.2f", d.Std),
			p.Sprintf("%.2f", d.Min), p.Sprintf("%.2f", d.Q25),
			p.Sprintf("%.2f", d.Median), p.Sprintf("%.2f", d.Q75),
			p.Sprintf("%.2f", d.Max))
	}
	b.WriteString("\n")

	o := s.SalesOutliers
	b.WriteString(p.Sprintf("Sales outliers outside [%.2f, %.2f]: %d\n\n", o.Lower, o.Upper, len(o.Indices)))
	if s.QuantitySalesCorrelation != nil {
		fmt.Fprintf(b, "Quantity/sales correlation: %.3f\n\n", *s.QuantitySalesCorrelation)
	}
}

// number prints whole values without decimals.
func number(p *message.Printer, v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return p.Sprintf("%d", int64(v))
	}
	return p.Sprintf("%.2f", v)
}

func dateRange(lines []dataset.OrderLine) (first, last time.Time, ok bool) {
	for _, l := range lines {
		if !l.HasDate() {
			continue
		}
		if !ok || l.OrderDate.Before(first) {
			first = l.OrderDate
		}
		if !ok || l.OrderDate.After(last) {
			last = l.OrderDate
		}
		ok = true
	}
	return first, last, ok
}
