//-------------------------------------------------------------------------
//
// Customer Sales Analysis
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package config handles configuration management for sales-analysis.
// Configuration is loaded from config files and CLI flags (no environment variables).
// CLI flags take precedence over config file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/spf13/viper"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/nibeditans/Improved-Version-of-Customer-Sales-Analysis/internal/datagen"
	"github.com/nibeditans/Improved-Version-of-Customer-Sales-Analysis/internal/dataset"
	"github.com/nibeditans/Improved-Version-of-Customer-Sales-Analysis/internal/export"
	"github.com/nibeditans/Improved-Version-of-Customer-Sales-Analysis/internal/logging"
	"github.com/nibeditans/Improved-Version-of-Customer-Sales-Analysis/internal/metrics"
	"github.com/nibeditans/Improved-Version-of-Customer-Sales-Analysis/internal/pipeline"
)

// DateFormat is the layout of dates in the generate section.
const DateFormat = "2006-01-02"

// Config holds all configuration for sales-analysis.
type Config struct {
	// LogLevel controls logging verbosity (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level"`

	Input    InputConfig    `mapstructure:"input"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Export   ExportConfig   `mapstructure:"export"`
	Report   ReportConfig   `mapstructure:"report"`
	Publish  PublishConfig  `mapstructure:"publish"`
	Generate GenerateConfig `mapstructure:"generate"`
	Watch    WatchConfig    `mapstructure:"watch"`
}

// InputConfig describes the sales file.
type InputConfig struct {
	// Path is the CSV file to analyse.
	Path string `mapstructure:"path"`

	// Encoding is "auto" or a WHATWG label such as "windows-1252".
	Encoding string `mapstructure:"encoding"`

	// Delimiter is a single character.
	Delimiter string `mapstructure:"delimiter"`

	// DateLayouts are Go time layouts tried in order for ORDER_DATE.
	// Empty means the built-in layouts.
	DateLayouts []string `mapstructure:"date_layouts"`
}

// PipelineConfig holds the analysis policy choices.
type PipelineConfig struct {
	CostRatio     float64 `mapstructure:"cost_ratio"`
	TieMethod     string  `mapstructure:"tie_method"`
	JoinMode      string  `mapstructure:"join_mode"`
	StrictMSRP    bool    `mapstructure:"strict_msrp"`
	TopCountries  int     `mapstructure:"top_countries"`
	RollingWindow int     `mapstructure:"rolling_window"`
	HistogramBins int     `mapstructure:"histogram_bins"`
}

// ExportConfig controls which files analyze writes.
type ExportConfig struct {
	// Dir is the output directory. Empty disables exports.
	Dir string `mapstructure:"dir"`

	// Formats are exporter names (csv, json, parquet, xlsx).
	Formats []string `mapstructure:"formats"`

	// Timestamp writes each run into its own sub-directory.
	Timestamp bool `mapstructure:"timestamp"`
}

// ReportConfig controls the terminal report.
type ReportConfig struct {
	// TopCustomers is the number of RFM rows shown.
	TopCustomers int `mapstructure:"top_customers"`

	// Width is the word wrap width for rendered output.
	Width int `mapstructure:"width"`

	// Plain prints markdown instead of rendering it.
	Plain bool `mapstructure:"plain"`
}

// PublishConfig holds PostgreSQL settings for publish.
type PublishConfig struct {
	// Connection is the PostgreSQL connection string.
	Connection string `mapstructure:"connection"`

	// CreateSchema creates the result tables when they are missing.
	CreateSchema bool `mapstructure:"create_schema"`

	// DropExisting drops the result tables before publishing.
	DropExisting bool `mapstructure:"drop_existing"`
}

// GenerateConfig holds settings for the synthetic data generator.
type GenerateConfig struct {
	Output        string  `mapstructure:"output"`
	Rows          int     `mapstructure:"rows"`
	Customers     int     `mapstructure:"customers"`
	Products      int     `mapstructure:"products"`
	Seed          uint64  `mapstructure:"seed"`
	Start         string  `mapstructure:"start"`
	End           string  `mapstructure:"end"`
	BadDateRate   float64 `mapstructure:"bad_date_rate"`
	DuplicateRate float64 `mapstructure:"duplicate_rate"`
	ZeroMSRPRate  float64 `mapstructure:"zero_msrp_rate"`
}

// WatchConfig holds settings for watch mode.
type WatchConfig struct {
	// Debounce is the quiet period in milliseconds before a re-run.
	Debounce int `mapstructure:"debounce"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	opts := pipeline.DefaultOptions()
	gen := datagen.DefaultConfig()
	return &Config{
		LogLevel: "info",
		Input: InputConfig{
			Encoding:  dataset.EncodingAuto,
			Delimiter: ",",
		},
		Pipeline: PipelineConfig{
			CostRatio:     opts.CostRatio,
			TieMethod:     string(opts.TieMethod),
			JoinMode:      string(opts.JoinMode),
			StrictMSRP:    false,
			TopCountries:  opts.TopCountries,
			RollingWindow: opts.RollingWindow,
			HistogramBins: opts.HistogramBins,
		},
		Export: ExportConfig{
			Formats:   []string{"xlsx"},
			Timestamp: false,
		},
		Report: ReportConfig{
			TopCustomers: 10,
			Width:        80,
		},
		Publish: PublishConfig{
			CreateSchema: true,
		},
		Generate: GenerateConfig{
			Output:    "sales_data_sample.csv",
			Rows:      gen.Rows,
			Customers: gen.Customers,
			Products:  gen.Products,
			Start:     gen.Start.Format(DateFormat),
			End:       gen.End.Format(DateFormat),
		},
		Watch: WatchConfig{
			Debounce: 500,
		},
	}
}

// Load reads configuration from config files.
// Config file locations (in order of precedence):
// 1. Path specified by configFile parameter
// 2. ./sales-analysis.yaml
// 3. ~/.config/sales-analysis/config.yaml
func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("sales-analysis")
	v.SetConfigType("yaml")

	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "sales-analysis"))
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// Validate checks settings shared by every command.
func (c *Config) Validate() error {
	return logging.ValidateLevel(c.LogLevel)
}

// ValidateAnalyze checks configuration required for analyze and watch.
func (c *Config) ValidateAnalyze() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Input.Path == "" {
		return fmt.Errorf("input file is required")
	}
	if _, err := c.PipelineOptions(); err != nil {
		return err
	}
	for _, name := range c.Export.Formats {
		if _, err := export.Get(name); err != nil {
			return err
		}
	}
	if c.Report.TopCustomers < 0 {
		return fmt.Errorf("top_customers must be non-negative")
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("debounce must be non-negative")
	}
	return nil
}

// ValidatePublish checks configuration required for publish.
func (c *Config) ValidatePublish() error {
	if err := c.ValidateAnalyze(); err != nil {
		return err
	}
	if c.Publish.Connection == "" {
		return fmt.Errorf("connection string is required")
	}
	return nil
}

// ValidateGenerate checks configuration required for generate.
func (c *Config) ValidateGenerate() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Generate.Output == "" {
		return fmt.Errorf("output file is required")
	}
	gen, err := c.GeneratorConfig()
	if err != nil {
		return err
	}
	return gen.Validate()
}

// PipelineOptions converts the input and pipeline sections into run
// options.
func (c *Config) PipelineOptions() (pipeline.Options, error) {
	opts := pipeline.DefaultOptions()

	if c.Input.Encoding != "" && c.Input.Encoding != dataset.EncodingAuto {
		if _, err := htmlindex.Get(c.Input.Encoding); err != nil {
			return opts, fmt.Errorf("unknown encoding %q", c.Input.Encoding)
		}
		opts.Load.Encoding = c.Input.Encoding
	}
	if c.Input.Delimiter != "" {
		r, size := utf8.DecodeRuneInString(c.Input.Delimiter)
		if size != len(c.Input.Delimiter) {
			return opts, fmt.Errorf("delimiter must be a single character, got %q", c.Input.Delimiter)
		}
		opts.Load.Delimiter = r
	}
	opts.Clean.DateLayouts = c.DateLayouts()

	p := c.Pipeline
	if p.CostRatio < 0 || p.CostRatio > 1 {
		return opts, fmt.Errorf("cost_ratio must be between 0 and 1")
	}
	tie, err := metrics.ParseTieMethod(p.TieMethod)
	if err != nil {
		return opts, err
	}
	join, err := metrics.ParseJoinMode(p.JoinMode)
	if err != nil {
		return opts, err
	}
	if p.TopCountries < 1 {
		return opts, fmt.Errorf("top_countries must be at least 1")
	}
	if p.RollingWindow < 1 {
		return opts, fmt.Errorf("rolling_window must be at least 1")
	}
	if p.HistogramBins < 1 {
		return opts, fmt.Errorf("histogram_bins must be at least 1")
	}

	opts.CostRatio = p.CostRatio
	opts.TieMethod = tie
	opts.JoinMode = join
	opts.StrictMSRP = p.StrictMSRP
	opts.TopCountries = p.TopCountries
	opts.RollingWindow = p.RollingWindow
	opts.HistogramBins = p.HistogramBins
	return opts, nil
}

// GeneratorConfig converts the generate section.
func (c *Config) GeneratorConfig() (datagen.Config, error) {
	gen := datagen.DefaultConfig()
	g := c.Generate

	start, err := time.Parse(DateFormat, g.Start)
	if err != nil {
		return gen, fmt.Errorf("invalid start date %q: %w", g.Start, err)
	}
	end, err := time.Parse(DateFormat, g.End)
	if err != nil {
		return gen, fmt.Errorf("invalid end date %q: %w", g.End, err)
	}

	gen.Rows = g.Rows
	gen.Customers = g.Customers
	gen.Products = g.Products
	gen.Seed = g.Seed
	gen.Start = start
	gen.End = end
	gen.BadDateRate = g.BadDateRate
	gen.DuplicateRate = g.DuplicateRate
	gen.ZeroMSRPRate = g.ZeroMSRPRate
	return gen, nil
}

// DateLayouts returns the configured date layouts or the built-in ones.
func (c *Config) DateLayouts() []string {
	if len(c.Input.DateLayouts) > 0 {
		return c.Input.DateLayouts
	}
	return dataset.DefaultDateLayouts
}

// DebounceDuration returns the watch debounce as a duration.
func (c *Config) DebounceDuration() time.Duration {
	return time.Duration(c.Watch.Debounce) * time.Millisecond
}
