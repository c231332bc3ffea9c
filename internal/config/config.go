// Package config defines pipeline configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) initializer to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

import "time"

// Default values for the published artifact layout. The JSON path matches
// the layout served by the static-hosting surface.
const (
	defaultTable     = "FoodReviews"
	defaultRegion    = "ap-southeast-1"
	defaultOutputDir = "data"
	defaultJSONFile  = "top_foods.json"
	defaultChartFile = "top_foods.html"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Table is the DynamoDB table holding food-review records.
	Table string `koanf:"table"`

	// Region is the AWS region of the table.
	Region string `koanf:"region"`

	// Endpoint overrides the DynamoDB endpoint (local testing).
	Endpoint string `koanf:"endpoint"`

	// ScanPageSize bounds a single scan page.
	ScanPageSize int `koanf:"scan_page_size"`

	// ScanLimit caps the total number of records fetched across pages.
	ScanLimit int `koanf:"scan_limit"`

	// FetchTimeoutMS bounds a single fetch attempt end to end.
	FetchTimeoutMS int `koanf:"fetch_timeout_ms"`

	// RetryBackoffMS is the delay before the single bounded retry.
	RetryBackoffMS int `koanf:"retry_backoff_ms"`

	// TopK is the snapshot size bound.
	TopK int `koanf:"top_k"`

	// OutputDir is the directory artifacts are published under.
	OutputDir string `koanf:"output_dir"`

	// JSONFile and ChartFile name the artifacts inside OutputDir.
	JSONFile  string `koanf:"json_file"`
	ChartFile string `koanf:"chart_file"`

	// IntervalSeconds enables daemon mode when positive; 0 runs once.
	IntervalSeconds int `koanf:"interval_seconds"`

	// MetricsAddr serves /metrics in daemon mode when set, e.g. ":9090".
	MetricsAddr string `koanf:"metrics_addr"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:       "info",
		Table:          defaultTable,
		Region:         defaultRegion,
		ScanPageSize:   100,
		ScanLimit:      5_000,
		FetchTimeoutMS: 10_000,
		RetryBackoffMS: 2_000,
		TopK:           10,
		OutputDir:      defaultOutputDir,
		JSONFile:       defaultJSONFile,
		ChartFile:      defaultChartFile,
	}
}

// FetchTimeout returns the fetch timeout as a duration.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutMS) * time.Millisecond
}

// RetryBackoff returns the retry backoff as a duration.
func (c *Config) RetryBackoff() time.Duration {
	return time.Duration(c.RetryBackoffMS) * time.Millisecond
}

// Interval returns the daemon-mode run interval; zero means run once.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}
