package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

// Config holds crawler configuration. It is built once at process start and
// passed into each component; there is no ambient global state.
type Config struct {
	BaseURL         string
	Delay           time.Duration // applied before each detail fetch
	Timeout         time.Duration
	OutputFile      string
	OutputFormat    string // csv, json, or dual
	UserAgent       string
	MetricsAddr     string
	DetailCacheSize int
	Verbose         bool
}

// DefaultConfig returns conservative defaults for the demo target.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:         "https://books.toscrape.com/",
		Delay:           100 * time.Millisecond,
		Timeout:         30 * time.Second,
		OutputFile:      "data/books_raw.csv",
		OutputFormat:    "csv",
		UserAgent:       "Mozilla/5.0 (compatible; BooksETL/1.0; +https://github.com/aluiziolira/go-books-etl)",
		MetricsAddr:     "",
		DetailCacheSize: 256,
		Verbose:         false,
	}
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL cannot be empty")
	}

	parsedURL, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("base URL must include a host")
	}

	if c.Delay < 0 {
		return fmt.Errorf("delay cannot be negative")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.OutputFile == "" {
		return fmt.Errorf("output file cannot be empty")
	}
	if c.OutputFormat != "csv" && c.OutputFormat != "json" && c.OutputFormat != "dual" {
		return fmt.Errorf("output format must be csv, json, or dual")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}
	if c.DetailCacheSize <= 0 {
		return fmt.Errorf("detail cache size must be positive")
	}

	return nil
}

// EnvInt reads an integer environment variable. The second return reports
// whether the variable was set.
func EnvInt(name string) (int, bool, error) {
	raw, ok := os.LookupEnv(name)
	if !ok || raw == "" {
		return 0, false, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", name, err)
	}
	return value, true, nil
}

// EnvString reads a string environment variable.
func EnvString(name string) (string, bool) {
	raw, ok := os.LookupEnv(name)
	if !ok || raw == "" {
		return "", false
	}
	return raw, true
}
