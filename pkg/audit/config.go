package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kaanbobac/digital-tester-twin/internal/fetch"
)

// Config holds all audit settings.
type Config struct {
	// PageBudget caps the number of pages visited per test.
	PageBudget int `yaml:"page_budget" json:"page_budget"`

	// FetchTimeout bounds each individual page fetch.
	FetchTimeout time.Duration `yaml:"fetch_timeout" json:"fetch_timeout"`

	// CrawlDelay is the pause between consecutive fetches.
	CrawlDelay time.Duration `yaml:"crawl_delay" json:"crawl_delay"`

	// LinkSample caps how many outbound links are stored per page record.
	LinkSample int `yaml:"link_sample" json:"link_sample"`

	// ScreenshotPages is how many of the first pages get a preview capture.
	ScreenshotPages int `yaml:"screenshot_pages" json:"screenshot_pages"`

	UserAgent string `yaml:"user_agent" json:"user_agent"`
	LogLevel  string `yaml:"log_level" json:"log_level"`
}

// DefaultConfig returns the standard audit settings.
func DefaultConfig() *Config {
	return &Config{
		PageBudget:      20,
		FetchTimeout:    10 * time.Second,
		CrawlDelay:      500 * time.Millisecond,
		LinkSample:      10,
		ScreenshotPages: 5,
		UserAgent:       fetch.DefaultUserAgent,
		LogLevel:        "info",
	}
}

// LoadConfig reads a config file. YAML is tried first, then JSON.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if yamlErr := yaml.Unmarshal(data, cfg); yamlErr != nil {
		if jsonErr := json.Unmarshal(data, cfg); jsonErr != nil {
			return nil, fmt.Errorf("parse config: %w", yamlErr)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.PageBudget < 1 {
		return fmt.Errorf("page_budget must be at least 1, got %d", c.PageBudget)
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("fetch_timeout must be positive, got %s", c.FetchTimeout)
	}
	if c.CrawlDelay < 0 {
		return fmt.Errorf("crawl_delay must not be negative, got %s", c.CrawlDelay)
	}
	if c.LinkSample < 0 {
		return fmt.Errorf("link_sample must not be negative, got %d", c.LinkSample)
	}
	if c.ScreenshotPages < 0 {
		return fmt.Errorf("screenshot_pages must not be negative, got %d", c.ScreenshotPages)
	}
	return nil
}
