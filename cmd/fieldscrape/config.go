package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	fshttp "github.com/fwojciec/fieldscrape/http"
	"github.com/fwojciec/fieldscrape/rod"
	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Config defaults.
const (
	DefaultCacheDriver     = "sqlite"
	DefaultRenderer        = "http"
	DefaultContentCleaner  = "cleaner"
	DefaultProvider        = "service"
	DefaultFetchTimeout    = "60s"
	DefaultExtractTimeout  = "5m"
	DefaultCatalogSchedule = "@daily"
)

// Config is the YAML configuration file.
type Config struct {
	Cache      CacheConfig      `yaml:"cache"`
	Fetch      FetchConfig      `yaml:"fetch"`
	Extraction ExtractionConfig `yaml:"extraction"`
	Server     ServerConfig     `yaml:"server"`
	Catalog    CatalogConfig    `yaml:"catalog"`
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	Driver string `yaml:"driver" validate:"oneof=sqlite leveldb badger"`
	Path   string `yaml:"path" validate:"required"`
}

// FetchConfig controls how pages are fetched and cleaned.
type FetchConfig struct {
	Renderer  string  `yaml:"renderer" validate:"oneof=http rod auto"`
	Extractor string  `yaml:"extractor" validate:"oneof=cleaner readability trafilatura none"`
	Markdown  bool    `yaml:"markdown"`
	Timeout   string  `yaml:"timeout"`
	Retries   int     `yaml:"retries" validate:"gte=0,lte=10"`
	RateLimit float64 `yaml:"rate_limit" validate:"gte=0"`
	UserAgent string  `yaml:"user_agent"`

	Browser BrowserConfig `yaml:"browser"`

	timeout time.Duration
}

// BrowserConfig controls the Chrome process used by the rod and auto
// renderers.
type BrowserConfig struct {
	Bin       string   `yaml:"bin"`
	MaxPages  int64    `yaml:"max_pages" validate:"gte=0"`
	NoSandbox bool     `yaml:"no_sandbox"`
	Flags     []string `yaml:"flags"`
}

// LaunchOptions returns the Chrome launch settings for the browser manager.
func (c *FetchConfig) LaunchOptions() rod.LaunchOptions {
	return rod.LaunchOptions{
		Bin:       c.Browser.Bin,
		UserAgent: c.UserAgent,
		NoSandbox: c.Browser.NoSandbox,
		Flags:     c.Browser.Flags,
	}
}

// ExtractionConfig selects the extraction backend.
type ExtractionConfig struct {
	Provider     string `yaml:"provider" validate:"oneof=service openai ollama gemini anthropic"`
	Endpoint     string `yaml:"endpoint" validate:"omitempty,url"`
	DefaultModel string `yaml:"default_model"`
	Timeout      string `yaml:"timeout"`

	timeout time.Duration
}

// ServerConfig configures the serve command.
type ServerConfig struct {
	Addr string `yaml:"addr" validate:"required"`
}

// CatalogConfig configures the model catalog.
type CatalogConfig struct {
	URL      string `yaml:"url" validate:"omitempty,url"`
	Schedule string `yaml:"schedule" validate:"required"`
}

// DefaultConfig returns a configuration with every default filled in.
func DefaultConfig() *Config {
	cfg := &Config{}
	if err := cfg.normalize(); err != nil {
		panic(err)
	}
	return cfg
}

// LoadConfig reads the YAML file at path. An empty path yields the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, err
		}
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FetchTimeout returns the parsed fetch timeout.
func (c *Config) FetchTimeout() time.Duration { return c.Fetch.timeout }

// ExtractTimeout returns the parsed extraction timeout.
func (c *Config) ExtractTimeout() time.Duration { return c.Extraction.timeout }

func (c *Config) normalize() error {
	if c.Cache.Driver == "" {
		c.Cache.Driver = DefaultCacheDriver
	}
	if c.Cache.Path == "" {
		c.Cache.Path = defaultCachePath(c.Cache.Driver)
	}
	if c.Fetch.Renderer == "" {
		c.Fetch.Renderer = DefaultRenderer
	}
	if c.Fetch.Extractor == "" {
		c.Fetch.Extractor = DefaultContentCleaner
	}
	if c.Fetch.Browser.MaxPages == 0 {
		c.Fetch.Browser.MaxPages = rod.DefaultMaxPages
	}
	if c.Fetch.Timeout == "" {
		c.Fetch.Timeout = DefaultFetchTimeout
	}
	if c.Extraction.Provider == "" {
		c.Extraction.Provider = DefaultProvider
	}
	if c.Extraction.Timeout == "" {
		c.Extraction.Timeout = DefaultExtractTimeout
	}
	if c.Server.Addr == "" {
		c.Server.Addr = fshttp.DefaultAddr
	}
	if c.Catalog.Schedule == "" {
		c.Catalog.Schedule = DefaultCatalogSchedule
	}

	if err := validator.New().Struct(c); err != nil {
		return err
	}

	var err error
	c.Fetch.timeout, err = parsePositiveDuration(c.Fetch.Timeout)
	if err != nil {
		return fmt.Errorf("fetch.timeout: %w", err)
	}
	c.Extraction.timeout, err = parsePositiveDuration(c.Extraction.Timeout)
	if err != nil {
		return fmt.Errorf("extraction.timeout: %w", err)
	}
	if _, err := cron.ParseStandard(c.Catalog.Schedule); err != nil {
		return fmt.Errorf("catalog.schedule: %w", err)
	}
	return nil
}

func parsePositiveDuration(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, errors.New("must be positive")
	}
	return d, nil
}
