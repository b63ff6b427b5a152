package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/fieldscrape"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx      context.Context
	Stdout   io.Writer
	Stderr   io.Writer
	Config   *Config
	Logger   *slog.Logger
	Scraper  fieldscrape.Scraper
	Records  fieldscrape.RecordService
	Catalog  fieldscrape.ModelCatalog
	Exporter Exporter
}

// Exporter writes a cached record to disk.
type Exporter interface {
	Export(ctx context.Context, key string, format fieldscrape.ExportFormat) (string, error)
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config  string `short:"c" env:"FIELDSCRAPE_CONFIG" type:"path" help:"Path to YAML config file"`
	Verbose bool   `short:"v" help:"Enable debug logging"`

	Scrape ScrapeCmd `cmd:"" help:"Scrape a page and extract fields"`
	View   ViewCmd   `cmd:"" help:"Show a cached record"`
	Export ExportCmd `cmd:"" help:"Write a cached record to a file"`
	Models ModelsCmd `cmd:"" help:"List models available for extraction"`
	Serve  ServeCmd  `cmd:"" help:"Run the HTTP server"`
}

// ScrapeCmd is the "scrape" subcommand.
type ScrapeCmd struct {
	URL    string `arg:"" help:"Page URL"`
	Fields string `short:"f" required:"" help:"Comma separated field names"`
	Model  string `short:"m" help:"Extraction model"`
	Format string `short:"o" enum:"json,csv" default:"json" help:"Output format (json, csv)"`
}

// ViewCmd is the "view" subcommand.
type ViewCmd struct {
	Key    string `arg:"" help:"Structured record key"`
	Format string `short:"o" enum:"json,csv" default:"json" help:"Output format (json, csv)"`
}

// ExportCmd is the "export" subcommand.
type ExportCmd struct {
	Key    string `arg:"" help:"Structured record key"`
	Format string `short:"o" enum:"csv,json" default:"csv" help:"Export format (csv, json)"`
	Out    string `default:"." type:"path" help:"Output directory"`
}

// ModelsCmd is the "models" subcommand.
type ModelsCmd struct {
	Refresh bool `short:"r" help:"Rebuild the list from the model library"`
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Addr           string        `env:"FIELDSCRAPE_ADDR" help:"Listen address (overrides server.addr)"`
	SkipRefresh    bool          `help:"Do not refresh the model list at startup"`
	RefreshTimeout time.Duration `default:"2m" help:"Time limit for each model list refresh"`
}
