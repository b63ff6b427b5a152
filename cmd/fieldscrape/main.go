package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/fieldscrape"
	"github.com/fwojciec/fieldscrape/anthropic"
	"github.com/fwojciec/fieldscrape/badger"
	"github.com/fwojciec/fieldscrape/fs"
	"github.com/fwojciec/fieldscrape/gemini"
	"github.com/fwojciec/fieldscrape/goquery"
	"github.com/fwojciec/fieldscrape/htmltomarkdown"
	fshttp "github.com/fwojciec/fieldscrape/http"
	"github.com/fwojciec/fieldscrape/leveldb"
	"github.com/fwojciec/fieldscrape/openai"
	"github.com/fwojciec/fieldscrape/readability"
	"github.com/fwojciec/fieldscrape/rod"
	"github.com/fwojciec/fieldscrape/scrape"
	fsslog "github.com/fwojciec/fieldscrape/slog"
	"github.com/fwojciec/fieldscrape/sqlite"
	"github.com/fwojciec/fieldscrape/trafilatura"
	"google.golang.org/genai"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Cache shared by every service. Opened by Run().
	Cache fieldscrape.Cache

	// Fetcher used by the pipeline, if the command needs one.
	Fetcher fieldscrape.Fetcher

	// Services for end-to-end testing.
	Scraper fieldscrape.Scraper
	Records fieldscrape.RecordService
	Catalog fieldscrape.ModelCatalog
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	var errs []error
	if m.Fetcher != nil {
		errs = append(errs, m.Fetcher.Close())
	}
	if m.Cache != nil {
		errs = append(errs, m.Cache.Close())
	}
	return errors.Join(errs...)
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("fieldscrape"),
		kong.Description("Scrape web pages into structured records"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'fieldscrape --help' to see available commands")
	}

	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	cfg, err := LoadConfig(cli.Config)
	if err != nil {
		fmt.Fprintln(stderr, "Hint: Set FIELDSCRAPE_CONFIG or --config to use a different config file")
		return fmt.Errorf("failed to load config %q: %w", cli.Config, err)
	}
	deps.Config = cfg
	deps.Logger = newLogger(stderr, cli.Verbose)

	cache, err := openCache(cfg.Cache)
	if err != nil {
		return fmt.Errorf("failed to open %s cache at %q: %w", cfg.Cache.Driver, cfg.Cache.Path, err)
	}
	m.Cache = fsslog.NewLoggingCache(cache, deps.Logger)
	defer m.Close()

	records := &scrape.Records{Cache: m.Cache}
	m.Records = records
	m.Catalog = fsslog.NewLoggingModelCatalog(&scrape.Catalog{
		Fetcher: fsslog.NewLoggingFetcher(newStaticFetcher(cfg), deps.Logger),
		Cache:   m.Cache,
		Parse:   goquery.ParseModelNames,
		URL:     cfg.Catalog.URL,
	}, deps.Logger)

	deps.Records = m.Records
	deps.Catalog = m.Catalog
	deps.Exporter = fs.NewExporter(records, cli.Export.Out)

	cmd := strings.Fields(kongCtx.Command())[0]
	if cmd == "scrape" || cmd == "serve" {
		if err := m.wirePipeline(ctx, cfg, deps.Logger, stderr); err != nil {
			return err
		}
		deps.Scraper = m.Scraper
	}

	return kongCtx.Run(deps)
}

// wirePipeline builds the fetch, extract, and cache pipeline.
func (m *Main) wirePipeline(ctx context.Context, cfg *Config, logger *slog.Logger, stderr io.Writer) error {
	cleaner := newContentExtractor(cfg.Fetch.Extractor)

	fetcher, err := newFetcher(cfg, cleaner, logger)
	if err != nil {
		fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed for the rod and auto renderers")
		return fmt.Errorf("failed to start browser: %w", err)
	}
	m.Fetcher = fetcher

	loader := &scrape.ContentLoader{
		Fetcher:   fetcher,
		Extractor: cleaner,
	}
	if cfg.Fetch.Markdown {
		loader.Converter = htmltomarkdown.NewConverter()
	}

	extractor, err := newFieldExtractor(ctx, cfg.Extraction)
	if err != nil {
		fmt.Fprintln(stderr, "Hint: Check the API key environment variable for the configured provider")
		return fmt.Errorf("failed to create %s extractor: %w", cfg.Extraction.Provider, err)
	}

	m.Scraper = fsslog.NewLoggingScraper(&scrape.Pipeline{
		Content:        fsslog.NewLoggingContentFetcher(loader, logger),
		Cache:          m.Cache,
		Extractor:      fsslog.NewLoggingFieldExtractor(extractor, logger),
		Keys:           &scrape.KeyGenerator{},
		DefaultModel:   defaultModel(cfg.Extraction),
		FetchTimeout:   cfg.FetchTimeout(),
		ExtractTimeout: cfg.ExtractTimeout(),
		Progress:       fsslog.NewProgressLogger(logger),
	}, logger)
	return nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func openCache(cfg CacheConfig) (fieldscrape.Cache, error) {
	switch cfg.Driver {
	case "leveldb":
		return leveldb.Open(cfg.Path)
	case "badger":
		return badger.Open(cfg.Path)
	default:
		db := sqlite.NewDB(cfg.Path)
		if err := db.Open(); err != nil {
			return nil, err
		}
		return sqlite.NewCache(db), nil
	}
}

func newStaticFetcher(cfg *Config) *fshttp.Fetcher {
	opts := []fshttp.Option{fshttp.WithTimeout(cfg.FetchTimeout())}
	if cfg.Fetch.UserAgent != "" {
		opts = append(opts, fshttp.WithUserAgent(cfg.Fetch.UserAgent))
	}
	return fshttp.NewFetcher(opts...)
}

// newFetcher returns the configured renderer wrapped in logging, then the
// optional retry and rate limit policies.
func newFetcher(cfg *Config, compare fieldscrape.Extractor, logger *slog.Logger) (fieldscrape.Fetcher, error) {
	var fetcher fieldscrape.Fetcher
	switch cfg.Fetch.Renderer {
	case "rod":
		f, err := newBrowserFetcher(cfg)
		if err != nil {
			return nil, err
		}
		fetcher = f
	case "auto":
		rendered, err := newBrowserFetcher(cfg)
		if err != nil {
			return nil, err
		}
		if compare == nil {
			compare = goquery.NewCleaner()
		}
		fetcher = &scrape.AutoFetcher{
			Static:    newStaticFetcher(cfg),
			Rendered:  rendered,
			Extractor: compare,
		}
	default:
		fetcher = newStaticFetcher(cfg)
	}

	fetcher = fsslog.NewLoggingFetcher(fetcher, logger)

	if cfg.Fetch.Retries > 0 {
		fetcher = &scrape.RetryFetcher{
			Fetcher: fetcher,
			Delays:  scrape.RetryDelays(cfg.Fetch.Retries),
			Logger: func(format string, args ...any) {
				logger.Warn(fmt.Sprintf(format, args...))
			},
		}
	}
	if cfg.Fetch.RateLimit > 0 {
		fetcher = &scrape.LimitedFetcher{
			Fetcher: fetcher,
			Limiter: scrape.NewDomainLimiter(cfg.Fetch.RateLimit),
		}
	}
	return fetcher, nil
}

func newBrowserFetcher(cfg *Config) (*rod.Fetcher, error) {
	manager, err := rod.NewBrowserManager(
		rod.WithMaxPages(cfg.Fetch.Browser.MaxPages),
		rod.WithLaunchOptions(cfg.Fetch.LaunchOptions()),
	)
	if err != nil {
		return nil, err
	}
	return rod.NewFetcherWithManager(manager, rod.WithFetchTimeout(cfg.FetchTimeout()))
}

// newContentExtractor returns nil for "none" so the fetched HTML is kept.
func newContentExtractor(name string) fieldscrape.Extractor {
	switch name {
	case "none":
		return nil
	case "readability":
		return readability.NewExtractor()
	case "trafilatura":
		return trafilatura.NewExtractor()
	default:
		return goquery.NewCleaner()
	}
}

func newFieldExtractor(ctx context.Context, cfg ExtractionConfig) (fieldscrape.FieldExtractor, error) {
	switch cfg.Provider {
	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY not set")
		}
		return openai.NewFieldExtractor(openai.NewClient(apiKey, cfg.Endpoint)), nil
	case "ollama":
		endpoint := cfg.Endpoint
		if endpoint == "" {
			endpoint = openai.OllamaBaseURL
		}
		return openai.NewFieldExtractor(openai.NewClient("ollama", endpoint)), nil
	case "gemini":
		apiKey := os.Getenv("GEMINI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY not set. Get a key at https://aistudio.google.com/apikey")
		}
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, err
		}
		return gemini.NewFieldExtractor(client), nil
	case "anthropic":
		apiKey := os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY not set")
		}
		return anthropic.NewFieldExtractor(anthropic.NewClient(apiKey)), nil
	default:
		opts := []fshttp.ExtractorOption{fshttp.WithExtractTimeout(cfg.timeout)}
		if cfg.Endpoint != "" {
			opts = append(opts, fshttp.WithEndpoint(cfg.Endpoint))
		}
		return fshttp.NewFieldExtractor(opts...), nil
	}
}

// defaultModel picks the configured model, or the provider's own default.
func defaultModel(cfg ExtractionConfig) string {
	if cfg.DefaultModel != "" {
		return cfg.DefaultModel
	}
	switch cfg.Provider {
	case "gemini":
		return gemini.DefaultModel
	case "anthropic":
		return anthropic.DefaultModel
	default:
		return fieldscrape.DefaultModel
	}
}

func defaultCachePath(driver string) string {
	name := "cache.db"
	if driver != DefaultCacheDriver {
		name = driver
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	dir := filepath.Join(home, ".fieldscrape")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, name)
}
