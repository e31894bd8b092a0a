package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/afero"

	"github.com/at-ishikawa/termbase/internal/cache"
	"github.com/at-ishikawa/termbase/internal/config"
	"github.com/at-ishikawa/termbase/internal/fetcher"
	"github.com/at-ishikawa/termbase/internal/glossary"
	"github.com/at-ishikawa/termbase/internal/niad"
	"github.com/at-ishikawa/termbase/internal/pipeline"
	"github.com/at-ishikawa/termbase/internal/sheets"
)

const fetchTimeout = 30 * time.Second

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create config loader: %w", err)
	}
	return loader.Load()
}

// loadEnvFile loads secrets from a dotenv file. A missing file is not an error.
// Variables that are already set are not overridden.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Debug("no env file", "path", path)
			return nil
		}
		return fmt.Errorf("godotenv.Load(%s) > %w", path, err)
	}
	return nil
}

// newCacheStore builds the page cache on the OS filesystem, backed by a
// throttled HTTP fetcher. The returned closer releases the HTTP client.
func newCacheStore(cfg *config.Config) (*cache.Store, io.Closer) {
	httpFetcher := fetcher.NewHTTPFetcher(fetchTimeout)
	throttled := fetcher.NewThrottledFetcher(httpFetcher, cfg.NIAD.RequestsPerSecond, slog.Default())
	store := cache.NewStore(afero.NewOsFs(), cfg.Cache.Directory, throttled, cache.WithLogger(slog.Default()))
	return store, httpFetcher
}

func newRunner(cfg *config.Config, out io.Writer) (*pipeline.Runner, io.Closer, error) {
	store, closer := newCacheStore(cfg)
	scraper, err := niad.NewScraper(store, cfg.NIAD.IndexURL, slog.Default())
	if err != nil {
		_ = closer.Close()
		return nil, nil, fmt.Errorf("niad.NewScraper > %w", err)
	}
	return &pipeline.Runner{
		External: scraper,
		Internal: sheets.NewClient(cfg.Sheets, slog.Default()),
		FS:       afero.NewOsFs(),
		Config:   cfg,
		Observer: newConflictPrinter(out),
		Logger:   slog.Default(),
	}, closer, nil
}

// conflictPrinter shows every replaced translation to the user.
type conflictPrinter struct {
	out    io.Writer
	yellow *color.Color
}

func newConflictPrinter(out io.Writer) *conflictPrinter {
	return &conflictPrinter{
		out:    out,
		yellow: color.New(color.FgYellow),
	}
}

func (p *conflictPrinter) OnConflict(conflict glossary.Conflict) {
	_, _ = p.yellow.Fprintf(p.out, "conflict: %s: %q is replaced with %q\n",
		conflict.TermJA, conflict.Existing, conflict.Incoming)
}

var _ glossary.ConflictObserver = (*conflictPrinter)(nil)

func printSummary(out io.Writer, result *pipeline.Result) {
	green := color.New(color.FgGreen)
	_, _ = green.Fprintf(out, "External glossary: %d terms -> %s\n", result.ExternalTerms, result.ExternalPath)
	if result.InternalPath != "" {
		_, _ = green.Fprintf(out, "Internal glossary: %d terms -> %s\n", result.InternalTerms, result.InternalPath)
	}
	if result.MergedPath != "" {
		_, _ = green.Fprintf(out, "Merged glossary:   %d terms, %d conflicts -> %s\n", result.MergedRows, result.Conflicts, result.MergedPath)
	}
}
