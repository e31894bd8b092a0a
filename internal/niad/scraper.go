package niad

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// PageStore is the cache the scraper reads pages through.
type PageStore interface {
	ResolveIndex(ctx context.Context, indexURL string, interval time.Duration) (content string, refreshed bool, err error)
	ResolvePage(ctx context.Context, pageURL string, refresh bool) (string, error)
}

type Scraper struct {
	store     PageStore
	extractor *IndexExtractor
	indexURL  string
	logger    *slog.Logger
}

func NewScraper(store PageStore, indexURL string, logger *slog.Logger) (*Scraper, error) {
	extractor, err := NewIndexExtractor(indexURL)
	if err != nil {
		return nil, fmt.Errorf("NewIndexExtractor > %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scraper{
		store:     store,
		extractor: extractor,
		indexURL:  indexURL,
		logger:    logger,
	}, nil
}

// Result is the outcome of one scrape.
type Result struct {
	Records []Record
	// IndexRefreshed is true when the index was fetched from the site in
	// this run, in which case every detail page was fetched as well.
	IndexRefreshed bool
}

// Scrape reads the index through the cache and then every detail page it
// links to, in index order. Detail pages are refetched only when the index
// itself was refreshed; otherwise their cached copies are used. The first
// failure aborts the scrape.
func (s *Scraper) Scrape(ctx context.Context, interval time.Duration) (*Result, error) {
	refs, refreshed, err := s.ScrapeIndex(ctx, interval)
	if err != nil {
		return nil, err
	}

	records, err := s.ScrapeDetails(ctx, refs, refreshed)
	if err != nil {
		return nil, err
	}
	return &Result{
		Records:        records,
		IndexRefreshed: refreshed,
	}, nil
}

// ScrapeIndex resolves the index page and extracts its term references.
func (s *Scraper) ScrapeIndex(ctx context.Context, interval time.Duration) ([]TermRef, bool, error) {
	s.logger.Info("reading the glossary index", "url", s.indexURL)
	page, refreshed, err := s.store.ResolveIndex(ctx, s.indexURL, interval)
	if err != nil {
		return nil, false, fmt.Errorf("store.ResolveIndex > %w", err)
	}
	refs, err := s.extractor.Extract(page)
	if err != nil {
		return nil, false, fmt.Errorf("extractor.Extract > %w", err)
	}
	s.logger.Info("read the glossary index", "terms", len(refs), "refreshed", refreshed)
	return refs, refreshed, nil
}

// ScrapeDetails resolves and extracts every detail page in refs. A detail
// page listed more than once is read once and kept at its first position.
func (s *Scraper) ScrapeDetails(ctx context.Context, refs []TermRef, refresh bool) ([]Record, error) {
	records := make([]Record, 0, len(refs))
	seen := make(map[string]bool, len(refs))
	for _, ref := range refs {
		if seen[ref.DetailURL] {
			s.logger.Debug("skipping a duplicated detail page", "url", ref.DetailURL, "term", ref.Term)
			continue
		}
		seen[ref.DetailURL] = true

		page, err := s.store.ResolvePage(ctx, ref.DetailURL, refresh)
		if err != nil {
			return nil, fmt.Errorf("store.ResolvePage(%s) > %w", ref.DetailURL, err)
		}
		record, err := extractDetail(page, ref.DetailURL, s.logger)
		if err != nil {
			return nil, fmt.Errorf("extractDetail(%s) > %w", ref.DetailURL, err)
		}
		records = append(records, record)
	}
	return records, nil
}
