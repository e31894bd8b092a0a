// Package cache keeps local copies of the glossary site's pages so that the
// site is scraped at most once per refresh interval.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/at-ishikawa/termbase/internal/fetcher"
)

const (
	IndexFileName     = "niad_glossary_index.html"
	TimestampFileName = "niad_glossary_index_timestamp.json"
	TermsDirName      = "niad_terms"

	// TimestampLayout is YYYYMMDDHHMMSS: fixed width and lexicographically sortable.
	TimestampLayout = "20060102150405"
)

// Clock returns the current wall-clock time.
type Clock func() time.Time

// Timestamp is the on-disk record of the last index fetch.
type Timestamp struct {
	LastIndexGet string `json:"last_index_get"`
}

type Store struct {
	fs      afero.Fs
	rootDir string
	fetcher fetcher.Fetcher
	now     Clock
	logger  *slog.Logger
}

type Option func(*Store)

func WithClock(clock Clock) Option {
	return func(s *Store) {
		s.now = clock
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

func NewStore(fs afero.Fs, rootDir string, f fetcher.Fetcher, opts ...Option) *Store {
	s := &Store{
		fs:      fs,
		rootDir: rootDir,
		fetcher: f,
		now:     time.Now,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) indexPath() string {
	return filepath.Join(s.rootDir, IndexFileName)
}

func (s *Store) timestampPath() string {
	return filepath.Join(s.rootDir, TimestampFileName)
}

func (s *Store) termsDir() string {
	return filepath.Join(s.rootDir, TermsDirName)
}

func (s *Store) pagePath(pageID string) string {
	return filepath.Join(s.termsDir(), pageID+".html")
}

// PageID derives the cache key of a detail page from the last non-empty
// segment of its URL path.
func PageID(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("url.Parse(%s) > %w", rawURL, err)
	}
	segments := strings.Split(u.Path, "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if segments[i] != "" && segments[i] != "." && segments[i] != ".." {
			return segments[i], nil
		}
	}
	return "", fmt.Errorf("no page id in the path of %s", rawURL)
}

// ResolveIndex returns the index page, fetching it when there is no cached
// copy or the cached copy is at least interval old. refreshed reports whether
// the page was fetched during this call.
func (s *Store) ResolveIndex(ctx context.Context, indexURL string, interval time.Duration) (content string, refreshed bool, err error) {
	fetchedAt, cached, err := s.cachedIndex()
	if err != nil {
		return "", false, err
	}

	switch {
	case !cached:
		s.logger.Info("no cached index page, fetching from the site", "url", indexURL)
	case s.now().Sub(fetchedAt) < interval:
		s.logger.Info("using the cached index page", "fetched_at", fetchedAt, "path", s.indexPath())
		contents, err := afero.ReadFile(s.fs, s.indexPath())
		if err != nil {
			return "", false, fmt.Errorf("afero.ReadFile(%s) > %w", s.indexPath(), err)
		}
		return string(contents), false, nil
	default:
		s.logger.Info("cached index page is stale, fetching from the site", "fetched_at", fetchedAt, "url", indexURL)
	}

	content, err = s.fetcher.Fetch(ctx, indexURL)
	if err != nil {
		return "", false, fmt.Errorf("fetcher.Fetch(%s) > %w", indexURL, err)
	}
	if err := s.writeFile(s.indexPath(), content); err != nil {
		return "", false, err
	}
	if err := s.writeTimestamp(s.now()); err != nil {
		return "", false, err
	}
	return content, true, nil
}

// ResolvePage returns a detail page. With refresh unset the cached copy is
// used as-is whenever it exists; its age is not checked.
func (s *Store) ResolvePage(ctx context.Context, pageURL string, refresh bool) (string, error) {
	pageID, err := PageID(pageURL)
	if err != nil {
		return "", fmt.Errorf("PageID > %w", err)
	}
	path := s.pagePath(pageID)

	if !refresh {
		contents, err := afero.ReadFile(s.fs, path)
		if err == nil {
			s.logger.Debug("using the cached detail page", "url", pageURL, "path", path)
			return string(contents), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("afero.ReadFile(%s) > %w", path, err)
		}
		s.logger.Info("no cached detail page, fetching from the site", "url", pageURL)
	}

	content, err := s.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return "", fmt.Errorf("fetcher.Fetch(%s) > %w", pageURL, err)
	}
	if err := s.writeFile(path, content); err != nil {
		return "", err
	}
	return content, nil
}

// cachedIndex reports when the cached index was fetched. Both the artifact
// and its timestamp record have to exist for the index to count as cached.
func (s *Store) cachedIndex() (time.Time, bool, error) {
	fetchedAt, ok := s.lastIndexGet()
	if !ok {
		return time.Time{}, false, nil
	}
	exists, err := afero.Exists(s.fs, s.indexPath())
	if err != nil {
		return time.Time{}, false, fmt.Errorf("afero.Exists(%s) > %w", s.indexPath(), err)
	}
	return fetchedAt, exists, nil
}

func (s *Store) lastIndexGet() (time.Time, bool) {
	contents, err := afero.ReadFile(s.fs, s.timestampPath())
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("failed to read the index timestamp", "path", s.timestampPath(), "error", err)
		}
		return time.Time{}, false
	}

	var timestamp Timestamp
	if err := json.Unmarshal(contents, &timestamp); err != nil {
		s.logger.Warn("malformed index timestamp, treating the cache as absent", "path", s.timestampPath(), "error", err)
		return time.Time{}, false
	}
	fetchedAt, err := time.ParseInLocation(TimestampLayout, timestamp.LastIndexGet, time.Local)
	if err != nil {
		s.logger.Warn("malformed index timestamp, treating the cache as absent", "path", s.timestampPath(), "error", err)
		return time.Time{}, false
	}
	return fetchedAt, true
}

func (s *Store) writeTimestamp(fetchedAt time.Time) error {
	contents, err := json.MarshalIndent(Timestamp{
		LastIndexGet: fetchedAt.In(time.Local).Format(TimestampLayout),
	}, "", "    ")
	if err != nil {
		return fmt.Errorf("json.MarshalIndent > %w", err)
	}
	return s.writeFile(s.timestampPath(), string(contents))
}

func (s *Store) writeFile(path, content string) error {
	if err := s.fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("fs.MkdirAll(%s) > %w", filepath.Dir(path), err)
	}
	if err := afero.WriteFile(s.fs, path, []byte(content), 0644); err != nil {
		return fmt.Errorf("afero.WriteFile(%s) > %w", path, err)
	}
	return nil
}

// Status summarizes what is currently cached.
type Status struct {
	IndexCached bool
	FetchedAt   time.Time
	Pages       int
}

func (s *Store) Status() (Status, error) {
	var status Status
	exists, err := afero.Exists(s.fs, s.indexPath())
	if err != nil {
		return status, fmt.Errorf("afero.Exists(%s) > %w", s.indexPath(), err)
	}
	status.IndexCached = exists
	if fetchedAt, ok := s.lastIndexGet(); ok {
		status.FetchedAt = fetchedAt
	}

	entries, err := afero.ReadDir(s.fs, s.termsDir())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return status, nil
		}
		return status, fmt.Errorf("afero.ReadDir(%s) > %w", s.termsDir(), err)
	}
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".html" {
			status.Pages++
		}
	}
	return status, nil
}

// Clear removes every cached artifact. Other files in the cache directory are
// left alone since the directory may be shared.
func (s *Store) Clear() error {
	for _, path := range []string{s.indexPath(), s.timestampPath(), s.termsDir()} {
		if err := s.fs.RemoveAll(path); err != nil {
			return fmt.Errorf("fs.RemoveAll(%s) > %w", path, err)
		}
	}
	return nil
}
