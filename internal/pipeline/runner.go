// Package pipeline runs the scrape, fetch and merge steps in order and writes
// each intermediate glossary to the output directory.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/at-ishikawa/termbase/internal/config"
	"github.com/at-ishikawa/termbase/internal/glossary"
	"github.com/at-ishikawa/termbase/internal/niad"
)

// ExternalSource scrapes the public glossary.
type ExternalSource interface {
	Scrape(ctx context.Context, interval time.Duration) (*niad.Result, error)
}

// InternalSource reads the in-house glossary. A nil result means there is none.
type InternalSource interface {
	Glossary(ctx context.Context) ([][]string, error)
}

type Runner struct {
	External ExternalSource
	Internal InternalSource
	FS       afero.Fs
	Config   *config.Config
	Observer glossary.ConflictObserver
	Logger   *slog.Logger
}

type Result struct {
	ExternalTerms  int
	InternalTerms  int
	MergedRows     int
	Conflicts      int
	IndexRefreshed bool

	ExternalPath string
	// InternalPath is empty when there was no internal glossary.
	InternalPath string
	MergedPath   string

	Merged []glossary.Row
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

func (r *Runner) outputPath(name string) string {
	return filepath.Join(r.Config.Output.Directory, name)
}

// Run scrapes the external glossary, reads the internal one and merges them.
// Each glossary file is written only after its content has been produced in
// full, so a failure never leaves a later file behind.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	result, externalRows, err := r.runExternal(ctx)
	if err != nil {
		return nil, err
	}

	values, err := r.Internal.Glossary(ctx)
	if err != nil {
		return nil, fmt.Errorf("Internal.Glossary > %w", err)
	}
	internalRows := glossary.RowsOf(values)
	if internalRows != nil {
		result.InternalPath = r.outputPath(r.Config.Output.SheetsGlossary)
		if err := glossary.WriteTSV(r.FS, result.InternalPath, internalRows); err != nil {
			return nil, fmt.Errorf("glossary.WriteTSV > %w", err)
		}
		result.InternalTerms = len(internalRows) - 1
		r.logger().Info("wrote the internal glossary", "path", result.InternalPath, "terms", result.InternalTerms)
	}

	merged, conflicts := r.merge(externalRows, internalRows)
	result.MergedPath = r.outputPath(r.Config.Output.MergedGlossary)
	if err := glossary.WriteTSV(r.FS, result.MergedPath, merged); err != nil {
		return nil, fmt.Errorf("glossary.WriteTSV > %w", err)
	}
	result.Merged = merged
	result.MergedRows = len(merged)
	result.Conflicts = conflicts
	r.logger().Info("wrote the merged glossary", "path", result.MergedPath, "rows", result.MergedRows, "conflicts", conflicts)
	return result, nil
}

// RunExternal scrapes the external glossary and writes it without merging.
func (r *Runner) RunExternal(ctx context.Context) (*Result, error) {
	result, _, err := r.runExternal(ctx)
	return result, err
}

func (r *Runner) runExternal(ctx context.Context) (*Result, []glossary.Row, error) {
	scraped, err := r.External.Scrape(ctx, r.Config.NIAD.RefreshInterval())
	if err != nil {
		return nil, nil, fmt.Errorf("External.Scrape > %w", err)
	}

	rows := glossary.RecordRows(scraped.Records)
	path := r.outputPath(r.Config.Output.NIADGlossary)
	if err := glossary.WriteTSV(r.FS, path, rows); err != nil {
		return nil, nil, fmt.Errorf("glossary.WriteTSV > %w", err)
	}
	r.logger().Info("wrote the external glossary", "path", path, "terms", len(scraped.Records))

	return &Result{
		ExternalTerms:  len(scraped.Records),
		IndexRefreshed: scraped.IndexRefreshed,
		ExternalPath:   path,
	}, rows, nil
}

func (r *Runner) merge(external, internal []glossary.Row) ([]glossary.Row, int) {
	conflicts := 0
	observer := glossary.ObserverFunc(func(conflict glossary.Conflict) {
		conflicts++
		r.logger().Info("an internal translation replaces the external one",
			"term", conflict.TermJA,
			"external", conflict.Existing,
			"internal", conflict.Incoming,
		)
		if r.Observer != nil {
			r.Observer.OnConflict(conflict)
		}
	})
	merged := glossary.Merge(external, internal, r.Config.Glossary.OverwriteExternalWithInternal, observer)
	return merged, conflicts
}

// MergeFiles merges two glossary files that were written earlier. An empty
// internalPath merges the external glossary alone.
func MergeFiles(fs afero.Fs, externalPath, internalPath, outputPath string, overwriteExternal bool, observer glossary.ConflictObserver) ([]glossary.Row, error) {
	external, err := glossary.ReadTSV(fs, externalPath)
	if err != nil {
		return nil, fmt.Errorf("glossary.ReadTSV > %w", err)
	}
	var internal []glossary.Row
	if internalPath != "" {
		if internal, err = glossary.ReadTSV(fs, internalPath); err != nil {
			return nil, fmt.Errorf("glossary.ReadTSV > %w", err)
		}
		if internal == nil {
			internal = []glossary.Row{}
		}
	}

	merged := glossary.Merge(external, internal, overwriteExternal, observer)
	if err := glossary.WriteTSV(fs, outputPath, merged); err != nil {
		return nil, fmt.Errorf("glossary.WriteTSV > %w", err)
	}
	return merged, nil
}
