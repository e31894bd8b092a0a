package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/at-ishikawa/termbase/internal/config"
	"github.com/at-ishikawa/termbase/internal/database"
	"github.com/at-ishikawa/termbase/internal/glossary"
	"github.com/at-ishikawa/termbase/internal/pdf"
)

// Priority decides which glossary wins when both translate the same term.
type Priority string

const (
	PriorityInternal Priority = "internal"
	PriorityExternal Priority = "external"
)

var (
	_             pflag.Value = (*Priority)(nil)
	allPriorities             = []Priority{PriorityInternal, PriorityExternal}
)

func (p *Priority) Set(val string) error {
	for _, priority := range allPriorities {
		if val == string(priority) {
			*p = priority
			return nil
		}
	}
	return fmt.Errorf("invalid priority %q, valid values are %v", val, allPriorities)
}

func (p Priority) String() string {
	return string(p)
}

func (p *Priority) Type() string {
	return "Priority"
}

// OverwriteExternal reports whether internal translations replace external ones.
func (p Priority) OverwriteExternal() bool {
	return p == PriorityInternal
}

type buildOptions struct {
	priority Priority
	pdf      bool
	yaml     bool
	syncDB   bool
}

func newBuildCommand() *cobra.Command {
	opts := buildOptions{priority: PriorityInternal}

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Scrape the external glossary, read the internal one and merge them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("priority") {
				cfg.Glossary.OverwriteExternalWithInternal = opts.priority.OverwriteExternal()
			}

			runner, closer, err := newRunner(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = closer.Close() }()

			ctx := cmd.Context()
			result, err := runner.Run(ctx)
			if err != nil {
				return fmt.Errorf("runner.Run > %w", err)
			}
			printSummary(cmd.OutOrStdout(), result)
			return newExporter(cmd.OutOrStdout()).export(ctx, cfg, opts, result.Merged)
		},
	}

	flags := cmd.Flags()
	flags.Var(&opts.priority, "priority", fmt.Sprintf("Glossary that wins on conflicting translations. Possible values are %v. Overrides glossary.overwrite_external_with_internal", allPriorities))
	flags.BoolVar(&opts.pdf, "pdf", false, "Also write the merged glossary as a PDF")
	flags.BoolVar(&opts.yaml, "yaml", false, "Also write the merged glossary as YAML")
	flags.BoolVar(&opts.syncDB, "sync-db", false, "Upsert the merged glossary into the database")
	return cmd
}

// exporter writes the merged glossary to the optional sinks.
type exporter struct {
	fs             afero.Fs
	out            io.Writer
	openRepository func(ctx context.Context, cfg config.DatabaseConfig) (glossary.TermRepository, io.Closer, error)
}

func newExporter(out io.Writer) *exporter {
	return &exporter{
		fs:             afero.NewOsFs(),
		out:            out,
		openRepository: openDBRepository,
	}
}

// openDBRepository connects to the database and creates the glossary table when missing.
func openDBRepository(ctx context.Context, cfg config.DatabaseConfig) (glossary.TermRepository, io.Closer, error) {
	db, err := database.Open(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database.Open > %w", err)
	}
	if err := database.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("database.Migrate > %w", err)
	}
	return glossary.NewDBTermRepository(db), db, nil
}

func (e *exporter) export(ctx context.Context, cfg *config.Config, opts buildOptions, rows []glossary.Row) error {
	base := strings.TrimSuffix(cfg.Output.MergedGlossary, filepath.Ext(cfg.Output.MergedGlossary))

	if opts.yaml {
		path := filepath.Join(cfg.Output.Directory, base+".yaml")
		if err := glossary.NewYAMLSink(e.fs, path).WriteAll(rows); err != nil {
			return fmt.Errorf("YAMLSink.WriteAll > %w", err)
		}
		fmt.Fprintf(e.out, "YAML glossary: %s\n", path)
	}

	mergedRows := make([]glossary.MergedRow, 0, len(rows))
	for _, row := range rows {
		mergedRows = append(mergedRows, glossary.MergedRowOf(row))
	}

	if opts.pdf {
		values := make([][]string, 0, len(mergedRows))
		for _, row := range mergedRows {
			values = append(values, []string{row.SourceTerm, row.TargetTerm})
		}
		path, err := pdf.WriteGlossary(filepath.Join(cfg.Output.Directory, base+".md"), "Glossary", values)
		if err != nil {
			return fmt.Errorf("pdf.WriteGlossary > %w", err)
		}
		fmt.Fprintf(e.out, "PDF glossary: %s\n", path)
	}

	if opts.syncDB {
		repo, closer, err := e.openRepository(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer func() { _ = closer.Close() }()

		if err := repo.UpsertAll(ctx, mergedRows); err != nil {
			return fmt.Errorf("TermRepository.UpsertAll > %w", err)
		}
		fmt.Fprintf(e.out, "Synced %d terms to the database\n", len(mergedRows))
	}
	return nil
}
