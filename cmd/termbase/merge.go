package main

import (
	"fmt"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/at-ishikawa/termbase/internal/pipeline"
)

func newMergeCommand() *cobra.Command {
	var output string
	priority := PriorityInternal

	cmd := &cobra.Command{
		Use:   "merge <external.tsv> [internal.tsv]",
		Short: "Merge glossary files written by an earlier build",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			overwrite := cfg.Glossary.OverwriteExternalWithInternal
			if cmd.Flags().Changed("priority") {
				overwrite = priority.OverwriteExternal()
			}
			if output == "" {
				output = filepath.Join(cfg.Output.Directory, cfg.Output.MergedGlossary)
			}

			var internalPath string
			if len(args) == 2 {
				internalPath = args[1]
			}
			merged, err := pipeline.MergeFiles(afero.NewOsFs(), args[0], internalPath, output, overwrite, newConflictPrinter(cmd.ErrOrStderr()))
			if err != nil {
				return fmt.Errorf("pipeline.MergeFiles > %w", err)
			}
			_, _ = color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "Merged glossary: %d terms -> %s\n", len(merged), output)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&output, "output", "o", "", "Path of the merged glossary. Defaults to the configured output file")
	flags.Var(&priority, "priority", fmt.Sprintf("Glossary that wins on conflicting translations. Possible values are %v", allPriorities))
	return cmd
}
