package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newFetchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Scrape the external glossary only",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			runner, closer, err := newRunner(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = closer.Close() }()

			result, err := runner.RunExternal(cmd.Context())
			if err != nil {
				return fmt.Errorf("runner.RunExternal > %w", err)
			}
			printSummary(cmd.OutOrStdout(), result)
			return nil
		},
	}
}
