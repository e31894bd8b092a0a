package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCacheCommand() *cobra.Command {
	cacheCommand := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the page cache",
	}

	cacheCommand.AddCommand(
		&cobra.Command{
			Use:   "status",
			Short: "Show what is cached",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				store, closer := newCacheStore(cfg)
				defer func() { _ = closer.Close() }()

				status, err := store.Status()
				if err != nil {
					return fmt.Errorf("store.Status > %w", err)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Cache directory: %s\n", cfg.Cache.Directory)
				if !status.IndexCached {
					fmt.Fprintln(out, "Index: not cached")
				} else if status.FetchedAt.IsZero() {
					fmt.Fprintln(out, "Index: cached, fetch time unknown")
				} else {
					fmt.Fprintf(out, "Index: cached at %s\n", status.FetchedAt.Format("2006-01-02 15:04:05"))
				}
				fmt.Fprintf(out, "Detail pages: %d\n", status.Pages)
				return nil
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Delete every cached page",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				store, closer := newCacheStore(cfg)
				defer func() { _ = closer.Close() }()

				if err := store.Clear(); err != nil {
					return fmt.Errorf("store.Clear > %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s\n", cfg.Cache.Directory)
				return nil
			},
		},
	)
	return cacheCommand
}
