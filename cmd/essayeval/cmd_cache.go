package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/BuseDenizH/EssayEval-NLP/internal/cache"
	"github.com/BuseDenizH/EssayEval-NLP/internal/projectconfig"
)

func newCacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the scoring response cache",
		Long: `Manage the scoring response cache.

When scoring.cache_dir is configured, responses in which every model produced
an assessment are stored there, keyed by essay text and model selection.`,
	}

	cmd.AddCommand(newCacheClearCommand())

	return cmd
}

func newCacheClearCommand() *cobra.Command {
	var cacheDir string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear the scoring response cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cacheDir == "" {
				cfg, err := projectconfig.Load(".")
				if err != nil {
					return err
				}
				cacheDir = cfg.Scoring.CacheDir
			}
			if cacheDir == "" {
				return errors.New("no cache directory: set scoring.cache_dir or pass --cache-dir")
			}

			absDir, err := filepath.Abs(cacheDir)
			if err != nil {
				return fmt.Errorf("resolving cache directory: %w", err)
			}
			if err := cache.New(absDir).Clear(); err != nil {
				return fmt.Errorf("clearing cache: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Cache cleared: %s\n", absDir) //nolint:errcheck
			return nil
		},
	}

	cmd.Flags().StringVar(&cacheDir, "cache-dir", "", "Cache directory to clear (default: scoring.cache_dir)")

	return cmd
}
