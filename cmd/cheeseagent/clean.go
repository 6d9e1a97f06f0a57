package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"CheeseAgent/internal/config"
)

func newCleanCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove downloaded image files from the output directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load(*configPath)

			matches, err := filepath.Glob(filepath.Join(cfg.Scraper.OutputDir, "*.jpg"))
			if err != nil {
				return fmt.Errorf("list image files: %w", err)
			}

			removed := 0
			for _, path := range matches {
				if err := os.Remove(path); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: cannot remove %s: %v\n", path, err)
					continue
				}
				removed++
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d image files from %s\n", removed, cfg.Scraper.OutputDir)
			return nil
		},
	}
}
