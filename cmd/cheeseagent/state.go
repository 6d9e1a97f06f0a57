package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"CheeseAgent/internal/config"
	"CheeseAgent/internal/infrastructure/storage"
	"CheeseAgent/internal/logging"
)

func newStateCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Show the pending-upload queue and running statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load(*configPath)

			logger, closer, err := logging.New(cfg.Logging.Level, "")
			if err != nil {
				return err
			}
			defer closer.Close()

			repo := storage.NewFileRepository(cfg.Agent.StateFile, logger)
			state := repo.Load()

			out := cmd.OutOrStdout()
			today := time.Now().Format("2006-01-02")
			fmt.Fprintf(out, "Total images scraped: %d\n", state.TotalImagesScraped)
			fmt.Fprintf(out, "Scraped today:        %d\n", state.DailyStats[today].Scraped)
			fmt.Fprintf(out, "Pending uploads:      %d\n", len(state.PendingUploads))
			if state.LastRun != "" {
				fmt.Fprintf(out, "Last run:             %s\n", state.LastRun)
			}

			if len(state.PendingUploads) == 0 {
				return nil
			}

			rows := make([][]string, 0, len(state.PendingUploads))
			for i, entry := range state.PendingUploads {
				rows = append(rows, []string{
					strconv.Itoa(i + 1),
					entry.PublicID,
					entry.Tags,
					entry.FilePath,
				})
			}

			fmt.Fprintln(out, renderTable([]string{"#", "PUBLIC ID", "TAGS", "FILE"}, rows))
			return nil
		},
	}
}
