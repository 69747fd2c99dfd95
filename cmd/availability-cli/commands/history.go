package commands

import (
	"cursedcompass-backend/internal/bootstrap"
	"cursedcompass-backend/internal/components/serviceutil"
	"cursedcompass-backend/internal/history"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	historyLimit *int
	pruneOlder   *time.Duration
)

func init() {
	historyLimit = historyCmd.Flags().Int("limit", history.DefaultListLimit, "Number of checks to list.")
	pruneOlder = historyCmd.Flags().Duration("prune-older-than", 0, "Delete checks older than this before listing (ex. 720h).")
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history [--limit <n>] [--prune-older-than <duration>]",
	Short: "Lists recorded availability checks, most recent first.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()

		store, database, err := bootstrap.OpenHistory(cfg)
		if err != nil {
			serviceutil.Fatal("failed to open history", err)
		}
		defer database.Close()

		if *pruneOlder > 0 {
			err = store.Prune(cmd.Context(), time.Now().Add(-*pruneOlder))
			if err != nil {
				serviceutil.Fatal("failed to prune history", err)
			}
		}

		records, err := store.List(cmd.Context(), *historyLimit)
		if err != nil {
			serviceutil.Fatal("failed to list history", err)
		}
		if len(records) == 0 {
			fmt.Println("no checks recorded")
			return
		}
		renderHistory(os.Stdout, records)
	},
}
