package commands

import (
	"cursedcompass-backend/internal/components/serviceutil"
	"cursedcompass-backend/internal/components/telemetry"
	"cursedcompass-backend/internal/scrapers/ipms"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(parseCmd)
}

var parseCmd = &cobra.Command{
	Use:   "parse <path/to/response.html>",
	Short: "Runs the room parser on a saved availability response.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()

		body, err := os.ReadFile(args[0])
		if err != nil {
			serviceutil.Fatal("failed to read response", err)
		}

		parser := ipms.NewDefaultParser(cfg.Hotel.IdPrefix, telemetry.SlogAPI{})
		result := parser.Parse(body)

		strategy := result.Strategy
		if strategy == "" {
			strategy = "none"
		}
		fmt.Printf("%s: %d bytes, %d rooms parsed with strategy %s\n", args[0], len(body), len(result.Rooms), strategy)

		renderRooms(os.Stdout, "Parsed", result.Rooms)
		renderMarkers(os.Stdout, scanMarkers(string(body)))
	},
}
