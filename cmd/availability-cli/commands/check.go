package commands

import (
	"cursedcompass-backend/internal/bootstrap"
	"cursedcompass-backend/internal/components/chrono"
	"cursedcompass-backend/internal/components/serviceutil"
	"cursedcompass-backend/internal/components/telemetry"
	"cursedcompass-backend/internal/scrapers/ipms"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	checkIn   *string
	checkOut  *string
	guests    *int
	showAll   *bool
	noDump    *bool
	noHistory *bool
)

func init() {
	checkIn = checkCmd.Flags().String("checkin", "", "Check-in date (YYYY-MM-DD).")
	checkOut = checkCmd.Flags().String("checkout", "", "Check-out date (YYYY-MM-DD).")
	guests = checkCmd.Flags().Int("guests", 2, "Number of guests.")
	showAll = checkCmd.Flags().Bool("all", false, "Also print the rooms removed by the availability filter.")
	noDump = checkCmd.Flags().Bool("no-dump", false, "Do not save the raw response.")
	noHistory = checkCmd.Flags().Bool("no-history", false, "Do not record the check in the history database.")
	checkCmd.MarkFlagRequired("checkin")
	checkCmd.MarkFlagRequired("checkout")
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check --checkin <date> --checkout <date> [--guests <n>] [--all]",
	Short: "Runs one availability check against the configured hotel.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()

		req, err := ipms.NewAvailabilityRequest(*checkIn, *checkOut, *guests)
		if err != nil {
			serviceutil.Fatal("invalid request", err)
		}

		var transcripts telemetry.InstrumentOutput
		if *verbose {
			output, err := telemetry.NewFilesystemOutput(".dev/resty/ipms")
			if err != nil {
				serviceutil.Fatal("create transcript directory", err)
			}
			transcripts = output
		}

		checker, err := bootstrap.NewChecker(cfg, chrono.NewStandardTime(), telemetry.SlogAPI{}, bootstrap.CheckerOptions{
			Transcripts: transcripts,
			NoDump:      *noDump,
		})
		if err != nil {
			serviceutil.Fatal("init checker", err)
		}

		res, details := checker.CheckWithDetails(cmd.Context(), req)

		if !*noHistory {
			store, database, err := bootstrap.OpenHistory(cfg)
			if err != nil {
				slog.Warn("history is unavailable, check not recorded", "err", err)
			} else {
				defer database.Close()
				_, err = store.Record(cmd.Context(), req, res)
				if err != nil {
					slog.Warn("failed to record check", "err", err)
				}
			}
		}

		if !res.Success {
			fmt.Fprintf(os.Stderr, "check failed: %s\n", res.Error)
			os.Exit(1)
		}

		fmt.Printf(
			"%s, %s to %s (%d nights, %d guests): %d of %d rooms kept, parsed with %q\n",
			res.HotelId, req.CheckInString(), req.CheckOutString(), req.Nights(), req.Guests,
			res.RoomsAfterFiltering, res.TotalRoomsFound, details.Strategy,
		)
		if res.SourceHtmlPath != "" {
			fmt.Printf("raw response saved to %s\n", res.SourceHtmlPath)
		}

		renderRooms(os.Stdout, "Available", res.Rooms)
		if *showAll {
			renderRooms(os.Stdout, "All parsed", details.Parsed)
		}
	},
}
