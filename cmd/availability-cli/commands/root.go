package commands

import (
	"context"
	"cursedcompass-backend/internal/bootstrap"
	"cursedcompass-backend/internal/components/serviceutil"
	"cursedcompass-backend/internal/components/telemetry"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath *string
	verbose    *bool
)

func init() {
	configPath = rootCmd.PersistentFlags().String("config", "config.json5", "Path to the config file.")
	verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging.")
}

var rootCmd = &cobra.Command{
	Use:   "availability-cli",
	Short: "availability-cli checks hotel availability and inspects saved booking responses.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(*verbose)
	},
}

func loadConfig() bootstrap.Config {
	cfg, err := bootstrap.LoadConfig(*configPath)
	if err != nil {
		serviceutil.Fatal("failed to load config", err)
	}
	return cfg
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
