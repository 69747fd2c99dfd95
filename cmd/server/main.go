package main

import (
	"cursedcompass-backend/internal/bootstrap"
	"cursedcompass-backend/internal/components/chrono"
	"cursedcompass-backend/internal/components/serviceutil"
	"cursedcompass-backend/internal/components/telemetry"
	"cursedcompass-backend/internal/service"
	"flag"

	"github.com/gin-gonic/gin"
)

func main() {
	verbose := flag.Bool("v", false, "Enable verbose logging/instrumentation.")
	configPath := flag.String("config", "config.json5", "Path to the config file.")
	flag.Parse()

	ctx := serviceutil.SignalContext()

	cfg, err := bootstrap.LoadConfig(*configPath)
	if err != nil {
		serviceutil.Fatal("load config", err)
	}
	cfg.Verbose = cfg.Verbose || *verbose

	transcripts := InitTelemetry(ctx, cfg.Verbose)
	if !cfg.Verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	tel := telemetry.SlogAPI{}
	registry, err := bootstrap.NewRegistry(cfg, chrono.NewStandardTime(), tel, bootstrap.CheckerOptions{
		Transcripts: transcripts,
	})
	if err != nil {
		serviceutil.Fatal("init checkers", err)
	}

	historyStore, database, err := bootstrap.OpenHistory(cfg)
	if err != nil {
		serviceutil.Fatal("init history", err)
	}
	defer database.Close()

	availabilityService := service.NewAvailabilityService(
		registry,
		cfg.Hotel.Id,
		service.WithHistory(historyStore),
		service.WithCustomTelemetryAPI(tel),
	)

	serviceutil.StartHttpServer(ctx, cfg.Port, service.NewRouter(availabilityService, cfg.Cors))
}
