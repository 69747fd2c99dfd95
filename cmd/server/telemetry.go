package main

import (
	"context"
	"cursedcompass-backend/internal/components/telemetry"
	"log/slog"
	"os"
)

// InitTelemetry sets up logging and, if a telemetry.json5 can be found, otel exporters.
// It returns where resty transcripts should go, nil unless verbose.
func InitTelemetry(ctx context.Context, verbose bool) telemetry.InstrumentOutput {
	telemetry.InitSlog(verbose)

	if verbose {
		slog.DebugContext(ctx, "verbose logging enabled")
	}

	otel, err := telemetry.SetupFromEnv(ctx, "cursedcompass-server")
	if os.IsNotExist(err) {
		slog.Warn("telemetry.json5 not found, traces and metrics are not exported")
	} else if err != nil {
		slog.Warn("setup telemetry", "err", err)
	} else {
		go func() {
			<-ctx.Done()
			otel.Shutdown(context.Background())
		}()
	}
	telemetry.InstrumentPerfStats(ctx)

	if !verbose {
		return nil
	}
	output, err := telemetry.NewFilesystemOutput(".dev/resty/ipms")
	if err != nil {
		slog.Warn("create resty transcript directory", "err", err)
		return nil
	}
	return output
}
