package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"starrail-backend/lib/serviceutil"
	"starrail-backend/lib/telemetry"
)

func InitTelemetry(ctx context.Context, verbose bool) {
	telemetry.InitSlog(verbose)

	if verbose {
		slog.DebugContext(ctx, "verbose logging enabled")
	}

	tel, err := telemetry.SetupFromEnv(ctx, "starrail-server")
	if errors.Is(err, os.ErrNotExist) {
		slog.WarnContext(ctx, "telemetry.json5 not found, otel exporters disabled")
		return
	}
	if err != nil {
		serviceutil.Fatal("setup telemetry", err)
	}
	go func() {
		<-ctx.Done()
		err := tel.Shutdown(context.Background())
		if err != nil {
			slog.Warn("shutdown telemetry", "err", err)
		}
	}()
	telemetry.InstrumentPerfStats(ctx)
}
