package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"

	"medisearch-backend/cmd/medisearch/commands"
	"medisearch-backend/lib/telemetry"
)

func initSlog(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
	slog.SetDefault(logger)
}

func main() {
	ctx := context.Background()

	t, err := telemetry.SetupFromEnv(ctx, "medisearch")
	if err == nil {
		defer t.Shutdown(context.Background())
	}
	initSlog(os.Getenv("MEDISEARCH_VERBOSE") != "")

	commands.ExecuteContext(ctx)
}
