package main

import (
	"context"
	"log/slog"
	"os"

	"opsdiary/internal/app"
)

func main() {
	ctx := context.Background()

	application, err := app.NewApplication(ctx)
	if err != nil {
		slog.Error("failed to start application", "error", err)
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		application.Logger.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}
