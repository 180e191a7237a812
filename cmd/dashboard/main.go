package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/BlendWitTech/mero-jugx-sub003/modules/dashboard"
)

func main() {
	ctx := context.Background()

	module, err := dashboard.New(ctx)
	if err != nil {
		slog.Error("failed to initialize dashboard module", slog.Any("error", err))
		os.Exit(1)
	}
	defer module.Close()

	if err := module.Run(ctx); err != nil {
		slog.Error("dashboard module stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
