package main

import (
	"log/slog"
	"os"

	"github.com/aussiebroadwan/sessionauth/internal/auth/app"
)

func main() {
	cfg := app.LoadConfig()

	// app.New installs the configured logger as the slog default.
	application, err := app.New(cfg)
	if err != nil {
		slog.Error("failed to initialize auth service", "err", err)
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		slog.Error("auth service exited", "err", err)
		os.Exit(1)
	}
}
