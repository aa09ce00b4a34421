package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"seafreight/internal/app"
)

func main() {
	// A .env next to the working directory seeds SEAFREIGHT_* variables for
	// local runs. Already-exported variables win.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("Could not read .env file", slog.String("error", err.Error()))
	}

	application, err := app.NewApplication()
	if err != nil {
		slog.Error("Failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		slog.Error("Application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
