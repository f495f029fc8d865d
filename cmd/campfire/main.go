package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/Jonah-Douglas/Campfire/internal/app"
	"github.com/Jonah-Douglas/Campfire/internal/config"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("config load failed", "error", err)
		os.Exit(1)
	}

	if err := app.Run(cfg, logger); err != nil {
		logger.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}
