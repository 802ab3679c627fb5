package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/hairtrack/hairtrack-api/internal/app"
	"github.com/hairtrack/hairtrack-api/internal/config"
	"github.com/hairtrack/hairtrack-api/internal/pkg/logger"
)

func main() {
	cfg := config.Load()
	if err := logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env}); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize logger")
	}

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Str("database", cfg.DatabaseDriver).
		Str("storage", cfg.StorageBackend).
		Str("ai_provider", cfg.AIProvider).
		Msg("Starting HairTrack API")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}
	defer a.Close()

	if err := a.Serve(ctx); err != nil {
		log.Error().Err(err).Msg("HTTP server error")
	}
}
