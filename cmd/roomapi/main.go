package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"roomapi/config"
	"roomapi/internal/app"
	"roomapi/internal/lib/clockwork"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

const _shutdownPeriod = 15 * time.Second

func main() {
	cfg := config.MustLoad()
	log := setupLogger(cfg.Env)

	log.Info("roomapi", "env", cfg.Env)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(log, cfg, clockwork.Real())
	if err != nil {
		panic(err)
	}
	defer application.Stop()

	go func() {
		log.Info("server starting", "port", cfg.HTTP.Port)
		application.HTTPServer.MustRun()
	}()

	// Waiting for SIGINT (pkill -2) or SIGTERM
	<-rootCtx.Done()
	stop()

	log.Info("received shutdown signal, shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), _shutdownPeriod)
	defer cancel()

	if err := application.HTTPServer.Stop(shutdownCtx); err != nil {
		log.Error("server couldn't stop gracefully in time", "err", err)
	}

	log.Info("server shut down gracefully")
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}
