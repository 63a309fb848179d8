package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/arkade-01/p2pbot/internal/bot"
	"github.com/arkade-01/p2pbot/internal/config"
	"github.com/arkade-01/p2pbot/internal/logger"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("bot: %v", err)
	}
}

func run() error {
	// Missing .env is fine; containers inject the environment directly.
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	if err := logger.Init(cfg.Logging); err != nil {
		return err
	}
	defer func() {
		if err := logger.Shutdown(); err != nil {
			log.Printf("logger shutdown error: %v", err)
		}
	}()

	startedAt := time.Now()
	app, err := bot.New(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	logger.APP.Info("app ready",
		slog.String("event", "ready"),
		slog.Duration("startup_duration", logger.RoundMS(time.Since(startedAt))),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	err = app.Run(ctx)

	logger.APP.Info("shutting down...",
		slog.String("event", "shutdown"),
	)
	return err
}
