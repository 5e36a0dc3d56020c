package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/shubhamchoudhary-2003/fullstack/internal/app"
	"github.com/shubhamchoudhary-2003/fullstack/internal/config"
	handler "github.com/shubhamchoudhary-2003/fullstack/internal/handler/http"
	"github.com/shubhamchoudhary-2003/fullstack/pkg/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		return 2
	}

	log := logger.New(handler.ServiceName, cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.NewApp(cfg, log)
	if err != nil {
		log.Error("startup failed", slog.String("error", err.Error()))
		return 1
	}

	log.Info("fashion backend started",
		slog.String("environment", cfg.Environment),
		slog.Int("http_port", cfg.HTTPPort),
		slog.Bool("revalidation", cfg.RevalidationEnabled()),
	)
	if err := a.Run(ctx); err != nil {
		log.Error("fashion backend exited", slog.String("error", err.Error()))
		return 1
	}
	log.Info("fashion backend stopped")
	return 0
}
