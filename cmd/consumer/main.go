package main

import (
	"context"
	"os/signal"
	"syscall"

	"go-sge/internal/app"
	"go-sge/internal/config"
	"go-sge/internal/shared/apperror"
	"go-sge/internal/shared/logging"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	cfg := config.MustLoad()

	logger := logging.MustNew(cfg.IsProduction())
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	apperror.Init()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.RunConsumer(ctx, cfg, logger); err != nil {
		logger.Fatal("run consumer failed", zap.Error(err))
	}
}
