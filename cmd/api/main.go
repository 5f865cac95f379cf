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

	a, err := app.BuildApp(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("build app failed", zap.Error(err))
	}
	defer a.Close()

	if err := a.Run(ctx, cfg, logger); err != nil {
		logger.Error("http server failed", zap.Error(err))
	}
}
