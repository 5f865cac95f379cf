package app

import (
	"context"

	"go-sge/internal/auth"
	"go-sge/internal/config"
	"go-sge/internal/messaging/kafka"
	"go-sge/internal/messaging/kafka/producer"
	"go-sge/internal/shared/connection"
	"go-sge/internal/shared/jwtauth"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// RunWorker publishes outbox events and sweeps expired refresh tokens until
// ctx is cancelled.
func RunWorker(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	log := logger.Named("app.worker")

	gormDB, sqlDB, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	kafkaWriter, err := connection.ConnectKafkaWithRetry(cfg.Kafka.Broker, cfg.DB.MaxRetries)
	if err != nil {
		return err
	}
	defer kafkaWriter.Close()

	outboxRepo := kafka.NewOutboxRepository(sqlDB)
	tokenService := auth.NewTokenService(
		sqlDB,
		auth.NewRepository(gormDB),
		auth.NewTokenRepository(gormDB),
		jwtauth.NewManager(jwtConfig(cfg)),
		cfg.JWT.RefreshTokenTTL,
		logger,
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		producer.ProcessOutboxEvents(gctx, outboxRepo, kafkaWriter, logger, cfg.Worker.OutboxInterval)
		return nil
	})
	g.Go(func() error {
		auth.RunTokenSweeper(gctx, tokenService, logger, cfg.Worker.TokenSweepInterval)
		return nil
	})

	err = g.Wait()
	log.Info("worker shut down")
	return err
}
