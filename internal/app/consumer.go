package app

import (
	"context"

	"go-sge/internal/bootstrap"
	"go-sge/internal/config"
	"go-sge/internal/messaging/kafka/consumer"

	"go.uber.org/zap"
)

// RunConsumer writes every domain event to the audit trail until ctx is
// cancelled.
func RunConsumer(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	log := logger.Named("app.consumer")

	reader := consumer.NewReader(cfg.Kafka.Broker, cfg.Kafka.GroupID)
	defer reader.Close()

	consumer.ConsumeDomainEvents(ctx, reader, bootstrap.NewStdoutAuditLogger(logger), logger)

	log.Info("consumer shut down")
	return nil
}
