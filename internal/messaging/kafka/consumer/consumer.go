package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go-sge/internal/bootstrap"
	"go-sge/internal/events"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader is the subset of *kafkago.Reader the consumer needs.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

// NewReader subscribes one consumer group to every domain event topic.
func NewReader(broker, groupID string) *kafkago.Reader {
	return kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        []string{broker},
		GroupTopics:    events.Topics(),
		GroupID:        groupID,
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
	})
}

// ConsumeDomainEvents records an audit entry for every domain event until ctx
// is cancelled. Undecodable messages are committed and skipped.
func ConsumeDomainEvents(
	ctx context.Context,
	reader MessageReader,
	audit bootstrap.AuditLogger,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.domain_events")
	log.Info("domain event consumer started", zap.Strings("topics", events.Topics()))

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("domain event consumer stopped")
				return
			}
			log.Error("fetch domain event failed", zap.Error(err))
			continue
		}

		entry, err := auditEntry(msg)
		if err != nil {
			log.Error("decode domain event failed",
				zap.String("topic", msg.Topic),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
			commit(ctx, reader, msg, log)
			continue
		}

		audit.Log(ctx, entry)
		commit(ctx, reader, msg, log)
	}
}

func commit(ctx context.Context, reader MessageReader, msg kafkago.Message, log *zap.Logger) {
	if err := reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
		log.Error("commit domain event failed",
			zap.String("topic", msg.Topic),
			zap.Int64("offset", msg.Offset),
			zap.Error(err),
		)
	}
}

func auditEntry(msg kafkago.Message) (bootstrap.AuditLog, error) {
	var header events.Header
	if err := json.Unmarshal(msg.Value, &header); err != nil {
		return bootstrap.AuditLog{}, err
	}
	if header.EventType == "" {
		header.EventType = headerValue(msg, "event_type")
	}
	if header.EventType == "" {
		return bootstrap.AuditLog{}, fmt.Errorf("event without type on %s", msg.Topic)
	}

	var payload map[string]any
	if err := json.Unmarshal(msg.Value, &payload); err != nil {
		return bootstrap.AuditLog{}, err
	}
	payload["topic"] = msg.Topic
	payload["partition"] = msg.Partition
	payload["offset"] = msg.Offset
	payload["key"] = string(msg.Key)

	occurredAt, err := time.Parse(time.RFC3339Nano, header.OccurredAt)
	if err != nil {
		occurredAt = msg.Time
	}

	return bootstrap.AuditLog{
		Action:     strings.ToUpper(header.EventType),
		Actor:      header.Actor,
		Message:    fmt.Sprintf("%s received for %s", header.EventType, string(msg.Key)),
		OccurredAt: occurredAt,
		Meta:       payload,
	}, nil
}

func headerValue(msg kafkago.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}
