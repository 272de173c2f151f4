// internal/workers/notification_processor.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/ammerola/fieldstock-be/internal/core/domain"
)

const notificationChannelPrefix = "fieldstock:notifications:"

// Publisher is the part of *redis.Client used for fan-out
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// NotificationChannel is the pub/sub channel carrying a center's notifications
func NotificationChannel(n domain.Notification) string {
	return notificationChannelPrefix + n.CenterID.String()
}

// NotificationProcessor delivers stock notifications to subscribers
type NotificationProcessor struct {
	publisher Publisher
	logger    *slog.Logger
}

func NewNotificationProcessor(publisher Publisher, logger *slog.Logger) *NotificationProcessor {
	return &NotificationProcessor{
		publisher: publisher,
		logger:    logger.With(slog.String("processor", "notification")),
	}
}

// Deliver publishes the notification on its center channel
func (p *NotificationProcessor) Deliver(ctx context.Context, t *asynq.Task) error {
	n, err := decodePayload[domain.Notification](t)
	if err != nil {
		return err
	}
	if n.Kind == "" {
		return fmt.Errorf("notification without kind: %w", asynq.SkipRetry)
	}

	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	channel := NotificationChannel(n)
	receivers, err := p.publisher.Publish(ctx, channel, data).Result()
	if err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}

	p.logger.InfoContext(ctx, "notification delivered",
		slog.String("kind", string(n.Kind)),
		slog.String("channel", channel),
		slog.String("reference", n.Reference.String()),
		slog.Int64("receivers", receivers))
	return nil
}
