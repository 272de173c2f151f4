// internal/workers/tasks.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ammerola/fieldstock-be/internal/core/domain"
	"github.com/ammerola/fieldstock-be/internal/core/ports"
)

const (
	TypeNotification   = "stock:notify"
	TypeRepairExport   = "export:repair_transfers"
	TypeLedgerAudit    = "audit:ledger"
	QueueCritical      = "critical"
	QueueDefault       = "default"
	QueueLow           = "low"
	defaultTaskTimeout = 10 * time.Minute
)

// Enqueuer is the part of *asynq.Client the queue uses
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Queue publishes stock tasks to asynq
type Queue struct {
	client   Enqueuer
	maxRetry int
	logger   *slog.Logger
}

var _ ports.TaskQueue = (*Queue)(nil)

func NewQueue(client Enqueuer, maxRetry int, logger *slog.Logger) *Queue {
	if maxRetry <= 0 {
		maxRetry = 3
	}
	return &Queue{
		client:   client,
		maxRetry: maxRetry,
		logger:   logger.With(slog.String("component", "task_queue")),
	}
}

// Notify queues delivery of n. Notifications are high priority and short
// lived.
func (q *Queue) Notify(ctx context.Context, n domain.Notification) error {
	_, err := q.enqueue(ctx, TypeNotification, n,
		asynq.Queue(QueueCritical),
		asynq.MaxRetry(q.maxRetry),
		asynq.Timeout(30*time.Second))
	return err
}

func (q *Queue) EnqueueExport(ctx context.Context, req domain.ExportRequest) (string, error) {
	return q.enqueue(ctx, TypeRepairExport, req,
		asynq.Queue(QueueDefault),
		asynq.MaxRetry(q.maxRetry),
		asynq.Timeout(defaultTaskTimeout),
		asynq.Retention(24*time.Hour))
}

func (q *Queue) EnqueueLedgerAudit(ctx context.Context, req domain.AuditRequest) (string, error) {
	return q.enqueue(ctx, TypeLedgerAudit, req,
		asynq.Queue(QueueLow),
		asynq.MaxRetry(1),
		asynq.Timeout(defaultTaskTimeout),
		asynq.Retention(7*24*time.Hour))
}

func (q *Queue) enqueue(ctx context.Context, taskType string, payload any, opts ...asynq.Option) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal %s payload: %w", taskType, err)
	}

	info, err := q.client.EnqueueContext(ctx, asynq.NewTask(taskType, data), opts...)
	if err != nil {
		return "", fmt.Errorf("failed to enqueue %s: %w", taskType, err)
	}

	q.logger.DebugContext(ctx, "task enqueued",
		slog.String("type", taskType),
		slog.String("task_id", info.ID),
		slog.String("queue", info.Queue))
	return info.ID, nil
}

func decodePayload[T any](t *asynq.Task) (T, error) {
	var payload T
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return payload, fmt.Errorf("failed to unmarshal %s payload: %v: %w", t.Type(), err, asynq.SkipRetry)
	}
	return payload, nil
}

// writeResult stores a JSON result on the task when asynq provides a writer
func writeResult(t *asynq.Task, result any) error {
	w := t.ResultWriter()
	if w == nil {
		return nil
	}
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal task result: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write task result: %w", err)
	}
	return nil
}
