// internal/workers/middleware.go
package workers

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ammerola/fieldstock-be/internal/pkg/logger"
	"github.com/ammerola/fieldstock-be/internal/pkg/metrics"
)

// Instrument tags the task context for logging and records the outcome
func Instrument(l *logger.Logger, m *metrics.Metrics) asynq.MiddlewareFunc {
	return func(next asynq.Handler) asynq.Handler {
		return asynq.HandlerFunc(func(ctx context.Context, t *asynq.Task) error {
			start := time.Now()
			ctx = context.WithValue(ctx, logger.ContextKeyTaskType, t.Type())
			if id, ok := asynq.GetTaskID(ctx); ok {
				ctx = context.WithValue(ctx, logger.ContextKeyTraceID, id)
			}
			ctx = logger.WithLogger(ctx, l)

			err := next.ProcessTask(ctx, t)
			m.RecordTask(t.Type(), err)

			log := l.Logger
			if err != nil {
				log.ErrorContext(ctx, "task failed",
					slog.Duration("duration", time.Since(start)),
					slog.String("error", err.Error()))
				return err
			}
			log.InfoContext(ctx, "task completed",
				slog.Duration("duration", time.Since(start)))
			return nil
		})
	}
}
