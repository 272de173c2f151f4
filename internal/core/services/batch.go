// internal/core/services/batch.go
package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ammerola/fieldstock-be/internal/core/domain"
	"github.com/ammerola/fieldstock-be/internal/core/ports"
)

// runBatch processes items one after another in input order. Each item is
// its own transaction; a failure is recorded against its index and the
// remaining items still run.
func runBatch[I, T any](
	ctx context.Context,
	b *stockBase,
	op string,
	items []I,
	productOf func(I) uuid.UUID,
	fn func(ctx context.Context, item I) (T, error),
) *ports.BatchResult[T] {
	result := &ports.BatchResult[T]{
		Succeeded: make([]T, 0, len(items)),
		Total:     len(items),
	}

	for i, item := range items {
		out, err := fn(ctx, item)
		b.record(op, err)
		if err != nil {
			appErr := domain.ToAppError(err)
			be := ports.BatchError{Index: i, Code: appErr.Code, Error: appErr.Message}
			if pid := productOf(item); pid != uuid.Nil {
				be.ProductID = pid.String()
			}
			result.Errors = append(result.Errors, be)

			level := slog.LevelWarn
			if appErr.Code == domain.CodeInternal {
				level = slog.LevelError
			}
			b.logger.Log(ctx, level, "batch item failed",
				slog.String("operation", op),
				slog.Int("index", i),
				slog.String("code", string(appErr.Code)),
				slog.String("error", err.Error()))
			continue
		}
		result.Succeeded = append(result.Succeeded, out)
	}

	b.Metrics.RecordBatch(op, len(result.Succeeded), len(result.Errors))
	b.logger.InfoContext(ctx, "batch processed",
		slog.String("operation", op),
		slog.Int("total", result.Total),
		slog.Int("succeeded", len(result.Succeeded)),
		slog.Int("failed", len(result.Errors)))
	return result
}
