// internal/core/ports/tasks.go
package ports

import (
	"context"
	"io"
	"time"

	"github.com/ammerola/fieldstock-be/internal/core/domain"
)

// TaskQueue hands work to the background worker. Enqueue calls return the
// task id.
type TaskQueue interface {
	Notify(ctx context.Context, n domain.Notification) error
	EnqueueExport(ctx context.Context, req domain.ExportRequest) (string, error)
	EnqueueLedgerAudit(ctx context.Context, req domain.AuditRequest) (string, error)
}

// ExportStorage keeps generated export files
type ExportStorage interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) error
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}
