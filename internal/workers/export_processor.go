// internal/workers/export_processor.go
package workers

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ammerola/fieldstock-be/internal/adapters/storage"
	"github.com/ammerola/fieldstock-be/internal/core/domain"
	"github.com/ammerola/fieldstock-be/internal/core/ports"
)

// ExportResult is written to the task result once the workbook is stored
type ExportResult struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	Rows      int       `json:"rows"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ExportProcessor renders repair transfer workbooks into object storage
type ExportProcessor struct {
	reads     ports.StockStore
	storage   ports.ExportStorage
	maxRows   int
	urlExpiry time.Duration
	now       func() time.Time
	logger    *slog.Logger
}

func NewExportProcessor(reads ports.StockStore, store ports.ExportStorage, maxRows int, urlExpiry time.Duration, logger *slog.Logger) *ExportProcessor {
	if urlExpiry <= 0 {
		urlExpiry = 24 * time.Hour
	}
	return &ExportProcessor{
		reads:     reads,
		storage:   store,
		maxRows:   maxRows,
		urlExpiry: urlExpiry,
		now:       time.Now,
		logger:    logger.With(slog.String("processor", "export")),
	}
}

// ExportRepairTransfers handles TypeRepairExport. The request center was
// resolved against the actor's scope before the task was queued.
func (p *ExportProcessor) ExportRepairTransfers(ctx context.Context, t *asynq.Task) error {
	req, err := decodePayload[domain.ExportRequest](t)
	if err != nil {
		return err
	}

	rows, err := p.reads.Repairs().ListAll(ctx, ports.RepairTransferFilter{
		FromCenterID: req.FromCenterID,
		Status:       req.Status,
		UpdatedFrom:  req.From,
		UpdatedTo:    req.To,
	})
	if err != nil {
		return fmt.Errorf("failed to list repair transfers: %w", err)
	}
	if p.maxRows > 0 && len(rows) > p.maxRows {
		return fmt.Errorf("export matches %d transfers, limit is %d: %w", len(rows), p.maxRows, asynq.SkipRetry)
	}

	var buf bytes.Buffer
	if err := storage.WriteRepairTransfers(&buf, rows); err != nil {
		return fmt.Errorf("failed to build workbook: %w", err)
	}

	now := p.now().UTC()
	key := ExportKey(req.RequestedBy, now)
	if err := p.storage.Upload(ctx, key, &buf, storage.XLSXContentType); err != nil {
		return fmt.Errorf("failed to upload export: %w", err)
	}

	url, err := p.storage.PresignGet(ctx, key, p.urlExpiry)
	if err != nil {
		return fmt.Errorf("failed to presign export: %w", err)
	}

	p.logger.InfoContext(ctx, "repair transfer export stored",
		slog.String("key", key),
		slog.Int("rows", len(rows)),
		slog.String("requested_by", req.RequestedBy))

	return writeResult(t, ExportResult{
		Key:       key,
		URL:       url,
		Rows:      len(rows),
		ExpiresAt: now.Add(p.urlExpiry),
	})
}

// ExportKey names the object holding one requester's export
func ExportKey(requestedBy string, at time.Time) string {
	if requestedBy == "" {
		requestedBy = "anonymous"
	}
	return fmt.Sprintf("exports/repair-transfers/%s/%s.xlsx", requestedBy, at.Format("20060102T150405Z"))
}
