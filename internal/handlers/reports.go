// internal/handlers/reports.go
package handlers

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/ammerola/fieldstock-be/internal/adapters/storage"
	"github.com/ammerola/fieldstock-be/internal/core/domain"
	"github.com/ammerola/fieldstock-be/internal/core/ports"
)

const defaultRepairedWindow = 30 * 24 * time.Hour

// ReportHandler serves the read-only repair views, exports and audits
type ReportHandler struct {
	baseHandler
	service ports.ReportingService
	now     func() time.Time
}

func NewReportHandler(service ports.ReportingService, opts Options, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{
		baseHandler: newBaseHandler(logger, "reports", opts),
		service:     service,
		now:         time.Now,
	}
}

// Serials handles GET /api/v1/faulty-stock/serials/{productId}
func (h *ReportHandler) Serials(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	productID, err := pathUUID(r, "productId")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	q := ports.SerialsQuery{ProductID: productID}
	if q.CenterID, err = queryUUID(r, "centerId"); err != nil {
		h.respondError(w, r, err)
		return
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := domain.SerialStatus(raw)
		if !status.IsValid() {
			h.respondError(w, r, domain.NewValidationError("invalid status %q", raw))
			return
		}
		q.Status = &status
	}

	report, err := h.service.Serials(r.Context(), actor, q)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondOK(w, http.StatusOK, "", report)
}

// RepairTransfers handles GET /api/v1/faulty-stock/repair-transfers/center
func (h *ReportHandler) RepairTransfers(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	q := ports.RepairTransferQuery{PageParams: h.parsePage(r)}
	var err error
	if q.CenterID, err = queryUUID(r, "centerId"); err != nil {
		h.respondError(w, r, err)
		return
	}
	if q.Status, err = queryRepairStatus(r); err != nil {
		h.respondError(w, r, err)
		return
	}

	page, err := h.service.RepairTransfersForCenter(r.Context(), actor, q)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondOK(w, http.StatusOK, "", page)
}

// UnderRepair handles GET /api/v1/faulty-stock/under-repair
func (h *ReportHandler) UnderRepair(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	center, err := queryUUID(r, "centerId")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	totals, err := h.service.UnderRepair(r.Context(), actor, center)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondOK(w, http.StatusOK, "", totals)
}

// Repaired handles GET /api/v1/faulty-stock/repaired. Without from/to the
// last 30 days are reported.
func (h *ReportHandler) Repaired(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	center, err := queryUUID(r, "centerId")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	from, err := queryTime(r, "from")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	to, err := queryTime(r, "to")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	end := h.now().UTC()
	if to != nil {
		end = *to
	}
	start := end.Add(-defaultRepairedWindow)
	if from != nil {
		start = *from
	}

	totals, err := h.service.RepairedInPeriod(r.Context(), actor, start, end, center)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondOK(w, http.StatusOK, "", map[string]any{
		"from":     start,
		"to":       end,
		"products": totals,
	})
}

// ExportRepairTransfers handles GET /api/v1/faulty-stock/repair-transfers/export
func (h *ReportHandler) ExportRepairTransfers(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	req, err := exportRequestFromQuery(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	records, err := h.service.ExportRepairTransfers(r.Context(), actor, req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	var buffer bytes.Buffer
	if err := storage.WriteRepairTransfers(&buffer, records); err != nil {
		h.respondError(w, r, fmt.Errorf("failed to generate workbook: %w", err))
		return
	}

	filename := fmt.Sprintf("repair_transfers_%s.xlsx", h.now().UTC().Format("20060102_150405"))
	w.Header().Set("Content-Type", storage.XLSXContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buffer.Len()))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(buffer.Bytes()); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to write export",
			slog.String("error", err.Error()))
		return
	}

	h.logger.InfoContext(r.Context(), "repair transfers exported",
		slog.Int("rows", len(records)),
		slog.Int("bytes", buffer.Len()))
}

// RequestExport handles POST /api/v1/faulty-stock/repair-transfers/export/async
func (h *ReportHandler) RequestExport(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var body ExportRequestDTO
	if r.ContentLength != 0 {
		if err := h.decodeAndValidate(w, r, &body); err != nil {
			h.respondError(w, r, err)
			return
		}
	}

	taskID, err := h.service.RequestExport(r.Context(), actor, body.ToDomain())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondOK(w, http.StatusAccepted, "export queued", map[string]string{"taskId": taskID})
}

// RequestLedgerAudit handles POST /api/v1/admin/ledger-audit
func (h *ReportHandler) RequestLedgerAudit(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var body LedgerAuditRequest
	if r.ContentLength != 0 {
		if err := h.decodeAndValidate(w, r, &body); err != nil {
			h.respondError(w, r, err)
			return
		}
	}

	taskID, err := h.service.RequestLedgerAudit(r.Context(), actor, domain.AuditRequest{CenterID: body.CenterID})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondOK(w, http.StatusAccepted, "ledger audit queued", map[string]string{"taskId": taskID})
}

func queryRepairStatus(r *http.Request) (*domain.RepairStatus, error) {
	raw := r.URL.Query().Get("status")
	if raw == "" {
		return nil, nil
	}
	status := domain.RepairStatus(raw)
	if !status.IsValid() {
		return nil, domain.NewValidationError("invalid status %q", raw)
	}
	return &status, nil
}

func exportRequestFromQuery(r *http.Request) (domain.ExportRequest, error) {
	var req domain.ExportRequest
	var err error
	if req.FromCenterID, err = queryUUID(r, "centerId"); err != nil {
		return req, err
	}
	if req.Status, err = queryRepairStatus(r); err != nil {
		return req, err
	}
	if req.From, err = queryTime(r, "from"); err != nil {
		return req, err
	}
	if req.To, err = queryTime(r, "to"); err != nil {
		return req, err
	}
	return req, nil
}

// ExportRequestDTO is the optional body of the async export
type ExportRequestDTO struct {
	CenterID *uuid.UUID `json:"centerId,omitempty"`
	Status   string     `json:"status,omitempty" validate:"omitempty,oneof=damaged under_repair repaired irreparable partially_repaired returned disposed returned_to_vendor"`
	From     *time.Time `json:"from,omitempty"`
	To       *time.Time `json:"to,omitempty"`
}

func (d *ExportRequestDTO) ToDomain() domain.ExportRequest {
	req := domain.ExportRequest{FromCenterID: d.CenterID, From: d.From, To: d.To}
	if d.Status != "" {
		status := domain.RepairStatus(d.Status)
		req.Status = &status
	}
	return req
}

// LedgerAuditRequest is the optional body of the ledger audit
type LedgerAuditRequest struct {
	CenterID *uuid.UUID `json:"centerId,omitempty"`
}
