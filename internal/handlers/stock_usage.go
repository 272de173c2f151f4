// internal/handlers/stock_usage.go
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/ammerola/fieldstock-be/internal/core/domain"
	"github.com/ammerola/fieldstock-be/internal/core/ports"
)

// StockUsageHandler serves usage events, damage decisions and the center
// ledger view.
type StockUsageHandler struct {
	baseHandler
	service ports.StockUsageService
}

func NewStockUsageHandler(service ports.StockUsageService, opts Options, logger *slog.Logger) *StockUsageHandler {
	return &StockUsageHandler{
		baseHandler: newBaseHandler(logger, "stock_usage", opts),
		service:     service,
	}
}

// CreateUsage handles POST /api/v1/stock-usage
func (h *StockUsageHandler) CreateUsage(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req CreateUsageRequest
	if err := h.decodeAndValidate(w, r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := h.checkBatchSize(len(req.Items)); err != nil {
		h.respondError(w, r, err)
		return
	}

	result := h.service.CreateUsage(r.Context(), actor, req.ToDomain())
	h.respondBatch(w, r, "created", result.Succeeded, len(result.Succeeded), result.Total, result.Errors, nil)
}

// GetUsage handles GET /api/v1/stock-usage/{id}
func (h *StockUsageHandler) GetUsage(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	id, err := pathUUID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	usage, err := h.service.GetUsage(r.Context(), actor, id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondOK(w, http.StatusOK, "", usage)
}

// ListUsages handles GET /api/v1/stock-usage
func (h *StockUsageHandler) ListUsages(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	filter, err := h.parseUsageFilter(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	result, err := h.service.ListUsages(r.Context(), actor, filter)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondOK(w, http.StatusOK, "", result)
}

func (h *StockUsageHandler) parseUsageFilter(r *http.Request) (ports.UsageFilter, error) {
	filter := ports.UsageFilter{PageParams: h.parsePage(r)}

	var err error
	if filter.CenterID, err = queryUUID(r, "centerId"); err != nil {
		return filter, err
	}
	if filter.ProductID, err = queryUUID(r, "productId"); err != nil {
		return filter, err
	}

	q := r.URL.Query()
	if raw := q.Get("status"); raw != "" {
		status := domain.UsageStatus(raw)
		if !status.IsValid() {
			return filter, domain.NewValidationError("invalid status %q", raw)
		}
		filter.Status = &status
	}
	if raw := q.Get("entityType"); raw != "" {
		kind := domain.EntityKind(raw)
		if !kind.IsValid() {
			return filter, domain.NewValidationError("invalid entityType %q", raw)
		}
		filter.EntityType = &kind
	}
	return filter, nil
}

// ApproveDamage handles POST /api/v1/stock-usage/{id}/approve
func (h *StockUsageHandler) ApproveDamage(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	id, req, err := h.decision(w, r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	decision, err := h.service.ApproveDamage(r.Context(), actor, id, req.Remark)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondOK(w, http.StatusOK, "damage report approved", decision)
}

// RejectDamage handles POST /api/v1/stock-usage/{id}/reject
func (h *StockUsageHandler) RejectDamage(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	id, req, err := h.decision(w, r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	usage, err := h.service.RejectDamage(r.Context(), actor, id, req.Remark)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondOK(w, http.StatusOK, "damage report rejected", usage)
}

// decision parses the usage id and an optional remark body
func (h *StockUsageHandler) decision(w http.ResponseWriter, r *http.Request) (uuid.UUID, DecisionRequest, error) {
	var req DecisionRequest
	id, err := pathUUID(r, "id")
	if err != nil {
		return uuid.Nil, req, err
	}
	if r.ContentLength == 0 {
		return id, req, nil
	}
	if err := h.decodeAndValidate(w, r, &req); err != nil {
		return uuid.Nil, req, err
	}
	return id, req, nil
}

// GetCenterStock handles GET /api/v1/center-stock/{centerId}/{productId}
func (h *StockUsageHandler) GetCenterStock(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	centerID, err := pathUUID(r, "centerId")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	productID, err := pathUUID(r, "productId")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	ledger, err := h.service.GetCenterStock(r.Context(), actor, centerID, productID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondOK(w, http.StatusOK, "", ledger)
}

// Request DTOs

// Item fields are checked by the service so one bad item does not sink
// the rest of the batch.

type UsageTargetDTO struct {
	Kind string     `json:"kind"`
	ID   *uuid.UUID `json:"id,omitempty"`
}

type UsageItemDTO struct {
	CenterID      *uuid.UUID     `json:"centerId,omitempty"`
	ProductID     uuid.UUID      `json:"productId"`
	Quantity      int            `json:"quantity"`
	SerialNumbers []string       `json:"serialNumbers,omitempty"`
	Target        UsageTargetDTO `json:"target"`
	Remark        string         `json:"remark,omitempty"`
}

// CreateUsageRequest is the body of POST /stock-usage
type CreateUsageRequest struct {
	Items []UsageItemDTO `json:"items" validate:"required"`
}

func (req *CreateUsageRequest) ToDomain() []ports.UsageItem {
	items := make([]ports.UsageItem, len(req.Items))
	for i, it := range req.Items {
		items[i] = ports.UsageItem{
			CenterID:      it.CenterID,
			ProductID:     it.ProductID,
			Quantity:      it.Quantity,
			SerialNumbers: it.SerialNumbers,
			TargetKind:    domain.EntityKind(it.Target.Kind),
			Remark:        it.Remark,
		}
		if it.Target.ID != nil {
			items[i].TargetID = *it.Target.ID
		}
	}
	return items
}

// DecisionRequest is the optional body of approve and reject
type DecisionRequest struct {
	Remark string `json:"remark,omitempty" validate:"max=1000"`
}
