// internal/handlers/faulty_stock.go
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ammerola/fieldstock-be/internal/core/domain"
	"github.com/ammerola/fieldstock-be/internal/core/ports"
)

// FaultyStockHandler drives faulty stock through repair and back
type FaultyStockHandler struct {
	baseHandler
	service ports.RepairService
}

func NewFaultyStockHandler(service ports.RepairService, opts Options, logger *slog.Logger) *FaultyStockHandler {
	return &FaultyStockHandler{
		baseHandler: newBaseHandler(logger, "faulty_stock", opts),
		service:     service,
	}
}

// TransferToRepairCenter handles POST /api/v1/faulty-stock/transfer
func (h *FaultyStockHandler) TransferToRepairCenter(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req RepairTransferRequest
	if err := h.decodeAndValidate(w, r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := h.checkBatchSize(len(req.Items)); err != nil {
		h.respondError(w, r, err)
		return
	}

	result, err := h.service.TransferToRepairCenter(r.Context(), actor, req.ToDomain())
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respondBatch(w, r, "transferred", result.Succeeded, len(result.Succeeded), result.Total, result.Errors, map[string]any{
		"repairCenter":  result.RepairCenter,
		"totalQuantity": result.TotalQuantity,
	})
}

// MarkRepaired handles POST /api/v1/faulty-stock/mark-repaired
func (h *FaultyStockHandler) MarkRepaired(w http.ResponseWriter, r *http.Request) {
	h.markOutcome(w, r, domain.SerialRepaired)
}

// MarkIrreparable handles POST /api/v1/faulty-stock/mark-irreparable
func (h *FaultyStockHandler) MarkIrreparable(w http.ResponseWriter, r *http.Request) {
	h.markOutcome(w, r, domain.SerialIrreparable)
}

func (h *FaultyStockHandler) markOutcome(w http.ResponseWriter, r *http.Request, final domain.SerialStatus) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req MarkOutcomeRequest
	if err := h.decodeAndValidate(w, r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := h.checkBatchSize(len(req.Items)); err != nil {
		h.respondError(w, r, err)
		return
	}

	result := h.service.MarkOutcome(r.Context(), actor, req.ToDomain(final))
	h.respondBatch(w, r, "updated", result.Succeeded, len(result.Succeeded), result.Total, result.Errors, map[string]any{
		"finalStatus": final,
	})
}

// ReturnFromRepairCenter handles POST /api/v1/faulty-stock/return-from-repair
func (h *FaultyStockHandler) ReturnFromRepairCenter(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req ReturnRequest
	if err := h.decodeAndValidate(w, r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := h.checkBatchSize(len(req.Items)); err != nil {
		h.respondError(w, r, err)
		return
	}

	result := h.service.ReturnFromRepairCenter(r.Context(), actor, req.ToDomain(), req.ReturnRemark)
	h.respondBatch(w, r, "returned", result.Succeeded, len(result.Succeeded), result.Total, result.Errors, nil)
}

// TransferToOutlet handles POST /api/v1/faulty-stock/transfer-to-outlet
func (h *FaultyStockHandler) TransferToOutlet(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req OutletTransferRequest
	if err := h.decodeAndValidate(w, r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := h.checkBatchSize(len(req.Items)); err != nil {
		h.respondError(w, r, err)
		return
	}

	result, err := h.service.TransferToOutlet(r.Context(), actor, req.OutletID, onwardItems(req.Items), req.Remark)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondBatch(w, r, "transferred", result.Succeeded, len(result.Succeeded), result.Total, result.Errors, map[string]any{
		"outletId": req.OutletID,
	})
}

// TransferToReseller handles POST /api/v1/faulty-stock/transfer-to-reseller
func (h *FaultyStockHandler) TransferToReseller(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req ResellerTransferRequest
	if err := h.decodeAndValidate(w, r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := h.checkBatchSize(len(req.Items)); err != nil {
		h.respondError(w, r, err)
		return
	}

	result, err := h.service.TransferToReseller(r.Context(), actor, req.ResellerID, onwardItems(req.Items), req.Remark)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondBatch(w, r, "transferred", result.Succeeded, len(result.Succeeded), result.Total, result.Errors, map[string]any{
		"resellerId": req.ResellerID,
	})
}

// Request DTOs. Item fields are validated per item by the service.

type RepairTransferItemDTO struct {
	ProductID     uuid.UUID  `json:"productId"`
	Quantity      int        `json:"quantity"`
	SerialNumbers []string   `json:"serialNumbers,omitempty"`
	DamageRemark  string     `json:"damageRemark,omitempty"`
	CenterID      *uuid.UUID `json:"centerId,omitempty"`
}

// RepairTransferRequest is the body of POST /faulty-stock/transfer
type RepairTransferRequest struct {
	Items          []RepairTransferItemDTO `json:"items" validate:"required"`
	RepairCenterID uuid.UUID               `json:"repairCenterId" validate:"required"`
	TransferRemark string                  `json:"transferRemark,omitempty" validate:"max=1000"`
}

func (req *RepairTransferRequest) ToDomain() ports.RepairTransferRequest {
	items := make([]ports.RepairTransferItem, len(req.Items))
	for i, it := range req.Items {
		items[i] = ports.RepairTransferItem{
			ProductID:     it.ProductID,
			Quantity:      it.Quantity,
			SerialNumbers: it.SerialNumbers,
			DamageRemark:  it.DamageRemark,
			CenterID:      it.CenterID,
		}
	}
	return ports.RepairTransferRequest{
		Items:          items,
		RepairCenterID: req.RepairCenterID,
		TransferRemark: req.TransferRemark,
	}
}

type OutcomeItemDTO struct {
	RepairTransferID *uuid.UUID      `json:"repairTransferId,omitempty"`
	ProductID        uuid.UUID       `json:"productId"`
	CenterID         *uuid.UUID      `json:"centerId,omitempty"`
	Quantity         int             `json:"quantity"`
	SerialNumbers    []string        `json:"serialNumbers,omitempty"`
	RepairCost       decimal.Decimal `json:"repairCost"`
	Remark           string          `json:"remark,omitempty"`
}

// MarkOutcomeRequest is the body of mark-repaired and mark-irreparable
type MarkOutcomeRequest struct {
	Items []OutcomeItemDTO `json:"items" validate:"required"`
}

func (req *MarkOutcomeRequest) ToDomain(final domain.SerialStatus) []ports.OutcomeItem {
	items := make([]ports.OutcomeItem, len(req.Items))
	for i, it := range req.Items {
		items[i] = ports.OutcomeItem{
			RepairTransferID: it.RepairTransferID,
			ProductID:        it.ProductID,
			CenterID:         it.CenterID,
			Quantity:         it.Quantity,
			SerialNumbers:    it.SerialNumbers,
			FinalStatus:      final,
			RepairCost:       it.RepairCost,
			Remark:           it.Remark,
		}
	}
	return items
}

type ReturnItemDTO struct {
	RepairTransferID uuid.UUID       `json:"repairTransferId"`
	ProductID        uuid.UUID       `json:"productId"`
	Quantity         int             `json:"quantity"`
	SerialNumbers    []string        `json:"serialNumbers,omitempty"`
	FinalStatus      string          `json:"finalStatus"`
	RepairCost       decimal.Decimal `json:"repairCost"`
	RepairRemark     string          `json:"repairRemark,omitempty"`
}

// ReturnRequest is the body of POST /faulty-stock/return-from-repair
type ReturnRequest struct {
	Items        []ReturnItemDTO `json:"items" validate:"required"`
	ReturnRemark string          `json:"returnRemark,omitempty" validate:"max=1000"`
}

func (req *ReturnRequest) ToDomain() []ports.ReturnItem {
	items := make([]ports.ReturnItem, len(req.Items))
	for i, it := range req.Items {
		items[i] = ports.ReturnItem{
			RepairTransferID: it.RepairTransferID,
			ProductID:        it.ProductID,
			Quantity:         it.Quantity,
			SerialNumbers:    it.SerialNumbers,
			FinalStatus:      domain.SerialStatus(it.FinalStatus),
			RepairCost:       it.RepairCost,
			RepairRemark:     it.RepairRemark,
		}
	}
	return items
}

type OnwardItemDTO struct {
	RepairTransferID uuid.UUID `json:"repairTransferId"`
	Quantity         int       `json:"quantity"`
	SerialNumbers    []string  `json:"serialNumbers,omitempty"`
}

// OutletTransferRequest is the body of POST /faulty-stock/transfer-to-outlet
type OutletTransferRequest struct {
	OutletID uuid.UUID       `json:"outletId" validate:"required"`
	Items    []OnwardItemDTO `json:"items" validate:"required"`
	Remark   string          `json:"remark,omitempty" validate:"max=1000"`
}

// ResellerTransferRequest is the body of POST /faulty-stock/transfer-to-reseller
type ResellerTransferRequest struct {
	ResellerID uuid.UUID       `json:"resellerId" validate:"required"`
	Items      []OnwardItemDTO `json:"items" validate:"required"`
	Remark     string          `json:"remark,omitempty" validate:"max=1000"`
}

func onwardItems(in []OnwardItemDTO) []ports.OnwardItem {
	items := make([]ports.OnwardItem, len(in))
	for i, it := range in {
		items[i] = ports.OnwardItem{
			RepairTransferID: it.RepairTransferID,
			Quantity:         it.Quantity,
			SerialNumbers:    it.SerialNumbers,
		}
	}
	return items
}
