// internal/core/ports/stock_service.go
package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ammerola/fieldstock-be/internal/core/domain"
)

// BatchError describes one failed item of a batch request
type BatchError struct {
	Index     int              `json:"index"`
	ProductID string           `json:"productId,omitempty"`
	Code      domain.ErrorCode `json:"code"`
	Error     string           `json:"error"`
}

// BatchResult collects the outcome of a sequential batch. Succeeded keeps
// input order; Errors carries the index of every failed item.
type BatchResult[T any] struct {
	Succeeded []T          `json:"succeeded"`
	Errors    []BatchError `json:"errors,omitempty"`
	Total     int          `json:"totalItems"`
}

// AllFailed is true when the batch had items and none succeeded
func (r *BatchResult[T]) AllFailed() bool {
	return r.Total > 0 && len(r.Errors) == r.Total
}

// UsageItem is one consumption request. CenterID defaults to the actor's
// center. TargetID is ignored for damage, stolen and other.
type UsageItem struct {
	CenterID      *uuid.UUID
	ProductID     uuid.UUID
	Quantity      int
	SerialNumbers []string
	TargetKind    domain.EntityKind
	TargetID      uuid.UUID
	Remark        string
}

// DamageDecision is the result of approving a damage report
type DamageDecision struct {
	Usage       *domain.StockUsage        `json:"usage"`
	FaultyStock *domain.FaultyStockRecord `json:"faultyStock,omitempty"`
}

type StockUsageService interface {
	CreateUsage(ctx context.Context, actor *domain.Actor, items []UsageItem) *BatchResult[*domain.StockUsage]
	ApproveDamage(ctx context.Context, actor *domain.Actor, usageID uuid.UUID, remark string) (*DamageDecision, error)
	RejectDamage(ctx context.Context, actor *domain.Actor, usageID uuid.UUID, remark string) (*domain.StockUsage, error)
	GetUsage(ctx context.Context, actor *domain.Actor, usageID uuid.UUID) (*domain.StockUsage, error)
	ListUsages(ctx context.Context, actor *domain.Actor, filter UsageFilter) (*ListResult[*domain.StockUsage], error)
	GetCenterStock(ctx context.Context, actor *domain.Actor, centerID, productID uuid.UUID) (*domain.StockLedger, error)
}

// RepairTransferItem asks for quantity damaged units of a product to be
// sent to repair. CenterID narrows an all-centers actor to one origin.
type RepairTransferItem struct {
	ProductID     uuid.UUID
	Quantity      int
	SerialNumbers []string
	DamageRemark  string
	CenterID      *uuid.UUID
}

type RepairTransferRequest struct {
	Items          []RepairTransferItem
	RepairCenterID uuid.UUID
	TransferRemark string
}

type RepairTransferResult struct {
	BatchResult[*domain.RepairTransferRecord]
	RepairCenter  *domain.Center `json:"repairCenter"`
	TotalQuantity int            `json:"totalQuantity"`
}

// OutcomeItem marks units of a transfer repaired or irreparable. Without a
// RepairTransferID the oldest open transfer from CenterID is used.
type OutcomeItem struct {
	RepairTransferID *uuid.UUID
	ProductID        uuid.UUID
	CenterID         *uuid.UUID
	Quantity         int
	SerialNumbers    []string
	FinalStatus      domain.SerialStatus
	RepairCost       decimal.Decimal
	Remark           string
}

// ReturnItem records an outcome and brings repaired units home
type ReturnItem struct {
	RepairTransferID uuid.UUID
	ProductID        uuid.UUID
	Quantity         int
	SerialNumbers    []string
	FinalStatus      domain.SerialStatus
	RepairCost       decimal.Decimal
	RepairRemark     string
}

// ReturnOutcome reports what one return item did
type ReturnOutcome struct {
	Transfer        *domain.RepairTransferRecord `json:"transfer"`
	ReturnedQty     int                          `json:"returnedQuantity"`
	ReturnedSerials []string                     `json:"returnedSerials,omitempty"`
}

// OnwardItem moves repaired units of a transfer to an outlet or reseller
type OnwardItem struct {
	RepairTransferID uuid.UUID
	Quantity         int
	SerialNumbers    []string
}

// OnwardOutcome reports one onward transfer item
type OnwardOutcome struct {
	Transfer         *domain.RepairTransferRecord `json:"transfer"`
	Destination      *domain.StockLedger          `json:"destination"`
	Quantity         int                          `json:"quantity"`
	SerialNumbers    []string                     `json:"serialNumbers,omitempty"`
	// UntrackedSerials moved onward without a copy in the origin center ledger
	UntrackedSerials []string                     `json:"untrackedSerials,omitempty"`
}

type RepairService interface {
	TransferToRepairCenter(ctx context.Context, actor *domain.Actor, req RepairTransferRequest) (*RepairTransferResult, error)
	MarkOutcome(ctx context.Context, actor *domain.Actor, items []OutcomeItem) *BatchResult[*domain.RepairTransferRecord]
	ReturnFromRepairCenter(ctx context.Context, actor *domain.Actor, items []ReturnItem, returnRemark string) *BatchResult[*ReturnOutcome]
	TransferToOutlet(ctx context.Context, actor *domain.Actor, outletID uuid.UUID, items []OnwardItem, remark string) (*BatchResult[*OnwardOutcome], error)
	TransferToReseller(ctx context.Context, actor *domain.Actor, resellerID uuid.UUID, items []OnwardItem, remark string) (*BatchResult[*OnwardOutcome], error)
}

// SerialEntry is one serial as seen by the most recently updated record
// holding it
type SerialEntry struct {
	SerialNumber    string              `json:"serialNumber"`
	Status          domain.SerialStatus `json:"status"`
	CenterID        uuid.UUID           `json:"centerId"`
	CurrentLocation uuid.UUID           `json:"currentLocation"`
	Source          string              `json:"source"`
	SourceID        uuid.UUID           `json:"sourceId"`
	UpdatedAt       time.Time           `json:"updatedAt"`
}

type SerialsReport struct {
	ProductID uuid.UUID                                       `json:"productId"`
	Serials   []SerialEntry                                   `json:"serials"`
	Summary   map[uuid.UUID]map[domain.SerialStatus]int       `json:"summary"`
}

type SerialsQuery struct {
	ProductID uuid.UUID
	CenterID  *uuid.UUID
	Status    *domain.SerialStatus
}

type RepairTransferQuery struct {
	CenterID *uuid.UUID
	Status   *domain.RepairStatus
	PageParams
}

// RepairTransferPage is a page of transfers plus a per-status dashboard
// over every transfer of the center.
type RepairTransferPage struct {
	*ListResult[*domain.RepairTransferRecord]
	Dashboard map[domain.RepairStatus]StatusSummary `json:"dashboard"`
}

// ProductQuantity is a per-product, per-center total
type ProductQuantity struct {
	ProductID uuid.UUID       `json:"productId"`
	CenterID  uuid.UUID       `json:"centerId"`
	Quantity  int             `json:"quantity"`
	Cost      decimal.Decimal `json:"cost"`
}

type ReportingService interface {
	Serials(ctx context.Context, actor *domain.Actor, q SerialsQuery) (*SerialsReport, error)
	RepairTransfersForCenter(ctx context.Context, actor *domain.Actor, q RepairTransferQuery) (*RepairTransferPage, error)
	UnderRepair(ctx context.Context, actor *domain.Actor, centerID *uuid.UUID) ([]ProductQuantity, error)
	RepairedInPeriod(ctx context.Context, actor *domain.Actor, from, to time.Time, centerID *uuid.UUID) ([]ProductQuantity, error)
	ExportRepairTransfers(ctx context.Context, actor *domain.Actor, req domain.ExportRequest) ([]*domain.RepairTransferRecord, error)
	RequestExport(ctx context.Context, actor *domain.Actor, req domain.ExportRequest) (string, error)
	RequestLedgerAudit(ctx context.Context, actor *domain.Actor, req domain.AuditRequest) (string, error)
	InvalidateRepairViews(ctx context.Context) error
}
