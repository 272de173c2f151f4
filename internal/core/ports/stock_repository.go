// internal/core/ports/stock_repository.go
package ports

import (
	"context"
	"time"

	"github.com/ammerola/fieldstock-be/internal/core/domain"
	"github.com/google/uuid"
)

// Repositories return (nil, nil) when a record does not exist. Save methods
// perform a versioned update and return domain.ErrConcurrentModification
// when the stored version moved on. Inside a UnitOfWork, reads lock the
// rows they return until the transaction ends.

type LedgerRepository interface {
	Get(ctx context.Context, kind domain.LedgerKind, ownerID, productID uuid.UUID) (*domain.StockLedger, error)
	Create(ctx context.Context, ledger *domain.StockLedger) error
	Save(ctx context.Context, ledger *domain.StockLedger) error
	List(ctx context.Context, filter LedgerFilter) ([]*domain.StockLedger, error)
}

type FaultyStockRepository interface {
	Create(ctx context.Context, record *domain.FaultyStockRecord) error
	Save(ctx context.Context, record *domain.FaultyStockRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.FaultyStockRecord, error)
	// FindWithDamaged returns records holding damaged units for product,
	// oldest first, optionally restricted to one center.
	FindWithDamaged(ctx context.Context, productID uuid.UUID, centerID *uuid.UUID) ([]*domain.FaultyStockRecord, error)
	List(ctx context.Context, filter FaultyStockFilter) ([]*domain.FaultyStockRecord, error)
}

type RepairTransferRepository interface {
	Create(ctx context.Context, record *domain.RepairTransferRecord) error
	Save(ctx context.Context, record *domain.RepairTransferRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.RepairTransferRecord, error)
	// FindOpenForOrigin returns the oldest transfer from centerID that still
	// has units under repair.
	FindOpenForOrigin(ctx context.Context, productID, centerID uuid.UUID) (*domain.RepairTransferRecord, error)
	List(ctx context.Context, filter RepairTransferFilter) (*ListResult[*domain.RepairTransferRecord], error)
	ListAll(ctx context.Context, filter RepairTransferFilter) ([]*domain.RepairTransferRecord, error)
	StatusSummary(ctx context.Context, filter RepairTransferFilter) (map[domain.RepairStatus]StatusSummary, error)
}

type StockUsageRepository interface {
	Create(ctx context.Context, usage *domain.StockUsage) error
	Save(ctx context.Context, usage *domain.StockUsage) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.StockUsage, error)
	List(ctx context.Context, filter UsageFilter) (*ListResult[*domain.StockUsage], error)
}

type EntityUsageRepository interface {
	Get(ctx context.Context, kind domain.EntityKind, entityID, productID uuid.UUID) (*domain.EntityStockUsage, error)
	Create(ctx context.Context, usage *domain.EntityStockUsage) error
	Save(ctx context.Context, usage *domain.EntityStockUsage) error
}

// StockStore groups the repositories one logical stock action touches
type StockStore interface {
	Ledgers() LedgerRepository
	Faulty() FaultyStockRepository
	Repairs() RepairTransferRepository
	Usages() StockUsageRepository
	EntityUsage() EntityUsageRepository
}

// UnitOfWork runs fn in a single database transaction. Every write made
// through the store is committed together or not at all.
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(ctx context.Context, store StockStore) error) error
}

// ProductCatalog resolves product master data
type ProductCatalog interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error)
}

// CenterDirectory resolves center and reseller master data
type CenterDirectory interface {
	GetCenter(ctx context.Context, id uuid.UUID) (*domain.Center, error)
	GetReseller(ctx context.Context, id uuid.UUID) (*domain.Reseller, error)
}

// PageParams holds the uniform pagination parameters
type PageParams struct {
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// ListResult holds one page of results
type ListResult[T any] struct {
	Items      []T   `json:"items"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalCount int64 `json:"totalCount"`
	TotalPages int   `json:"totalPages"`
}

type LedgerFilter struct {
	Kind      *domain.LedgerKind
	OwnerID   *uuid.UUID
	ProductID *uuid.UUID
}

type FaultyStockFilter struct {
	CenterID  *uuid.UUID
	ProductID *uuid.UUID
	Status    *domain.RepairStatus
	OnlyOpen  bool
}

type RepairTransferFilter struct {
	FromCenterID *uuid.UUID
	ToCenterID   *uuid.UUID
	ProductID    *uuid.UUID
	Status       *domain.RepairStatus
	UpdatedFrom  *time.Time
	UpdatedTo    *time.Time
	PageParams
}

type UsageFilter struct {
	CenterID   *uuid.UUID
	ProductID  *uuid.UUID
	Status     *domain.UsageStatus
	EntityType *domain.EntityKind
	PageParams
}

// StatusSummary aggregates repair transfers sharing a status
type StatusSummary struct {
	Count         int `json:"count"`
	TotalQuantity int `json:"totalQuantity"`
}
