// internal/adapters/db/unit_of_work.go
package db

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/ammerola/fieldstock-be/internal/core/ports"
)

type stockStore struct {
	ledgers     *ledgerRepository
	faulty      *faultyStockRepository
	repairs     *repairTransferRepository
	usages      *stockUsageRepository
	entityUsage *entityUsageRepository
}

var _ ports.StockStore = (*stockStore)(nil)

func newStockStore(q Querier, lock bool, logger *slog.Logger) *stockStore {
	base := baseRepository{q: q, lock: lock, logger: logger}
	return &stockStore{
		ledgers:     &ledgerRepository{base},
		faulty:      &faultyStockRepository{base},
		repairs:     &repairTransferRepository{base},
		usages:      &stockUsageRepository{base},
		entityUsage: &entityUsageRepository{base},
	}
}

// NewStockStore returns repositories reading straight from the pool. Use
// it for reports and lookups; mutations go through NewUnitOfWork.
func NewStockStore(db *Database, logger *slog.Logger) ports.StockStore {
	return newStockStore(db.Pool(), false, logger.With(slog.String("repository", "stock")))
}

func (s *stockStore) Ledgers() ports.LedgerRepository { return s.ledgers }
func (s *stockStore) Faulty() ports.FaultyStockRepository { return s.faulty }
func (s *stockStore) Repairs() ports.RepairTransferRepository { return s.repairs }
func (s *stockStore) Usages() ports.StockUsageRepository { return s.usages }
func (s *stockStore) EntityUsage() ports.EntityUsageRepository { return s.entityUsage }

type unitOfWork struct {
	db     *Database
	logger *slog.Logger
}

var _ ports.UnitOfWork = (*unitOfWork)(nil)

// NewUnitOfWork returns a UnitOfWork over db. Repositories handed to the
// callback share one transaction and lock the rows they read.
func NewUnitOfWork(db *Database, logger *slog.Logger) ports.UnitOfWork {
	return &unitOfWork{
		db:     db,
		logger: logger.With(slog.String("repository", "stock_tx")),
	}
}

func (u *unitOfWork) Execute(ctx context.Context, fn func(ctx context.Context, store ports.StockStore) error) error {
	return u.db.Transaction(ctx, func(tx pgx.Tx) error {
		return fn(ctx, newStockStore(tx, true, u.logger))
	})
}
