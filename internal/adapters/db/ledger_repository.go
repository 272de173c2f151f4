// internal/adapters/db/ledger_repository.go
package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ammerola/fieldstock-be/internal/core/domain"
	"github.com/ammerola/fieldstock-be/internal/core/ports"
)

// ledgerRepository implements ports.LedgerRepository over stock_ledgers.
// Center, outlet and reseller ledgers share the table, keyed by kind.
type ledgerRepository struct {
	baseRepository
}

var _ ports.LedgerRepository = (*ledgerRepository)(nil)

var ledgerColumns = []string{
	"id", "kind", "owner_id", "location_id", "product_id",
	"total_quantity", "available_quantity", "consumed_quantity",
	"serial_numbers", "version", "created_at", "updated_at",
}

func scanLedger(row pgx.Row) (*domain.StockLedger, error) {
	l := &domain.StockLedger{}
	var serials []byte
	err := row.Scan(
		&l.ID, &l.Kind, &l.OwnerID, &l.LocationID, &l.ProductID,
		&l.TotalQuantity, &l.AvailableQuantity, &l.ConsumedQuantity,
		&serials, &l.Version, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := unmarshalJSON(serials, &l.SerialNumbers); err != nil {
		return nil, err
	}
	return l, nil
}

func (r *ledgerRepository) Get(ctx context.Context, kind domain.LedgerKind, ownerID, productID uuid.UUID) (*domain.StockLedger, error) {
	query, args, err := r.lockingSelect(
		psql.Select(ledgerColumns...).
			From("stock_ledgers").
			Where(squirrel.Eq{"kind": kind, "owner_id": ownerID, "product_id": productID}),
	).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build ledger query: %w", err)
	}

	ledger, err := ScanOne(r.q.QueryRow(ctx, query, args...), scanLedger)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s ledger: %w", kind, err)
	}
	return ledger, nil
}

func (r *ledgerRepository) Create(ctx context.Context, l *domain.StockLedger) error {
	serials, err := marshalJSON(l.SerialNumbers)
	if err != nil {
		return err
	}

	_, err = r.q.Exec(ctx, `
		INSERT INTO stock_ledgers (
			id, kind, owner_id, location_id, product_id,
			total_quantity, available_quantity, consumed_quantity,
			serial_numbers, version, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		l.ID, l.Kind, l.OwnerID, l.LocationID, l.ProductID,
		l.TotalQuantity, l.AvailableQuantity, l.ConsumedQuantity,
		serials, l.Version, l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		return writeError("failed to create ledger", err)
	}

	r.logger.DebugContext(ctx, "ledger created",
		slog.String("kind", string(l.Kind)),
		slog.String("owner_id", l.OwnerID.String()),
		slog.String("product_id", l.ProductID.String()))
	return nil
}

func (r *ledgerRepository) Save(ctx context.Context, l *domain.StockLedger) error {
	serials, err := marshalJSON(l.SerialNumbers)
	if err != nil {
		return err
	}

	tag, err := r.q.Exec(ctx, `
		UPDATE stock_ledgers SET
			location_id = $3, total_quantity = $4, available_quantity = $5,
			consumed_quantity = $6, serial_numbers = $7, updated_at = $8,
			version = version + 1
		WHERE id = $1 AND version = $2`,
		l.ID, l.Version, l.LocationID, l.TotalQuantity, l.AvailableQuantity,
		l.ConsumedQuantity, serials, l.UpdatedAt,
	)
	if err != nil {
		return writeError("failed to save ledger", err)
	}
	if err := versionCheck(tag); err != nil {
		return fmt.Errorf("ledger %s: %w", l.ID, err)
	}
	l.Version++
	return nil
}

func (r *ledgerRepository) List(ctx context.Context, filter ports.LedgerFilter) ([]*domain.StockLedger, error) {
	qb := psql.Select(ledgerColumns...).From("stock_ledgers").OrderBy("kind", "owner_id", "product_id")

	if filter.Kind != nil {
		qb = qb.Where(squirrel.Eq{"kind": *filter.Kind})
	}
	if filter.OwnerID != nil {
		qb = qb.Where(squirrel.Eq{"owner_id": *filter.OwnerID})
	}
	if filter.ProductID != nil {
		qb = qb.Where(squirrel.Eq{"product_id": *filter.ProductID})
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build ledger list query: %w", err)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledgers: %w", err)
	}
	return ScanMany(rows, func(row pgx.Rows) (*domain.StockLedger, error) { return scanLedger(row) })
}
