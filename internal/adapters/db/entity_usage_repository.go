// internal/adapters/db/entity_usage_repository.go
package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ammerola/fieldstock-be/internal/core/domain"
	"github.com/ammerola/fieldstock-be/internal/core/ports"
)

type entityUsageRepository struct {
	baseRepository
}

var _ ports.EntityUsageRepository = (*entityUsageRepository)(nil)

func scanEntityUsage(row pgx.Row) (*domain.EntityStockUsage, error) {
	e := &domain.EntityStockUsage{}
	var serials, assignments []byte
	err := row.Scan(
		&e.ID, &e.EntityType, &e.EntityID, &e.ProductID, &e.TotalQuantity,
		&serials, &assignments, &e.Version, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := unmarshalJSON(serials, &e.SerialNumbers); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(assignments, &e.Assignments); err != nil {
		return nil, err
	}
	return e, nil
}

func (r *entityUsageRepository) Get(ctx context.Context, kind domain.EntityKind, entityID, productID uuid.UUID) (*domain.EntityStockUsage, error) {
	query := r.locking(`
		SELECT id, entity_type, entity_id, product_id, total_quantity,
			serial_numbers, assignments, version, created_at, updated_at
		FROM entity_stock_usages
		WHERE entity_type = $1 AND entity_id = $2 AND product_id = $3`)

	e, err := ScanOne(r.q.QueryRow(ctx, query, kind, entityID, productID), scanEntityUsage)
	if err != nil {
		return nil, fmt.Errorf("failed to get entity usage: %w", err)
	}
	return e, nil
}

func (r *entityUsageRepository) Create(ctx context.Context, e *domain.EntityStockUsage) error {
	serials, err := marshalJSON(e.SerialNumbers)
	if err != nil {
		return err
	}
	assignments, err := marshalJSON(e.Assignments)
	if err != nil {
		return err
	}

	_, err = r.q.Exec(ctx, `
		INSERT INTO entity_stock_usages (
			id, entity_type, entity_id, product_id, total_quantity,
			serial_numbers, assignments, version, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		e.ID, e.EntityType, e.EntityID, e.ProductID, e.TotalQuantity,
		serials, assignments, e.Version, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return writeError("failed to create entity usage", err)
	}
	return nil
}

func (r *entityUsageRepository) Save(ctx context.Context, e *domain.EntityStockUsage) error {
	serials, err := marshalJSON(e.SerialNumbers)
	if err != nil {
		return err
	}
	assignments, err := marshalJSON(e.Assignments)
	if err != nil {
		return err
	}

	tag, err := r.q.Exec(ctx, `
		UPDATE entity_stock_usages SET
			total_quantity = $3, serial_numbers = $4, assignments = $5, updated_at = $6,
			version = version + 1
		WHERE id = $1 AND version = $2`,
		e.ID, e.Version, e.TotalQuantity, serials, assignments, e.UpdatedAt,
	)
	if err != nil {
		return writeError("failed to save entity usage", err)
	}
	if err := versionCheck(tag); err != nil {
		return fmt.Errorf("entity usage %s: %w", e.ID, err)
	}
	e.Version++
	return nil
}
