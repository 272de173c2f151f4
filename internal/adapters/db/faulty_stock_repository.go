// internal/adapters/db/faulty_stock_repository.go
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

type faultyStockRepository struct {
	baseRepository
}

var _ ports.FaultyStockRepository = (*faultyStockRepository)(nil)

var faultyColumns = []string{
	"id", "center_id", "product_id", "usage_id", "serialized", "quantity",
	"damaged_qty", "under_repair_qty", "repaired_qty", "irrepaired_qty", "transferred_qty",
	"serial_numbers", "overall_status", "repair_history", "remark", "reported_by",
	"version", "created_at", "updated_at",
}

func scanFaulty(row pgx.Row) (*domain.FaultyStockRecord, error) {
	r := &domain.FaultyStockRecord{}
	var serials, history []byte
	err := row.Scan(
		&r.ID, &r.CenterID, &r.ProductID, &r.UsageID, &r.Serialized, &r.Quantity,
		&r.DamagedQty, &r.UnderRepairQty, &r.RepairedQty, &r.IrrepairedQty, &r.TransferredQty,
		&serials, &r.OverallStatus, &history, &r.Remark, &r.ReportedBy,
		&r.Version, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := unmarshalJSON(serials, &r.SerialNumbers); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(history, &r.RepairHistory); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *faultyStockRepository) Create(ctx context.Context, rec *domain.FaultyStockRecord) error {
	serials, err := marshalJSON(rec.SerialNumbers)
	if err != nil {
		return err
	}
	history, err := marshalJSON(rec.RepairHistory)
	if err != nil {
		return err
	}

	_, err = r.q.Exec(ctx, `
		INSERT INTO faulty_stock (
			id, center_id, product_id, usage_id, serialized, quantity,
			damaged_qty, under_repair_qty, repaired_qty, irrepaired_qty, transferred_qty,
			serial_numbers, overall_status, repair_history, remark, reported_by,
			version, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
		rec.ID, rec.CenterID, rec.ProductID, rec.UsageID, rec.Serialized, rec.Quantity,
		rec.DamagedQty, rec.UnderRepairQty, rec.RepairedQty, rec.IrrepairedQty, rec.TransferredQty,
		serials, rec.OverallStatus, history, rec.Remark, rec.ReportedBy,
		rec.Version, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return writeError("failed to create faulty stock record", err)
	}

	r.logger.DebugContext(ctx, "faulty stock record created",
		slog.String("faulty_stock_id", rec.ID.String()),
		slog.Int("quantity", rec.Quantity))
	return nil
}

func (r *faultyStockRepository) Save(ctx context.Context, rec *domain.FaultyStockRecord) error {
	serials, err := marshalJSON(rec.SerialNumbers)
	if err != nil {
		return err
	}
	history, err := marshalJSON(rec.RepairHistory)
	if err != nil {
		return err
	}

	tag, err := r.q.Exec(ctx, `
		UPDATE faulty_stock SET
			quantity = $3, damaged_qty = $4, under_repair_qty = $5, repaired_qty = $6,
			irrepaired_qty = $7, transferred_qty = $8, serial_numbers = $9,
			overall_status = $10, repair_history = $11, updated_at = $12,
			version = version + 1
		WHERE id = $1 AND version = $2`,
		rec.ID, rec.Version, rec.Quantity, rec.DamagedQty, rec.UnderRepairQty, rec.RepairedQty,
		rec.IrrepairedQty, rec.TransferredQty, serials,
		rec.OverallStatus, history, rec.UpdatedAt,
	)
	if err != nil {
		return writeError("failed to save faulty stock record", err)
	}
	if err := versionCheck(tag); err != nil {
		return fmt.Errorf("faulty stock %s: %w", rec.ID, err)
	}
	rec.Version++
	return nil
}

func (r *faultyStockRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.FaultyStockRecord, error) {
	query, args, err := r.lockingSelect(
		psql.Select(faultyColumns...).From("faulty_stock").Where(squirrel.Eq{"id": id}),
	).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build faulty stock query: %w", err)
	}

	rec, err := ScanOne(r.q.QueryRow(ctx, query, args...), scanFaulty)
	if err != nil {
		return nil, fmt.Errorf("failed to get faulty stock record: %w", err)
	}
	return rec, nil
}

func (r *faultyStockRepository) FindWithDamaged(ctx context.Context, productID uuid.UUID, centerID *uuid.UUID) ([]*domain.FaultyStockRecord, error) {
	qb := psql.Select(faultyColumns...).
		From("faulty_stock").
		Where(squirrel.Eq{"product_id": productID}).
		Where(squirrel.Gt{"damaged_qty": 0}).
		OrderBy("created_at ASC", "id ASC")
	if centerID != nil {
		qb = qb.Where(squirrel.Eq{"center_id": *centerID})
	}

	query, args, err := r.lockingSelect(qb).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build damaged stock query: %w", err)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find damaged stock: %w", err)
	}
	return ScanMany(rows, func(row pgx.Rows) (*domain.FaultyStockRecord, error) { return scanFaulty(row) })
}

func (r *faultyStockRepository) List(ctx context.Context, filter ports.FaultyStockFilter) ([]*domain.FaultyStockRecord, error) {
	qb := psql.Select(faultyColumns...).From("faulty_stock").OrderBy("updated_at DESC", "id")

	if filter.CenterID != nil {
		qb = qb.Where(squirrel.Eq{"center_id": *filter.CenterID})
	}
	if filter.ProductID != nil {
		qb = qb.Where(squirrel.Eq{"product_id": *filter.ProductID})
	}
	if filter.Status != nil {
		qb = qb.Where(squirrel.Eq{"overall_status": *filter.Status})
	}
	if filter.OnlyOpen {
		qb = qb.Where(squirrel.Or{squirrel.Gt{"damaged_qty": 0}, squirrel.Gt{"under_repair_qty": 0}})
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build faulty stock list query: %w", err)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list faulty stock: %w", err)
	}
	return ScanMany(rows, func(row pgx.Rows) (*domain.FaultyStockRecord, error) { return scanFaulty(row) })
}
