// internal/adapters/db/repair_transfer_repository.go
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

type repairTransferRepository struct {
	baseRepository
}

var _ ports.RepairTransferRepository = (*repairTransferRepository)(nil)

var repairColumns = []string{
	"id", "faulty_stock_id", "from_center_id", "to_center_id", "product_id", "serialized", "quantity",
	"damaged_qty", "under_repair_qty", "repaired_qty", "irrepaired_qty", "transferred_qty",
	"serial_numbers", "status", "repair_updates", "damage_remark", "transfer_remark", "created_by",
	"version", "created_at", "updated_at", "returned_at",
}

var repairSortColumns = map[string]string{
	"created":  "created_at",
	"updated":  "updated_at",
	"quantity": "quantity",
	"status":   "status",
}

func scanRepairTransfer(row pgx.Row) (*domain.RepairTransferRecord, error) {
	t := &domain.RepairTransferRecord{}
	var serials, updates []byte
	err := row.Scan(
		&t.ID, &t.FaultyStockID, &t.FromCenterID, &t.ToCenterID, &t.ProductID, &t.Serialized, &t.Quantity,
		&t.DamagedQty, &t.UnderRepairQty, &t.RepairedQty, &t.IrrepairedQty, &t.TransferredQty,
		&serials, &t.Status, &updates, &t.DamageRemark, &t.TransferRemark, &t.CreatedBy,
		&t.Version, &t.CreatedAt, &t.UpdatedAt, &t.ReturnedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := unmarshalJSON(serials, &t.SerialNumbers); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(updates, &t.RepairUpdates); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *repairTransferRepository) Create(ctx context.Context, t *domain.RepairTransferRecord) error {
	serials, err := marshalJSON(t.SerialNumbers)
	if err != nil {
		return err
	}
	updates, err := marshalJSON(t.RepairUpdates)
	if err != nil {
		return err
	}

	_, err = r.q.Exec(ctx, `
		INSERT INTO repair_transfers (
			id, faulty_stock_id, from_center_id, to_center_id, product_id, serialized, quantity,
			damaged_qty, under_repair_qty, repaired_qty, irrepaired_qty, transferred_qty,
			serial_numbers, status, repair_updates, damage_remark, transfer_remark, created_by,
			version, created_at, updated_at, returned_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
			$12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22
		)`,
		t.ID, t.FaultyStockID, t.FromCenterID, t.ToCenterID, t.ProductID, t.Serialized, t.Quantity,
		t.DamagedQty, t.UnderRepairQty, t.RepairedQty, t.IrrepairedQty, t.TransferredQty,
		serials, t.Status, updates, t.DamageRemark, t.TransferRemark, t.CreatedBy,
		t.Version, t.CreatedAt, t.UpdatedAt, t.ReturnedAt,
	)
	if err != nil {
		return writeError("failed to create repair transfer", err)
	}

	r.logger.DebugContext(ctx, "repair transfer created",
		slog.String("repair_transfer_id", t.ID.String()),
		slog.String("faulty_stock_id", t.FaultyStockID.String()),
		slog.Int("quantity", t.Quantity))
	return nil
}

func (r *repairTransferRepository) Save(ctx context.Context, t *domain.RepairTransferRecord) error {
	serials, err := marshalJSON(t.SerialNumbers)
	if err != nil {
		return err
	}
	updates, err := marshalJSON(t.RepairUpdates)
	if err != nil {
		return err
	}

	tag, err := r.q.Exec(ctx, `
		UPDATE repair_transfers SET
			quantity = $3, damaged_qty = $4, under_repair_qty = $5, repaired_qty = $6,
			irrepaired_qty = $7, transferred_qty = $8, serial_numbers = $9, status = $10,
			repair_updates = $11, updated_at = $12, returned_at = $13,
			version = version + 1
		WHERE id = $1 AND version = $2`,
		t.ID, t.Version, t.Quantity, t.DamagedQty, t.UnderRepairQty, t.RepairedQty,
		t.IrrepairedQty, t.TransferredQty, serials, t.Status,
		updates, t.UpdatedAt, t.ReturnedAt,
	)
	if err != nil {
		return writeError("failed to save repair transfer", err)
	}
	if err := versionCheck(tag); err != nil {
		return fmt.Errorf("repair transfer %s: %w", t.ID, err)
	}
	t.Version++
	return nil
}

func (r *repairTransferRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.RepairTransferRecord, error) {
	query, args, err := r.lockingSelect(
		psql.Select(repairColumns...).From("repair_transfers").Where(squirrel.Eq{"id": id}),
	).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build repair transfer query: %w", err)
	}

	t, err := ScanOne(r.q.QueryRow(ctx, query, args...), scanRepairTransfer)
	if err != nil {
		return nil, fmt.Errorf("failed to get repair transfer: %w", err)
	}
	return t, nil
}

func (r *repairTransferRepository) FindOpenForOrigin(ctx context.Context, productID, centerID uuid.UUID) (*domain.RepairTransferRecord, error) {
	query, args, err := r.lockingSelect(
		psql.Select(repairColumns...).
			From("repair_transfers").
			Where(squirrel.Eq{"product_id": productID, "from_center_id": centerID}).
			Where(squirrel.Gt{"under_repair_qty": 0}).
			OrderBy("created_at ASC", "id ASC").
			Limit(1),
	).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build open transfer query: %w", err)
	}

	t, err := ScanOne(r.q.QueryRow(ctx, query, args...), scanRepairTransfer)
	if err != nil {
		return nil, fmt.Errorf("failed to find open repair transfer: %w", err)
	}
	return t, nil
}

func applyRepairFilter(qb squirrel.SelectBuilder, f ports.RepairTransferFilter) squirrel.SelectBuilder {
	if f.FromCenterID != nil {
		qb = qb.Where(squirrel.Eq{"from_center_id": *f.FromCenterID})
	}
	if f.ToCenterID != nil {
		qb = qb.Where(squirrel.Eq{"to_center_id": *f.ToCenterID})
	}
	if f.ProductID != nil {
		qb = qb.Where(squirrel.Eq{"product_id": *f.ProductID})
	}
	if f.Status != nil {
		qb = qb.Where(squirrel.Eq{"status": *f.Status})
	}
	if f.UpdatedFrom != nil {
		qb = qb.Where(squirrel.GtOrEq{"updated_at": *f.UpdatedFrom})
	}
	// A transfer can hold updates inside [from, to] only if it existed
	// before to and was touched after from.
	if f.UpdatedTo != nil {
		qb = qb.Where(squirrel.LtOrEq{"created_at": *f.UpdatedTo})
	}
	return qb
}

func (r *repairTransferRepository) List(ctx context.Context, filter ports.RepairTransferFilter) (*ports.ListResult[*domain.RepairTransferRecord], error) {
	page, size, offset := pageOf(filter.PageParams)

	countSQL, countArgs, err := applyRepairFilter(psql.Select("COUNT(*)").From("repair_transfers"), filter).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build count query: %w", err)
	}
	var total int64
	if err := r.q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count repair transfers: %w", err)
	}

	query, args, err := applyRepairFilter(psql.Select(repairColumns...).From("repair_transfers"), filter).
		OrderBy(orderBy(filter.PageParams, repairSortColumns, "created_at DESC"), "id").
		Limit(uint64(size)).
		Offset(offset).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build repair transfer list query: %w", err)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list repair transfers: %w", err)
	}
	items, err := ScanMany(rows, func(row pgx.Rows) (*domain.RepairTransferRecord, error) { return scanRepairTransfer(row) })
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*domain.RepairTransferRecord{}
	}

	return &ports.ListResult[*domain.RepairTransferRecord]{
		Items:      items,
		Page:       page,
		PageSize:   size,
		TotalCount: total,
		TotalPages: totalPages(total, size),
	}, nil
}

func (r *repairTransferRepository) ListAll(ctx context.Context, filter ports.RepairTransferFilter) ([]*domain.RepairTransferRecord, error) {
	query, args, err := applyRepairFilter(psql.Select(repairColumns...).From("repair_transfers"), filter).
		OrderBy(orderBy(filter.PageParams, repairSortColumns, "created_at DESC"), "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build repair transfer query: %w", err)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list repair transfers: %w", err)
	}
	return ScanMany(rows, func(row pgx.Rows) (*domain.RepairTransferRecord, error) { return scanRepairTransfer(row) })
}

func (r *repairTransferRepository) StatusSummary(ctx context.Context, filter ports.RepairTransferFilter) (map[domain.RepairStatus]ports.StatusSummary, error) {
	filter.Status = nil
	query, args, err := applyRepairFilter(
		psql.Select("status", "COUNT(*)", "COALESCE(SUM(quantity), 0)").From("repair_transfers"), filter,
	).GroupBy("status").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build status summary query: %w", err)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize repair transfers: %w", err)
	}
	defer rows.Close()

	summary := make(map[domain.RepairStatus]ports.StatusSummary)
	for rows.Next() {
		var (
			status domain.RepairStatus
			s      ports.StatusSummary
		)
		if err := rows.Scan(&status, &s.Count, &s.TotalQuantity); err != nil {
			return nil, fmt.Errorf("failed to scan status summary: %w", err)
		}
		summary[status] = s
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return summary, nil
}
