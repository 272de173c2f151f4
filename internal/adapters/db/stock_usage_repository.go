// internal/adapters/db/stock_usage_repository.go
package db

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ammerola/fieldstock-be/internal/core/domain"
	"github.com/ammerola/fieldstock-be/internal/core/ports"
)

type stockUsageRepository struct {
	baseRepository
}

var _ ports.StockUsageRepository = (*stockUsageRepository)(nil)

var usageColumns = []string{
	"id", "center_id", "product_id", "entity_type", "entity_id", "quantity",
	"serial_numbers", "status", "remark", "reported_by", "decided_by", "decision_remark",
	"faulty_stock_id", "version", "created_at", "updated_at", "decided_at",
}

var usageSortColumns = map[string]string{
	"created":  "created_at",
	"updated":  "updated_at",
	"quantity": "quantity",
}

func scanUsage(row pgx.Row) (*domain.StockUsage, error) {
	u := &domain.StockUsage{}
	var (
		entityType domain.EntityKind
		entityID   uuid.UUID
	)
	err := row.Scan(
		&u.ID, &u.CenterID, &u.ProductID, &entityType, &entityID, &u.Quantity,
		&u.SerialNumbers, &u.Status, &u.Remark, &u.ReportedBy, &u.DecidedBy, &u.DecisionRemark,
		&u.FaultyStockID, &u.Version, &u.CreatedAt, &u.UpdatedAt, &u.DecidedAt,
	)
	if err != nil {
		return nil, err
	}
	target, err := domain.NewUsageTarget(entityType, entityID, u.CenterID)
	if err != nil {
		return nil, fmt.Errorf("usage %s has a corrupt target: %w", u.ID, err)
	}
	u.Target = target
	if u.SerialNumbers == nil {
		u.SerialNumbers = []string{}
	}
	return u, nil
}

func (r *stockUsageRepository) Create(ctx context.Context, u *domain.StockUsage) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_usages (
			id, center_id, product_id, entity_type, entity_id, quantity,
			serial_numbers, status, remark, reported_by, decided_by, decision_remark,
			faulty_stock_id, version, created_at, updated_at, decided_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		u.ID, u.CenterID, u.ProductID, u.Target.Kind(), u.Target.EntityID(), u.Quantity,
		u.SerialNumbers, u.Status, u.Remark, u.ReportedBy, u.DecidedBy, u.DecisionRemark,
		u.FaultyStockID, u.Version, u.CreatedAt, u.UpdatedAt, u.DecidedAt,
	)
	if err != nil {
		return writeError("failed to create stock usage", err)
	}
	return nil
}

func (r *stockUsageRepository) Save(ctx context.Context, u *domain.StockUsage) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE stock_usages SET
			serial_numbers = $3, status = $4, decided_by = $5, decision_remark = $6,
			faulty_stock_id = $7, updated_at = $8, decided_at = $9,
			version = version + 1
		WHERE id = $1 AND version = $2`,
		u.ID, u.Version, u.SerialNumbers, u.Status, u.DecidedBy, u.DecisionRemark,
		u.FaultyStockID, u.UpdatedAt, u.DecidedAt,
	)
	if err != nil {
		return writeError("failed to save stock usage", err)
	}
	if err := versionCheck(tag); err != nil {
		return fmt.Errorf("stock usage %s: %w", u.ID, err)
	}
	u.Version++
	return nil
}

func (r *stockUsageRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.StockUsage, error) {
	query, args, err := r.lockingSelect(
		psql.Select(usageColumns...).From("stock_usages").Where(squirrel.Eq{"id": id}),
	).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build usage query: %w", err)
	}

	u, err := ScanOne(r.q.QueryRow(ctx, query, args...), scanUsage)
	if err != nil {
		return nil, fmt.Errorf("failed to get stock usage: %w", err)
	}
	return u, nil
}

func applyUsageFilter(qb squirrel.SelectBuilder, f ports.UsageFilter) squirrel.SelectBuilder {
	if f.CenterID != nil {
		qb = qb.Where(squirrel.Eq{"center_id": *f.CenterID})
	}
	if f.ProductID != nil {
		qb = qb.Where(squirrel.Eq{"product_id": *f.ProductID})
	}
	if f.Status != nil {
		qb = qb.Where(squirrel.Eq{"status": *f.Status})
	}
	if f.EntityType != nil {
		qb = qb.Where(squirrel.Eq{"entity_type": *f.EntityType})
	}
	return qb
}

func (r *stockUsageRepository) List(ctx context.Context, filter ports.UsageFilter) (*ports.ListResult[*domain.StockUsage], error) {
	page, size, offset := pageOf(filter.PageParams)

	countSQL, countArgs, err := applyUsageFilter(psql.Select("COUNT(*)").From("stock_usages"), filter).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build count query: %w", err)
	}
	var total int64
	if err := r.q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count stock usages: %w", err)
	}

	query, args, err := applyUsageFilter(psql.Select(usageColumns...).From("stock_usages"), filter).
		OrderBy(orderBy(filter.PageParams, usageSortColumns, "created_at DESC"), "id").
		Limit(uint64(size)).
		Offset(offset).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build usage list query: %w", err)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list stock usages: %w", err)
	}
	items, err := ScanMany(rows, func(row pgx.Rows) (*domain.StockUsage, error) { return scanUsage(row) })
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*domain.StockUsage{}
	}

	return &ports.ListResult[*domain.StockUsage]{
		Items:      items,
		Page:       page,
		PageSize:   size,
		TotalCount: total,
		TotalPages: totalPages(total, size),
	}, nil
}
