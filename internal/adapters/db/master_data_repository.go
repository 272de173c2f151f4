// internal/adapters/db/master_data_repository.go
package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ammerola/fieldstock-be/internal/core/domain"
	"github.com/ammerola/fieldstock-be/internal/core/ports"
)

// MasterDataRepository reads the product, center and reseller rows owned
// by the master-data service. The upserts exist for the seeder only.
type MasterDataRepository struct {
	db     *Database
	logger *slog.Logger
}

var (
	_ ports.ProductCatalog  = (*MasterDataRepository)(nil)
	_ ports.CenterDirectory = (*MasterDataRepository)(nil)
)

func NewMasterDataRepository(db *Database, logger *slog.Logger) *MasterDataRepository {
	return &MasterDataRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "master_data")),
	}
}

func (r *MasterDataRepository) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	row := r.db.QueryRow(ctx, `SELECT id, sku, name, serialized, enabled FROM products WHERE id = $1`, id)
	p, err := ScanOne(row, func(row pgx.Row) (*domain.Product, error) {
		p := &domain.Product{}
		return p, row.Scan(&p.ID, &p.SKU, &p.Name, &p.Serialized, &p.Enabled)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return p, nil
}

func (r *MasterDataRepository) GetCenter(ctx context.Context, id uuid.UUID) (*domain.Center, error) {
	row := r.db.QueryRow(ctx, `SELECT id, name, center_type, active FROM centers WHERE id = $1`, id)
	c, err := ScanOne(row, func(row pgx.Row) (*domain.Center, error) {
		c := &domain.Center{}
		return c, row.Scan(&c.ID, &c.Name, &c.Type, &c.Active)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get center: %w", err)
	}
	return c, nil
}

func (r *MasterDataRepository) GetReseller(ctx context.Context, id uuid.UUID) (*domain.Reseller, error) {
	row := r.db.QueryRow(ctx, `SELECT id, name, outlet_center_id, active FROM resellers WHERE id = $1`, id)
	res, err := ScanOne(row, func(row pgx.Row) (*domain.Reseller, error) {
		res := &domain.Reseller{}
		return res, row.Scan(&res.ID, &res.Name, &res.OutletCenterID, &res.Active)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get reseller: %w", err)
	}
	return res, nil
}

func (r *MasterDataRepository) UpsertCenter(ctx context.Context, c *domain.Center) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO centers (id, name, center_type, active) VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, center_type = EXCLUDED.center_type, active = EXCLUDED.active`,
		c.ID, c.Name, c.Type, c.Active)
	if err != nil {
		return fmt.Errorf("failed to upsert center: %w", err)
	}
	return nil
}

func (r *MasterDataRepository) UpsertProduct(ctx context.Context, p *domain.Product) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO products (id, sku, name, serialized, enabled) VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET sku = EXCLUDED.sku, name = EXCLUDED.name,
			serialized = EXCLUDED.serialized, enabled = EXCLUDED.enabled`,
		p.ID, p.SKU, p.Name, p.Serialized, p.Enabled)
	if err != nil {
		return fmt.Errorf("failed to upsert product: %w", err)
	}
	return nil
}

func (r *MasterDataRepository) UpsertReseller(ctx context.Context, res *domain.Reseller) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO resellers (id, name, outlet_center_id, active) VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name,
			outlet_center_id = EXCLUDED.outlet_center_id, active = EXCLUDED.active`,
		res.ID, res.Name, res.OutletCenterID, res.Active)
	if err != nil {
		return fmt.Errorf("failed to upsert reseller: %w", err)
	}
	return nil
}
