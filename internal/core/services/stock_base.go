// internal/core/services/stock_base.go
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ammerola/fieldstock-be/internal/core/domain"
	"github.com/ammerola/fieldstock-be/internal/core/ports"
	"github.com/ammerola/fieldstock-be/internal/pkg/metrics"
)

// Deps carries the collaborators shared by the stock services. Locker,
// Tasks, Cache and Metrics are optional.
type Deps struct {
	UoW     ports.UnitOfWork
	Reads   ports.StockStore
	Catalog ports.ProductCatalog
	Centers ports.CenterDirectory
	Locker  ports.Locker
	Tasks   ports.TaskQueue
	Cache   ports.CacheRepository
	Metrics *metrics.Metrics
	Logger  *slog.Logger

	// CacheTTL applies to cached report views
	CacheTTL time.Duration
	// Now defaults to time.Now().UTC
	Now func() time.Time
}

type stockBase struct {
	Deps
	logger *slog.Logger
}

func newStockBase(d Deps, service string) stockBase {
	if d.Now == nil {
		d.Now = func() time.Time { return time.Now().UTC() }
	}
	if d.CacheTTL <= 0 {
		d.CacheTTL = 2 * time.Minute
	}
	return stockBase{Deps: d, logger: d.Logger.With(slog.String("service", service))}
}

func stockKey(centerID, productID uuid.UUID) string {
	return centerID.String() + ":" + productID.String()
}

// withLock runs fn while holding the ledger lock for key
func (b *stockBase) withLock(ctx context.Context, key string, fn func() error) error {
	if b.Locker == nil {
		return fn()
	}
	lock, err := b.Locker.Obtain(ctx, key)
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(ctx); err != nil {
			b.logger.WarnContext(ctx, "failed to release stock lock",
				slog.String("key", key),
				slog.String("error", err.Error()))
		}
	}()
	return fn()
}

// execute runs fn in one transaction under the ledger lock for key
func (b *stockBase) execute(ctx context.Context, key string, fn func(ctx context.Context, store ports.StockStore) error) error {
	return b.withLock(ctx, key, func() error {
		return b.UoW.Execute(ctx, fn)
	})
}

func (b *stockBase) product(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	p, err := b.Catalog.GetProduct(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	if p == nil || !p.Enabled {
		return nil, domain.NewNotFound("product", id)
	}
	return p, nil
}

func (b *stockBase) center(ctx context.Context, id uuid.UUID) (*domain.Center, error) {
	c, err := b.Centers.GetCenter(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load center: %w", err)
	}
	if c == nil || !c.Active {
		return nil, domain.NewNotFound("center", id)
	}
	return c, nil
}

// notify hands n to the task queue after commit. Delivery is best effort.
func (b *stockBase) notify(ctx context.Context, n domain.Notification) {
	if b.Tasks == nil {
		return
	}
	if err := b.Tasks.Notify(ctx, n); err != nil {
		b.logger.WarnContext(ctx, "failed to enqueue notification",
			slog.String("kind", string(n.Kind)),
			slog.String("reference", n.Reference.String()),
			slog.String("error", err.Error()))
	}
}

// invalidateRepairViews drops cached repair reports after a repair write
func (b *stockBase) invalidateRepairViews(ctx context.Context) error {
	if b.Cache == nil {
		return nil
	}
	for _, prefix := range []ports.CacheKeyPrefix{ports.PrefixRepairDashboard, ports.PrefixUnderRepair} {
		if err := b.Cache.DeletePattern(ctx, ports.BuildCacheKey(prefix, "*")); err != nil {
			b.logger.WarnContext(ctx, "failed to invalidate repair views",
				slog.String("prefix", string(prefix)),
				slog.String("error", err.Error()))
			return err
		}
	}
	return nil
}

func (b *stockBase) record(op string, err error) {
	code := "OK"
	if err != nil {
		code = string(domain.ToAppError(err).Code)
	}
	b.Metrics.RecordStockOperation(op, code)
}
