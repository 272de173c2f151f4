// internal/core/services/stock_usage.go
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ammerola/fieldstock-be/internal/core/domain"
	"github.com/ammerola/fieldstock-be/internal/core/ports"
)

// StockUsageService books stock consumption against entities and decides
// damage reports
type StockUsageService struct {
	stockBase
}

var _ ports.StockUsageService = (*StockUsageService)(nil)

func NewStockUsageService(deps Deps) *StockUsageService {
	return &StockUsageService{stockBase: newStockBase(deps, "stock_usage")}
}

// CreateUsage consumes center stock for every item. Damage usage stays
// pending with its units reserved until a decision is made.
func (s *StockUsageService) CreateUsage(ctx context.Context, actor *domain.Actor, items []ports.UsageItem) *ports.BatchResult[*domain.StockUsage] {
	return runBatch(ctx, &s.stockBase, "create_usage", items,
		func(it ports.UsageItem) uuid.UUID { return it.ProductID },
		func(ctx context.Context, it ports.UsageItem) (*domain.StockUsage, error) {
			return s.createOne(ctx, actor, it)
		})
}

func (s *StockUsageService) createOne(ctx context.Context, actor *domain.Actor, it ports.UsageItem) (*domain.StockUsage, error) {
	centerID := actor.CenterID
	if it.CenterID != nil {
		centerID = *it.CenterID
	}
	if err := actor.RequireCenter(domain.CapStockUsageCreate, centerID); err != nil {
		return nil, err
	}
	product, err := s.product(ctx, it.ProductID)
	if err != nil {
		return nil, err
	}
	target, err := domain.NewUsageTarget(it.TargetKind, it.TargetID, centerID)
	if err != nil {
		return nil, err
	}
	now := s.Now()
	usage, err := domain.NewStockUsage(centerID, product.ID, target, it.Quantity, it.Remark, actor.ID, now)
	if err != nil {
		return nil, err
	}

	err = s.execute(ctx, stockKey(centerID, product.ID), func(ctx context.Context, store ports.StockStore) error {
		ledger, err := store.Ledgers().Get(ctx, domain.LedgerCenter, centerID, product.ID)
		if err != nil {
			return err
		}
		if ledger == nil {
			return domain.NewNotFound("center stock", stockKey(centerID, product.ID))
		}

		taken, err := ledger.ReserveOrConsume(product.Serialized, it.Quantity, it.SerialNumbers, usage.ID, actor.ID, now)
		if err != nil {
			return err
		}
		if taken != nil {
			usage.SerialNumbers = taken
		}
		if err := store.Ledgers().Save(ctx, ledger); err != nil {
			return err
		}
		if err := store.Usages().Create(ctx, usage); err != nil {
			return err
		}
		return s.assignToEntity(ctx, store, usage, now)
	})
	if err != nil {
		return nil, err
	}

	s.Metrics.RecordUnitsMoved("usage", usage.Quantity)
	s.logger.InfoContext(ctx, "stock usage recorded",
		slog.String("usage_id", usage.ID.String()),
		slog.String("center_id", centerID.String()),
		slog.String("product_id", product.ID.String()),
		slog.String("target", string(target.Kind())),
		slog.Int("quantity", usage.Quantity),
		slog.String("status", string(usage.Status)))

	if usage.Status == domain.UsagePending {
		s.notify(ctx, usageNotification(domain.NotifyDamageReported, usage))
	}
	return usage, nil
}

func (s *StockUsageService) assignToEntity(ctx context.Context, store ports.StockStore, usage *domain.StockUsage, now time.Time) error {
	repo := store.EntityUsage()
	entity, err := repo.Get(ctx, usage.Target.Kind(), usage.Target.EntityID(), usage.ProductID)
	if err != nil {
		return err
	}
	if entity == nil {
		entity = domain.NewEntityStockUsage(usage.Target, usage.ProductID, now)
		entity.Assign(usage.ID, usage.Quantity, usage.SerialNumbers, now)
		return repo.Create(ctx, entity)
	}
	entity.Assign(usage.ID, usage.Quantity, usage.SerialNumbers, now)
	return repo.Save(ctx, entity)
}

// decisionTarget loads a usage for approve/reject and checks the caller may
// decide it
func (s *StockUsageService) decisionTarget(ctx context.Context, actor *domain.Actor, usageID uuid.UUID) (*domain.StockUsage, *domain.Product, error) {
	usage, err := s.Reads.Usages().GetByID(ctx, usageID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load usage: %w", err)
	}
	if usage == nil {
		return nil, nil, domain.NewNotFound("stock usage", usageID)
	}
	if err := actor.RequireCenter(domain.CapDamageDecide, usage.CenterID); err != nil {
		return nil, nil, err
	}
	if err := usage.CanDecide(); err != nil {
		return nil, nil, err
	}
	product, err := s.Catalog.GetProduct(ctx, usage.ProductID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load product: %w", err)
	}
	if product == nil {
		return nil, nil, domain.NewNotFound("product", usage.ProductID)
	}
	return usage, product, nil
}

// lockedUsage re-reads the usage inside the transaction
func lockedUsage(ctx context.Context, store ports.StockStore, id uuid.UUID) (*domain.StockUsage, error) {
	usage, err := store.Usages().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if usage == nil {
		return nil, domain.NewNotFound("stock usage", id)
	}
	return usage, usage.CanDecide()
}

// ApproveDamage confirms a damage report: reserved units become damaged and
// a faulty stock batch is opened for them.
func (s *StockUsageService) ApproveDamage(ctx context.Context, actor *domain.Actor, usageID uuid.UUID, remark string) (*ports.DamageDecision, error) {
	pending, product, err := s.decisionTarget(ctx, actor, usageID)
	if err != nil {
		s.record("approve_damage", err)
		return nil, err
	}

	now := s.Now()
	var decision ports.DamageDecision
	err = s.execute(ctx, stockKey(pending.CenterID, pending.ProductID), func(ctx context.Context, store ports.StockStore) error {
		usage, err := lockedUsage(ctx, store, usageID)
		if err != nil {
			return err
		}

		var units []domain.SerialUnit
		if product.Serialized && len(usage.SerialNumbers) > 0 {
			ledger, err := store.Ledgers().Get(ctx, domain.LedgerCenter, usage.CenterID, usage.ProductID)
			if err != nil {
				return err
			}
			if ledger == nil {
				return domain.NewInvalidState("center stock for usage %s no longer exists", usage.ID)
			}
			if units, err = ledger.MarkDamaged(usage.SerialNumbers, usage.ID, actor.ID, now); err != nil {
				return err
			}
			if err := store.Ledgers().Save(ctx, ledger); err != nil {
				return err
			}
		}

		faulty := domain.NewFaultyStockRecord(usage, product.Serialized, units, now)
		if err := store.Faulty().Create(ctx, faulty); err != nil {
			return err
		}
		if err := usage.Approve(faulty.ID, actor.ID, remark, now); err != nil {
			return err
		}
		if err := store.Usages().Save(ctx, usage); err != nil {
			return err
		}
		decision = ports.DamageDecision{Usage: usage, FaultyStock: faulty}
		return nil
	})
	s.record("approve_damage", err)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "damage approved",
		slog.String("usage_id", usageID.String()),
		slog.String("faulty_stock_id", decision.FaultyStock.ID.String()),
		slog.Int("quantity", decision.Usage.Quantity))
	_ = s.invalidateRepairViews(ctx)
	s.notify(ctx, usageNotification(domain.NotifyDamageApproved, decision.Usage))
	return &decision, nil
}

// RejectDamage cancels a damage report and gives the reserved units back to
// the center
func (s *StockUsageService) RejectDamage(ctx context.Context, actor *domain.Actor, usageID uuid.UUID, remark string) (*domain.StockUsage, error) {
	pending, product, err := s.decisionTarget(ctx, actor, usageID)
	if err != nil {
		s.record("reject_damage", err)
		return nil, err
	}

	now := s.Now()
	var rejected *domain.StockUsage
	err = s.execute(ctx, stockKey(pending.CenterID, pending.ProductID), func(ctx context.Context, store ports.StockStore) error {
		usage, err := lockedUsage(ctx, store, usageID)
		if err != nil {
			return err
		}

		ledger, err := store.Ledgers().Get(ctx, domain.LedgerCenter, usage.CenterID, usage.ProductID)
		if err != nil {
			return err
		}
		if ledger == nil {
			return domain.NewInvalidState("center stock for usage %s no longer exists", usage.ID)
		}
		if err := ledger.Release(product.Serialized, usage.Quantity, usage.SerialNumbers, usage.ID, actor.ID, now); err != nil {
			return err
		}
		if err := store.Ledgers().Save(ctx, ledger); err != nil {
			return err
		}

		entity, err := store.EntityUsage().Get(ctx, usage.Target.Kind(), usage.Target.EntityID(), usage.ProductID)
		if err != nil {
			return err
		}
		if entity != nil {
			entity.Reverse(usage.ID, now)
			if err := store.EntityUsage().Save(ctx, entity); err != nil {
				return err
			}
		}

		if err := usage.Reject(actor.ID, remark, now); err != nil {
			return err
		}
		if err := store.Usages().Save(ctx, usage); err != nil {
			return err
		}
		rejected = usage
		return nil
	})
	s.record("reject_damage", err)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "damage rejected",
		slog.String("usage_id", usageID.String()),
		slog.Int("quantity", rejected.Quantity))
	s.notify(ctx, usageNotification(domain.NotifyDamageRejected, rejected))
	return rejected, nil
}

func (s *StockUsageService) GetUsage(ctx context.Context, actor *domain.Actor, usageID uuid.UUID) (*domain.StockUsage, error) {
	usage, err := s.Reads.Usages().GetByID(ctx, usageID)
	if err != nil {
		return nil, fmt.Errorf("failed to load usage: %w", err)
	}
	if usage == nil {
		return nil, domain.NewNotFound("stock usage", usageID)
	}
	if err := actor.RequireCenter(domain.CapStockUsageView, usage.CenterID); err != nil {
		return nil, err
	}
	return usage, nil
}

func (s *StockUsageService) ListUsages(ctx context.Context, actor *domain.Actor, filter ports.UsageFilter) (*ports.ListResult[*domain.StockUsage], error) {
	center, err := actor.CenterFilter(domain.CapStockUsageView, filter.CenterID)
	if err != nil {
		return nil, err
	}
	filter.CenterID = center

	result, err := s.Reads.Usages().List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list usages: %w", err)
	}
	return result, nil
}

// GetCenterStock returns the center ledger for one product
func (s *StockUsageService) GetCenterStock(ctx context.Context, actor *domain.Actor, centerID, productID uuid.UUID) (*domain.StockLedger, error) {
	if err := actor.RequireCenter(domain.CapStockView, centerID); err != nil {
		return nil, err
	}
	ledger, err := s.Reads.Ledgers().Get(ctx, domain.LedgerCenter, centerID, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to load center stock: %w", err)
	}
	if ledger == nil {
		return nil, domain.NewNotFound("center stock", stockKey(centerID, productID))
	}
	return ledger, nil
}

func usageNotification(kind domain.NotificationKind, u *domain.StockUsage) domain.Notification {
	actor := u.ReportedBy
	at := u.CreatedAt
	if u.DecidedAt != nil {
		actor, at = u.DecidedBy, *u.DecidedAt
	}
	return domain.Notification{
		Kind:       kind,
		CenterID:   u.CenterID,
		ProductID:  u.ProductID,
		Reference:  u.ID,
		Quantity:   u.Quantity,
		Status:     string(u.Status),
		Actor:      actor,
		OccurredAt: at,
	}
}
