// test/benchmarks/helpers.go
package benchmarks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ammerola/fieldstock-be/internal/core/domain"
)

// staticCatalog serves a fixed set of master data for benchmarks
type staticCatalog struct {
	products map[uuid.UUID]*domain.Product
	centers  map[uuid.UUID]*domain.Center
}

func newStaticCatalog() *staticCatalog {
	return &staticCatalog{
		products: make(map[uuid.UUID]*domain.Product),
		centers:  make(map[uuid.UUID]*domain.Center),
	}
}

func (c *staticCatalog) GetProduct(_ context.Context, id uuid.UUID) (*domain.Product, error) {
	return c.products[id], nil
}

func (c *staticCatalog) GetCenter(_ context.Context, id uuid.UUID) (*domain.Center, error) {
	return c.centers[id], nil
}

func (c *staticCatalog) GetReseller(context.Context, uuid.UUID) (*domain.Reseller, error) {
	return nil, nil
}

func benchLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// serials returns n serial numbers with the given prefix
func serials(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s-%06d", prefix, i)
	}
	return out
}

// openingLedger stocks a center ledger with the given serials
func openingLedger(center, product uuid.UUID, sns []string) *domain.StockLedger {
	now := time.Now().UTC()
	l := domain.NewStockLedger(domain.LedgerCenter, center, center, product, now)
	units := make([]domain.SerialUnit, len(sns))
	for i, sn := range sns {
		units[i] = domain.NewSerialUnit(sn, center, domain.SourceOpening)
	}
	if err := l.Restock(len(sns), units, domain.SourceOpening, uuid.Nil, "bench", "opening stock", now); err != nil {
		panic(err)
	}
	return l
}

// underRepairTransfers builds n transfers with a mix of outcomes for the
// workbook benchmark
func underRepairTransfers(n int) []*domain.RepairTransferRecord {
	now := time.Now().UTC()
	out := make([]*domain.RepairTransferRecord, n)
	for i := range out {
		qty := 1 + i%4
		out[i] = &domain.RepairTransferRecord{
			ID:           uuid.New(),
			FromCenterID: uuid.New(),
			ToCenterID:   uuid.New(),
			ProductID:    uuid.New(),
			RepairBook: domain.RepairBook{
				Quantity:       qty,
				UnderRepairQty: qty,
			},
			Status:         domain.RepairStatusUnderRepair,
			DamageRemark:   "water damage",
			TransferRemark: fmt.Sprintf("pickup %d", i),
			CreatedBy:      "bench",
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if i%3 == 0 {
			out[i].RepairUpdates = append(out[i].RepairUpdates, domain.RepairUpdate{
				Action:   domain.ActionOutcome,
				Status:   domain.SerialRepaired,
				Quantity: 1,
				Cost:     decimal.NewFromInt(15),
				By:       "bench",
				At:       now,
			})
		}
	}
	return out
}
