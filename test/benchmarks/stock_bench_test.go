package benchmarks

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/google/uuid"

	"github.com/ammerola/fieldstock-be/internal/adapters/storage"
	"github.com/ammerola/fieldstock-be/internal/core/domain"
	"github.com/ammerola/fieldstock-be/internal/core/ports"
	"github.com/ammerola/fieldstock-be/internal/core/services"
	"github.com/ammerola/fieldstock-be/test/helpers"
)

func benchActor(center uuid.UUID) *domain.Actor {
	return domain.NewActor("bench", center, map[domain.Capability]domain.Scope{
		domain.CapStockUsageCreate: domain.ScopeAllCenters,
		domain.CapDamageDecide:     domain.ScopeAllCenters,
		domain.CapStockView:        domain.ScopeAllCenters,
	})
}

// newUsageBench stocks a single center with units serials and returns a
// usage service over an in-memory store
func newUsageBench(units int) (*services.StockUsageService, *domain.Actor, uuid.UUID, uuid.UUID) {
	center := uuid.New()
	product := &domain.Product{ID: uuid.New(), SKU: "ONT-1", Name: "ONT Router", Serialized: true, Enabled: true}

	catalog := newStaticCatalog()
	catalog.products[product.ID] = product
	catalog.centers[center] = &domain.Center{ID: center, Name: "Branch", Type: domain.CenterBranch, Active: true}

	store := helpers.NewMemStore()
	store.Seed(openingLedger(center, product.ID, serials("SN", units)))

	svc := services.NewStockUsageService(services.Deps{
		UoW:     store,
		Reads:   store,
		Catalog: catalog,
		Centers: catalog,
		Logger:  benchLogger(),
	})
	return svc, benchActor(center), center, product.ID
}

func BenchmarkStockUsage(b *testing.B) {
	ctx := context.Background()

	b.Run("CreateCustomerUsage", func(b *testing.B) {
		svc, actor, center, product := newUsageBench(b.N)

		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			res := svc.CreateUsage(ctx, actor, []ports.UsageItem{{
				CenterID:   &center,
				ProductID:  product,
				Quantity:   1,
				TargetKind: domain.EntityCustomer,
				TargetID:   uuid.New(),
			}})
			if len(res.Errors) > 0 {
				b.Fatalf("usage failed: %s", res.Errors[0].Error)
			}
		}
	})

	b.Run("ApproveDamage", func(b *testing.B) {
		svc, actor, center, product := newUsageBench(b.N)

		ids := make([]uuid.UUID, b.N)
		for i := range ids {
			res := svc.CreateUsage(ctx, actor, []ports.UsageItem{{
				CenterID:   &center,
				ProductID:  product,
				Quantity:   1,
				TargetKind: domain.EntityDamage,
			}})
			if len(res.Succeeded) != 1 {
				b.Fatalf("damage report failed: %s", res.Errors[0].Error)
			}
			ids[i] = res.Succeeded[0].ID
		}

		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if _, err := svc.ApproveDamage(ctx, actor, ids[i], ""); err != nil {
				b.Fatal(err)
			}
		}
	})
}

func BenchmarkDeriveOverallStatus(b *testing.B) {
	counts := []domain.StatusCounts{
		{Total: 10, Damaged: 10},
		{Total: 10, Damaged: 4, UnderRepair: 6},
		{Total: 10, UnderRepair: 10},
		{Total: 10, Repaired: 10},
		{Total: 10, Irreparable: 10},
		{Total: 10, Repaired: 7, Irreparable: 3},
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		domain.DeriveOverallStatus(counts[i%len(counts)])
	}
}

func BenchmarkLedgerReserve(b *testing.B) {
	for _, size := range []int{100, 1000, 10000} {
		b.Run(fmt.Sprintf("serials_%d", size), func(b *testing.B) {
			center, product := uuid.New(), uuid.New()
			sns := serials("SN", size)

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				b.StopTimer()
				l := openingLedger(center, product, sns)
				b.StartTimer()

				if _, err := l.ReserveOrConsume(true, 10, nil, uuid.New(), "bench", l.UpdatedAt); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkRepairTransferWorkbook(b *testing.B) {
	records := underRepairTransfers(500)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := storage.WriteRepairTransfers(io.Discard, records); err != nil {
			b.Fatal(err)
		}
	}
}
