// internal/core/services/fixture_test.go
package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/fieldstock-be/internal/core/domain"
	"github.com/ammerola/fieldstock-be/internal/core/ports"
	"github.com/ammerola/fieldstock-be/internal/core/services"
	"github.com/ammerola/fieldstock-be/internal/pkg/metrics"
	"github.com/ammerola/fieldstock-be/test/helpers"
	"github.com/ammerola/fieldstock-be/test/mocks"
)

var fixedNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

type fixture struct {
	t       *testing.T
	ctrl    *gomock.Controller
	store   *helpers.MemStore
	catalog *mocks.MockProductCatalog
	centers *mocks.MockCenterDirectory
	tasks   *mocks.MockTaskQueue
	metrics *metrics.Metrics
	deps    services.Deps

	center       *domain.Center
	repairCenter *domain.Center
	sent         []domain.Notification
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &fixture{
		t:            t,
		ctrl:         ctrl,
		store:        helpers.NewMemStore(),
		catalog:      mocks.NewMockProductCatalog(ctrl),
		centers:      mocks.NewMockCenterDirectory(ctrl),
		tasks:        mocks.NewMockTaskQueue(ctrl),
		metrics:      metrics.New("fieldstock-test"),
		center:       helpers.NewTestCenter(domain.CenterBranch),
		repairCenter: helpers.NewTestCenter(domain.CenterRepair),
	}
	f.tasks.EXPECT().Notify(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, n domain.Notification) error {
			f.sent = append(f.sent, n)
			return nil
		}).AnyTimes()
	f.addCenter(f.center)
	f.addCenter(f.repairCenter)

	clock := fixedNow
	f.deps = services.Deps{
		UoW:     f.store,
		Reads:   f.store,
		Catalog: f.catalog,
		Centers: f.centers,
		Tasks:   f.tasks,
		Metrics: f.metrics,
		Logger:  helpers.TestLogger(),
		Now: func() time.Time {
			clock = clock.Add(time.Second)
			return clock
		},
	}
	return f
}

func (f *fixture) addProduct(p *domain.Product) *domain.Product {
	f.catalog.EXPECT().GetProduct(gomock.Any(), p.ID).Return(p, nil).AnyTimes()
	return p
}

// missingProduct registers an id the catalog does not know
func (f *fixture) missingProduct() uuid.UUID {
	id := uuid.New()
	f.catalog.EXPECT().GetProduct(gomock.Any(), id).Return(nil, nil).AnyTimes()
	return id
}

func (f *fixture) addCenter(c *domain.Center) *domain.Center {
	f.centers.EXPECT().GetCenter(gomock.Any(), c.ID).Return(c, nil).AnyTimes()
	return c
}

func (f *fixture) addReseller(r *domain.Reseller) *domain.Reseller {
	f.centers.EXPECT().GetReseller(gomock.Any(), r.ID).Return(r, nil).AnyTimes()
	return r
}

// stock seeds opening center stock
func (f *fixture) stock(center uuid.UUID, p *domain.Product, qty int, serials ...string) {
	f.store.Seed(helpers.NewCenterLedger(f.t, center, p.ID, qty, serials...))
}

func (f *fixture) notified(kind domain.NotificationKind) int {
	n := 0
	for _, s := range f.sent {
		if s.Kind == kind {
			n++
		}
	}
	return n
}

// centerActor can do everything at its own center
func centerActor(center uuid.UUID) *domain.Actor {
	grants := map[domain.Capability]domain.Scope{}
	for _, c := range []domain.Capability{
		domain.CapStockUsageCreate, domain.CapStockUsageView, domain.CapDamageDecide,
		domain.CapFaultyTransfer, domain.CapRepairUpdate, domain.CapRepairReturn,
		domain.CapOnwardTransfer, domain.CapStockView, domain.CapReportView, domain.CapLedgerAudit,
	} {
		grants[c] = domain.ScopeOwnCenter
	}
	return domain.NewActor("tech-1", center, grants)
}

func adminActor() *domain.Actor {
	grants := map[domain.Capability]domain.Scope{}
	for _, c := range []domain.Capability{
		domain.CapStockUsageCreate, domain.CapStockUsageView, domain.CapDamageDecide,
		domain.CapFaultyTransfer, domain.CapRepairUpdate, domain.CapRepairReturn,
		domain.CapOnwardTransfer, domain.CapStockView, domain.CapReportView, domain.CapLedgerAudit,
	} {
		grants[c] = domain.ScopeAllCenters
	}
	return domain.NewActor("admin-1", uuid.Nil, grants)
}

// damaged runs a damage report through approval and returns the faulty batch
func (f *fixture) damaged(actor *domain.Actor, p *domain.Product, qty int, serials ...string) *domain.FaultyStockRecord {
	f.t.Helper()
	usages := services.NewStockUsageService(f.deps)
	res := usages.CreateUsage(context.Background(), actor, []ports.UsageItem{{
		ProductID:     p.ID,
		Quantity:      qty,
		SerialNumbers: serials,
		TargetKind:    domain.EntityDamage,
		Remark:        "dropped from ladder",
	}})
	require.Empty(f.t, res.Errors)
	require.Len(f.t, res.Succeeded, 1)

	decision, err := usages.ApproveDamage(context.Background(), actor, res.Succeeded[0].ID, "confirmed")
	require.NoError(f.t, err)
	return decision.FaultyStock
}

func requireCode(t *testing.T, err error, code domain.ErrorCode) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := domain.AsAppError(err)
	require.True(t, ok, "expected AppError, got %v", err)
	require.Equal(t, code, appErr.Code, appErr.Message)
}
