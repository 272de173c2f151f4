// internal/core/services/repair_test.go
package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/fieldstock-be/internal/core/domain"
	"github.com/ammerola/fieldstock-be/internal/core/ports"
	"github.com/ammerola/fieldstock-be/internal/core/services"
	"github.com/ammerola/fieldstock-be/test/helpers"
	"github.com/ammerola/fieldstock-be/test/mocks"
)

// sendToRepair transfers damaged units and fails the test on any item error
func (f *fixture) sendToRepair(actor *domain.Actor, items ...ports.RepairTransferItem) []*domain.RepairTransferRecord {
	f.t.Helper()
	res, err := services.NewRepairService(f.deps).TransferToRepairCenter(context.Background(), actor, ports.RepairTransferRequest{
		Items:          items,
		RepairCenterID: f.repairCenter.ID,
		TransferRemark: "weekly pickup",
	})
	require.NoError(f.t, err)
	require.Empty(f.t, res.Errors)
	return res.Succeeded
}

func (f *fixture) markOutcome(actor *domain.Actor, items ...ports.OutcomeItem) *domain.RepairTransferRecord {
	f.t.Helper()
	res := services.NewRepairService(f.deps).MarkOutcome(context.Background(), actor, items)
	require.Empty(f.t, res.Errors)
	return res.Succeeded[len(res.Succeeded)-1]
}

func TestRepairService_TransferToRepairCenter_PartialBatch(t *testing.T) {
	f := newFixture(t)
	p := f.addProduct(helpers.NewTestProduct(false))
	f.stock(f.center.ID, p, 10)
	actor := centerActor(f.center.ID)
	faulty := f.damaged(actor, p, 3)

	svc := services.NewRepairService(f.deps)
	res, err := svc.TransferToRepairCenter(context.Background(), actor, ports.RepairTransferRequest{
		RepairCenterID: f.repairCenter.ID,
		Items: []ports.RepairTransferItem{
			{ProductID: p.ID, Quantity: 1},
			{ProductID: f.missingProduct(), Quantity: 1},
			{ProductID: p.ID, Quantity: 2},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, res.Total)
	require.Len(t, res.Succeeded, 2)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, 1, res.Errors[0].Index)
	assert.Equal(t, domain.CodeNotFound, res.Errors[0].Code)
	assert.NotEmpty(t, res.Errors[0].ProductID)
	assert.Equal(t, 3, res.TotalQuantity)
	assert.Equal(t, f.repairCenter.ID, res.RepairCenter.ID)

	transfers := f.store.RepairTransfers()
	require.Len(t, transfers, 2)
	for _, tr := range transfers {
		assert.Equal(t, faulty.ID, tr.FaultyStockID)
		assert.Equal(t, domain.RepairStatusUnderRepair, tr.Status)
		require.NoError(t, tr.CheckDecomposition())
	}

	stored := f.store.FaultyRecords()
	require.Len(t, stored, 1)
	assert.Equal(t, 0, stored[0].DamagedQty)
	assert.Equal(t, 3, stored[0].UnderRepairQty)
	assert.Equal(t, domain.RepairStatusUnderRepair, stored[0].OverallStatus)
	assert.Equal(t, 2, f.notified(domain.NotifySentToRepair))
}

func TestRepairService_TransferToRepairCenter_Serialized(t *testing.T) {
	f := newFixture(t)
	p := f.addProduct(helpers.NewTestProduct(true))
	f.stock(f.center.ID, p, 3, "SN-1", "SN-2", "SN-3")
	actor := centerActor(f.center.ID)
	f.damaged(actor, p, 2, "SN-1", "SN-2")

	transfers := f.sendToRepair(actor, ports.RepairTransferItem{
		ProductID: p.ID, Quantity: 2, SerialNumbers: []string{"SN-1", "SN-2"}, DamageRemark: "no power",
	})
	require.Len(t, transfers, 1)
	tr := transfers[0]
	assert.Equal(t, f.center.ID, tr.FromCenterID)
	assert.Equal(t, f.repairCenter.ID, tr.ToCenterID)
	assert.Equal(t, 2, tr.Quantity)
	assert.Equal(t, 2, tr.UnderRepairQty)
	assert.Equal(t, domain.RepairStatusUnderRepair, tr.Status)
	require.Len(t, tr.RepairUpdates, 1)
	assert.Equal(t, domain.ActionSentToRepair, tr.RepairUpdates[0].Action)

	faulty := f.store.FaultyRecords()[0]
	assert.Equal(t, 2, faulty.UnderRepairQty)
	assert.Equal(t, 0, faulty.DamagedQty)
	assert.Equal(t, domain.RepairStatusUnderRepair, faulty.OverallStatus)
	for _, u := range faulty.SerialNumbers {
		assert.Equal(t, domain.SerialUnderRepair, u.Status)
		assert.Equal(t, f.repairCenter.ID, u.CurrentLocation)
		assert.Equal(t, 1, u.UnderRepairQty)
	}
}

func TestRepairService_TransferToRepairCenter_ItemErrors(t *testing.T) {
	tests := []struct {
		name     string
		item     func(p *domain.Product) ports.RepairTransferItem
		wantCode domain.ErrorCode
	}{
		{
			name:     "more_than_damaged",
			item:     func(p *domain.Product) ports.RepairTransferItem { return ports.RepairTransferItem{ProductID: p.ID, Quantity: 3} },
			wantCode: domain.CodeInsufficientDamagedStock,
		},
		{
			name: "serial_not_in_faulty_stock",
			item: func(p *domain.Product) ports.RepairTransferItem {
				return ports.RepairTransferItem{ProductID: p.ID, Quantity: 1, SerialNumbers: []string{"SN-3"}}
			},
			wantCode: domain.CodeInvalidSerials,
		},
		{
			name: "serial_count_mismatch",
			item: func(p *domain.Product) ports.RepairTransferItem {
				return ports.RepairTransferItem{ProductID: p.ID, Quantity: 2, SerialNumbers: []string{"SN-1"}}
			},
			wantCode: domain.CodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			p := f.addProduct(helpers.NewTestProduct(true))
			f.stock(f.center.ID, p, 3, "SN-1", "SN-2", "SN-3")
			actor := centerActor(f.center.ID)
			f.damaged(actor, p, 2, "SN-1", "SN-2")

			res, err := services.NewRepairService(f.deps).TransferToRepairCenter(context.Background(), actor,
				ports.RepairTransferRequest{RepairCenterID: f.repairCenter.ID, Items: []ports.RepairTransferItem{tt.item(p)}})
			require.NoError(t, err)
			require.Len(t, res.Errors, 1)
			assert.Equal(t, tt.wantCode, res.Errors[0].Code)
			assert.True(t, res.AllFailed())
			assert.Empty(t, f.store.RepairTransfers())
			assert.Equal(t, 2, f.store.FaultyRecords()[0].DamagedQty)
		})
	}
}

func TestRepairService_TransferToRepairCenter_SerialStatus(t *testing.T) {
	t.Run("serial_in_wrong_status", func(t *testing.T) {
		f := newFixture(t)
		p := f.addProduct(helpers.NewTestProduct(true))
		f.stock(f.center.ID, p, 2, "SN-1", "SN-2")
		actor := centerActor(f.center.ID)
		f.damaged(actor, p, 1, "SN-1")
		f.damaged(actor, p, 1, "SN-2")
		f.sendToRepair(actor, ports.RepairTransferItem{ProductID: p.ID, Quantity: 1, SerialNumbers: []string{"SN-1"}})

		res, err := services.NewRepairService(f.deps).TransferToRepairCenter(context.Background(), actor, ports.RepairTransferRequest{
			RepairCenterID: f.repairCenter.ID,
			Items:          []ports.RepairTransferItem{{ProductID: p.ID, Quantity: 1, SerialNumbers: []string{"SN-1"}}},
		})
		require.NoError(t, err)
		require.Len(t, res.Errors, 1)
		assert.Equal(t, domain.CodeInvalidSerials, res.Errors[0].Code)
		assert.Contains(t, res.Errors[0].Error, "wrong status: SN-1 (under_repair)")
		assert.NotContains(t, res.Errors[0].Error, "not found")
		assert.Len(t, f.store.RepairTransfers(), 1)
	})

	t.Run("serial_unknown_to_every_batch", func(t *testing.T) {
		f := newFixture(t)
		p := f.addProduct(helpers.NewTestProduct(true))
		f.stock(f.center.ID, p, 2, "SN-1", "SN-2")
		actor := centerActor(f.center.ID)
		f.damaged(actor, p, 1, "SN-1")

		res, err := services.NewRepairService(f.deps).TransferToRepairCenter(context.Background(), actor, ports.RepairTransferRequest{
			RepairCenterID: f.repairCenter.ID,
			Items:          []ports.RepairTransferItem{{ProductID: p.ID, Quantity: 1, SerialNumbers: []string{"SN-9"}}},
		})
		require.NoError(t, err)
		require.Len(t, res.Errors, 1)
		assert.Equal(t, domain.CodeInvalidSerials, res.Errors[0].Code)
		assert.Contains(t, res.Errors[0].Error, "not found: SN-9")
		assert.NotContains(t, res.Errors[0].Error, "wrong status")
	})
}

func TestRepairService_TransferToRepairCenter_LocksSourceCenter(t *testing.T) {
	f := newFixture(t)
	p := f.addProduct(helpers.NewTestProduct(true))
	other := f.addCenter(helpers.NewTestCenter(domain.CenterBranch))
	f.stock(f.center.ID, p, 1, "SN-1")
	f.stock(other.ID, p, 1, "SN-2")
	f.damaged(centerActor(f.center.ID), p, 1, "SN-1")
	f.damaged(centerActor(other.ID), p, 1, "SN-2")

	locker := mocks.NewMockLocker(f.ctrl)
	lock := mocks.NewMockLock(f.ctrl)
	gomock.InOrder(
		locker.EXPECT().Obtain(gomock.Any(), other.ID.String()+":"+p.ID.String()).Return(lock, nil),
		lock.EXPECT().Release(gomock.Any()).Return(nil),
	)
	f.deps.Locker = locker

	res, err := services.NewRepairService(f.deps).TransferToRepairCenter(context.Background(), adminActor(), ports.RepairTransferRequest{
		RepairCenterID: f.repairCenter.ID,
		Items:          []ports.RepairTransferItem{{ProductID: p.ID, Quantity: 1, SerialNumbers: []string{"SN-2"}}},
	})
	require.NoError(t, err)
	require.Empty(t, res.Errors)
	require.Len(t, res.Succeeded, 1)
	assert.Equal(t, other.ID, res.Succeeded[0].FromCenterID)
}

func TestRepairService_TransferToRepairCenter_NoFaultyStock(t *testing.T) {
	f := newFixture(t)
	p := f.addProduct(helpers.NewTestProduct(false))

	res, err := services.NewRepairService(f.deps).TransferToRepairCenter(context.Background(), centerActor(f.center.ID),
		ports.RepairTransferRequest{RepairCenterID: f.repairCenter.ID, Items: []ports.RepairTransferItem{{ProductID: p.ID, Quantity: 1}}})
	require.NoError(t, err)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, domain.CodeNoFaultyStock, res.Errors[0].Code)
}

func TestRepairService_TransferToRepairCenter_RequestErrors(t *testing.T) {
	f := newFixture(t)
	p := f.addProduct(helpers.NewTestProduct(false))
	branch := f.addCenter(helpers.NewTestCenter(domain.CenterBranch))
	svc := services.NewRepairService(f.deps)
	item := []ports.RepairTransferItem{{ProductID: p.ID, Quantity: 1}}

	_, err := svc.TransferToRepairCenter(context.Background(), centerActor(f.center.ID),
		ports.RepairTransferRequest{RepairCenterID: branch.ID, Items: item})
	requireCode(t, err, domain.CodeValidation)

	_, err = svc.TransferToRepairCenter(context.Background(), centerActor(f.center.ID),
		ports.RepairTransferRequest{RepairCenterID: f.repairCenter.ID})
	requireCode(t, err, domain.CodeValidation)

	viewer := domain.NewActor("viewer", f.center.ID, map[domain.Capability]domain.Scope{domain.CapReportView: domain.ScopeOwnCenter})
	_, err = svc.TransferToRepairCenter(context.Background(), viewer,
		ports.RepairTransferRequest{RepairCenterID: f.repairCenter.ID, Items: item})
	requireCode(t, err, domain.CodePermissionDenied)
}

func TestRepairService_MarkOutcome_Serialized(t *testing.T) {
	f := newFixture(t)
	p := f.addProduct(helpers.NewTestProduct(true))
	f.stock(f.center.ID, p, 3, "SN-1", "SN-2", "SN-3")
	actor := centerActor(f.center.ID)
	f.damaged(actor, p, 2, "SN-1", "SN-2")
	tr := f.sendToRepair(actor, ports.RepairTransferItem{ProductID: p.ID, Quantity: 2, SerialNumbers: []string{"SN-1", "SN-2"}})[0]

	technician := centerActor(f.repairCenter.ID)
	svc := services.NewRepairService(f.deps)
	res := svc.MarkOutcome(context.Background(), technician, []ports.OutcomeItem{
		{RepairTransferID: &tr.ID, ProductID: p.ID, Quantity: 1, SerialNumbers: []string{"SN-1"},
			FinalStatus: domain.SerialRepaired, RepairCost: decimal.RequireFromString("25.50"), Remark: "replaced PSU"},
		{RepairTransferID: &tr.ID, ProductID: p.ID, Quantity: 1, SerialNumbers: []string{"SN-2"},
			FinalStatus: domain.SerialIrreparable, Remark: "board burnt"},
	})
	require.Empty(t, res.Errors)
	require.Len(t, res.Succeeded, 2)

	updated := res.Succeeded[1]
	assert.Equal(t, domain.RepairStatusPartiallyRepaired, updated.Status)
	assert.Equal(t, 1, updated.RepairedQty)
	assert.Equal(t, 1, updated.IrrepairedQty)
	assert.Equal(t, 0, updated.UnderRepairQty)
	assert.True(t, updated.TotalCost().Equal(decimal.RequireFromString("25.50")))
	require.NoError(t, updated.CheckDecomposition())

	faulty := f.store.FaultyRecords()[0]
	assert.Equal(t, 1, faulty.RepairedQty)
	assert.Equal(t, 1, faulty.IrrepairedQty)
	assert.Equal(t, 0, faulty.UnderRepairQty)
	assert.Equal(t, domain.RepairStatusPartiallyRepaired, faulty.OverallStatus)
	sn1, ok := faulty.FindSerial("SN-1")
	require.True(t, ok)
	assert.Equal(t, domain.SerialRepaired, sn1.Status)
	assert.Equal(t, 1, sn1.RepairedQty)

	again := svc.MarkOutcome(context.Background(), technician, []ports.OutcomeItem{
		{RepairTransferID: &tr.ID, ProductID: p.ID, Quantity: 1, SerialNumbers: []string{"SN-1"}, FinalStatus: domain.SerialRepaired},
	})
	require.Len(t, again.Errors, 1)
	assert.Equal(t, domain.CodeInvalidSerials, again.Errors[0].Code)
}

func TestRepairService_MarkOutcome_Errors(t *testing.T) {
	f := newFixture(t)
	p := f.addProduct(helpers.NewTestProduct(false))
	f.stock(f.center.ID, p, 10)
	actor := centerActor(f.center.ID)
	f.damaged(actor, p, 4)
	tr := f.sendToRepair(actor, ports.RepairTransferItem{ProductID: p.ID, Quantity: 4})[0]
	missing := uuid.New()

	tests := []struct {
		name     string
		actor    *domain.Actor
		item     ports.OutcomeItem
		wantCode domain.ErrorCode
	}{
		{
			name:     "unknown_final_status",
			actor:    actor,
			item:     ports.OutcomeItem{RepairTransferID: &tr.ID, Quantity: 1, FinalStatus: "fixed"},
			wantCode: domain.CodeInvalidFinalStatus,
		},
		{
			name:     "more_than_under_repair",
			actor:    actor,
			item:     ports.OutcomeItem{RepairTransferID: &tr.ID, Quantity: 5, FinalStatus: domain.SerialRepaired},
			wantCode: domain.CodeInsufficientUnderRepairQty,
		},
		{
			name:     "serials_on_counter_product",
			actor:    actor,
			item:     ports.OutcomeItem{RepairTransferID: &tr.ID, Quantity: 1, SerialNumbers: []string{"X"}, FinalStatus: domain.SerialRepaired},
			wantCode: domain.CodeValidation,
		},
		{
			name:     "negative_cost",
			actor:    actor,
			item:     ports.OutcomeItem{RepairTransferID: &tr.ID, Quantity: 1, FinalStatus: domain.SerialRepaired, RepairCost: decimal.NewFromInt(-1)},
			wantCode: domain.CodeValidation,
		},
		{
			name:     "unknown_transfer",
			actor:    actor,
			item:     ports.OutcomeItem{RepairTransferID: &missing, Quantity: 1, FinalStatus: domain.SerialRepaired},
			wantCode: domain.CodeNotFound,
		},
		{
			name:     "unrelated_center",
			actor:    centerActor(uuid.New()),
			item:     ports.OutcomeItem{RepairTransferID: &tr.ID, Quantity: 1, FinalStatus: domain.SerialRepaired},
			wantCode: domain.CodePermissionDenied,
		},
	}

	svc := services.NewRepairService(f.deps)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := svc.MarkOutcome(context.Background(), tt.actor, []ports.OutcomeItem{tt.item})
			require.Len(t, res.Errors, 1)
			assert.Equal(t, tt.wantCode, res.Errors[0].Code)
		})
	}

	stored := f.store.RepairTransfers()[0]
	assert.Equal(t, 4, stored.UnderRepairQty)
	assert.Len(t, stored.RepairUpdates, 1)
}

func TestRepairService_MarkOutcome_OldestOpenTransfer(t *testing.T) {
	f := newFixture(t)
	p := f.addProduct(helpers.NewTestProduct(false))
	f.stock(f.center.ID, p, 10)
	actor := centerActor(f.center.ID)
	f.damaged(actor, p, 4)
	first := f.sendToRepair(actor, ports.RepairTransferItem{ProductID: p.ID, Quantity: 1})[0]
	f.sendToRepair(actor, ports.RepairTransferItem{ProductID: p.ID, Quantity: 3})

	updated := f.markOutcome(actor, ports.OutcomeItem{ProductID: p.ID, Quantity: 1, FinalStatus: domain.SerialIrreparable})

	assert.Equal(t, first.ID, updated.ID)
	assert.Equal(t, domain.RepairStatusIrreparable, updated.Status)

	_ = f.markOutcome(actor, ports.OutcomeItem{ProductID: p.ID, Quantity: 3, FinalStatus: domain.SerialRepaired})
	res := services.NewRepairService(f.deps).MarkOutcome(context.Background(), actor,
		[]ports.OutcomeItem{{ProductID: p.ID, Quantity: 1, FinalStatus: domain.SerialRepaired}})
	require.Len(t, res.Errors, 1)
	assert.Equal(t, domain.CodeNotFound, res.Errors[0].Code)
}

func TestRepairService_ReturnFromRepairCenter(t *testing.T) {
	f := newFixture(t)
	p := f.addProduct(helpers.NewTestProduct(true))
	f.stock(f.center.ID, p, 3, "SN-1", "SN-2", "SN-3")
	actor := centerActor(f.center.ID)
	f.damaged(actor, p, 2, "SN-1", "SN-2")
	tr := f.sendToRepair(actor, ports.RepairTransferItem{ProductID: p.ID, Quantity: 2, SerialNumbers: []string{"SN-1", "SN-2"}})[0]
	technician := centerActor(f.repairCenter.ID)
	svc := services.NewRepairService(f.deps)

	res := svc.ReturnFromRepairCenter(context.Background(), technician, []ports.ReturnItem{{
		RepairTransferID: tr.ID, ProductID: p.ID, Quantity: 1, SerialNumbers: []string{"SN-1"},
		FinalStatus: domain.SerialRepaired, RepairCost: decimal.NewFromInt(40),
	}}, "back to branch")
	require.Empty(t, res.Errors)
	out := res.Succeeded[0]
	assert.Equal(t, 1, out.ReturnedQty)
	assert.Equal(t, []string{"SN-1"}, out.ReturnedSerials)
	assert.Equal(t, domain.RepairStatusUnderRepair, out.Transfer.Status)
	assert.Equal(t, 1, out.Transfer.TransferredQty)

	ledger := f.store.Ledger(domain.LedgerCenter, f.center.ID, p.ID)
	assert.Equal(t, 3, ledger.TotalQuantity)
	assert.Equal(t, 2, ledger.AvailableQuantity)
	assert.Equal(t, 1, ledger.ConsumedQuantity)
	assert.ElementsMatch(t, []string{"SN-1", "SN-3"}, ledger.AvailableSerials())
	require.NoError(t, ledger.CheckBalance())

	res = svc.ReturnFromRepairCenter(context.Background(), technician, []ports.ReturnItem{{
		RepairTransferID: tr.ID, Quantity: 1, SerialNumbers: []string{"SN-2"}, FinalStatus: domain.SerialIrreparable,
	}}, "")
	require.Empty(t, res.Errors)
	out = res.Succeeded[0]
	assert.Zero(t, out.ReturnedQty)
	assert.Equal(t, domain.RepairStatusReturned, out.Transfer.Status)
	require.NotNil(t, out.Transfer.ReturnedAt)

	faulty := f.store.FaultyRecords()[0]
	assert.Equal(t, 1, faulty.TransferredQty)
	assert.Equal(t, 1, faulty.IrrepairedQty)
	assert.Equal(t, domain.RepairStatusPartiallyRepaired, faulty.OverallStatus)
	require.NoError(t, faulty.CheckDecomposition())

	ledger = f.store.Ledger(domain.LedgerCenter, f.center.ID, p.ID)
	assert.Equal(t, 2, ledger.AvailableQuantity)
}

func TestRepairService_ReturnFromRepairCenter_CounterOnly(t *testing.T) {
	f := newFixture(t)
	p := f.addProduct(helpers.NewTestProduct(false))
	f.stock(f.center.ID, p, 10)
	actor := centerActor(f.center.ID)
	f.damaged(actor, p, 4)
	tr := f.sendToRepair(actor, ports.RepairTransferItem{ProductID: p.ID, Quantity: 4})[0]
	svc := services.NewRepairService(f.deps)

	res := svc.ReturnFromRepairCenter(context.Background(), centerActor(f.repairCenter.ID), []ports.ReturnItem{
		{RepairTransferID: tr.ID, ProductID: p.ID, Quantity: 3, FinalStatus: domain.SerialRepaired},
		{RepairTransferID: tr.ID, ProductID: uuid.New(), Quantity: 1, FinalStatus: domain.SerialRepaired},
		{RepairTransferID: tr.ID, ProductID: p.ID, Quantity: 1, FinalStatus: "lost"},
	}, "")
	require.Len(t, res.Succeeded, 1)
	require.Len(t, res.Errors, 2)
	assert.Equal(t, domain.CodeValidation, res.Errors[0].Code)
	assert.Equal(t, 1, res.Errors[0].Index)
	assert.Equal(t, domain.CodeInvalidFinalStatus, res.Errors[1].Code)

	ledger := f.store.Ledger(domain.LedgerCenter, f.center.ID, p.ID)
	assert.Equal(t, 10, ledger.TotalQuantity)
	assert.Equal(t, 9, ledger.AvailableQuantity)
	assert.Equal(t, 1, ledger.ConsumedQuantity)

	stored := f.store.RepairTransfers()[0]
	assert.Equal(t, 1, stored.UnderRepairQty)
	assert.Equal(t, 3, stored.TransferredQty)
	require.Len(t, stored.RepairUpdates, 3)
	assert.Equal(t, domain.ActionReturnedToCenter, stored.RepairUpdates[2].Action)
}

func TestRepairService_TransferToOutlet(t *testing.T) {
	f := newFixture(t)
	p := f.addProduct(helpers.NewTestProduct(true))
	outlet := f.addCenter(helpers.NewTestCenter(domain.CenterOutlet))
	f.stock(f.center.ID, p, 3, "SN-1", "SN-2", "SN-3")
	actor := centerActor(f.center.ID)
	f.damaged(actor, p, 2, "SN-1", "SN-2")
	tr := f.sendToRepair(actor, ports.RepairTransferItem{ProductID: p.ID, Quantity: 2, SerialNumbers: []string{"SN-1", "SN-2"}})[0]
	technician := centerActor(f.repairCenter.ID)
	f.markOutcome(technician, ports.OutcomeItem{RepairTransferID: &tr.ID, Quantity: 2, FinalStatus: domain.SerialRepaired})

	svc := services.NewRepairService(f.deps)
	res, err := svc.TransferToOutlet(context.Background(), technician, outlet.ID,
		[]ports.OnwardItem{{RepairTransferID: tr.ID, Quantity: 2, SerialNumbers: []string{"SN-1", "SN-2"}}}, "refurbished")
	require.NoError(t, err)
	require.Empty(t, res.Errors)

	out := res.Succeeded[0]
	assert.Equal(t, domain.RepairStatusReturned, out.Transfer.Status)
	assert.Equal(t, domain.ActionToOutlet, out.Transfer.RepairUpdates[len(out.Transfer.RepairUpdates)-1].Action)
	assert.Equal(t, domain.LedgerOutlet, out.Destination.Kind)
	assert.Equal(t, 2, out.Destination.AvailableQuantity)

	dest := f.store.Ledger(domain.LedgerOutlet, outlet.ID, p.ID)
	require.NotNil(t, dest)
	assert.ElementsMatch(t, []string{"SN-1", "SN-2"}, dest.AvailableSerials())
	assert.Equal(t, domain.SourceRepairReturn, dest.SerialNumbers[0].SourceType)
	require.NoError(t, dest.CheckBalance())

	origin := f.store.Ledger(domain.LedgerCenter, f.center.ID, p.ID)
	for _, sn := range []string{"SN-1", "SN-2"} {
		for _, u := range origin.SerialNumbers {
			if u.SerialNumber == sn {
				assert.Equal(t, domain.SerialTransferred, u.Status)
				assert.Equal(t, outlet.ID, u.CurrentLocation)
			}
		}
	}
	require.NoError(t, origin.CheckBalance())

	faulty := f.store.FaultyRecords()[0]
	assert.Equal(t, 2, faulty.TransferredQty)
	assert.Equal(t, domain.RepairStatusRepaired, faulty.OverallStatus)
	assert.True(t, faulty.IsTerminal())
	assert.Equal(t, 1, f.notified(domain.NotifyUnitsReleased))

	_, err = svc.TransferToOutlet(context.Background(), technician, f.center.ID,
		[]ports.OnwardItem{{RepairTransferID: tr.ID, Quantity: 1}}, "")
	requireCode(t, err, domain.CodeValidation)
}

func TestRepairService_TransferToReseller(t *testing.T) {
	f := newFixture(t)
	p := f.addProduct(helpers.NewTestProduct(false))
	outlet := f.addCenter(helpers.NewTestCenter(domain.CenterOutlet))
	reseller := f.addReseller(&domain.Reseller{ID: uuid.New(), Name: "Metro Partners", OutletCenterID: outlet.ID, Active: true})
	dormant := f.addReseller(&domain.Reseller{ID: uuid.New(), Name: "Closed", OutletCenterID: outlet.ID})
	f.stock(f.center.ID, p, 10)
	actor := centerActor(f.center.ID)
	f.damaged(actor, p, 4)
	tr := f.sendToRepair(actor, ports.RepairTransferItem{ProductID: p.ID, Quantity: 4})[0]
	f.markOutcome(actor, ports.OutcomeItem{RepairTransferID: &tr.ID, Quantity: 3, FinalStatus: domain.SerialRepaired})

	svc := services.NewRepairService(f.deps)
	res, err := svc.TransferToReseller(context.Background(), actor, reseller.ID, []ports.OnwardItem{
		{RepairTransferID: tr.ID, Quantity: 2},
		{RepairTransferID: tr.ID, Quantity: 2},
	}, "")
	require.NoError(t, err)
	require.Len(t, res.Succeeded, 1)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, domain.CodeInsufficientRepairedQty, res.Errors[0].Code)

	dest := f.store.Ledger(domain.LedgerReseller, reseller.ID, p.ID)
	require.NotNil(t, dest)
	assert.Equal(t, outlet.ID, dest.LocationID)
	assert.Equal(t, 2, dest.TotalQuantity)
	assert.Equal(t, 2, dest.AvailableQuantity)

	stored := f.store.RepairTransfers()[0]
	assert.Equal(t, 1, stored.RepairedQty)
	assert.Equal(t, 2, stored.TransferredQty)
	assert.Equal(t, 1, stored.UnderRepairQty)

	_, err = svc.TransferToReseller(context.Background(), actor, dormant.ID, []ports.OnwardItem{{RepairTransferID: tr.ID, Quantity: 1}}, "")
	requireCode(t, err, domain.CodeNotFound)
}
