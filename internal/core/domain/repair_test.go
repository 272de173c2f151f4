package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/fieldstock-be/internal/core/domain"
)

type repairFixture struct {
	center       uuid.UUID
	repairCenter uuid.UUID
	product      uuid.UUID
	ledger       *domain.StockLedger
	usage        *domain.StockUsage
	faulty       *domain.FaultyStockRecord
}

// damagedBatch reserves serials as damage, approves the report and returns
// the resulting faulty batch.
func damagedBatch(t *testing.T, serials ...string) *repairFixture {
	t.Helper()
	f := &repairFixture{center: uuid.New(), repairCenter: uuid.New(), product: uuid.New()}
	f.ledger = newCenterLedger(f.center, f.product, 5)
	now := time.Now()

	target, err := domain.NewUsageTarget(domain.EntityDamage, uuid.Nil, f.center)
	require.NoError(t, err)
	f.usage, err = domain.NewStockUsage(f.center, f.product, target, len(serials), "dropped", "tech", now)
	require.NoError(t, err)
	require.Equal(t, domain.UsagePending, f.usage.Status)

	f.usage.SerialNumbers, err = f.ledger.ReserveOrConsume(true, len(serials), serials, f.usage.ID, "tech", now)
	require.NoError(t, err)

	units, err := f.ledger.MarkDamaged(f.usage.SerialNumbers, f.usage.ID, "manager", now)
	require.NoError(t, err)
	f.faulty = domain.NewFaultyStockRecord(f.usage, true, units, now)
	require.NoError(t, f.usage.Approve(f.faulty.ID, "manager", "", now))
	return f
}

func (f *repairFixture) send(t *testing.T, quantity int, serials ...string) *domain.RepairTransferRecord {
	t.Helper()
	id := uuid.New()
	snapshot, err := f.faulty.SendToRepair(id, f.repairCenter, serials, quantity, "screen cracked", "manager", time.Now())
	require.NoError(t, err)
	return domain.NewRepairTransfer(id, f.faulty, f.repairCenter, quantity, snapshot, "screen cracked", "to vendor", "manager", time.Now())
}

func (f *repairFixture) outcome(t *testing.T, tr *domain.RepairTransferRecord, final domain.SerialStatus, serials ...string) {
	t.Helper()
	moved, err := tr.RecordOutcome(serials, len(serials), final, decimal.NewFromInt(25), "done", "repairer", time.Now())
	require.NoError(t, err)
	require.NoError(t, f.faulty.RecordOutcome(tr.ID, moved, len(moved), final, decimal.NewFromInt(25), "done", "repairer", time.Now()))
}

func assertDecomposed(t *testing.T, books ...*domain.RepairBook) {
	t.Helper()
	for _, b := range books {
		assert.NoError(t, b.CheckDecomposition())
	}
}

func TestFaultyStock_NewRecordFromApprovedDamage(t *testing.T) {
	f := damagedBatch(t, "SN-1", "SN-2")

	assert.Equal(t, 2, f.faulty.Quantity)
	assert.Equal(t, 2, f.faulty.DamagedQty)
	assert.Equal(t, domain.RepairStatusDamaged, f.faulty.OverallStatus)
	assert.Equal(t, domain.UsageCompleted, f.usage.Status)
	assert.Equal(t, f.faulty.ID, *f.usage.FaultyStockID)
	assertDecomposed(t, &f.faulty.RepairBook)

	sn1, ok := f.faulty.FindSerial("SN-1")
	require.True(t, ok)
	assert.Equal(t, domain.SerialDamaged, sn1.Status)
}

func TestRepair_TransferTwoSerialsToRepairCenter(t *testing.T) {
	f := damagedBatch(t, "SN-1", "SN-2")
	tr := f.send(t, 2, "SN-1", "SN-2")

	assert.Equal(t, 2, f.faulty.UnderRepairQty)
	assert.Equal(t, domain.RepairStatusUnderRepair, f.faulty.OverallStatus)

	assert.Equal(t, domain.RepairStatusUnderRepair, tr.Status)
	require.Len(t, tr.SerialNumbers, 2)
	for _, u := range tr.SerialNumbers {
		assert.Equal(t, domain.SerialUnderRepair, u.Status)
		assert.Equal(t, f.repairCenter, u.CurrentLocation)
		assert.Equal(t, 1, u.UnderRepairQty)
	}
	assert.Equal(t, f.center, tr.FromCenterID)
	assert.Equal(t, f.faulty.ID, tr.FaultyStockID)
	assertDecomposed(t, &f.faulty.RepairBook, &tr.RepairBook)
}

func TestRepair_MarkOneRepairedOneIrreparable(t *testing.T) {
	f := damagedBatch(t, "SN-1", "SN-2")
	tr := f.send(t, 2, "SN-1", "SN-2")

	f.outcome(t, tr, domain.SerialRepaired, "SN-1")
	assert.Equal(t, domain.RepairStatusUnderRepair, tr.Status)

	f.outcome(t, tr, domain.SerialIrreparable, "SN-2")
	assert.Equal(t, domain.RepairStatusPartiallyRepaired, tr.Status)
	assert.Equal(t, 1, f.faulty.RepairedQty)
	assert.Equal(t, 1, f.faulty.IrrepairedQty)
	assert.Equal(t, 0, f.faulty.UnderRepairQty)
	assert.Equal(t, domain.RepairStatusPartiallyRepaired, f.faulty.OverallStatus)
	assert.Len(t, tr.RepairUpdates, 3)
	assert.True(t, tr.TotalCost().Equal(decimal.NewFromInt(50)))
	assertDecomposed(t, &f.faulty.RepairBook, &tr.RepairBook)
}

func TestRepair_MarkRepairedTwiceFails(t *testing.T) {
	f := damagedBatch(t, "SN-1")
	tr := f.send(t, 1, "SN-1")
	f.outcome(t, tr, domain.SerialRepaired, "SN-1")

	_, err := tr.RecordOutcome([]string{"SN-1"}, 1, domain.SerialRepaired, decimal.Zero, "", "repairer", time.Now())
	require.Error(t, err)
	appErr, ok := domain.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, domain.CodeInvalidSerials, appErr.Code)
	assert.Equal(t, map[string]domain.SerialStatus{"SN-1": domain.SerialRepaired}, appErr.Details["wrongStatus"])
}

func TestRepair_InvalidFinalStatus(t *testing.T) {
	f := damagedBatch(t, "SN-1")
	tr := f.send(t, 1, "SN-1")

	_, err := tr.RecordOutcome([]string{"SN-1"}, 1, domain.SerialDisposed, decimal.Zero, "", "repairer", time.Now())
	assert.True(t, domain.HasCode(err, domain.CodeInvalidFinalStatus))
	assert.Equal(t, domain.SerialUnderRepair, tr.SerialNumbers[0].Status)
}

func TestRepair_SendToRepairSerialErrors(t *testing.T) {
	f := damagedBatch(t, "SN-1", "SN-2")
	f.send(t, 1, "SN-1")

	_, err := f.faulty.SendToRepair(uuid.New(), f.repairCenter, []string{"SN-1", "SN-9"}, 2, "", "manager", time.Now())
	require.Error(t, err)
	appErr, ok := domain.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, domain.CodeInvalidSerials, appErr.Code)
	assert.Equal(t, []string{"SN-9"}, appErr.Details["notFound"])
	assert.Equal(t, map[string]domain.SerialStatus{"SN-1": domain.SerialUnderRepair}, appErr.Details["wrongStatus"])

	_, err = f.faulty.SendToRepair(uuid.New(), f.repairCenter, nil, 2, "", "manager", time.Now())
	assert.True(t, domain.HasCode(err, domain.CodeInsufficientDamagedStock))
}

func TestRepair_ReturnRepairedToCenter(t *testing.T) {
	f := damagedBatch(t, "SN-1", "SN-2")
	tr := f.send(t, 2, "SN-1", "SN-2")
	f.outcome(t, tr, domain.SerialRepaired, "SN-1")
	f.outcome(t, tr, domain.SerialIrreparable, "SN-2")
	availableBefore := f.ledger.AvailableQuantity

	now := time.Now()
	moved, err := tr.ReleaseRepaired(domain.ActionReturnedToCenter, f.center, []string{"SN-1"}, 1, "back", "manager", now)
	require.NoError(t, err)
	require.NoError(t, f.faulty.ReleaseRepaired(tr.ID, f.center, moved, 1, "back", "manager", now))
	require.NoError(t, f.ledger.Restock(1, tr.Units(moved), domain.SourceRepairReturn, tr.ID, "manager", "back", now))

	assert.Equal(t, domain.RepairStatusReturned, tr.Status)
	assert.NotNil(t, tr.ReturnedAt)
	assert.Equal(t, 1, f.faulty.TransferredQty)
	assert.Equal(t, 0, f.faulty.RepairedQty)
	assert.Equal(t, domain.RepairStatusPartiallyRepaired, f.faulty.OverallStatus)
	assertDecomposed(t, &f.faulty.RepairBook, &tr.RepairBook)

	assert.Equal(t, availableBefore+1, f.ledger.AvailableQuantity)
	assert.Contains(t, f.ledger.AvailableSerials(), "SN-1")
	assert.NotContains(t, f.ledger.AvailableSerials(), "SN-2")
	assert.NoError(t, f.ledger.CheckBalance())
}

func TestRepair_OnwardTransferNeverDoubleBooksSerial(t *testing.T) {
	f := damagedBatch(t, "SN-1")
	tr := f.send(t, 1, "SN-1")
	f.outcome(t, tr, domain.SerialRepaired, "SN-1")

	outlet := uuid.New()
	outletLedger := domain.NewStockLedger(domain.LedgerOutlet, outlet, outlet, f.product, time.Now())
	now := time.Now()

	moved, err := tr.ReleaseRepaired(domain.ActionToOutlet, outlet, nil, 1, "", "manager", now)
	require.NoError(t, err)
	require.NoError(t, f.faulty.ReleaseRepaired(tr.ID, outlet, moved, 1, "", "manager", now))
	require.NoError(t, outletLedger.Restock(1, tr.Units(moved), domain.SourceRepairReturn, tr.ID, "manager", "", now))
	assert.Empty(t, f.ledger.MarkTransferredOut(moved, outlet, tr.ID, "manager", now))

	assert.Equal(t, []string{"SN-1"}, outletLedger.AvailableSerials())
	assert.NotContains(t, f.ledger.AvailableSerials(), "SN-1")

	centerCopy := f.ledger.SerialNumbers[0]
	assert.Equal(t, domain.SerialTransferred, centerCopy.Status)
	assert.Equal(t, outlet, centerCopy.CurrentLocation)
	assert.Equal(t, outlet, outletLedger.SerialNumbers[0].CurrentLocation)

	_, err = tr.ReleaseRepaired(domain.ActionToOutlet, outlet, []string{"SN-1"}, 1, "", "manager", now)
	assert.True(t, domain.HasCode(err, domain.CodeInvalidSerials))
}

func TestRepair_CounterOnlyBatch(t *testing.T) {
	center, repairCenter, product := uuid.New(), uuid.New(), uuid.New()
	target, err := domain.NewUsageTarget(domain.EntityDamage, uuid.Nil, center)
	require.NoError(t, err)
	usage, err := domain.NewStockUsage(center, product, target, 5, "", "tech", time.Now())
	require.NoError(t, err)

	faulty := domain.NewFaultyStockRecord(usage, false, nil, time.Now())
	assert.Equal(t, 5, faulty.DamagedQty)
	assert.Empty(t, faulty.SerialNumbers)

	id := uuid.New()
	snapshot, err := faulty.SendToRepair(id, repairCenter, nil, 3, "", "manager", time.Now())
	require.NoError(t, err)
	assert.Empty(t, snapshot)
	assert.Equal(t, domain.RepairStatusPartiallyRepaired, faulty.OverallStatus)

	tr := domain.NewRepairTransfer(id, faulty, repairCenter, 3, snapshot, "", "", "manager", time.Now())
	assert.Equal(t, domain.RepairStatusUnderRepair, tr.Status)
	assert.Equal(t, 3, tr.UnderRepairQty)

	_, err = tr.RecordOutcome(nil, 4, domain.SerialRepaired, decimal.Zero, "", "repairer", time.Now())
	require.Error(t, err)
	assert.True(t, domain.HasCode(err, domain.CodeInsufficientUnderRepairQty))
	assert.Contains(t, err.Error(), "available 3, requested 4")

	_, err = tr.RecordOutcome([]string{"X"}, 1, domain.SerialRepaired, decimal.Zero, "", "repairer", time.Now())
	assert.True(t, domain.HasCode(err, domain.CodeValidation))

	_, err = tr.RecordOutcome(nil, 3, domain.SerialRepaired, decimal.Zero, "", "repairer", time.Now())
	require.NoError(t, err)
	require.NoError(t, faulty.RecordOutcome(tr.ID, nil, 3, domain.SerialRepaired, decimal.Zero, "", "repairer", time.Now()))
	assert.Equal(t, domain.RepairStatusRepaired, tr.Status)
	assert.Equal(t, domain.RepairStatusDamaged, faulty.OverallStatus)
	assertDecomposed(t, &faulty.RepairBook, &tr.RepairBook)

	_, err = tr.ReleaseRepaired(domain.ActionToReseller, uuid.New(), nil, 4, "", "manager", time.Now())
	assert.True(t, domain.HasCode(err, domain.CodeInsufficientRepairedQty))
}

func TestRepair_NegativeCostRejected(t *testing.T) {
	f := damagedBatch(t, "SN-1")
	tr := f.send(t, 1, "SN-1")

	_, err := tr.RecordOutcome(nil, 1, domain.SerialRepaired, decimal.NewFromInt(-1), "", "repairer", time.Now())
	assert.True(t, domain.HasCode(err, domain.CodeValidation))
	assert.False(t, errors.Is(err, domain.ErrConcurrentModification))
}
