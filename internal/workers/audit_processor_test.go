// internal/workers/audit_processor_test.go
package workers_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/fieldstock-be/internal/core/domain"
	"github.com/ammerola/fieldstock-be/internal/workers"
	"github.com/ammerola/fieldstock-be/test/helpers"
)

func damagedBatch(center uuid.UUID, qty int) *domain.FaultyStockRecord {
	now := time.Now().UTC()
	r := &domain.FaultyStockRecord{
		ID:            uuid.New(),
		CenterID:      center,
		ProductID:     uuid.New(),
		UsageID:       uuid.New(),
		RepairBook:    domain.RepairBook{Quantity: qty, DamagedQty: qty, SerialNumbers: []domain.SerialUnit{}},
		RepairHistory: []domain.RepairEntry{},
		ReportedBy:    "tech-1",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	r.OverallStatus = domain.DeriveOverallStatus(r.Counts())
	return r
}

func findingsFor(findings []domain.AuditFinding, id uuid.UUID) []domain.AuditFinding {
	var out []domain.AuditFinding
	for _, f := range findings {
		if f.RecordID == id {
			out = append(out, f)
		}
	}
	return out
}

func TestAuditProcessor_Audit(t *testing.T) {
	branch, repair, elsewhere := uuid.New(), uuid.New(), uuid.New()

	healthyLedger := helpers.NewCenterLedger(t, branch, uuid.New(), 3, "SN-1", "SN-2", "SN-3")
	brokenLedger := helpers.NewCenterLedger(t, branch, uuid.New(), 5)
	brokenLedger.AvailableQuantity = 4

	healthyBatch := damagedBatch(branch, 2)
	leakyBatch := damagedBatch(branch, 3)
	leakyBatch.DamagedQty = 2
	staleBatch := damagedBatch(branch, 2)
	staleBatch.OverallStatus = domain.RepairStatusRepaired
	foreignBatch := damagedBatch(elsewhere, 1)
	foreignBatch.DamagedQty = 0

	sent := underRepairTransfer(branch, repair, 2)
	sent.Status = domain.RepairStatusReturned
	received := underRepairTransfer(elsewhere, branch, 1)

	store := helpers.NewMemStore()
	store.Seed(healthyLedger, brokenLedger, healthyBatch, leakyBatch, staleBatch, foreignBatch, sent, received)

	processor := workers.NewAuditProcessor(store, helpers.TestLogger())
	result, err := processor.Audit(context.Background(), &branch)
	require.NoError(t, err)

	assert.Equal(t, 2, result.LedgersChecked)
	assert.Equal(t, 3, result.FaultyChecked)
	assert.Equal(t, 2, result.TransfersChecked)

	assert.Empty(t, findingsFor(result.Findings, healthyLedger.ID))
	assert.Empty(t, findingsFor(result.Findings, healthyBatch.ID))
	assert.Empty(t, findingsFor(result.Findings, received.ID))
	assert.Empty(t, findingsFor(result.Findings, foreignBatch.ID))

	ledgerFindings := findingsFor(result.Findings, brokenLedger.ID)
	require.Len(t, ledgerFindings, 1)
	assert.Equal(t, "stock_ledger", ledgerFindings[0].RecordType)
	assert.Contains(t, ledgerFindings[0].Problem, "total 5")

	leaky := findingsFor(result.Findings, leakyBatch.ID)
	require.NotEmpty(t, leaky)
	assert.Equal(t, "faulty_stock", leaky[0].RecordType)
	assert.Contains(t, leaky[0].Problem, "quantity 3")

	stale := findingsFor(result.Findings, staleBatch.ID)
	require.Len(t, stale, 1)
	assert.Contains(t, stale[0].Problem, "overall status repaired")

	transfer := findingsFor(result.Findings, sent.ID)
	require.Len(t, transfer, 1)
	assert.Equal(t, "repair_transfer", transfer[0].RecordType)
	assert.Contains(t, transfer[0].Problem, "counters give under_repair")
}

func TestAuditProcessor_AllCenters(t *testing.T) {
	store := helpers.NewMemStore()
	broken := damagedBatch(uuid.New(), 2)
	broken.DamagedQty = 1
	store.Seed(damagedBatch(uuid.New(), 1), broken)

	processor := workers.NewAuditProcessor(store, helpers.TestLogger())
	result, err := processor.Audit(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, 2, result.FaultyChecked)
	assert.NotEmpty(t, findingsFor(result.Findings, broken.ID))
}

func TestAuditProcessor_AuditLedgers(t *testing.T) {
	center := uuid.New()
	store := helpers.NewMemStore()
	store.Seed(damagedBatch(center, 2))

	payload, err := json.Marshal(domain.AuditRequest{RequestedBy: "auditor", CenterID: &center})
	require.NoError(t, err)

	processor := workers.NewAuditProcessor(store, helpers.TestLogger())
	assert.NoError(t, processor.AuditLedgers(context.Background(), asynq.NewTask(workers.TypeLedgerAudit, payload)))
	assert.Error(t, processor.AuditLedgers(context.Background(), asynq.NewTask(workers.TypeLedgerAudit, []byte("["))))
}
