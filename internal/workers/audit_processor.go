// internal/workers/audit_processor.go
package workers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/ammerola/fieldstock-be/internal/core/domain"
	"github.com/ammerola/fieldstock-be/internal/core/ports"
)

// AuditResult is written to the task result when the audit finishes
type AuditResult struct {
	CenterID         *uuid.UUID            `json:"centerId,omitempty"`
	LedgersChecked   int                   `json:"ledgersChecked"`
	FaultyChecked    int                   `json:"faultyChecked"`
	TransfersChecked int                   `json:"transfersChecked"`
	Findings         []domain.AuditFinding `json:"findings"`
}

// AuditProcessor re-checks the stored counters against the unit statuses
// and the derived statuses. It only reports; nothing is repaired.
type AuditProcessor struct {
	reads  ports.StockStore
	logger *slog.Logger
}

func NewAuditProcessor(reads ports.StockStore, logger *slog.Logger) *AuditProcessor {
	return &AuditProcessor{
		reads:  reads,
		logger: logger.With(slog.String("processor", "ledger_audit")),
	}
}

// AuditLedgers handles TypeLedgerAudit
func (p *AuditProcessor) AuditLedgers(ctx context.Context, t *asynq.Task) error {
	req, err := decodePayload[domain.AuditRequest](t)
	if err != nil {
		return err
	}

	result, err := p.Audit(ctx, req.CenterID)
	if err != nil {
		return err
	}

	for _, f := range result.Findings {
		p.logger.WarnContext(ctx, "ledger audit finding",
			slog.String("record_type", f.RecordType),
			slog.String("record_id", f.RecordID.String()),
			slog.String("problem", f.Problem))
	}
	p.logger.InfoContext(ctx, "ledger audit finished",
		slog.String("requested_by", req.RequestedBy),
		slog.Int("ledgers", result.LedgersChecked),
		slog.Int("faulty", result.FaultyChecked),
		slog.Int("transfers", result.TransfersChecked),
		slog.Int("findings", len(result.Findings)))

	return writeResult(t, result)
}

// Audit checks every ledger, faulty record and repair transfer visible from
// center. A nil center audits everything.
func (p *AuditProcessor) Audit(ctx context.Context, center *uuid.UUID) (*AuditResult, error) {
	result := &AuditResult{CenterID: center, Findings: []domain.AuditFinding{}}
	add := func(recordType string, id uuid.UUID, problem string) {
		result.Findings = append(result.Findings, domain.AuditFinding{RecordType: recordType, RecordID: id, Problem: problem})
	}

	ledgers, err := p.reads.Ledgers().List(ctx, ports.LedgerFilter{OwnerID: center})
	if err != nil {
		return nil, fmt.Errorf("failed to list ledgers: %w", err)
	}
	for _, l := range ledgers {
		if err := l.CheckBalance(); err != nil {
			add("stock_ledger", l.ID, err.Error())
		}
	}
	result.LedgersChecked = len(ledgers)

	faulty, err := p.reads.Faulty().List(ctx, ports.FaultyStockFilter{CenterID: center})
	if err != nil {
		return nil, fmt.Errorf("failed to list faulty stock: %w", err)
	}
	for _, r := range faulty {
		if err := r.CheckDecomposition(); err != nil {
			add("faulty_stock", r.ID, err.Error())
		}
		if want := domain.DeriveOverallStatus(r.Counts()); r.OverallStatus != want {
			add("faulty_stock", r.ID, fmt.Sprintf("overall status %s, counters give %s", r.OverallStatus, want))
		}
	}
	result.FaultyChecked = len(faulty)

	transfers, err := p.transfers(ctx, center)
	if err != nil {
		return nil, err
	}
	for _, tr := range transfers {
		if err := tr.CheckDecomposition(); err != nil {
			add("repair_transfer", tr.ID, err.Error())
		}
		if want := domain.DeriveTransferStatus(tr.Counts(), tr.TransferredQty); tr.Status != want {
			add("repair_transfer", tr.ID, fmt.Sprintf("status %s, counters give %s", tr.Status, want))
		}
	}
	result.TransfersChecked = len(transfers)

	return result, nil
}

// transfers returns the transfers sent from or received by center, once each
func (p *AuditProcessor) transfers(ctx context.Context, center *uuid.UUID) ([]*domain.RepairTransferRecord, error) {
	sent, err := p.reads.Repairs().ListAll(ctx, ports.RepairTransferFilter{FromCenterID: center})
	if err != nil {
		return nil, fmt.Errorf("failed to list repair transfers: %w", err)
	}
	if center == nil {
		return sent, nil
	}

	received, err := p.reads.Repairs().ListAll(ctx, ports.RepairTransferFilter{ToCenterID: center})
	if err != nil {
		return nil, fmt.Errorf("failed to list repair transfers: %w", err)
	}
	seen := make(map[uuid.UUID]struct{}, len(sent))
	for _, tr := range sent {
		seen[tr.ID] = struct{}{}
	}
	for _, tr := range received {
		if _, ok := seen[tr.ID]; !ok {
			sent = append(sent, tr)
		}
	}
	return sent, nil
}
