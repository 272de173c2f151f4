// internal/core/services/reporting.go
package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ammerola/fieldstock-be/internal/core/domain"
	"github.com/ammerola/fieldstock-be/internal/core/ports"
)

const (
	sourceFaultyStock    = "faulty_stock"
	sourceRepairTransfer = "repair_transfer"
)

// ReportingService serves read-only views recomputed from faulty stock and
// repair transfer records
type ReportingService struct {
	stockBase
	exportMaxRows int
}

var _ ports.ReportingService = (*ReportingService)(nil)

func NewReportingService(deps Deps, exportMaxRows int) *ReportingService {
	if exportMaxRows <= 0 {
		exportMaxRows = 50000
	}
	return &ReportingService{stockBase: newStockBase(deps, "reporting"), exportMaxRows: exportMaxRows}
}

// Serials merges the units of faulty batches and repair transfers for a
// product. When a serial appears in several records the most recently
// updated one wins.
func (s *ReportingService) Serials(ctx context.Context, actor *domain.Actor, q ports.SerialsQuery) (*ports.SerialsReport, error) {
	center, err := actor.CenterFilter(domain.CapReportView, q.CenterID)
	if err != nil {
		return nil, err
	}
	product, err := s.Catalog.GetProduct(ctx, q.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	if product == nil {
		return nil, domain.NewNotFound("product", q.ProductID)
	}

	batches, err := s.Reads.Faulty().List(ctx, ports.FaultyStockFilter{CenterID: center, ProductID: &product.ID})
	if err != nil {
		return nil, fmt.Errorf("failed to list faulty stock: %w", err)
	}
	transfers, err := s.Reads.Repairs().ListAll(ctx, ports.RepairTransferFilter{FromCenterID: center, ProductID: &product.ID})
	if err != nil {
		return nil, fmt.Errorf("failed to list repair transfers: %w", err)
	}

	merged := make(map[string]ports.SerialEntry)
	offer := func(u domain.SerialUnit, centerID uuid.UUID, source string, sourceID uuid.UUID, recordUpdated time.Time) {
		updated := u.UpdatedAt
		if updated.IsZero() {
			updated = recordUpdated
		}
		if prev, ok := merged[u.SerialNumber]; ok && !updated.After(prev.UpdatedAt) {
			return
		}
		merged[u.SerialNumber] = ports.SerialEntry{
			SerialNumber:    u.SerialNumber,
			Status:          u.Status,
			CenterID:        centerID,
			CurrentLocation: u.CurrentLocation,
			Source:          source,
			SourceID:        sourceID,
			UpdatedAt:       updated,
		}
	}
	for _, f := range batches {
		for _, u := range f.SerialNumbers {
			offer(u, f.CenterID, sourceFaultyStock, f.ID, f.UpdatedAt)
		}
	}
	for _, t := range transfers {
		for _, u := range t.SerialNumbers {
			offer(u, t.FromCenterID, sourceRepairTransfer, t.ID, t.UpdatedAt)
		}
	}

	report := &ports.SerialsReport{
		ProductID: product.ID,
		Serials:   make([]ports.SerialEntry, 0, len(merged)),
		Summary:   make(map[uuid.UUID]map[domain.SerialStatus]int),
	}
	for _, e := range merged {
		if q.Status != nil && e.Status != *q.Status {
			continue
		}
		report.Serials = append(report.Serials, e)
		byStatus, ok := report.Summary[e.CenterID]
		if !ok {
			byStatus = make(map[domain.SerialStatus]int)
			report.Summary[e.CenterID] = byStatus
		}
		byStatus[e.Status]++
	}
	sort.Slice(report.Serials, func(i, j int) bool {
		return report.Serials[i].SerialNumber < report.Serials[j].SerialNumber
	})
	return report, nil
}

// transferScope turns the viewing center into a repair transfer filter.
// Repair centers see what was sent to them; other centers what they sent.
func (s *ReportingService) transferScope(ctx context.Context, center *uuid.UUID) (ports.RepairTransferFilter, error) {
	var filter ports.RepairTransferFilter
	if center == nil {
		return filter, nil
	}
	c, err := s.Centers.GetCenter(ctx, *center)
	if err != nil {
		return filter, fmt.Errorf("failed to load center: %w", err)
	}
	if c == nil {
		return filter, domain.NewNotFound("center", *center)
	}
	if c.Type == domain.CenterRepair {
		filter.ToCenterID = center
	} else {
		filter.FromCenterID = center
	}
	return filter, nil
}

func scopeKey(center *uuid.UUID) string {
	if center == nil {
		return "all"
	}
	return center.String()
}

// RepairTransfersForCenter lists transfers of one center with a per-status
// dashboard over all of them
func (s *ReportingService) RepairTransfersForCenter(ctx context.Context, actor *domain.Actor, q ports.RepairTransferQuery) (*ports.RepairTransferPage, error) {
	center, err := actor.CenterFilter(domain.CapReportView, q.CenterID)
	if err != nil {
		return nil, err
	}
	if q.Status != nil && !q.Status.IsValid() {
		return nil, domain.NewValidationError("unknown repair status %q", *q.Status)
	}
	filter, err := s.transferScope(ctx, center)
	if err != nil {
		return nil, err
	}
	filter.Status = q.Status
	filter.PageParams = q.PageParams

	page, err := s.Reads.Repairs().List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list repair transfers: %w", err)
	}

	dashboard := make(map[domain.RepairStatus]ports.StatusSummary)
	fetch := func() (interface{}, error) {
		return s.Reads.Repairs().StatusSummary(ctx, filter)
	}
	if s.Cache == nil {
		v, err := fetch()
		if err != nil {
			return nil, fmt.Errorf("failed to build repair dashboard: %w", err)
		}
		dashboard = v.(map[domain.RepairStatus]ports.StatusSummary)
	} else {
		key := ports.BuildCacheKey(ports.PrefixRepairDashboard, scopeKey(center))
		if err := s.Cache.GetOrSet(ctx, key, &dashboard, fetch, s.CacheTTL); err != nil {
			return nil, fmt.Errorf("failed to build repair dashboard: %w", err)
		}
	}

	return &ports.RepairTransferPage{ListResult: page, Dashboard: dashboard}, nil
}

type productCenterKey struct {
	product uuid.UUID
	center  uuid.UUID
}

func sortedQuantities(totals map[productCenterKey]*ports.ProductQuantity) []ports.ProductQuantity {
	out := make([]ports.ProductQuantity, 0, len(totals))
	for _, pq := range totals {
		out = append(out, *pq)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ProductID != out[j].ProductID {
			return out[i].ProductID.String() < out[j].ProductID.String()
		}
		return out[i].CenterID.String() < out[j].CenterID.String()
	})
	return out
}

// UnderRepair sums the units currently at repair centers per product and
// origin center
func (s *ReportingService) UnderRepair(ctx context.Context, actor *domain.Actor, centerID *uuid.UUID) ([]ports.ProductQuantity, error) {
	center, err := actor.CenterFilter(domain.CapReportView, centerID)
	if err != nil {
		return nil, err
	}

	compute := func() (interface{}, error) {
		transfers, err := s.Reads.Repairs().ListAll(ctx, ports.RepairTransferFilter{FromCenterID: center})
		if err != nil {
			return nil, fmt.Errorf("failed to list repair transfers: %w", err)
		}
		totals := make(map[productCenterKey]*ports.ProductQuantity)
		for _, t := range transfers {
			if t.UnderRepairQty == 0 {
				continue
			}
			k := productCenterKey{t.ProductID, t.FromCenterID}
			pq, ok := totals[k]
			if !ok {
				pq = &ports.ProductQuantity{ProductID: t.ProductID, CenterID: t.FromCenterID, Cost: decimal.Zero}
				totals[k] = pq
			}
			pq.Quantity += t.UnderRepairQty
		}
		return sortedQuantities(totals), nil
	}

	if s.Cache == nil {
		v, err := compute()
		if err != nil {
			return nil, err
		}
		return v.([]ports.ProductQuantity), nil
	}
	var out []ports.ProductQuantity
	key := ports.BuildCacheKey(ports.PrefixUnderRepair, scopeKey(center))
	if err := s.Cache.GetOrSet(ctx, key, &out, compute, s.CacheTTL); err != nil {
		return nil, err
	}
	if out == nil {
		out = []ports.ProductQuantity{}
	}
	return out, nil
}

// RepairedInPeriod sums repaired outcomes recorded within [from, to]
func (s *ReportingService) RepairedInPeriod(ctx context.Context, actor *domain.Actor, from, to time.Time, centerID *uuid.UUID) ([]ports.ProductQuantity, error) {
	center, err := actor.CenterFilter(domain.CapReportView, centerID)
	if err != nil {
		return nil, err
	}
	if to.Before(from) {
		return nil, domain.NewValidationError("from must not be after to")
	}

	transfers, err := s.Reads.Repairs().ListAll(ctx, ports.RepairTransferFilter{
		FromCenterID: center,
		UpdatedFrom:  &from,
		UpdatedTo:    &to,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list repair transfers: %w", err)
	}

	totals := make(map[productCenterKey]*ports.ProductQuantity)
	for _, t := range transfers {
		for _, u := range t.RepairUpdates {
			if u.Action != domain.ActionOutcome || u.Status != domain.SerialRepaired {
				continue
			}
			if u.At.Before(from) || u.At.After(to) {
				continue
			}
			k := productCenterKey{t.ProductID, t.FromCenterID}
			pq, ok := totals[k]
			if !ok {
				pq = &ports.ProductQuantity{ProductID: t.ProductID, CenterID: t.FromCenterID, Cost: decimal.Zero}
				totals[k] = pq
			}
			pq.Quantity += u.Quantity
			pq.Cost = pq.Cost.Add(u.Cost)
		}
	}
	return sortedQuantities(totals), nil
}

func (s *ReportingService) exportFilter(actor *domain.Actor, req domain.ExportRequest) (ports.RepairTransferFilter, error) {
	center, err := actor.CenterFilter(domain.CapReportView, req.FromCenterID)
	if err != nil {
		return ports.RepairTransferFilter{}, err
	}
	if req.Status != nil && !req.Status.IsValid() {
		return ports.RepairTransferFilter{}, domain.NewValidationError("unknown repair status %q", *req.Status)
	}
	if req.From != nil && req.To != nil && req.To.Before(*req.From) {
		return ports.RepairTransferFilter{}, domain.NewValidationError("from must not be after to")
	}
	return ports.RepairTransferFilter{
		FromCenterID: center,
		Status:       req.Status,
		UpdatedFrom:  req.From,
		UpdatedTo:    req.To,
	}, nil
}

// ExportRepairTransfers returns every transfer matching req for a
// synchronous spreadsheet download
func (s *ReportingService) ExportRepairTransfers(ctx context.Context, actor *domain.Actor, req domain.ExportRequest) ([]*domain.RepairTransferRecord, error) {
	filter, err := s.exportFilter(actor, req)
	if err != nil {
		return nil, err
	}
	rows, err := s.Reads.Repairs().ListAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list repair transfers: %w", err)
	}
	if len(rows) > s.exportMaxRows {
		return nil, domain.NewValidationError("export matches %d transfers, limit is %d; narrow the filter or use the async export",
			len(rows), s.exportMaxRows)
	}
	return rows, nil
}

// RequestExport queues a spreadsheet export to object storage
func (s *ReportingService) RequestExport(ctx context.Context, actor *domain.Actor, req domain.ExportRequest) (string, error) {
	filter, err := s.exportFilter(actor, req)
	if err != nil {
		return "", err
	}
	if s.Tasks == nil {
		return "", domain.NewInvalidState("background tasks are not configured")
	}
	req.FromCenterID = filter.FromCenterID
	req.RequestedBy = actor.ID

	id, err := s.Tasks.EnqueueExport(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to enqueue export: %w", err)
	}
	s.logger.InfoContext(ctx, "repair transfer export queued", slog.String("task_id", id))
	return id, nil
}

// RequestLedgerAudit queues a consistency check of faulty stock and
// repair transfer counters
func (s *ReportingService) RequestLedgerAudit(ctx context.Context, actor *domain.Actor, req domain.AuditRequest) (string, error) {
	center, err := actor.CenterFilter(domain.CapLedgerAudit, req.CenterID)
	if err != nil {
		return "", err
	}
	if s.Tasks == nil {
		return "", domain.NewInvalidState("background tasks are not configured")
	}
	req.CenterID = center
	req.RequestedBy = actor.ID

	id, err := s.Tasks.EnqueueLedgerAudit(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to enqueue ledger audit: %w", err)
	}
	s.logger.InfoContext(ctx, "ledger audit queued", slog.String("task_id", id))
	return id, nil
}

func (s *ReportingService) InvalidateRepairViews(ctx context.Context) error {
	return s.invalidateRepairViews(ctx)
}
