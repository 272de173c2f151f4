// internal/core/services/repair.go
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

// RepairService moves faulty stock through repair centers and back into
// circulation
type RepairService struct {
	stockBase
}

var _ ports.RepairService = (*RepairService)(nil)

func NewRepairService(deps Deps) *RepairService {
	return &RepairService{stockBase: newStockBase(deps, "repair")}
}

// TransferToRepairCenter sends damaged units of each item to one repair
// center. Request-level problems (permission, repair center) fail the whole
// call; item problems are reported per index.
func (s *RepairService) TransferToRepairCenter(ctx context.Context, actor *domain.Actor, req ports.RepairTransferRequest) (*ports.RepairTransferResult, error) {
	if err := actor.Require(domain.CapFaultyTransfer, domain.ScopeOwnCenter); err != nil {
		return nil, err
	}
	if len(req.Items) == 0 {
		return nil, domain.NewValidationError("at least one item is required")
	}
	repairCenter, err := s.center(ctx, req.RepairCenterID)
	if err != nil {
		return nil, err
	}
	if repairCenter.Type != domain.CenterRepair {
		return nil, domain.NewValidationError("center %s is not a repair center", repairCenter.ID)
	}

	batch := runBatch(ctx, &s.stockBase, "transfer_to_repair", req.Items,
		func(it ports.RepairTransferItem) uuid.UUID { return it.ProductID },
		func(ctx context.Context, it ports.RepairTransferItem) (*domain.RepairTransferRecord, error) {
			return s.transferOne(ctx, actor, repairCenter, it, req.TransferRemark)
		})

	result := &ports.RepairTransferResult{BatchResult: *batch, RepairCenter: repairCenter}
	for _, t := range batch.Succeeded {
		result.TotalQuantity += t.Quantity
	}
	if len(batch.Succeeded) > 0 {
		_ = s.invalidateRepairViews(ctx)
	}
	return result, nil
}

func (s *RepairService) transferOne(ctx context.Context, actor *domain.Actor, repairCenter *domain.Center, it ports.RepairTransferItem, transferRemark string) (*domain.RepairTransferRecord, error) {
	product, err := s.product(ctx, it.ProductID)
	if err != nil {
		return nil, err
	}
	origin, err := actor.CenterFilter(domain.CapFaultyTransfer, it.CenterID)
	if err != nil {
		return nil, err
	}

	// resolved outside the transaction only to pick the lock key
	planned, err := resolveFaultySource(ctx, s.Reads, product.ID, origin, it)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	var transfer *domain.RepairTransferRecord
	err = s.execute(ctx, stockKey(planned.CenterID, product.ID), func(ctx context.Context, store ports.StockStore) error {
		source, err := resolveFaultySource(ctx, store, product.ID, origin, it)
		if err != nil {
			return err
		}
		if source.CenterID != planned.CenterID {
			return domain.NewConflict("faulty stock for product %s changed while the transfer was prepared", product.ID)
		}
		if source.CenterID == repairCenter.ID {
			return domain.NewValidationError("repair center must differ from the origin center")
		}

		transferID := uuid.New()
		units, err := source.SendToRepair(transferID, repairCenter.ID, it.SerialNumbers, it.Quantity, it.DamageRemark, actor.ID, now)
		if err != nil {
			return err
		}
		transfer = domain.NewRepairTransfer(transferID, source, repairCenter.ID, it.Quantity, units,
			it.DamageRemark, transferRemark, actor.ID, now)

		if err := store.Faulty().Save(ctx, source); err != nil {
			return err
		}
		return store.Repairs().Create(ctx, transfer)
	})
	if err != nil {
		return nil, err
	}

	s.Metrics.RecordUnitsMoved("transfer_to_repair", transfer.Quantity)
	s.logger.InfoContext(ctx, "faulty stock sent to repair",
		slog.String("repair_transfer_id", transfer.ID.String()),
		slog.String("faulty_stock_id", transfer.FaultyStockID.String()),
		slog.String("repair_center_id", repairCenter.ID.String()),
		slog.Int("quantity", transfer.Quantity))
	s.notify(ctx, transferNotification(domain.NotifySentToRepair, transfer, transfer.Quantity, actor.ID))
	return transfer, nil
}

// resolveFaultySource loads the batches a transfer item may draw from and
// picks one. With explicit serials every batch of the product in scope is
// also loaded so serials outside the damaged batches report their status.
func resolveFaultySource(ctx context.Context, store ports.StockStore, productID uuid.UUID, origin *uuid.UUID, it ports.RepairTransferItem) (*domain.FaultyStockRecord, error) {
	records, err := store.Faulty().FindWithDamaged(ctx, productID, origin)
	if err != nil {
		return nil, fmt.Errorf("failed to find faulty stock: %w", err)
	}
	var inScope []*domain.FaultyStockRecord
	if len(records) > 0 && len(it.SerialNumbers) > 0 {
		inScope, err = store.Faulty().List(ctx, ports.FaultyStockFilter{ProductID: &productID, CenterID: origin})
		if err != nil {
			return nil, fmt.Errorf("failed to list faulty stock: %w", err)
		}
	}
	return chooseFaultySource(records, inScope, productID, it.Quantity, it.SerialNumbers)
}

// chooseFaultySource picks the faulty batch a transfer draws from. Without
// serials it is the oldest batch with damaged units; explicit serials select
// the batch that holds them and may not span batches. inScope is searched
// for serials missing from records to tell wrong status from not found.
func chooseFaultySource(records, inScope []*domain.FaultyStockRecord, productID uuid.UUID, quantity int, serials []string) (*domain.FaultyStockRecord, error) {
	if len(records) == 0 {
		return nil, domain.NewNoFaultyStock(productID)
	}
	if quantity <= 0 {
		return nil, domain.NewValidationError("quantity must be greater than zero")
	}

	damaged := 0
	for _, r := range records {
		damaged += r.DamagedQty
	}
	if damaged < quantity {
		return nil, domain.NewInsufficientDamagedStock(damaged, quantity)
	}

	if len(serials) == 0 {
		first := records[0]
		if first.DamagedQty < quantity {
			return nil, domain.NewInsufficientDamagedStock(first.DamagedQty, quantity).
				WithDetail("faultyStockId", first.ID.String())
		}
		return first, nil
	}

	var (
		notFound []string
		wrong    = make(map[string]domain.SerialStatus)
		holder   *domain.FaultyStockRecord
		spans    bool
	)
	for _, sn := range serials {
		var found *domain.FaultyStockRecord
		var status domain.SerialStatus
		for _, r := range records {
			u, ok := r.FindSerial(sn)
			if !ok {
				continue
			}
			status = u.Status
			if u.Status == domain.SerialDamaged {
				found = r
				break
			}
		}
		if found == nil && status == "" {
			status = latestSerialStatus(inScope, sn)
		}
		switch {
		case found != nil:
			if holder != nil && holder != found {
				spans = true
			}
			if holder == nil {
				holder = found
			}
		case status != "":
			wrong[sn] = status
		default:
			notFound = append(notFound, sn)
		}
	}
	if len(notFound) > 0 || len(wrong) > 0 {
		return nil, domain.NewInvalidSerials(notFound, wrong)
	}
	if spans {
		return nil, domain.NewValidationError("serial numbers belong to more than one faulty stock batch, transfer them separately")
	}
	return holder, nil
}

// latestSerialStatus is the status of sn in the most recently updated batch
// that holds it, or "" when no batch does
func latestSerialStatus(records []*domain.FaultyStockRecord, sn string) domain.SerialStatus {
	var (
		status  domain.SerialStatus
		updated time.Time
	)
	for _, r := range records {
		u, ok := r.FindSerial(sn)
		if !ok {
			continue
		}
		if status == "" || r.UpdatedAt.After(updated) {
			status, updated = u.Status, r.UpdatedAt
		}
	}
	return status
}

// requireTransferAccess lets either side of a repair transfer act on it
func requireTransferAccess(actor *domain.Actor, capability domain.Capability, t *domain.RepairTransferRecord) error {
	if actor.CanAccessCenter(capability, t.ToCenterID) {
		return nil
	}
	return actor.RequireCenter(capability, t.FromCenterID)
}

// MarkOutcome records repaired or irreparable units on repair transfers and
// mirrors the change on their faulty batches
func (s *RepairService) MarkOutcome(ctx context.Context, actor *domain.Actor, items []ports.OutcomeItem) *ports.BatchResult[*domain.RepairTransferRecord] {
	batch := runBatch(ctx, &s.stockBase, "mark_outcome", items,
		func(it ports.OutcomeItem) uuid.UUID { return it.ProductID },
		func(ctx context.Context, it ports.OutcomeItem) (*domain.RepairTransferRecord, error) {
			return s.outcomeOne(ctx, actor, it)
		})
	if len(batch.Succeeded) > 0 {
		_ = s.invalidateRepairViews(ctx)
	}
	return batch
}

// resolveOutcomeTransfer finds the transfer an outcome applies to
func (s *RepairService) resolveOutcomeTransfer(ctx context.Context, actor *domain.Actor, it ports.OutcomeItem) (*domain.RepairTransferRecord, error) {
	if it.RepairTransferID != nil {
		return s.loadTransfer(ctx, *it.RepairTransferID)
	}
	if it.ProductID == uuid.Nil {
		return nil, domain.NewValidationError("repair_transfer_id or product_id is required")
	}
	origin := actor.CenterID
	if it.CenterID != nil {
		origin = *it.CenterID
	}
	t, err := s.Reads.Repairs().FindOpenForOrigin(ctx, it.ProductID, origin)
	if err != nil {
		return nil, fmt.Errorf("failed to find open repair transfer: %w", err)
	}
	if t == nil {
		return nil, domain.NewNotFound("open repair transfer", stockKey(origin, it.ProductID))
	}
	return t, nil
}

func (s *RepairService) loadTransfer(ctx context.Context, id uuid.UUID) (*domain.RepairTransferRecord, error) {
	t, err := s.Reads.Repairs().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load repair transfer: %w", err)
	}
	if t == nil {
		return nil, domain.NewNotFound("repair transfer", id)
	}
	return t, nil
}

// lockedPair re-reads a transfer and its faulty batch inside the transaction
func lockedPair(ctx context.Context, store ports.StockStore, id uuid.UUID) (*domain.RepairTransferRecord, *domain.FaultyStockRecord, error) {
	t, err := store.Repairs().GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if t == nil {
		return nil, nil, domain.NewNotFound("repair transfer", id)
	}
	f, err := store.Faulty().GetByID(ctx, t.FaultyStockID)
	if err != nil {
		return nil, nil, err
	}
	if f == nil {
		return nil, nil, domain.NewInvalidState("faulty stock %s of repair transfer %s is missing", t.FaultyStockID, t.ID)
	}
	return t, f, nil
}

// applyOutcome moves units under repair to final on both records
func applyOutcome(t *domain.RepairTransferRecord, f *domain.FaultyStockRecord, it ports.OutcomeItem, by string, now time.Time) ([]string, error) {
	moved, err := t.RecordOutcome(it.SerialNumbers, it.Quantity, it.FinalStatus, it.RepairCost, it.Remark, by, now)
	if err != nil {
		return nil, err
	}
	if err := f.RecordOutcome(t.ID, moved, it.Quantity, it.FinalStatus, it.RepairCost, it.Remark, by, now); err != nil {
		return nil, err
	}
	return moved, nil
}

func (s *RepairService) outcomeOne(ctx context.Context, actor *domain.Actor, it ports.OutcomeItem) (*domain.RepairTransferRecord, error) {
	if _, err := domain.ParseFinalStatus(string(it.FinalStatus)); err != nil {
		return nil, err
	}
	current, err := s.resolveOutcomeTransfer(ctx, actor, it)
	if err != nil {
		return nil, err
	}
	if err := requireTransferAccess(actor, domain.CapRepairUpdate, current); err != nil {
		return nil, err
	}

	now := s.Now()
	var updated *domain.RepairTransferRecord
	err = s.execute(ctx, stockKey(current.FromCenterID, current.ProductID), func(ctx context.Context, store ports.StockStore) error {
		t, f, err := lockedPair(ctx, store, current.ID)
		if err != nil {
			return err
		}
		if _, err := applyOutcome(t, f, it, actor.ID, now); err != nil {
			return err
		}
		if err := store.Repairs().Save(ctx, t); err != nil {
			return err
		}
		if err := store.Faulty().Save(ctx, f); err != nil {
			return err
		}
		updated = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Metrics.RecordUnitsMoved("mark_"+string(it.FinalStatus), it.Quantity)
	s.logger.InfoContext(ctx, "repair outcome recorded",
		slog.String("repair_transfer_id", updated.ID.String()),
		slog.String("final_status", string(it.FinalStatus)),
		slog.Int("quantity", it.Quantity),
		slog.String("status", string(updated.Status)))
	s.notify(ctx, transferNotification(domain.NotifyRepairOutcome, updated, it.Quantity, actor.ID))
	return updated, nil
}

// ReturnFromRepairCenter records the outcome of each item and restocks
// repaired units at the origin center
func (s *RepairService) ReturnFromRepairCenter(ctx context.Context, actor *domain.Actor, items []ports.ReturnItem, returnRemark string) *ports.BatchResult[*ports.ReturnOutcome] {
	batch := runBatch(ctx, &s.stockBase, "return_from_repair", items,
		func(it ports.ReturnItem) uuid.UUID { return it.ProductID },
		func(ctx context.Context, it ports.ReturnItem) (*ports.ReturnOutcome, error) {
			return s.returnOne(ctx, actor, it, returnRemark)
		})
	if len(batch.Succeeded) > 0 {
		_ = s.invalidateRepairViews(ctx)
	}
	return batch
}

func (s *RepairService) returnOne(ctx context.Context, actor *domain.Actor, it ports.ReturnItem, returnRemark string) (*ports.ReturnOutcome, error) {
	if _, err := domain.ParseFinalStatus(string(it.FinalStatus)); err != nil {
		return nil, err
	}
	current, err := s.loadTransfer(ctx, it.RepairTransferID)
	if err != nil {
		return nil, err
	}
	if it.ProductID != uuid.Nil && it.ProductID != current.ProductID {
		return nil, domain.NewValidationError("repair transfer %s is not for product %s", current.ID, it.ProductID)
	}
	if err := requireTransferAccess(actor, domain.CapRepairReturn, current); err != nil {
		return nil, err
	}

	outcome := ports.OutcomeItem{
		RepairTransferID: &it.RepairTransferID,
		ProductID:        current.ProductID,
		Quantity:         it.Quantity,
		SerialNumbers:    it.SerialNumbers,
		FinalStatus:      it.FinalStatus,
		RepairCost:       it.RepairCost,
		Remark:           it.RepairRemark,
	}

	now := s.Now()
	out := &ports.ReturnOutcome{}
	err = s.execute(ctx, stockKey(current.FromCenterID, current.ProductID), func(ctx context.Context, store ports.StockStore) error {
		t, f, err := lockedPair(ctx, store, current.ID)
		if err != nil {
			return err
		}
		moved, err := applyOutcome(t, f, outcome, actor.ID, now)
		if err != nil {
			return err
		}

		if it.FinalStatus == domain.SerialRepaired {
			returned, err := t.ReleaseRepaired(domain.ActionReturnedToCenter, t.FromCenterID, moved, it.Quantity, returnRemark, actor.ID, now)
			if err != nil {
				return err
			}
			if err := f.ReleaseRepaired(t.ID, t.FromCenterID, returned, it.Quantity, returnRemark, actor.ID, now); err != nil {
				return err
			}
			if _, err := s.credit(ctx, store, domain.LedgerCenter, t.FromCenterID, t.FromCenterID, t, returned, it.Quantity, returnRemark, actor.ID, now); err != nil {
				return err
			}
			out.ReturnedQty = it.Quantity
			out.ReturnedSerials = returned
		}

		if err := store.Repairs().Save(ctx, t); err != nil {
			return err
		}
		if err := store.Faulty().Save(ctx, f); err != nil {
			return err
		}
		out.Transfer = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Metrics.RecordUnitsMoved("return_from_repair", out.ReturnedQty)
	s.logger.InfoContext(ctx, "repair transfer returned",
		slog.String("repair_transfer_id", out.Transfer.ID.String()),
		slog.String("final_status", string(it.FinalStatus)),
		slog.Int("returned", out.ReturnedQty),
		slog.String("status", string(out.Transfer.Status)))
	s.notify(ctx, transferNotification(domain.NotifyRepairOutcome, out.Transfer, it.Quantity, actor.ID))
	return out, nil
}

// credit restocks a ledger with units released from t, creating the
// ledger on first receipt
func (s *RepairService) credit(ctx context.Context, store ports.StockStore, kind domain.LedgerKind, owner, location uuid.UUID,
	t *domain.RepairTransferRecord, serials []string, quantity int, remark, by string, now time.Time) (*domain.StockLedger, error) {
	ledger, err := store.Ledgers().Get(ctx, kind, owner, t.ProductID)
	if err != nil {
		return nil, err
	}
	create := ledger == nil
	if create {
		ledger = domain.NewStockLedger(kind, owner, location, t.ProductID, now)
	}
	if err := ledger.Restock(quantity, t.Units(serials), domain.SourceRepairReturn, t.ID, by, remark, now); err != nil {
		return nil, err
	}
	if create {
		err = store.Ledgers().Create(ctx, ledger)
	} else {
		err = store.Ledgers().Save(ctx, ledger)
	}
	if err != nil {
		return nil, err
	}
	return ledger, nil
}

// onwardDestination is the ledger an onward transfer credits
type onwardDestination struct {
	kind     domain.LedgerKind
	owner    uuid.UUID
	location uuid.UUID
	action   domain.RepairUpdateAction
}

// TransferToOutlet moves repaired units into an outlet's stock
func (s *RepairService) TransferToOutlet(ctx context.Context, actor *domain.Actor, outletID uuid.UUID, items []ports.OnwardItem, remark string) (*ports.BatchResult[*ports.OnwardOutcome], error) {
	if err := actor.Require(domain.CapOnwardTransfer, domain.ScopeOwnCenter); err != nil {
		return nil, err
	}
	outlet, err := s.center(ctx, outletID)
	if err != nil {
		return nil, err
	}
	if outlet.Type != domain.CenterOutlet {
		return nil, domain.NewValidationError("center %s is not an outlet", outlet.ID)
	}
	dest := onwardDestination{kind: domain.LedgerOutlet, owner: outlet.ID, location: outlet.ID, action: domain.ActionToOutlet}
	return s.onward(ctx, actor, "transfer_to_outlet", dest, items, remark), nil
}

// TransferToReseller moves repaired units into a reseller's stock, held at
// the reseller's outlet center
func (s *RepairService) TransferToReseller(ctx context.Context, actor *domain.Actor, resellerID uuid.UUID, items []ports.OnwardItem, remark string) (*ports.BatchResult[*ports.OnwardOutcome], error) {
	if err := actor.Require(domain.CapOnwardTransfer, domain.ScopeOwnCenter); err != nil {
		return nil, err
	}
	reseller, err := s.Centers.GetReseller(ctx, resellerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load reseller: %w", err)
	}
	if reseller == nil || !reseller.Active {
		return nil, domain.NewNotFound("reseller", resellerID)
	}
	if reseller.OutletCenterID == uuid.Nil {
		return nil, domain.NewInvalidState("reseller %s has no outlet center", reseller.ID)
	}
	dest := onwardDestination{kind: domain.LedgerReseller, owner: reseller.ID, location: reseller.OutletCenterID, action: domain.ActionToReseller}
	return s.onward(ctx, actor, "transfer_to_reseller", dest, items, remark), nil
}

func (s *RepairService) onward(ctx context.Context, actor *domain.Actor, op string, dest onwardDestination, items []ports.OnwardItem, remark string) *ports.BatchResult[*ports.OnwardOutcome] {
	batch := runBatch(ctx, &s.stockBase, op, items,
		func(ports.OnwardItem) uuid.UUID { return uuid.Nil },
		func(ctx context.Context, it ports.OnwardItem) (*ports.OnwardOutcome, error) {
			return s.onwardOne(ctx, actor, op, dest, it, remark)
		})
	if len(batch.Succeeded) > 0 {
		_ = s.invalidateRepairViews(ctx)
	}
	return batch
}

func (s *RepairService) onwardOne(ctx context.Context, actor *domain.Actor, op string, dest onwardDestination, it ports.OnwardItem, remark string) (*ports.OnwardOutcome, error) {
	current, err := s.loadTransfer(ctx, it.RepairTransferID)
	if err != nil {
		return nil, err
	}
	if err := requireTransferAccess(actor, domain.CapOnwardTransfer, current); err != nil {
		return nil, err
	}

	now := s.Now()
	out := &ports.OnwardOutcome{Quantity: it.Quantity}
	err = s.execute(ctx, stockKey(current.FromCenterID, current.ProductID), func(ctx context.Context, store ports.StockStore) error {
		t, f, err := lockedPair(ctx, store, current.ID)
		if err != nil {
			return err
		}
		moved, err := t.ReleaseRepaired(dest.action, dest.owner, it.SerialNumbers, it.Quantity, remark, actor.ID, now)
		if err != nil {
			return err
		}
		if err := f.ReleaseRepaired(t.ID, dest.owner, moved, it.Quantity, remark, actor.ID, now); err != nil {
			return err
		}

		if len(moved) > 0 {
			origin, err := store.Ledgers().Get(ctx, domain.LedgerCenter, t.FromCenterID, t.ProductID)
			if err != nil {
				return err
			}
			if origin == nil {
				out.UntrackedSerials = moved
			} else {
				out.UntrackedSerials = origin.MarkTransferredOut(moved, dest.location, t.ID, actor.ID, now)
				if err := store.Ledgers().Save(ctx, origin); err != nil {
					return err
				}
			}
		}

		destination, err := s.credit(ctx, store, dest.kind, dest.owner, dest.location, t, moved, it.Quantity, remark, actor.ID, now)
		if err != nil {
			return err
		}

		if err := store.Repairs().Save(ctx, t); err != nil {
			return err
		}
		if err := store.Faulty().Save(ctx, f); err != nil {
			return err
		}
		out.Transfer, out.Destination, out.SerialNumbers = t, destination, moved
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(out.UntrackedSerials) > 0 {
		s.logger.WarnContext(ctx, "origin ledger does not track transferred serials",
			slog.String("repair_transfer_id", out.Transfer.ID.String()),
			slog.String("center_id", out.Transfer.FromCenterID.String()),
			slog.String("product_id", out.Transfer.ProductID.String()),
			slog.Any("serial_numbers", out.UntrackedSerials))
	}
	s.Metrics.RecordUnitsMoved(op, it.Quantity)
	s.logger.InfoContext(ctx, "repaired units transferred onward",
		slog.String("repair_transfer_id", out.Transfer.ID.String()),
		slog.String("destination_kind", string(dest.kind)),
		slog.String("destination_id", dest.owner.String()),
		slog.Int("quantity", it.Quantity))
	s.notify(ctx, transferNotification(domain.NotifyUnitsReleased, out.Transfer, it.Quantity, actor.ID))
	return out, nil
}

func transferNotification(kind domain.NotificationKind, t *domain.RepairTransferRecord, quantity int, actor string) domain.Notification {
	return domain.Notification{
		Kind:       kind,
		CenterID:   t.FromCenterID,
		ProductID:  t.ProductID,
		Reference:  t.ID,
		Quantity:   quantity,
		Status:     string(t.Status),
		Actor:      actor,
		OccurredAt: t.UpdatedAt,
	}
}
