// internal/core/domain/repair_transfer.go
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RepairUpdateAction classifies an entry of the repair transfer audit trail
type RepairUpdateAction string

const (
	ActionSentToRepair     RepairUpdateAction = "sent_to_repair"
	ActionOutcome          RepairUpdateAction = "outcome"
	ActionReturnedToCenter RepairUpdateAction = "returned_to_center"
	ActionToOutlet         RepairUpdateAction = "transferred_to_outlet"
	ActionToReseller       RepairUpdateAction = "transferred_to_reseller"
)

// RepairUpdate is one append-only audit entry on a repair transfer
type RepairUpdate struct {
	Action        RepairUpdateAction `json:"action"`
	Status        SerialStatus       `json:"status"`
	Quantity      int                `json:"quantity"`
	SerialNumbers []string           `json:"serialNumbers,omitempty"`
	Cost          decimal.Decimal    `json:"cost"`
	Destination   uuid.UUID          `json:"destination,omitempty"`
	Remark        string             `json:"remark,omitempty"`
	By            string             `json:"by"`
	At            time.Time          `json:"at"`
}

// RepairTransferRecord moves part of a faulty batch to a repair center
type RepairTransferRecord struct {
	ID            uuid.UUID `json:"id" db:"id"`
	FaultyStockID uuid.UUID `json:"faultyStockId" db:"faulty_stock_id"`
	FromCenterID  uuid.UUID `json:"fromCenterId" db:"from_center_id"`
	ToCenterID    uuid.UUID `json:"toCenterId" db:"to_center_id"`
	ProductID     uuid.UUID `json:"productId" db:"product_id"`

	RepairBook

	Status         RepairStatus   `json:"status" db:"status"`
	RepairUpdates  []RepairUpdate `json:"repairUpdates" db:"repair_updates"`
	DamageRemark   string         `json:"damageRemark,omitempty" db:"damage_remark"`
	TransferRemark string         `json:"transferRemark,omitempty" db:"transfer_remark"`
	CreatedBy      string         `json:"createdBy" db:"created_by"`

	Version    int        `json:"version" db:"version"`
	CreatedAt  time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time  `json:"updatedAt" db:"updated_at"`
	ReturnedAt *time.Time `json:"returnedAt,omitempty" db:"returned_at"`
}

// NewRepairTransfer snapshots units just sent to repair from source.
// units is empty for counter-only products.
func NewRepairTransfer(id uuid.UUID, source *FaultyStockRecord, toCenter uuid.UUID, quantity int, units []SerialUnit, damageRemark, transferRemark, by string, now time.Time) *RepairTransferRecord {
	t := &RepairTransferRecord{
		ID:             id,
		FaultyStockID:  source.ID,
		FromCenterID:   source.CenterID,
		ToCenterID:     toCenter,
		ProductID:      source.ProductID,
		RepairBook:     RepairBook{Serialized: source.Serialized},
		DamageRemark:   damageRemark,
		TransferRemark: transferRemark,
		CreatedBy:      by,
		CreatedAt:      now,
	}
	if source.Serialized {
		t.SerialNumbers = cloneUnits(units)
	} else {
		t.SerialNumbers = []SerialUnit{}
		t.Quantity = quantity
		t.UnderRepairQty = quantity
	}
	t.RepairUpdates = []RepairUpdate{{
		Action:        ActionSentToRepair,
		Status:        SerialUnderRepair,
		Quantity:      quantity,
		SerialNumbers: serialsOf(t.SerialNumbers),
		Cost:          decimal.Zero,
		Destination:   toCenter,
		Remark:        transferRemark,
		By:            by,
		At:            now,
	}}
	t.refresh(now)
	return t
}

func serialsOf(units []SerialUnit) []string {
	out := make([]string, len(units))
	for i := range units {
		out[i] = units[i].SerialNumber
	}
	return out
}

func (t *RepairTransferRecord) refresh(now time.Time) {
	t.recount()
	t.Status = DeriveTransferStatus(t.Counts(), t.TransferredQty)
	t.UpdatedAt = now
	if t.Status == RepairStatusReturned && t.ReturnedAt == nil {
		at := now
		t.ReturnedAt = &at
	}
}

// RecordOutcome marks units under repair as repaired or irreparable and
// returns the serial numbers affected so the source batch can mirror it.
func (t *RepairTransferRecord) RecordOutcome(serials []string, quantity int, final SerialStatus, cost decimal.Decimal, remark, by string, now time.Time) ([]string, error) {
	if _, err := ParseFinalStatus(string(final)); err != nil {
		return nil, err
	}
	if cost.IsNegative() {
		return nil, NewValidationError("repair cost must not be negative")
	}
	moved, err := t.move(unitMove{
		from:     SerialUnderRepair,
		to:       final,
		serials:  serials,
		quantity: quantity,
		entry:    RepairEntry{RepairTransferID: t.ID, Cost: cost, Remark: remark, By: by},
		at:       now,
	})
	if err != nil {
		return nil, err
	}
	t.RepairUpdates = append(t.RepairUpdates, RepairUpdate{
		Action: ActionOutcome, Status: final, Quantity: quantity, SerialNumbers: moved,
		Cost: cost, Remark: remark, By: by, At: now,
	})
	t.refresh(now)
	return moved, nil
}

// ReleaseRepaired moves repaired units to destination and returns the serial
// numbers that left.
func (t *RepairTransferRecord) ReleaseRepaired(action RepairUpdateAction, destination uuid.UUID, serials []string, quantity int, remark, by string, now time.Time) ([]string, error) {
	moved, err := t.move(unitMove{
		from:     SerialRepaired,
		to:       SerialTransferred,
		serials:  serials,
		quantity: quantity,
		location: destination,
		entry:    RepairEntry{RepairTransferID: t.ID, Cost: decimal.Zero, Remark: remark, By: by},
		at:       now,
	})
	if err != nil {
		return nil, err
	}
	t.RepairUpdates = append(t.RepairUpdates, RepairUpdate{
		Action: action, Status: SerialTransferred, Quantity: quantity, SerialNumbers: moved,
		Cost: decimal.Zero, Destination: destination, Remark: remark, By: by, At: now,
	})
	t.refresh(now)
	return moved, nil
}

// Units returns copies of the named units
func (t *RepairTransferRecord) Units(serials []string) []SerialUnit {
	out := make([]SerialUnit, 0, len(serials))
	for _, sn := range serials {
		if u, ok := t.FindSerial(sn); ok {
			out = append(out, u.clone())
		}
	}
	return out
}

// TotalCost sums the cost of every outcome recorded on the transfer
func (t *RepairTransferRecord) TotalCost() decimal.Decimal {
	total := decimal.Zero
	for _, u := range t.RepairUpdates {
		total = total.Add(u.Cost)
	}
	return total
}
