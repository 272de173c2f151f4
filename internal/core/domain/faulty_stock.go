// internal/core/domain/faulty_stock.go
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FaultyStockRecord is a batch of damaged units reported at a center
type FaultyStockRecord struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CenterID  uuid.UUID `json:"centerId" db:"center_id"`
	ProductID uuid.UUID `json:"productId" db:"product_id"`
	UsageID   uuid.UUID `json:"usageId" db:"usage_id"`

	RepairBook

	OverallStatus RepairStatus  `json:"overallStatus" db:"overall_status"`
	RepairHistory []RepairEntry `json:"repairHistory" db:"repair_history"`
	Remark        string        `json:"remark,omitempty" db:"remark"`
	ReportedBy    string        `json:"reportedBy" db:"reported_by"`

	Version   int       `json:"version" db:"version"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// NewFaultyStockRecord opens a faulty batch for an approved damage usage.
// units are the damaged serials taken from the center ledger; counter-only
// products pass none.
func NewFaultyStockRecord(usage *StockUsage, serialized bool, units []SerialUnit, now time.Time) *FaultyStockRecord {
	r := &FaultyStockRecord{
		ID:            uuid.New(),
		CenterID:      usage.CenterID,
		ProductID:     usage.ProductID,
		UsageID:       usage.ID,
		RepairBook:    RepairBook{Serialized: serialized},
		RepairHistory: []RepairEntry{},
		Remark:        usage.Remark,
		ReportedBy:    usage.ReportedBy,
		CreatedAt:     now,
	}
	if serialized {
		r.SerialNumbers = cloneUnits(units)
		for i := range r.SerialNumbers {
			u := &r.SerialNumbers[i]
			u.Status = SerialDamaged
			u.Quantity = 1
			u.setRepairStatus(SerialDamaged)
			u.CurrentLocation = usage.CenterID
		}
	} else {
		r.SerialNumbers = []SerialUnit{}
		r.Quantity = usage.Quantity
		r.DamagedQty = usage.Quantity
	}
	r.refresh(now)
	return r
}

func (r *FaultyStockRecord) refresh(now time.Time) {
	r.recount()
	r.OverallStatus = DeriveOverallStatus(r.Counts())
	r.UpdatedAt = now
}

// IsTerminal reports whether nothing more can happen to the batch
func (r *FaultyStockRecord) IsTerminal() bool {
	if r.UnderRepairQty > 0 || r.DamagedQty > 0 {
		return false
	}
	switch r.OverallStatus {
	case RepairStatusRepaired, RepairStatusIrreparable, RepairStatusDisposed, RepairStatusReturnedToVendor:
		return true
	}
	return false
}

// SendToRepair marks damaged units as under repair at repairCenter and
// returns a snapshot of the moved units for the transfer record.
func (r *FaultyStockRecord) SendToRepair(transferID, repairCenter uuid.UUID, serials []string, quantity int, remark, by string, now time.Time) ([]SerialUnit, error) {
	moved, err := r.move(unitMove{
		from:     SerialDamaged,
		to:       SerialUnderRepair,
		serials:  serials,
		quantity: quantity,
		location: repairCenter,
		entry:    RepairEntry{RepairTransferID: transferID, Remark: remark, By: by, Cost: decimal.Zero},
		at:       now,
	})
	if err != nil {
		return nil, err
	}
	r.RepairHistory = append(r.RepairHistory, RepairEntry{
		Status: SerialUnderRepair, RepairTransferID: transferID, Cost: decimal.Zero, Remark: remark, By: by, At: now,
	})
	r.refresh(now)

	snapshot := make([]SerialUnit, 0, len(moved))
	for _, sn := range moved {
		u, _ := r.FindSerial(sn)
		snapshot = append(snapshot, u.clone())
	}
	return snapshot, nil
}

// RecordOutcome applies a repair outcome to units under repair
func (r *FaultyStockRecord) RecordOutcome(transferID uuid.UUID, serials []string, quantity int, final SerialStatus, cost decimal.Decimal, remark, by string, now time.Time) error {
	if _, err := ParseFinalStatus(string(final)); err != nil {
		return err
	}
	entry := RepairEntry{RepairTransferID: transferID, Cost: cost, Remark: remark, By: by}
	if _, err := r.move(unitMove{from: SerialUnderRepair, to: final, serials: serials, quantity: quantity, entry: entry, at: now}); err != nil {
		return err
	}
	entry.Status, entry.At = final, now
	r.RepairHistory = append(r.RepairHistory, entry)
	r.refresh(now)
	return nil
}

// ReleaseRepaired moves repaired units out of the batch to destination
func (r *FaultyStockRecord) ReleaseRepaired(transferID, destination uuid.UUID, serials []string, quantity int, remark, by string, now time.Time) error {
	entry := RepairEntry{RepairTransferID: transferID, Cost: decimal.Zero, Remark: remark, By: by}
	if _, err := r.move(unitMove{from: SerialRepaired, to: SerialTransferred, serials: serials, quantity: quantity, location: destination, entry: entry, at: now}); err != nil {
		return err
	}
	entry.Status, entry.At = SerialTransferred, now
	r.RepairHistory = append(r.RepairHistory, entry)
	r.refresh(now)
	return nil
}
