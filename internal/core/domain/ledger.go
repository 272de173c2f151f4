// internal/core/domain/ledger.go
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// LedgerKind distinguishes the location-scoped stock ledgers
type LedgerKind string

const (
	LedgerCenter   LedgerKind = "center"
	LedgerOutlet   LedgerKind = "outlet"
	LedgerReseller LedgerKind = "reseller"
)

func (k LedgerKind) IsValid() bool {
	return k == LedgerCenter || k == LedgerOutlet || k == LedgerReseller
}

// StockLedger is the per (owner, product) stock aggregate. OwnerID is the
// center, outlet or reseller; LocationID is where its units physically sit.
type StockLedger struct {
	ID                uuid.UUID    `json:"id" db:"id"`
	Kind              LedgerKind   `json:"kind" db:"kind"`
	OwnerID           uuid.UUID    `json:"ownerId" db:"owner_id"`
	LocationID        uuid.UUID    `json:"locationId" db:"location_id"`
	ProductID         uuid.UUID    `json:"productId" db:"product_id"`
	TotalQuantity     int          `json:"totalQuantity" db:"total_quantity"`
	AvailableQuantity int          `json:"availableQuantity" db:"available_quantity"`
	ConsumedQuantity  int          `json:"consumedQuantity" db:"consumed_quantity"`
	SerialNumbers     []SerialUnit `json:"serialNumbers" db:"serial_numbers"`
	Version           int          `json:"version" db:"version"`
	CreatedAt         time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time    `json:"updatedAt" db:"updated_at"`
}

// NewStockLedger creates an empty ledger, used on first receipt
func NewStockLedger(kind LedgerKind, owner, location, product uuid.UUID, now time.Time) *StockLedger {
	return &StockLedger{
		ID:            uuid.New(),
		Kind:          kind,
		OwnerID:       owner,
		LocationID:    location,
		ProductID:     product,
		SerialNumbers: []SerialUnit{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// CheckBalance verifies total == available + consumed and, when units are
// tracked, that available units sit at this ledger's location.
func (l *StockLedger) CheckBalance() error {
	if l.TotalQuantity != l.AvailableQuantity+l.ConsumedQuantity {
		return fmt.Errorf("total %d != available %d + consumed %d", l.TotalQuantity, l.AvailableQuantity, l.ConsumedQuantity)
	}
	if l.AvailableQuantity < 0 || l.ConsumedQuantity < 0 {
		return fmt.Errorf("negative quantity on ledger %s", l.ID)
	}
	for i := range l.SerialNumbers {
		u := &l.SerialNumbers[i]
		if u.Status == SerialAvailable && u.CurrentLocation != l.LocationID {
			return fmt.Errorf("serial %s available away from ledger location", u.SerialNumber)
		}
	}
	return nil
}

// AvailableSerials lists serial numbers currently available here
func (l *StockLedger) AvailableSerials() []string {
	var out []string
	for i := range l.SerialNumbers {
		if l.SerialNumbers[i].Status == SerialAvailable && l.SerialNumbers[i].CurrentLocation == l.LocationID {
			out = append(out, l.SerialNumbers[i].SerialNumber)
		}
	}
	return out
}

func (l *StockLedger) stamp(u *SerialUnit, action string, status SerialStatus, to, ref uuid.UUID, by, remark string, now time.Time) {
	u.TransferHistory = append(u.TransferHistory, TransferEntry{
		Action:    action,
		Status:    status,
		From:      u.CurrentLocation,
		To:        to,
		Reference: ref,
		By:        by,
		Remark:    remark,
		At:        now,
	})
	u.Status = status
	u.CurrentLocation = to
	u.UpdatedAt = now
}

// ReserveOrConsume moves quantity units from available to consumed on behalf
// of usage ref and returns the serial numbers taken. Serialized products use
// the explicit serials or, when none are given, the first available units in
// ledger order.
func (l *StockLedger) ReserveOrConsume(serialized bool, quantity int, serials []string, ref uuid.UUID, by string, now time.Time) ([]string, error) {
	if quantity <= 0 {
		return nil, NewValidationError("quantity must be greater than zero")
	}
	if l.AvailableQuantity < quantity {
		return nil, NewInsufficientStock(l.AvailableQuantity, quantity)
	}

	var taken []string
	if serialized {
		eligible := func(u *SerialUnit) bool {
			return u.Status == SerialAvailable && u.CurrentLocation == l.LocationID
		}
		picked, err := pickSerials(l.SerialNumbers, serials, quantity, eligible, NewInsufficientStock)
		if err != nil {
			return nil, err
		}
		for _, i := range picked {
			l.stamp(&l.SerialNumbers[i], "consumed", SerialConsumed, l.LocationID, ref, by, "", now)
		}
		taken = serialNumbersAt(l.SerialNumbers, picked)
	} else if len(serials) > 0 {
		return nil, NewValidationError("serial numbers supplied for a non-serialized product")
	}

	l.AvailableQuantity -= quantity
	l.ConsumedQuantity += quantity
	l.UpdatedAt = now
	return taken, nil
}

// MarkDamaged confirms reserved units as damaged after approval
func (l *StockLedger) MarkDamaged(serials []string, ref uuid.UUID, by string, now time.Time) ([]SerialUnit, error) {
	picked, err := pickSerials(l.SerialNumbers, serials, len(serials), hasStatus(SerialConsumed), NewInsufficientStock)
	if err != nil {
		return nil, err
	}
	out := make([]SerialUnit, 0, len(picked))
	for _, i := range picked {
		l.stamp(&l.SerialNumbers[i], "damage_approved", SerialDamaged, l.LocationID, ref, by, "", now)
		out = append(out, l.SerialNumbers[i].clone())
	}
	l.UpdatedAt = now
	return out, nil
}

// Release reverses a reservation: consumed units become available again.
func (l *StockLedger) Release(serialized bool, quantity int, serials []string, ref uuid.UUID, by string, now time.Time) error {
	if l.ConsumedQuantity < quantity {
		return NewInvalidState("ledger has %d consumed units, cannot release %d", l.ConsumedQuantity, quantity)
	}
	if serialized && len(serials) > 0 {
		picked, err := pickSerials(l.SerialNumbers, serials, quantity, hasStatus(SerialConsumed), NewInsufficientStock)
		if err != nil {
			return err
		}
		for _, i := range picked {
			l.stamp(&l.SerialNumbers[i], "reservation_released", SerialAvailable, l.LocationID, ref, by, "", now)
		}
	}
	l.ConsumedQuantity -= quantity
	l.AvailableQuantity += quantity
	l.UpdatedAt = now
	return nil
}

// Restock brings repaired units back into this ledger as available stock.
// Units previously consumed here return to available; anything beyond the
// consumed count is received as new stock. units carries the serial records
// for serialized products and is empty otherwise.
func (l *StockLedger) Restock(quantity int, units []SerialUnit, source SourceType, ref uuid.UUID, by, remark string, now time.Time) error {
	if quantity <= 0 {
		return NewValidationError("quantity must be greater than zero")
	}
	idx := indexSerials(l.SerialNumbers)
	for _, in := range units {
		if i, ok := idx[in.SerialNumber]; ok {
			u := &l.SerialNumbers[i]
			if u.Status == SerialAvailable && u.CurrentLocation == l.LocationID {
				return NewInvalidState("serial %s is already available at this location", in.SerialNumber)
			}
			l.stamp(u, string(source), SerialAvailable, l.LocationID, ref, by, remark, now)
			u.setRepairStatus(SerialAvailable)
			u.SourceType = source
			continue
		}
		u := in.clone()
		l.stamp(&u, string(source), SerialAvailable, l.LocationID, ref, by, remark, now)
		u.setRepairStatus(SerialAvailable)
		u.SourceType = source
		l.SerialNumbers = append(l.SerialNumbers, u)
		idx[u.SerialNumber] = len(l.SerialNumbers) - 1
	}

	fromConsumed := min(quantity, l.ConsumedQuantity)
	l.ConsumedQuantity -= fromConsumed
	l.TotalQuantity += quantity - fromConsumed
	l.AvailableQuantity += quantity
	l.UpdatedAt = now
	return nil
}

// MarkTransferredOut records that units held here left for destination and
// returns the serials this ledger does not track. Units back in available
// stock are left alone.
func (l *StockLedger) MarkTransferredOut(serials []string, destination, ref uuid.UUID, by string, now time.Time) []string {
	idx := indexSerials(l.SerialNumbers)
	var untracked []string
	for _, sn := range serials {
		i, ok := idx[sn]
		if !ok {
			untracked = append(untracked, sn)
			continue
		}
		if l.SerialNumbers[i].Status == SerialAvailable {
			continue
		}
		l.stamp(&l.SerialNumbers[i], "transferred_out", SerialTransferred, destination, ref, by, "", now)
	}
	l.UpdatedAt = now
	return untracked
}
