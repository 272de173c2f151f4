// internal/core/domain/repair_book.go
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RepairBook holds the unit breakdown shared by faulty stock records and
// repair transfers. Serialized books derive their counters from the units;
// counter-only books move the counters directly.
type RepairBook struct {
	Serialized     bool         `json:"serialized"`
	Quantity       int          `json:"quantity"`
	DamagedQty     int          `json:"damagedQty"`
	UnderRepairQty int          `json:"underRepairQty"`
	RepairedQty    int          `json:"repairedQty"`
	IrrepairedQty  int          `json:"irrepairedQty"`
	TransferredQty int          `json:"transferredQty"`
	SerialNumbers  []SerialUnit `json:"serialNumbers"`
}

// Counts feeds DeriveOverallStatus
func (b *RepairBook) Counts() StatusCounts {
	return StatusCounts{
		Total:       b.Quantity,
		Damaged:     b.DamagedQty,
		UnderRepair: b.UnderRepairQty,
		Repaired:    b.RepairedQty + b.TransferredQty,
		Irreparable: b.IrrepairedQty,
	}
}

// CheckDecomposition verifies that the counters add up to quantity and, for
// serialized books, that they agree with the unit statuses.
func (b *RepairBook) CheckDecomposition() error {
	sum := b.DamagedQty + b.UnderRepairQty + b.RepairedQty + b.IrrepairedQty + b.TransferredQty
	if sum != b.Quantity {
		return fmt.Errorf("quantity %d != damaged %d + under repair %d + repaired %d + irreparable %d + transferred %d",
			b.Quantity, b.DamagedQty, b.UnderRepairQty, b.RepairedQty, b.IrrepairedQty, b.TransferredQty)
	}
	if !b.Serialized {
		return nil
	}
	derived := *b
	derived.recount()
	if derived.DamagedQty != b.DamagedQty || derived.UnderRepairQty != b.UnderRepairQty ||
		derived.RepairedQty != b.RepairedQty || derived.IrrepairedQty != b.IrrepairedQty ||
		derived.TransferredQty != b.TransferredQty || derived.Quantity != b.Quantity {
		return fmt.Errorf("counters disagree with serial statuses")
	}
	for i := range b.SerialNumbers {
		if !b.SerialNumbers[i].Balanced() {
			return fmt.Errorf("serial %s outcome counters do not add up", b.SerialNumbers[i].SerialNumber)
		}
	}
	return nil
}

func (b *RepairBook) recount() {
	if !b.Serialized {
		return
	}
	b.Quantity, b.DamagedQty, b.UnderRepairQty, b.RepairedQty, b.IrrepairedQty, b.TransferredQty = 0, 0, 0, 0, 0, 0
	for i := range b.SerialNumbers {
		u := &b.SerialNumbers[i]
		b.Quantity += u.Quantity
		if c := b.counter(u.Status); c != nil {
			*c += u.Quantity
		}
	}
}

func (b *RepairBook) counter(status SerialStatus) *int {
	switch status {
	case SerialDamaged:
		return &b.DamagedQty
	case SerialUnderRepair:
		return &b.UnderRepairQty
	case SerialRepaired:
		return &b.RepairedQty
	case SerialIrreparable, SerialDisposed, SerialReturnedToVendor:
		return &b.IrrepairedQty
	case SerialTransferred:
		return &b.TransferredQty
	}
	return nil
}

// Available returns how many units currently sit in status
func (b *RepairBook) Available(status SerialStatus) int {
	if c := b.counter(status); c != nil {
		return *c
	}
	return 0
}

// FindSerial returns the unit with the given serial number
func (b *RepairBook) FindSerial(serial string) (*SerialUnit, bool) {
	for i := range b.SerialNumbers {
		if b.SerialNumbers[i].SerialNumber == serial {
			return &b.SerialNumbers[i], true
		}
	}
	return nil, false
}

type unitMove struct {
	from     SerialStatus
	to       SerialStatus
	serials  []string
	quantity int
	location uuid.UUID
	entry    RepairEntry
	at       time.Time
}

func shortFor(status SerialStatus) func(available, requested int) *AppError {
	switch status {
	case SerialDamaged:
		return NewInsufficientDamagedStock
	case SerialUnderRepair:
		return NewInsufficientUnderRepairQuantity
	case SerialRepaired:
		return NewInsufficientRepairedQuantity
	default:
		return NewInsufficientStock
	}
}

// move advances units from one repair state to the next and returns the
// serial numbers that moved (none for counter-only books).
func (b *RepairBook) move(m unitMove) ([]string, error) {
	if m.quantity <= 0 {
		return nil, NewValidationError("quantity must be greater than zero")
	}
	if !CanAdvance(m.from, m.to) {
		return nil, NewInvalidState("units cannot move from %s to %s", m.from, m.to)
	}

	if !b.Serialized {
		if len(m.serials) > 0 {
			return nil, NewValidationError("serial numbers supplied for a non-serialized product")
		}
		from, to := b.counter(m.from), b.counter(m.to)
		if *from < m.quantity {
			return nil, shortFor(m.from)(*from, m.quantity)
		}
		*from -= m.quantity
		*to += m.quantity
		return nil, nil
	}

	picked, err := pickSerials(b.SerialNumbers, m.serials, m.quantity, hasStatus(m.from), shortFor(m.from))
	if err != nil {
		return nil, err
	}
	for _, i := range picked {
		u := &b.SerialNumbers[i]
		u.setRepairStatus(m.to)
		entry := m.entry
		entry.Status = m.to
		entry.At = m.at
		u.RepairHistory = append(u.RepairHistory, entry)
		if m.location != uuid.Nil {
			u.CurrentLocation = m.location
		}
		u.UpdatedAt = m.at
	}
	b.recount()
	return serialNumbersAt(b.SerialNumbers, picked), nil
}

// ParseFinalStatus accepts only the two repair outcomes
func ParseFinalStatus(s string) (SerialStatus, error) {
	switch SerialStatus(s) {
	case SerialRepaired, SerialIrreparable:
		return SerialStatus(s), nil
	}
	return "", NewInvalidFinalStatus(s)
}
