// internal/core/domain/serial.go
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SerialStatus is the lifecycle state of one physical unit
type SerialStatus string

const (
	SerialAvailable        SerialStatus = "available"
	SerialConsumed         SerialStatus = "consumed"
	SerialDamaged          SerialStatus = "damaged"
	SerialUnderRepair      SerialStatus = "under_repair"
	SerialRepaired         SerialStatus = "repaired"
	SerialIrreparable      SerialStatus = "irreparable"
	SerialDisposed         SerialStatus = "disposed"
	SerialReturnedToVendor SerialStatus = "returned_to_vendor"
	SerialTransferred      SerialStatus = "transferred"
)

func (s SerialStatus) IsValid() bool {
	switch s {
	case SerialAvailable, SerialConsumed, SerialDamaged, SerialUnderRepair, SerialRepaired,
		SerialIrreparable, SerialDisposed, SerialReturnedToVendor, SerialTransferred:
		return true
	}
	return false
}

// repairAdvances lists the forward-only moves of the repair pipeline.
var repairAdvances = map[SerialStatus][]SerialStatus{
	SerialDamaged:     {SerialUnderRepair},
	SerialUnderRepair: {SerialRepaired, SerialIrreparable},
	SerialRepaired:    {SerialTransferred},
	SerialIrreparable: {SerialDisposed, SerialReturnedToVendor},
}

// CanAdvance reports whether a unit in the repair pipeline may move from -> to.
func CanAdvance(from, to SerialStatus) bool {
	for _, next := range repairAdvances[from] {
		if next == to {
			return true
		}
	}
	return false
}

// SourceType tags where a unit in a downstream ledger came from
type SourceType string

const (
	SourceOpening      SourceType = "opening"
	SourceRepairReturn SourceType = "repair_return"
)

// TransferEntry records one movement or status change of a unit
type TransferEntry struct {
	Action    string       `json:"action"`
	Status    SerialStatus `json:"status"`
	From      uuid.UUID    `json:"from"`
	To        uuid.UUID    `json:"to"`
	Reference uuid.UUID    `json:"reference"`
	By        string       `json:"by,omitempty"`
	Remark    string       `json:"remark,omitempty"`
	At        time.Time    `json:"at"`
}

// RepairEntry records one step of a unit through repair
type RepairEntry struct {
	Status           SerialStatus    `json:"status"`
	RepairTransferID uuid.UUID       `json:"repairTransferId"`
	Cost             decimal.Decimal `json:"cost"`
	Remark           string          `json:"remark,omitempty"`
	By               string          `json:"by,omitempty"`
	At               time.Time       `json:"at"`
}

// SerialUnit is one physically trackable item instance
type SerialUnit struct {
	SerialNumber    string          `json:"serialNumber"`
	Status          SerialStatus    `json:"status"`
	Quantity        int             `json:"quantity"`
	RepairedQty     int             `json:"repairedQty"`
	IrrepairedQty   int             `json:"irrepairedQty"`
	UnderRepairQty  int             `json:"underRepairQty"`
	CurrentLocation uuid.UUID       `json:"currentLocation"`
	SourceType      SourceType      `json:"sourceType,omitempty"`
	TransferHistory []TransferEntry `json:"transferHistory"`
	RepairHistory   []RepairEntry   `json:"repairHistory"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

func NewSerialUnit(serial string, location uuid.UUID, source SourceType) SerialUnit {
	return SerialUnit{
		SerialNumber:    serial,
		Status:          SerialAvailable,
		Quantity:        1,
		CurrentLocation: location,
		SourceType:      source,
		TransferHistory: []TransferEntry{},
		RepairHistory:   []RepairEntry{},
	}
}

// inRepairPipeline is true once the unit has been sent for repair
func (u *SerialUnit) inRepairPipeline() bool {
	switch u.Status {
	case SerialUnderRepair, SerialRepaired, SerialIrreparable, SerialDisposed, SerialReturnedToVendor, SerialTransferred:
		return true
	}
	return false
}

// Balanced reports whether the per-unit outcome counters add up to quantity.
// Units not yet sent to repair carry zero counters.
func (u *SerialUnit) Balanced() bool {
	sum := u.RepairedQty + u.IrrepairedQty + u.UnderRepairQty
	if !u.inRepairPipeline() {
		return sum == 0
	}
	return sum == u.Quantity
}

// setRepairStatus moves the unit and keeps its outcome counters balanced.
// transferred keeps the repaired outcome.
func (u *SerialUnit) setRepairStatus(status SerialStatus) {
	u.Status = status
	switch status {
	case SerialUnderRepair:
		u.UnderRepairQty, u.RepairedQty, u.IrrepairedQty = u.Quantity, 0, 0
	case SerialRepaired:
		u.UnderRepairQty, u.RepairedQty, u.IrrepairedQty = 0, u.Quantity, 0
	case SerialIrreparable, SerialDisposed, SerialReturnedToVendor:
		u.UnderRepairQty, u.RepairedQty, u.IrrepairedQty = 0, 0, u.Quantity
	case SerialTransferred:
		if u.RepairedQty+u.IrrepairedQty+u.UnderRepairQty == 0 {
			u.RepairedQty = u.Quantity
		}
	default:
		u.UnderRepairQty, u.RepairedQty, u.IrrepairedQty = 0, 0, 0
	}
}

func (u *SerialUnit) clone() SerialUnit {
	c := *u
	c.TransferHistory = append([]TransferEntry{}, u.TransferHistory...)
	c.RepairHistory = append([]RepairEntry{}, u.RepairHistory...)
	return c
}

func cloneUnits(units []SerialUnit) []SerialUnit {
	out := make([]SerialUnit, len(units))
	for i := range units {
		out[i] = units[i].clone()
	}
	return out
}

func indexSerials(units []SerialUnit) map[string]int {
	idx := make(map[string]int, len(units))
	for i := range units {
		idx[units[i].SerialNumber] = i
	}
	return idx
}

// pickSerials resolves which units of a collection to act on. With explicit
// serial numbers every one must exist and satisfy eligible, otherwise the
// whole pick fails with InvalidSerials. Without them the first quantity
// eligible units in collection order are chosen and short returns the error
// for too few.
func pickSerials(
	units []SerialUnit,
	explicit []string,
	quantity int,
	eligible func(*SerialUnit) bool,
	short func(available, requested int) *AppError,
) ([]int, error) {
	if len(explicit) > 0 {
		if err := validateSerialList(explicit, quantity); err != nil {
			return nil, err
		}
		idx := indexSerials(units)
		var notFound []string
		wrong := make(map[string]SerialStatus)
		picked := make([]int, 0, len(explicit))
		for _, sn := range explicit {
			i, ok := idx[sn]
			if !ok {
				notFound = append(notFound, sn)
				continue
			}
			if !eligible(&units[i]) {
				wrong[sn] = units[i].Status
				continue
			}
			picked = append(picked, i)
		}
		if len(notFound) > 0 || len(wrong) > 0 {
			return nil, NewInvalidSerials(notFound, wrong)
		}
		return picked, nil
	}

	picked := make([]int, 0, quantity)
	available := 0
	for i := range units {
		if !eligible(&units[i]) {
			continue
		}
		available++
		if len(picked) < quantity {
			picked = append(picked, i)
		}
	}
	if available < quantity {
		return nil, short(available, quantity)
	}
	return picked, nil
}

// validateSerialList checks an explicit serial list against the requested quantity
func validateSerialList(serials []string, quantity int) error {
	if len(serials) != quantity {
		return NewValidationError("quantity %d does not match %d serial numbers", quantity, len(serials))
	}
	seen := make(map[string]struct{}, len(serials))
	for _, sn := range serials {
		if sn == "" {
			return NewValidationError("serial numbers must not be empty")
		}
		if _, dup := seen[sn]; dup {
			return NewValidationError("serial number %s listed more than once", sn)
		}
		seen[sn] = struct{}{}
	}
	return nil
}

func serialNumbersAt(units []SerialUnit, picked []int) []string {
	out := make([]string, len(picked))
	for i, idx := range picked {
		out[i] = units[idx].SerialNumber
	}
	return out
}

func hasStatus(status SerialStatus) func(*SerialUnit) bool {
	return func(u *SerialUnit) bool { return u.Status == status }
}
