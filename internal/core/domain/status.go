// internal/core/domain/status.go
package domain

// RepairStatus is the derived status of a faulty batch or repair transfer
type RepairStatus string

const (
	RepairStatusDamaged           RepairStatus = "damaged"
	RepairStatusUnderRepair       RepairStatus = "under_repair"
	RepairStatusRepaired          RepairStatus = "repaired"
	RepairStatusIrreparable       RepairStatus = "irreparable"
	RepairStatusPartiallyRepaired RepairStatus = "partially_repaired"
	RepairStatusReturned          RepairStatus = "returned"
	RepairStatusDisposed          RepairStatus = "disposed"
	RepairStatusReturnedToVendor  RepairStatus = "returned_to_vendor"
)

func (s RepairStatus) IsValid() bool {
	switch s {
	case RepairStatusDamaged, RepairStatusUnderRepair, RepairStatusRepaired, RepairStatusIrreparable,
		RepairStatusPartiallyRepaired, RepairStatusReturned, RepairStatusDisposed, RepairStatusReturnedToVendor:
		return true
	}
	return false
}

// StatusCounts is the unit breakdown the overall status is derived from.
// Repaired counts every unit whose repair outcome was a success, including
// units that have since been transferred onward.
type StatusCounts struct {
	Total       int
	Damaged     int
	UnderRepair int
	Repaired    int
	Irreparable int
}

// DeriveOverallStatus is the only place a batch status is computed.
// The checks run top to bottom and the first match wins.
func DeriveOverallStatus(c StatusCounts) RepairStatus {
	switch {
	case c.Damaged > 0 && c.UnderRepair > 0:
		return RepairStatusPartiallyRepaired
	case c.Damaged > 0:
		return RepairStatusDamaged
	case c.UnderRepair > 0:
		return RepairStatusUnderRepair
	case c.Repaired == c.Total:
		return RepairStatusRepaired
	case c.Irreparable == c.Total:
		return RepairStatusIrreparable
	default:
		return RepairStatusPartiallyRepaired
	}
}

// DeriveTransferStatus is returned once every unit has left the repair
// center or been written off, otherwise DeriveOverallStatus applies.
func DeriveTransferStatus(c StatusCounts, transferred int) RepairStatus {
	if transferred > 0 && c.Damaged == 0 && c.UnderRepair == 0 && c.Repaired == transferred {
		return RepairStatusReturned
	}
	return DeriveOverallStatus(c)
}

// CountSerialStatuses builds StatusCounts from a multiset of unit statuses.
func CountSerialStatuses(units []SerialUnit) StatusCounts {
	var c StatusCounts
	for i := range units {
		q := units[i].Quantity
		c.Total += q
		switch units[i].Status {
		case SerialDamaged:
			c.Damaged += q
		case SerialUnderRepair:
			c.UnderRepair += q
		case SerialRepaired, SerialTransferred:
			c.Repaired += q
		case SerialIrreparable, SerialDisposed, SerialReturnedToVendor:
			c.Irreparable += q
		}
	}
	return c
}
