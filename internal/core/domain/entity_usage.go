// internal/core/domain/entity_usage.go
package domain

import (
	"time"

	"github.com/google/uuid"
)

// EntityKind tags what a usage event consumed stock against
type EntityKind string

const (
	EntityCustomer    EntityKind = "customer"
	EntityBuilding    EntityKind = "building"
	EntityControlRoom EntityKind = "control_room"
	EntityDamage      EntityKind = "damage"
	EntityStolen      EntityKind = "stolen"
	EntityOther       EntityKind = "other"
)

func (k EntityKind) IsValid() bool {
	switch k {
	case EntityCustomer, EntityBuilding, EntityControlRoom, EntityDamage, EntityStolen, EntityOther:
		return true
	}
	return false
}

// IsLoss is true for kinds booked against the reporting center
func (k EntityKind) IsLoss() bool {
	return k == EntityDamage || k == EntityStolen || k == EntityOther
}

// UsageTarget is the closed set of things stock can be used against. Each
// variant carries exactly the fields its kind needs.
type UsageTarget interface {
	Kind() EntityKind
	EntityID() uuid.UUID
	usageTarget()
}

type CustomerTarget struct {
	CustomerID uuid.UUID `json:"customerId"`
}

func (t CustomerTarget) Kind() EntityKind    { return EntityCustomer }
func (t CustomerTarget) EntityID() uuid.UUID { return t.CustomerID }
func (CustomerTarget) usageTarget()          {}

type BuildingTarget struct {
	BuildingID uuid.UUID `json:"buildingId"`
}

func (t BuildingTarget) Kind() EntityKind    { return EntityBuilding }
func (t BuildingTarget) EntityID() uuid.UUID { return t.BuildingID }
func (BuildingTarget) usageTarget()          {}

type ControlRoomTarget struct {
	ControlRoomID uuid.UUID `json:"controlRoomId"`
}

func (t ControlRoomTarget) Kind() EntityKind    { return EntityControlRoom }
func (t ControlRoomTarget) EntityID() uuid.UUID { return t.ControlRoomID }
func (ControlRoomTarget) usageTarget()          {}

// LossTarget books damaged, stolen or otherwise lost stock against the
// center that reported it.
type LossTarget struct {
	LossKind EntityKind `json:"lossKind"`
	CenterID uuid.UUID  `json:"centerId"`
}

func (t LossTarget) Kind() EntityKind    { return t.LossKind }
func (t LossTarget) EntityID() uuid.UUID { return t.CenterID }
func (LossTarget) usageTarget()          {}

// NewUsageTarget builds the variant for kind. Loss kinds ignore id and book
// against center.
func NewUsageTarget(kind EntityKind, id, center uuid.UUID) (UsageTarget, error) {
	switch kind {
	case EntityCustomer, EntityBuilding, EntityControlRoom:
		if id == uuid.Nil {
			return nil, NewValidationError("target id is required for %s usage", kind)
		}
	}
	switch kind {
	case EntityCustomer:
		return CustomerTarget{CustomerID: id}, nil
	case EntityBuilding:
		return BuildingTarget{BuildingID: id}, nil
	case EntityControlRoom:
		return ControlRoomTarget{ControlRoomID: id}, nil
	case EntityDamage, EntityStolen, EntityOther:
		return LossTarget{LossKind: kind, CenterID: center}, nil
	}
	return nil, NewValidationError("unknown usage target kind %q", kind)
}

// RequiresApproval reports whether usage against t waits for a decision
func RequiresApproval(t UsageTarget) bool {
	return t.Kind() == EntityDamage
}

// UsageSerial is a serial consumed against an entity
type UsageSerial struct {
	SerialNumber   string    `json:"serialNumber"`
	UsageReference uuid.UUID `json:"usageReference"`
	AssignedAt     time.Time `json:"assignedAt"`
}

// UsageAssignment is the quantity booked by one usage event
type UsageAssignment struct {
	UsageReference uuid.UUID `json:"usageReference"`
	Quantity       int       `json:"quantity"`
	AssignedAt     time.Time `json:"assignedAt"`
}

// EntityStockUsage is the ledger of units consumed against one entity
type EntityStockUsage struct {
	ID            uuid.UUID         `json:"id" db:"id"`
	EntityType    EntityKind        `json:"entityType" db:"entity_type"`
	EntityID      uuid.UUID         `json:"entityId" db:"entity_id"`
	ProductID     uuid.UUID         `json:"productId" db:"product_id"`
	TotalQuantity int               `json:"totalQuantity" db:"total_quantity"`
	SerialNumbers []UsageSerial     `json:"serialNumbers" db:"serial_numbers"`
	Assignments   []UsageAssignment `json:"assignments" db:"assignments"`
	Version       int               `json:"version" db:"version"`
	CreatedAt     time.Time         `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time         `json:"updatedAt" db:"updated_at"`
}

func NewEntityStockUsage(target UsageTarget, product uuid.UUID, now time.Time) *EntityStockUsage {
	return &EntityStockUsage{
		ID:            uuid.New(),
		EntityType:    target.Kind(),
		EntityID:      target.EntityID(),
		ProductID:     product,
		SerialNumbers: []UsageSerial{},
		Assignments:   []UsageAssignment{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Assign books quantity (and serials) from usage against the entity
func (e *EntityStockUsage) Assign(usage uuid.UUID, quantity int, serials []string, now time.Time) {
	for _, sn := range serials {
		e.SerialNumbers = append(e.SerialNumbers, UsageSerial{SerialNumber: sn, UsageReference: usage, AssignedAt: now})
	}
	e.Assignments = append(e.Assignments, UsageAssignment{UsageReference: usage, Quantity: quantity, AssignedAt: now})
	e.TotalQuantity += quantity
	e.UpdatedAt = now
}

// Reverse removes everything booked by usage and returns the quantity removed
func (e *EntityStockUsage) Reverse(usage uuid.UUID, now time.Time) int {
	removed := 0
	kept := e.Assignments[:0]
	for _, a := range e.Assignments {
		if a.UsageReference == usage {
			removed += a.Quantity
			continue
		}
		kept = append(kept, a)
	}
	e.Assignments = kept

	serials := e.SerialNumbers[:0]
	for _, s := range e.SerialNumbers {
		if s.UsageReference != usage {
			serials = append(serials, s)
		}
	}
	e.SerialNumbers = serials
	e.TotalQuantity -= removed
	e.UpdatedAt = now
	return removed
}
