// internal/core/domain/catalog.go
package domain

import (
	"github.com/google/uuid"
)

// Product is the read-only view of master product data the engine needs
type Product struct {
	ID         uuid.UUID `json:"id" db:"id"`
	SKU        string    `json:"sku" db:"sku"`
	Name       string    `json:"name" db:"name"`
	Serialized bool      `json:"serialized" db:"serialized"`
	Enabled    bool      `json:"enabled" db:"enabled"`
}

// CenterType classifies a physical location
type CenterType string

const (
	CenterBranch CenterType = "branch"
	CenterOutlet CenterType = "outlet"
	CenterRepair CenterType = "repair"
)

func (t CenterType) IsValid() bool {
	return t == CenterBranch || t == CenterOutlet || t == CenterRepair
}

type Center struct {
	ID     uuid.UUID  `json:"id" db:"id"`
	Name   string     `json:"name" db:"name"`
	Type   CenterType `json:"type" db:"center_type"`
	Active bool       `json:"active" db:"active"`
}

// Reseller is a downstream partner; its stock sits at an auto-provisioned
// outlet center.
type Reseller struct {
	ID             uuid.UUID `json:"id" db:"id"`
	Name           string    `json:"name" db:"name"`
	OutletCenterID uuid.UUID `json:"outletCenterId" db:"outlet_center_id"`
	Active         bool      `json:"active" db:"active"`
}
