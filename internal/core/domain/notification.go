// internal/core/domain/notification.go
package domain

import (
	"time"

	"github.com/google/uuid"
)

// NotificationKind names a stock event other parties are told about
type NotificationKind string

const (
	NotifyDamageReported NotificationKind = "damage_reported"
	NotifyDamageApproved NotificationKind = "damage_approved"
	NotifyDamageRejected NotificationKind = "damage_rejected"
	NotifySentToRepair   NotificationKind = "sent_to_repair"
	NotifyRepairOutcome  NotificationKind = "repair_outcome"
	NotifyUnitsReleased  NotificationKind = "units_released"
)

// Notification is delivered asynchronously after the change is committed
type Notification struct {
	Kind       NotificationKind `json:"kind"`
	CenterID   uuid.UUID        `json:"centerId"`
	ProductID  uuid.UUID        `json:"productId"`
	Reference  uuid.UUID        `json:"reference"`
	Quantity   int              `json:"quantity"`
	Status     string           `json:"status,omitempty"`
	Actor      string           `json:"actor"`
	OccurredAt time.Time        `json:"occurredAt"`
}

// ExportRequest describes a repair transfer export job
type ExportRequest struct {
	RequestedBy  string        `json:"requestedBy"`
	FromCenterID *uuid.UUID    `json:"fromCenterId,omitempty"`
	Status       *RepairStatus `json:"status,omitempty"`
	From         *time.Time    `json:"from,omitempty"`
	To           *time.Time    `json:"to,omitempty"`
}

// AuditRequest asks the worker to re-check ledger invariants
type AuditRequest struct {
	RequestedBy string     `json:"requestedBy"`
	CenterID    *uuid.UUID `json:"centerId,omitempty"`
}

// AuditFinding is one invariant violation found by the ledger audit
type AuditFinding struct {
	RecordType string    `json:"recordType"`
	RecordID   uuid.UUID `json:"recordId"`
	Problem    string    `json:"problem"`
}
