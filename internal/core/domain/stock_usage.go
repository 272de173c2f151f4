// internal/core/domain/stock_usage.go
package domain

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUsageNotPending  = errors.New("usage event is not pending")
	ErrUsageNotDecision = errors.New("usage event does not require a decision")
)

// UsageStatus is the state of a usage event
type UsageStatus string

const (
	UsagePending   UsageStatus = "pending"
	UsageCompleted UsageStatus = "completed"
	UsageCancelled UsageStatus = "cancelled"
)

func (s UsageStatus) IsValid() bool {
	return s == UsagePending || s == UsageCompleted || s == UsageCancelled
}

// StockUsage is a consumption of center stock against a target. Damage
// usage holds its reservation in pending until approved or rejected.
type StockUsage struct {
	ID             uuid.UUID   `db:"id"`
	CenterID       uuid.UUID   `db:"center_id"`
	ProductID      uuid.UUID   `db:"product_id"`
	Target         UsageTarget `db:"-"`
	Quantity       int         `db:"quantity"`
	SerialNumbers  []string    `db:"serial_numbers"`
	Status         UsageStatus `db:"status"`
	Remark         string      `db:"remark"`
	ReportedBy     string      `db:"reported_by"`
	DecidedBy      string      `db:"decided_by"`
	DecisionRemark string      `db:"decision_remark"`
	FaultyStockID  *uuid.UUID  `db:"faulty_stock_id"`
	Version        int         `db:"version"`
	CreatedAt      time.Time   `db:"created_at"`
	UpdatedAt      time.Time   `db:"updated_at"`
	DecidedAt      *time.Time  `db:"decided_at"`
}

// NewStockUsage validates a usage request. Serial numbers are filled in by
// the ledger when it picks the units.
func NewStockUsage(center, product uuid.UUID, target UsageTarget, quantity int, remark, by string, now time.Time) (*StockUsage, error) {
	if center == uuid.Nil {
		return nil, NewValidationError("center_id is required")
	}
	if product == uuid.Nil {
		return nil, NewValidationError("product_id is required")
	}
	if target == nil {
		return nil, NewValidationError("usage target is required")
	}
	if quantity <= 0 {
		return nil, NewValidationError("quantity must be greater than zero")
	}

	status := UsageCompleted
	if RequiresApproval(target) {
		status = UsagePending
	}
	return &StockUsage{
		ID:            uuid.New(),
		CenterID:      center,
		ProductID:     product,
		Target:        target,
		Quantity:      quantity,
		SerialNumbers: []string{},
		Status:        status,
		Remark:        remark,
		ReportedBy:    by,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

func (u *StockUsage) decide(status UsageStatus, by, remark string, now time.Time) error {
	if !RequiresApproval(u.Target) {
		return NewInvalidState("usage %s is not a damage report", u.ID).Wrap(ErrUsageNotDecision)
	}
	if u.Status != UsagePending {
		return NewInvalidState("usage %s is %s, expected pending", u.ID, u.Status).Wrap(ErrUsageNotPending)
	}
	u.Status = status
	u.DecidedBy = by
	u.DecisionRemark = remark
	u.DecidedAt = &now
	u.UpdatedAt = now
	return nil
}

// Approve completes a pending damage report
func (u *StockUsage) Approve(faultyStockID uuid.UUID, by, remark string, now time.Time) error {
	if err := u.decide(UsageCompleted, by, remark, now); err != nil {
		return err
	}
	u.FaultyStockID = &faultyStockID
	return nil
}

// Reject cancels a pending damage report
func (u *StockUsage) Reject(by, remark string, now time.Time) error {
	return u.decide(UsageCancelled, by, remark, now)
}

// CanDecide reports whether Approve or Reject may be called
func (u *StockUsage) CanDecide() error {
	if !RequiresApproval(u.Target) {
		return NewInvalidState("usage %s is not a damage report", u.ID).Wrap(ErrUsageNotDecision)
	}
	if u.Status != UsagePending {
		return NewInvalidState("usage %s is %s, expected pending", u.ID, u.Status).Wrap(ErrUsageNotPending)
	}
	return nil
}

type usageTargetJSON struct {
	Kind EntityKind `json:"kind"`
	ID   uuid.UUID  `json:"id"`
}

type stockUsageJSON struct {
	ID             uuid.UUID       `json:"id"`
	CenterID       uuid.UUID       `json:"centerId"`
	ProductID      uuid.UUID       `json:"productId"`
	Target         usageTargetJSON `json:"target"`
	Quantity       int             `json:"quantity"`
	SerialNumbers  []string        `json:"serialNumbers"`
	Status         UsageStatus     `json:"status"`
	Remark         string          `json:"remark,omitempty"`
	ReportedBy     string          `json:"reportedBy"`
	DecidedBy      string          `json:"decidedBy,omitempty"`
	DecisionRemark string          `json:"decisionRemark,omitempty"`
	FaultyStockID  *uuid.UUID      `json:"faultyStockId,omitempty"`
	Version        int             `json:"version"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
	DecidedAt      *time.Time      `json:"decidedAt,omitempty"`
}

func (u StockUsage) MarshalJSON() ([]byte, error) {
	out := stockUsageJSON{
		ID: u.ID, CenterID: u.CenterID, ProductID: u.ProductID,
		Quantity: u.Quantity, SerialNumbers: u.SerialNumbers, Status: u.Status,
		Remark: u.Remark, ReportedBy: u.ReportedBy, DecidedBy: u.DecidedBy,
		DecisionRemark: u.DecisionRemark, FaultyStockID: u.FaultyStockID, Version: u.Version,
		CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt, DecidedAt: u.DecidedAt,
	}
	if u.Target != nil {
		out.Target = usageTargetJSON{Kind: u.Target.Kind(), ID: u.Target.EntityID()}
	}
	return json.Marshal(out)
}

func (u *StockUsage) UnmarshalJSON(data []byte) error {
	var in stockUsageJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	target, err := NewUsageTarget(in.Target.Kind, in.Target.ID, in.CenterID)
	if err != nil {
		return err
	}
	*u = StockUsage{
		ID: in.ID, CenterID: in.CenterID, ProductID: in.ProductID, Target: target,
		Quantity: in.Quantity, SerialNumbers: in.SerialNumbers, Status: in.Status,
		Remark: in.Remark, ReportedBy: in.ReportedBy, DecidedBy: in.DecidedBy,
		DecisionRemark: in.DecisionRemark, FaultyStockID: in.FaultyStockID, Version: in.Version,
		CreatedAt: in.CreatedAt, UpdatedAt: in.UpdatedAt, DecidedAt: in.DecidedAt,
	}
	return nil
}
