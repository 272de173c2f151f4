// internal/core/domain/actor.go
package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Capability names an action an actor may be allowed to perform.
type Capability string

const (
	CapStockUsageCreate Capability = "stock_usage.create"
	CapStockUsageView   Capability = "stock_usage.view"
	CapDamageDecide     Capability = "damage.decide"
	CapFaultyTransfer   Capability = "faulty_stock.transfer"
	CapRepairUpdate     Capability = "repair.update"
	CapRepairReturn     Capability = "repair.return"
	CapOnwardTransfer   Capability = "repair.onward_transfer"
	CapStockView        Capability = "stock.view"
	CapReportView       Capability = "report.view"
	CapLedgerAudit      Capability = "ledger.audit"
)

// Scope restricts a capability to the actor's own center or all centers.
// ScopeAllCenters implies ScopeOwnCenter.
type Scope int

const (
	ScopeOwnCenter Scope = iota + 1
	ScopeAllCenters
)

func (s Scope) String() string {
	switch s {
	case ScopeOwnCenter:
		return "own-center"
	case ScopeAllCenters:
		return "all-centers"
	default:
		return "none"
	}
}

// ParseScope accepts "own", "own-center", "all" and "all-centers".
func ParseScope(s string) (Scope, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "own", "own-center":
		return ScopeOwnCenter, nil
	case "all", "all-centers":
		return ScopeAllCenters, nil
	default:
		return 0, fmt.Errorf("unknown scope %q", s)
	}
}

// Actor is the authenticated caller, resolved once per request.
type Actor struct {
	ID       string
	CenterID uuid.UUID
	grants   map[Capability]Scope
}

func NewActor(id string, centerID uuid.UUID, grants map[Capability]Scope) *Actor {
	g := make(map[Capability]Scope, len(grants))
	for c, s := range grants {
		g[c] = s
	}
	return &Actor{ID: id, CenterID: centerID, grants: g}
}

// Can reports whether the actor holds capability with at least the given scope.
func (a *Actor) Can(capability Capability, scope Scope) bool {
	if a == nil {
		return false
	}
	granted, ok := a.grants[capability]
	return ok && granted >= scope
}

// CanAccessCenter reports whether capability may be exercised against centerID.
func (a *Actor) CanAccessCenter(capability Capability, centerID uuid.UUID) bool {
	if a.Can(capability, ScopeAllCenters) {
		return true
	}
	return a.Can(capability, ScopeOwnCenter) && a.CenterID != uuid.Nil && a.CenterID == centerID
}

// RequireCenter returns PermissionDenied unless CanAccessCenter holds.
func (a *Actor) RequireCenter(capability Capability, centerID uuid.UUID) error {
	if a.CanAccessCenter(capability, centerID) {
		return nil
	}
	scope := ScopeOwnCenter
	if a == nil || centerID != a.CenterID {
		scope = ScopeAllCenters
	}
	return NewPermissionDenied(capability, scope)
}

// Require returns PermissionDenied unless the actor holds capability with scope.
func (a *Actor) Require(capability Capability, scope Scope) error {
	if a.Can(capability, scope) {
		return nil
	}
	return NewPermissionDenied(capability, scope)
}

// CenterFilter returns the center a query must be restricted to, or nil when
// the actor may see every center. requested narrows an all-centers actor.
func (a *Actor) CenterFilter(capability Capability, requested *uuid.UUID) (*uuid.UUID, error) {
	if a.Can(capability, ScopeAllCenters) {
		return requested, nil
	}
	if !a.Can(capability, ScopeOwnCenter) {
		return nil, NewPermissionDenied(capability, ScopeOwnCenter)
	}
	if requested != nil && *requested != a.CenterID {
		return nil, NewPermissionDenied(capability, ScopeAllCenters)
	}
	own := a.CenterID
	return &own, nil
}

// ParseGrants parses "capability:scope" pairs separated by commas.
func ParseGrants(raw string) (map[Capability]Scope, error) {
	grants := make(map[Capability]Scope)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, scopeStr, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("grant %q is missing a scope", part)
		}
		scope, err := ParseScope(scopeStr)
		if err != nil {
			return nil, err
		}
		c := Capability(strings.TrimSpace(name))
		if scope > grants[c] {
			grants[c] = scope
		}
	}
	return grants, nil
}
