// Package access answers who may call privileged operations, such as
// withdrawing accrued protocol fees.
package access

import (
	"errors"
	"fmt"

	"github.com/xraph/market/types"
)

// ErrDenied means the caller does not hold the required role.
var ErrDenied = errors.New("access: denied")

// Role names a privilege.
type Role string

const (
	// RoleAdmin may change protocol parameters.
	RoleAdmin Role = "admin"

	// RoleTreasurer may withdraw accrued protocol fees.
	RoleTreasurer Role = "treasurer"
)

// Gate checks role membership.
type Gate interface {
	RequireRole(caller types.Address, role Role) error
}

// StaticGate is a fixed role table, assigned at construction. Safe for
// concurrent reads.
type StaticGate struct {
	roles map[Role]map[types.Address]bool
}

// NewStaticGate creates a gate with no grants.
func NewStaticGate() *StaticGate {
	return &StaticGate{roles: make(map[Role]map[types.Address]bool)}
}

// Grant adds an address to a role. Call during wiring, before the gate
// is shared.
func (g *StaticGate) Grant(addr types.Address, role Role) *StaticGate {
	members := g.roles[role]
	if members == nil {
		members = make(map[types.Address]bool)
		g.roles[role] = members
	}
	members[addr] = true
	return g
}

// RequireRole implements Gate.
func (g *StaticGate) RequireRole(caller types.Address, role Role) error {
	if !g.roles[role][caller] {
		return fmt.Errorf("%w: %s lacks role %s", ErrDenied, caller, role)
	}
	return nil
}

// OpenGate admits every caller to every role. For tests and
// single-operator deployments.
type OpenGate struct{}

// RequireRole implements Gate.
func (OpenGate) RequireRole(types.Address, Role) error { return nil }
