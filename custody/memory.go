package custody

import (
	"context"
	"fmt"
	"sync"

	"github.com/xraph/market/types"
)

type singleKey struct {
	contract types.Address
	unitID   uint64
}

// SingleUnitAdapter is an in-memory adapter for indivisible assets.
// Each (contract, unit id) pair has exactly one holder at a time. It
// is safe for concurrent use.
type SingleUnitAdapter struct {
	mu        sync.RWMutex
	holders   map[singleKey]types.Address
	operators map[types.Address]map[types.Address]bool
}

// NewSingleUnitAdapter creates an empty single-unit adapter.
func NewSingleUnitAdapter() *SingleUnitAdapter {
	return &SingleUnitAdapter{
		holders:   make(map[singleKey]types.Address),
		operators: make(map[types.Address]map[types.Address]bool),
	}
}

// Standard implements Adapter.
func (a *SingleUnitAdapter) Standard() Standard { return StandardSingleUnit }

// Mint assigns an asset to its first holder. Test and bootstrap helper.
func (a *SingleUnitAdapter) Mint(contract types.Address, unitID uint64, holder types.Address) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.holders[singleKey{contract, unitID}] = holder
}

// SetApproval lets holder authorize (or revoke) operator to move any of
// its assets.
func (a *SingleUnitAdapter) SetApproval(holder, operator types.Address, approved bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	ops := a.operators[holder]
	if ops == nil {
		ops = make(map[types.Address]bool)
		a.operators[holder] = ops
	}
	ops[operator] = approved
}

// Register implements Adapter. The owner must currently hold the asset.
func (a *SingleUnitAdapter) Register(ctx context.Context, asset Asset, owner types.Address) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.holders[singleKey{asset.Contract, asset.UnitID}] != owner {
		return fmt.Errorf("%w: %s does not hold unit %d", ErrTransferRejected, owner, asset.UnitID)
	}
	return nil
}

// Transfer implements Adapter. The from address must hold the unit. A
// third-party move additionally requires from to have approved the
// effective operator; self moves always pass.
func (a *SingleUnitAdapter) Transfer(ctx context.Context, asset Asset, from, to types.Address) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	key := singleKey{asset.Contract, asset.UnitID}
	if a.holders[key] != from {
		return fmt.Errorf("%w: %s does not hold unit %d", ErrTransferRejected, from, asset.UnitID)
	}
	if !a.approved(from, operatorFrom(ctx)) {
		return fmt.Errorf("%w: operator not approved by %s", ErrTransferRejected, from)
	}
	a.holders[key] = to
	return nil
}

// HolderOf implements Adapter. Single-unit balances are 0 or 1.
func (a *SingleUnitAdapter) HolderOf(ctx context.Context, asset Asset, holder types.Address) (uint64, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.holders[singleKey{asset.Contract, asset.UnitID}] == holder {
		return 1, nil
	}
	return 0, nil
}

func (a *SingleUnitAdapter) approved(holder, operator types.Address) bool {
	if operator == "" || operator == holder {
		return true
	}
	return a.operators[holder][operator]
}

type multiKey struct {
	contract types.Address
	unitID   uint64
	holder   types.Address
}

// MultiUnitAdapter is an in-memory adapter for semi-fungible assets:
// every holder has a balance of interchangeable units per (contract,
// unit id) pair. It is safe for concurrent use.
type MultiUnitAdapter struct {
	mu        sync.RWMutex
	balances  map[multiKey]uint64
	operators map[types.Address]map[types.Address]bool
}

// NewMultiUnitAdapter creates an empty multi-unit adapter.
func NewMultiUnitAdapter() *MultiUnitAdapter {
	return &MultiUnitAdapter{
		balances:  make(map[multiKey]uint64),
		operators: make(map[types.Address]map[types.Address]bool),
	}
}

// Standard implements Adapter.
func (a *MultiUnitAdapter) Standard() Standard { return StandardMultiUnit }

// Mint credits units to a holder. Test and bootstrap helper.
func (a *MultiUnitAdapter) Mint(contract types.Address, unitID uint64, holder types.Address, count uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.balances[multiKey{contract, unitID, holder}] += count
}

// SetApproval lets holder authorize (or revoke) operator to move any of
// its balances.
func (a *MultiUnitAdapter) SetApproval(holder, operator types.Address, approved bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	ops := a.operators[holder]
	if ops == nil {
		ops = make(map[types.Address]bool)
		a.operators[holder] = ops
	}
	ops[operator] = approved
}

// Register implements Adapter. The owner must hold at least the
// listing's unit count.
func (a *MultiUnitAdapter) Register(ctx context.Context, asset Asset, owner types.Address) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.balances[multiKey{asset.Contract, asset.UnitID, owner}] < asset.UnitCount {
		return fmt.Errorf("%w: %s holds fewer than %d units", ErrTransferRejected, owner, asset.UnitCount)
	}
	return nil
}

// Transfer implements Adapter. Debits and credits happen under one
// lock, so a failed check leaves both balances untouched.
func (a *MultiUnitAdapter) Transfer(ctx context.Context, asset Asset, from, to types.Address) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	fromKey := multiKey{asset.Contract, asset.UnitID, from}
	if a.balances[fromKey] < asset.UnitCount {
		return fmt.Errorf("%w: %s holds fewer than %d units", ErrTransferRejected, from, asset.UnitCount)
	}
	if !a.approved(from, operatorFrom(ctx)) {
		return fmt.Errorf("%w: operator not approved by %s", ErrTransferRejected, from)
	}
	a.balances[fromKey] -= asset.UnitCount
	a.balances[multiKey{asset.Contract, asset.UnitID, to}] += asset.UnitCount
	return nil
}

// HolderOf implements Adapter.
func (a *MultiUnitAdapter) HolderOf(ctx context.Context, asset Asset, holder types.Address) (uint64, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.balances[multiKey{asset.Contract, asset.UnitID, holder}], nil
}

func (a *MultiUnitAdapter) approved(holder, operator types.Address) bool {
	if operator == "" || operator == holder {
		return true
	}
	return a.operators[holder][operator]
}

type operatorKey struct{}

// WithOperator marks the protocol address acting on the holder's
// behalf for transfers in this context.
func WithOperator(ctx context.Context, operator types.Address) context.Context {
	return context.WithValue(ctx, operatorKey{}, operator)
}

func operatorFrom(ctx context.Context) types.Address {
	op, _ := ctx.Value(operatorKey{}).(types.Address)
	return op
}
