// Package custody abstracts moving an asset between owner, protocol,
// and occupant custody, uniformly across structurally different asset
// standards. Only this package knows whether an asset is a single
// indivisible unit or a balance of interchangeable units; the engine
// and the settlement math never branch on the standard.
package custody

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/xraph/market/types"
)

var (
	// ErrTransferRejected means the adapter refused the move: the
	// sender does not hold the asset, lacks units, or never approved
	// the protocol as an operator. The adapter guarantees nothing
	// changed.
	ErrTransferRejected = errors.New("custody: asset transfer rejected")

	// ErrUnknownStandard means no adapter is registered for the
	// listing's standard.
	ErrUnknownStandard = errors.New("custody: no adapter for asset standard")
)

// Standard tags which adapter moves a listing's asset.
type Standard string

const (
	// StandardSingleUnit is for non-fungible assets: one unit, one holder.
	StandardSingleUnit Standard = "single_unit"

	// StandardMultiUnit is for semi-fungible assets: per-holder balances
	// of interchangeable units under one (contract, unit id) pair.
	StandardMultiUnit Standard = "multi_unit"
)

// Asset locates what is being moved: a unit (or unit count) of a
// contract. UnitCount is 1 for single-unit assets.
type Asset struct {
	Contract  types.Address
	UnitID    uint64
	UnitCount uint64
}

// Adapter is the capability for one asset standard. Implementations
// must make Transfer atomic: either the holder of record updates fully,
// or the call fails and no state changed.
type Adapter interface {
	// Standard identifies which listings this adapter serves.
	Standard() Standard

	// Register records a standing claim: owner currently holds the
	// asset and has authorized moves on the protocol's behalf. No
	// transfer happens until first occupation.
	Register(ctx context.Context, asset Asset, owner types.Address) error

	// Transfer moves the asset between holders. It fails if from does
	// not hold the asset, lacks units, or has not approved the
	// protocol as an operator.
	Transfer(ctx context.Context, asset Asset, from, to types.Address) error

	// HolderOf reports how many units of the asset an address holds.
	HolderOf(ctx context.Context, asset Asset, holder types.Address) (uint64, error)
}

// Registry resolves adapters by standard. It is populated at wiring
// time and read-only afterwards, so lookups take only a read lock.
type Registry struct {
	mu       sync.RWMutex
	adapters map[Standard]Adapter
}

// NewRegistry creates an empty adapter registry.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[Standard]Adapter)}
}

// Register adds an adapter, replacing any previous one for the same standard.
func (r *Registry) Register(a Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[a.Standard()] = a
}

// Resolve returns the adapter for a standard.
func (r *Registry) Resolve(standard Standard) (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[standard]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStandard, standard)
	}
	return a, nil
}

// Standards lists the registered standards.
func (r *Registry) Standards() []Standard {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Standard, 0, len(r.adapters))
	for s := range r.adapters {
		out = append(out, s)
	}
	return out
}
