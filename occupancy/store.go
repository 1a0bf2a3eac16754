package occupancy

import (
	"context"

	"github.com/xraph/market/types"
)

type Store interface {
	// Create persists a new occupancy. It fails if the listing already
	// has one: the store is the single arbiter of exclusivity.
	Create(ctx context.Context, o *Occupancy) error

	// Get returns the active occupancy for a listing.
	Get(ctx context.Context, listingID uint64) (*Occupancy, error)

	List(ctx context.Context, opts ListOpts) ([]*Occupancy, error)
	Delete(ctx context.Context, listingID uint64) error
}

type ListOpts struct {
	Occupant types.Address
	Limit    int
	Offset   int
}
