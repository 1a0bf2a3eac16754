package listing

import (
	"context"

	"github.com/xraph/market/types"
)

type Store interface {
	// NextID allocates the next dense listing id. IDs start at 0 and
	// never repeat, even after deletion.
	NextID(ctx context.Context) (uint64, error)

	Create(ctx context.Context, l *Listing) error
	Get(ctx context.Context, id uint64) (*Listing, error)
	List(ctx context.Context, opts ListOpts) ([]*Listing, error)
	Count(ctx context.Context) (int64, error)
	Delete(ctx context.Context, id uint64) error
}

type ListOpts struct {
	Owner  types.Address
	Limit  int
	Offset int
}
