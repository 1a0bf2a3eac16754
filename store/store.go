package store

import (
	"context"

	"github.com/xraph/market/listing"
	"github.com/xraph/market/occupancy"
	"github.com/xraph/market/types"
)

// Store is the unified storage interface for all Market state.
// Instead of embedding the sub-interfaces, we explicitly declare all
// methods to avoid naming conflicts.
type Store interface {
	// Listing methods
	NextListingID(ctx context.Context) (uint64, error)
	CreateListing(ctx context.Context, l *listing.Listing) error
	GetListing(ctx context.Context, id uint64) (*listing.Listing, error)
	ListListings(ctx context.Context, opts listing.ListOpts) ([]*listing.Listing, error)
	CountListings(ctx context.Context) (int64, error)
	DeleteListing(ctx context.Context, id uint64) error

	// Occupancy methods. CreateOccupancy enforces exclusivity: it
	// fails when the listing already has an active occupancy.
	CreateOccupancy(ctx context.Context, o *occupancy.Occupancy) error
	GetOccupancy(ctx context.Context, listingID uint64) (*occupancy.Occupancy, error)
	ListOccupancies(ctx context.Context, opts occupancy.ListOpts) ([]*occupancy.Occupancy, error)
	DeleteOccupancy(ctx context.Context, listingID uint64) error

	// Protocol fee accrual, per payment token. ResetFees zeroes the
	// balance and returns what it held, atomically.
	AccrueFee(ctx context.Context, token types.Address, amount int64) error
	FeeBalance(ctx context.Context, token types.Address) (int64, error)
	ResetFees(ctx context.Context, token types.Address) (int64, error)

	// Consent nonce ledger, per guarantor. ConsumeNonce fails on
	// replay and marks the nonce used otherwise, atomically.
	ConsumeNonce(ctx context.Context, guarantor types.Address, nonce uint64) error
	NonceUsed(ctx context.Context, guarantor types.Address, nonce uint64) (bool, error)

	// Core methods
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
