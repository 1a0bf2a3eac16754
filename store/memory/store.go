package memory

import (
	"context"
	"sync"

	"github.com/xraph/market"
	"github.com/xraph/market/listing"
	"github.com/xraph/market/occupancy"
	"github.com/xraph/market/types"
)

type nonceKey struct {
	guarantor types.Address
	nonce     uint64
}

type Store struct {
	mu sync.RWMutex

	// Listing storage. nextID is dense and never reused.
	listings map[uint64]*listing.Listing
	nextID   uint64

	// Occupancy storage, keyed by listing id.
	occupancies map[uint64]*occupancy.Occupancy

	// Accrued protocol fees, per token.
	fees map[types.Address]int64

	// Consumed consent nonces.
	nonces map[nonceKey]bool
}

func New() *Store {
	return &Store{
		listings:    make(map[uint64]*listing.Listing),
		occupancies: make(map[uint64]*occupancy.Occupancy),
		fees:        make(map[types.Address]int64),
		nonces:      make(map[nonceKey]bool),
	}
}

// Listing Store implementation

func (s *Store) NextListingID(_ context.Context) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	return id, nil
}

func (s *Store) CreateListing(_ context.Context, l *listing.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.listings[l.ID]; exists {
		return market.ErrAlreadyExists
	}
	s.listings[l.ID] = l
	return nil
}

func (s *Store) GetListing(_ context.Context, id uint64) (*listing.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if l, ok := s.listings[id]; ok {
		return l, nil
	}
	return nil, market.ErrListingNotFound
}

func (s *Store) ListListings(_ context.Context, opts listing.ListOpts) ([]*listing.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*listing.Listing, 0)
	// Iterate in id order so pagination is stable.
	for id := uint64(0); id < s.nextID; id++ {
		l, ok := s.listings[id]
		if !ok {
			continue
		}
		if !opts.Owner.IsZero() && l.Owner != opts.Owner {
			continue
		}
		result = append(result, l)
	}
	return paginate(result, opts.Offset, opts.Limit), nil
}

func (s *Store) CountListings(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.listings)), nil
}

func (s *Store) DeleteListing(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.listings[id]; !ok {
		return market.ErrListingNotFound
	}
	delete(s.listings, id)
	return nil
}

// Occupancy Store implementation

func (s *Store) CreateOccupancy(_ context.Context, o *occupancy.Occupancy) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.occupancies[o.ListingID]; exists {
		return market.ErrAlreadyOccupied
	}
	s.occupancies[o.ListingID] = o
	return nil
}

func (s *Store) GetOccupancy(_ context.Context, listingID uint64) (*occupancy.Occupancy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if o, ok := s.occupancies[listingID]; ok {
		return o, nil
	}
	return nil, market.ErrOccupancyNotFound
}

func (s *Store) ListOccupancies(_ context.Context, opts occupancy.ListOpts) ([]*occupancy.Occupancy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*occupancy.Occupancy, 0)
	for id := uint64(0); id < s.nextID; id++ {
		o, ok := s.occupancies[id]
		if !ok {
			continue
		}
		if !opts.Occupant.IsZero() && o.Occupant != opts.Occupant {
			continue
		}
		result = append(result, o)
	}
	return paginate(result, opts.Offset, opts.Limit), nil
}

func (s *Store) DeleteOccupancy(_ context.Context, listingID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.occupancies[listingID]; !ok {
		return market.ErrOccupancyNotFound
	}
	delete(s.occupancies, listingID)
	return nil
}

// Fee accrual implementation

func (s *Store) AccrueFee(_ context.Context, token types.Address, amount int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.fees[token] += amount
	return nil
}

func (s *Store) FeeBalance(_ context.Context, token types.Address) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fees[token], nil
}

func (s *Store) ResetFees(_ context.Context, token types.Address) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	balance := s.fees[token]
	delete(s.fees, token)
	return balance, nil
}

// Nonce ledger implementation

func (s *Store) ConsumeNonce(_ context.Context, guarantor types.Address, nonce uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := nonceKey{guarantor, nonce}
	if s.nonces[key] {
		return market.ErrNonceReused
	}
	s.nonces[key] = true
	return nil
}

func (s *Store) NonceUsed(_ context.Context, guarantor types.Address, nonce uint64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nonces[nonceKey{guarantor, nonce}], nil
}

// Core methods

func (s *Store) Migrate(_ context.Context) error { return nil }
func (s *Store) Ping(_ context.Context) error    { return nil }
func (s *Store) Close() error                    { return nil }

func paginate[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
