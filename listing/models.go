// Package listing models an owner's offer to hand an asset into
// protocol custody under fixed occupation terms.
package listing

import (
	"errors"
	"fmt"

	"github.com/xraph/market/custody"
	"github.com/xraph/market/types"
)

// ErrInvalidTerms means the listing's economic or asset terms fail
// validation. Nothing invalid is ever persisted.
var ErrInvalidTerms = errors.New("listing: invalid terms")

// Listing is the persistent offer. IDs are dense per deployment:
// assigned 0, 1, 2, ... in creation order, and a canceled listing's
// id is never reused.
type Listing struct {
	types.Entity
	ID       uint64           `json:"id"`
	Owner    types.Address    `json:"owner"`
	Standard custody.Standard `json:"standard"`

	// Asset identity. UnitCount is 1 for single-unit standards.
	AssetContract types.Address `json:"asset_contract"`
	AssetUnitID   uint64        `json:"asset_unit_id"`
	UnitCount     uint64        `json:"unit_count"`

	// Economic terms, fixed at creation.
	PaymentToken  types.Address `json:"payment_token"`
	RatePerSecond int64         `json:"rate_per_second"`
	MaxDuration   int64         `json:"max_duration"`

	// Sticky listings survive occupancy completion and can be taken
	// again; one-shot listings are removed when the occupancy ends.
	Sticky bool `json:"sticky"`
}

// Asset returns the custody locator for the listed asset.
func (l *Listing) Asset() custody.Asset {
	return custody.Asset{Contract: l.AssetContract, UnitID: l.AssetUnitID, UnitCount: l.UnitCount}
}

// TotalPrice is the full upfront charge for an occupancy: rate times
// the maximum duration.
func (l *Listing) TotalPrice() int64 {
	return l.RatePerSecond * l.MaxDuration
}

// Validate checks the terms. minHold is the protocol's minimal hold
// period; MaxDuration must be at least that long.
func (l *Listing) Validate(minHold int64) error {
	if l.Owner.IsZero() {
		return fmt.Errorf("%w: owner is required", ErrInvalidTerms)
	}
	if l.AssetContract.IsZero() {
		return fmt.Errorf("%w: asset contract is required", ErrInvalidTerms)
	}
	if l.PaymentToken.IsZero() {
		return fmt.Errorf("%w: payment token is required", ErrInvalidTerms)
	}
	if l.RatePerSecond <= 0 {
		return fmt.Errorf("%w: rate per second must be positive, got %d", ErrInvalidTerms, l.RatePerSecond)
	}
	if l.MaxDuration < minHold {
		return fmt.Errorf("%w: max duration %ds is below the minimal hold %ds", ErrInvalidTerms, l.MaxDuration, minHold)
	}
	if l.UnitCount == 0 {
		return fmt.Errorf("%w: unit count must be positive", ErrInvalidTerms)
	}
	if l.Standard == custody.StandardSingleUnit && l.UnitCount != 1 {
		return fmt.Errorf("%w: single-unit listings carry exactly one unit, got %d", ErrInvalidTerms, l.UnitCount)
	}
	return nil
}
