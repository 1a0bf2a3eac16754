// Package occupancy models the active possession period of a listed
// asset, including who staked what at its start.
package occupancy

import (
	"time"

	"github.com/xraph/market/id"
	"github.com/xraph/market/types"
)

// Occupancy records one live possession. At most one exists per
// listing at a time; ending states (return, claim) delete the record.
type Occupancy struct {
	types.Entity
	ID        id.OccupancyID `json:"id"`
	ListingID uint64         `json:"listing_id"`
	Occupant  types.Address  `json:"occupant"`
	StartTime time.Time      `json:"start_time"`

	// Upfront funding. OccupantStake plus GuarantorStake equals the
	// listing's total price. Guarantor is zero when the occupant
	// self-funded fully.
	OccupantStake    int64         `json:"occupant_stake"`
	Guarantor        types.Address `json:"guarantor,omitempty"`
	GuarantorStake   int64         `json:"guarantor_stake"`
	GuarantorFeeRate int64         `json:"guarantor_fee_rate"`
}

// HasGuarantor reports whether a guarantor co-funded this occupancy.
func (o *Occupancy) HasGuarantor() bool {
	return !o.Guarantor.IsZero()
}

// Elapsed is the whole seconds held as of now.
func (o *Occupancy) Elapsed(now time.Time) int64 {
	e := int64(now.Sub(o.StartTime) / time.Second)
	if e < 0 {
		return 0
	}
	return e
}
