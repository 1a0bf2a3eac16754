// Package settlement computes how an occupancy's upfront stake is
// apportioned among owner, occupant, guarantor, and the protocol fee
// pool. It is pure arithmetic: no I/O, no clock, no state.
//
// All rates are fixed-point fractions over FeeDenominator. A stored
// rate of 20 is an effective 5%.
package settlement

import "fmt"

// FeeDenominator is the fixed-point denominator shared by the protocol
// fee rate and guarantor fee rate.
const FeeDenominator = 400

// Terms carries everything the split depends on. Elapsed must already
// be capped by the caller for the claim path (elapsed = max duration).
type Terms struct {
	RatePerSecond   int64 // payment token units accrued per second
	MaxDuration     int64 // seconds; TotalPrice = RatePerSecond * MaxDuration
	Elapsed         int64 // seconds of occupation, 0 <= Elapsed <= MaxDuration
	ProtocolFeeRate int64 // parts per FeeDenominator, taken from cost
	OccupantStake   int64 // occupant-funded share of the upfront price
	GuarantorStake  int64 // guarantor-funded share, 0 if no guarantor

	// GuarantorFeeRate is the guarantor's service fee in parts per
	// FeeDenominator of GuarantorStake, paid out of the occupant's
	// refund when the guarantor's principal was never touched.
	GuarantorFeeRate int64
}

// Split is the four-way apportionment of the upfront price.
// OwnerPayout + OccupantPayout + GuarantorPayout + ProtocolFee always
// equals TotalPrice exactly.
type Split struct {
	OwnerPayout     int64
	OccupantPayout  int64
	GuarantorPayout int64
	ProtocolFee     int64
}

// TotalPrice is the fully-funded upfront stake for the terms.
func (t Terms) TotalPrice() int64 { return t.RatePerSecond * t.MaxDuration }

// Total returns the sum of the four outputs.
func (s Split) Total() int64 {
	return s.OwnerPayout + s.OccupantPayout + s.GuarantorPayout + s.ProtocolFee
}

// Compute apportions the upfront stake for the elapsed occupation time.
//
// Cost accrues linearly and is clamped to the total price. The protocol
// fee is carved out of cost; the owner receives the remainder of cost,
// so integer truncation from the fee division stays with the owner.
// The unspent remainder of the upfront price refunds to the occupant,
// unless a guarantor co-funded, in which case the waterfall applies:
// the occupant's own stake absorbs cost first, and the guarantor's
// principal is only tapped once the occupant's stake is exhausted. A
// guarantor whose principal was never at risk additionally earns a
// service fee out of the occupant's remainder; a tapped guarantor earns
// nothing beyond what is left of its principal.
func Compute(t Terms) (Split, error) {
	if err := t.validate(); err != nil {
		return Split{}, err
	}

	total := t.TotalPrice()
	cost := t.RatePerSecond * t.Elapsed
	if cost > total {
		cost = total
	}

	protocolFee := cost * t.ProtocolFeeRate / FeeDenominator
	ownerPayout := cost - protocolFee
	refundPool := total - cost

	if t.GuarantorStake == 0 {
		return Split{
			OwnerPayout:    ownerPayout,
			OccupantPayout: refundPool,
			ProtocolFee:    protocolFee,
		}, nil
	}

	if cost <= t.OccupantStake {
		remainder := t.OccupantStake - cost
		bonus := t.GuarantorStake * t.GuarantorFeeRate / FeeDenominator
		if bonus > remainder {
			// The bonus is funded out of the occupant's remainder and
			// can never drive the occupant's payout negative.
			bonus = remainder
		}
		return Split{
			OwnerPayout:     ownerPayout,
			OccupantPayout:  remainder - bonus,
			GuarantorPayout: t.GuarantorStake + bonus,
			ProtocolFee:     protocolFee,
		}, nil
	}

	// Tapped-guarantor branch: cost ate through the occupant's stake.
	// Always >= 0 because cost is capped at OccupantStake+GuarantorStake.
	shortfall := cost - t.OccupantStake
	return Split{
		OwnerPayout:     ownerPayout,
		OccupantPayout:  0,
		GuarantorPayout: t.GuarantorStake - shortfall,
		ProtocolFee:     protocolFee,
	}, nil
}

func (t Terms) validate() error {
	switch {
	case t.RatePerSecond <= 0:
		return fmt.Errorf("settlement: rate per second must be positive, got %d", t.RatePerSecond)
	case t.MaxDuration <= 0:
		return fmt.Errorf("settlement: max duration must be positive, got %d", t.MaxDuration)
	case t.Elapsed < 0 || t.Elapsed > t.MaxDuration:
		return fmt.Errorf("settlement: elapsed %d out of range [0, %d]", t.Elapsed, t.MaxDuration)
	case t.ProtocolFeeRate < 0 || t.ProtocolFeeRate > FeeDenominator:
		return fmt.Errorf("settlement: protocol fee rate %d out of range [0, %d]", t.ProtocolFeeRate, FeeDenominator)
	case t.GuarantorFeeRate < 0 || t.GuarantorFeeRate > FeeDenominator:
		return fmt.Errorf("settlement: guarantor fee rate %d out of range [0, %d]", t.GuarantorFeeRate, FeeDenominator)
	case t.OccupantStake < 0 || t.GuarantorStake < 0:
		return fmt.Errorf("settlement: stakes must be non-negative")
	case t.OccupantStake+t.GuarantorStake != t.TotalPrice():
		return fmt.Errorf("settlement: stakes %d+%d do not fund total price %d",
			t.OccupantStake, t.GuarantorStake, t.TotalPrice())
	}
	return nil
}
