package sqlite

import (
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/market/custody"
	"github.com/xraph/market/id"
	"github.com/xraph/market/listing"
	"github.com/xraph/market/occupancy"
	"github.com/xraph/market/types"
)

// ==================== Listing models ====================

type listingModel struct {
	grove.BaseModel `grove:"table:market_listings"`

	ID            uint64    `grove:"id,pk"`
	Owner         string    `grove:"owner"`
	Standard      string    `grove:"standard"`
	AssetContract string    `grove:"asset_contract"`
	AssetUnitID   uint64    `grove:"asset_unit_id"`
	UnitCount     uint64    `grove:"unit_count"`
	PaymentToken  string    `grove:"payment_token"`
	RatePerSecond int64     `grove:"rate_per_second"`
	MaxDuration   int64     `grove:"max_duration"`
	Sticky        bool      `grove:"sticky"`
	CreatedAt     time.Time `grove:"created_at"`
	UpdatedAt     time.Time `grove:"updated_at"`
}

func toListingModel(l *listing.Listing) *listingModel {
	return &listingModel{
		ID:            l.ID,
		Owner:         string(l.Owner),
		Standard:      string(l.Standard),
		AssetContract: string(l.AssetContract),
		AssetUnitID:   l.AssetUnitID,
		UnitCount:     l.UnitCount,
		PaymentToken:  string(l.PaymentToken),
		RatePerSecond: l.RatePerSecond,
		MaxDuration:   l.MaxDuration,
		Sticky:        l.Sticky,
		CreatedAt:     l.CreatedAt,
		UpdatedAt:     l.UpdatedAt,
	}
}

func fromListingModel(m *listingModel) *listing.Listing {
	return &listing.Listing{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:            m.ID,
		Owner:         types.Address(m.Owner),
		Standard:      custody.Standard(m.Standard),
		AssetContract: types.Address(m.AssetContract),
		AssetUnitID:   m.AssetUnitID,
		UnitCount:     m.UnitCount,
		PaymentToken:  types.Address(m.PaymentToken),
		RatePerSecond: m.RatePerSecond,
		MaxDuration:   m.MaxDuration,
		Sticky:        m.Sticky,
	}
}

// ==================== Occupancy models ====================

type occupancyModel struct {
	grove.BaseModel `grove:"table:market_occupancies"`

	ListingID        uint64    `grove:"listing_id,pk"`
	ID               string    `grove:"id"`
	Occupant         string    `grove:"occupant"`
	StartTime        time.Time `grove:"start_time"`
	OccupantStake    int64     `grove:"occupant_stake"`
	Guarantor        string    `grove:"guarantor"`
	GuarantorStake   int64     `grove:"guarantor_stake"`
	GuarantorFeeRate int64     `grove:"guarantor_fee_rate"`
	CreatedAt        time.Time `grove:"created_at"`
	UpdatedAt        time.Time `grove:"updated_at"`
}

func toOccupancyModel(o *occupancy.Occupancy) *occupancyModel {
	return &occupancyModel{
		ListingID:        o.ListingID,
		ID:               o.ID.String(),
		Occupant:         string(o.Occupant),
		StartTime:        o.StartTime,
		OccupantStake:    o.OccupantStake,
		Guarantor:        string(o.Guarantor),
		GuarantorStake:   o.GuarantorStake,
		GuarantorFeeRate: o.GuarantorFeeRate,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}
}

func fromOccupancyModel(m *occupancyModel) (*occupancy.Occupancy, error) {
	occID, err := id.ParseOccupancyID(m.ID)
	if err != nil {
		return nil, err
	}
	return &occupancy.Occupancy{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:               occID,
		ListingID:        m.ListingID,
		Occupant:         types.Address(m.Occupant),
		StartTime:        m.StartTime,
		OccupantStake:    m.OccupantStake,
		Guarantor:        types.Address(m.Guarantor),
		GuarantorStake:   m.GuarantorStake,
		GuarantorFeeRate: m.GuarantorFeeRate,
	}, nil
}

// ==================== Fee and nonce models ====================

type feeModel struct {
	grove.BaseModel `grove:"table:market_fees"`

	Token   string `grove:"token,pk"`
	Balance int64  `grove:"balance"`
}

type nonceModel struct {
	grove.BaseModel `grove:"table:market_nonces"`

	Guarantor  string    `grove:"guarantor,pk"`
	Nonce      uint64    `grove:"nonce,pk"`
	ConsumedAt time.Time `grove:"consumed_at"`
}
