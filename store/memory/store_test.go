package memory

import (
	"context"
	"errors"
	"testing"

	market "github.com/xraph/market"
	"github.com/xraph/market/id"
	"github.com/xraph/market/listing"
	"github.com/xraph/market/occupancy"
	"github.com/xraph/market/types"
)

func TestListingIDsAreDense(t *testing.T) {
	ctx := context.Background()
	s := New()

	for want := uint64(0); want < 3; want++ {
		got, err := s.NextListingID(ctx)
		if err != nil {
			t.Fatalf("NextListingID error = %v", err)
		}
		if got != want {
			t.Errorf("NextListingID = %d, want %d", got, want)
		}
		l := &listing.Listing{ID: got, Owner: "0000000000000000000000000000000000000001"}
		if err := s.CreateListing(ctx, l); err != nil {
			t.Fatalf("CreateListing error = %v", err)
		}
	}

	// Deleting never frees an id.
	if err := s.DeleteListing(ctx, 1); err != nil {
		t.Fatalf("DeleteListing error = %v", err)
	}
	got, err := s.NextListingID(ctx)
	if err != nil {
		t.Fatalf("NextListingID error = %v", err)
	}
	if got != 3 {
		t.Errorf("NextListingID after delete = %d, want 3", got)
	}

	count, err := s.CountListings(ctx)
	if err != nil {
		t.Fatalf("CountListings error = %v", err)
	}
	if count != 2 {
		t.Errorf("CountListings = %d, want 2", count)
	}
}

func TestListListingsPaging(t *testing.T) {
	ctx := context.Background()
	s := New()

	for i := 0; i < 3; i++ {
		id, err := s.NextListingID(ctx)
		if err != nil {
			t.Fatalf("NextListingID error = %v", err)
		}
		l := &listing.Listing{ID: id, Owner: "0000000000000000000000000000000000000001"}
		if err := s.CreateListing(ctx, l); err != nil {
			t.Fatalf("CreateListing error = %v", err)
		}
	}

	tests := []struct {
		name   string
		opts   listing.ListOpts
		want   int
		wantID uint64
	}{
		{"all", listing.ListOpts{}, 3, 0},
		{"offset", listing.ListOpts{Offset: 1}, 2, 1},
		{"limit", listing.ListOpts{Limit: 2}, 2, 0},
		{"negative offset clamps to zero", listing.ListOpts{Offset: -5}, 3, 0},
		{"offset past end", listing.ListOpts{Offset: 10}, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ListListings(ctx, tt.opts)
			if err != nil {
				t.Fatalf("ListListings error = %v", err)
			}
			if len(got) != tt.want {
				t.Fatalf("ListListings returned %d listings, want %d", len(got), tt.want)
			}
			if tt.want > 0 && got[0].ID != tt.wantID {
				t.Errorf("first listing id = %d, want %d", got[0].ID, tt.wantID)
			}
		})
	}
}

func TestOccupancyExclusivity(t *testing.T) {
	ctx := context.Background()
	s := New()

	first := &occupancy.Occupancy{ID: id.NewOccupancyID(), ListingID: 0, Occupant: "0000000000000000000000000000000000000001"}
	if err := s.CreateOccupancy(ctx, first); err != nil {
		t.Fatalf("CreateOccupancy error = %v", err)
	}

	second := &occupancy.Occupancy{ID: id.NewOccupancyID(), ListingID: 0, Occupant: "0000000000000000000000000000000000000002"}
	if err := s.CreateOccupancy(ctx, second); !errors.Is(err, market.ErrAlreadyOccupied) {
		t.Fatalf("CreateOccupancy second error = %v, want ErrAlreadyOccupied", err)
	}

	if err := s.DeleteOccupancy(ctx, 0); err != nil {
		t.Fatalf("DeleteOccupancy error = %v", err)
	}
	if err := s.CreateOccupancy(ctx, second); err != nil {
		t.Errorf("CreateOccupancy after delete error = %v", err)
	}
}

func TestNonceConsumption(t *testing.T) {
	ctx := context.Background()
	s := New()
	guarantor := types.Address("0000000000000000000000000000000000000003")

	used, err := s.NonceUsed(ctx, guarantor, 1)
	if err != nil || used {
		t.Fatalf("NonceUsed = %v, %v, want false, nil", used, err)
	}

	if err := s.ConsumeNonce(ctx, guarantor, 1); err != nil {
		t.Fatalf("ConsumeNonce error = %v", err)
	}
	if err := s.ConsumeNonce(ctx, guarantor, 1); !errors.Is(err, market.ErrNonceReused) {
		t.Fatalf("ConsumeNonce replay error = %v, want ErrNonceReused", err)
	}

	// Same nonce under a different guarantor is independent.
	other := types.Address("0000000000000000000000000000000000000004")
	if err := s.ConsumeNonce(ctx, other, 1); err != nil {
		t.Errorf("ConsumeNonce other guarantor error = %v", err)
	}
}

func TestFeeAccrual(t *testing.T) {
	ctx := context.Background()
	s := New()
	token := types.Address("00000000000000000000000000000000000000e0")

	if err := s.AccrueFee(ctx, token, 4320); err != nil {
		t.Fatalf("AccrueFee error = %v", err)
	}
	if err := s.AccrueFee(ctx, token, 680); err != nil {
		t.Fatalf("AccrueFee error = %v", err)
	}

	balance, err := s.FeeBalance(ctx, token)
	if err != nil {
		t.Fatalf("FeeBalance error = %v", err)
	}
	if balance != 5000 {
		t.Errorf("FeeBalance = %d, want 5000", balance)
	}

	drained, err := s.ResetFees(ctx, token)
	if err != nil {
		t.Fatalf("ResetFees error = %v", err)
	}
	if drained != 5000 {
		t.Errorf("ResetFees = %d, want 5000", drained)
	}
	if balance, _ := s.FeeBalance(ctx, token); balance != 0 {
		t.Errorf("FeeBalance after reset = %d, want 0", balance)
	}
}
