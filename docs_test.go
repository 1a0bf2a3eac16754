package market_test

import (
	"context"
	"log"
	"log/slog"
	"testing"
	"time"

	"github.com/xraph/market"
	"github.com/xraph/market/custody"
	"github.com/xraph/market/listing"
	"github.com/xraph/market/payment"
	"github.com/xraph/market/store/memory"
	"github.com/xraph/market/types"
)

// TestDocumentationExamples verifies that all examples in the documentation compile
func TestDocumentationExamples(t *testing.T) {
	// Test Quick Start example from README
	t.Run("QuickStartExample", func(t *testing.T) {
		treasury := addr(0x10)
		alice := addr(0x11)
		bob := addr(0x12)
		nftContract := addr(0x13)
		usdc := addr(0x14)

		// Create store (memory for demo, use PostgreSQL in production)
		store := memory.New()

		// Custody adapters per asset standard
		single := custody.NewSingleUnitAdapter()
		adapters := custody.NewRegistry()
		adapters.Register(single)
		adapters.Register(custody.NewMultiUnitAdapter())

		// Mint the asset and fund the occupant
		single.Mint(nftContract, 42, alice)
		single.SetApproval(alice, treasury, true)
		single.SetApproval(bob, treasury, true)

		bank := payment.NewBank(treasury)
		bank.Mint(usdc, bob, 10_000_000)
		bank.Approve(usdc, bob, 10_000_000)

		// Current time, mutable so the demo can move through the hold
		now := time.Unix(1_700_000_000, 0)

		// Initialize Market
		m := market.New(store, adapters, bank,
			market.WithLogger(slog.Default()),
			market.WithProtocolAddress(treasury),
			market.WithProtocolFeeRate(20), // 5%
			market.WithClock(func() time.Time { return now }),
		)

		// Start the engine
		ctx := context.Background()
		if err := m.Start(ctx); err != nil {
			t.Fatal(err)
		}
		defer m.Stop()

		// List the asset at 3 units per second for up to a week
		id, err := m.List(ctx, &listing.Listing{
			Owner:         alice,
			Standard:      custody.StandardSingleUnit,
			AssetContract: nftContract,
			AssetUnitID:   42,
			UnitCount:     1,
			PaymentToken:  usdc,
			RatePerSecond: 3,
			MaxDuration:   7 * 86400,
		})
		if err != nil {
			t.Fatal(err)
		}

		// Bob takes the listing, funding the full maximum price upfront
		occ, err := m.Occupy(ctx, bob, id)
		if err != nil {
			t.Fatal(err)
		}
		log.Printf("Occupancy started: %s\n", occ.ID)

		// Two days later Bob returns the asset and settles pro rata
		now = now.Add(2 * 86400 * time.Second)
		receipt, err := m.Return(ctx, bob, id)
		if err != nil {
			t.Fatal(err)
		}

		log.Printf("Settled: owner %d, occupant refund %d, fee %d\n",
			receipt.Split.OwnerPayout,
			receipt.Split.OccupantPayout,
			receipt.Split.ProtocolFee)
	})

	// Test Amount type examples
	t.Run("AmountExamples", func(t *testing.T) {
		usdc := addr(0x14)

		// Constructors
		a := types.NewAmount(usdc, 4900)
		z := types.ZeroAmount(usdc)

		// Arithmetic
		_ = a.Add(types.NewAmount(usdc, 100))
		_ = a.Multiply(3)
		_ = a.Divide(2)

		// Comparison
		if z.LessThan(a) {
			// zero is less than any positive amount
		}

		// Aggregation
		_ = types.SumAmounts(a, z)
	})
}
