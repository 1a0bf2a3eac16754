// Package market provides a time-bounded asset rental engine for Go applications.
//
// Market is designed as a library, not a service. Import it directly into your
// Go application for maximum performance and flexibility. It provides:
//
//   - Listings of single-unit and multi-unit assets at per-second rates
//   - Occupancies with enforced minimal hold and maximum duration
//   - Guarantor co-funding via signed, nonce-bound consent
//   - Prorated settlement with integer-exact payout splits
//   - Pluggable custody adapters per asset standard
//   - Pluggable storage (memory, SQLite, Postgres, MongoDB via Grove)
//
// # Quick Start
//
// Create a market instance with your preferred store and custody adapters:
//
//	import (
//	    "github.com/xraph/market"
//	    "github.com/xraph/market/custody"
//	    "github.com/xraph/market/payment"
//	    "github.com/xraph/market/store/memory"
//	)
//
//	adapters := custody.NewRegistry()
//	adapters.Register(custody.NewSingleUnitAdapter())
//	adapters.Register(custody.NewMultiUnitAdapter())
//
//	bank := payment.NewBank(treasury)
//
//	m := market.New(memory.New(), adapters, bank,
//	    market.WithProtocolAddress(treasury),
//	)
//
//	// Start the market (runs migrations, begins background workers)
//	if err := m.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer m.Stop()
//
// # Core Concepts
//
// Listings offer an asset for occupation under fixed terms:
//
//	id, err := m.List(ctx, &listing.Listing{
//	    Owner:         owner,
//	    Standard:      custody.StandardSingleUnit,
//	    AssetContract: contract,
//	    AssetUnitID:   42,
//	    UnitCount:     1,
//	    PaymentToken:  token,
//	    RatePerSecond: 3,
//	    MaxDuration:   7 * 86400,
//	})
//
// Occupancies take custody of the asset against an upfront payment of
// the full maximum price:
//
//	occ, err := m.Occupy(ctx, id, occupant)
//
// A guarantor can co-fund the upfront payment. The guarantor signs the
// exact terms together with a single-use nonce, and the occupant covers
// the remainder:
//
//	occ, err := m.OccupyWithGuarantor(ctx, id, occupant, terms)
//
// Returning the asset settles the occupancy pro rata: the owner is paid
// for the elapsed time, the protocol takes its fee, the guarantor
// recovers its stake plus the agreed bonus, and the occupant receives
// whatever remains:
//
//	receipt, err := m.Return(ctx, id, occupant)
//
// If the occupant holds past the maximum duration, the owner claims the
// full price instead:
//
//	receipt, err := m.Claim(ctx, id, owner)
//
// # Settlement Arithmetic
//
// All monetary calculations use integer arithmetic to avoid
// floating-point precision issues. Amounts are denominated in the
// smallest unit of the payment token, and every split conserves the
// total: owner payout + protocol fee + guarantor payout + occupant
// refund always equals the amount pulled upfront.
//
// # Integration
//
// Market integrates with the Forgery ecosystem:
//
//   - Forge: lifecycle and configuration via the extension package
//   - Grove: SQL and document storage backends
//   - Vessel: DI registration of the engine
//
// # TypeID
//
// Occupancies, settlements, and events use TypeID for globally unique,
// type-safe identifiers:
//
//	occ_01h2xcejqtf2nbrexx3vqjhp41  // Occupancy ID
//	stl_01h455vb4pex5vsknk084sn02q  // Settlement ID
//
// TypeIDs are K-sortable, making them ideal for database indexes and
// providing natural time-ordering of entities.
package market
