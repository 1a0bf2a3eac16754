// Package plugin provides an extensible plugin system for Market.
// Plugins can hook into various lifecycle events to extend functionality.
package plugin

import (
	"context"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the plugin is initialized.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, m interface{}) error
}

// OnShutdown is called when the plugin is shutting down.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Listing lifecycle hooks
// ──────────────────────────────────────────────────

// OnListingCreated is called when a new listing is created.
type OnListingCreated interface {
	Plugin
	OnListingCreated(ctx context.Context, listing interface{}) error
}

// OnListingCanceled is called when a listing is canceled by its owner.
type OnListingCanceled interface {
	Plugin
	OnListingCanceled(ctx context.Context, listingID uint64) error
}

// ──────────────────────────────────────────────────
// Occupancy lifecycle hooks
// ──────────────────────────────────────────────────

// OnOccupancyStarted is called when an occupancy begins.
type OnOccupancyStarted interface {
	Plugin
	OnOccupancyStarted(ctx context.Context, occ interface{}) error
}

// OnOccupancyReturned is called when an occupant returns the asset and
// the occupancy settles. wentSticky reports whether the asset parked
// in protocol custody instead of returning to the owner.
type OnOccupancyReturned interface {
	Plugin
	OnOccupancyReturned(ctx context.Context, occ interface{}, split interface{}, wentSticky bool) error
}

// OnOccupancyClaimed is called when an overtime occupancy's funds are
// recovered by claim.
type OnOccupancyClaimed interface {
	Plugin
	OnOccupancyClaimed(ctx context.Context, occ interface{}, split interface{}) error
}

// ──────────────────────────────────────────────────
// Fee hooks
// ──────────────────────────────────────────────────

// OnFeeAccrued is called when a settlement accrues protocol fees.
type OnFeeAccrued interface {
	Plugin
	OnFeeAccrued(ctx context.Context, token string, amount int64) error
}

// OnFeesWithdrawn is called when accrued fees are withdrawn.
type OnFeesWithdrawn interface {
	Plugin
	OnFeesWithdrawn(ctx context.Context, token string, recipient string, amount int64) error
}

// ──────────────────────────────────────────────────
// Settlement observers
// ──────────────────────────────────────────────────

// SettlementObserver receives every computed split before payouts are
// pushed, for reconciliation or pricing analytics.
type SettlementObserver interface {
	Plugin
	ObserveSettlement(ctx context.Context, listingID uint64, split interface{}) error
}
