// Package observability provides a metrics extension for Market that
// records lifecycle event counts via a MetricFactory.
package observability

import (
	"context"

	"github.com/xraph/market/plugin"
	"github.com/xraph/market/settlement"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin              = (*MetricsExtension)(nil)
	_ plugin.OnInit              = (*MetricsExtension)(nil)
	_ plugin.OnListingCreated    = (*MetricsExtension)(nil)
	_ plugin.OnListingCanceled   = (*MetricsExtension)(nil)
	_ plugin.OnOccupancyStarted  = (*MetricsExtension)(nil)
	_ plugin.OnOccupancyReturned = (*MetricsExtension)(nil)
	_ plugin.OnOccupancyClaimed  = (*MetricsExtension)(nil)
	_ plugin.OnFeeAccrued        = (*MetricsExtension)(nil)
	_ plugin.OnFeesWithdrawn     = (*MetricsExtension)(nil)
	_ plugin.SettlementObserver  = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// MetricsExtension records system-wide lifecycle metrics.
// Register it as a Market plugin to automatically track custody and
// settlement metrics.
type MetricsExtension struct {
	factory MetricFactory

	// Listing metrics
	ListingCreated  Counter
	ListingCanceled Counter

	// Occupancy metrics
	OccupancyStarted  Counter
	OccupancyReturned Counter
	StickyReturns     Counter
	OccupancyClaimed  Counter

	// Settlement metrics
	OwnerPayout     Histogram
	OccupantPayout  Histogram
	GuarantorPayout Histogram

	// Fee metrics
	FeesAccrued   Counter
	FeesWithdrawn Counter

	// Error metrics
	StoreErrors  Counter
	PluginErrors Counter
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
// Use app.Metrics() in forge extensions.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		// Listing metrics
		ListingCreated:  factory.Counter("market.listing.created"),
		ListingCanceled: factory.Counter("market.listing.canceled"),

		// Occupancy metrics
		OccupancyStarted:  factory.Counter("market.occupancy.started"),
		OccupancyReturned: factory.Counter("market.occupancy.returned"),
		StickyReturns:     factory.Counter("market.occupancy.sticky_returns"),
		OccupancyClaimed:  factory.Counter("market.occupancy.claimed"),

		// Settlement metrics
		OwnerPayout:     factory.Histogram("market.settlement.owner_payout"),
		OccupantPayout:  factory.Histogram("market.settlement.occupant_payout"),
		GuarantorPayout: factory.Histogram("market.settlement.guarantor_payout"),

		// Fee metrics
		FeesAccrued:   factory.Counter("market.fee.accrued"),
		FeesWithdrawn: factory.Counter("market.fee.withdrawn"),

		// Error metrics
		StoreErrors:  factory.Counter("market.store.errors"),
		PluginErrors: factory.Counter("market.plugin.errors"),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnInit implements plugin.OnInit.
func (m *MetricsExtension) OnInit(_ context.Context, _ interface{}) error {
	// No initialization needed
	return nil
}

// ──────────────────────────────────────────────────
// Listing lifecycle hooks
// ──────────────────────────────────────────────────

// OnListingCreated implements plugin.OnListingCreated.
func (m *MetricsExtension) OnListingCreated(_ context.Context, _ interface{}) error {
	m.ListingCreated.Inc()
	return nil
}

// OnListingCanceled implements plugin.OnListingCanceled.
func (m *MetricsExtension) OnListingCanceled(_ context.Context, _ uint64) error {
	m.ListingCanceled.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Occupancy lifecycle hooks
// ──────────────────────────────────────────────────

// OnOccupancyStarted implements plugin.OnOccupancyStarted.
func (m *MetricsExtension) OnOccupancyStarted(_ context.Context, _ interface{}) error {
	m.OccupancyStarted.Inc()
	return nil
}

// OnOccupancyReturned implements plugin.OnOccupancyReturned.
func (m *MetricsExtension) OnOccupancyReturned(_ context.Context, _, _ interface{}, wentSticky bool) error {
	m.OccupancyReturned.Inc()
	if wentSticky {
		m.StickyReturns.Inc()
	}
	return nil
}

// OnOccupancyClaimed implements plugin.OnOccupancyClaimed.
func (m *MetricsExtension) OnOccupancyClaimed(_ context.Context, _, _ interface{}) error {
	m.OccupancyClaimed.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Settlement observers
// ──────────────────────────────────────────────────

// ObserveSettlement implements plugin.SettlementObserver.
func (m *MetricsExtension) ObserveSettlement(_ context.Context, _ uint64, split interface{}) error {
	s, ok := split.(settlement.Split)
	if !ok {
		return nil
	}
	m.OwnerPayout.Observe(float64(s.OwnerPayout))
	m.OccupantPayout.Observe(float64(s.OccupantPayout))
	m.GuarantorPayout.Observe(float64(s.GuarantorPayout))
	return nil
}

// ──────────────────────────────────────────────────
// Fee hooks
// ──────────────────────────────────────────────────

// OnFeeAccrued implements plugin.OnFeeAccrued.
func (m *MetricsExtension) OnFeeAccrued(_ context.Context, _ string, amount int64) error {
	m.FeesAccrued.Add(float64(amount))
	return nil
}

// OnFeesWithdrawn implements plugin.OnFeesWithdrawn.
func (m *MetricsExtension) OnFeesWithdrawn(_ context.Context, _, _ string, amount int64) error {
	m.FeesWithdrawn.Add(float64(amount))
	return nil
}
