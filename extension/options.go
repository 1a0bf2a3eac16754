package extension

import (
	"time"

	market "github.com/xraph/market"
	"github.com/xraph/market/custody"
	"github.com/xraph/market/payment"
	"github.com/xraph/market/plugin"
	"github.com/xraph/market/store"
)

// Option configures the Market Forge extension.
type Option func(*Extension)

// WithStore sets the store for the market engine.
func WithStore(s store.Store) Option {
	return func(e *Extension) {
		e.store = s
	}
}

// WithAdapters sets the custody adapter registry the engine resolves
// asset operations through.
func WithAdapters(r *custody.Registry) Option {
	return func(e *Extension) {
		e.adapters = r
	}
}

// WithPayments sets the fungible token transferrer.
func WithPayments(t payment.Transferrer) Option {
	return func(e *Extension) {
		e.payments = t
	}
}

// WithMarketOption passes a market.Option through to the underlying engine.
func WithMarketOption(opt market.Option) Option {
	return func(e *Extension) {
		e.marketOpts = append(e.marketOpts, opt)
	}
}

// WithPlugin registers a market plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Extension) {
		e.marketOpts = append(e.marketOpts, market.WithPlugin(p))
	}
}

// WithConfig sets the Forge extension configuration.
func WithConfig(cfg Config) Option {
	return func(e *Extension) { e.config = cfg }
}

// WithDisableMigrate prevents auto-migration on start.
func WithDisableMigrate() Option {
	return func(e *Extension) { e.config.DisableMigrate = true }
}

// WithRequireConfig requires config to be present in YAML files.
// If true and no config is found, Register returns an error.
func WithRequireConfig(require bool) Option {
	return func(e *Extension) { e.config.RequireConfig = require }
}

// WithProtocolFeeRate sets the stored protocol fee rate.
func WithProtocolFeeRate(rate int64) Option {
	return func(e *Extension) { e.config.ProtocolFeeRate = rate }
}

// WithMinimalHold sets the shortest accepted occupancy in seconds.
func WithMinimalHold(seconds int64) Option {
	return func(e *Extension) { e.config.MinimalHold = seconds }
}

// WithSweepInterval sets how often the overtime monitor runs.
func WithSweepInterval(d time.Duration) Option {
	return func(e *Extension) { e.config.SweepInterval = d }
}
