// Package extension provides the Forge extension adapter for Market.
//
// It implements the forge.Extension interface to integrate Market
// into a Forge application with DI registration and lifecycle
// management.
//
// Configuration can be provided programmatically via Option functions
// or via YAML configuration files under "extensions.market" or "market" keys.
package extension

import (
	"context"
	"errors"

	"github.com/xraph/forge"
	"github.com/xraph/vessel"

	market "github.com/xraph/market"
	"github.com/xraph/market/consent"
	"github.com/xraph/market/custody"
	"github.com/xraph/market/payment"
	"github.com/xraph/market/store"
	"github.com/xraph/market/store/memory"
	"github.com/xraph/market/types"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "market"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Time-bounded asset custody and rental market engine"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts Market as a Forge extension.
type Extension struct {
	*forge.BaseExtension

	config     Config
	engine     *market.Market
	store      store.Store
	adapters   *custody.Registry
	payments   payment.Transferrer
	marketOpts []market.Option
}

// New creates a new Market Forge extension with the given options.
func New(opts ...Option) *Extension {
	e := &Extension{
		BaseExtension: forge.NewBaseExtension(ExtensionName, ExtensionVersion, ExtensionDescription),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Engine returns the underlying Market instance.
// This is nil until Register is called.
func (e *Extension) Engine() *market.Market { return e.engine }

// Register implements [forge.Extension]. It loads configuration,
// initializes the market engine, and registers it in the DI container.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.BaseExtension.Register(fapp); err != nil {
		return err
	}

	if err := e.loadConfiguration(); err != nil {
		return err
	}

	// Default to in-memory components when none were provided
	// programmatically.
	if e.store == nil {
		e.store = memory.New()
	}
	if e.adapters == nil {
		reg := custody.NewRegistry()
		reg.Register(custody.NewSingleUnitAdapter())
		reg.Register(custody.NewMultiUnitAdapter())
		e.adapters = reg
	}
	if e.payments == nil {
		e.payments = payment.NewBank(types.ZeroAddress)
	}

	opts := e.buildMarketOpts()

	e.engine = market.New(e.store, e.adapters, e.payments, opts...)

	return vessel.Provide(fapp.Container(), func() (*market.Market, error) {
		return e.engine, nil
	})
}

// Start implements [forge.Extension].
func (e *Extension) Start(ctx context.Context) error {
	if e.engine == nil {
		return errors.New("market: extension not initialized")
	}

	if !e.config.DisableMigrate {
		if err := e.engine.Start(ctx); err != nil {
			return err
		}
	}

	e.MarkStarted()
	return nil
}

// Stop implements [forge.Extension].
func (e *Extension) Stop(_ context.Context) error {
	if e.engine != nil {
		if err := e.engine.Stop(); err != nil {
			e.MarkStopped()
			return err
		}
	}
	e.MarkStopped()
	return nil
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.store == nil {
		return errors.New("market: store not initialized")
	}
	return e.store.Ping(ctx)
}

// buildMarketOpts constructs market.Option values from the resolved config.
func (e *Extension) buildMarketOpts() []market.Option {
	opts := make([]market.Option, 0, len(e.marketOpts)+4)

	if e.config.ProtocolFeeRate > 0 {
		opts = append(opts, market.WithProtocolFeeRate(e.config.ProtocolFeeRate))
	}
	if e.config.MinimalHold > 0 {
		opts = append(opts, market.WithMinimalHold(e.config.MinimalHold))
	}
	if e.config.SweepInterval > 0 {
		opts = append(opts, market.WithSweepInterval(e.config.SweepInterval))
	}
	if e.config.ConsentDomainName != "" {
		opts = append(opts, market.WithConsentDomain(consent.Domain{
			Name:     e.config.ConsentDomainName,
			Version:  e.config.ConsentDomainVersion,
			ChainID:  e.config.ConsentDomainChainID,
			Contract: e.config.ConsentDomainContract,
		}))
	}

	// Append any pass-through market options last so callers can
	// override config-derived values.
	opts = append(opts, e.marketOpts...)

	return opts
}

// --- Config Loading (mirrors grove/shield extension pattern) ---

// loadConfiguration loads config from YAML files or programmatic sources.
func (e *Extension) loadConfiguration() error {
	programmaticConfig := e.config

	// Try loading from config file.
	fileConfig, configLoaded := e.tryLoadFromConfigFile()

	if !configLoaded {
		if programmaticConfig.RequireConfig {
			return errors.New("market: configuration is required but not found in config files; " +
				"ensure 'extensions.market' or 'market' key exists in your config")
		}

		// Use programmatic config merged with defaults.
		e.config = e.mergeWithDefaults(programmaticConfig)
	} else {
		// Config loaded from YAML -- merge with programmatic options.
		e.config = e.mergeConfigurations(fileConfig, programmaticConfig)
	}

	e.Logger().Debug("market: configuration loaded",
		forge.F("disable_migrate", e.config.DisableMigrate),
		forge.F("protocol_fee_rate", e.config.ProtocolFeeRate),
		forge.F("minimal_hold", e.config.MinimalHold),
		forge.F("sweep_interval", e.config.SweepInterval),
		forge.F("consent_domain", e.config.ConsentDomainName),
	)

	return nil
}

// tryLoadFromConfigFile attempts to load config from YAML files.
func (e *Extension) tryLoadFromConfigFile() (Config, bool) {
	cm := e.App().Config()
	var cfg Config

	// Try "extensions.market" first (namespaced pattern).
	if cm.IsSet("extensions.market") {
		if err := cm.Bind("extensions.market", &cfg); err == nil {
			e.Logger().Debug("market: loaded config from file",
				forge.F("key", "extensions.market"),
			)
			return cfg, true
		}
		e.Logger().Warn("market: failed to bind extensions.market config",
			forge.F("error", "bind failed"),
		)
	}

	// Try legacy "market" key.
	if cm.IsSet("market") {
		if err := cm.Bind("market", &cfg); err == nil {
			e.Logger().Debug("market: loaded config from file",
				forge.F("key", "market"),
			)
			return cfg, true
		}
		e.Logger().Warn("market: failed to bind market config",
			forge.F("error", "bind failed"),
		)
	}

	return Config{}, false
}

// mergeWithDefaults fills zero-valued fields with defaults.
func (e *Extension) mergeWithDefaults(cfg Config) Config {
	defaults := DefaultConfig()
	if cfg.ProtocolFeeRate == 0 {
		cfg.ProtocolFeeRate = defaults.ProtocolFeeRate
	}
	if cfg.MinimalHold == 0 {
		cfg.MinimalHold = defaults.MinimalHold
	}
	if cfg.SweepInterval == 0 {
		cfg.SweepInterval = defaults.SweepInterval
	}
	if cfg.ConsentDomainName == "" {
		cfg.ConsentDomainName = defaults.ConsentDomainName
	}
	if cfg.ConsentDomainVersion == "" {
		cfg.ConsentDomainVersion = defaults.ConsentDomainVersion
	}
	return cfg
}

// mergeConfigurations merges YAML config with programmatic options.
// YAML config takes precedence for most fields; programmatic bool flags fill gaps.
func (e *Extension) mergeConfigurations(yamlConfig, programmaticConfig Config) Config {
	// Programmatic bool flags override when true.
	if programmaticConfig.DisableMigrate {
		yamlConfig.DisableMigrate = true
	}

	// String fields: YAML takes precedence.
	if yamlConfig.ConsentDomainName == "" && programmaticConfig.ConsentDomainName != "" {
		yamlConfig.ConsentDomainName = programmaticConfig.ConsentDomainName
	}
	if yamlConfig.ConsentDomainVersion == "" && programmaticConfig.ConsentDomainVersion != "" {
		yamlConfig.ConsentDomainVersion = programmaticConfig.ConsentDomainVersion
	}
	if yamlConfig.ConsentDomainContract == "" && programmaticConfig.ConsentDomainContract != "" {
		yamlConfig.ConsentDomainContract = programmaticConfig.ConsentDomainContract
	}

	// Numeric fields: YAML takes precedence, programmatic fills gaps.
	if yamlConfig.ProtocolFeeRate == 0 && programmaticConfig.ProtocolFeeRate != 0 {
		yamlConfig.ProtocolFeeRate = programmaticConfig.ProtocolFeeRate
	}
	if yamlConfig.MinimalHold == 0 && programmaticConfig.MinimalHold != 0 {
		yamlConfig.MinimalHold = programmaticConfig.MinimalHold
	}
	if yamlConfig.SweepInterval == 0 && programmaticConfig.SweepInterval != 0 {
		yamlConfig.SweepInterval = programmaticConfig.SweepInterval
	}
	if yamlConfig.ConsentDomainChainID == 0 && programmaticConfig.ConsentDomainChainID != 0 {
		yamlConfig.ConsentDomainChainID = programmaticConfig.ConsentDomainChainID
	}

	// Fill remaining zeros with defaults.
	return e.mergeWithDefaults(yamlConfig)
}
