package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"
)

// Registry manages all registered plugins and provides efficient dispatch.
// It uses type-cached discovery for O(1) dispatch performance.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  *slog.Logger

	// Type-cached plugin lists for efficient dispatch
	onInit              []OnInit
	onShutdown          []OnShutdown
	onListingCreated    []OnListingCreated
	onListingCanceled   []OnListingCanceled
	onOccupancyStarted  []OnOccupancyStarted
	onOccupancyReturned []OnOccupancyReturned
	onOccupancyClaimed  []OnOccupancyClaimed
	onFeeAccrued        []OnFeeAccrued
	onFeesWithdrawn     []OnFeesWithdrawn
	settlementObservers []SettlementObserver
}

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		logger: slog.Default(),
	}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// Register adds a plugin to the registry and caches its interfaces.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Check for duplicate
	for _, existing := range r.plugins {
		if existing.Name() == p.Name() {
			return fmt.Errorf("plugin: duplicate registration: %s", p.Name())
		}
	}

	r.plugins = append(r.plugins, p)

	// Type-switch to cache interfaces
	if v, ok := p.(OnInit); ok {
		r.onInit = append(r.onInit, v)
	}
	if v, ok := p.(OnShutdown); ok {
		r.onShutdown = append(r.onShutdown, v)
	}
	if v, ok := p.(OnListingCreated); ok {
		r.onListingCreated = append(r.onListingCreated, v)
	}
	if v, ok := p.(OnListingCanceled); ok {
		r.onListingCanceled = append(r.onListingCanceled, v)
	}
	if v, ok := p.(OnOccupancyStarted); ok {
		r.onOccupancyStarted = append(r.onOccupancyStarted, v)
	}
	if v, ok := p.(OnOccupancyReturned); ok {
		r.onOccupancyReturned = append(r.onOccupancyReturned, v)
	}
	if v, ok := p.(OnOccupancyClaimed); ok {
		r.onOccupancyClaimed = append(r.onOccupancyClaimed, v)
	}
	if v, ok := p.(OnFeeAccrued); ok {
		r.onFeeAccrued = append(r.onFeeAccrued, v)
	}
	if v, ok := p.(OnFeesWithdrawn); ok {
		r.onFeesWithdrawn = append(r.onFeesWithdrawn, v)
	}
	if v, ok := p.(SettlementObserver); ok {
		r.settlementObservers = append(r.settlementObservers, v)
	}

	r.logger.Info("plugin registered",
		"name", p.Name(),
		"interfaces", r.getImplementedInterfaces(p),
	)

	return nil
}

// getImplementedInterfaces returns a list of interfaces implemented by the plugin.
func (r *Registry) getImplementedInterfaces(p Plugin) []string {
	var interfaces []string
	v := reflect.TypeOf(p)

	// Check each interface
	checkInterface := func(iface reflect.Type, name string) {
		if v.Implements(iface) {
			interfaces = append(interfaces, name)
		}
	}

	// List all interfaces to check
	checkInterface(reflect.TypeOf((*OnInit)(nil)).Elem(), "OnInit")
	checkInterface(reflect.TypeOf((*OnShutdown)(nil)).Elem(), "OnShutdown")
	checkInterface(reflect.TypeOf((*OnListingCreated)(nil)).Elem(), "OnListingCreated")
	checkInterface(reflect.TypeOf((*OnListingCanceled)(nil)).Elem(), "OnListingCanceled")
	checkInterface(reflect.TypeOf((*OnOccupancyStarted)(nil)).Elem(), "OnOccupancyStarted")
	checkInterface(reflect.TypeOf((*OnOccupancyReturned)(nil)).Elem(), "OnOccupancyReturned")
	checkInterface(reflect.TypeOf((*OnOccupancyClaimed)(nil)).Elem(), "OnOccupancyClaimed")
	checkInterface(reflect.TypeOf((*OnFeeAccrued)(nil)).Elem(), "OnFeeAccrued")
	checkInterface(reflect.TypeOf((*OnFeesWithdrawn)(nil)).Elem(), "OnFeesWithdrawn")
	checkInterface(reflect.TypeOf((*SettlementObserver)(nil)).Elem(), "SettlementObserver")

	return interfaces
}

// Get returns a plugin by name.
func (r *Registry) Get(name string) Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.plugins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// List returns all registered plugins.
func (r *Registry) List() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Plugin, len(r.plugins))
	copy(result, r.plugins)
	return result
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// ──────────────────────────────────────────────────
// Event emission methods
// ──────────────────────────────────────────────────

// EmitInit calls OnInit for all plugins that implement it.
func (r *Registry) EmitInit(ctx context.Context, m interface{}) {
	r.mu.RLock()
	plugins := r.onInit
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnInit(ctx, m)
		}); err != nil {
			r.logger.Warn("plugin OnInit failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitShutdown calls OnShutdown for all plugins that implement it.
func (r *Registry) EmitShutdown(ctx context.Context) {
	r.mu.RLock()
	plugins := r.onShutdown
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnShutdown(ctx)
		}); err != nil {
			r.logger.Warn("plugin OnShutdown failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitListingCreated emits a listing created event.
func (r *Registry) EmitListingCreated(ctx context.Context, listing interface{}) {
	r.mu.RLock()
	plugins := r.onListingCreated
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnListingCreated(ctx, listing)
		}); err != nil {
			r.logger.Warn("plugin OnListingCreated failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitListingCanceled emits a listing canceled event.
func (r *Registry) EmitListingCanceled(ctx context.Context, listingID uint64) {
	r.mu.RLock()
	plugins := r.onListingCanceled
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnListingCanceled(ctx, listingID)
		}); err != nil {
			r.logger.Warn("plugin OnListingCanceled failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitOccupancyStarted emits an occupancy started event.
func (r *Registry) EmitOccupancyStarted(ctx context.Context, occ interface{}) {
	r.mu.RLock()
	plugins := r.onOccupancyStarted
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnOccupancyStarted(ctx, occ)
		}); err != nil {
			r.logger.Warn("plugin OnOccupancyStarted failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitOccupancyReturned emits an occupancy returned event.
func (r *Registry) EmitOccupancyReturned(ctx context.Context, occ interface{}, split interface{}, wentSticky bool) {
	r.mu.RLock()
	plugins := r.onOccupancyReturned
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnOccupancyReturned(ctx, occ, split, wentSticky)
		}); err != nil {
			r.logger.Warn("plugin OnOccupancyReturned failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitOccupancyClaimed emits an occupancy claimed event.
func (r *Registry) EmitOccupancyClaimed(ctx context.Context, occ interface{}, split interface{}) {
	r.mu.RLock()
	plugins := r.onOccupancyClaimed
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnOccupancyClaimed(ctx, occ, split)
		}); err != nil {
			r.logger.Warn("plugin OnOccupancyClaimed failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitFeeAccrued emits a fee accrued event.
func (r *Registry) EmitFeeAccrued(ctx context.Context, token string, amount int64) {
	r.mu.RLock()
	plugins := r.onFeeAccrued
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnFeeAccrued(ctx, token, amount)
		}); err != nil {
			r.logger.Warn("plugin OnFeeAccrued failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitFeesWithdrawn emits a fees withdrawn event.
func (r *Registry) EmitFeesWithdrawn(ctx context.Context, token, recipient string, amount int64) {
	r.mu.RLock()
	plugins := r.onFeesWithdrawn
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnFeesWithdrawn(ctx, token, recipient, amount)
		}); err != nil {
			r.logger.Warn("plugin OnFeesWithdrawn failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitSettlement notifies all settlement observers.
func (r *Registry) EmitSettlement(ctx context.Context, listingID uint64, split interface{}) {
	r.mu.RLock()
	plugins := r.settlementObservers
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.ObserveSettlement(ctx, listingID, split)
		}); err != nil {
			r.logger.Warn("plugin ObserveSettlement failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// callWithTimeout calls a plugin function with a timeout.
// Plugins should never block a settlement.
func (r *Registry) callWithTimeout(ctx context.Context, pluginName string, fn func() error) error {
	done := make(chan error, 1)

	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		return fmt.Errorf("plugin timeout: %s", pluginName)
	case <-ctx.Done():
		return ctx.Err()
	}
}
