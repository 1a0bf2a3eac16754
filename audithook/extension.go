// Package audithook bridges Market lifecycle events to an audit trail
// backend.
//
// It defines a local Recorder interface so the package does not depend
// on any particular audit system. Callers inject a RecorderFunc adapter
// that bridges to their backend at wiring time.
package audithook

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xraph/market/plugin"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin              = (*Extension)(nil)
	_ plugin.OnListingCreated    = (*Extension)(nil)
	_ plugin.OnListingCanceled   = (*Extension)(nil)
	_ plugin.OnOccupancyStarted  = (*Extension)(nil)
	_ plugin.OnOccupancyReturned = (*Extension)(nil)
	_ plugin.OnOccupancyClaimed  = (*Extension)(nil)
	_ plugin.OnFeeAccrued        = (*Extension)(nil)
	_ plugin.OnFeesWithdrawn     = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement. It is
// defined locally so that callers inject their concrete backend at
// wiring time.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is a local representation of an audit event.
type AuditEvent struct {
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	Category   string         `json:"category"`
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Extension bridges Market lifecycle events to an audit trail backend.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements plugin.Plugin.
func (e *Extension) Name() string { return "audit-hook" }

// ──────────────────────────────────────────────────
// Listing lifecycle hooks
// ──────────────────────────────────────────────────

// OnListingCreated implements plugin.OnListingCreated.
func (e *Extension) OnListingCreated(ctx context.Context, _ interface{}) error {
	return e.record(ctx, ActionListingCreated, SeverityInfo, OutcomeSuccess,
		ResourceListing, "", CategoryCustody, nil,
		"event", "listing_created",
	)
}

// OnListingCanceled implements plugin.OnListingCanceled.
func (e *Extension) OnListingCanceled(ctx context.Context, listingID uint64) error {
	return e.record(ctx, ActionListingCanceled, SeverityInfo, OutcomeSuccess,
		ResourceListing, fmt.Sprintf("%d", listingID), CategoryCustody, nil,
		"listing_id", listingID,
	)
}

// ──────────────────────────────────────────────────
// Occupancy lifecycle hooks
// ──────────────────────────────────────────────────

// OnOccupancyStarted implements plugin.OnOccupancyStarted.
func (e *Extension) OnOccupancyStarted(ctx context.Context, _ interface{}) error {
	return e.record(ctx, ActionOccupancyStarted, SeverityInfo, OutcomeSuccess,
		ResourceOccupancy, "", CategoryCustody, nil,
		"event", "occupancy_started",
	)
}

// OnOccupancyReturned implements plugin.OnOccupancyReturned.
func (e *Extension) OnOccupancyReturned(ctx context.Context, _, _ interface{}, wentSticky bool) error {
	return e.record(ctx, ActionOccupancyReturned, SeverityInfo, OutcomeSuccess,
		ResourceOccupancy, "", CategorySettlement, nil,
		"event", "occupancy_returned",
		"went_sticky", wentSticky,
	)
}

// OnOccupancyClaimed implements plugin.OnOccupancyClaimed.
// Claims mean an occupant overran the cap, so they audit as warnings.
func (e *Extension) OnOccupancyClaimed(ctx context.Context, _, _ interface{}) error {
	return e.record(ctx, ActionOccupancyClaimed, SeverityWarning, OutcomePartial,
		ResourceOccupancy, "", CategorySettlement, nil,
		"event", "occupancy_claimed",
	)
}

// ──────────────────────────────────────────────────
// Fee hooks
// ──────────────────────────────────────────────────

// OnFeeAccrued implements plugin.OnFeeAccrued.
func (e *Extension) OnFeeAccrued(ctx context.Context, token string, amount int64) error {
	return e.record(ctx, ActionFeeAccrued, SeverityInfo, OutcomeSuccess,
		ResourceFee, token, CategoryTreasury, nil,
		"token", token,
		"amount", amount,
	)
}

// OnFeesWithdrawn implements plugin.OnFeesWithdrawn.
func (e *Extension) OnFeesWithdrawn(ctx context.Context, token, recipient string, amount int64) error {
	return e.record(ctx, ActionFeesWithdrawn, SeverityInfo, OutcomeSuccess,
		ResourceFee, token, CategoryTreasury, nil,
		"token", token,
		"recipient", recipient,
		"amount", amount,
	)
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

// record builds and sends an audit event if the action is enabled.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category string,
	err error,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &AuditEvent{
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audithook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}
