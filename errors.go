package market

import (
	"errors"
	"fmt"

	"github.com/xraph/market/consent"
	"github.com/xraph/market/custody"
	"github.com/xraph/market/listing"
	"github.com/xraph/market/payment"
)

// Sentinel errors for common failure scenarios. Every failure is
// per-call: the engine rejects before mutating state (validation,
// timing, authorization) or rolls the whole transition back (external
// boundary failures), so callers can always retry.
var (
	// General errors
	ErrNotFound      = errors.New("market: not found")
	ErrAlreadyExists = errors.New("market: already exists")
	ErrInvalidInput  = errors.New("market: invalid input")
	ErrUnauthorized  = errors.New("market: unauthorized")

	// Validation errors, rejected before any state change.
	ErrInvalidTerms = listing.ErrInvalidTerms
	ErrNotOwner     = errors.New("market: caller is not the listing owner")
	ErrNotOccupant  = errors.New("market: caller is not the occupant")

	// Listing/occupancy state errors
	ErrListingNotFound   = errors.New("market: listing not found")
	ErrOccupancyNotFound = errors.New("market: no active occupancy")
	ErrAlreadyOccupied   = errors.New("market: listing already occupied")
	ErrOccupancyActive   = errors.New("market: occupancy is active")

	// Timing errors: wait, or use the alternate exit path.
	ErrTooEarly        = errors.New("market: minimal hold period not reached")
	ErrAlreadyOvertime = errors.New("market: occupancy exceeded max duration")
	ErrNotOvertime     = errors.New("market: occupancy not yet overtime")

	// Authorization errors: the guarantor must produce fresh consent.
	ErrInvalidSignature = consent.ErrInvalidSignature
	ErrNonceReused      = errors.New("market: consent nonce already consumed")

	// External-dependency errors, surfaced verbatim; the whole
	// transition aborts atomically, no cleanup required by the caller.
	ErrTransferRejected  = custody.ErrTransferRejected
	ErrInsufficientFunds = payment.ErrInsufficientFunds
	ErrPushFailed        = payment.ErrPushFailed

	// Adapter registry errors
	ErrUnknownStandard = custody.ErrUnknownStandard

	// Store errors
	ErrStoreClosed     = errors.New("market: store is closed")
	ErrMigrationFailed = errors.New("market: migration failed")
)

// ValidationError represents a validation failure with field detail.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("market: validation failed for %s: %s", e.Field, e.Message)
}

// Unwrap lets errors.Is match ValidationError against ErrInvalidTerms.
func (e ValidationError) Unwrap() error { return ErrInvalidTerms }

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrListingNotFound) ||
		errors.Is(err, ErrOccupancyNotFound)
}

// IsTiming returns true if the error only means "wrong time": the call
// can succeed later, or through the alternate exit path.
func IsTiming(err error) bool {
	return errors.Is(err, ErrTooEarly) ||
		errors.Is(err, ErrAlreadyOvertime) ||
		errors.Is(err, ErrNotOvertime)
}

// IsAuthorization returns true if the error concerns guarantor consent.
func IsAuthorization(err error) bool {
	return errors.Is(err, ErrInvalidSignature) ||
		errors.Is(err, ErrNonceReused)
}

// IsExternal returns true if the error came from a consumed boundary
// (custody adapter or payment token) rather than the engine itself.
func IsExternal(err error) bool {
	return errors.Is(err, ErrTransferRejected) ||
		errors.Is(err, ErrInsufficientFunds) ||
		errors.Is(err, ErrPushFailed)
}
