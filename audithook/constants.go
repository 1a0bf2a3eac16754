package audithook

// Action constants for audit events.
const (
	// Listing actions
	ActionListingCreated  = "listing.created"
	ActionListingCanceled = "listing.canceled"

	// Occupancy actions
	ActionOccupancyStarted  = "occupancy.started"
	ActionOccupancyReturned = "occupancy.returned"
	ActionOccupancyClaimed  = "occupancy.claimed"

	// Fee actions
	ActionFeeAccrued    = "fee.accrued"
	ActionFeesWithdrawn = "fee.withdrawn"
)

// Resource constants for audit events.
const (
	ResourceListing   = "listing"
	ResourceOccupancy = "occupancy"
	ResourceFee       = "fee"
)

// Category constants for audit events.
const (
	CategoryCustody    = "custody"
	CategorySettlement = "settlement"
	CategoryTreasury   = "treasury"
)

// Severity levels for audit events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomePartial = "partial"
)
