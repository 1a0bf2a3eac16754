package market

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/xraph/market/access"
	"github.com/xraph/market/consent"
	"github.com/xraph/market/custody"
	"github.com/xraph/market/id"
	"github.com/xraph/market/listing"
	"github.com/xraph/market/occupancy"
	"github.com/xraph/market/payment"
	"github.com/xraph/market/plugin"
	"github.com/xraph/market/settlement"
	"github.com/xraph/market/store"
	"github.com/xraph/market/types"
)

const (
	// DefaultProtocolFeeRate is the default stored fee rate, applied
	// against settlement.FeeDenominator (20/400 = 5%).
	DefaultProtocolFeeRate = 20

	// DefaultMinimalHold is the shortest occupancy the protocol
	// accepts, in seconds.
	DefaultMinimalHold = 86400

	lockStripes = 64
)

// Market is the custody and settlement engine. All state transitions
// for one listing are serialized; transitions either complete fully or
// compensate every external effect they already made.
type Market struct {
	store    store.Store
	adapters *custody.Registry
	payments payment.Transferrer
	verifier consent.Verifier
	gate     access.Gate
	plugins  *plugin.Registry
	logger   *slog.Logger

	// Time is injected so holds are priced lazily, at the moment of
	// exit, not by a background ticker.
	clock func() time.Time

	domain          consent.Domain
	protocolAddress types.Address
	protocolFeeRate int64
	minimalHold     int64
	sweepInterval   time.Duration

	// Striped per-listing locks.
	locks [lockStripes]sync.Mutex

	stopChan chan struct{}
	wg       sync.WaitGroup
}

// New creates a new Market instance.
func New(s store.Store, adapters *custody.Registry, payments payment.Transferrer, opts ...Option) *Market {
	m := &Market{
		store:           s,
		adapters:        adapters,
		payments:        payments,
		verifier:        consent.NewTypedDataVerifier(),
		gate:            access.OpenGate{},
		plugins:         plugin.NewRegistry(),
		logger:          slog.Default(),
		clock:           time.Now,
		protocolFeeRate: DefaultProtocolFeeRate,
		minimalHold:     DefaultMinimalHold,
		sweepInterval:   time.Minute,
		stopChan:        make(chan struct{}),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Option configures a Market instance.
type Option func(*Market)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Market) {
		m.logger = logger
		m.plugins.WithLogger(logger)
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(m *Market) {
		_ = m.plugins.Register(p) //nolint:errcheck // best-effort plugin registration during init
	}
}

// WithVerifier sets the guarantor consent verifier.
func WithVerifier(v consent.Verifier) Option {
	return func(m *Market) {
		m.verifier = v
	}
}

// WithGate sets the access gate for privileged operations.
func WithGate(g access.Gate) Option {
	return func(m *Market) {
		m.gate = g
	}
}

// WithConsentDomain sets the domain guarantor signatures bind to.
func WithConsentDomain(d consent.Domain) Option {
	return func(m *Market) {
		m.domain = d
	}
}

// WithProtocolAddress sets the address the custody adapters recognize
// as the protocol operator.
func WithProtocolAddress(addr types.Address) Option {
	return func(m *Market) {
		m.protocolAddress = addr
	}
}

// WithProtocolFeeRate sets the stored fee rate, applied against
// settlement.FeeDenominator.
func WithProtocolFeeRate(rate int64) Option {
	return func(m *Market) {
		m.protocolFeeRate = rate
	}
}

// WithMinimalHold sets the shortest accepted occupancy, in seconds.
func WithMinimalHold(seconds int64) Option {
	return func(m *Market) {
		m.minimalHold = seconds
	}
}

// WithClock injects the time source. Tests use this to move through an
// occupancy without sleeping.
func WithClock(clock func() time.Time) Option {
	return func(m *Market) {
		m.clock = clock
	}
}

// WithSweepInterval sets how often the overtime monitor scans active
// occupancies.
func WithSweepInterval(interval time.Duration) Option {
	return func(m *Market) {
		m.sweepInterval = interval
	}
}

// Start migrates the store, initializes plugins, and begins the
// overtime monitor.
func (m *Market) Start(ctx context.Context) error {
	if err := m.store.Migrate(ctx); err != nil {
		return err
	}

	m.plugins.EmitInit(ctx, m)

	m.wg.Add(1)
	go m.overtimeMonitor(ctx)

	m.logger.Info("market started",
		"protocol_fee_rate", m.protocolFeeRate,
		"minimal_hold", m.minimalHold,
		"sweep_interval", m.sweepInterval,
	)

	return nil
}

// Stop shuts down the Market.
func (m *Market) Stop() error {
	close(m.stopChan)
	m.wg.Wait()

	ctx := context.Background()
	m.plugins.EmitShutdown(ctx)

	return m.store.Close()
}

// lockFor returns the stripe lock serializing one listing's transitions.
func (m *Market) lockFor(listingID uint64) *sync.Mutex {
	return &m.locks[listingID%lockStripes]
}

// opCtx tags custody calls with the protocol operator address.
func (m *Market) opCtx(ctx context.Context) context.Context {
	if m.protocolAddress.IsZero() {
		return ctx
	}
	return custody.WithOperator(ctx, m.protocolAddress)
}

// assetHolder reports which custodian currently holds the listing's
// full unit count: the owner, or protocol custody after a sticky
// return. When neither holds it falls back to the owner and lets the
// adapter reject the move.
func (m *Market) assetHolder(ctx context.Context, adapter custody.Adapter, l *listing.Listing) (types.Address, error) {
	n, err := adapter.HolderOf(ctx, l.Asset(), l.Owner)
	if err != nil {
		return types.ZeroAddress, err
	}
	if n >= l.UnitCount {
		return l.Owner, nil
	}
	if !m.protocolAddress.IsZero() {
		n, err = adapter.HolderOf(ctx, l.Asset(), m.protocolAddress)
		if err != nil {
			return types.ZeroAddress, err
		}
		if n >= l.UnitCount {
			return m.protocolAddress, nil
		}
	}
	return l.Owner, nil
}

// stickyCustodian is where a sticky listing's asset parks between
// occupancies. Without a configured protocol address the asset goes
// back to the owner, whose standing approval still covers the next
// move.
func (m *Market) stickyCustodian(l *listing.Listing) types.Address {
	if m.protocolAddress.IsZero() {
		return l.Owner
	}
	return m.protocolAddress
}

// undoStack collects compensations for completed steps of a
// transition. On a later failure they run in reverse order.
type undoStack []func()

func (u *undoStack) push(fn func()) { *u = append(*u, fn) }

func (u undoStack) run() {
	for i := len(u) - 1; i >= 0; i-- {
		u[i]()
	}
}

// ──────────────────────────────────────────────────
// Listing Management
// ──────────────────────────────────────────────────

// List registers an asset for occupation under the given terms. The
// asset stays with the owner until someone takes the listing. Returns
// the assigned listing id; ids are dense and never reused.
func (m *Market) List(ctx context.Context, l *listing.Listing) (uint64, error) {
	if err := l.Validate(m.minimalHold); err != nil {
		return 0, err
	}

	adapter, err := m.adapters.Resolve(l.Standard)
	if err != nil {
		return 0, err
	}
	if err := adapter.Register(m.opCtx(ctx), l.Asset(), l.Owner); err != nil {
		return 0, err
	}

	listingID, err := m.store.NextListingID(ctx)
	if err != nil {
		return 0, err
	}
	l.ID = listingID
	l.Entity = types.NewEntityAt(m.clock())

	if err := m.store.CreateListing(ctx, l); err != nil {
		return 0, err
	}

	m.logger.Info("listing created",
		"listing_id", listingID,
		"owner", l.Owner,
		"standard", l.Standard,
		"rate_per_second", l.RatePerSecond,
		"max_duration", l.MaxDuration,
	)
	m.plugins.EmitListingCreated(ctx, l)
	return listingID, nil
}

// Cancel removes an unoccupied listing. Only the owner may cancel, and
// never while an occupancy is active.
func (m *Market) Cancel(ctx context.Context, caller types.Address, listingID uint64) error {
	mu := m.lockFor(listingID)
	mu.Lock()
	defer mu.Unlock()

	l, err := m.store.GetListing(ctx, listingID)
	if err != nil {
		return err
	}
	if l.Owner != caller {
		return ErrNotOwner
	}
	if _, err := m.store.GetOccupancy(ctx, listingID); err == nil {
		return ErrOccupancyActive
	} else if !IsNotFound(err) {
		return err
	}

	// The asset may sit in protocol custody after a sticky return;
	// release it to the owner before the record goes.
	adapter, err := m.adapters.Resolve(l.Standard)
	if err != nil {
		return err
	}
	holder, err := m.assetHolder(ctx, adapter, l)
	if err != nil {
		return err
	}

	var undo undoStack
	if holder != l.Owner {
		if err := adapter.Transfer(m.opCtx(ctx), l.Asset(), holder, l.Owner); err != nil {
			return err
		}
		undo.push(func() {
			if err := adapter.Transfer(m.opCtx(ctx), l.Asset(), l.Owner, holder); err != nil {
				m.logger.Error("compensation failed: re-park asset",
					"listing_id", listingID, "holder", holder, "error", err)
			}
		})
	}

	if err := m.store.DeleteListing(ctx, listingID); err != nil {
		undo.run()
		return err
	}

	m.logger.Info("listing canceled", "listing_id", listingID, "owner", caller)
	m.plugins.EmitListingCanceled(ctx, listingID)
	return nil
}

// GetListing retrieves a listing by id.
func (m *Market) GetListing(ctx context.Context, listingID uint64) (*listing.Listing, error) {
	return m.store.GetListing(ctx, listingID)
}

// ListListings retrieves listings, optionally filtered by owner.
func (m *Market) ListListings(ctx context.Context, opts listing.ListOpts) ([]*listing.Listing, error) {
	return m.store.ListListings(ctx, opts)
}

// ListingCount reports the number of live listings.
func (m *Market) ListingCount(ctx context.Context) (int64, error) {
	return m.store.CountListings(ctx)
}

// ──────────────────────────────────────────────────
// Occupation
// ──────────────────────────────────────────────────

// Occupy takes a listing with the occupant funding the full upfront
// price alone.
func (m *Market) Occupy(ctx context.Context, caller types.Address, listingID uint64) (*occupancy.Occupancy, error) {
	mu := m.lockFor(listingID)
	mu.Lock()
	defer mu.Unlock()

	l, err := m.store.GetListing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	return m.occupy(ctx, l, caller, l.TotalPrice(), types.ZeroAddress, 0, 0)
}

// GuarantorTerms is a guarantor's signed offer to co-fund an occupancy.
type GuarantorTerms struct {
	Guarantor types.Address
	Stake     int64
	FeeRate   int64
	Nonce     uint64
	Signature consent.Signature
}

// OccupyWithGuarantor takes a listing with a guarantor co-funding part
// of the upfront price under signed, nonce-bound consent. The nonce is
// consumed even if a later step fails, so a rejected attempt cannot be
// replayed.
func (m *Market) OccupyWithGuarantor(ctx context.Context, caller types.Address, listingID uint64, terms GuarantorTerms) (*occupancy.Occupancy, error) {
	mu := m.lockFor(listingID)
	mu.Lock()
	defer mu.Unlock()

	l, err := m.store.GetListing(ctx, listingID)
	if err != nil {
		return nil, err
	}

	total := l.TotalPrice()
	if terms.Stake <= 0 || terms.Stake > total {
		return nil, fmt.Errorf("%w: guarantor stake %d outside (0, %d]", ErrInvalidInput, terms.Stake, total)
	}
	if terms.FeeRate < 0 || terms.FeeRate > settlement.FeeDenominator {
		return nil, fmt.Errorf("%w: guarantor fee rate %d outside [0, %d]", ErrInvalidInput, terms.FeeRate, settlement.FeeDenominator)
	}

	req := consent.Request{
		ListingID:        listingID,
		Occupant:         caller,
		GuarantorStake:   terms.Stake,
		GuarantorFeeRate: terms.FeeRate,
		Nonce:            terms.Nonce,
	}
	if err := m.verifier.Verify(m.domain, req, terms.Guarantor, terms.Signature); err != nil {
		return nil, err
	}
	if err := m.store.ConsumeNonce(ctx, terms.Guarantor, terms.Nonce); err != nil {
		return nil, err
	}

	return m.occupy(ctx, l, caller, total-terms.Stake, terms.Guarantor, terms.Stake, terms.FeeRate)
}

// occupy runs the funded take of a listing. Caller holds the listing's
// stripe lock.
func (m *Market) occupy(ctx context.Context, l *listing.Listing, occupant types.Address, occupantStake int64, guarantor types.Address, guarantorStake, guarantorFeeRate int64) (*occupancy.Occupancy, error) {
	if _, err := m.store.GetOccupancy(ctx, l.ID); err == nil {
		return nil, ErrAlreadyOccupied
	} else if !IsNotFound(err) {
		return nil, err
	}

	var undo undoStack

	if err := m.payments.Pull(ctx, l.PaymentToken, occupant, occupantStake); err != nil {
		return nil, err
	}
	undo.push(func() {
		if err := m.payments.Push(ctx, l.PaymentToken, occupant, occupantStake); err != nil {
			m.logger.Error("compensation failed: refund occupant stake",
				"listing_id", l.ID, "occupant", occupant, "error", err)
		}
	})

	if guarantorStake > 0 {
		if err := m.payments.Pull(ctx, l.PaymentToken, guarantor, guarantorStake); err != nil {
			undo.run()
			return nil, err
		}
		undo.push(func() {
			if err := m.payments.Push(ctx, l.PaymentToken, guarantor, guarantorStake); err != nil {
				m.logger.Error("compensation failed: refund guarantor stake",
					"listing_id", l.ID, "guarantor", guarantor, "error", err)
			}
		})
	}

	adapter, err := m.adapters.Resolve(l.Standard)
	if err != nil {
		undo.run()
		return nil, err
	}
	// A sticky listing's asset may already sit in protocol custody
	// from a previous occupancy.
	holder, err := m.assetHolder(ctx, adapter, l)
	if err != nil {
		undo.run()
		return nil, err
	}
	if err := adapter.Transfer(m.opCtx(ctx), l.Asset(), holder, occupant); err != nil {
		undo.run()
		return nil, err
	}
	undo.push(func() {
		if err := adapter.Transfer(m.opCtx(ctx), l.Asset(), occupant, holder); err != nil {
			m.logger.Error("compensation failed: return asset to holder",
				"listing_id", l.ID, "holder", holder, "error", err)
		}
	})

	now := m.clock()
	occ := &occupancy.Occupancy{
		Entity:           types.NewEntityAt(now),
		ID:               id.NewOccupancyID(),
		ListingID:        l.ID,
		Occupant:         occupant,
		StartTime:        now,
		OccupantStake:    occupantStake,
		Guarantor:        guarantor,
		GuarantorStake:   guarantorStake,
		GuarantorFeeRate: guarantorFeeRate,
	}
	if err := m.store.CreateOccupancy(ctx, occ); err != nil {
		undo.run()
		return nil, err
	}

	m.logger.Info("occupancy started",
		"listing_id", l.ID,
		"occupancy_id", occ.ID,
		"occupant", occupant,
		"occupant_stake", occupantStake,
		"guarantor", guarantor,
		"guarantor_stake", guarantorStake,
	)
	m.plugins.EmitOccupancyStarted(ctx, occ)
	return occ, nil
}

// GetOccupancy retrieves the active occupancy for a listing.
func (m *Market) GetOccupancy(ctx context.Context, listingID uint64) (*occupancy.Occupancy, error) {
	return m.store.GetOccupancy(ctx, listingID)
}

// ListOccupancies retrieves active occupancies, optionally filtered by
// occupant.
func (m *Market) ListOccupancies(ctx context.Context, opts occupancy.ListOpts) ([]*occupancy.Occupancy, error) {
	return m.store.ListOccupancies(ctx, opts)
}

// ──────────────────────────────────────────────────
// Settlement
// ──────────────────────────────────────────────────

// ReceiptKind tags how an occupancy ended.
type ReceiptKind string

const (
	ReceiptReturned ReceiptKind = "returned"
	ReceiptClaimed  ReceiptKind = "claimed"
)

// Receipt records a completed settlement.
type Receipt struct {
	ID         id.SettlementID
	Kind       ReceiptKind
	ListingID  uint64
	Token      types.Address
	Elapsed    int64
	Split      settlement.Split
	WentSticky bool
	SettledAt  time.Time
}

// Token-qualified views of the split, for observers that track funds
// across listings with different payment tokens.

func (r *Receipt) OwnerAmount() types.Amount {
	return types.NewAmount(r.Token, r.Split.OwnerPayout)
}

func (r *Receipt) OccupantAmount() types.Amount {
	return types.NewAmount(r.Token, r.Split.OccupantPayout)
}

func (r *Receipt) GuarantorAmount() types.Amount {
	return types.NewAmount(r.Token, r.Split.GuarantorPayout)
}

func (r *Receipt) FeeAmount() types.Amount {
	return types.NewAmount(r.Token, r.Split.ProtocolFee)
}

// Return ends an occupancy on the occupant's initiative: the asset
// goes back to the owner (or parks in protocol custody when the
// listing is sticky) and the upfront funds settle by elapsed time. The
// listing survives and can be occupied again. Before the minimal hold
// the return is rejected; past the listing's max duration the exit
// path is Claim instead.
func (m *Market) Return(ctx context.Context, caller types.Address, listingID uint64) (*Receipt, error) {
	mu := m.lockFor(listingID)
	mu.Lock()
	defer mu.Unlock()

	l, err := m.store.GetListing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	occ, err := m.store.GetOccupancy(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if occ.Occupant != caller {
		return nil, ErrNotOccupant
	}

	now := m.clock()
	elapsed := occ.Elapsed(now)
	if elapsed < m.minimalHold {
		return nil, fmt.Errorf("%w: held %ds of %ds", ErrTooEarly, elapsed, m.minimalHold)
	}
	if elapsed > l.MaxDuration {
		return nil, fmt.Errorf("%w: held %ds, max %ds", ErrAlreadyOvertime, elapsed, l.MaxDuration)
	}

	split, err := m.computeSplit(l, occ, elapsed)
	if err != nil {
		return nil, err
	}

	var undo undoStack

	adapter, err := m.adapters.Resolve(l.Standard)
	if err != nil {
		return nil, err
	}
	dest := l.Owner
	if l.Sticky {
		dest = m.stickyCustodian(l)
	}
	if err := adapter.Transfer(m.opCtx(ctx), l.Asset(), occ.Occupant, dest); err != nil {
		return nil, err
	}
	undo.push(func() {
		if err := adapter.Transfer(m.opCtx(ctx), l.Asset(), dest, occ.Occupant); err != nil {
			m.logger.Error("compensation failed: re-deliver asset to occupant",
				"listing_id", listingID, "occupant", occ.Occupant, "error", err)
		}
	})

	// The occupancy record goes before any funds move, so a failed
	// disbursement can restore it and a retried return can never
	// settle the same stake twice.
	if err := m.store.DeleteOccupancy(ctx, listingID); err != nil {
		undo.run()
		return nil, err
	}
	undo.push(func() {
		if err := m.store.CreateOccupancy(ctx, occ); err != nil {
			m.logger.Error("compensation failed: restore occupancy",
				"listing_id", listingID, "occupancy_id", occ.ID, "error", err)
		}
	})

	if err := m.settle(ctx, l, occ, split, &undo); err != nil {
		undo.run()
		return nil, err
	}

	wentSticky := dest != l.Owner
	receipt := &Receipt{
		ID:         id.NewSettlementID(),
		Kind:       ReceiptReturned,
		ListingID:  listingID,
		Token:      l.PaymentToken,
		Elapsed:    elapsed,
		Split:      split,
		WentSticky: wentSticky,
		SettledAt:  now,
	}

	m.logger.Info("occupancy returned",
		"listing_id", listingID,
		"occupancy_id", occ.ID,
		"elapsed", elapsed,
		"went_sticky", wentSticky,
		"owner_payout", split.OwnerPayout,
		"occupant_payout", split.OccupantPayout,
		"guarantor_payout", split.GuarantorPayout,
		"protocol_fee", split.ProtocolFee,
	)
	m.plugins.EmitSettlement(ctx, listingID, split)
	m.plugins.EmitOccupancyReturned(ctx, occ, split, wentSticky)
	return receipt, nil
}

// Claim recovers the funds of an occupancy that ran past its max
// duration. Only the owner may claim. The full upfront price settles
// as if the occupancy ran exactly to its cap; the asset itself stays
// wherever the occupant left it, and the listing record stays until
// the owner cancels it after recovering the asset out of band.
func (m *Market) Claim(ctx context.Context, caller types.Address, listingID uint64) (*Receipt, error) {
	mu := m.lockFor(listingID)
	mu.Lock()
	defer mu.Unlock()

	l, err := m.store.GetListing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	occ, err := m.store.GetOccupancy(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if l.Owner != caller {
		return nil, ErrNotOwner
	}

	now := m.clock()
	if occ.Elapsed(now) <= l.MaxDuration {
		return nil, fmt.Errorf("%w: held %ds of max %ds", ErrNotOvertime, occ.Elapsed(now), l.MaxDuration)
	}

	// Cost is capped at the total price, so settle at the cap.
	split, err := m.computeSplit(l, occ, l.MaxDuration)
	if err != nil {
		return nil, err
	}

	var undo undoStack
	if err := m.store.DeleteOccupancy(ctx, listingID); err != nil {
		return nil, err
	}
	undo.push(func() {
		if err := m.store.CreateOccupancy(ctx, occ); err != nil {
			m.logger.Error("compensation failed: restore occupancy",
				"listing_id", listingID, "occupancy_id", occ.ID, "error", err)
		}
	})

	if err := m.settle(ctx, l, occ, split, &undo); err != nil {
		undo.run()
		return nil, err
	}

	receipt := &Receipt{
		ID:        id.NewSettlementID(),
		Kind:      ReceiptClaimed,
		ListingID: listingID,
		Token:     l.PaymentToken,
		Elapsed:   l.MaxDuration,
		Split:     split,
		SettledAt: now,
	}

	m.logger.Warn("occupancy claimed",
		"listing_id", listingID,
		"occupancy_id", occ.ID,
		"occupant", occ.Occupant,
		"owner_payout", split.OwnerPayout,
		"protocol_fee", split.ProtocolFee,
	)
	m.plugins.EmitSettlement(ctx, listingID, split)
	m.plugins.EmitOccupancyClaimed(ctx, occ, split)
	return receipt, nil
}

// computeSplit prices an occupancy at elapsed seconds.
func (m *Market) computeSplit(l *listing.Listing, occ *occupancy.Occupancy, elapsed int64) (settlement.Split, error) {
	return settlement.Compute(settlement.Terms{
		RatePerSecond:    l.RatePerSecond,
		MaxDuration:      l.MaxDuration,
		Elapsed:          elapsed,
		ProtocolFeeRate:  m.protocolFeeRate,
		OccupantStake:    occ.OccupantStake,
		GuarantorStake:   occ.GuarantorStake,
		GuarantorFeeRate: occ.GuarantorFeeRate,
	})
}

// settle pushes a split's payouts and accrues the protocol fee. Pushes
// draw on stakes already held by the protocol, so conservation
// guarantees the treasury covers them.
func (m *Market) settle(ctx context.Context, l *listing.Listing, occ *occupancy.Occupancy, split settlement.Split, undo *undoStack) error {
	if err := m.store.AccrueFee(ctx, l.PaymentToken, split.ProtocolFee); err != nil {
		return err
	}
	undo.push(func() {
		if err := m.store.AccrueFee(ctx, l.PaymentToken, -split.ProtocolFee); err != nil {
			m.logger.Error("compensation failed: reverse fee accrual",
				"listing_id", l.ID, "error", err)
		}
	})

	payouts := []struct {
		to     types.Address
		amount int64
	}{
		{l.Owner, split.OwnerPayout},
		{occ.Occupant, split.OccupantPayout},
		{occ.Guarantor, split.GuarantorPayout},
	}
	for _, p := range payouts {
		if p.amount == 0 {
			continue
		}
		if err := m.payments.Push(ctx, l.PaymentToken, p.to, p.amount); err != nil {
			return fmt.Errorf("%w: payout to %s: %v", ErrPushFailed, p.to, err)
		}
		to, amount := p.to, p.amount
		undo.push(func() {
			m.logger.Error("compensation gap: payout already pushed",
				"listing_id", l.ID, "to", to, "amount", amount)
		})
	}
	if split.ProtocolFee > 0 {
		m.plugins.EmitFeeAccrued(ctx, string(l.PaymentToken), split.ProtocolFee)
	}
	return nil
}

// ──────────────────────────────────────────────────
// Protocol fees
// ──────────────────────────────────────────────────

// AccruedFees reports the undistributed protocol fees in a token.
func (m *Market) AccruedFees(ctx context.Context, token types.Address) (types.Amount, error) {
	balance, err := m.store.FeeBalance(ctx, token)
	if err != nil {
		return types.ZeroAmount(token), err
	}
	return types.NewAmount(token, balance), nil
}

// WithdrawFees pushes all accrued protocol fees in a token to the
// recipient. Requires the treasurer role. Returns the amount moved.
func (m *Market) WithdrawFees(ctx context.Context, caller types.Address, token, recipient types.Address) (int64, error) {
	if err := m.gate.RequireRole(caller, access.RoleTreasurer); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	amount, err := m.store.ResetFees(ctx, token)
	if err != nil {
		return 0, err
	}
	if amount == 0 {
		return 0, nil
	}

	if err := m.payments.Push(ctx, token, recipient, amount); err != nil {
		if accrueErr := m.store.AccrueFee(ctx, token, amount); accrueErr != nil {
			m.logger.Error("compensation failed: restore fee balance",
				"token", token, "amount", amount, "error", accrueErr)
		}
		return 0, fmt.Errorf("%w: %v", ErrPushFailed, err)
	}

	m.logger.Info("fees withdrawn", "token", token, "recipient", recipient, "amount", amount)
	m.plugins.EmitFeesWithdrawn(ctx, string(token), string(recipient), amount)
	return amount, nil
}

// ──────────────────────────────────────────────────
// Overtime monitor
// ──────────────────────────────────────────────────

// overtimeMonitor periodically logs occupancies that ran past their
// listing's max duration, so operators notice claimable positions.
func (m *Market) overtimeMonitor(ctx context.Context) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopChan:
			return
		case <-ticker.C:
			m.sweepOvertime(ctx)
		}
	}
}

func (m *Market) sweepOvertime(ctx context.Context) {
	occs, err := m.store.ListOccupancies(ctx, occupancy.ListOpts{})
	if err != nil {
		m.logger.Warn("overtime sweep failed", "error", err)
		return
	}

	now := m.clock()
	for _, occ := range occs {
		l, err := m.store.GetListing(ctx, occ.ListingID)
		if err != nil {
			continue
		}
		if occ.Elapsed(now) > l.MaxDuration {
			m.logger.Warn("occupancy overtime",
				"listing_id", occ.ListingID,
				"occupancy_id", occ.ID,
				"occupant", occ.Occupant,
				"elapsed", occ.Elapsed(now),
				"max_duration", l.MaxDuration,
			)
		}
	}
}
