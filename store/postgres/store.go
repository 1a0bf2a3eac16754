package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/pgdriver"
	"github.com/xraph/grove/migrate"

	market "github.com/xraph/market"
	"github.com/xraph/market/listing"
	"github.com/xraph/market/occupancy"
	marketstore "github.com/xraph/market/store"
	"github.com/xraph/market/types"
)

// compile-time interface check
var _ marketstore.Store = (*Store)(nil)

// Store implements store.Store using PostgreSQL via Grove ORM.
type Store struct {
	db  *grove.DB
	pg *pgdriver.PgDB
}

// New creates a new PostgreSQL store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		pg:  pgdriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.pg)
	if err != nil {
		return fmt.Errorf("market/postgres: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("market/postgres: migration failed: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ==================== Listing Store ====================

func (s *Store) NextListingID(ctx context.Context) (uint64, error) {
	var next uint64
	err := s.pg.NewRaw(`
		UPDATE market_listing_seq SET next = next + 1 WHERE id = 0 RETURNING next - 1
	`).Scan(ctx, &next)
	if err != nil {
		return 0, fmt.Errorf("market/postgres: allocate listing id: %w", err)
	}
	return next, nil
}

func (s *Store) CreateListing(ctx context.Context, l *listing.Listing) error {
	m := toListingModel(l)
	_, err := s.pg.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetListing(ctx context.Context, id uint64) (*listing.Listing, error) {
	m := new(listingModel)
	err := s.pg.NewSelect(m).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, market.ErrListingNotFound
		}
		return nil, err
	}
	return fromListingModel(m), nil
}

func (s *Store) ListListings(ctx context.Context, opts listing.ListOpts) ([]*listing.Listing, error) {
	var models []listingModel
	q := s.pg.NewSelect(&models)

	if !opts.Owner.IsZero() {
		q = q.Where("owner = ?", string(opts.Owner))
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("id ASC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	result := make([]*listing.Listing, len(models))
	for i := range models {
		result[i] = fromListingModel(&models[i])
	}
	return result, nil
}

func (s *Store) CountListings(ctx context.Context) (int64, error) {
	var count int64
	err := s.pg.NewRaw(`SELECT COUNT(*) FROM market_listings`).Scan(ctx, &count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Store) DeleteListing(ctx context.Context, id uint64) error {
	res, err := s.pg.NewDelete((*listingModel)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return market.ErrListingNotFound
	}
	return nil
}

// ==================== Occupancy Store ====================

func (s *Store) CreateOccupancy(ctx context.Context, o *occupancy.Occupancy) error {
	m := toOccupancyModel(o)
	// The listing id primary key enforces exclusivity: a second
	// insert for the same listing violates it.
	res, err := s.pg.NewInsert(m).
		OnConflict("(listing_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return market.ErrAlreadyOccupied
	}
	return nil
}

func (s *Store) GetOccupancy(ctx context.Context, listingID uint64) (*occupancy.Occupancy, error) {
	m := new(occupancyModel)
	err := s.pg.NewSelect(m).
		Where("listing_id = ?", listingID).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, market.ErrOccupancyNotFound
		}
		return nil, err
	}
	return fromOccupancyModel(m)
}

func (s *Store) ListOccupancies(ctx context.Context, opts occupancy.ListOpts) ([]*occupancy.Occupancy, error) {
	var models []occupancyModel
	q := s.pg.NewSelect(&models)

	if !opts.Occupant.IsZero() {
		q = q.Where("occupant = ?", string(opts.Occupant))
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("listing_id ASC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	result := make([]*occupancy.Occupancy, len(models))
	for i := range models {
		o, err := fromOccupancyModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = o
	}
	return result, nil
}

func (s *Store) DeleteOccupancy(ctx context.Context, listingID uint64) error {
	res, err := s.pg.NewDelete((*occupancyModel)(nil)).
		Where("listing_id = ?", listingID).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return market.ErrOccupancyNotFound
	}
	return nil
}

// ==================== Fee accrual ====================

func (s *Store) AccrueFee(ctx context.Context, token types.Address, amount int64) error {
	_, err := s.pg.NewRaw(`
		INSERT INTO market_fees (token, balance) VALUES (?, ?)
		ON CONFLICT (token) DO UPDATE SET balance = balance + excluded.balance
	`, string(token), amount).Exec(ctx)
	return err
}

func (s *Store) FeeBalance(ctx context.Context, token types.Address) (int64, error) {
	m := new(feeModel)
	err := s.pg.NewSelect(m).
		Where("token = ?", string(token)).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return 0, nil
		}
		return 0, err
	}
	return m.Balance, nil
}

func (s *Store) ResetFees(ctx context.Context, token types.Address) (int64, error) {
	var balance int64
	err := s.pg.NewRaw(`
		DELETE FROM market_fees WHERE token = ? RETURNING balance
	`, string(token)).Scan(ctx, &balance)
	if err != nil {
		if isNoRows(err) {
			return 0, nil
		}
		return 0, err
	}
	return balance, nil
}

// ==================== Nonce ledger ====================

func (s *Store) ConsumeNonce(ctx context.Context, guarantor types.Address, nonce uint64) error {
	m := &nonceModel{
		Guarantor:  string(guarantor),
		Nonce:      nonce,
		ConsumedAt: now(),
	}
	res, err := s.pg.NewInsert(m).
		OnConflict("(guarantor, nonce) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return market.ErrNonceReused
	}
	return nil
}

func (s *Store) NonceUsed(ctx context.Context, guarantor types.Address, nonce uint64) (bool, error) {
	m := new(nonceModel)
	err := s.pg.NewSelect(m).
		Where("guarantor = ?", string(guarantor)).
		Where("nonce = ?", nonce).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ==================== Helpers ====================

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

// isNoRows checks for the standard sql.ErrNoRows sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
