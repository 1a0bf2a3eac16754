package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	market "github.com/xraph/market"
	"github.com/xraph/market/listing"
	"github.com/xraph/market/occupancy"
	marketstore "github.com/xraph/market/store"
	"github.com/xraph/market/types"
)

// Collection name constants.
const (
	colListings    = "market_listings"
	colOccupancies = "market_occupancies"
	colFees        = "market_fees"
	colNonces      = "market_nonces"
	colCounters    = "market_counters"
)

// compile-time interface check
var _ marketstore.Store = (*Store)(nil)

// Store implements store.Store using MongoDB via Grove ORM.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates indexes for all market collections.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := migrationIndexes()

	for col, models := range indexes {
		if len(models) == 0 {
			continue
		}
		_, err := s.mdb.Collection(col).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("market/mongo: migrate %s indexes: %w", col, err)
		}
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
	var counter counterModel
	err := s.mdb.Collection(colCounters).FindOneAndUpdate(ctx,
		bson.M{"_id": "listings"},
		bson.M{"$inc": bson.M{"next": 1}},
		options.FindOneAndUpdate().
			SetUpsert(true).
			SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("market/mongo: allocate listing id: %w", err)
	}
	return uint64(counter.Next - 1), nil
}

func (s *Store) CreateListing(ctx context.Context, l *listing.Listing) error {
	m := toListingModel(l)
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		return fmt.Errorf("market/mongo: create listing: %w", err)
	}
	return nil
}

func (s *Store) GetListing(ctx context.Context, id uint64) (*listing.Listing, error) {
	var m listingModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": id}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, market.ErrListingNotFound
		}
		return nil, fmt.Errorf("market/mongo: get listing: %w", err)
	}
	return fromListingModel(&m), nil
}

func (s *Store) ListListings(ctx context.Context, opts listing.ListOpts) ([]*listing.Listing, error) {
	var models []listingModel

	filter := bson.M{}
	if !opts.Owner.IsZero() {
		filter["owner"] = string(opts.Owner)
	}

	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "_id", Value: 1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("market/mongo: list listings: %w", err)
	}

	result := make([]*listing.Listing, len(models))
	for i := range models {
		result[i] = fromListingModel(&models[i])
	}
	return result, nil
}

func (s *Store) CountListings(ctx context.Context) (int64, error) {
	count, err := s.mdb.Collection(colListings).CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("market/mongo: count listings: %w", err)
	}
	return count, nil
}

func (s *Store) DeleteListing(ctx context.Context, id uint64) error {
	res, err := s.mdb.NewDelete((*listingModel)(nil)).
		Filter(bson.M{"_id": id}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("market/mongo: delete listing: %w", err)
	}
	if res.DeletedCount() == 0 {
		return market.ErrListingNotFound
	}
	return nil
}

// ==================== Occupancy Store ====================

func (s *Store) CreateOccupancy(ctx context.Context, o *occupancy.Occupancy) error {
	m := toOccupancyModel(o)
	// The listing id is the document id, so a second occupancy for
	// the same listing hits a duplicate key error.
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return market.ErrAlreadyOccupied
		}
		return fmt.Errorf("market/mongo: create occupancy: %w", err)
	}
	return nil
}

func (s *Store) GetOccupancy(ctx context.Context, listingID uint64) (*occupancy.Occupancy, error) {
	var m occupancyModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": listingID}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, market.ErrOccupancyNotFound
		}
		return nil, fmt.Errorf("market/mongo: get occupancy: %w", err)
	}
	return fromOccupancyModel(&m)
}

func (s *Store) ListOccupancies(ctx context.Context, opts occupancy.ListOpts) ([]*occupancy.Occupancy, error) {
	var models []occupancyModel

	filter := bson.M{}
	if !opts.Occupant.IsZero() {
		filter["occupant"] = string(opts.Occupant)
	}

	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "_id", Value: 1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("market/mongo: list occupancies: %w", err)
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
	res, err := s.mdb.NewDelete((*occupancyModel)(nil)).
		Filter(bson.M{"_id": listingID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("market/mongo: delete occupancy: %w", err)
	}
	if res.DeletedCount() == 0 {
		return market.ErrOccupancyNotFound
	}
	return nil
}

// ==================== Fee accrual ====================

func (s *Store) AccrueFee(ctx context.Context, token types.Address, amount int64) error {
	_, err := s.mdb.Collection(colFees).UpdateOne(ctx,
		bson.M{"_id": string(token)},
		bson.M{"$inc": bson.M{"balance": amount}},
		options.UpdateOne().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("market/mongo: accrue fee: %w", err)
	}
	return nil
}

func (s *Store) FeeBalance(ctx context.Context, token types.Address) (int64, error) {
	var m feeModel
	err := s.mdb.Collection(colFees).FindOne(ctx, bson.M{"_id": string(token)}).Decode(&m)
	if err != nil {
		if isNoDocuments(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("market/mongo: fee balance: %w", err)
	}
	return m.Balance, nil
}

func (s *Store) ResetFees(ctx context.Context, token types.Address) (int64, error) {
	var m feeModel
	err := s.mdb.Collection(colFees).FindOneAndDelete(ctx, bson.M{"_id": string(token)}).Decode(&m)
	if err != nil {
		if isNoDocuments(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("market/mongo: reset fees: %w", err)
	}
	return m.Balance, nil
}

// ==================== Nonce ledger ====================

func (s *Store) ConsumeNonce(ctx context.Context, guarantor types.Address, nonce uint64) error {
	m := nonceModel{
		Key:        nonceKey(guarantor, nonce),
		Guarantor:  string(guarantor),
		Nonce:      nonce,
		ConsumedAt: now(),
	}
	_, err := s.mdb.Collection(colNonces).InsertOne(ctx, m)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return market.ErrNonceReused
		}
		return fmt.Errorf("market/mongo: consume nonce: %w", err)
	}
	return nil
}

func (s *Store) NonceUsed(ctx context.Context, guarantor types.Address, nonce uint64) (bool, error) {
	var m nonceModel
	err := s.mdb.Collection(colNonces).FindOne(ctx, bson.M{"_id": nonceKey(guarantor, nonce)}).Decode(&m)
	if err != nil {
		if isNoDocuments(err) {
			return false, nil
		}
		return false, fmt.Errorf("market/mongo: nonce used: %w", err)
	}
	return true, nil
}

// ==================== Helpers ====================

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

// nonceKey builds the document id for a consumed nonce.
func nonceKey(guarantor types.Address, nonce uint64) string {
	return fmt.Sprintf("%s:%d", guarantor, nonce)
}

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// migrationIndexes returns the index definitions for all market collections.
func migrationIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		colListings: {
			{Keys: bson.D{{Key: "owner", Value: 1}}},
		},
		colOccupancies: {
			{Keys: bson.D{{Key: "occupant", Value: 1}}},
		},
		colFees:     {},
		colNonces:   {},
		colCounters: {},
	}
}
