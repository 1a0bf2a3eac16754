package sqlite

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the Market store (SQLite).
var Migrations = migrate.NewGroup("market")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_market_listings",
			Version: "20240101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS market_listings (
    id              INTEGER PRIMARY KEY,
    owner           TEXT NOT NULL DEFAULT '',
    standard        TEXT NOT NULL DEFAULT '',
    asset_contract  TEXT NOT NULL DEFAULT '',
    asset_unit_id   INTEGER NOT NULL DEFAULT 0,
    unit_count      INTEGER NOT NULL DEFAULT 1,
    payment_token   TEXT NOT NULL DEFAULT '',
    rate_per_second INTEGER NOT NULL DEFAULT 0,
    max_duration    INTEGER NOT NULL DEFAULT 0,
    sticky          INTEGER NOT NULL DEFAULT 0,
    created_at      TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at      TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_market_listings_owner ON market_listings (owner);

CREATE TABLE IF NOT EXISTS market_listing_seq (
    id   INTEGER PRIMARY KEY CHECK (id = 0),
    next INTEGER NOT NULL DEFAULT 0
);

INSERT OR IGNORE INTO market_listing_seq (id, next) VALUES (0, 0);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
DROP TABLE IF EXISTS market_listings;
DROP TABLE IF EXISTS market_listing_seq;
`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_market_occupancies",
			Version: "20240101000002",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS market_occupancies (
    listing_id         INTEGER PRIMARY KEY,
    id                 TEXT NOT NULL DEFAULT '',
    occupant           TEXT NOT NULL DEFAULT '',
    start_time         TEXT NOT NULL DEFAULT (datetime('now')),
    occupant_stake     INTEGER NOT NULL DEFAULT 0,
    guarantor          TEXT NOT NULL DEFAULT '',
    guarantor_stake    INTEGER NOT NULL DEFAULT 0,
    guarantor_fee_rate INTEGER NOT NULL DEFAULT 0,
    created_at         TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at         TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_market_occupancies_occupant ON market_occupancies (occupant);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS market_occupancies`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_market_fees_and_nonces",
			Version: "20240101000003",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS market_fees (
    token   TEXT PRIMARY KEY,
    balance INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS market_nonces (
    guarantor   TEXT NOT NULL,
    nonce       INTEGER NOT NULL,
    consumed_at TEXT NOT NULL DEFAULT (datetime('now')),
    PRIMARY KEY (guarantor, nonce)
);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
DROP TABLE IF EXISTS market_fees;
DROP TABLE IF EXISTS market_nonces;
`)
				return err
			},
		},
	)
}
