package postgres

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the Market store.
var Migrations = migrate.NewGroup("market")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_market_listings",
			Version: "20240101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS market_listings (
    id              BIGINT PRIMARY KEY,
    owner           TEXT NOT NULL DEFAULT '',
    standard        TEXT NOT NULL DEFAULT '',
    asset_contract  TEXT NOT NULL DEFAULT '',
    asset_unit_id   BIGINT NOT NULL DEFAULT 0,
    unit_count      BIGINT NOT NULL DEFAULT 1,
    payment_token   TEXT NOT NULL DEFAULT '',
    rate_per_second BIGINT NOT NULL DEFAULT 0,
    max_duration    BIGINT NOT NULL DEFAULT 0,
    sticky          BOOLEAN NOT NULL DEFAULT FALSE,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_market_listings_owner ON market_listings (owner);

CREATE TABLE IF NOT EXISTS market_listing_seq (
    id   INT PRIMARY KEY CHECK (id = 0),
    next BIGINT NOT NULL DEFAULT 0
);

INSERT INTO market_listing_seq (id, next) VALUES (0, 0) ON CONFLICT (id) DO NOTHING;
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
    listing_id         BIGINT PRIMARY KEY,
    id                 TEXT NOT NULL DEFAULT '',
    occupant           TEXT NOT NULL DEFAULT '',
    start_time         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    occupant_stake     BIGINT NOT NULL DEFAULT 0,
    guarantor          TEXT NOT NULL DEFAULT '',
    guarantor_stake    BIGINT NOT NULL DEFAULT 0,
    guarantor_fee_rate BIGINT NOT NULL DEFAULT 0,
    created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
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
    balance BIGINT NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS market_nonces (
    guarantor   TEXT NOT NULL,
    nonce       BIGINT NOT NULL,
    consumed_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
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
