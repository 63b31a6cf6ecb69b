package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema is executed at startup. Statements are idempotent so every boot
// converges to the same layout; there is no separate migration runner yet.
const Schema = `
CREATE TABLE IF NOT EXISTS users (
	id               TEXT PRIMARY KEY,
	role             TEXT NOT NULL,
	name             TEXT NOT NULL DEFAULT '',
	email            TEXT NOT NULL DEFAULT '',
	phone            TEXT NOT NULL DEFAULT '',
	address          TEXT NOT NULL DEFAULT '',
	shop_name        TEXT NOT NULL DEFAULT '',
	location         TEXT NOT NULL DEFAULT '',
	profile_complete BOOLEAN NOT NULL DEFAULT FALSE,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS products (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	price       BIGINT NOT NULL DEFAULT 0,
	category    TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL DEFAULT 'active',
	images      JSONB NOT NULL DEFAULT '[]',
	seller_id   TEXT NOT NULL DEFAULT '',
	user_id     TEXT NOT NULL DEFAULT '',
	created_by  TEXT NOT NULL DEFAULT '',
	uid         TEXT NOT NULL DEFAULT '',
	seller      TEXT NOT NULL DEFAULT '',
	artisan_id  TEXT NOT NULL DEFAULT '',
	extra       JSONB NOT NULL DEFAULT '{}',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS buyer_orders (
	order_id   TEXT PRIMARY KEY,
	buyer_id   TEXT NOT NULL,
	document   JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS buyer_orders_buyer_idx ON buyer_orders (buyer_id);

CREATE TABLE IF NOT EXISTS seller_orders (
	child_id        TEXT PRIMARY KEY,
	parent_order_id TEXT NOT NULL,
	seller_id       TEXT NOT NULL,
	buyer_id        TEXT NOT NULL,
	status          TEXT NOT NULL,
	document        JSONB NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS seller_orders_seller_idx ON seller_orders (seller_id);
CREATE INDEX IF NOT EXISTS seller_orders_parent_idx ON seller_orders (parent_order_id);
`

// Migrate applies the schema to the connected database.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
