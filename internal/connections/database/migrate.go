package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS employees (
		id            uuid PRIMARY KEY,
		name          text NOT NULL UNIQUE,
		password_hash text NOT NULL,
		role          text NOT NULL,
		status        text NOT NULL DEFAULT 'active',
		created_at    timestamptz NOT NULL DEFAULT now(),
		updated_at    timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS tables (
		id                uuid PRIMARY KEY,
		table_no          text NOT NULL UNIQUE,
		status            text NOT NULL DEFAULT 'available',
		assigned_employee uuid REFERENCES employees(id),
		version           bigint NOT NULL DEFAULT 1,
		created_at        timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS menu_items (
		id          uuid PRIMARY KEY,
		name        text NOT NULL,
		description text NOT NULL DEFAULT '',
		price       numeric(10,2) NOT NULL,
		category    text NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS drinks (
		id          uuid PRIMARY KEY,
		item_name   text NOT NULL,
		description text NOT NULL DEFAULT '',
		price       numeric(10,2) NOT NULL,
		category    text NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id           uuid PRIMARY KEY,
		table_id     uuid NOT NULL REFERENCES tables(id),
		waiter_id    uuid NOT NULL REFERENCES employees(id),
		status       text NOT NULL DEFAULT 'pending',
		cash         numeric(10,2) NOT NULL DEFAULT 0,
		card         numeric(10,2) NOT NULL DEFAULT 0,
		balance      numeric(10,2) NOT NULL DEFAULT 0,
		total        numeric(10,2) NOT NULL DEFAULT 0,
		printed      boolean NOT NULL DEFAULT false,
		bill_printed boolean NOT NULL DEFAULT false,
		version      bigint NOT NULL DEFAULT 1,
		created_at   timestamptz NOT NULL DEFAULT now(),
		updated_at   timestamptz NOT NULL DEFAULT now()
	)`,
	// one open session per table at a time
	`CREATE UNIQUE INDEX IF NOT EXISTS orders_one_pending_per_table
		ON orders (table_id) WHERE status = 'pending'`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id           uuid PRIMARY KEY,
		order_id     uuid NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		menu_item_id uuid REFERENCES menu_items(id),
		drink_id     uuid REFERENCES drinks(id),
		name         text NOT NULL,
		quantity     int NOT NULL CHECK (quantity >= 1),
		unit_price   numeric(10,2) NOT NULL,
		total        numeric(10,2) NOT NULL,
		status       text NOT NULL DEFAULT 'pending',
		version      bigint NOT NULL DEFAULT 1,
		created_at   timestamptz NOT NULL DEFAULT now(),
		updated_at   timestamptz NOT NULL DEFAULT now(),
		CHECK ((menu_item_id IS NULL) <> (drink_id IS NULL))
	)`,
	`CREATE INDEX IF NOT EXISTS order_items_kitchen
		ON order_items (status, updated_at) WHERE menu_item_id IS NOT NULL`,
	`CREATE TABLE IF NOT EXISTS audit_log (
		id         bigserial PRIMARY KEY,
		actor      text NOT NULL,
		action     text NOT NULL,
		details    jsonb NOT NULL DEFAULT '{}',
		created_at timestamptz NOT NULL DEFAULT now()
	)`,
}

// Migrate creates the schema. Every statement is idempotent.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
