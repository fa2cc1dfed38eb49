package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// schema is applied in order on startup. Every statement is idempotent.
var schema = []struct {
	name string
	sql  string
}{
	{"users", `
		CREATE TABLE IF NOT EXISTS users (
			id                 BIGSERIAL PRIMARY KEY,
			name               VARCHAR(255) NOT NULL,
			email              VARCHAR(255) NOT NULL UNIQUE,
			password           VARCHAR(255) NOT NULL,
			is_admin           BOOLEAN NOT NULL DEFAULT FALSE,
			is_verified        BOOLEAN NOT NULL DEFAULT FALSE,
			two_factor_enabled BOOLEAN NOT NULL DEFAULT FALSE,
			secret_key         VARCHAR(255) NOT NULL DEFAULT '',
			last_login         TIMESTAMPTZ,
			created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`},
	{"password_resets", `
		CREATE TABLE IF NOT EXISTS password_resets (
			email      VARCHAR(255) NOT NULL,
			token      VARCHAR(255) NOT NULL UNIQUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`},
	{"password_resets_email_idx", `
		CREATE INDEX IF NOT EXISTS idx_password_resets_email ON password_resets (email)`},
	{"categories", `
		CREATE TABLE IF NOT EXISTS categories (
			id           BIGSERIAL PRIMARY KEY,
			name         VARCHAR(255) NOT NULL,
			product_type VARCHAR(255) NOT NULL
		)`},
	{"products", `
		CREATE TABLE IF NOT EXISTS products (
			id              BIGSERIAL PRIMARY KEY,
			category        TEXT NOT NULL,
			buying_price    BIGINT NOT NULL CHECK (buying_price >= 0),
			quantity        INTEGER NOT NULL CHECK (quantity >= 0),
			unit            TEXT NOT NULL DEFAULT '',
			expiry_date     DATE,
			threshold_value INTEGER NOT NULL DEFAULT 0,
			name            TEXT NOT NULL,
			user_id         BIGINT NOT NULL,
			sold_amount     INTEGER NOT NULL DEFAULT 0 CHECK (sold_amount >= 0)
		)`},
	{"products_category_idx", `
		CREATE INDEX IF NOT EXISTS idx_products_category ON products (category)`},
	{"sales", `
		CREATE TABLE IF NOT EXISTS sales (
			id            BIGSERIAL PRIMARY KEY,
			product_id    BIGINT NOT NULL REFERENCES products (id),
			quantity_sold INTEGER NOT NULL CHECK (quantity_sold > 0),
			sale_date     TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`},
	{"sales_product_date_idx", `
		CREATE INDEX IF NOT EXISTS idx_sales_product_date ON sales (product_id, sale_date)`},
}

// EnsureSchema creates any missing tables and indexes.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, logger zerolog.Logger) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt.sql); err != nil {
			logger.Error().Err(err).Str("object", stmt.name).Msg("failed to apply schema")
			return fmt.Errorf("failed to apply schema for %s: %w", stmt.name, err)
		}
	}

	logger.Info().Int("objects", len(schema)).Msg("database schema ensured")
	return nil
}
