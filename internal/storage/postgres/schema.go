package postgres

import (
	"context"
	"database/sql"
)

// EnsureSchema creates the tables the service needs if they do not exist
// yet. Deployments that manage migrations externally can skip it.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			username      TEXT PRIMARY KEY,
			password_hash TEXT NOT NULL,
			role          TEXT NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS orders (
			id                     TEXT PRIMARY KEY,
			username               TEXT NOT NULL,
			order_index            BIGINT NOT NULL,
			computed_at            TIMESTAMPTZ NOT NULL,
			cycle_end_at           TIMESTAMPTZ NOT NULL,
			cycle_days             INT NOT NULL,
			rate_bps               BIGINT NOT NULL,
			amount_cents           BIGINT NOT NULL,
			n_opt                  INT NOT NULL,
			reinvest_requested     BOOLEAN NOT NULL,
			reinvest_applied       BOOLEAN NOT NULL,
			c_tm_cents             BIGINT NOT NULL,
			shortfall_cents        BIGINT NOT NULL,
			bonus_commission_cents BIGINT NOT NULL,
			reinvested_units       BIGINT NOT NULL,
			total_interest_cents   BIGINT NOT NULL,
			total_commission_cents BIGINT NOT NULL,
			global_revenue_cents   BIGINT NOT NULL,
			total_units_initial    BIGINT NOT NULL,
			total_units_global     BIGINT NOT NULL,
			invested_total_cents   BIGINT NOT NULL,
			circulation_cents      BIGINT NOT NULL,
			yield_ratio            DOUBLE PRECISION NOT NULL,
			favorite               BOOLEAN NOT NULL DEFAULT false,
			UNIQUE (username, order_index)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_user_computed ON orders (username, computed_at)`,
		`CREATE TABLE IF NOT EXISTS order_tiers (
			order_id          TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
			tier_index        INT NOT NULL,
			role              TEXT NOT NULL,
			units             BIGINT NOT NULL,
			capital_cents     BIGINT NOT NULL,
			interest_cents    BIGINT NOT NULL,
			commission_cents  BIGINT NOT NULL,
			revenue_cents     BIGINT NOT NULL,
			PRIMARY KEY (order_id, tier_index)
		)`,
		`CREATE TABLE IF NOT EXISTS audit_logs (
			id             TEXT PRIMARY KEY,
			actor          TEXT NOT NULL,
			action         TEXT NOT NULL,
			resource_type  TEXT NOT NULL,
			resource_id    TEXT,
			metadata       JSONB,
			payload_digest TEXT,
			ip             TEXT,
			user_agent     TEXT,
			created_at     TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_logs_created ON audit_logs (created_at DESC)`,
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
