package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"library-circulation/internal/logger"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            TEXT PRIMARY KEY,
		name          TEXT NOT NULL,
		email         TEXT NOT NULL DEFAULT '',
		role          TEXT NOT NULL,
		coordinator   BOOLEAN NOT NULL DEFAULT FALSE,
		active        BOOLEAN NOT NULL DEFAULT TRUE,
		active_loans  TEXT[] NOT NULL DEFAULT '{}',
		loan_history  TEXT[] NOT NULL DEFAULT '{}',
		pending_fines NUMERIC(12,2) NOT NULL DEFAULT 0,
		registered_on TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS resources (
		id             TEXT PRIMARY KEY,
		title          TEXT NOT NULL,
		author         TEXT NOT NULL DEFAULT '',
		category       TEXT NOT NULL DEFAULT '',
		type           TEXT NOT NULL,
		available      BOOLEAN NOT NULL DEFAULT TRUE,
		condition      TEXT NOT NULL,
		times_loaned   INTEGER NOT NULL DEFAULT 0,
		last_loaned_on TIMESTAMPTZ,
		downloads      INTEGER NOT NULL DEFAULT 0,
		download_limit INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS reservation_queue_entries (
		resource_id TEXT NOT NULL REFERENCES resources(id),
		position    INTEGER NOT NULL,
		user_id     TEXT NOT NULL,
		priority    INTEGER NOT NULL,
		enqueued_at TIMESTAMPTZ NOT NULL,
		expires_at  TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (resource_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS loans (
		id           TEXT PRIMARY KEY,
		user_id      TEXT NOT NULL REFERENCES users(id),
		resource_id  TEXT NOT NULL REFERENCES resources(id),
		issued_on    TIMESTAMPTZ NOT NULL,
		due_on       TIMESTAMPTZ NOT NULL,
		returned_on  TIMESTAMPTZ,
		renewals     INTEGER NOT NULL DEFAULT 0,
		max_renewals INTEGER NOT NULL,
		status       TEXT NOT NULL,
		fine_id      TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS reservations (
		id          TEXT PRIMARY KEY,
		user_id     TEXT NOT NULL REFERENCES users(id),
		resource_id TEXT NOT NULL REFERENCES resources(id),
		created_at  TIMESTAMPTZ NOT NULL,
		expires_at  TIMESTAMPTZ NOT NULL,
		status      TEXT NOT NULL,
		priority    INTEGER NOT NULL,
		queue_token TEXT NOT NULL DEFAULT '',
		note        TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS fines (
		id              TEXT PRIMARY KEY,
		loan_id         TEXT NOT NULL UNIQUE REFERENCES loans(id),
		user_id         TEXT NOT NULL REFERENCES users(id),
		amount          NUMERIC(12,2) NOT NULL,
		reason          TEXT NOT NULL,
		generated_on    TIMESTAMPTZ NOT NULL,
		paid            BOOLEAN NOT NULL DEFAULT FALSE,
		paid_on         TIMESTAMPTZ,
		payment_method  TEXT NOT NULL DEFAULT '',
		transaction_ref TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL,
		title      TEXT NOT NULL,
		message    TEXT NOT NULL,
		is_read    BOOLEAN NOT NULL DEFAULT FALSE,
		attributes JSONB,
		created_on TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_loans_user ON loans(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_loans_status ON loans(status)`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id, created_on DESC)`,
}

// Migrate creates the circulation tables if they do not exist.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		logger.DatabaseCall("MIGRATE", fmt.Sprintf("schema[%d]", i))
		_, err := db.ExecContext(ctx, stmt)
		logger.DatabaseResult("MIGRATE", 0, err)
		if err != nil {
			return fmt.Errorf("failed to apply schema statement %d: %w", i, err)
		}
	}
	return nil
}
