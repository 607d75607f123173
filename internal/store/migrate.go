package store

import (
	"context"
	"fmt"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id SERIAL PRIMARY KEY,
		email TEXT UNIQUE NOT NULL,
		password TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS user_state (
		user_id INTEGER PRIMARY KEY REFERENCES users(id),
		state JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS completions (
		id UUID PRIMARY KEY,
		user_id INTEGER NOT NULL REFERENCES users(id),
		task_id TEXT NOT NULL,
		category TEXT NOT NULL,
		domain TEXT NOT NULL,
		points INTEGER NOT NULL DEFAULT 0,
		completed_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_completions_user_time
		ON completions (user_id, completed_at)`,
	`CREATE TABLE IF NOT EXISTS analytics_events (
		id SERIAL PRIMARY KEY,
		event_name TEXT NOT NULL,
		event_time TIMESTAMPTZ NOT NULL,
		user_id INTEGER NOT NULL,
		session_id TEXT,
		platform TEXT,
		app_version TEXT,
		device_locale TEXT,
		ip_country TEXT,
		source_event_key TEXT UNIQUE,
		properties JSONB
	)`,
}

// Migrate creates the schema if it does not exist yet. Statements are
// idempotent, so running at every startup is safe.
func (st *Store) Migrate(ctx context.Context) error {
	for _, stmt := range migrations {
		if _, err := st.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("store: migrate: %w", err)
		}
	}
	return nil
}
