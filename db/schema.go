// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(ctx context.Context, db *sqlx.DB) error {
	schema := postgresSchema
	if isSQLite(db) {
		schema = sqliteSchema
	}

	_, err := db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

func isSQLite(db *sqlx.DB) bool {
	return db.DriverName() == driverSQLite
}

const postgresSchema = `
-- Users
CREATE TABLE IF NOT EXISTS app_user (
    email TEXT PRIMARY KEY,
    password_hash TEXT NOT NULL,
    name TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

-- Polls
CREATE TABLE IF NOT EXISTS poll (
    id TEXT PRIMARY KEY,
    question_text TEXT NOT NULL,
    prompt_a TEXT NOT NULL,
    prompt_b TEXT NOT NULL,
    is_approved BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_poll_approved ON poll(is_approved, created_at);

-- Responses (one per user per poll)
CREATE TABLE IF NOT EXISTS poll_response (
    id TEXT PRIMARY KEY,
    poll_id TEXT NOT NULL REFERENCES poll(id) ON DELETE CASCADE,
    user_email TEXT NOT NULL REFERENCES app_user(email) ON DELETE CASCADE,
    choice TEXT NOT NULL CHECK (choice IN ('A', 'B')),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (user_email, poll_id)
);

CREATE INDEX IF NOT EXISTS idx_poll_response_poll_id ON poll_response(poll_id);
`

// sqlite keeps TIMESTAMP as the declared type so the driver hands back time.Time
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS app_user (
    email TEXT PRIMARY KEY,
    password_hash TEXT NOT NULL,
    name TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS poll (
    id TEXT PRIMARY KEY,
    question_text TEXT NOT NULL,
    prompt_a TEXT NOT NULL,
    prompt_b TEXT NOT NULL,
    is_approved BOOLEAN NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_poll_approved ON poll(is_approved, created_at);

CREATE TABLE IF NOT EXISTS poll_response (
    id TEXT PRIMARY KEY,
    poll_id TEXT NOT NULL REFERENCES poll(id) ON DELETE CASCADE,
    user_email TEXT NOT NULL REFERENCES app_user(email) ON DELETE CASCADE,
    choice TEXT NOT NULL CHECK (choice IN ('A', 'B')),
    created_at TIMESTAMP NOT NULL,
    UNIQUE (user_email, poll_id)
);

CREATE INDEX IF NOT EXISTS idx_poll_response_poll_id ON poll_response(poll_id);
`
