// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db is the credential and poll store.

# Connecting

Open picks the database/sql driver from the configured type:

	conn, err := db.Open(ctx, cfg.DatabaseType, cfg.DatabaseURL, cfg.MaxOpenConns)

  - sqlite: modernc.org/sqlite, foreign keys on, WAL, pooled (:memory: gets one connection)
  - postgres: lib/pq, pooled
  - pgx: jackc/pgx stdlib driver, pooled

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(ctx, conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - app_user: email (PK), argon2id password digest, display name
  - poll: question, two prompts, approval flag, creation time
  - poll_response: one choice ('A' or 'B') per (user_email, poll_id)

# Relationships

	poll 1──* poll_response *──1 app_user

UNIQUE (user_email, poll_id) on poll_response is what makes a vote
single-shot. InsertResponse uses ON CONFLICT DO NOTHING and reports a
zero-row insert as ErrConflict, so concurrent votes can't both land.

# Store

Store wraps the pool and bounds every call with a timeout:

	store := db.NewStore(conn, cfg.StoreTimeout)
	poll, err := store.GetPoll(ctx, id)

Multi-statement work goes through WithTx:

	err := store.WithTx(ctx, func(ctx context.Context, tx *db.Conn) error {
		poll, err := tx.GetPoll(ctx, id)
		...
		_, err = tx.InsertResponse(ctx, resp)
		return err
	})

# Errors

Errors are normalized by CastErr:

  - ErrNotFound: no row
  - ErrConflict: unique violation (pq/pgx 23505, sqlite UNIQUE)
  - ErrUnavailable: timeout, cancelled context, connection failure
  - ErrShape: row didn't scan into the expected type
*/
package db
