// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("store unavailable")
	ErrShape       = errors.New("unexpected row shape")
)

// Postgres SQLSTATE for unique_violation
// See http://www.postgresql.org/docs/current/static/errcodes-appendix.html
const pgUniqueViolation = "23505"

// CastErr inspects the given error and replaces driver specific errors with
// easier to compare equivalents. Anything it can't place is reported as the
// store being unavailable.
func CastErr(err error) error {
	if err == nil {
		return nil
	}
	if cast, ok := classify(err); ok {
		return cast
	}
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}

// castScanErr is CastErr for errors coming out of a Scan. Errors that aren't
// driver or connection failures mean the row didn't fit the destination.
func castScanErr(err error) error {
	if err == nil {
		return nil
	}
	if cast, ok := classify(err); ok {
		return cast
	}
	return fmt.Errorf("%w: %w", ErrShape, err)
}

func classify(err error) (error, bool) {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound, true
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) ||
		errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return fmt.Errorf("%w: %w", ErrUnavailable, err), true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return castSQLState(string(pqErr.Code), err), true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return castSQLState(pgErr.Code, err), true
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		switch {
		case code == sqlite3.SQLITE_CONSTRAINT_UNIQUE, code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return ErrConflict, true
		case code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(err.Error(), "UNIQUE"):
			return ErrConflict, true
		}
		// busy, locked, I/O and friends
		return fmt.Errorf("%w: %w", ErrUnavailable, err), true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %w", ErrUnavailable, err), true
	}

	return nil, false
}

func castSQLState(code string, err error) error {
	if code == pgUniqueViolation {
		return ErrConflict
	}
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}
