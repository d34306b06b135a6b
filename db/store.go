// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/danielhkuo/thisorthat/models"
)

const (
	driverSQLite   = "sqlite"
	driverPostgres = "postgres"
	driverPGX      = "pgx"
)

// Querier is implemented by both *sqlx.DB and *sqlx.Tx
type Querier interface {
	QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row
	QueryxContext(ctx context.Context, query string, args ...interface{}) (*sqlx.Rows, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// Open connects to the database of the given type and verifies the
// connection. Every backend gets a pool of maxOpen connections except an
// in-memory sqlite database, which only exists on the connection that made it.
func Open(ctx context.Context, dbType, url string, maxOpen int) (*sqlx.DB, error) {
	var driverName string
	switch dbType {
	case "sqlite":
		driverName = driverSQLite
		url = withSQLitePragmas(url)
	case "postgres":
		driverName = driverPostgres
	case "pgx":
		driverName = driverPGX
	default:
		return nil, fmt.Errorf("unsupported database type %q", dbType)
	}

	conn, err := sqlx.Open(driverName, url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if driverName == driverSQLite && isSQLiteMemory(url) {
		conn.SetMaxOpenConns(1)
	} else if maxOpen > 0 {
		conn.SetMaxOpenConns(maxOpen)
		conn.SetMaxIdleConns(maxOpen)
		conn.SetConnMaxIdleTime(5 * time.Minute)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("database ping failed: %w", CastErr(err))
	}

	return conn, nil
}

func withSQLitePragmas(url string) string {
	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	// WAL lets readers run beside the single writer; write transactions take
	// the lock at BEGIN so they wait on busy_timeout instead of failing mid-way.
	return url + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_txlock=immediate"
}

func isSQLiteMemory(url string) bool {
	return strings.Contains(url, ":memory:") || strings.Contains(url, "mode=memory")
}

// Store is the credential and poll store. It holds no lock of its own:
// concurrent callers each take a connection from the pool, and the
// one-response-per-user-per-poll rule is the table's unique constraint.
type Store struct {
	db      *sqlx.DB
	timeout time.Duration
}

func NewStore(db *sqlx.DB, timeout time.Duration) *Store {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Store{db: db, timeout: timeout}
}

func (s *Store) DB() *sqlx.DB {
	return s.db
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// WithTx runs fn inside a transaction bounded by the store timeout. The
// transaction commits only if fn returns nil.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx *Conn) error) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return CastErr(err)
	}
	defer tx.Rollback()

	if err := fn(ctx, &Conn{q: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return CastErr(err)
	}
	return nil
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return (&Conn{q: s.db}).FindUserByEmail(ctx, email)
}

func (s *Store) InsertUser(ctx context.Context, u models.User) (*models.User, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return (&Conn{q: s.db}).InsertUser(ctx, u)
}

func (s *Store) InsertPoll(ctx context.Context, p models.Poll) (*models.Poll, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return (&Conn{q: s.db}).InsertPoll(ctx, p)
}

func (s *Store) GetPoll(ctx context.Context, id string) (*models.Poll, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return (&Conn{q: s.db}).GetPoll(ctx, id)
}

func (s *Store) SetPollApproved(ctx context.Context, id string, approved bool) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return (&Conn{q: s.db}).SetPollApproved(ctx, id, approved)
}

func (s *Store) CountResponses(ctx context.Context, email, pollID string) (int, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return (&Conn{q: s.db}).CountResponses(ctx, email, pollID)
}

func (s *Store) ListApprovedPolls(ctx context.Context, email string, hasVoted bool) ([]models.VisiblePoll, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return (&Conn{q: s.db}).ListApprovedPolls(ctx, email, hasVoted)
}

func (s *Store) AggregateResults(ctx context.Context, pollID string) (aCount, bCount int, err error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return (&Conn{q: s.db}).AggregateResults(ctx, pollID)
}

// Conn runs queries against a pool or a transaction
type Conn struct {
	q Querier
}

func (c *Conn) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := c.get(ctx, &u, `
		SELECT email, password_hash, name, created_at
		FROM app_user
		WHERE email = $1
	`, email)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// InsertUser returns ErrConflict if the email is already registered
func (c *Conn) InsertUser(ctx context.Context, u models.User) (*models.User, error) {
	_, err := c.q.ExecContext(ctx, `
		INSERT INTO app_user (email, password_hash, name, created_at)
		VALUES ($1, $2, $3, $4)
	`, u.Email, u.PasswordHash, u.Name, u.CreatedAt)
	if err != nil {
		return nil, CastErr(err)
	}
	return &u, nil
}

func (c *Conn) InsertPoll(ctx context.Context, p models.Poll) (*models.Poll, error) {
	_, err := c.q.ExecContext(ctx, `
		INSERT INTO poll (id, question_text, prompt_a, prompt_b, is_approved, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, p.ID, p.QuestionText, p.PromptA, p.PromptB, p.IsApproved, p.CreatedAt)
	if err != nil {
		return nil, CastErr(err)
	}
	return &p, nil
}

func (c *Conn) GetPoll(ctx context.Context, id string) (*models.Poll, error) {
	var p models.Poll
	err := c.get(ctx, &p, `
		SELECT id, question_text, prompt_a, prompt_b, is_approved, created_at
		FROM poll
		WHERE id = $1
	`, id)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Conn) SetPollApproved(ctx context.Context, id string, approved bool) error {
	res, err := c.q.ExecContext(ctx, `
		UPDATE poll SET is_approved = $1 WHERE id = $2
	`, approved, id)
	if err != nil {
		return CastErr(err)
	}
	if n, err := res.RowsAffected(); err == nil && n != 1 {
		return ErrNotFound
	}
	return nil
}

func (c *Conn) CountResponses(ctx context.Context, email, pollID string) (int, error) {
	var count int
	row := c.q.QueryRowxContext(ctx, `
		SELECT COUNT(*) FROM poll_response WHERE user_email = $1 AND poll_id = $2
	`, email, pollID)
	if err := row.Err(); err != nil {
		return 0, CastErr(err)
	}
	if err := row.Scan(&count); err != nil {
		return 0, castScanErr(err)
	}
	return count, nil
}

// InsertResponse records r unless the user already answered the poll, in
// which case it returns ErrConflict. Uniqueness is decided by the database in
// the same statement, so two concurrent inserts can't both succeed.
func (c *Conn) InsertResponse(ctx context.Context, r models.PollResponse) (*models.PollResponse, error) {
	res, err := c.q.ExecContext(ctx, `
		INSERT INTO poll_response (id, poll_id, user_email, choice, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_email, poll_id) DO NOTHING
	`, r.ID, r.PollID, r.UserEmail, string(r.Choice), r.CreatedAt)
	if err != nil {
		return nil, CastErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, CastErr(err)
	}
	if n == 0 {
		return nil, ErrConflict
	}
	return &r, nil
}

type visiblePollRow struct {
	ID           string         `db:"id"`
	QuestionText string         `db:"question_text"`
	PromptA      string         `db:"prompt_a"`
	PromptB      string         `db:"prompt_b"`
	CreatedAt    time.Time      `db:"created_at"`
	Choice       sql.NullString `db:"choice"`
}

// ListApprovedPolls returns approved polls where the caller has exactly zero
// (hasVoted false) or exactly one (hasVoted true) response, newest first.
func (c *Conn) ListApprovedPolls(ctx context.Context, email string, hasVoted bool) ([]models.VisiblePoll, error) {
	want := 0
	if hasVoted {
		want = 1
	}

	rows, err := c.q.QueryxContext(ctx, `
		SELECT p.id, p.question_text, p.prompt_a, p.prompt_b, p.created_at,
		       (SELECT r.choice FROM poll_response r
		        WHERE r.poll_id = p.id AND r.user_email = $1) AS choice
		FROM poll p
		WHERE p.is_approved
		  AND (SELECT COUNT(*) FROM poll_response r
		       WHERE r.poll_id = p.id AND r.user_email = $1) = $2
		ORDER BY p.created_at DESC, p.id
	`, email, want)
	if err != nil {
		return nil, CastErr(err)
	}
	defer rows.Close()

	polls := []models.VisiblePoll{}
	for rows.Next() {
		var row visiblePollRow
		if err := rows.StructScan(&row); err != nil {
			return nil, castScanErr(err)
		}

		vp := models.VisiblePoll{
			ID:           row.ID,
			QuestionText: row.QuestionText,
			PromptA:      row.PromptA,
			PromptB:      row.PromptB,
			CreatedAt:    row.CreatedAt,
		}
		if hasVoted {
			choice := models.Choice(row.Choice.String)
			if !row.Choice.Valid || !choice.Valid() {
				return nil, fmt.Errorf("%w: poll %s has response choice %q", ErrShape, row.ID, row.Choice.String)
			}
			vp.UserResponse = &models.UserChoice{Choice: choice}
		}
		polls = append(polls, vp)
	}
	if err := rows.Err(); err != nil {
		return nil, CastErr(err)
	}

	return polls, nil
}

// AggregateResults counts A and B responses over every response to the poll.
// The caller decides whether the poll is allowed to be counted yet.
func (c *Conn) AggregateResults(ctx context.Context, pollID string) (aCount, bCount int, err error) {
	row := c.q.QueryRowxContext(ctx, `
		SELECT COALESCE(SUM(CASE WHEN choice = 'A' THEN 1 ELSE 0 END), 0) AS a_count,
		       COALESCE(SUM(CASE WHEN choice = 'B' THEN 1 ELSE 0 END), 0) AS b_count
		FROM poll_response
		WHERE poll_id = $1
	`, pollID)
	if err := row.Err(); err != nil {
		return 0, 0, CastErr(err)
	}
	if err := row.Scan(&aCount, &bCount); err != nil {
		return 0, 0, castScanErr(err)
	}
	return aCount, bCount, nil
}

func (c *Conn) get(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	row := c.q.QueryRowxContext(ctx, query, args...)
	if err := row.Err(); err != nil {
		return CastErr(err)
	}
	if err := row.StructScan(dest); err != nil {
		return castScanErr(err)
	}
	return nil
}
