// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the thisorthat API server.

thisorthat is an A/B polling service. Users register, log in, propose
two-choice polls and vote once per poll. Results for a poll stay hidden until
its one-week voting window has closed.

# Starting the Server

By default the server listens on 3318, treats the database URL as a SQLite
file and keeps sessions in memory:

	DATABASE_URL=thisorthat.db go run .

Against PostgreSQL and Redis:

	DATABASE_TYPE=pgx DATABASE_URL=postgres://... \
	SESSION_BACKEND=redis REDIS_ADDR=localhost:6379 go run .

A .env file in the working directory is loaded first if present; variables
already set in the environment take precedence.

# Configuration

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite, postgres or pgx
  - DATABASE_URL (-d): connection string or SQLite path (required)
  - REDIS_ADDR (--redis): Redis address for the redis session backend
  - SESSION_BACKEND (--session-backend): memory or redis
  - SESSION_TTL (--session-ttl): session lifetime (default: 168h)
  - COOKIE_SECURE (--cookie-secure): mark the session cookie Secure
  - ALLOWED_ORIGINS (--origins): comma-separated CORS allow-list
  - MODERATOR_KEY (--moderator-key): enables POST /polls/{id}/approve
  - PROPOSE_REQUIRES_AUTH (--propose-requires-auth): gate POST /polls
  - LOG_FORMAT (--log-format): text or json

# Architecture

  - handlers: HTTP request handlers (accounts, polls, voting, results)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - session: cookie sessions and the authentication gate
  - polls: poll and account rules
  - db: schema and the credential/poll store
  - auth: argon2id password hashing and token generation
  - models: request/response and domain types
  - cliparse: configuration parsing

See package documentation for each component.
*/
package main
