// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

An optional .env file is loaded first, then ParseFlags returns a Config:

	if err := cliparse.LoadDotEnv(".env"); err != nil {
		log.Fatal(err)
	}
	cfg, err := cliparse.ParseFlags(os.Args[1:])

Variables already present in the environment win over the .env file.

# CLI Flags and Environment Variables

	-p                      PORT                   Server port (default 3318)
	-d                      DATABASE_URL           Database URL (required)
	-t                      DATABASE_TYPE          sqlite, postgres or pgx (default sqlite)
	--max-conns             MAX_OPEN_CONNS         Pool size (default 10)
	--store-timeout         STORE_TIMEOUT          Per store call timeout (default 5s)
	--session-backend       SESSION_BACKEND        memory or redis (default memory)
	--redis                 REDIS_ADDR             Redis address (required for redis)
	--session-ttl           SESSION_TTL            Session lifetime (default 168h)
	--cookie-secure         COOKIE_SECURE          Secure flag on the session cookie
	--origins               ALLOWED_ORIGINS        Comma separated CORS origins
	--moderator-key         MODERATOR_KEY          Enables POST /polls/{id}/approve
	--propose-requires-auth PROPOSE_REQUIRES_AUTH  Gate POST /polls behind a session
	--log-format            LOG_FORMAT             text or json (default text)

CLI flags take precedence over environment variables.

# Validation

ParseFlags returns an error if:

  - DATABASE_URL is missing
  - DATABASE_TYPE or SESSION_BACKEND is not a known value
  - the redis backend is selected without REDIS_ADDR
  - a duration, integer or boolean value doesn't parse
*/
package cliparse
