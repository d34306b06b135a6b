// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - RegisterRequest: email, password, name
  - LoginRequest: email, password
  - CreatePollRequest: question_text, prompt_a, prompt_b
  - CastVoteRequest: poll_id, choice (true = A, false = B)

# Response Types

  - UserResponse: email, name
  - CreatePollResponse: poll_id
  - CastVoteResponse: response_id, poll_id, choice
  - ErrorResponse: error, message

# Domain Types

  - User: account keyed by email, with an argon2id password digest
  - Poll: question with two prompts, approval flag and creation time
  - PollResponse: one user's choice on one poll
  - VisiblePoll: approved poll plus the caller's own choice, if any
  - PollResults: per-side counts, only produced after the voting window

# Errors

Every engine operation fails with one of the sentinel kinds:

	ErrAuthenticationRequired  401
	ErrInvalidCredentials      401
	ErrConflict                409
	ErrNotFound                404
	ErrValidation              400
	ErrUpstreamUnavailable     503
	ErrUpstreamShape           500

# Constants

	VotingWindow = 168 * time.Hour
	ChoiceA      = "A"
	ChoiceB      = "B"
*/
package models
