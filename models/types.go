// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Choice is one of the two sides of a poll
type Choice string

const (
	ChoiceA Choice = "A"
	ChoiceB Choice = "B"
)

// ChoiceFromBool maps the wire boolean onto a Choice (true is A)
func ChoiceFromBool(b bool) Choice {
	if b {
		return ChoiceA
	}
	return ChoiceB
}

// Valid reports whether c is A or B
func (c Choice) Valid() bool {
	return c == ChoiceA || c == ChoiceB
}

// VotingWindow is how long results stay sealed after a poll is created
const VotingWindow = 168 * time.Hour

// Request types

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CreatePollRequest struct {
	QuestionText string `json:"question_text"`
	PromptA      string `json:"prompt_a"`
	PromptB      string `json:"prompt_b"`
}

// Choice true votes for prompt_a, false for prompt_b
type CastVoteRequest struct {
	PollID string `json:"poll_id"`
	Choice *bool  `json:"choice"`
}

// Response types

type UserResponse struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type CreatePollResponse struct {
	PollID string `json:"poll_id"`
}

type CastVoteResponse struct {
	ResponseID string `json:"response_id"`
	PollID     string `json:"poll_id"`
	Choice     Choice `json:"choice"`
}

// Domain types

type User struct {
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"` // Never expose in JSON
	Name         string    `db:"name" json:"name"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

type Poll struct {
	ID           string    `db:"id" json:"id"`
	QuestionText string    `db:"question_text" json:"question_text"`
	PromptA      string    `db:"prompt_a" json:"prompt_a"`
	PromptB      string    `db:"prompt_b" json:"prompt_b"`
	IsApproved   bool      `db:"is_approved" json:"is_approved"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// ClosesAt is the moment results become visible
func (p Poll) ClosesAt() time.Time {
	return p.CreatedAt.Add(VotingWindow)
}

type PollResponse struct {
	ID        string    `db:"id" json:"id"`
	PollID    string    `db:"poll_id" json:"poll_id"`
	UserEmail string    `db:"user_email" json:"-"`
	Choice    Choice    `db:"choice" json:"choice"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type UserChoice struct {
	Choice Choice `json:"choice"`
}

// VisiblePoll is an approved poll as seen by one caller. UserResponse is set
// only when the caller has voted in it.
type VisiblePoll struct {
	ID           string      `json:"id"`
	QuestionText string      `json:"question_text"`
	PromptA      string      `json:"prompt_a"`
	PromptB      string      `json:"prompt_b"`
	CreatedAt    time.Time   `json:"created_at"`
	UserResponse *UserChoice `json:"user_response,omitempty"`
}

type PollResults struct {
	ID           string `json:"id"`
	QuestionText string `json:"question_text"`
	PromptA      string `json:"prompt_a"`
	PromptB      string `json:"prompt_b"`
	ACount       int    `json:"a_count"`
	BCount       int    `json:"b_count"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
