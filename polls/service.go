// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package polls

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/thisorthat/auth"
	"github.com/danielhkuo/thisorthat/db"
	"github.com/danielhkuo/thisorthat/models"
)

// errPollNotFound covers both a missing poll and one whose results are
// still sealed, so the two can't be told apart.
var errPollNotFound = fmt.Errorf("poll not found: %w", models.ErrNotFound)

// Service runs the poll and account operations against the store.
type Service struct {
	store  *db.Store
	hasher *auth.Hasher

	// Now is the clock used for creation times and the results gate
	Now func() time.Time

	dummyDigest string
}

// NewService builds a Service. It hashes a throwaway password once so that
// logins for unknown emails cost the same as real ones.
func NewService(store *db.Store, hasher *auth.Hasher) (*Service, error) {
	dummy, err := hasher.Hash("not-a-real-password")
	if err != nil {
		return nil, fmt.Errorf("failed to prepare dummy digest: %w", err)
	}
	return &Service{
		store:       store,
		hasher:      hasher,
		Now:         time.Now,
		dummyDigest: dummy,
	}, nil
}

func (s *Service) now() time.Time {
	return s.Now().UTC()
}

// ProposeInput is a poll suggestion
type ProposeInput struct {
	QuestionText string
	PromptA      string
	PromptB      string
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an account. Email is trimmed and lowercased; a second
// registration for the same email is a conflict.
func (s *Service) Register(ctx context.Context, email, password, name string) (*models.User, error) {
	email = normalizeEmail(email)
	name = strings.TrimSpace(name)

	if email == "" || password == "" || name == "" {
		return nil, fmt.Errorf("email, password and name are required: %w", models.ErrValidation)
	}
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("email must contain @: %w", models.ErrValidation)
	}

	digest, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.store.InsertUser(ctx, models.User{
		Email:        email,
		PasswordHash: digest,
		Name:         name,
		CreatedAt:    s.now(),
	})
	if errors.Is(err, db.ErrConflict) {
		return nil, fmt.Errorf("email already registered: %w", models.ErrConflict)
	}
	if err != nil {
		return nil, storeErr("insert user", err)
	}

	slog.Info("user registered", "email", email)
	return user, nil
}

// Authenticate checks an email and password. An unknown email and a wrong
// password return the same error.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("email and password are required: %w", models.ErrValidation)
	}

	user, err := s.store.FindUserByEmail(ctx, email)
	if errors.Is(err, db.ErrNotFound) {
		s.hasher.Verify(password, s.dummyDigest)
		return nil, models.ErrInvalidCredentials
	}
	if err != nil {
		return nil, storeErr("find user", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, models.ErrInvalidCredentials
	}
	return user, nil
}

// CurrentUser loads the account behind an authenticated session. A session
// whose user no longer resolves counts as unauthenticated.
func (s *Service) CurrentUser(ctx context.Context, email string) (*models.User, error) {
	user, err := s.store.FindUserByEmail(ctx, email)
	if errors.Is(err, db.ErrNotFound) {
		return nil, models.ErrAuthenticationRequired
	}
	if err != nil {
		return nil, storeErr("find user", err)
	}
	return user, nil
}

// Propose inserts an unapproved poll
func (s *Service) Propose(ctx context.Context, in ProposeInput) (*models.Poll, error) {
	poll := models.Poll{
		ID:           uuid.NewString(),
		QuestionText: strings.TrimSpace(in.QuestionText),
		PromptA:      strings.TrimSpace(in.PromptA),
		PromptB:      strings.TrimSpace(in.PromptB),
		IsApproved:   false,
		CreatedAt:    s.now(),
	}

	switch {
	case poll.QuestionText == "":
		return nil, fmt.Errorf("question_text is required: %w", models.ErrValidation)
	case poll.PromptA == "":
		return nil, fmt.Errorf("prompt_a is required: %w", models.ErrValidation)
	case poll.PromptB == "":
		return nil, fmt.Errorf("prompt_b is required: %w", models.ErrValidation)
	}

	created, err := s.store.InsertPoll(ctx, poll)
	if err != nil {
		return nil, storeErr("insert poll", err)
	}

	slog.Info("poll proposed", "poll_id", created.ID)
	return created, nil
}

// CastVote records email's choice on a poll. The poll and the user are both
// looked up inside the transaction and the response is bound to what was
// found. A second vote by the same user on the same poll is a conflict.
func (s *Service) CastVote(ctx context.Context, email, pollID string, choice bool) (*models.PollResponse, error) {
	pollID = strings.TrimSpace(pollID)
	if pollID == "" {
		return nil, fmt.Errorf("poll_id is required: %w", models.ErrValidation)
	}
	if _, err := uuid.Parse(pollID); err != nil {
		return nil, errPollNotFound
	}

	var created *models.PollResponse
	err := s.store.WithTx(ctx, func(ctx context.Context, tx *db.Conn) error {
		poll, err := tx.GetPoll(ctx, pollID)
		if errors.Is(err, db.ErrNotFound) {
			return errPollNotFound
		}
		if err != nil {
			return storeErr("get poll", err)
		}

		user, err := tx.FindUserByEmail(ctx, email)
		if errors.Is(err, db.ErrNotFound) {
			return models.ErrAuthenticationRequired
		}
		if err != nil {
			return storeErr("find user", err)
		}

		created, err = tx.InsertResponse(ctx, models.PollResponse{
			ID:        uuid.NewString(),
			PollID:    poll.ID,
			UserEmail: user.Email,
			Choice:    models.ChoiceFromBool(choice),
			CreatedAt: s.now(),
		})
		if errors.Is(err, db.ErrConflict) {
			return fmt.Errorf("already voted in this poll: %w", models.ErrConflict)
		}
		if err != nil {
			return storeErr("insert response", err)
		}
		return nil
	})
	if err != nil {
		return nil, storeErr("cast vote", err)
	}

	slog.Info("vote cast", "poll_id", created.PollID, "choice", created.Choice)
	return created, nil
}

// ListVisible returns approved polls the caller has not voted in
// (hasVotedIn false) or has voted in, with their choice (hasVotedIn true).
func (s *Service) ListVisible(ctx context.Context, email string, hasVotedIn bool) ([]models.VisiblePoll, error) {
	polls, err := s.store.ListApprovedPolls(ctx, email, hasVotedIn)
	if err != nil {
		return nil, storeErr("list polls", err)
	}
	return polls, nil
}

// Results returns the vote counts of a poll whose voting window has closed.
// Before then the poll is reported as not found and nothing is counted.
func (s *Service) Results(ctx context.Context, pollID string) (*models.PollResults, error) {
	pollID = strings.TrimSpace(pollID)
	if _, err := uuid.Parse(pollID); err != nil {
		return nil, errPollNotFound
	}

	poll, err := s.store.GetPoll(ctx, pollID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, errPollNotFound
	}
	if err != nil {
		return nil, storeErr("get poll", err)
	}

	if s.now().Before(poll.ClosesAt()) {
		return nil, errPollNotFound
	}

	aCount, bCount, err := s.store.AggregateResults(ctx, poll.ID)
	if err != nil {
		return nil, storeErr("aggregate results", err)
	}

	return &models.PollResults{
		ID:           poll.ID,
		QuestionText: poll.QuestionText,
		PromptA:      poll.PromptA,
		PromptB:      poll.PromptB,
		ACount:       aCount,
		BCount:       bCount,
	}, nil
}

// Approve marks a poll as approved so it shows up in listings
func (s *Service) Approve(ctx context.Context, pollID string) error {
	pollID = strings.TrimSpace(pollID)
	if _, err := uuid.Parse(pollID); err != nil {
		return errPollNotFound
	}

	err := s.store.SetPollApproved(ctx, pollID, true)
	if errors.Is(err, db.ErrNotFound) {
		return errPollNotFound
	}
	if err != nil {
		return storeErr("approve poll", err)
	}

	slog.Info("poll approved", "poll_id", pollID)
	return nil
}

// storeErr translates store errors into the models error kinds. Errors that
// already carry a kind pass through unchanged.
func storeErr(op string, err error) error {
	for _, kind := range []error{
		models.ErrAuthenticationRequired,
		models.ErrInvalidCredentials,
		models.ErrConflict,
		models.ErrNotFound,
		models.ErrValidation,
		models.ErrUpstreamUnavailable,
		models.ErrUpstreamShape,
	} {
		if errors.Is(err, kind) {
			return err
		}
	}

	switch {
	case errors.Is(err, db.ErrNotFound):
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	case errors.Is(err, db.ErrConflict):
		return fmt.Errorf("%s: %w", op, models.ErrConflict)
	case errors.Is(err, db.ErrShape):
		return fmt.Errorf("%s: %w: %v", op, models.ErrUpstreamShape, err)
	default:
		return fmt.Errorf("%s: %w: %v", op, models.ErrUpstreamUnavailable, err)
	}
}
