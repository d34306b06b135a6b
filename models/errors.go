// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "errors"

// Error kinds returned by the poll engine and the session gate. Callers wrap
// them with context and match with errors.Is.
var (
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrInvalidCredentials     = errors.New("invalid email or password")
	ErrConflict               = errors.New("conflict")
	ErrNotFound               = errors.New("not found")
	ErrValidation             = errors.New("validation failed")
	ErrUpstreamUnavailable    = errors.New("upstream unavailable")
	ErrUpstreamShape          = errors.New("unexpected upstream data")
)
