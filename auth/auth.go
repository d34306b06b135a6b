// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidModeratorKey = errors.New("invalid moderator key")
)

// GenerateID creates a random hex ID of the specified byte length
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// GenerateSessionToken creates a random secure token for a login session
func GenerateSessionToken() (string, error) {
	b := make([]byte, 32) // 256 bits of entropy
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	// URL-safe base64 without padding so it can live in a cookie as-is
	return strings.TrimRight(base64.URLEncoding.EncodeToString(b), "="), nil
}

// ValidateModeratorKey checks the key sent by the moderation tooling against
// the configured one. An empty configured key rejects everything.
func ValidateModeratorKey(given, expected string) error {
	if expected == "" {
		return ErrInvalidModeratorKey
	}
	// Compare digests so the comparison time doesn't depend on key length
	g := sha256.Sum256([]byte(given))
	e := sha256.Sum256([]byte(expected))
	if !hmac.Equal(g[:], e[:]) {
		return ErrInvalidModeratorKey
	}
	return nil
}
