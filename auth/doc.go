// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides password hashing and token generation utilities.

# Passwords

Passwords are hashed with argon2id. Every call draws a fresh salt, so the same
password never hashes to the same digest:

	h, err := auth.NewHasher(auth.DefaultParams)
	digest, err := h.Hash(password)
	ok := h.Verify(password, digest)

Digests are PHC strings that carry their own parameters and salt:

	$argon2id$v=19$m=19456,t=2,p=1$<salt>$<key>

Verify reads the parameters from the digest, so raising the cost later keeps
old digests valid. A malformed digest verifies as false instead of erroring.
NewHasher rejects parameters argon2 can't run with; the server calls it once
at startup.

# Session Tokens

Session tokens are random 32-byte (256-bit) secrets:

	token, err := auth.GenerateSessionToken()

Tokens are URL-safe base64 without padding and are stored in the session
cookie.

# Moderator Key

Poll approval is done by moderation tooling that presents a shared key:

	err := auth.ValidateModeratorKey(r.Header.Get("X-Moderator-Key"), cfg.ModeratorKey)

An empty configured key disables approval entirely.

# ID Generation

Random hex IDs:

	id, err := auth.GenerateID(16)  // 32 hex characters
*/
package auth
