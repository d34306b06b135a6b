// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

var (
	ErrInvalidParams = errors.New("invalid argon2 parameters")
	ErrInvalidDigest = errors.New("invalid password digest")
)

// Upper bounds accepted when decoding a stored digest. A digest claiming more
// than this is treated as malformed rather than allowed to exhaust memory.
const (
	maxMemoryKiB   = 1 << 20 // 1 GiB
	maxIterations  = 64
	maxParallelism = 64
	maxKeyLen      = 128
)

// Params are the argon2id cost parameters
type Params struct {
	Memory      uint32 // KiB
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultParams follow the OWASP argon2id baseline (19 MiB, t=2, p=1)
var DefaultParams = Params{
	Memory:      19 * 1024,
	Iterations:  2,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

// Validate rejects parameter sets argon2 can't run with. Call it once at
// startup; a failure is a configuration error.
func (p Params) Validate() error {
	switch {
	case p.Parallelism < 1:
		return fmt.Errorf("%w: parallelism must be at least 1", ErrInvalidParams)
	case p.Iterations < 1:
		return fmt.Errorf("%w: iterations must be at least 1", ErrInvalidParams)
	case p.Memory < 8*uint32(p.Parallelism):
		return fmt.Errorf("%w: memory must be at least %d KiB", ErrInvalidParams, 8*uint32(p.Parallelism))
	case p.SaltLength < 8:
		return fmt.Errorf("%w: salt must be at least 8 bytes", ErrInvalidParams)
	case p.KeyLength < 16:
		return fmt.Errorf("%w: key must be at least 16 bytes", ErrInvalidParams)
	}
	return nil
}

// Hasher hashes and verifies passwords
type Hasher struct {
	Params Params
}

// NewHasher validates params and returns a Hasher using them
func NewHasher(p Params) (*Hasher, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Hasher{Params: p}, nil
}

// Hash derives a digest with a fresh random salt. The result is a PHC string:
//
//	$argon2id$v=19$m=19456,t=2,p=1$<salt>$<key>
func (h *Hasher) Hash(password string) (string, error) {
	salt := make([]byte, h.Params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, h.Params.Iterations, h.Params.Memory, h.Params.Parallelism, h.Params.KeyLength)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, h.Params.Memory, h.Params.Iterations, h.Params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify recomputes the digest with the parameters embedded in it and
// compares in constant time. Any malformed digest verifies as false.
func (h *Hasher) Verify(password, digest string) bool {
	p, salt, key, err := decodeDigest(digest)
	if err != nil {
		return false
	}

	other := argon2.IDKey([]byte(password), salt, p.Iterations, p.Memory, p.Parallelism, uint32(len(key)))
	return subtle.ConstantTimeCompare(key, other) == 1
}

func decodeDigest(digest string) (Params, []byte, []byte, error) {
	var p Params

	parts := strings.Split(digest, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return p, nil, nil, ErrInvalidDigest
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return p, nil, nil, ErrInvalidDigest
	}

	var parallelism uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Iterations, &parallelism); err != nil {
		return p, nil, nil, ErrInvalidDigest
	}
	if parallelism < 1 || parallelism > maxParallelism ||
		p.Iterations < 1 || p.Iterations > maxIterations ||
		p.Memory < 8*parallelism || p.Memory > maxMemoryKiB {
		return p, nil, nil, ErrInvalidDigest
	}
	p.Parallelism = uint8(parallelism)

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return p, nil, nil, ErrInvalidDigest
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 || len(key) > maxKeyLen {
		return p, nil, nil, ErrInvalidDigest
	}
	p.SaltLength = uint32(len(salt))
	p.KeyLength = uint32(len(key))

	return p, salt, key, nil
}
