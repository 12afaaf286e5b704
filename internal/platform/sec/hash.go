// Copyright (c) 2026 MotoFleet. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/sync/semaphore"
)

// # Password Hashing Port

// PasswordHasher is the one-way hashing contract for passwords.
//
// Implementations must be salted and memory-hard. Neither the plaintext nor the
// digest may ever be logged or returned to clients.
type PasswordHasher interface {
	// Hash returns an opaque, self-describing digest. Two calls with the same
	// plaintext return different digests.
	Hash(context context.Context, plaintext string) (string, error)

	// Verify reports whether plaintext matches digest. A malformed digest
	// returns false together with [ErrInvalidHash].
	Verify(context context.Context, plaintext, digest string) (bool, error)
}

var (
	// ErrEmptyPassword is returned when hashing an empty plaintext.
	ErrEmptyPassword = errors.New("sec: password cannot be empty")

	// ErrInvalidHash is returned when a stored digest cannot be parsed.
	ErrInvalidHash = errors.New("sec: invalid password hash")
)

// # Argon2id

// Argon2Params tunes the argon2id cost.
type Argon2Params struct {
	MemoryKiB uint32
	Time      uint32
	Threads   uint8
	SaltLen   uint32
	KeyLen    uint32
}

// DefaultArgon2Params are the OWASP-recommended argon2id settings (64 MiB, t=1, p=4).
var DefaultArgon2Params = Argon2Params{
	MemoryKiB: 64 * 1024,
	Time:      1,
	Threads:   4,
	SaltLen:   16,
	KeyLen:    32,
}

// Argon2Hasher implements [PasswordHasher] using argon2id and PHC-encoded digests:
//
//	$argon2id$v=19$m=65536,t=1,p=4$<salt>$<key>
//
// # Concurrency
//
// Each hash allocates MemoryKiB of memory. A weighted semaphore caps how many
// computations run at once; excess callers wait until a slot frees up or their
// context is cancelled.
type Argon2Hasher struct {
	params Argon2Params
	slots  *semaphore.Weighted
}

// NewArgon2Hasher creates a hasher. maxConcurrent <= 0 defaults to GOMAXPROCS.
func NewArgon2Hasher(params Argon2Params, maxConcurrent int) *Argon2Hasher {
	if maxConcurrent <= 0 {
		maxConcurrent = runtime.GOMAXPROCS(0)
	}
	if params.SaltLen == 0 {
		params.SaltLen = DefaultArgon2Params.SaltLen
	}
	if params.KeyLen == 0 {
		params.KeyLen = DefaultArgon2Params.KeyLen
	}
	return &Argon2Hasher{
		params: params,
		slots:  semaphore.NewWeighted(int64(maxConcurrent)),
	}
}

// Hash produces an argon2id digest of plaintext with a fresh random salt.
func (h *Argon2Hasher) Hash(context context.Context, plaintext string) (string, error) {
	if plaintext == "" {
		return "", ErrEmptyPassword
	}

	salt := make([]byte, h.params.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("sec: failed to generate salt: %w", err)
	}

	if err := h.slots.Acquire(context, 1); err != nil {
		return "", fmt.Errorf("sec: hash cancelled: %w", err)
	}
	key := argon2.IDKey([]byte(plaintext), salt, h.params.Time, h.params.MemoryKiB, h.params.Threads, h.params.KeyLen)
	h.slots.Release(1)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.MemoryKiB,
		h.params.Time,
		h.params.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify recomputes the key with the digest's own parameters and compares in
// constant time.
func (h *Argon2Hasher) Verify(context context.Context, plaintext, digest string) (bool, error) {
	parsed, err := parseArgon2Digest(digest)
	if err != nil {
		return false, err
	}

	if err := h.slots.Acquire(context, 1); err != nil {
		return false, fmt.Errorf("sec: verify cancelled: %w", err)
	}
	computed := argon2.IDKey([]byte(plaintext), parsed.salt, parsed.time, parsed.memory, parsed.threads, uint32(len(parsed.key)))
	h.slots.Release(1)

	return subtle.ConstantTimeCompare(computed, parsed.key) == 1, nil
}

type argon2Digest struct {
	memory  uint32
	time    uint32
	threads uint8
	salt    []byte
	key     []byte
}

// parseArgon2Digest decodes a PHC string produced by [Argon2Hasher.Hash].
func parseArgon2Digest(digest string) (*argon2Digest, error) {
	parts := strings.Split(digest, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return nil, ErrInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return nil, ErrInvalidHash
	}

	var memory, time, threads uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return nil, ErrInvalidHash
	}
	if memory == 0 || time == 0 || threads == 0 || threads > 255 {
		return nil, ErrInvalidHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return nil, ErrInvalidHash
	}

	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 || len(key) > 1024 {
		return nil, ErrInvalidHash
	}

	return &argon2Digest{
		memory:  memory,
		time:    time,
		threads: uint8(threads),
		salt:    salt,
		key:     key,
	}, nil
}
