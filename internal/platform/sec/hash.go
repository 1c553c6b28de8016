// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"

	"github.com/taibuivan/usersapi/internal/platform/apperr"
)

// ErrMalformedDigest is the cause reported when a stored digest cannot be decoded.
var ErrMalformedDigest = errors.New("sec: malformed password digest")

const argon2idPrefix = "$argon2id$"

// HashParams are the Argon2id cost parameters.
type HashParams struct {
	// Memory in KiB.
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultHashParams follows the OWASP Argon2id baseline (19 MiB, t=2, p=1).
var DefaultHashParams = HashParams{
	Memory:      19 * 1024,
	Iterations:  2,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

// PasswordHasher hashes new passwords with Argon2id and verifies both
// Argon2id and bcrypt digests.
//
// # Concurrency
//
// Hashing is memory-hard. A weighted semaphore caps how many derivations run
// at once; waiting honours the caller's context.
type PasswordHasher struct {
	params HashParams
	slots  *semaphore.Weighted
}

// NewPasswordHasher creates a hasher allowing maxConcurrent derivations in parallel.
func NewPasswordHasher(params HashParams, maxConcurrent int64) *PasswordHasher {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &PasswordHasher{
		params: params,
		slots:  semaphore.NewWeighted(maxConcurrent),
	}
}

// Hash derives a PHC-formatted Argon2id digest from plainTextPassword:
//
//	$argon2id$v=19$m=19456,t=2,p=1$<salt>$<key>
func (hasher *PasswordHasher) Hash(ctx context.Context, plainTextPassword string) (string, error) {
	salt := make([]byte, hasher.params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", apperr.CredentialHashing(fmt.Errorf("sec_hash_salt_failed: %w", err))
	}

	if err := hasher.slots.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("sec_hash_acquire_failed: %w", err)
	}
	defer hasher.slots.Release(1)

	p := hasher.params
	key := argon2.IDKey([]byte(plainTextPassword), salt, p.Iterations, p.Memory, p.Parallelism, p.KeyLength)

	return fmt.Sprintf("%sv=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2idPrefix, argon2.Version, p.Memory, p.Iterations, p.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether plainTextPassword matches digest.
//
// A mismatch is (false, nil). A digest that cannot be decoded is a
// CREDENTIAL_HASHING_ERROR.
func (hasher *PasswordHasher) Verify(ctx context.Context, plainTextPassword, digest string) (bool, error) {
	if err := hasher.slots.Acquire(ctx, 1); err != nil {
		return false, fmt.Errorf("sec_verify_acquire_failed: %w", err)
	}
	defer hasher.slots.Release(1)

	if strings.HasPrefix(digest, argon2idPrefix) {
		return verifyArgon2id(plainTextPassword, digest)
	}

	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(plainTextPassword))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, apperr.CredentialHashing(fmt.Errorf("sec_verify_bcrypt_failed: %w", err))
	}
}

func verifyArgon2id(plainTextPassword, digest string) (bool, error) {
	// "", "argon2id", "v=19", "m=..,t=..,p=..", salt, key
	parts := strings.Split(digest, "$")
	if len(parts) != 6 {
		return false, apperr.CredentialHashing(ErrMalformedDigest)
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false, apperr.CredentialHashing(ErrMalformedDigest)
	}

	var p HashParams
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Iterations, &p.Parallelism); err != nil || p.Iterations < 1 || p.Parallelism < 1 {
		return false, apperr.CredentialHashing(ErrMalformedDigest)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, apperr.CredentialHashing(ErrMalformedDigest)
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(expected) == 0 {
		return false, apperr.CredentialHashing(ErrMalformedDigest)
	}

	actual := argon2.IDKey([]byte(plainTextPassword), salt, p.Iterations, p.Memory, p.Parallelism, uint32(len(expected)))

	return subtle.ConstantTimeCompare(actual, expected) == 1, nil
}
