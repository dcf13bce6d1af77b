// Package password implements the salted key-derivation pipeline used to
// store and verify user passwords: PBKDF2-SHA256 with a per-user random
// salt and a constant-time comparison on verification.
package password

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"
	"runtime"

	"golang.org/x/crypto/pbkdf2"
)

// Derivation parameters. Signup and login must derive with identical
// parameters or stored hashes become unverifiable, so they live here and
// nowhere else.
const (
	// Iterations is the PBKDF2 iteration count.
	Iterations = 310000

	// KeyLength is the derived hash length in bytes.
	KeyLength = 16

	// SaltLength is the per-user salt length in bytes.
	SaltLength = 16
)

// Hasher derives and verifies password hashes. Derivations are CPU-bound
// and deliberately slow, so a counting semaphore caps how many run at once;
// waiting respects the request context.
type Hasher struct {
	iterations int
	keyLength  int
	sem        chan struct{}
}

// NewHasher creates a Hasher with the production parameters.
// maxConcurrent caps simultaneous derivations; 0 selects 2x GOMAXPROCS.
func NewHasher(maxConcurrent int) *Hasher {
	if maxConcurrent <= 0 {
		maxConcurrent = 2 * runtime.GOMAXPROCS(0)
	}
	return &Hasher{
		iterations: Iterations,
		keyLength:  KeyLength,
		sem:        make(chan struct{}, maxConcurrent),
	}
}

// newHasherWithParams exists for tests that cannot afford the full
// iteration count.
func newHasherWithParams(iterations, keyLength, maxConcurrent int) *Hasher {
	h := NewHasher(maxConcurrent)
	h.iterations = iterations
	h.keyLength = keyLength
	return h
}

// NewSalt returns a fresh cryptographically random salt.
func (h *Hasher) NewSalt() ([]byte, error) {
	salt := make([]byte, SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return salt, nil
}

// Derive computes the PBKDF2 hash of password under salt. It blocks until a
// derivation slot is free or ctx is done.
func (h *Hasher) Derive(ctx context.Context, password string, salt []byte) ([]byte, error) {
	if len(salt) == 0 {
		return nil, fmt.Errorf("empty salt")
	}
	select {
	case h.sem <- struct{}{}:
		defer func() { <-h.sem }()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return pbkdf2.Key([]byte(password), salt, h.iterations, h.keyLength, sha256.New), nil
}

// Verify recomputes the hash of password under salt and compares it against
// expected in constant time. The bool result is only meaningful when err is
// nil.
func (h *Hasher) Verify(ctx context.Context, password string, salt, expected []byte) (bool, error) {
	got, err := h.Derive(ctx, password, salt)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare(got, expected) == 1, nil
}
