package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"gastronomy_backend/internal/feature/auth/domain/entity"
)

const (
	// minPasswordLength is the minimum accepted password length.
	minPasswordLength = 8

	// maxSessionsPerUser caps concurrent refresh sessions; the oldest one is
	// evicted when the cap is hit.
	maxSessionsPerUser = 5

	// refreshTokenBytes is the entropy of a refresh token (hex-encoded to
	// twice this many characters).
	refreshTokenBytes = 32
)

// refreshTokenTTL is how long a refresh session stays usable.
const refreshTokenTTL = 7 * 24 * time.Hour

// UserRepository abstracts the persistence layer for user entities.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type UserRepository interface {
	// Create persists a new user to the storage. It returns
	// ErrEmailAlreadyExists if the store's unique index rejects the email.
	Create(ctx context.Context, user *entity.User) error

	// FindByEmail retrieves a user matching the given email address.
	// It returns ErrUserNotFound if the user does not exist.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByID retrieves a user matching the given ID.
	// It returns ErrUserNotFound if the user does not exist.
	FindByID(ctx context.Context, id uint) (*entity.User, error)
}

// TokenIssuer signs bearer tokens over identity claims.
type TokenIssuer interface {
	// GenerateToken creates a signed token for the given user.
	GenerateToken(userID uint, email string) (string, error)
}

// PasswordHasher is the salt/derive/compare pipeline for password
// credentials.
type PasswordHasher interface {
	// NewSalt returns a fresh random salt.
	NewSalt() ([]byte, error)

	// Derive computes the keyed hash of password under salt.
	Derive(ctx context.Context, password string, salt []byte) ([]byte, error)

	// Verify recomputes the hash and compares it to expected in constant time.
	Verify(ctx context.Context, password string, salt, expected []byte) (bool, error)
}

// ClientInfo carries request metadata recorded on refresh sessions.
type ClientInfo struct {
	UserAgent string
	IPAddress string
}

// AuthResult is returned by every operation that authenticates a user.
// Signup and login go through the same issuance path, so both return it.
type AuthResult struct {
	Token        string
	RefreshToken string
	User         *entity.PublicUser
}

// dummySalt and dummyHash feed a throwaway derivation when the email is
// unknown, so a login against a missing account costs the same as one
// against a wrong password.
var (
	dummySalt = []byte("gastronomy-dummy")
	dummyHash = make([]byte, 16)
)

// authUsecase implements the authentication business logic.
type authUsecase struct {
	users    UserRepository
	sessions SessionRepository
	issuer   TokenIssuer
	hasher   PasswordHasher
}

// NewAuthUsecase creates a new instance of authUsecase.
func NewAuthUsecase(users UserRepository, sessions SessionRepository, issuer TokenIssuer, hasher PasswordHasher) *authUsecase {
	return &authUsecase{
		users:    users,
		sessions: sessions,
		issuer:   issuer,
		hasher:   hasher,
	}
}

// normalizeEmail fixes the case-sensitivity policy: emails are trimmed and
// lowercased before every store write and lookup, so "A@x.com" and "a@x.com"
// are the same account.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validatePassword checks that the password meets the minimum policy.
func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("%w: need at least %d characters", ErrWeakPassword, minPasswordLength)
	}
	return nil
}

// mapStoreErr translates context cancellation from store or derivation
// calls into ErrTimeout; everything else passes through.
func mapStoreErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ErrTimeout
	}
	return err
}

// Signup registers a new user: random salt, slow keyed hash, insert behind
// the store's unique index, re-fetch of the canonical record, then token
// issuance over the sanitized user.
func (u *authUsecase) Signup(ctx context.Context, email, password string, client ClientInfo) (*AuthResult, error) {
	email = normalizeEmail(email)
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	// Advisory pre-check. The unique index on email is the source of truth;
	// this only gives the common duplicate a cheap answer before hashing.
	if _, err := u.users.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailAlreadyExists
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, mapStoreErr(err)
	}

	salt, err := u.hasher.NewSalt()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHashingFailure, err)
	}
	hash, err := u.hasher.Derive(ctx, password, salt)
	if err != nil {
		if timeoutErr := mapStoreErr(err); errors.Is(timeoutErr, ErrTimeout) {
			return nil, timeoutErr
		}
		return nil, fmt.Errorf("%w: %v", ErrHashingFailure, err)
	}

	user := &entity.User{Email: email, PasswordHash: hash, Salt: salt}
	if err := u.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrEmailAlreadyExists) {
			// Lost a check-then-insert race; the index already said no.
			return nil, ErrEmailAlreadyExists
		}
		return nil, mapStoreErr(err)
	}

	// Re-fetch so the caller sees the store-canonical record (assigned ID,
	// timestamps).
	stored, err := u.users.FindByID(ctx, user.ID)
	if err != nil {
		return nil, mapStoreErr(err)
	}

	return u.issueTokens(ctx, stored, client)
}

// Login verifies a submitted password against the stored credential and, on
// success, issues tokens exactly like signup does.
//
// Per request: Received -> Lookup -> Derive -> Compare -> Success/Fail.
// Unknown email, derivation error and hash mismatch all collapse into
// ErrInvalidCredentials; only a missed deadline is reported differently.
func (u *authUsecase) Login(ctx context.Context, email, password string, client ClientInfo) (*AuthResult, error) {
	email = normalizeEmail(email)

	user, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			// Burn a full derivation so unknown emails take as long as wrong
			// passwords.
			_, _ = u.hasher.Verify(ctx, password, dummySalt, dummyHash)
			return nil, ErrInvalidCredentials
		}
		return nil, mapStoreErr(err)
	}

	ok, err := u.hasher.Verify(ctx, password, user.Salt, user.PasswordHash)
	if err != nil {
		if timeoutErr := mapStoreErr(err); errors.Is(timeoutErr, ErrTimeout) {
			return nil, timeoutErr
		}
		// A derivation error must look exactly like a mismatch.
		return nil, ErrInvalidCredentials
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	return u.issueTokens(ctx, user, client)
}

// Refresh rotates a refresh session: the presented session is revoked and a
// new session plus access token are issued for the same user.
func (u *authUsecase) Refresh(ctx context.Context, refreshToken string, client ClientInfo) (*AuthResult, error) {
	session, err := u.sessions.FindByID(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, mapStoreErr(err)
	}
	if session.IsRevoked() {
		return nil, ErrSessionRevoked
	}
	if session.IsExpired() {
		return nil, ErrSessionExpired
	}

	user, err := u.users.FindByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, mapStoreErr(err)
	}

	if err := u.sessions.Revoke(ctx, session.ID); err != nil {
		return nil, mapStoreErr(err)
	}

	return u.issueTokens(ctx, user, client)
}

// Logout revokes the presented refresh session.
func (u *authUsecase) Logout(ctx context.Context, refreshToken string) error {
	if err := u.sessions.Revoke(ctx, refreshToken); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return ErrInvalidRefreshToken
		}
		return mapStoreErr(err)
	}
	return nil
}

// CurrentUser returns the sanitized user for an authenticated ID.
func (u *authUsecase) CurrentUser(ctx context.Context, userID uint) (*entity.PublicUser, error) {
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, mapStoreErr(err)
	}
	return user.Public(), nil
}

// issueTokens is the single issuance path shared by signup, login and
// refresh: signed access token plus a fresh refresh session, over the
// sanitized user only.
func (u *authUsecase) issueTokens(ctx context.Context, user *entity.User, client ClientInfo) (*AuthResult, error) {
	token, err := u.issuer.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	session, err := newSession(user.ID, client)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	// Evict the oldest session when the cap is reached.
	if count, err := u.sessions.CountByUserID(ctx, user.ID); err == nil && count >= maxSessionsPerUser {
		if err := u.sessions.DeleteOldestByUserID(ctx, user.ID); err != nil {
			return nil, mapStoreErr(err)
		}
	} else if err != nil {
		return nil, mapStoreErr(err)
	}

	if err := u.sessions.Create(ctx, session); err != nil {
		return nil, mapStoreErr(err)
	}

	return &AuthResult{
		Token:        token,
		RefreshToken: session.ID,
		User:         user.Public(),
	}, nil
}

// newSession builds a refresh session with a random 64-character hex ID.
func newSession(userID uint, client ClientInfo) (*entity.Session, error) {
	raw := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return nil, err
	}
	now := time.Now()
	return &entity.Session{
		ID:        hex.EncodeToString(raw),
		UserID:    userID,
		UserAgent: client.UserAgent,
		IPAddress: client.IPAddress,
		CreatedAt: now,
		ExpiresAt: now.Add(refreshTokenTTL),
	}, nil
}
