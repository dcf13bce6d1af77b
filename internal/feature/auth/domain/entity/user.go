// Package entity defines the domain entities for the auth feature.
package entity

import "time"

// User represents a registered credential record.
// PasswordHash and Salt never leave the store/verifier boundary; anything
// returned to a caller goes through Public first.
type User struct {
	// ID is the unique identifier for the user, assigned by the store.
	ID uint `gorm:"primaryKey"`

	// Email is the user's email address used for authentication.
	// It is stored normalized (trimmed, lowercased) and must be unique.
	Email string `gorm:"uniqueIndex;size:255;not null"`

	// PasswordHash is the PBKDF2 output for the user's password.
	// This never stores a plaintext password.
	PasswordHash []byte `gorm:"size:64;not null"`

	// Salt is the per-user random salt mixed into the derivation.
	// It is generated once at signup and never regenerated.
	Salt []byte `gorm:"size:32;not null"`

	// CreatedAt is the timestamp when the user was created.
	CreatedAt time.Time

	// UpdatedAt is the timestamp when the user was last updated.
	UpdatedAt time.Time
}

// PublicUser is the sanitized view of a User, safe to embed in responses
// and token claims. It carries no credential material.
type PublicUser struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// Public strips the secret fields and returns the caller-facing view.
func (u *User) Public() *PublicUser {
	return &PublicUser{
		ID:        u.ID,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}
