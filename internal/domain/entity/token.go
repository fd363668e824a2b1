package entity

import (
	"time"

	"github.com/google/uuid"
)

// TokenKind discriminates the purposes an issued token can serve.
type TokenKind string

const (
	// TokenAccess is the short-lived bearer credential.
	TokenAccess TokenKind = "access"
	// TokenRefresh is the long-lived credential used to obtain new pairs.
	TokenRefresh TokenKind = "refresh"
	// TokenResetPassword is a single-use password reset credential.
	TokenResetPassword TokenKind = "reset_password"
	// TokenEmailVerification is a single-use email verification credential.
	TokenEmailVerification TokenKind = "email_verification"
)

// String returns the string representation of the kind.
func (k TokenKind) String() string {
	return string(k)
}

// IsValid checks if the kind is a known value.
func (k TokenKind) IsValid() bool {
	switch k {
	case TokenAccess, TokenRefresh, TokenResetPassword, TokenEmailVerification:
		return true
	default:
		return false
	}
}

// Token is the ledger record of an issued credential. Rows are
// append-only: the only permitted mutation is setting IsRevoked.
type Token struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Kind      TokenKind
	TokenHash string // The encoded token string itself, used as the lookup key.
	ExpiresAt time.Time
	IsRevoked bool
	Metadata  map[string]string // Opaque issue-time annotations, e.g. {"purpose": "password_reset"}.
	CreatedAt time.Time
}

// IsExpired reports whether the token's expiry has passed at the given instant.
func (t *Token) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// IsValidAt reports whether the token is usable at the given instant.
// Validity is never cached; callers re-evaluate on every use.
func (t *Token) IsValidAt(now time.Time) bool {
	return !t.IsRevoked && !t.IsExpired(now)
}
