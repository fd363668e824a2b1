package service

import (
	"errors"
	"time"

	"folio/internal/domain/entity"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Decode failure modes. The codec check is purely cryptographic; the
// token ledger layers the stateful revocation check on top of it.
var (
	// ErrTokenMalformed is returned when the string is not a parseable token.
	ErrTokenMalformed = errors.New("token is malformed")
	// ErrTokenSignature is returned when the signature does not verify.
	ErrTokenSignature = errors.New("token signature is invalid")
	// ErrTokenExpired is returned when the embedded expiry has passed.
	ErrTokenExpired = errors.New("token has expired")
)

// Claims is the signed claim set embedded in every issued token.
type Claims struct {
	UserID uuid.UUID
	Kind   entity.TokenKind
	// Extra carries issue-time annotations such as {"purpose": "password_reset"}.
	// Interpretation is a convention of the issuing call site.
	Extra map[string]string
	jwt.RegisteredClaims
}

// TokenCodec encodes and decodes signed, expiring claim sets.
// Authenticity is checkable without a server-side lookup.
type TokenCodec interface {
	// Encode produces a tamper-evident opaque string embedding the
	// subject, kind and absolute expiry, plus any extra claims.
	// It returns the string and the expiry instant it embedded.
	Encode(userID uuid.UUID, kind entity.TokenKind, ttl time.Duration, extra map[string]string) (string, time.Time, error)

	// Decode verifies signature integrity and that the token has not
	// passed its embedded expiry, returning the claim set. Failures map
	// to ErrTokenMalformed, ErrTokenSignature or ErrTokenExpired.
	Decode(tokenString string) (*Claims, error)
}
