package repository

import (
	"context"
	"errors"
	"time"

	"folio/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrTokenNotFound is returned when no ledger row matches the lookup.
var ErrTokenNotFound = errors.New("token not found")

// TokenRepository defines the persistence operations of the token ledger.
// Rows are append-only except for the revocation flag.
type TokenRepository interface {
	// Create persists a newly issued token record.
	Create(ctx context.Context, token *entity.Token) error

	// FindValid retrieves the record only if it exists, the kind matches,
	// it is not revoked and its expiry is after now. The check runs at
	// query time on every call; results are never cached.
	FindValid(ctx context.Context, tokenString string, kind entity.TokenKind, now time.Time) (*entity.Token, error)

	// Revoke marks the matching row revoked with a single conditional
	// update. It reports whether this call transitioned the row: false
	// means the row was missing or already revoked. Concurrent callers
	// racing on the same token observe at most one true result.
	Revoke(ctx context.Context, tokenString string) (bool, error)

	// RevokeAllByUser bulk-revokes all live tokens for a user, optionally
	// filtered by kind, and returns the number of rows transitioned.
	RevokeAllByUser(ctx context.Context, userID uuid.UUID, kind *entity.TokenKind) (int64, error)

	// DeleteExpired prunes rows that are both expired and revoked before
	// the cutoff. Housekeeping only; validity never depends on pruning.
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
