// Package usecase contains the application-specific business rules.
package usecase

import (
	"context"
	"time"

	"folio/internal/domain/entity"
	"folio/internal/domain/service"

	"github.com/google/uuid"
)

// TokenLedger couples the stateless token codec with the persisted
// ledger: every issued token is recorded, and a token is usable only
// while its row is live. Revocation is immediate and permanent.
type TokenLedger interface {
	// Issue signs a token of the given kind and records it in the
	// ledger. Extra claims are embedded in the token and mirrored into
	// the row's metadata.
	Issue(ctx context.Context, userID uuid.UUID, kind entity.TokenKind, ttl time.Duration, extra map[string]string) (string, time.Time, error)

	// Validate decodes and verifies the token, then confirms the ledger
	// row is live (present, kind match, not revoked, not expired).
	Validate(ctx context.Context, tokenString string, kind entity.TokenKind) (*service.Claims, error)

	// Revoke marks the token revoked. The boolean reports whether this
	// call won the transition; concurrent revocations of the same token
	// yield at most one winner.
	Revoke(ctx context.Context, tokenString string) (bool, error)

	// RevokeAllForUser revokes every live token of a user, optionally
	// narrowed to one kind. Returns the number of tokens revoked.
	RevokeAllForUser(ctx context.Context, userID uuid.UUID, kind *entity.TokenKind) (int64, error)

	// PruneExpired deletes rows that are both revoked and expired before
	// the cutoff. Purely housekeeping.
	PruneExpired(ctx context.Context, before time.Time) (int64, error)
}
