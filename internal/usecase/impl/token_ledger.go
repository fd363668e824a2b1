// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "folio/internal/delivery/context"
	"folio/internal/domain/entity"
	domainerrors "folio/internal/domain/errors"
	"folio/internal/domain/repository"
	"folio/internal/domain/service"
	"folio/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// tokenLedger implements the TokenLedger interface. It signs tokens
// through the codec and records every issued token so that revocation
// is immediate: a token is usable only while its ledger row is live.
type tokenLedger struct {
	txManager repository.TransactionManager
	codec     service.TokenCodec
	logger    *slog.Logger
}

// TokenLedgerParams holds dependencies for tokenLedger, injected by Fx.
type TokenLedgerParams struct {
	fx.In

	TxManager repository.TransactionManager
	Codec     service.TokenCodec
	Logger    *slog.Logger
}

// NewTokenLedger is the constructor for tokenLedger.
func NewTokenLedger(params TokenLedgerParams) usecase.TokenLedger {
	return &tokenLedger{
		txManager: params.TxManager,
		codec:     params.Codec,
		logger:    params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *tokenLedger) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Issue signs a token and records it in the ledger.
func (srv *tokenLedger) Issue(ctx context.Context, userID uuid.UUID, kind entity.TokenKind, ttl time.Duration, extra map[string]string) (string, time.Time, error) {
	tokenString, expiresAt, err := srv.codec.Encode(userID, kind, ttl, extra)
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "failed to encode token")
	}

	record := &entity.Token{
		UserID:    userID,
		Kind:      kind,
		TokenHash: tokenString,
		ExpiresAt: expiresAt,
		Metadata:  extra,
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		return repoFactory.TokenRepo().Create(ctx, record)
	})
	if err != nil {
		srv.log(ctx).Error("Failed to record issued token",
			slog.Any("error", err), slog.Any("user_id", userID), slog.String("kind", kind.String()))

		return "", time.Time{}, errors.Wrap(err, "failed to record issued token")
	}

	return tokenString, expiresAt, nil
}

// Validate decodes the token and confirms its ledger row is live.
// Both checks must pass; a verifiable signature over a revoked row is
// still invalid.
func (srv *tokenLedger) Validate(ctx context.Context, tokenString string, kind entity.TokenKind) (*service.Claims, error) {
	claims, err := srv.codec.Decode(tokenString)
	if err != nil {
		return nil, errors.Wrap(domainerrors.ErrTokenInvalid, err.Error())
	}
	if claims.Kind != kind {
		return nil, domainerrors.ErrTokenInvalid.WrapMessage("unexpected token type")
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		_, findErr := repoFactory.TokenRepo().FindValid(ctx, tokenString, kind, time.Now())

		return findErr
	})
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return nil, domainerrors.ErrTokenInvalid.WrapMessage("token is revoked or unknown")
		}

		return nil, errors.Wrap(err, "failed to check token ledger")
	}

	return claims, nil
}

// Revoke marks the token revoked and reports whether this call won the
// transition.
func (srv *tokenLedger) Revoke(ctx context.Context, tokenString string) (bool, error) {
	var won bool
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		var revokeErr error
		won, revokeErr = repoFactory.TokenRepo().Revoke(ctx, tokenString)

		return revokeErr
	})
	if err != nil {
		return false, errors.Wrap(err, "failed to revoke token")
	}

	return won, nil
}

// RevokeAllForUser revokes every live token of a user, optionally
// narrowed to one kind.
func (srv *tokenLedger) RevokeAllForUser(ctx context.Context, userID uuid.UUID, kind *entity.TokenKind) (int64, error) {
	var revoked int64
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		var revokeErr error
		revoked, revokeErr = repoFactory.TokenRepo().RevokeAllByUser(ctx, userID, kind)

		return revokeErr
	})
	if err != nil {
		return 0, errors.Wrap(err, "failed to revoke user tokens")
	}

	if revoked > 0 {
		srv.log(ctx).Info("Revoked user tokens", slog.Any("user_id", userID), slog.Int64("count", revoked))
	}

	return revoked, nil
}

// PruneExpired deletes rows that are both revoked and expired before
// the cutoff.
func (srv *tokenLedger) PruneExpired(ctx context.Context, before time.Time) (int64, error) {
	var pruned int64
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		var deleteErr error
		pruned, deleteErr = repoFactory.TokenRepo().DeleteExpired(ctx, before)

		return deleteErr
	})
	if err != nil {
		return 0, errors.Wrap(err, "failed to prune expired tokens")
	}

	return pruned, nil
}
