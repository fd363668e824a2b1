package postgres

import (
	"context"
	"encoding/json"
	"time"

	"folio/internal/domain/entity"
	domainerrors "folio/internal/domain/errors"
	"folio/internal/domain/repository"
	"folio/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// tokenRepository implements the domain.TokenRepository interface using GORM.
type tokenRepository struct {
	db *gorm.DB
}

// NewTokenRepository is the constructor for tokenRepository.
func NewTokenRepository(db *gorm.DB) repository.TokenRepository {
	return &tokenRepository{db: db}
}

// Create persists a newly issued token record.
func (repo *tokenRepository) Create(ctx context.Context, token *entity.Token) error {
	tokenM, err := fromTokenDomain(token)
	if err != nil {
		return err
	}

	if err := repo.db.WithContext(ctx).Create(tokenM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrConflict.WrapMessage("token already recorded")
		}
		if isForeignKeyConstraintViolation(err) {
			return repository.ErrUserNotFound
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create token")
	}

	token.ID = tokenM.ID
	token.CreatedAt = tokenM.CreatedAt

	return nil
}

// FindValid looks up the record by token string and checks kind,
// revocation and expiry at query time.
func (repo *tokenRepository) FindValid(ctx context.Context, tokenString string, kind entity.TokenKind, now time.Time) (*entity.Token, error) {
	var tokenM model.TokenModel
	err := repo.db.WithContext(ctx).
		Where("token_hash = ? AND token_type = ? AND is_revoked = false AND expires_at > ?",
			tokenString, kind.String(), now).
		First(&tokenM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrTokenNotFound
		}

		return nil, errors.Wrap(err, "failed to find valid token")
	}

	return toTokenDomain(&tokenM)
}

// Revoke flips the revocation flag with a single conditional update, so
// concurrent calls on the same token see at most one true result.
func (repo *tokenRepository) Revoke(ctx context.Context, tokenString string) (bool, error) {
	tx := repo.db.WithContext(ctx).
		Model(&model.TokenModel{}).
		Where("token_hash = ? AND is_revoked = false", tokenString).
		Update("is_revoked", true)
	if tx.Error != nil {
		return false, domainerrors.NewDatabaseExecuteError(tx.Error, "failed to revoke token")
	}

	return tx.RowsAffected > 0, nil
}

// RevokeAllByUser bulk-revokes every live token of a user, optionally
// narrowed to a single kind.
func (repo *tokenRepository) RevokeAllByUser(ctx context.Context, userID uuid.UUID, kind *entity.TokenKind) (int64, error) {
	tx := repo.db.WithContext(ctx).
		Model(&model.TokenModel{}).
		Where("user_id = ? AND is_revoked = false", userID)
	if kind != nil {
		tx = tx.Where("token_type = ?", kind.String())
	}

	tx = tx.Update("is_revoked", true)
	if tx.Error != nil {
		return 0, domainerrors.NewDatabaseExecuteError(tx.Error, "failed to revoke user tokens")
	}

	return tx.RowsAffected, nil
}

// DeleteExpired prunes rows that are both revoked and expired before the
// cutoff. Validity checks never depend on this housekeeping.
func (repo *tokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	tx := repo.db.WithContext(ctx).
		Where("is_revoked = true AND expires_at < ?", before).
		Delete(&model.TokenModel{})
	if tx.Error != nil {
		return 0, domainerrors.NewDatabaseExecuteError(tx.Error, "failed to delete expired tokens")
	}

	return tx.RowsAffected, nil
}

// --- Mapper Functions ---

// toTokenDomain converts a GORM TokenModel to a domain Token entity.
func toTokenDomain(data *model.TokenModel) (*entity.Token, error) {
	if data == nil {
		return nil, nil
	}

	token := &entity.Token{
		ID:        data.ID,
		UserID:    data.UserID,
		Kind:      entity.TokenKind(data.TokenType),
		TokenHash: data.TokenHash,
		ExpiresAt: data.ExpiresAt,
		IsRevoked: data.IsRevoked,
		CreatedAt: data.CreatedAt,
	}
	if data.Metadata != "" {
		if err := json.Unmarshal([]byte(data.Metadata), &token.Metadata); err != nil {
			return nil, errors.Wrap(err, "failed to decode token metadata")
		}
	}

	return token, nil
}

// fromTokenDomain converts a domain Token entity to a GORM TokenModel.
func fromTokenDomain(token *entity.Token) (*model.TokenModel, error) {
	if token == nil {
		return nil, nil
	}

	tokenM := &model.TokenModel{
		ID:        token.ID,
		UserID:    token.UserID,
		TokenType: token.Kind.String(),
		TokenHash: token.TokenHash,
		ExpiresAt: token.ExpiresAt,
		IsRevoked: token.IsRevoked,
		CreatedAt: token.CreatedAt,
	}
	if len(token.Metadata) > 0 {
		raw, err := json.Marshal(token.Metadata)
		if err != nil {
			return nil, errors.Wrap(err, "failed to encode token metadata")
		}
		tokenM.Metadata = string(raw)
	}

	return tokenM, nil
}
