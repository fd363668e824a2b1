// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"

	"folio/internal/domain/entity"
	domainerrors "folio/internal/domain/errors"
	"folio/internal/domain/repository"
	"folio/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// userRepository implements the domain.UserRepository interface using GORM.
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository is the constructor for userRepository.
// It returns the repository as a domain.UserRepository interface, adhering to dependency inversion.
func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepository{db: db}
}

// FindByID retrieves a single user by their unique ID.
func (repo *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var userM model.UserModel
	if err := repo.db.WithContext(ctx).Where("id = ?", id).First(&userM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to find user by id")
	}

	return toUserDomain(&userM), nil
}

// FindByEmail retrieves a single user by their email address.
func (repo *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var userM model.UserModel
	if err := repo.db.WithContext(ctx).Where("email = ?", email).First(&userM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to find user by email")
	}

	return toUserDomain(&userM), nil
}

// FindByGoogleID retrieves a single user by their linked Google subject ID.
func (repo *userRepository) FindByGoogleID(ctx context.Context, googleID string) (*entity.User, error) {
	var userM model.UserModel
	if err := repo.db.WithContext(ctx).Where("google_id = ?", googleID).First(&userM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to find user by google id")
	}

	return toUserDomain(&userM), nil
}

// List retrieves users matching the query, ordered by creation time.
func (repo *userRepository) List(ctx context.Context, query repository.ListUsersQuery) ([]*entity.User, error) {
	tx := repo.db.WithContext(ctx).Model(&model.UserModel{})

	if query.IsActive != nil {
		tx = tx.Where("is_active = ?", *query.IsActive)
	}
	if query.Status != nil {
		tx = tx.Where("status = ?", query.Status.String())
	}
	if query.Search != "" {
		pattern := "%" + query.Search + "%"
		tx = tx.Where("email ILIKE ? OR username ILIKE ? OR full_name ILIKE ?", pattern, pattern, pattern)
	}

	limit := query.Limit
	if limit <= 0 {
		limit = 100
	}

	var userModels []model.UserModel
	if err := tx.Order("created_at").Offset(query.Offset).Limit(limit).Find(&userModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list users")
	}

	users := make([]*entity.User, len(userModels))
	for i := range userModels {
		users[i] = toUserDomain(&userModels[i])
	}

	return users, nil
}

// Create persists a new user entity to the database.
func (repo *userRepository) Create(ctx context.Context, user *entity.User) error {
	userM := fromUserDomain(user)

	if err := repo.db.WithContext(ctx).Create(userM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrUserAlreadyExists.WrapMessage("email, username or google id already registered")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create user")
	}

	// Propagate generated values back to the entity.
	user.ID = userM.ID
	user.CreatedAt = userM.CreatedAt
	user.UpdatedAt = userM.UpdatedAt

	return nil
}

// Update modifies an existing user entity in the database.
func (repo *userRepository) Update(ctx context.Context, user *entity.User) error {
	userM := fromUserDomain(user)

	if err := repo.db.WithContext(ctx).Save(userM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrConflict.WrapMessage("email, username or google id already registered")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to update user")
	}

	user.UpdatedAt = userM.UpdatedAt

	return nil
}

// Delete removes a user row. Token and role-link rows go with it via
// the schema's ON DELETE CASCADE constraints.
func (repo *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx := repo.db.WithContext(ctx).Where("id = ?", id).Delete(&model.UserModel{})
	if tx.Error != nil {
		return domainerrors.NewDatabaseExecuteError(tx.Error, "failed to delete user")
	}
	if tx.RowsAffected == 0 {
		return repository.ErrUserNotFound
	}

	return nil
}

// --- Mapper Functions ---

// toUserDomain converts a GORM UserModel to a domain User entity.
func toUserDomain(data *model.UserModel) *entity.User {
	if data == nil {
		return nil
	}

	user := &entity.User{
		ID:              data.ID,
		Email:           data.Email,
		FullName:        data.FullName,
		HashedPassword:  data.HashedPassword,
		AvatarURL:       data.AvatarURL,
		GoogleEmail:     data.GoogleEmail,
		IsActive:        data.IsActive,
		IsVerified:      data.IsVerified,
		Status:          entity.UserStatus(data.Status),
		EmailVerifiedAt: data.EmailVerifiedAt,
		LastLoginAt:     data.LastLoginAt,
		CreatedAt:       data.CreatedAt,
		UpdatedAt:       data.UpdatedAt,
	}
	if data.Username != nil {
		user.Username = *data.Username
	}
	if data.GoogleID != nil {
		user.GoogleID = *data.GoogleID
	}

	return user
}

// fromUserDomain converts a domain User entity to a GORM UserModel.
func fromUserDomain(user *entity.User) *model.UserModel {
	if user == nil {
		return nil
	}

	userM := &model.UserModel{
		ID:              user.ID,
		Email:           user.Email,
		FullName:        user.FullName,
		HashedPassword:  user.HashedPassword,
		AvatarURL:       user.AvatarURL,
		GoogleEmail:     user.GoogleEmail,
		IsActive:        user.IsActive,
		IsVerified:      user.IsVerified,
		Status:          user.Status.String(),
		EmailVerifiedAt: user.EmailVerifiedAt,
		LastLoginAt:     user.LastLoginAt,
		CreatedAt:       user.CreatedAt,
		UpdatedAt:       user.UpdatedAt,
	}
	if user.Username != "" {
		userM.Username = &user.Username
	}
	if user.GoogleID != "" {
		userM.GoogleID = &user.GoogleID
	}

	return userM
}
