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

// identityService implements the IdentityUsecase interface.
type identityService struct {
	txManager repository.TransactionManager
	hasher    service.PasswordHasher
	logger    *slog.Logger
}

// IdentityServiceParams holds dependencies for identityService, injected by Fx.
type IdentityServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	Hasher    service.PasswordHasher
	Logger    *slog.Logger
}

// NewIdentityService is the constructor for identityService.
func NewIdentityService(params IdentityServiceParams) usecase.IdentityUsecase {
	return &identityService{
		txManager: params.TxManager,
		hasher:    params.Hasher,
		logger:    params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *identityService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// CreateUser registers a new account and assigns the default role in
// the same transaction.
func (srv *identityService) CreateUser(ctx context.Context, input usecase.CreateUserInput) (*entity.User, error) {
	if input.Email == "" {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("email is required")
	}
	if input.Password == "" && input.GoogleID == "" {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("either a password or a google identity is required")
	}

	user := &entity.User{
		Email:       input.Email,
		Username:    input.Username,
		FullName:    input.FullName,
		AvatarURL:   input.AvatarURL,
		GoogleID:    input.GoogleID,
		GoogleEmail: input.GoogleEmail,
		IsActive:    true,
	}

	if input.Password != "" {
		hash, err := srv.hasher.Hash(input.Password)
		if err != nil {
			return nil, errors.Wrap(err, "failed to hash password")
		}
		user.HashedPassword = hash
	}

	// Accounts backed by a verified provider identity skip the emailed
	// verification step.
	if input.GoogleID != "" && input.EmailVerified {
		now := time.Now()
		user.IsVerified = true
		user.Status = entity.StatusActive
		user.EmailVerifiedAt = &now
	} else {
		user.Status = entity.StatusPendingVerification
	}

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		if _, err := userRepo.FindByEmail(ctx, input.Email); err == nil {
			return domainerrors.ErrUserAlreadyExists.WrapMessage("email already registered")
		} else if !errors.Is(err, repository.ErrUserNotFound) {
			return errors.Wrap(err, "failed to check existing email")
		}

		if err := userRepo.Create(ctx, user); err != nil {
			return err
		}

		return ensureDefaultRole(ctx, repoFactory.AccessRepo(), user.ID)
	})
	if err != nil {
		srv.log(ctx).Error("Failed to create user", slog.Any("error", err), slog.String("email", input.Email))

		return nil, err
	}

	srv.log(ctx).Info("Created user", slog.Any("user_id", user.ID), slog.String("status", user.Status.String()))

	return user, nil
}

// AuthenticatePassword checks the email/password pair. Unknown email,
// missing password hash and wrong password all fail with the same error
// so callers cannot probe which factor was wrong.
func (srv *identityService) AuthenticatePassword(ctx context.Context, email, password string) (*entity.User, error) {
	var user *entity.User
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		found, err := userRepo.FindByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return domainerrors.ErrInvalidCredentials
			}

			return errors.Wrap(err, "failed to find user")
		}

		if !found.HasPassword() || !srv.hasher.Check(password, found.HashedPassword) {
			return domainerrors.ErrInvalidCredentials
		}

		if found.Status == entity.StatusPendingVerification {
			return domainerrors.ErrEmailNotVerified
		}
		if !found.CanLogin() {
			return domainerrors.ErrAccountInactive
		}

		now := time.Now()
		found.LastLoginAt = &now
		if err := userRepo.Update(ctx, found); err != nil {
			return errors.Wrap(err, "failed to stamp login time")
		}

		user = found

		return nil
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// AuthenticateGoogle resolves a verified provider identity to a local
// account: by subject, then by linking an email match, then by creating
// a fresh account.
func (srv *identityService) AuthenticateGoogle(ctx context.Context, ident *service.OAuthUser) (*entity.User, error) {
	if ident == nil || ident.ID == "" || ident.Email == "" {
		return nil, domainerrors.ErrOAuthFailed.WrapMessage("provider identity is incomplete")
	}

	var user *entity.User
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		found, err := userRepo.FindByGoogleID(ctx, ident.ID)
		if err == nil {
			user = found

			return srv.finishGoogleLogin(ctx, userRepo, user)
		}
		if !errors.Is(err, repository.ErrUserNotFound) {
			return errors.Wrap(err, "failed to find user by google id")
		}

		found, err = userRepo.FindByEmail(ctx, ident.Email)
		if err == nil {
			// Link the provider identity to the existing email account.
			// The provider attests email ownership, so a
			// pending-verification account becomes verified and active
			// on link. Administrative suspension is not lifted.
			found.GoogleID = ident.ID
			found.GoogleEmail = ident.Email
			if found.AvatarURL == "" {
				found.AvatarURL = ident.AvatarURL
			}
			if !found.IsVerified {
				now := time.Now()
				found.IsVerified = true
				found.EmailVerifiedAt = &now
			}
			if found.Status == entity.StatusPendingVerification {
				found.Status = entity.StatusActive
			}
			user = found

			return srv.finishGoogleLogin(ctx, userRepo, user)
		}
		if !errors.Is(err, repository.ErrUserNotFound) {
			return errors.Wrap(err, "failed to find user by email")
		}

		now := time.Now()
		user = &entity.User{
			Email:           ident.Email,
			FullName:        ident.Name,
			AvatarURL:       ident.AvatarURL,
			GoogleID:        ident.ID,
			GoogleEmail:     ident.Email,
			IsActive:        true,
			IsVerified:      true,
			Status:          entity.StatusActive,
			EmailVerifiedAt: &now,
			LastLoginAt:     &now,
		}
		if err := userRepo.Create(ctx, user); err != nil {
			return err
		}

		return ensureDefaultRole(ctx, repoFactory.AccessRepo(), user.ID)
	})
	if err != nil {
		srv.log(ctx).Error("Failed to authenticate google identity", slog.Any("error", err))

		return nil, err
	}

	return user, nil
}

// finishGoogleLogin gates the lifecycle state and stamps the login time
// for an account resolved from a provider identity.
func (srv *identityService) finishGoogleLogin(ctx context.Context, userRepo repository.UserRepository, user *entity.User) error {
	if !user.CanLogin() {
		return domainerrors.ErrAccountInactive
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := userRepo.Update(ctx, user); err != nil {
		return errors.Wrap(err, "failed to stamp login time")
	}

	return nil
}

// GetUser retrieves an account by ID.
func (srv *identityService) GetUser(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var user *entity.User
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		found, err := repoFactory.UserRepo().FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return domainerrors.ErrUserNotFound
			}

			return errors.Wrap(err, "failed to find user")
		}
		user = found

		return nil
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// GetUserByEmail retrieves an account by email.
func (srv *identityService) GetUserByEmail(ctx context.Context, email string) (*entity.User, error) {
	var user *entity.User
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		found, err := repoFactory.UserRepo().FindByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return domainerrors.ErrUserNotFound
			}

			return errors.Wrap(err, "failed to find user")
		}
		user = found

		return nil
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// ListUsers retrieves accounts matching the query filters.
func (srv *identityService) ListUsers(ctx context.Context, query repository.ListUsersQuery) ([]*entity.User, error) {
	var users []*entity.User
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		var listErr error
		users, listErr = repoFactory.UserRepo().List(ctx, query)

		return listErr
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list users")
	}

	return users, nil
}

// UpdateProfile applies a partial profile update.
func (srv *identityService) UpdateProfile(ctx context.Context, id uuid.UUID, patch entity.UserPatch) (*entity.User, error) {
	var user *entity.User
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		found, err := userRepo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return domainerrors.ErrUserNotFound
			}

			return errors.Wrap(err, "failed to find user")
		}

		if patch.Username != nil {
			found.Username = *patch.Username
		}
		if patch.FullName != nil {
			found.FullName = *patch.FullName
		}
		if patch.AvatarURL != nil {
			found.AvatarURL = *patch.AvatarURL
		}

		if err := userRepo.Update(ctx, found); err != nil {
			return err
		}
		user = found

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to update profile", slog.Any("error", err), slog.Any("user_id", id))

		return nil, err
	}

	return user, nil
}

// UpdatePassword replaces the password after checking the current one.
func (srv *identityService) UpdatePassword(ctx context.Context, id uuid.UUID, current, updated string) error {
	hash, err := srv.hasher.Hash(updated)
	if err != nil {
		return errors.Wrap(err, "failed to hash password")
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		found, findErr := userRepo.FindByID(ctx, id)
		if findErr != nil {
			if errors.Is(findErr, repository.ErrUserNotFound) {
				return domainerrors.ErrUserNotFound
			}

			return errors.Wrap(findErr, "failed to find user")
		}

		if !found.HasPassword() || !srv.hasher.Check(current, found.HashedPassword) {
			return domainerrors.ErrInvalidCredentials.WrapMessage("current password does not match")
		}

		found.HashedPassword = hash

		return userRepo.Update(ctx, found)
	})
	if err != nil {
		srv.log(ctx).Error("Failed to update password", slog.Any("error", err), slog.Any("user_id", id))

		return err
	}

	srv.log(ctx).Info("Updated password", slog.Any("user_id", id))

	return nil
}

// SetPassword replaces the password without a current-password check.
// The reset flow proves possession of a live reset token instead.
func (srv *identityService) SetPassword(ctx context.Context, id uuid.UUID, password string) error {
	hash, err := srv.hasher.Hash(password)
	if err != nil {
		return errors.Wrap(err, "failed to hash password")
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		found, findErr := userRepo.FindByID(ctx, id)
		if findErr != nil {
			if errors.Is(findErr, repository.ErrUserNotFound) {
				return domainerrors.ErrUserNotFound
			}

			return errors.Wrap(findErr, "failed to find user")
		}

		found.HashedPassword = hash

		return userRepo.Update(ctx, found)
	})
	if err != nil {
		srv.log(ctx).Error("Failed to set password", slog.Any("error", err), slog.Any("user_id", id))

		return err
	}

	return nil
}

// MarkEmailVerified flips the account to verified and activates it if
// it was still pending.
func (srv *identityService) MarkEmailVerified(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var user *entity.User
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		found, err := userRepo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return domainerrors.ErrUserNotFound
			}

			return errors.Wrap(err, "failed to find user")
		}

		now := time.Now()
		found.IsVerified = true
		found.EmailVerifiedAt = &now
		if found.Status == entity.StatusPendingVerification {
			found.Status = entity.StatusActive
		}

		if err := userRepo.Update(ctx, found); err != nil {
			return err
		}
		user = found

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to mark email verified", slog.Any("error", err), slog.Any("user_id", id))

		return nil, err
	}

	srv.log(ctx).Info("Email verified", slog.Any("user_id", id))

	return user, nil
}

// DeleteUser removes the account. Tokens and role links cascade at the
// schema level.
func (srv *identityService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := repoFactory.UserRepo().Delete(ctx, id); err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return domainerrors.ErrUserNotFound
			}

			return err
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to delete user", slog.Any("error", err), slog.Any("user_id", id))

		return err
	}

	srv.log(ctx).Info("Deleted user", slog.Any("user_id", id))

	return nil
}
