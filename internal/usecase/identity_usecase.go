package usecase

import (
	"context"

	"folio/internal/domain/entity"
	"folio/internal/domain/repository"
	"folio/internal/domain/service"

	"github.com/google/uuid"
)

// CreateUserInput carries the fields for a new account. Either Password
// or GoogleID must be present; accounts created from a verified OAuth
// identity start active and verified.
type CreateUserInput struct {
	Email         string
	Password      string
	Username      string
	FullName      string
	AvatarURL     string
	GoogleID      string
	GoogleEmail   string
	EmailVerified bool
}

// IdentityUsecase defines account lifecycle and credential operations.
type IdentityUsecase interface {
	// CreateUser registers a new account and assigns the default role.
	// A duplicate email is a conflict; an account with neither a
	// password nor a Google identity is a validation failure.
	CreateUser(ctx context.Context, input CreateUserInput) (*entity.User, error)

	// AuthenticatePassword checks the email/password pair and stamps the
	// login time on success. Unknown email, missing password hash and
	// wrong password are indistinguishable to the caller.
	AuthenticatePassword(ctx context.Context, email, password string) (*entity.User, error)

	// AuthenticateGoogle resolves a verified Google identity to a local
	// account: by Google subject first, then by linking an existing
	// email account, then by creating a fresh one.
	AuthenticateGoogle(ctx context.Context, ident *service.OAuthUser) (*entity.User, error)

	// GetUser retrieves an account by ID.
	GetUser(ctx context.Context, id uuid.UUID) (*entity.User, error)

	// GetUserByEmail retrieves an account by email.
	GetUserByEmail(ctx context.Context, email string) (*entity.User, error)

	// ListUsers retrieves accounts matching the query filters.
	ListUsers(ctx context.Context, query repository.ListUsersQuery) ([]*entity.User, error)

	// UpdateProfile applies a partial profile update. Nil fields are
	// left untouched.
	UpdateProfile(ctx context.Context, id uuid.UUID, patch entity.UserPatch) (*entity.User, error)

	// UpdatePassword replaces the password after checking the current one.
	UpdatePassword(ctx context.Context, id uuid.UUID, current, updated string) error

	// SetPassword replaces the password without a current-password
	// check. Reserved for the reset flow, which proves possession of a
	// valid reset token instead.
	SetPassword(ctx context.Context, id uuid.UUID, password string) error

	// MarkEmailVerified flips the account to verified and active.
	MarkEmailVerified(ctx context.Context, id uuid.UUID) (*entity.User, error)

	// DeleteUser removes the account. Tokens and role links cascade.
	DeleteUser(ctx context.Context, id uuid.UUID) error
}
