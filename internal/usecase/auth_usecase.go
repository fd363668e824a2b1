package usecase

import (
	"context"

	"folio/internal/domain/entity"

	"github.com/google/uuid"
)

// TokenPair is the credential set handed to a client after a successful
// authentication or refresh.
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int64     `json:"expires_in"`
	UserID       uuid.UUID `json:"user_id"`
	Email        string    `json:"email"`
}

// RegisterInput carries the self-service registration fields.
type RegisterInput struct {
	Email    string
	Password string
	Username string
	FullName string
}

// RegisterResult is returned after a successful registration.
type RegisterResult struct {
	Message                   string    `json:"message"`
	UserID                    uuid.UUID `json:"user_id"`
	EmailVerificationRequired bool      `json:"email_verification_required"`
}

// CurrentUser is the introspection result for a presented access token.
type CurrentUser struct {
	User  *entity.User
	Roles entity.RoleNames
}

// AuthUsecase defines the session lifecycle: issuing, refreshing and
// revoking token pairs, plus the emailed verification and reset flows.
type AuthUsecase interface {
	// Register creates a pending account and sends a verification email.
	Register(ctx context.Context, input RegisterInput) (*RegisterResult, error)

	// Login exchanges an email/password pair for a token pair.
	Login(ctx context.Context, email, password string) (*TokenPair, error)

	// GoogleLogin exchanges a Google ID token for a token pair,
	// provisioning or linking the account as needed.
	GoogleLogin(ctx context.Context, idToken string) (*TokenPair, error)

	// Refresh rotates a live refresh token into a fresh pair. The spent
	// token is revoked; of concurrent calls with the same token exactly
	// one succeeds.
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)

	// Logout revokes the presented tokens. Unknown, expired or
	// already-revoked tokens are not an error.
	// Either token may be empty.
	Logout(ctx context.Context, accessToken, refreshToken string) error

	// RequestPasswordReset issues a reset token and emails it. The
	// outcome is indistinguishable for unknown emails and accounts
	// without a password.
	RequestPasswordReset(ctx context.Context, email string) error

	// ConfirmPasswordReset consumes a live reset token, replaces the
	// password and revokes every outstanding token of the account. An
	// invalid, expired or spent token is a validation failure.
	ConfirmPasswordReset(ctx context.Context, token, newPassword string) error

	// VerifyEmail consumes a live verification token and activates the
	// account.
	VerifyEmail(ctx context.Context, token string) error

	// ResendVerification issues a fresh verification token for a
	// still-unverified account and emails it. Unknown emails, verified
	// accounts and accounts without a password are validation failures.
	ResendVerification(ctx context.Context, email string) error

	// Introspect validates an access token against the codec and the
	// ledger and resolves the bearer with their role names.
	Introspect(ctx context.Context, accessToken string) (*CurrentUser, error)
}
