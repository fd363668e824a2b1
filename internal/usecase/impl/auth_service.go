package impl

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"folio/config"
	deliverycontext "folio/internal/delivery/context"
	"folio/internal/domain/entity"
	domainerrors "folio/internal/domain/errors"
	"folio/internal/domain/service"
	"folio/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const (
	tokenTypeBearer = "bearer"

	purposeClaim          = "purpose"
	purposePasswordReset  = "password_reset"
	purposeEmailVerifying = "email_verification"
)

// authService implements the AuthUsecase interface. It orchestrates the
// identity service, the token ledger and the access model into the
// session lifecycle, and dispatches the verification and reset emails.
type authService struct {
	identity   usecase.IdentityUsecase
	ledger     usecase.TokenLedger
	access     usecase.AccessControlUsecase
	verifier   service.OAuthVerifier
	mailer     service.MailSender
	accessTTL  time.Duration
	refreshTTL time.Duration
	actionTTL  time.Duration
	baseURL    string
	logger     *slog.Logger
}

// AuthServiceParams holds dependencies for authService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	Identity usecase.IdentityUsecase
	Ledger   usecase.TokenLedger
	Access   usecase.AccessControlUsecase
	Verifier service.OAuthVerifier
	Mailer   service.MailSender
	Config   *config.Config
	Logger   *slog.Logger
}

// NewAuthService is the constructor for authService.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	baseURL := ""
	if params.Config.SMTP != nil {
		baseURL = params.Config.SMTP.BaseURL
	}

	return &authService{
		identity:   params.Identity,
		ledger:     params.Ledger,
		access:     params.Access,
		verifier:   params.Verifier,
		mailer:     params.Mailer,
		accessTTL:  params.Config.JWT.AccessTTL,
		refreshTTL: params.Config.JWT.RefreshTTL,
		actionTTL:  params.Config.JWT.ActionTTL,
		baseURL:    baseURL,
		logger:     params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Register creates a pending account and sends a verification email.
func (srv *authService) Register(ctx context.Context, input usecase.RegisterInput) (*usecase.RegisterResult, error) {
	user, err := srv.identity.CreateUser(ctx, usecase.CreateUserInput{
		Email:    input.Email,
		Password: input.Password,
		Username: input.Username,
		FullName: input.FullName,
	})
	if err != nil {
		return nil, err
	}

	srv.sendVerificationEmail(ctx, user)

	return &usecase.RegisterResult{
		Message:                   "Registration successful. Please check your email to verify your account.",
		UserID:                    user.ID,
		EmailVerificationRequired: true,
	}, nil
}

// Login exchanges an email/password pair for a token pair.
func (srv *authService) Login(ctx context.Context, email, password string) (*usecase.TokenPair, error) {
	user, err := srv.identity.AuthenticatePassword(ctx, email, password)
	if err != nil {
		return nil, err
	}

	return srv.issuePair(ctx, user)
}

// GoogleLogin exchanges a Google ID token for a token pair.
func (srv *authService) GoogleLogin(ctx context.Context, idToken string) (*usecase.TokenPair, error) {
	ident, err := srv.verifier.Verify(ctx, idToken)
	if err != nil {
		if errors.Is(err, service.ErrOAuthTokenInvalid) {
			return nil, domainerrors.ErrOAuthFailed.WrapMessage("id token verification failed")
		}

		return nil, errors.Wrap(err, "failed to verify id token")
	}

	user, err := srv.identity.AuthenticateGoogle(ctx, ident)
	if err != nil {
		return nil, err
	}

	return srv.issuePair(ctx, user)
}

// Refresh rotates a live refresh token into a fresh pair. The spent
// token is revoked first; losing the revocation race means another call
// already rotated it, and this one fails.
func (srv *authService) Refresh(ctx context.Context, refreshToken string) (*usecase.TokenPair, error) {
	claims, err := srv.ledger.Validate(ctx, refreshToken, entity.TokenRefresh)
	if err != nil {
		return nil, err
	}

	user, err := srv.identity.GetUser(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if !user.CanLogin() {
		return nil, domainerrors.ErrAccountInactive
	}

	won, err := srv.ledger.Revoke(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, domainerrors.ErrTokenInvalid.WrapMessage("refresh token already spent")
	}

	return srv.issuePair(ctx, user)
}

// Logout revokes the presented access and refresh tokens. Unknown,
// expired or already-revoked tokens are treated as already logged out.
func (srv *authService) Logout(ctx context.Context, accessToken, refreshToken string) error {
	for _, tokenString := range []string{accessToken, refreshToken} {
		if tokenString == "" {
			continue
		}

		won, err := srv.ledger.Revoke(ctx, tokenString)
		if err != nil {
			return err
		}
		if !won {
			srv.log(ctx).Debug("Logout for token that was not live")
		}
	}

	return nil
}

// RequestPasswordReset issues a reset token and emails it. Unknown
// emails and accounts without a password yield the same silent success,
// so the endpoint cannot be used to probe for accounts.
func (srv *authService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := srv.identity.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domainerrors.ErrUserNotFound) {
			srv.log(ctx).Info("Password reset requested for unknown email")

			return nil
		}

		return err
	}
	if !user.HasPassword() {
		srv.log(ctx).Info("Password reset requested for account without password", slog.Any("user_id", user.ID))

		return nil
	}

	token, _, err := srv.ledger.Issue(ctx, user.ID, entity.TokenResetPassword, srv.actionTTL,
		map[string]string{purposeClaim: purposePasswordReset})
	if err != nil {
		return err
	}

	srv.sendMail(ctx, user.Email, "Reset your password", fmt.Sprintf(
		"Hello,\r\n\r\n"+
			"A password reset was requested for your account. Open the link below to choose a new password:\r\n\r\n"+
			"%s/reset-password?token=%s\r\n\r\n"+
			"The link expires in 1 hour. If you did not request this, you can ignore this email.\r\n",
		srv.baseURL, token))

	return nil
}

// ConfirmPasswordReset consumes a live reset token, replaces the
// password and revokes every outstanding token of the account.
func (srv *authService) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	claims, err := srv.ledger.Validate(ctx, token, entity.TokenResetPassword)
	if err != nil {
		if errors.Is(err, domainerrors.ErrTokenInvalid) {
			return domainerrors.ErrValidationFailed.WrapMessage("invalid or expired reset token")
		}

		return err
	}

	// Consume the token before touching the password; of concurrent
	// confirmations exactly one gets past this point.
	won, err := srv.ledger.Revoke(ctx, token)
	if err != nil {
		return err
	}
	if !won {
		return domainerrors.ErrValidationFailed.WrapMessage("invalid or expired reset token")
	}

	if err := srv.identity.SetPassword(ctx, claims.UserID, newPassword); err != nil {
		return err
	}

	// Existing sessions die with the old password.
	if _, err := srv.ledger.RevokeAllForUser(ctx, claims.UserID, nil); err != nil {
		return err
	}

	srv.log(ctx).Info("Password reset completed", slog.Any("user_id", claims.UserID))

	return nil
}

// VerifyEmail consumes a live verification token and activates the
// account.
func (srv *authService) VerifyEmail(ctx context.Context, token string) error {
	claims, err := srv.ledger.Validate(ctx, token, entity.TokenEmailVerification)
	if err != nil {
		return err
	}

	won, err := srv.ledger.Revoke(ctx, token)
	if err != nil {
		return err
	}
	if !won {
		return domainerrors.ErrTokenInvalid.WrapMessage("verification token already used")
	}

	if _, err := srv.identity.MarkEmailVerified(ctx, claims.UserID); err != nil {
		return err
	}

	return nil
}

// ResendVerification issues a fresh verification token for a
// still-unverified account.
func (srv *authService) ResendVerification(ctx context.Context, email string) error {
	user, err := srv.identity.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domainerrors.ErrUserNotFound) {
			return domainerrors.ErrValidationFailed.WrapMessage("no account with this email")
		}

		return err
	}
	if user.IsVerified {
		return domainerrors.ErrValidationFailed.WrapMessage("email is already verified")
	}
	if user.GoogleID != "" {
		return domainerrors.ErrValidationFailed.WrapMessage("account does not use email verification")
	}

	srv.sendVerificationEmail(ctx, user)

	return nil
}

// Introspect validates an access token against the codec and the ledger
// and resolves the bearer with their role names.
func (srv *authService) Introspect(ctx context.Context, accessToken string) (*usecase.CurrentUser, error) {
	claims, err := srv.ledger.Validate(ctx, accessToken, entity.TokenAccess)
	if err != nil {
		return nil, err
	}

	user, err := srv.identity.GetUser(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if !user.CanLogin() {
		return nil, domainerrors.ErrAccountInactive
	}

	roles, err := srv.access.UserRoles(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &usecase.CurrentUser{User: user, Roles: roles}, nil
}

// issuePair issues a fresh access/refresh pair for the user.
func (srv *authService) issuePair(ctx context.Context, user *entity.User) (*usecase.TokenPair, error) {
	accessToken, _, err := srv.ledger.Issue(ctx, user.ID, entity.TokenAccess, srv.accessTTL, nil)
	if err != nil {
		return nil, err
	}

	refreshToken, _, err := srv.ledger.Issue(ctx, user.ID, entity.TokenRefresh, srv.refreshTTL, nil)
	if err != nil {
		return nil, err
	}

	return &usecase.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    tokenTypeBearer,
		ExpiresIn:    int64(srv.accessTTL.Seconds()),
		UserID:       user.ID,
		Email:        user.Email,
	}, nil
}

// sendVerificationEmail issues a verification token and emails it.
// Failing to issue is logged and swallowed like a transport failure;
// the account can always request a resend.
func (srv *authService) sendVerificationEmail(ctx context.Context, user *entity.User) {
	token, _, err := srv.ledger.Issue(ctx, user.ID, entity.TokenEmailVerification, srv.actionTTL,
		map[string]string{purposeClaim: purposeEmailVerifying})
	if err != nil {
		srv.log(ctx).Error("Failed to issue verification token", slog.Any("error", err), slog.Any("user_id", user.ID))

		return
	}

	srv.sendMail(ctx, user.Email, "Verify your email", fmt.Sprintf(
		"Hello,\r\n\r\n"+
			"Welcome! Please confirm your email address by opening the link below:\r\n\r\n"+
			"%s/verify-email?token=%s\r\n\r\n"+
			"The link expires in 1 hour.\r\n",
		srv.baseURL, token))
}

// sendMail dispatches an email after the surrounding writes have
// committed. Transport failures are logged and swallowed; they never
// fail the parent flow.
func (srv *authService) sendMail(ctx context.Context, to, subject, body string) {
	if err := srv.mailer.Send(ctx, to, subject, body); err != nil {
		srv.log(ctx).Error("Failed to send email", slog.Any("error", err), slog.String("subject", subject))
	}
}
