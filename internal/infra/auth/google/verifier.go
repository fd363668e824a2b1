// Package google implements the OAuthVerifier domain service against
// Google's ID token endpoint.
package google

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"google.golang.org/api/idtoken"

	"folio/config"
	"folio/internal/domain/service"
)

// verifier validates Google ID tokens against the configured OAuth client.
type verifier struct {
	clientID      string
	verifyTimeout time.Duration
	logger        *slog.Logger
}

// NewVerifier is the constructor for the Google ID-token verifier.
func NewVerifier(cfg *config.Config, logger *slog.Logger) (service.OAuthVerifier, error) {
	if cfg.GoogleOAuth == nil || cfg.GoogleOAuth.ClientID == "" {
		return nil, errors.New("google oauth client id must be provided")
	}

	return &verifier{
		clientID:      cfg.GoogleOAuth.ClientID,
		verifyTimeout: cfg.GoogleOAuth.VerifyTimeout,
		logger:        logger,
	}, nil
}

// Verify checks the ID token's signature, audience and expiry with
// Google, then extracts the attested identity. The certificate fetch is
// a network call bounded by the configured timeout.
func (v *verifier) Verify(ctx context.Context, idTokenString string) (*service.OAuthUser, error) {
	verifyCtx, cancel := context.WithTimeout(ctx, v.verifyTimeout)
	defer cancel()

	payload, err := idtoken.Validate(verifyCtx, idTokenString, v.clientID)
	if err != nil {
		v.logger.Warn("Google ID token validation failed", slog.Any("error", err))

		return nil, errors.Wrap(service.ErrOAuthTokenInvalid, err.Error())
	}

	user := payloadToOAuthUser(payload)
	if user.ID == "" || user.Email == "" {
		return nil, errors.Wrap(service.ErrOAuthTokenInvalid, "token payload missing subject or email")
	}

	v.logger.Debug("Google ID token verified",
		slog.String("subject", user.ID),
		slog.String("email", user.Email))

	return user, nil
}

func payloadToOAuthUser(payload *idtoken.Payload) *service.OAuthUser {
	user := &service.OAuthUser{ID: payload.Subject}

	if email, ok := payload.Claims["email"].(string); ok {
		user.Email = email
	}
	if name, ok := payload.Claims["name"].(string); ok {
		user.Name = name
	}
	if picture, ok := payload.Claims["picture"].(string); ok {
		user.AvatarURL = picture
	}
	if verified, ok := payload.Claims["email_verified"].(bool); ok {
		user.EmailVerified = verified
	}

	return user
}
