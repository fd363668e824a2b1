package service

import (
	"context"
	"errors"
)

// ErrOAuthTokenInvalid is returned when the provider token does not verify.
var ErrOAuthTokenInvalid = errors.New("oauth token is invalid")

// OAuthUser represents the identity attested by an OAuth provider.
type OAuthUser struct {
	ID            string // Provider-specific subject (Google's 'sub' claim).
	Email         string // User's email address.
	Name          string // User's display name.
	AvatarURL     string // URL to the user's profile picture.
	EmailVerified bool   // Whether the provider attests email ownership.
}

// OAuthVerifier verifies provider-issued identity tokens.
// Implementations perform a network call and must honor context
// cancellation and deadlines.
type OAuthVerifier interface {
	// Verify checks the ID token and returns the attested identity.
	// Both subject and email must be present; tokens missing either are
	// rejected with ErrOAuthTokenInvalid.
	Verify(ctx context.Context, idToken string) (*OAuthUser, error)
}
