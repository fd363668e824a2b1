package impl

import (
	"context"
	"testing"

	"folio/config"
	"folio/internal/domain/entity"
	domainerrors "folio/internal/domain/errors"
	"folio/internal/domain/service"
	"folio/internal/infra/auth"
	"folio/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestIdentityService(store *fakeStore) usecase.IdentityUsecase {
	hasher := auth.NewBcryptHasher(&config.Config{Auth: &config.AuthConfig{BcryptCost: bcrypt.MinCost}})

	return NewIdentityService(IdentityServiceParams{
		TxManager: newFakeTxManager(store),
		Hasher:    hasher,
		Logger:    testLogger(),
	})
}

func TestIdentityService_CreateUser_PasswordAccount(t *testing.T) {
	store := newFakeStore()
	svc := newTestIdentityService(store)
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, usecase.CreateUserInput{
		Email:    "alice@example.com",
		Password: "hunter2hunter2",
		FullName: "Alice",
	})
	require.NoError(t, err)

	assert.Equal(t, entity.StatusPendingVerification, user.Status)
	assert.False(t, user.IsVerified)
	assert.True(t, user.IsActive)
	assert.True(t, user.HasPassword())
	assert.NotEqual(t, "hunter2hunter2", user.HashedPassword)

	// Registration assigns the default role as a side effect.
	roles, err := (&fakeAccessRepo{store: store}).ListRoleNamesByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, roles.Contains(entity.DefaultRoleName))
}

func TestIdentityService_CreateUser_RequiresCredentialSource(t *testing.T) {
	svc := newTestIdentityService(newFakeStore())

	_, err := svc.CreateUser(context.Background(), usecase.CreateUserInput{Email: "bare@example.com"})
	require.ErrorIs(t, err, domainerrors.ErrValidationFailed)
}

func TestIdentityService_CreateUser_DuplicateEmail(t *testing.T) {
	svc := newTestIdentityService(newFakeStore())
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, usecase.CreateUserInput{Email: "alice@example.com", Password: "hunter2hunter2"})
	require.NoError(t, err)

	_, err = svc.CreateUser(ctx, usecase.CreateUserInput{Email: "alice@example.com", Password: "hunter2hunter2"})
	require.ErrorIs(t, err, domainerrors.ErrUserAlreadyExists)
}

func TestIdentityService_CreateUser_VerifiedOAuthStartsActive(t *testing.T) {
	svc := newTestIdentityService(newFakeStore())

	user, err := svc.CreateUser(context.Background(), usecase.CreateUserInput{
		Email:         "bob@example.com",
		GoogleID:      "google-sub-1",
		GoogleEmail:   "bob@example.com",
		EmailVerified: true,
	})
	require.NoError(t, err)

	assert.Equal(t, entity.StatusActive, user.Status)
	assert.True(t, user.IsVerified)
	assert.NotNil(t, user.EmailVerifiedAt)
	assert.False(t, user.HasPassword())
}

func TestIdentityService_AuthenticatePassword(t *testing.T) {
	store := newFakeStore()
	svc := newTestIdentityService(store)
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, usecase.CreateUserInput{Email: "alice@example.com", Password: "hunter2hunter2"})
	require.NoError(t, err)
	_, err = svc.MarkEmailVerified(ctx, created.ID)
	require.NoError(t, err)

	user, err := svc.AuthenticatePassword(ctx, "alice@example.com", "hunter2hunter2")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)
	assert.NotNil(t, user.LastLoginAt)
}

func TestIdentityService_AuthenticatePassword_FailClosed(t *testing.T) {
	store := newFakeStore()
	svc := newTestIdentityService(store)
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, usecase.CreateUserInput{Email: "alice@example.com", Password: "hunter2hunter2"})
	require.NoError(t, err)
	_, err = svc.MarkEmailVerified(ctx, created.ID)
	require.NoError(t, err)

	_, err = svc.CreateUser(ctx, usecase.CreateUserInput{
		Email:         "oauth-only@example.com",
		GoogleID:      "google-sub-2",
		EmailVerified: true,
	})
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{name: "unknown email", email: "nobody@example.com", password: "hunter2hunter2"},
		{name: "wrong password", email: "alice@example.com", password: "wrong-password"},
		{name: "account without password", email: "oauth-only@example.com", password: "anything"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AuthenticatePassword(ctx, tt.email, tt.password)
			// Every failure mode is the same credentials error.
			require.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
		})
	}
}

func TestIdentityService_AuthenticatePassword_LifecycleGates(t *testing.T) {
	store := newFakeStore()
	svc := newTestIdentityService(store)
	ctx := context.Background()

	pending, err := svc.CreateUser(ctx, usecase.CreateUserInput{Email: "pending@example.com", Password: "hunter2hunter2"})
	require.NoError(t, err)

	_, err = svc.AuthenticatePassword(ctx, "pending@example.com", "hunter2hunter2")
	require.ErrorIs(t, err, domainerrors.ErrEmailNotVerified)

	_, err = svc.MarkEmailVerified(ctx, pending.ID)
	require.NoError(t, err)
	store.usersByID[pending.ID].Status = entity.StatusSuspended

	_, err = svc.AuthenticatePassword(ctx, "pending@example.com", "hunter2hunter2")
	require.ErrorIs(t, err, domainerrors.ErrAccountInactive)
}

func TestIdentityService_AuthenticateGoogle_LinksExistingEmail(t *testing.T) {
	store := newFakeStore()
	svc := newTestIdentityService(store)
	ctx := context.Background()

	// Still pending: the account registered with a password and never
	// clicked the verification link.
	created, err := svc.CreateUser(ctx, usecase.CreateUserInput{Email: "alice@example.com", Password: "hunter2hunter2"})
	require.NoError(t, err)
	require.Equal(t, entity.StatusPendingVerification, created.Status)

	user, err := svc.AuthenticateGoogle(ctx, &service.OAuthUser{
		ID:            "google-sub-3",
		Email:         "alice@example.com",
		EmailVerified: true,
	})
	require.NoError(t, err)

	assert.Equal(t, created.ID, user.ID)
	assert.Equal(t, "google-sub-3", user.GoogleID)
	assert.True(t, user.HasPassword())

	// Linking attests email ownership, so the pending account is
	// promoted to verified and active.
	assert.True(t, user.IsVerified)
	assert.Equal(t, entity.StatusActive, user.Status)
	assert.NotNil(t, user.EmailVerifiedAt)

	// The original password still works after the link.
	_, err = svc.AuthenticatePassword(ctx, "alice@example.com", "hunter2hunter2")
	require.NoError(t, err)
}

func TestIdentityService_AuthenticateGoogle_LinkDoesNotLiftSuspension(t *testing.T) {
	store := newFakeStore()
	svc := newTestIdentityService(store)
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, usecase.CreateUserInput{Email: "alice@example.com", Password: "hunter2hunter2"})
	require.NoError(t, err)
	_, err = svc.MarkEmailVerified(ctx, created.ID)
	require.NoError(t, err)
	store.usersByID[created.ID].Status = entity.StatusSuspended

	_, err = svc.AuthenticateGoogle(ctx, &service.OAuthUser{
		ID:            "google-sub-3",
		Email:         "alice@example.com",
		EmailVerified: true,
	})
	require.ErrorIs(t, err, domainerrors.ErrAccountInactive)
}

func TestIdentityService_AuthenticateGoogle_CreatesFreshAccount(t *testing.T) {
	store := newFakeStore()
	svc := newTestIdentityService(store)
	ctx := context.Background()

	user, err := svc.AuthenticateGoogle(ctx, &service.OAuthUser{
		ID:            "google-sub-4",
		Email:         "new@example.com",
		Name:          "New User",
		EmailVerified: true,
	})
	require.NoError(t, err)

	assert.Equal(t, entity.StatusActive, user.Status)
	assert.True(t, user.IsVerified)

	// Subsequent logins resolve by subject.
	again, err := svc.AuthenticateGoogle(ctx, &service.OAuthUser{
		ID:    "google-sub-4",
		Email: "renamed@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)
}

func TestIdentityService_UpdateProfile_PartialPatch(t *testing.T) {
	store := newFakeStore()
	svc := newTestIdentityService(store)
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, usecase.CreateUserInput{
		Email:    "alice@example.com",
		Password: "hunter2hunter2",
		FullName: "Alice",
	})
	require.NoError(t, err)

	username := "alice_dev"
	user, err := svc.UpdateProfile(ctx, created.ID, entity.UserPatch{Username: &username})
	require.NoError(t, err)

	assert.Equal(t, "alice_dev", user.Username)
	// Untouched fields survive the patch.
	assert.Equal(t, "Alice", user.FullName)
}

func TestIdentityService_UpdatePassword(t *testing.T) {
	store := newFakeStore()
	svc := newTestIdentityService(store)
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, usecase.CreateUserInput{Email: "alice@example.com", Password: "old-password-1"})
	require.NoError(t, err)
	_, err = svc.MarkEmailVerified(ctx, created.ID)
	require.NoError(t, err)

	err = svc.UpdatePassword(ctx, created.ID, "wrong-password", "new-password-1")
	require.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)

	require.NoError(t, svc.UpdatePassword(ctx, created.ID, "old-password-1", "new-password-1"))

	_, err = svc.AuthenticatePassword(ctx, "alice@example.com", "new-password-1")
	require.NoError(t, err)
}

func TestIdentityService_DeleteUser_Cascades(t *testing.T) {
	store := newFakeStore()
	svc := newTestIdentityService(store)
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, usecase.CreateUserInput{Email: "alice@example.com", Password: "hunter2hunter2"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteUser(ctx, created.ID))

	_, err = svc.GetUser(ctx, created.ID)
	require.ErrorIs(t, err, domainerrors.ErrUserNotFound)
	assert.Empty(t, store.userRoles[created.ID])

	err = svc.DeleteUser(ctx, created.ID)
	require.ErrorIs(t, err, domainerrors.ErrUserNotFound)
}
