package impl

import (
	"context"
	"testing"
	"time"

	"folio/config"
	"folio/internal/domain/entity"
	domainerrors "folio/internal/domain/errors"
	"folio/internal/infra/auth"
	"folio/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLedger(t *testing.T, store *fakeStore) usecase.TokenLedger {
	t.Helper()

	cfg := &config.Config{}
	cfg.JWT.Secret = "ledger-test-secret"
	codec, err := auth.NewJWTCodec(cfg)
	require.NoError(t, err)

	return NewTokenLedger(TokenLedgerParams{
		TxManager: newFakeTxManager(store),
		Codec:     codec,
		Logger:    testLogger(),
	})
}

func TestTokenLedger_IssueAndValidate(t *testing.T) {
	store := newFakeStore()
	ledger := newTestLedger(t, store)
	ctx := context.Background()
	userID := uuid.New()

	tokenString, expiresAt, err := ledger.Issue(ctx, userID, entity.TokenAccess, 30*time.Minute, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, tokenString)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), expiresAt, 5*time.Second)

	claims, err := ledger.Validate(ctx, tokenString, entity.TokenAccess)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)

	// The ledger row mirrors the issued string and the extra claims.
	record := store.tokens[tokenString]
	require.NotNil(t, record)
	assert.Equal(t, userID, record.UserID)
	assert.False(t, record.IsRevoked)
}

func TestTokenLedger_Validate_KindMismatch(t *testing.T) {
	store := newFakeStore()
	ledger := newTestLedger(t, store)
	ctx := context.Background()

	tokenString, _, err := ledger.Issue(ctx, uuid.New(), entity.TokenRefresh, time.Hour, nil)
	require.NoError(t, err)

	_, err = ledger.Validate(ctx, tokenString, entity.TokenAccess)
	require.ErrorIs(t, err, domainerrors.ErrTokenInvalid)
}

func TestTokenLedger_Validate_RevokedToken(t *testing.T) {
	store := newFakeStore()
	ledger := newTestLedger(t, store)
	ctx := context.Background()

	tokenString, _, err := ledger.Issue(ctx, uuid.New(), entity.TokenAccess, time.Hour, nil)
	require.NoError(t, err)

	won, err := ledger.Revoke(ctx, tokenString)
	require.NoError(t, err)
	assert.True(t, won)

	// The signature still verifies, but the ledger row is dead.
	_, err = ledger.Validate(ctx, tokenString, entity.TokenAccess)
	require.ErrorIs(t, err, domainerrors.ErrTokenInvalid)
}

func TestTokenLedger_Revoke_SingleWinner(t *testing.T) {
	store := newFakeStore()
	ledger := newTestLedger(t, store)
	ctx := context.Background()

	tokenString, _, err := ledger.Issue(ctx, uuid.New(), entity.TokenRefresh, time.Hour, nil)
	require.NoError(t, err)

	first, err := ledger.Revoke(ctx, tokenString)
	require.NoError(t, err)
	second, err := ledger.Revoke(ctx, tokenString)
	require.NoError(t, err)

	assert.True(t, first)
	assert.False(t, second)
}

func TestTokenLedger_Revoke_UnknownToken(t *testing.T) {
	ledger := newTestLedger(t, newFakeStore())

	won, err := ledger.Revoke(context.Background(), "never-issued")
	require.NoError(t, err)
	assert.False(t, won)
}

func TestTokenLedger_RevokeAllForUser_FilteredByKind(t *testing.T) {
	store := newFakeStore()
	ledger := newTestLedger(t, store)
	ctx := context.Background()
	userID := uuid.New()
	otherID := uuid.New()

	access, _, err := ledger.Issue(ctx, userID, entity.TokenAccess, time.Hour, nil)
	require.NoError(t, err)
	refresh, _, err := ledger.Issue(ctx, userID, entity.TokenRefresh, time.Hour, nil)
	require.NoError(t, err)
	foreign, _, err := ledger.Issue(ctx, otherID, entity.TokenRefresh, time.Hour, nil)
	require.NoError(t, err)

	kind := entity.TokenRefresh
	revoked, err := ledger.RevokeAllForUser(ctx, userID, &kind)
	require.NoError(t, err)
	assert.Equal(t, int64(1), revoked)

	assert.False(t, store.tokens[access].IsRevoked)
	assert.True(t, store.tokens[refresh].IsRevoked)
	assert.False(t, store.tokens[foreign].IsRevoked)
}

func TestTokenLedger_PruneExpired_KeepsLiveRows(t *testing.T) {
	store := newFakeStore()
	ledger := newTestLedger(t, store)
	ctx := context.Background()
	userID := uuid.New()

	spent, _, err := ledger.Issue(ctx, userID, entity.TokenAccess, -time.Hour, nil)
	require.NoError(t, err)
	live, _, err := ledger.Issue(ctx, userID, entity.TokenAccess, time.Hour, nil)
	require.NoError(t, err)

	// Only rows that are both revoked and expired are pruned.
	store.tokens[spent].IsRevoked = true

	pruned, err := ledger.PruneExpired(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), pruned)
	assert.NotContains(t, store.tokens, spent)
	assert.Contains(t, store.tokens, live)
}
