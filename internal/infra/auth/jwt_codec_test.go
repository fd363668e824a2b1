package auth

import (
	"testing"
	"time"

	"folio/config"
	"folio/internal/domain/entity"
	"folio/internal/domain/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCodec(t *testing.T, secret string) service.TokenCodec {
	t.Helper()

	cfg := &config.Config{}
	cfg.JWT.Secret = secret

	codec, err := NewJWTCodec(cfg)
	require.NoError(t, err)

	return codec
}

func TestNewJWTCodec_RequiresSecret(t *testing.T) {
	_, err := NewJWTCodec(&config.Config{})

	require.Error(t, err)
}

func TestJWTCodec_EncodeDecode_RoundTrip(t *testing.T) {
	codec := newTestCodec(t, "test-secret")
	userID := uuid.New()

	tokenString, expiresAt, err := codec.Encode(userID, entity.TokenAccess, 30*time.Minute, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, tokenString)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), expiresAt, 5*time.Second)

	claims, err := codec.Decode(tokenString)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, entity.TokenAccess, claims.Kind)
	assert.Empty(t, claims.Extra)
}

func TestJWTCodec_Decode_ExtraClaims(t *testing.T) {
	codec := newTestCodec(t, "test-secret")

	tokenString, _, err := codec.Encode(uuid.New(), entity.TokenResetPassword, time.Hour,
		map[string]string{"purpose": "password_reset"})
	require.NoError(t, err)

	claims, err := codec.Decode(tokenString)
	require.NoError(t, err)
	assert.Equal(t, entity.TokenResetPassword, claims.Kind)
	assert.Equal(t, "password_reset", claims.Extra["purpose"])
}

func TestJWTCodec_Decode_WrongSecret(t *testing.T) {
	issuer := newTestCodec(t, "secret-a")
	verifier := newTestCodec(t, "secret-b")

	tokenString, _, err := issuer.Encode(uuid.New(), entity.TokenAccess, time.Minute, nil)
	require.NoError(t, err)

	_, err = verifier.Decode(tokenString)
	require.ErrorIs(t, err, service.ErrTokenSignature)
}

func TestJWTCodec_Decode_Expired(t *testing.T) {
	codec := newTestCodec(t, "test-secret")

	tokenString, _, err := codec.Encode(uuid.New(), entity.TokenAccess, -time.Minute, nil)
	require.NoError(t, err)

	_, err = codec.Decode(tokenString)
	require.ErrorIs(t, err, service.ErrTokenExpired)
}

func TestJWTCodec_Decode_Garbage(t *testing.T) {
	codec := newTestCodec(t, "test-secret")

	_, err := codec.Decode("not-a-token")
	require.ErrorIs(t, err, service.ErrTokenMalformed)
}

func TestJWTCodec_Decode_UnknownKind(t *testing.T) {
	codec := newTestCodec(t, "test-secret")

	tokenString, _, err := codec.Encode(uuid.New(), entity.TokenKind("mystery"), time.Minute, nil)
	require.NoError(t, err)

	_, err = codec.Decode(tokenString)
	require.ErrorIs(t, err, service.ErrTokenMalformed)
}
