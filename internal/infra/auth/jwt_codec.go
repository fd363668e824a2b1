package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"folio/config"
	"folio/internal/domain/entity"
	"folio/internal/domain/service"
)

// jwtCodec is a concrete implementation of the TokenCodec interface using the JWT standard.
// All token kinds share one HS256 signing key; the kind lives in the claim set.
type jwtCodec struct {
	secret []byte
}

// NewJWTCodec is the constructor for jwtCodec.
func NewJWTCodec(cfg *config.Config) (service.TokenCodec, error) {
	if cfg.JWT.Secret == "" {
		return nil, errors.New("jwt secret must be provided")
	}

	return &jwtCodec{secret: []byte(cfg.JWT.Secret)}, nil
}

// Encode creates a signed claim set embedding subject, kind and absolute expiry.
func (c *jwtCodec) Encode(userID uuid.UUID, kind entity.TokenKind, ttl time.Duration, extra map[string]string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)

	claims := jwt.MapClaims{
		"sub":  userID.String(),
		"type": kind.String(),
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
	}
	for k, v := range extra {
		claims[k] = v
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "failed to sign token")
	}

	return signed, expiresAt, nil
}

// reservedClaims are the registered claim names the codec itself owns;
// everything else in the payload round-trips through Claims.Extra.
var reservedClaims = map[string]struct{}{
	"sub": {}, "type": {}, "iat": {}, "exp": {}, "nbf": {}, "iss": {}, "aud": {}, "jti": {},
}

// Decode verifies the signature and embedded expiry, returning the claim set.
func (c *jwtCodec) Decode(tokenString string) (*service.Claims, error) {
	parsed, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		// Reject tokens signed with anything but HMAC.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}

		return c.secret, nil
	})

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, service.ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrSignatureInvalid):
			return nil, service.ErrTokenSignature
		default:
			return nil, errors.Wrap(service.ErrTokenMalformed, err.Error())
		}
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, service.ErrTokenMalformed
	}

	return mapClaimsToClaims(mapClaims)
}

func mapClaimsToClaims(mapClaims jwt.MapClaims) (*service.Claims, error) {
	subject, err := mapClaims.GetSubject()
	if err != nil || subject == "" {
		return nil, errors.Wrap(service.ErrTokenMalformed, "subject claim missing")
	}

	userID, err := uuid.Parse(subject)
	if err != nil {
		return nil, errors.Wrap(service.ErrTokenMalformed, "subject claim is not a user id")
	}

	kindStr, _ := mapClaims["type"].(string)
	kind := entity.TokenKind(kindStr)
	if !kind.IsValid() {
		return nil, errors.Wrap(service.ErrTokenMalformed, "type claim missing or unknown")
	}

	claims := &service.Claims{
		UserID: userID,
		Kind:   kind,
	}

	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp
	}
	if iat, err := mapClaims.GetIssuedAt(); err == nil && iat != nil {
		claims.IssuedAt = iat
	}
	claims.Subject = subject

	for key, value := range mapClaims {
		if _, reserved := reservedClaims[key]; reserved {
			continue
		}
		str, ok := value.(string)
		if !ok {
			continue
		}
		if claims.Extra == nil {
			claims.Extra = make(map[string]string)
		}
		claims.Extra[key] = str
	}

	return claims, nil
}
