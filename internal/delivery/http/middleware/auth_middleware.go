package middleware

import (
	"strings"

	domainerrors "folio/internal/domain/errors"
	"folio/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

const (
	// ContextKeyCurrentUser is the echo.Context key holding the resolved bearer.
	ContextKeyCurrentUser = "currentUser"
	// ContextKeyUserID is the echo.Context key holding the bearer's user ID.
	ContextKeyUserID = "userID"
)

// AuthMiddleware guards routes with access-token introspection and
// role/permission checks. Every request re-validates the token against
// the ledger, so revocation takes effect immediately.
type AuthMiddleware struct {
	auth   usecase.AuthUsecase
	access usecase.AccessControlUsecase
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(auth usecase.AuthUsecase, access usecase.AccessControlUsecase) *AuthMiddleware {
	return &AuthMiddleware{auth: auth, access: access}
}

// Authenticate validates the bearer access token and stores the
// resolved user on the context for handlers to use.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
		if authHeader == "" {
			return domainerrors.ErrTokenInvalid.WrapMessage("authorization header is missing")
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			return domainerrors.ErrTokenInvalid.WrapMessage("authorization header must carry a bearer token")
		}

		current, err := m.auth.Introspect(c.Request().Context(), tokenString)
		if err != nil {
			return errors.WithStack(err)
		}

		c.Set(ContextKeyCurrentUser, current)
		c.Set(ContextKeyUserID, current.User.ID)

		return next(c)
	}
}

// RequireRole is a middleware factory that checks if the bearer holds a
// specific role. It must be used AFTER the Authenticate middleware.
func (m *AuthMiddleware) RequireRole(requiredRole string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			current, ok := CurrentUser(c)
			if !ok {
				return domainerrors.ErrForbidden.WrapMessage("role information missing")
			}

			if !current.Roles.Contains(requiredRole) {
				return domainerrors.ErrForbidden.WrapMessage("require '" + requiredRole + "' role")
			}

			return next(c)
		}
	}
}

// RequireAccessManager gates the role/permission administration
// surface. It must be used AFTER the Authenticate middleware.
func (m *AuthMiddleware) RequireAccessManager(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		current, ok := CurrentUser(c)
		if !ok {
			return domainerrors.ErrForbidden.WrapMessage("role information missing")
		}

		granted, err := m.access.CanManageAccess(c.Request().Context(), current.User.ID)
		if err != nil {
			return errors.WithStack(err)
		}
		if !granted {
			return domainerrors.ErrForbidden.WrapMessage("access management permission required")
		}

		return next(c)
	}
}

// CurrentUser extracts the resolved bearer from the context.
func CurrentUser(c echo.Context) (*usecase.CurrentUser, bool) {
	current, ok := c.Get(ContextKeyCurrentUser).(*usecase.CurrentUser)

	return current, ok
}

// CurrentUserID extracts the bearer's user ID from the context.
func CurrentUserID(c echo.Context) (uuid.UUID, bool) {
	id, ok := c.Get(ContextKeyUserID).(uuid.UUID)

	return id, ok
}
