package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"folio/internal/delivery/http/middleware"
	"folio/internal/delivery/http/response"
	"folio/internal/domain/entity"
	domainerrors "folio/internal/domain/errors"
	"folio/internal/domain/repository"
	"folio/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// UserHandler holds dependencies for account endpoints: the bearer's
// own profile plus the administrative user listing.
type UserHandler struct {
	identity usecase.IdentityUsecase
	logger   *slog.Logger
}

// NewUserHandler is the constructor for UserHandler, injected by Fx.
func NewUserHandler(identity usecase.IdentityUsecase, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		identity: identity,
		logger:   logger,
	}
}

type updateProfileRequest struct {
	Username  *string `json:"username" validate:"omitempty,min=3,max=100"`
	FullName  *string `json:"full_name" validate:"omitempty,max=255"`
	AvatarURL *string `json:"avatar_url" validate:"omitempty,url,max=500"`
}

// UpdateProfile applies a partial update to the bearer's own profile.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return domainerrors.ErrTokenInvalid.WrapMessage("no authenticated user on request")
	}

	var input updateProfileRequest
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid profile input")
	}
	if err := c.Validate(&input); err != nil {
		return errors.WithStack(err)
	}

	user, err := h.identity.UpdateProfile(c.Request().Context(), userID, entity.UserPatch{
		Username:  input.Username,
		FullName:  input.FullName,
		AvatarURL: input.AvatarURL,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newUserResponse(user), "Profile updated")
}

type updatePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=128"`
}

// UpdatePassword replaces the bearer's password after checking the
// current one.
func (h *UserHandler) UpdatePassword(c echo.Context) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return domainerrors.ErrTokenInvalid.WrapMessage("no authenticated user on request")
	}

	var input updatePasswordRequest
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid password input")
	}
	if err := c.Validate(&input); err != nil {
		return errors.WithStack(err)
	}

	if err := h.identity.UpdatePassword(c.Request().Context(), userID, input.CurrentPassword, input.NewPassword); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"message": "Password updated"}, "Password updated")
}

// ListUsers returns accounts matching the query filters. Admin surface.
func (h *UserHandler) ListUsers(c echo.Context) error {
	query := repository.ListUsersQuery{Search: c.QueryParam("search")}

	if v := c.QueryParam("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < 0 {
			return response.BadRequest(c, "INVALID_INPUT", "offset must be a non-negative integer")
		}
		query.Offset = offset
	}
	if v := c.QueryParam("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit <= 0 {
			return response.BadRequest(c, "INVALID_INPUT", "limit must be a positive integer")
		}
		query.Limit = limit
	}
	if v := c.QueryParam("is_active"); v != "" {
		isActive, err := strconv.ParseBool(v)
		if err != nil {
			return response.BadRequest(c, "INVALID_INPUT", "is_active must be a boolean")
		}
		query.IsActive = &isActive
	}
	if v := c.QueryParam("status"); v != "" {
		status := entity.UserStatus(v)
		if !status.IsValid() {
			return response.BadRequest(c, "INVALID_INPUT", "unknown status value")
		}
		query.Status = &status
	}

	users, err := h.identity.ListUsers(c.Request().Context(), query)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newUserResponses(users), "Users listed")
}

// GetUser returns a single account by ID. Admin surface.
func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "user id must be a UUID")
	}

	user, err := h.identity.GetUser(c.Request().Context(), id)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newUserResponse(user), "User found")
}

// DeleteUser removes an account. Admin surface; tokens and role links
// cascade.
func (h *UserHandler) DeleteUser(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "user id must be a UUID")
	}

	if err := h.identity.DeleteUser(c.Request().Context(), id); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"message": "User deleted"}, "User deleted")
}
