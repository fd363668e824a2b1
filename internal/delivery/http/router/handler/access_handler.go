package handler

import (
	"log/slog"
	"net/http"

	"folio/internal/delivery/http/middleware"
	"folio/internal/delivery/http/response"
	"folio/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// AccessHandler holds dependencies for the role/permission
// administration endpoints.
type AccessHandler struct {
	access usecase.AccessControlUsecase
	logger *slog.Logger
}

// NewAccessHandler is the constructor for AccessHandler, injected by Fx.
func NewAccessHandler(access usecase.AccessControlUsecase, logger *slog.Logger) *AccessHandler {
	return &AccessHandler{
		access: access,
		logger: logger,
	}
}

type createRoleRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Description string `json:"description" validate:"omitempty,max=500"`
}

// CreateRole registers a new role.
func (h *AccessHandler) CreateRole(c echo.Context) error {
	var input createRoleRequest
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid role input")
	}
	if err := c.Validate(&input); err != nil {
		return errors.WithStack(err)
	}

	role, err := h.access.CreateRole(c.Request().Context(), usecase.CreateRoleInput{
		Name:        input.Name,
		Description: input.Description,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, newRoleResponse(role), "Role created")
}

// ListRoles returns all roles.
func (h *AccessHandler) ListRoles(c echo.Context) error {
	roles, err := h.access.ListRoles(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}

	out := make([]*roleResponse, len(roles))
	for i, role := range roles {
		out[i] = newRoleResponse(role)
	}

	return response.Success(c, http.StatusOK, out, "Roles listed")
}

type createPermissionRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Description string `json:"description" validate:"omitempty,max=500"`
	Resource    string `json:"resource" validate:"required,max=100"`
	Action      string `json:"action" validate:"required,max=100"`
}

// CreatePermission registers a new permission.
func (h *AccessHandler) CreatePermission(c echo.Context) error {
	var input createPermissionRequest
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid permission input")
	}
	if err := c.Validate(&input); err != nil {
		return errors.WithStack(err)
	}

	permission, err := h.access.CreatePermission(c.Request().Context(), usecase.CreatePermissionInput{
		Name:        input.Name,
		Description: input.Description,
		Resource:    input.Resource,
		Action:      input.Action,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, newPermissionResponse(permission), "Permission created")
}

type grantPermissionRequest struct {
	Permission string `json:"permission" validate:"required"`
}

// GrantPermission links a permission to the role named in the path.
func (h *AccessHandler) GrantPermission(c echo.Context) error {
	roleName := c.Param("name")

	var input grantPermissionRequest
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid grant input")
	}
	if err := c.Validate(&input); err != nil {
		return errors.WithStack(err)
	}

	if err := h.access.AssignPermission(c.Request().Context(), roleName, input.Permission); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]string{
		"role":       roleName,
		"permission": input.Permission,
	}, "Permission granted")
}

// ListRolePermissions returns the permission names linked to the role
// named in the path.
func (h *AccessHandler) ListRolePermissions(c echo.Context) error {
	names, err := h.access.RolePermissions(c.Request().Context(), c.Param("name"))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, names, "Permissions listed")
}

type assignRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

// AssignRole links a role to the user in the path, recording the acting
// administrator.
func (h *AccessHandler) AssignRole(c echo.Context) error {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "user id must be a UUID")
	}

	var input assignRoleRequest
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid assignment input")
	}
	if err := c.Validate(&input); err != nil {
		return errors.WithStack(err)
	}

	var assignedBy *uuid.UUID
	if actorID, ok := middleware.CurrentUserID(c); ok {
		assignedBy = &actorID
	}

	if err := h.access.AssignRole(c.Request().Context(), userID, input.Role, assignedBy); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]string{
		"user_id": userID.String(),
		"role":    input.Role,
	}, "Role assigned")
}

// RemoveRole unlinks a role from the user in the path.
func (h *AccessHandler) RemoveRole(c echo.Context) error {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "user id must be a UUID")
	}

	if err := h.access.RemoveRole(c.Request().Context(), userID, c.Param("role")); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"message": "Role removed"}, "Role removed")
}

// ListUserRoles returns the role names held by the user in the path.
func (h *AccessHandler) ListUserRoles(c echo.Context) error {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "user id must be a UUID")
	}

	names, err := h.access.UserRoles(c.Request().Context(), userID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, names, "Roles listed")
}
