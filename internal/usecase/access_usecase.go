package usecase

import (
	"context"

	"folio/internal/domain/entity"

	"github.com/google/uuid"
)

// CreateRoleInput carries the fields for a new role.
type CreateRoleInput struct {
	Name        string
	Description string
}

// CreatePermissionInput carries the fields for a new permission.
type CreatePermissionInput struct {
	Name        string
	Description string
	Resource    string
	Action      string
}

// AccessControlUsecase defines the role/permission authorization
// operations. Grants take effect on the next resolution; nothing is
// cached between calls.
type AccessControlUsecase interface {
	// CreateRole registers a new role with a unique name.
	CreateRole(ctx context.Context, input CreateRoleInput) (*entity.Role, error)

	// ListRoles returns all roles.
	ListRoles(ctx context.Context) ([]*entity.Role, error)

	// CreatePermission registers a new permission with a unique name.
	CreatePermission(ctx context.Context, input CreatePermissionInput) (*entity.Permission, error)

	// AssignRole links a role to a user by role name, recording who made
	// the assignment. Assigning an already-held role is a conflict.
	AssignRole(ctx context.Context, userID uuid.UUID, roleName string, assignedBy *uuid.UUID) error

	// RemoveRole unlinks a role from a user by role name.
	RemoveRole(ctx context.Context, userID uuid.UUID, roleName string) error

	// AssignPermission links a permission to a role, both by name.
	AssignPermission(ctx context.Context, roleName, permissionName string) error

	// UserRoles returns the names of the roles the user holds.
	UserRoles(ctx context.Context, userID uuid.UUID) (entity.RoleNames, error)

	// RolePermissions returns the permission names linked to a role.
	RolePermissions(ctx context.Context, roleName string) ([]string, error)

	// HasRole reports whether the user holds the named role.
	HasRole(ctx context.Context, userID uuid.UUID, roleName string) (bool, error)

	// HasPermission reports whether any active role of the user grants
	// the named permission.
	HasPermission(ctx context.Context, userID uuid.UUID, permissionName string) (bool, error)

	// EnsureDefaultRole assigns the default role to the user, creating
	// the role row on first use. Holding it already is not an error.
	EnsureDefaultRole(ctx context.Context, userID uuid.UUID) error

	// CanManageAccess reports whether the user may administer roles and
	// permissions: either through the manage permission or by holding
	// the admin role.
	CanManageAccess(ctx context.Context, userID uuid.UUID) (bool, error)
}
