package repository

import (
	"context"
	"errors"

	"folio/internal/domain/entity"

	"github.com/google/uuid"
)

// Domain-specific errors for access-control persistence.
var (
	// ErrRoleNotFound is returned when a role is not found by name or ID.
	ErrRoleNotFound = errors.New("role not found")
	// ErrPermissionNotFound is returned when a permission is not found.
	ErrPermissionNotFound = errors.New("permission not found")
	// ErrLinkNotFound is returned when a user-role or role-permission link is missing.
	ErrLinkNotFound = errors.New("link not found")
	// ErrDuplicateLink is returned when a link already exists.
	ErrDuplicateLink = errors.New("link already exists")
	// ErrDuplicateName is returned on a role/permission name collision.
	ErrDuplicateName = errors.New("name already exists")
)

// AccessRepository defines the persistence operations of the
// role/permission authorization model.
type AccessRepository interface {
	// CreateRole persists a new role. Fails with ErrDuplicateName on a
	// name collision.
	CreateRole(ctx context.Context, role *entity.Role) error

	// FindRoleByName retrieves a role by its unique name.
	FindRoleByName(ctx context.Context, name string) (*entity.Role, error)

	// ListRoles retrieves all roles.
	ListRoles(ctx context.Context) ([]*entity.Role, error)

	// CreatePermission persists a new permission. Fails with
	// ErrDuplicateName on a name collision.
	CreatePermission(ctx context.Context, permission *entity.Permission) error

	// FindPermissionByName retrieves a permission by its unique name.
	FindPermissionByName(ctx context.Context, name string) (*entity.Permission, error)

	// CreateUserRole links a user to a role. Fails with ErrDuplicateLink
	// if the pair already exists.
	CreateUserRole(ctx context.Context, link *entity.UserRole) error

	// DeleteUserRole removes a user-role link. Fails with ErrLinkNotFound
	// if the pair does not exist.
	DeleteUserRole(ctx context.Context, userID, roleID uuid.UUID) error

	// ListRoleNamesByUser returns the names of all roles the user holds.
	ListRoleNamesByUser(ctx context.Context, userID uuid.UUID) (entity.RoleNames, error)

	// CreateRolePermission links a role to a permission. Fails with
	// ErrDuplicateLink if the pair already exists.
	CreateRolePermission(ctx context.Context, link *entity.RolePermission) error

	// ListPermissionNamesByRole returns the names of all permissions
	// linked to the role.
	ListPermissionNamesByRole(ctx context.Context, roleID uuid.UUID) ([]string, error)

	// UserHasPermission reports whether any role held by the user is
	// linked to a permission with the given name.
	UserHasPermission(ctx context.Context, userID uuid.UUID, permissionName string) (bool, error)
}
