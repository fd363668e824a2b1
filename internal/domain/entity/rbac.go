package entity

import (
	"time"

	"github.com/google/uuid"
)

// DefaultRoleName is granted to every newly created user. The role is
// bootstrapped lazily on first use.
const DefaultRoleName = "user"

// AdminRoleName carries implicit access to the access-control admin surface.
const AdminRoleName = "admin"

// ManageAccessPermission guards role/permission administration.
const ManageAccessPermission = "rbac:manage"

// Role is a named bundle of permissions assignable to users. Unique by name.
type Role struct {
	ID          uuid.UUID
	Name        string
	Description string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Permission is an atomic authorization unit scoped by (resource, action).
// Unique by name.
type Permission struct {
	ID          uuid.UUID
	Name        string // Conventionally "resource:action", e.g. "project:delete".
	Description string
	Resource    string
	Action      string
	CreatedAt   time.Time
}

// UserRole links a user to a role and records the assigning actor.
// (UserID, RoleID) is unique.
type UserRole struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	RoleID     uuid.UUID
	AssignedBy *uuid.UUID // Nil for system-assigned roles (e.g. the default role).
	AssignedAt time.Time
}

// RolePermission links a role to a permission. (RoleID, PermissionID) is unique.
type RolePermission struct {
	ID           uuid.UUID
	RoleID       uuid.UUID
	PermissionID uuid.UUID
	CreatedAt    time.Time
}

// RoleNames is a convenience slice of role names.
type RoleNames []string

// Contains checks if the slice holds a specific role name.
func (rs RoleNames) Contains(name string) bool {
	for _, r := range rs {
		if r == name {
			return true
		}
	}

	return false
}
