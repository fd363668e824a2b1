// Package handler contains the HTTP handlers for the application.
package handler

import (
	"time"

	"folio/internal/domain/entity"

	"github.com/google/uuid"
)

// userResponse is the outward shape of an account. Credentials and
// provider internals never leave the service.
type userResponse struct {
	ID              uuid.UUID  `json:"id"`
	Email           string     `json:"email"`
	Username        string     `json:"username,omitempty"`
	FullName        string     `json:"full_name,omitempty"`
	AvatarURL       string     `json:"avatar_url,omitempty"`
	IsActive        bool       `json:"is_active"`
	IsVerified      bool       `json:"is_verified"`
	Status          string     `json:"status"`
	HasPassword     bool       `json:"has_password"`
	GoogleLinked    bool       `json:"google_linked"`
	EmailVerifiedAt *time.Time `json:"email_verified_at,omitempty"`
	LastLoginAt     *time.Time `json:"last_login_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func newUserResponse(user *entity.User) *userResponse {
	return &userResponse{
		ID:              user.ID,
		Email:           user.Email,
		Username:        user.Username,
		FullName:        user.FullName,
		AvatarURL:       user.AvatarURL,
		IsActive:        user.IsActive,
		IsVerified:      user.IsVerified,
		Status:          user.Status.String(),
		HasPassword:     user.HasPassword(),
		GoogleLinked:    user.GoogleID != "",
		EmailVerifiedAt: user.EmailVerifiedAt,
		LastLoginAt:     user.LastLoginAt,
		CreatedAt:       user.CreatedAt,
		UpdatedAt:       user.UpdatedAt,
	}
}

func newUserResponses(users []*entity.User) []*userResponse {
	out := make([]*userResponse, len(users))
	for i, user := range users {
		out[i] = newUserResponse(user)
	}

	return out
}

// roleResponse is the outward shape of a role.
type roleResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

func newRoleResponse(role *entity.Role) *roleResponse {
	return &roleResponse{
		ID:          role.ID,
		Name:        role.Name,
		Description: role.Description,
		IsActive:    role.IsActive,
		CreatedAt:   role.CreatedAt,
	}
}

// permissionResponse is the outward shape of a permission.
type permissionResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Resource    string    `json:"resource"`
	Action      string    `json:"action"`
	CreatedAt   time.Time `json:"created_at"`
}

func newPermissionResponse(permission *entity.Permission) *permissionResponse {
	return &permissionResponse{
		ID:          permission.ID,
		Name:        permission.Name,
		Description: permission.Description,
		Resource:    permission.Resource,
		Action:      permission.Action,
		CreatedAt:   permission.CreatedAt,
	}
}
