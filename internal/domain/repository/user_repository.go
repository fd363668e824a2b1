// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"folio/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrUserNotFound is a domain-specific error returned when a user is not found.
var ErrUserNotFound = errors.New("user not found")

// ListUsersQuery carries pagination and filters for user listing.
type ListUsersQuery struct {
	Offset   int
	Limit    int
	IsActive *bool
	Status   *entity.UserStatus
	// Search matches email, username or full name, case-insensitively.
	Search string
}

// UserRepository defines the standard operations for user persistence.
// The application layer will depend on this interface, not the concrete implementation.
type UserRepository interface {
	// FindByID retrieves a single user by their unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)

	// FindByEmail retrieves a single user by their email address.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByGoogleID retrieves a single user by their linked Google subject ID.
	FindByGoogleID(ctx context.Context, googleID string) (*entity.User, error)

	// List retrieves users matching the query, ordered by creation time.
	List(ctx context.Context, query ListUsersQuery) ([]*entity.User, error)

	// Create persists a new user entity to the storage.
	Create(ctx context.Context, user *entity.User) error

	// Update modifies an existing user entity in the storage.
	Update(ctx context.Context, user *entity.User) error

	// Delete removes a user. The store cascades deletion to the user's
	// tokens and role links.
	Delete(ctx context.Context, id uuid.UUID) error
}
