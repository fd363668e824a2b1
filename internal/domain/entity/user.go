// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// UserStatus represents the lifecycle state of a user account.
type UserStatus string

const (
	// StatusPendingVerification is the initial state of password accounts
	// until the verification email is confirmed.
	StatusPendingVerification UserStatus = "pending_verification"
	// StatusActive allows the account to log in.
	StatusActive UserStatus = "active"
	// StatusInactive marks an administratively disabled account.
	StatusInactive UserStatus = "inactive"
	// StatusSuspended marks a suspended account.
	StatusSuspended UserStatus = "suspended"
)

// String returns the string representation of the status.
func (s UserStatus) String() string {
	return string(s)
}

// IsValid checks if the status is a known value.
func (s UserStatus) IsValid() bool {
	switch s {
	case StatusPendingVerification, StatusActive, StatusInactive, StatusSuspended:
		return true
	default:
		return false
	}
}

// User is the identity record at the center of the system.
// A user without a password hash is an OAuth-only account and must carry
// a GoogleID; it cannot authenticate by password.
type User struct {
	ID             uuid.UUID  // The unique identifier for the user.
	Email          string     // Primary contact email, the login identifier. Unique.
	Username       string     // Optional display handle. Unique when set.
	FullName       string     // Optional real or display name.
	HashedPassword string     // bcrypt hash; empty for OAuth-only accounts.
	AvatarURL      string     // Optional profile picture URL.
	GoogleID       string     // Google's 'sub' claim; empty unless a Google identity is linked. Unique when set.
	GoogleEmail    string     // Email reported by Google at link time.
	IsActive       bool       // Administrative on/off switch, gates login.
	IsVerified     bool       // Whether email ownership has been attested.
	Status         UserStatus // Lifecycle state, gates login.
	EmailVerifiedAt *time.Time
	LastLoginAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// HasPassword reports whether the account can authenticate by password.
func (u *User) HasPassword() bool {
	return u.HashedPassword != ""
}

// CanLogin reports whether the account's lifecycle state permits login.
// Pending-verification accounts are rejected separately so the caller
// can return the "verify email" reason.
func (u *User) CanLogin() bool {
	return u.IsActive && u.Status == StatusActive
}

// UserPatch carries optional profile fields for partial updates.
// Nil fields are left untouched by the owning service.
type UserPatch struct {
	Username  *string
	FullName  *string
	AvatarURL *string
}
