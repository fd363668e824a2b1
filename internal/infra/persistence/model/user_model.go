// Package model holds the GORM persistence models mirrored to the
// PostgreSQL schema. Mapping to and from domain entities happens in the
// postgres package.
package model

import (
	"time"

	"github.com/google/uuid"
)

// UserModel mirrors the 'users' table.
// Username and GoogleID are pointers so absent values persist as NULL
// and do not collide on their unique indexes.
type UserModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	Email          string    `gorm:"type:varchar(255);unique;not null"`
	Username       *string   `gorm:"type:varchar(100);unique"`
	FullName       string    `gorm:"type:varchar(255)"`
	HashedPassword string    `gorm:"type:varchar(255)"`
	AvatarURL      string    `gorm:"type:varchar(500)"`
	GoogleID       *string   `gorm:"type:varchar(255);unique"`
	GoogleEmail    string    `gorm:"type:varchar(255)"`
	IsActive       bool      `gorm:"not null;default:true"`
	IsVerified     bool      `gorm:"not null;default:false"`
	Status         string    `gorm:"type:varchar(32);not null;default:'pending_verification'"`
	EmailVerifiedAt *time.Time
	LastLoginAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Tokens    []TokenModel    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	UserRoles []UserRoleModel `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// TableName explicitly sets the table name for GORM.
func (UserModel) TableName() string {
	return "users"
}
