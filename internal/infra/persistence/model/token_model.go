package model

import (
	"time"

	"github.com/google/uuid"
)

// TokenModel mirrors the 'tokens' table. The encoded token string is
// the lookup key; rows are append-only except for IsRevoked.
type TokenModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	TokenType string    `gorm:"type:varchar(32);not null"`
	TokenHash string    `gorm:"type:varchar(1024);not null;uniqueIndex"`
	ExpiresAt time.Time `gorm:"not null"`
	IsRevoked bool      `gorm:"not null;default:false"`
	Metadata  string    `gorm:"type:text"` // JSON-serialized key-value annotations.
	CreatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (TokenModel) TableName() string {
	return "tokens"
}
