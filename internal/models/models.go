package models

import (
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// User roles. RoleAdmin is the privileged role: it unlocks the admin
// capability surface on the client and user management on the server.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// BaseModel provides common fields and auto-generated ULID for all models
type BaseModel struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(26)"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// BeforeCreate generates a ULID for the ID field if it's empty
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = ulid.Make().String()
	}
	return nil
}

// Config represents the global configuration for the single-tenant deployment
// This is a singleton model (only one row should exist)
type Config struct {
	BaseModel
	// Auto-generated during first setup (64 hex chars)
	JWTSecret string `json:"-" gorm:"type:varchar(64);not null"`
}

// User represents a Folio account
type User struct {
	BaseModel
	Email        string    `json:"email" gorm:"unique;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Name         string    `json:"name"`
	Role         string    `json:"role" gorm:"not null;default:user"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// IsAdmin reports whether the user holds the privileged role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// RevokedToken is a denylist entry for a token invalidated by logout.
// TokenHash is the hex-encoded SHA-256 of the raw bearer token; ExpiresAt
// mirrors the token's own expiry so the row can be pruned once the token
// would no longer validate anyway.
type RevokedToken struct {
	BaseModel
	TokenHash string    `json:"-" gorm:"uniqueIndex;type:varchar(64);not null"`
	ExpiresAt time.Time `json:"expires_at" gorm:"index;not null"`
}

// AutoMigrate runs database migrations for all models
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Config{},
		&User{},
		&RevokedToken{},
	)
}
