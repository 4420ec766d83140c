package entity

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	UserRoleAdmin UserRole = "ADMIN"
	UserRoleUser  UserRole = "USER"
)

// User is the identity record. Email and PasswordHash are nullable: an
// OAuth-only user has no password hash, and email stays unset until the
// provider supplies one.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name         *string   `gorm:"type:varchar(255)"`
	Email        *string   `gorm:"type:varchar(255);uniqueIndex"`
	PasswordHash *string   `gorm:"type:text"`
	Role         UserRole  `gorm:"type:user_role;default:'USER';not null"`

	EmailVerifiedAt    *time.Time
	IsTwoFactorEnabled bool `gorm:"default:false;not null"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Accounts []Account
}

func (u *User) EmailOrEmpty() string {
	if u.Email == nil {
		return ""
	}
	return *u.Email
}
