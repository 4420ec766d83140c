package entity

import (
	"time"

	"github.com/google/uuid"
)

// Account links a user to an external identity provider. A user with at
// least one account row counts as an OAuth user.
type Account struct {
	ID     uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index"`
	User   User      `gorm:"constraint:OnDelete:CASCADE"`

	Provider          string `gorm:"type:varchar(100);not null"`
	ProviderAccountID string `gorm:"type:varchar(255);not null"`

	CreatedAt time.Time
}
