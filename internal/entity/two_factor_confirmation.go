package entity

import (
	"time"

	"github.com/google/uuid"
)

// TwoFactorConfirmation marks that a user completed the second factor for
// the current sign-in attempt. Consumed once by the sign-in gate.
type TwoFactorConfirmation struct {
	ID     uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	User   User      `gorm:"constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
}
