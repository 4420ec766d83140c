package entity

import (
	"time"

	"github.com/google/uuid"
)

// TokenKind selects one of the three single-use token tables. The tables
// share a row shape and differ only in purpose and expiry.
type TokenKind string

const (
	TokenKindVerification  TokenKind = "verification"
	TokenKindPasswordReset TokenKind = "password_reset"
	TokenKindTwoFactor     TokenKind = "two_factor"
)

// TableName maps a kind to its backing table.
func (k TokenKind) TableName() string {
	switch k {
	case TokenKindPasswordReset:
		return "password_reset_tokens"
	case TokenKindTwoFactor:
		return "two_factor_tokens"
	default:
		return "verification_tokens"
	}
}

// AuthToken is a single-use token owned by an email address. The unique
// index on email backs the at-most-one-live-token-per-email invariant.
type AuthToken struct {
	ID    uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	Token string    `gorm:"type:varchar(255);uniqueIndex;not null"`

	ExpiresAt time.Time `gorm:"not null"`
	CreatedAt time.Time
}

func (t *AuthToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
