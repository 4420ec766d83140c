package service

import (
	"context"
	"time"

	"authflow/internal/entity"
	"authflow/internal/repository"
	"authflow/internal/utils"

	"github.com/google/uuid"
)

// TokenIssuer mints single-use tokens. Issuing replaces any live token the
// email already holds, so a user re-requesting an email never accumulates
// rows and only the latest link or code works.
type TokenIssuer struct {
	tokens repository.TokenRepository
	clock  Clock
	config AuthConfig
}

func NewTokenIssuer(tokens repository.TokenRepository, clock Clock, config AuthConfig) *TokenIssuer {
	return &TokenIssuer{tokens: tokens, clock: clock, config: config}
}

func (i *TokenIssuer) Issue(ctx context.Context, kind entity.TokenKind, email string) (*entity.AuthToken, error) {
	value, err := i.tokenValue(kind)
	if err != nil {
		return nil, err
	}

	token := &entity.AuthToken{
		Email:     email,
		Token:     value,
		ExpiresAt: i.now().Add(i.ttl(kind)),
	}
	if err := i.tokens.Replace(ctx, kind, token); err != nil {
		return nil, err
	}
	return token, nil
}

func (i *TokenIssuer) tokenValue(kind entity.TokenKind) (string, error) {
	if kind == entity.TokenKindTwoFactor {
		return utils.GenerateNumericCode(6)
	}
	return uuid.NewString(), nil
}

func (i *TokenIssuer) ttl(kind entity.TokenKind) time.Duration {
	switch kind {
	case entity.TokenKindPasswordReset:
		if i.config.ResetTokenTTL > 0 {
			return i.config.ResetTokenTTL
		}
		return time.Hour
	case entity.TokenKindTwoFactor:
		if i.config.TwoFactorTokenTTL > 0 {
			return i.config.TwoFactorTokenTTL
		}
		return 15 * time.Minute
	default:
		if i.config.VerificationTokenTTL > 0 {
			return i.config.VerificationTokenTTL
		}
		return time.Hour
	}
}

func (i *TokenIssuer) now() time.Time {
	if i.clock == nil {
		return time.Now()
	}
	return i.clock.Now()
}
