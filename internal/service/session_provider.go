package service

import (
	"context"
	"time"

	"authflow/internal/entity"
	"authflow/internal/repository"
	"authflow/internal/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const dummyPasswordHash = "$2a$10$CwTycUXWue0Thq9StjUM0uJ8yQbWc1x9uxw2sQ2sXUNx5x9xJ9F2S"

// SessionProvider issues and refreshes the stateless session token. The
// credentials path verifies the password and runs the sign-in gate; the
// OAuth path trusts the external provider and bypasses the gate.
type SessionProvider interface {
	CreateCredentialsSession(ctx context.Context, email string, password string) (string, time.Duration, error)
	CreateOAuthSession(ctx context.Context, user *entity.User) (string, time.Duration, error)
	Refresh(ctx context.Context, rawToken string) (string, time.Duration, error)
}

type jwtSessionProvider struct {
	users         repository.UserRepository
	accounts      repository.AccountRepository
	confirmations repository.TwoFactorConfirmationRepository
	passwordHash  PasswordHasher
	jwt           *utils.JWTManager
}

func NewJWTSessionProvider(
	users repository.UserRepository,
	accounts repository.AccountRepository,
	confirmations repository.TwoFactorConfirmationRepository,
	passwordHash PasswordHasher,
	manager *utils.JWTManager,
) SessionProvider {
	return &jwtSessionProvider{
		users:         users,
		accounts:      accounts,
		confirmations: confirmations,
		passwordHash:  passwordHash,
		jwt:           manager,
	}
}

func (p *jwtSessionProvider) CreateCredentialsSession(ctx context.Context, email string, password string) (string, time.Duration, error) {
	user, err := p.users.FindByEmail(ctx, email)
	if err != nil {
		return "", 0, err
	}
	if user == nil || user.PasswordHash == nil {
		// burn a comparison so unknown emails cost the same as bad passwords
		_ = p.passwordHash.Verify(dummyPasswordHash, password)
		return "", 0, ErrCredentialsSignin
	}
	if !p.passwordHash.Verify(*user.PasswordHash, password) {
		return "", 0, ErrCredentialsSignin
	}

	if err := p.signInGate(ctx, user); err != nil {
		return "", 0, err
	}
	return p.issue(ctx, user)
}

func (p *jwtSessionProvider) CreateOAuthSession(ctx context.Context, user *entity.User) (string, time.Duration, error) {
	return p.issue(ctx, user)
}

// signInGate is the single owner of the email-verification and two-factor
// checks at issuance time. It consumes the TwoFactorConfirmation so each
// completed second factor authorizes exactly one sign-in.
func (p *jwtSessionProvider) signInGate(ctx context.Context, user *entity.User) error {
	if user.EmailVerifiedAt == nil {
		return ErrAccessDenied
	}
	if !user.IsTwoFactorEnabled {
		return nil
	}

	confirmation, err := p.confirmations.FindByUserID(ctx, user.ID)
	if err != nil {
		return err
	}
	if confirmation == nil {
		return ErrAccessDenied
	}
	return p.confirmations.Delete(ctx, confirmation.ID)
}

// Refresh re-derives the token's user fields from the database. isOAuth is
// recomputed from account existence on every refresh, so linking or
// unlinking a provider shows up on the next refresh rather than immediately.
func (p *jwtSessionProvider) Refresh(ctx context.Context, rawToken string) (string, time.Duration, error) {
	claims, err := p.jwt.ParseSessionToken(rawToken)
	if err != nil {
		return "", 0, utils.ErrInvalidToken
	}
	if claims.Subject == "" {
		return rawToken, 0, nil
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return rawToken, 0, nil
	}
	user, err := p.users.FindByID(ctx, userID)
	if err != nil {
		return "", 0, err
	}
	if user == nil {
		return rawToken, 0, nil
	}
	return p.issue(ctx, user)
}

func (p *jwtSessionProvider) issue(ctx context.Context, user *entity.User) (string, time.Duration, error) {
	isOAuth, err := p.accounts.ExistsByUserID(ctx, user.ID)
	if err != nil {
		return "", 0, err
	}

	claims := utils.SessionClaims{
		Role:               string(user.Role),
		IsTwoFactorEnabled: user.IsTwoFactorEnabled,
		IsOAuth:            isOAuth,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: user.ID.String(),
		},
	}
	if user.Name != nil {
		claims.Name = *user.Name
	}
	if user.Email != nil {
		claims.Email = *user.Email
	}
	return p.jwt.IssueSessionToken(claims)
}
