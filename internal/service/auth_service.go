package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"authflow/internal/entity"
	"authflow/internal/repository"
	"authflow/internal/utils"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type AuthService struct {
	users         repository.UserRepository
	accounts      repository.AccountRepository
	tokens        repository.TokenRepository
	confirmations repository.TwoFactorConfirmationRepository
	securityLogs  repository.SecurityLogRepository

	emailSender  EmailSender
	passwordHash PasswordHasher
	tokenIssuer  *TokenIssuer
	sessions     SessionProvider
	limiter      LoginLimiter
	clock        Clock
}

func NewAuthService(
	users repository.UserRepository,
	accounts repository.AccountRepository,
	tokens repository.TokenRepository,
	confirmations repository.TwoFactorConfirmationRepository,
	securityLogs repository.SecurityLogRepository,
	emailSender EmailSender,
	passwordHash PasswordHasher,
	tokenIssuer *TokenIssuer,
	sessions SessionProvider,
	limiter LoginLimiter,
	clock Clock,
) *AuthService {
	return &AuthService{
		users:         users,
		accounts:      accounts,
		tokens:        tokens,
		confirmations: confirmations,
		securityLogs:  securityLogs,
		emailSender:   emailSender,
		passwordHash:  passwordHash,
		tokenIssuer:   tokenIssuer,
		sessions:      sessions,
		limiter:       limiter,
		clock:         clock,
	}
}

// Login runs the credential sign-in state machine. The checks run in a fixed
// order dictated by security precedence, not cost: account existence must
// not leak before the OAuth gate, and the second factor must not be prompted
// before the email is verified. The first failing check short-circuits.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	// rate check before anything else, keyed by ip:email
	email := utils.NormalizeEmail(input.Email)
	if s.limiter != nil {
		limit, err := s.limiter.Limit(ctx, input.IPAddress+":"+email)
		if err != nil {
			return nil, err
		}
		if !limit.Allowed {
			return nil, &RateLimitedError{RetryAfter: limit.RetryAfter}
		}
	}

	if email == "" || input.Password == "" {
		return nil, ErrInvalidInput
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		_ = s.logSecurity(ctx, nil, input.IPAddress, entity.LoginFailed, map[string]any{"email": email})
		return nil, ErrInvalidCredentials
	}

	if user.Email == nil || user.PasswordHash == nil {
		return nil, ErrOAuthAccount
	}

	if user.EmailVerifiedAt == nil {
		token, err := s.tokenIssuer.Issue(ctx, entity.TokenKindVerification, *user.Email)
		if err != nil {
			return nil, err
		}
		if err := s.emailSender.SendVerificationEmail(ctx, token.Email, token.Token); err != nil {
			return nil, err
		}
		return &LoginResult{Success: "Confirmation email sent!"}, nil
	}

	if user.IsTwoFactorEnabled {
		if input.Code != "" {
			if err := s.verifyTwoFactorCode(ctx, user, input); err != nil {
				return nil, err
			}
		} else {
			if !s.passwordHash.Verify(*user.PasswordHash, input.Password) {
				_ = s.logSecurity(ctx, &user.ID, input.IPAddress, entity.LoginFailed, map[string]any{"email": email})
				return nil, ErrInvalidCredentials
			}
			token, err := s.tokenIssuer.Issue(ctx, entity.TokenKindTwoFactor, *user.Email)
			if err != nil {
				return nil, err
			}
			if err := s.emailSender.SendTwoFactorCodeEmail(ctx, token.Email, token.Token); err != nil {
				return nil, err
			}
			return &LoginResult{TwoFactor: true}, nil
		}
	}

	sessionToken, ttl, err := s.sessions.CreateCredentialsSession(ctx, email, input.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrCredentialsSignin):
			_ = s.logSecurity(ctx, &user.ID, input.IPAddress, entity.LoginFailed, map[string]any{"email": email})
			return nil, ErrInvalidCredentials
		case errors.Is(err, ErrAccessDenied):
			return nil, ErrSomethingWentWrong
		default:
			return nil, err
		}
	}

	_ = s.logSecurity(ctx, &user.ID, input.IPAddress, entity.LoginSuccess, nil)
	return &LoginResult{
		SessionToken: sessionToken,
		ExpiresIn:    int64(ttl.Seconds()),
		Success:      "Logged in!",
	}, nil
}

// verifyTwoFactorCode consumes the emailed code and replaces any prior
// confirmation with a fresh single-use one for the sign-in gate.
func (s *AuthService) verifyTwoFactorCode(ctx context.Context, user *entity.User, input LoginInput) error {
	token, err := s.tokens.FindByEmail(ctx, entity.TokenKindTwoFactor, *user.Email)
	if err != nil {
		return err
	}
	if token == nil || token.Token != input.Code {
		_ = s.logSecurity(ctx, &user.ID, input.IPAddress, entity.TwoFactorFailed, nil)
		return ErrInvalidCode
	}
	if token.Expired(s.now()) {
		return ErrCodeExpired
	}
	if err := s.tokens.Delete(ctx, entity.TokenKindTwoFactor, token.ID); err != nil {
		return err
	}
	return s.confirmations.Replace(ctx, &entity.TwoFactorConfirmation{UserID: user.ID})
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (string, error) {
	email := utils.NormalizeEmail(input.Email)
	name := strings.TrimSpace(input.Name)
	if email == "" || input.Password == "" || name == "" {
		return "", ErrInvalidInput
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return "", ErrEmailTaken
	}

	hash, err := s.passwordHash.Hash(input.Password)
	if err != nil {
		return "", err
	}
	user := &entity.User{
		Email:        &email,
		PasswordHash: &hash,
		Name:         &name,
		Role:         entity.UserRoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return "", err
	}

	token, err := s.tokenIssuer.Issue(ctx, entity.TokenKindVerification, email)
	if err != nil {
		return "", err
	}
	if err := s.emailSender.SendVerificationEmail(ctx, token.Email, token.Token); err != nil {
		return "", err
	}
	return "Confirmation email sent", nil
}

func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	email = utils.NormalizeEmail(email)
	if email == "" {
		return "", ErrInvalidInput
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", ErrEmailNotFound
	}

	token, err := s.tokenIssuer.Issue(ctx, entity.TokenKindPasswordReset, email)
	if err != nil {
		return "", err
	}
	if err := s.emailSender.SendPasswordResetEmail(ctx, token.Email, token.Token); err != nil {
		return "", err
	}
	return "Reset email sent!", nil
}

func (s *AuthService) NewPassword(ctx context.Context, tokenValue string, password string) (string, error) {
	if tokenValue == "" {
		return "", ErrMissingToken
	}
	if password == "" {
		return "", ErrInvalidInput
	}

	token, err := s.tokens.FindByToken(ctx, entity.TokenKindPasswordReset, tokenValue)
	if err != nil {
		return "", err
	}
	if token == nil {
		return "", ErrTokenNotFound
	}
	if token.Expired(s.now()) {
		return "", ErrTokenExpired
	}

	user, err := s.users.FindByEmail(ctx, token.Email)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", ErrUserNotFound
	}

	hash, err := s.passwordHash.Hash(password)
	if err != nil {
		return "", err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return "", err
	}
	if err := s.tokens.Delete(ctx, entity.TokenKindPasswordReset, token.ID); err != nil {
		return "", err
	}

	_ = s.logSecurity(ctx, &user.ID, "", entity.Reset, nil)
	return "Password updated!", nil
}

func (s *AuthService) NewVerification(ctx context.Context, tokenValue string) (string, error) {
	token, err := s.tokens.FindByToken(ctx, entity.TokenKindVerification, tokenValue)
	if err != nil {
		return "", err
	}
	if token == nil {
		return "", ErrTokenNotExist
	}
	if token.Expired(s.now()) {
		return "", ErrTokenExpired
	}

	user, err := s.users.FindByEmail(ctx, token.Email)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", ErrUserNotFound
	}

	// the token's email becomes the current one, covering email changes
	if err := s.users.VerifyEmail(ctx, user.ID, token.Email); err != nil {
		return "", err
	}
	if err := s.tokens.Delete(ctx, entity.TokenKindVerification, token.ID); err != nil {
		return "", err
	}
	return "Email verified!", nil
}

func (s *AuthService) UpdateSettings(ctx context.Context, userID uuid.UUID, input SettingsInput) (string, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", ErrUnauthorized
	}

	// OAuth users manage email, password and the second factor at their provider
	if input.IsOAuth {
		input.Email = nil
		input.Password = nil
		input.NewPassword = nil
		input.IsTwoFactorEnabled = nil
	}

	if input.Email != nil {
		newEmail := utils.NormalizeEmail(*input.Email)
		if newEmail != "" && (user.Email == nil || newEmail != *user.Email) {
			existing, err := s.users.FindByEmail(ctx, newEmail)
			if err != nil {
				return "", err
			}
			if existing != nil && existing.ID != user.ID {
				return "", ErrEmailInUse
			}

			token, err := s.tokenIssuer.Issue(ctx, entity.TokenKindVerification, newEmail)
			if err != nil {
				return "", err
			}
			if err := s.emailSender.SendVerificationEmail(ctx, token.Email, token.Token); err != nil {
				return "", err
			}

			user.Email = &newEmail
			user.EmailVerifiedAt = nil
			if err := s.users.Update(ctx, user); err != nil {
				return "", err
			}
			return "Verification email sent!", nil
		}
	}

	if input.Password != nil && input.NewPassword != nil && user.PasswordHash != nil {
		if !s.passwordHash.Verify(*user.PasswordHash, *input.Password) {
			return "", ErrIncorrectPassword
		}
		hash, err := s.passwordHash.Hash(*input.NewPassword)
		if err != nil {
			return "", err
		}
		user.PasswordHash = &hash
	}

	if input.Name != nil && strings.TrimSpace(*input.Name) != "" {
		user.Name = input.Name
	}
	if input.IsTwoFactorEnabled != nil {
		user.IsTwoFactorEnabled = *input.IsTwoFactorEnabled
	}

	if err := s.users.Update(ctx, user); err != nil {
		return "", err
	}
	return "Settings updated", nil
}

// OAuthSignIn handles a provider-verified profile: first sign-in creates the
// user with the email already verified, and linking an account re-stamps
// verification the way the provider adapter's link event does.
func (s *AuthService) OAuthSignIn(ctx context.Context, input OAuthSignInInput) (*LoginResult, error) {
	email := utils.NormalizeEmail(input.Email)
	if email == "" || input.Provider == "" {
		return nil, ErrInvalidInput
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		now := s.now()
		user = &entity.User{
			Email:           &email,
			Role:            entity.UserRoleUser,
			EmailVerifiedAt: &now,
		}
		if input.Name != "" {
			name := input.Name
			user.Name = &name
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, err
		}
	}

	linked, err := s.accounts.ExistsByUserID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if !linked {
		account := &entity.Account{
			UserID:            user.ID,
			Provider:          input.Provider,
			ProviderAccountID: input.ProviderAccountID,
		}
		if err := s.accounts.Create(ctx, account); err != nil {
			return nil, err
		}
		if err := s.users.VerifyEmail(ctx, user.ID, email); err != nil {
			return nil, err
		}
	}

	sessionToken, ttl, err := s.sessions.CreateOAuthSession(ctx, user)
	if err != nil {
		return nil, err
	}
	_ = s.logSecurity(ctx, &user.ID, "", entity.LoginSuccess, map[string]any{"provider": input.Provider})
	return &LoginResult{SessionToken: sessionToken, ExpiresIn: int64(ttl.Seconds()), Success: "Logged in!"}, nil
}

func (s *AuthService) RefreshSession(ctx context.Context, rawToken string) (string, int64, error) {
	token, ttl, err := s.sessions.Refresh(ctx, rawToken)
	if err != nil {
		return "", 0, err
	}
	return token, int64(ttl.Seconds()), nil
}

func (s *AuthService) Logout(ctx context.Context, userID *uuid.UUID, ip string) {
	_ = s.logSecurity(ctx, userID, ip, entity.Logout, nil)
}

func (s *AuthService) logSecurity(
	ctx context.Context,
	userID *uuid.UUID,
	ipAddress string,
	action entity.SecurityAction,
	metadata map[string]any,
) error {
	if s.securityLogs == nil {
		return nil
	}
	var payload datatypes.JSON
	if metadata != nil {
		bytes, err := json.Marshal(metadata)
		if err != nil {
			return err
		}
		payload = datatypes.JSON(bytes)
	}

	log := &entity.SecurityLog{
		UserID:   userID,
		Action:   action,
		Metadata: payload,
	}
	if ipAddress != "" {
		log.IPAddress = &ipAddress
	}
	return s.securityLogs.Log(ctx, log)
}

func (s *AuthService) now() time.Time {
	if s.clock == nil {
		return time.Now()
	}
	return s.clock.Now()
}
