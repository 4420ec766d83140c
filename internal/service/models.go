package service

type LoginInput struct {
	Email     string
	Password  string
	Code      string
	IPAddress string
}

// LoginResult is the login state machine's tagged success outcome. Exactly
// one of SessionToken, TwoFactor or a bare Success message is meaningful:
// the email-verification gate returns success with no session, the
// two-factor gate returns TwoFactor, and a full pass returns the token.
type LoginResult struct {
	SessionToken string
	ExpiresIn    int64
	TwoFactor    bool
	Success      string
}

type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

type SettingsInput struct {
	Name               *string
	Email              *string
	Password           *string
	NewPassword        *string
	IsTwoFactorEnabled *bool
	IsOAuth            bool
}

type OAuthSignInInput struct {
	Provider          string
	ProviderAccountID string
	Email             string
	Name              string
}
