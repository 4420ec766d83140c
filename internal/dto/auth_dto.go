package dto

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Code     string `json:"code" validate:"omitempty,len=6,numeric"`
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"required"`
}

type ResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type NewPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

type NewVerificationRequest struct {
	Token string `json:"token" validate:"required"`
}

type SettingsRequest struct {
	Name               *string `json:"name" validate:"omitempty"`
	Email              *string `json:"email" validate:"omitempty,email"`
	Password           *string `json:"password" validate:"omitempty,min=6,required_with=NewPassword"`
	NewPassword        *string `json:"new_password" validate:"omitempty,min=6,required_with=Password"`
	IsTwoFactorEnabled *bool   `json:"is_two_factor_enabled"`
}

type OAuthCallbackRequest struct {
	ProviderAccountID string `json:"provider_account_id" validate:"required"`
	Email             string `json:"email" validate:"required,email"`
	Name              string `json:"name" validate:"omitempty"`
}

// ActionResponse is the wire shape every auth action answers with. At most
// one of the fields is set.
type ActionResponse struct {
	Error     string `json:"error,omitempty"`
	Success   string `json:"success,omitempty"`
	TwoFactor bool   `json:"twoFactor,omitempty"`
}
