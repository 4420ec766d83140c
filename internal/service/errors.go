package service

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidInput       = errors.New("Invalid fields")
	ErrInvalidCredentials = errors.New("Invalid credentials")
	ErrOAuthAccount       = errors.New("This email is registered with a social login. Please sign in with your social account")
	ErrEmailTaken         = errors.New("Email already registered!")
	ErrEmailInUse         = errors.New("Email already in use!")
	ErrEmailNotFound      = errors.New("Email not found!")
	ErrMissingToken       = errors.New("Missing token!")
	ErrTokenNotFound      = errors.New("Invalid token!")
	ErrTokenNotExist      = errors.New("Token does not exist!")
	ErrTokenExpired       = errors.New("Token has expired!")
	ErrInvalidCode        = errors.New("Invalid code!")
	ErrCodeExpired        = errors.New("Code expired!")
	ErrIncorrectPassword  = errors.New("Incorrect password!")
	ErrUnauthorized       = errors.New("Unauthorized")
	ErrUserNotFound       = errors.New("Email does not exist!")
	ErrSomethingWentWrong = errors.New("Something went wrong")

	// ErrCredentialsSignin is the session provider's bad-credentials failure.
	ErrCredentialsSignin = errors.New("credentials signin")
	// ErrAccessDenied is any other denial raised by the session provider's
	// sign-in gate (unverified email, missing two-factor confirmation).
	ErrAccessDenied = errors.New("access denied")
)

// RateLimitedError is the only retryable failure. RetryAfter is also baked
// into the message so form clients can show a countdown.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	seconds := int(e.RetryAfter.Round(time.Second).Seconds())
	if seconds < 1 {
		seconds = 1
	}
	return fmt.Sprintf("Too many login attempts. Please try again in %d seconds", seconds)
}
