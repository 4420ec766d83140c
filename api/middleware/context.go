package middleware

import (
	"authflow/internal/utils"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const contextSessionUserKey = "session_user"

// SessionUser is the session materialized from token claims, the only view
// of the user handlers get without a database read.
type SessionUser struct {
	ID                 uuid.UUID
	Role               string
	Name               string
	Email              string
	IsTwoFactorEnabled bool
	IsOAuth            bool
}

func SetSessionUser(c echo.Context, claims *utils.SessionClaims) error {
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return err
	}
	c.Set(contextSessionUserKey, SessionUser{
		ID:                 userID,
		Role:               claims.Role,
		Name:               claims.Name,
		Email:              claims.Email,
		IsTwoFactorEnabled: claims.IsTwoFactorEnabled,
		IsOAuth:            claims.IsOAuth,
	})
	return nil
}

func SessionUserFromContext(c echo.Context) (SessionUser, bool) {
	value := c.Get(contextSessionUserKey)
	user, ok := value.(SessionUser)
	return user, ok
}
