package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"authflow/api/middleware"
	"authflow/internal/dto"
	"authflow/internal/service"
	"authflow/internal/utils"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	Service       *service.AuthService
	Validate      *validator.Validate
	CookieDomain  string
	SecureCookies bool
	SameSite      http.SameSite
}

func NewAuthHandler(svc *service.AuthService, validate *validator.Validate) *AuthHandler {
	return &AuthHandler{
		Service:       svc,
		Validate:      validate,
		SecureCookies: true,
		SameSite:      http.SameSiteLaxMode,
	}
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeActionError(c, http.StatusBadRequest, service.ErrInvalidInput)
	}
	if err := h.validate(req); err != nil {
		return writeActionError(c, http.StatusBadRequest, service.ErrInvalidInput)
	}

	input := service.LoginInput{
		Email:     req.Email,
		Password:  req.Password,
		Code:      req.Code,
		IPAddress: c.RealIP(),
	}
	result, err := h.Service.Login(c.Request().Context(), input)
	if err != nil {
		return writeServiceError(c, err)
	}

	if result.TwoFactor {
		return c.JSON(http.StatusOK, dto.ActionResponse{TwoFactor: true})
	}
	if result.SessionToken == "" {
		// success with no session: the verification email path
		return c.JSON(http.StatusOK, dto.ActionResponse{Success: result.Success})
	}

	h.setSessionCookie(c, result.SessionToken, result.ExpiresIn)
	return c.JSON(http.StatusOK, dto.ActionResponse{Success: result.Success})
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req dto.RegisterRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeActionError(c, http.StatusBadRequest, service.ErrInvalidInput)
	}
	if err := h.validate(req); err != nil {
		return writeActionError(c, http.StatusBadRequest, service.ErrInvalidInput)
	}

	input := service.RegisterInput{Email: req.Email, Password: req.Password, Name: req.Name}
	success, err := h.Service.Register(c.Request().Context(), input)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, dto.ActionResponse{Success: success})
}

func (h *AuthHandler) Reset(c echo.Context) error {
	var req dto.ResetRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeActionError(c, http.StatusBadRequest, service.ErrInvalidInput)
	}
	if err := h.validate(req); err != nil {
		return writeActionError(c, http.StatusBadRequest, service.ErrInvalidInput)
	}

	success, err := h.Service.RequestPasswordReset(c.Request().Context(), req.Email)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.ActionResponse{Success: success})
}

func (h *AuthHandler) NewPassword(c echo.Context) error {
	var req dto.NewPasswordRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeActionError(c, http.StatusBadRequest, service.ErrInvalidInput)
	}
	if err := h.validate(req); err != nil {
		return writeActionError(c, http.StatusBadRequest, service.ErrInvalidInput)
	}

	success, err := h.Service.NewPassword(c.Request().Context(), req.Token, req.Password)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.ActionResponse{Success: success})
}

func (h *AuthHandler) NewVerification(c echo.Context) error {
	var req dto.NewVerificationRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeActionError(c, http.StatusBadRequest, service.ErrInvalidInput)
	}
	if err := h.validate(req); err != nil {
		return writeActionError(c, http.StatusBadRequest, service.ErrInvalidInput)
	}

	success, err := h.Service.NewVerification(c.Request().Context(), req.Token)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.ActionResponse{Success: success})
}

func (h *AuthHandler) Refresh(c echo.Context) error {
	token := readSessionToken(c)
	if token == "" {
		return writeActionError(c, http.StatusUnauthorized, service.ErrUnauthorized)
	}
	refreshed, expiresIn, err := h.Service.RefreshSession(c.Request().Context(), token)
	if err != nil {
		if errors.Is(err, utils.ErrInvalidToken) {
			return writeActionError(c, http.StatusUnauthorized, service.ErrUnauthorized)
		}
		return writeServiceError(c, err)
	}
	if refreshed != token {
		h.setSessionCookie(c, refreshed, expiresIn)
	}
	return c.JSON(http.StatusOK, dto.ActionResponse{Success: "Session refreshed"})
}

func (h *AuthHandler) Settings(c echo.Context) error {
	user, ok := middleware.SessionUserFromContext(c)
	if !ok {
		return writeActionError(c, http.StatusUnauthorized, service.ErrUnauthorized)
	}

	var req dto.SettingsRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeActionError(c, http.StatusBadRequest, service.ErrInvalidInput)
	}
	if err := h.validate(req); err != nil {
		return writeActionError(c, http.StatusBadRequest, service.ErrInvalidInput)
	}

	input := service.SettingsInput{
		Name:               req.Name,
		Email:              req.Email,
		Password:           req.Password,
		NewPassword:        req.NewPassword,
		IsTwoFactorEnabled: req.IsTwoFactorEnabled,
		IsOAuth:            user.IsOAuth,
	}
	success, err := h.Service.UpdateSettings(c.Request().Context(), user.ID, input)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.ActionResponse{Success: success})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	if user, ok := middleware.SessionUserFromContext(c); ok {
		h.Service.Logout(c.Request().Context(), &user.ID, c.RealIP())
	}
	h.clearSessionCookie(c)
	return c.JSON(http.StatusOK, dto.ActionResponse{Success: "Logged out"})
}

func (h *AuthHandler) OAuthCallback(c echo.Context) error {
	var req dto.OAuthCallbackRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeActionError(c, http.StatusBadRequest, service.ErrInvalidInput)
	}
	if err := h.validate(req); err != nil {
		return writeActionError(c, http.StatusBadRequest, service.ErrInvalidInput)
	}

	input := service.OAuthSignInInput{
		Provider:          c.Param("provider"),
		ProviderAccountID: req.ProviderAccountID,
		Email:             req.Email,
		Name:              req.Name,
	}
	result, err := h.Service.OAuthSignIn(c.Request().Context(), input)
	if err != nil {
		return writeServiceError(c, err)
	}
	h.setSessionCookie(c, result.SessionToken, result.ExpiresIn)
	return c.JSON(http.StatusOK, dto.ActionResponse{Success: result.Success})
}

// Admin answers the role probe: 200 for admins, 403 for everyone else.
func (h *AuthHandler) Admin(c echo.Context) error {
	user, ok := middleware.SessionUserFromContext(c)
	if !ok || user.Role != "ADMIN" {
		return c.JSON(http.StatusForbidden, dto.ActionResponse{Error: "Forbidden!"})
	}
	return c.JSON(http.StatusOK, dto.ActionResponse{Success: "Allowed!"})
}

func (h *AuthHandler) validate(payload any) error {
	if h.Validate == nil {
		return nil
	}
	return h.Validate.Struct(payload)
}

func (h *AuthHandler) setSessionCookie(c echo.Context, token string, expiresIn int64) {
	if token == "" {
		return
	}
	maxAge := int(expiresIn)
	if maxAge < 0 {
		maxAge = 0
	}
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		Domain:   h.CookieDomain,
		MaxAge:   maxAge,
		Expires:  time.Now().Add(time.Duration(expiresIn) * time.Second),
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: h.SameSite,
	})
}

func (h *AuthHandler) clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: h.SameSite,
	})
}

func readSessionToken(c echo.Context) string {
	cookie, err := c.Cookie(middleware.SessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func decodeJSON(c echo.Context, target any) error {
	decoder := json.NewDecoder(c.Request().Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

func writeActionError(c echo.Context, status int, err error) error {
	return c.JSON(status, dto.ActionResponse{Error: err.Error()})
}

func writeServiceError(c echo.Context, err error) error {
	var rateLimited *service.RateLimitedError
	if errors.As(err, &rateLimited) {
		seconds := int(rateLimited.RetryAfter.Round(time.Second).Seconds())
		c.Response().Header().Set("Retry-After", strconv.Itoa(seconds))
		return writeActionError(c, http.StatusTooManyRequests, err)
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidCode),
		errors.Is(err, service.ErrIncorrectPassword):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrOAuthAccount):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrEmailTaken), errors.Is(err, service.ErrEmailInUse):
		status = http.StatusConflict
	case errors.Is(err, service.ErrEmailNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrTokenNotFound),
		errors.Is(err, service.ErrTokenNotExist),
		errors.Is(err, service.ErrMissingToken):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrTokenExpired), errors.Is(err, service.ErrCodeExpired):
		status = http.StatusGone
	case errors.Is(err, service.ErrSomethingWentWrong):
		status = http.StatusInternalServerError
	}
	return writeActionError(c, status, err)
}
