package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"authflow/internal/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func protectedEcho(manager *utils.JWTManager) *echo.Echo {
	e := echo.New()
	auth := AuthMiddleware{JWT: manager}
	e.GET("/me", func(c echo.Context) error {
		user, ok := SessionUserFromContext(c)
		if !ok {
			return echo.NewHTTPError(http.StatusInternalServerError)
		}
		return c.String(http.StatusOK, user.Email)
	}, auth.RequireAuth)
	e.GET("/admin", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, auth.RequireAuth, RequireRole("ADMIN"))
	return e
}

func issueToken(t *testing.T, manager *utils.JWTManager, role string) string {
	t.Helper()
	token, _, err := manager.IssueSessionToken(utils.SessionClaims{
		Role:  role,
		Email: "jo@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: uuid.NewString(),
		},
	})
	require.NoError(t, err)
	return token
}

func TestRequireAuthBearerHeader(t *testing.T) {
	manager := testJWTManager()
	e := protectedEcho(manager)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, manager, "USER"))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "jo@example.com", rec.Body.String())
}

func TestRequireAuthCookieFallback(t *testing.T) {
	manager := testJWTManager()
	e := protectedEcho(manager)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: issueToken(t, manager, "USER")})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAuthMissingToken(t *testing.T) {
	e := protectedEcho(testJWTManager())

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuthBadToken(t *testing.T) {
	e := protectedEcho(testJWTManager())

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole(t *testing.T) {
	manager := testJWTManager()
	e := protectedEcho(manager)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, manager, "USER"))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, manager, "ADMIN"))
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
