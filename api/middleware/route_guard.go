package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"authflow/internal/utils"

	"github.com/labstack/echo/v4"
)

const (
	// APIAuthPrefix marks routes owned by the auth machinery itself; the
	// guard never touches them.
	APIAuthPrefix = "/api/auth"

	DefaultLoginRedirect  = "/settings"
	DefaultLogoutRedirect = "/auth/login"
)

// publicRoutes never require a session.
var publicRoutes = map[string]struct{}{
	"/":                      {},
	"/auth/new-verification": {},
}

// authRoutes are the sign-in pages; a logged-in user is bounced to the
// default post-login destination instead.
var authRoutes = map[string]struct{}{
	"/auth/login":        {},
	"/auth/register":     {},
	"/auth/error":        {},
	"/auth/reset":        {},
	"/auth/new-password": {},
}

// RouteGuard classifies every request path as api-auth, auth, public or
// protected and redirects based on session presence. Classification is
// exact-match over the route sets plus the single api-auth prefix test.
type RouteGuard struct {
	JWT *utils.JWTManager
}

func (g RouteGuard) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestURL := c.Request().URL
			path := requestURL.Path
			loggedIn := g.isLoggedIn(c)

			if strings.HasPrefix(path, APIAuthPrefix) {
				return next(c)
			}

			if _, ok := authRoutes[path]; ok {
				if loggedIn {
					return c.Redirect(http.StatusFound, DefaultLoginRedirect)
				}
				return next(c)
			}

			if _, ok := publicRoutes[path]; ok {
				return next(c)
			}

			if !loggedIn {
				callbackURL := path
				if requestURL.RawQuery != "" {
					callbackURL += "?" + requestURL.RawQuery
				}
				return c.Redirect(http.StatusFound,
					"/auth/login?callbackUrl="+url.QueryEscape(callbackURL))
			}
			return next(c)
		}
	}
}

func (g RouteGuard) isLoggedIn(c echo.Context) bool {
	if g.JWT == nil {
		return false
	}
	token := extractSessionToken(c)
	if token == "" {
		return false
	}
	_, err := g.JWT.ParseSessionToken(token)
	return err == nil
}
