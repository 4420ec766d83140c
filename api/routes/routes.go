package routes

import (
	"time"

	"authflow/api/handler"
	"authflow/api/middleware"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

type Router struct {
	Echo           *echo.Echo
	Auth           *handler.AuthHandler
	AuthMiddleware middleware.AuthMiddleware
	RouteGuard     middleware.RouteGuard
	AuthRate       *middleware.RateLimiter
	LoginRate      *middleware.RateLimiter
}

func NewRouter(e *echo.Echo, authHandler *handler.AuthHandler, authMiddleware middleware.AuthMiddleware, guard middleware.RouteGuard) *Router {
	return &Router{
		Echo:           e,
		Auth:           authHandler,
		AuthMiddleware: authMiddleware,
		RouteGuard:     guard,
		AuthRate:       middleware.NewRateLimiter(rate.Limit(5), 10, 5*time.Minute),
		LoginRate:      middleware.NewRateLimiter(rate.Limit(2), 4, 10*time.Minute),
	}
}

func (r *Router) RegisterRoutes() {
	e := r.Echo
	e.Use(r.RouteGuard.Middleware())

	e.POST("/api/auth/login", r.Auth.Login, r.LoginRate.Middleware())
	e.POST("/api/auth/register", r.Auth.Register, r.AuthRate.Middleware())
	e.POST("/api/auth/reset", r.Auth.Reset, r.LoginRate.Middleware())
	e.POST("/api/auth/new-password", r.Auth.NewPassword, r.AuthRate.Middleware())
	e.POST("/api/auth/new-verification", r.Auth.NewVerification, r.AuthRate.Middleware())
	e.POST("/api/auth/refresh", r.Auth.Refresh, r.AuthRate.Middleware())
	e.POST("/api/auth/logout", r.Auth.Logout, r.AuthMiddleware.RequireAuth)
	e.POST("/api/auth/callback/:provider", r.Auth.OAuthCallback, r.AuthRate.Middleware())

	e.PATCH("/api/settings", r.Auth.Settings, r.AuthMiddleware.RequireAuth)
	e.GET("/api/admin", r.Auth.Admin, r.AuthMiddleware.RequireAuth)
}
