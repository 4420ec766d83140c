package main

import (
	"net/http"
	"os"
	"time"

	"authflow/api/handler"
	apiMiddleware "authflow/api/middleware"
	"authflow/api/routes"
	"authflow/config"
	"authflow/internal/repository"
	"authflow/internal/service"
	"authflow/internal/utils"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("load config")
	}
	if len(cfg.JWT.Secret) == 0 {
		logger.Fatal("JWT_SECRET is required")
	}

	db, err := config.OpenDatabase(cfg.DatabaseURL)
	if err != nil {
		logger.WithError(err).Fatal("open database")
	}
	redisClient, err := config.OpenRedis(cfg.Redis)
	if err != nil {
		logger.WithError(err).Fatal("open redis")
	}

	validate := validator.New()

	jwtManager := &utils.JWTManager{
		Secret:   cfg.JWT.Secret,
		Issuer:   cfg.JWT.Issuer,
		TokenTTL: cfg.JWT.TokenTTL,
	}

	userRepo := repository.NewUserRepository(db)
	accountRepo := repository.NewAccountRepository(db)
	tokenRepo := repository.NewTokenRepository(db)
	confirmationRepo := repository.NewTwoFactorConfirmationRepository(db)
	securityRepo := repository.NewSecurityLogRepository(db)

	passwordHasher := service.BcryptPasswordHasher{}
	clock := service.RealClock{}

	tokenIssuer := service.NewTokenIssuer(tokenRepo, clock, service.AuthConfig{
		VerificationTokenTTL: cfg.Auth.VerificationTokenTTL,
		ResetTokenTTL:        cfg.Auth.ResetTokenTTL,
		TwoFactorTokenTTL:    cfg.Auth.TwoFactorTokenTTL,
	})
	sessionProvider := service.NewJWTSessionProvider(userRepo, accountRepo, confirmationRepo, passwordHasher, jwtManager)
	loginLimiter := service.NewRedisLoginLimiter(redisClient, cfg.Auth.LoginAttemptLimit, cfg.Auth.LoginAttemptWindow)
	emailSender := service.NewResendEmailSender(
		cfg.Email.ResendAPIKey,
		cfg.Email.From,
		cfg.Email.AppBaseURL,
		cfg.IsDevelopment(),
		logger,
	)

	authService := service.NewAuthService(
		userRepo,
		accountRepo,
		tokenRepo,
		confirmationRepo,
		securityRepo,
		emailSender,
		passwordHasher,
		tokenIssuer,
		sessionProvider,
		loginLimiter,
		clock,
	)

	authHandler := handler.NewAuthHandler(authService, validate)
	authHandler.CookieDomain = os.Getenv("COOKIE_DOMAIN")
	authHandler.SecureCookies = os.Getenv("COOKIE_SECURE") != "false"

	app := echo.New()
	app.HideBanner = true
	app.HidePort = true
	app.Use(echoMiddleware.Recover())
	app.Use(echoMiddleware.RequestLoggerWithConfig(echoMiddleware.RequestLoggerConfig{
		LogStatus:   true,
		LogMethod:   true,
		LogURI:      true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echoMiddleware.RequestLoggerValues) error {
			entry := logger.WithFields(logrus.Fields{
				"status": v.Status,
				"method": v.Method,
				"uri":    v.URI,
				"ip":     v.RemoteIP,
			})
			if v.Error != nil {
				entry.WithError(v.Error).Error("request")
				return nil
			}
			entry.Info("request")
			return nil
		},
	}))

	authMiddleware := apiMiddleware.AuthMiddleware{JWT: jwtManager}
	routeGuard := apiMiddleware.RouteGuard{JWT: jwtManager}
	router := routes.NewRouter(app, authHandler, authMiddleware, routeGuard)
	router.RegisterRoutes()

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.WithField("addr", cfg.HTTPAddr).Info("server started")
	if err := app.StartServer(server); err != nil {
		logger.WithError(err).Fatal("server stopped")
	}
}
