package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/ahmetcoskunkizilkaya/friendpool-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/friendpool-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/friendpool-backend/internal/directory"
	"github.com/ahmetcoskunkizilkaya/friendpool-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/friendpool-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/friendpool-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/friendpool-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/friendpool-backend/internal/routes"
	"github.com/ahmetcoskunkizilkaya/friendpool-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Optional log database (ERROR+ async batch, retention cleanup)
	var pgLogHandler *logging.PGHandler
	cleanupDone := make(chan struct{})
	if cfg.LogDBEnabled() {
		if err := database.Connect(cfg); err != nil {
			slog.Error("log database connection failed", "error", err)
			os.Exit(1)
		}
		if err := database.Migrate(); err != nil {
			slog.Error("log database migration failed", "error", err)
			os.Exit(1)
		}
		pgLogHandler = logging.NewPGHandler(database.DB, 5*time.Second)
		slog.SetDefault(slog.New(logging.NewMultiHandler(
			logging.NewJSONHandler(os.Stdout),
			pgLogHandler,
		)))
		logging.StartCleanup(database.DB, cfg.LogRetention, cleanupDone)
	}

	// Directory store
	store := directory.New(
		directory.WithSessionTTL(cfg.SessionTTL),
		directory.WithMaxCodeAttempts(cfg.MaxCodeAttempts),
	)

	verifier := newVerifier(cfg)
	slog.Info("identity verifier ready", "mode", cfg.IdentityMode)

	// Services
	authService := services.NewAuthService(store, verifier)
	profileService := services.NewProfileService(store, services.NewModerationService())
	friendService := services.NewFriendService(store)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	profileHandler := handlers.NewProfileHandler(profileService)
	friendHandler := handlers.NewFriendHandler(friendService)
	healthHandler := handlers.NewHealthHandler(store)

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    2 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(middleware.SecurityHeaders())

	routes.Setup(app, cfg, authService, authHandler, profileHandler, friendHandler, healthHandler)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.AppEnv)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	close(cleanupDone)
	if pgLogHandler != nil {
		pgLogHandler.Stop()
	}
	sentry.Flush(2 * time.Second)

	if err := database.Close(); err != nil {
		slog.Error("database close error", "error", err)
	}

	stats := store.Stats()
	slog.Info("server stopped", "users", stats.Users, "friendships", stats.Friendships)
}

func newVerifier(cfg *config.Config) identity.Verifier {
	switch cfg.IdentityMode {
	case config.IdentityModeCloud:
		return identity.NewCloudVerifier(cfg.WorldVerifyURL, cfg.WorldAppID, cfg.WorldActionID, cfg.IdentityTimeout)
	case config.IdentityModeToken:
		return identity.NewTokenVerifier(cfg.IdentityTokenSecret, cfg.IdentityTokenIssuer, cfg.IdentityTokenAudience)
	default:
		return identity.DevVerifier{}
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// 5xx details stay in the logs
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
