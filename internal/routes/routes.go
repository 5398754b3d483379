package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/friendpool-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/friendpool-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/friendpool-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/friendpool-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	authService *services.AuthService,
	authHandler *handlers.AuthHandler,
	profileHandler *handlers.ProfileHandler,
	friendHandler *handlers.FriendHandler,
	healthHandler *handlers.HealthHandler,
) {
	api := app.Group("/api")
	api.Use(perIPLimiter(cfg.RateLimitPerMinute))

	api.Get("/health", healthHandler.Check)

	// Login and session checks get the stricter limit
	v1 := api.Group("/v1")
	v1.Use(perIPLimiter(cfg.AuthRateLimitPerMinute))
	v1.Get("/login", authHandler.LoginInfo)
	v1.Post("/login", authHandler.Login)
	v1.Post("/session/verify", authHandler.VerifySession)

	protected := middleware.SessionProtected(authService)
	v1.Post("/logout", protected, authHandler.Logout)

	api.Get("/profile", protected, profileHandler.Get)
	api.Put("/profile", protected, profileHandler.Update)

	api.Get("/friends", protected, friendHandler.List)
	api.Post("/friends", protected, friendHandler.SendRequest)
	api.Put("/friends", protected, friendHandler.Resolve)
}

func perIPLimiter(max int) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:               max,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	})
}
