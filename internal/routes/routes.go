package routes

import (
	"time"

	"github.com/bearbites/bearbites-backend/internal/config"
	"github.com/bearbites/bearbites-backend/internal/handlers"
	"github.com/bearbites/bearbites-backend/internal/metrics"
	"github.com/bearbites/bearbites-backend/internal/middleware"
	"github.com/bearbites/bearbites-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	profiles *services.ProfileService,
	authHandler *handlers.AuthHandler,
	alertHandler *handlers.AlertHandler,
	termsHandler *handlers.TermsHandler,
	subscriberHandler *handlers.SubscriberHandler,
	notifyHandler *handlers.NotifyHandler,
	healthHandler *handlers.HealthHandler,
) {
	app.Get("/metrics", metrics.Handler())

	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Auth flows through the identity provider.
	// Auth-specific rate limit: 10 req/min per IP (stricter)
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Get("/login", authHandler.Login)
	auth.Get("/callback", authHandler.Callback)
	auth.Post("/logout", middleware.JWTProtected(cfg), authHandler.Logout)
	auth.Get("/session", middleware.JWTProtected(cfg), authHandler.Session)

	// Public feed
	api.Get("/alerts", alertHandler.List)
	api.Get("/alerts/stream", alertHandler.Stream)

	// Subscribers (public opt-in/opt-out)
	api.Post("/subscribers", subscriberHandler.Subscribe)
	api.Delete("/subscribers", subscriberHandler.Unsubscribe)

	// Standalone fanout endpoint (the CORS middleware registered
	// globally answers the OPTIONS preflight)
	api.Post("/notify", notifyHandler.Notify)

	// Consent step (signed-in, consent not yet required)
	api.Post("/terms/accept", middleware.JWTProtected(cfg), termsHandler.Accept)

	// Privileged club routes: consent is enforced here, at every entry
	// point, not only during sign-in.
	consent := middleware.ConsentRequired(profiles)
	api.Post("/alerts", middleware.JWTProtected(cfg), consent, alertHandler.Create)
	api.Get("/alerts/mine", middleware.JWTProtected(cfg), consent, alertHandler.Mine)
}
