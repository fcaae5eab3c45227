package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/sseth345/srilanka-learning-platform/internal/config"
	"github.com/sseth345/srilanka-learning-platform/internal/handler"
	"github.com/sseth345/srilanka-learning-platform/internal/middleware"
	"github.com/sseth345/srilanka-learning-platform/internal/models"
	"github.com/sseth345/srilanka-learning-platform/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler       *handler.AuthHandler
	UserHandler       *handler.UserHandler
	ExerciseHandler   *handler.ExerciseHandler
	ContentHandler    *handler.ContentHandler
	BookHandler       *handler.BookHandler
	VideoHandler      *handler.VideoHandler
	DiscussionHandler *handler.DiscussionHandler
	NewsHandler       *handler.NewsHandler
	AnalyticsHandler  *handler.AnalyticsHandler
	Authenticate      fiber.Handler
	RateLimitMax      int
	RateLimitWindow   time.Duration
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	authenticate := deps.Authenticate
	if authenticate == nil {
		authenticate = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.AuthHandler != nil {
		authGroup := api.Group("/auth", middleware.RateLimit("auth", deps.RateLimitMax, deps.RateLimitWindow))
		deps.AuthHandler.Register(authGroup)
		deps.AuthHandler.RegisterProtected(authGroup.Group("", authenticate))
	}

	if deps.UserHandler != nil {
		deps.UserHandler.Register(api.Group("/users", authenticate))
	}

	if deps.ExerciseHandler != nil {
		deps.ExerciseHandler.Register(api.Group("/exercises", authenticate))
	}

	if deps.ContentHandler != nil {
		deps.ContentHandler.Register(api.Group("/content", authenticate))
	}

	if deps.BookHandler != nil {
		deps.BookHandler.Register(api.Group("/books", authenticate))
	}

	if deps.VideoHandler != nil {
		deps.VideoHandler.Register(api.Group("/videos", authenticate))
	}

	if deps.DiscussionHandler != nil {
		deps.DiscussionHandler.Register(api.Group("/discussions", authenticate))
		deps.DiscussionHandler.RegisterComments(api.Group("/comments", authenticate))
	}

	if deps.NewsHandler != nil {
		deps.NewsHandler.Register(api.Group("/news", authenticate))
	}

	if deps.AnalyticsHandler != nil {
		analytics := api.Group("/analytics", authenticate)
		analytics.Use("/overview", middleware.RequireRole(models.RoleTeacher))
		analytics.Use("/me", middleware.RequireRole(models.RoleStudent))
		deps.AnalyticsHandler.Register(analytics)
	}
}
