package middleware

import (
	"errors"
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	"github.com/sseth345/srilanka-learning-platform/internal/utils"
)

// Config customises the middleware registration pipeline.
type Config struct {
	Logger       *zerolog.Logger
	AllowOrigins string
	AccessLog    bool
}

// Register attaches the common middlewares used across the API.
func Register(app *fiber.App, cfg Config) {
	requestLogger := zerolog.New(io.Discard)
	if cfg.Logger != nil {
		requestLogger = *cfg.Logger
	}

	origins := cfg.AllowOrigins
	if origins == "" {
		origins = "*"
	}

	app.Use(recover.New())
	app.Use(CorrelationID())
	app.Use(Observability(requestLogger))
	if cfg.AccessLog {
		app.Use(logger.New())
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:  origins,
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, X-Correlation-ID",
		AllowMethods:  "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		ExposeHeaders: "X-Correlation-ID",
	}))
}

// ErrorHandler converts errors that escaped the handlers into the JSON envelope. Internal
// error text is only exposed when exposeDetails is set.
func ErrorHandler(logger zerolog.Logger, exposeDetails bool) fiber.ErrorHandler {
	logger = logger.With().Str("component", "error_handler").Logger()

	return func(c *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return utils.SendError(c, fiberErr.Code, fiberErr.Message)
		}

		logger.Error().
			Err(err).
			Str("correlation_id", GetCorrelationID(c)).
			Str("path", c.Path()).
			Msg("unhandled error")

		message := "internal server error"
		if exposeDetails {
			message = err.Error()
		}
		return utils.SendError(c, fiber.StatusInternalServerError, message)
	}
}
