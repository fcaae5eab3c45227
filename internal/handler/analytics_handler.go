package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/sseth345/srilanka-learning-platform/internal/service"
	"github.com/sseth345/srilanka-learning-platform/internal/utils"
)

// AnalyticsHandler exposes dashboard figures.
type AnalyticsHandler struct {
	service service.AnalyticsService
	logger  zerolog.Logger
}

// NewAnalyticsHandler constructs the handler.
func NewAnalyticsHandler(service service.AnalyticsService, logger zerolog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		service: service,
		logger:  logger.With().Str("component", "analytics_handler").Logger(),
	}
}

// Register attaches analytics endpoints to the router group.
func (h *AnalyticsHandler) Register(router fiber.Router) {
	router.Get("/overview", h.overview)
	router.Get("/me", h.me)
}

func (h *AnalyticsHandler) overview(c *fiber.Ctx) error {
	overview, err := h.service.Overview(c.UserContext(), actorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}

	c.Set("X-Cache", cacheHeader(overview.CacheHit))
	return utils.SendSuccess(c, "analytics overview retrieved", overview)
}

func (h *AnalyticsHandler) me(c *fiber.Ctx) error {
	progress, err := h.service.StudentProgress(c.UserContext(), actorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "progress retrieved", progress)
}

func cacheHeader(hit bool) string {
	if hit {
		return "HIT"
	}
	return "MISS"
}
