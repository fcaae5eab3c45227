package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/sseth345/srilanka-learning-platform/internal/dto"
	"github.com/sseth345/srilanka-learning-platform/internal/service"
	"github.com/sseth345/srilanka-learning-platform/internal/utils"
)

// NewsHandler serves platform announcements.
type NewsHandler struct {
	service service.NewsService
	logger  zerolog.Logger
}

// NewNewsHandler constructs the handler.
func NewNewsHandler(service service.NewsService, logger zerolog.Logger) *NewsHandler {
	return &NewsHandler{
		service: service,
		logger:  logger.With().Str("component", "news_handler").Logger(),
	}
}

// Register attaches news endpoints to the router group.
func (h *NewsHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/:id", h.get)
	router.Post("", h.create)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.delete)
}

func (h *NewsHandler) list(c *fiber.Ctx) error {
	var query dto.NewsQuery
	if err := c.QueryParser(&query); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	items, meta, err := h.service.List(c.UserContext(), actorFromContext(c), query)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.OK(c, items, "news retrieved", meta)
}

func (h *NewsHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	item, err := h.service.Get(c.UserContext(), actorFromContext(c), id)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "news retrieved", item)
}

func (h *NewsHandler) create(c *fiber.Ctx) error {
	var payload dto.NewsRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidBody(c)
	}

	item, err := h.service.Create(c.UserContext(), actorFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "news created", item)
}

func (h *NewsHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.NewsUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidBody(c)
	}

	item, err := h.service.Update(c.UserContext(), actorFromContext(c), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "news updated", item)
}

func (h *NewsHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.UserContext(), actorFromContext(c), id); err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "news deleted", fiber.Map{"id": id})
}

func (h *NewsHandler) handleError(c *fiber.Ctx, err error) error {
	return respondError(c, h.logger, err)
}
