package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/sseth345/srilanka-learning-platform/internal/dto"
	"github.com/sseth345/srilanka-learning-platform/internal/service"
	"github.com/sseth345/srilanka-learning-platform/internal/utils"
)

// VideoHandler serves hosted video lessons.
type VideoHandler struct {
	service service.VideoService
	logger  zerolog.Logger
}

// NewVideoHandler constructs the handler.
func NewVideoHandler(service service.VideoService, logger zerolog.Logger) *VideoHandler {
	return &VideoHandler{
		service: service,
		logger:  logger.With().Str("component", "video_handler").Logger(),
	}
}

// Register attaches video endpoints to the router group.
func (h *VideoHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/:id", h.get)
	router.Post("", h.upload)
	router.Delete("/:id", h.delete)
}

func (h *VideoHandler) list(c *fiber.Ctx) error {
	var query dto.CatalogQuery
	if err := c.QueryParser(&query); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	videos, meta, err := h.service.List(c.UserContext(), query)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.OK(c, videos, "videos retrieved", meta)
}

func (h *VideoHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	video, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "video retrieved", video)
}

// upload expects multipart form fields and the media under the "video" part.
func (h *VideoHandler) upload(c *fiber.Ctx) error {
	var payload dto.VideoCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidBody(c)
	}

	video, err := h.service.Upload(c.UserContext(), actorFromContext(c), payload, optionalFile(c, "video"))
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "video uploaded", video)
}

func (h *VideoHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.UserContext(), actorFromContext(c), id); err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "video deleted", fiber.Map{"id": id})
}

func (h *VideoHandler) handleError(c *fiber.Ctx, err error) error {
	return respondError(c, h.logger, err)
}
