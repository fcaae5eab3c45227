package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/sseth345/srilanka-learning-platform/internal/dto"
	"github.com/sseth345/srilanka-learning-platform/internal/service"
	"github.com/sseth345/srilanka-learning-platform/internal/utils"
)

// ContentHandler serves study materials.
type ContentHandler struct {
	service service.ContentService
	logger  zerolog.Logger
}

// NewContentHandler constructs the handler.
func NewContentHandler(service service.ContentService, logger zerolog.Logger) *ContentHandler {
	return &ContentHandler{
		service: service,
		logger:  logger.With().Str("component", "content_handler").Logger(),
	}
}

// Register attaches content endpoints to the router group.
func (h *ContentHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/:id", h.get)
	router.Post("", h.create)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.delete)
}

func (h *ContentHandler) list(c *fiber.Ctx) error {
	var query dto.CatalogQuery
	if err := c.QueryParser(&query); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	items, meta, err := h.service.List(c.UserContext(), actorFromContext(c), query)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.OK(c, items, "content retrieved", meta)
}

func (h *ContentHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	item, err := h.service.Get(c.UserContext(), actorFromContext(c), id)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "content retrieved", item)
}

// create accepts JSON, or multipart form fields with an optional "file" part.
func (h *ContentHandler) create(c *fiber.Ctx) error {
	var payload dto.ContentCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidBody(c)
	}

	item, err := h.service.Create(c.UserContext(), actorFromContext(c), payload, optionalFile(c, "file"))
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "content created", item)
}

func (h *ContentHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.ContentUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidBody(c)
	}

	item, err := h.service.Update(c.UserContext(), actorFromContext(c), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "content updated", item)
}

func (h *ContentHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.UserContext(), actorFromContext(c), id); err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "content deleted", fiber.Map{"id": id})
}

func (h *ContentHandler) handleError(c *fiber.Ctx, err error) error {
	return respondError(c, h.logger, err)
}
