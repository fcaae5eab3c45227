package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/sseth345/srilanka-learning-platform/internal/dto"
	"github.com/sseth345/srilanka-learning-platform/internal/service"
	"github.com/sseth345/srilanka-learning-platform/internal/utils"
)

// BookHandler serves the digital library.
type BookHandler struct {
	service service.BookService
	logger  zerolog.Logger
}

// NewBookHandler constructs the handler.
func NewBookHandler(service service.BookService, logger zerolog.Logger) *BookHandler {
	return &BookHandler{
		service: service,
		logger:  logger.With().Str("component", "book_handler").Logger(),
	}
}

// Register attaches library endpoints to the router group.
func (h *BookHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/:id", h.get)
	router.Post("", h.create)
	router.Post("/:id/download", h.download)
	router.Delete("/:id", h.delete)
}

func (h *BookHandler) list(c *fiber.Ctx) error {
	var query dto.CatalogQuery
	if err := c.QueryParser(&query); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	books, meta, err := h.service.List(c.UserContext(), query)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.OK(c, books, "books retrieved", meta)
}

func (h *BookHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	book, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "book retrieved", book)
}

func (h *BookHandler) create(c *fiber.Ctx) error {
	var payload dto.BookCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidBody(c)
	}

	book, err := h.service.Create(c.UserContext(), actorFromContext(c), payload, optionalFile(c, "file"), optionalFile(c, "cover"))
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "book uploaded", book)
}

func (h *BookHandler) download(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	download, err := h.service.Download(c.UserContext(), id)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "download recorded", download)
}

func (h *BookHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.UserContext(), actorFromContext(c), id); err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "book deleted", fiber.Map{"id": id})
}

func (h *BookHandler) handleError(c *fiber.Ctx, err error) error {
	return respondError(c, h.logger, err)
}
