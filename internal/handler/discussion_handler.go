package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/sseth345/srilanka-learning-platform/internal/dto"
	"github.com/sseth345/srilanka-learning-platform/internal/service"
	"github.com/sseth345/srilanka-learning-platform/internal/utils"
)

// DiscussionHandler exposes the forum endpoints.
type DiscussionHandler struct {
	service service.DiscussionService
	logger  zerolog.Logger
}

// NewDiscussionHandler constructs the handler.
func NewDiscussionHandler(service service.DiscussionService, logger zerolog.Logger) *DiscussionHandler {
	return &DiscussionHandler{
		service: service,
		logger:  logger.With().Str("component", "discussion_handler").Logger(),
	}
}

// Register attaches discussion endpoints to the router group.
func (h *DiscussionHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Get("/:id", h.get)
	router.Delete("/:id", h.delete)
	router.Get("/:id/comments", h.comments)
	router.Post("/:id/comments", h.addComment)
}

// RegisterComments attaches the standalone comment endpoints.
func (h *DiscussionHandler) RegisterComments(router fiber.Router) {
	router.Delete("/:id", h.deleteComment)
}

func (h *DiscussionHandler) list(c *fiber.Ctx) error {
	var query dto.DiscussionQuery
	if err := c.QueryParser(&query); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	discussions, meta, err := h.service.List(c.UserContext(), query)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.OK(c, discussions, "discussions retrieved", meta)
}

func (h *DiscussionHandler) create(c *fiber.Ctx) error {
	var payload dto.DiscussionCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidBody(c)
	}

	discussion, err := h.service.Create(c.UserContext(), actorFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "discussion created", discussion)
}

func (h *DiscussionHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	discussion, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "discussion retrieved", discussion)
}

func (h *DiscussionHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.UserContext(), actorFromContext(c), id); err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "discussion deleted", fiber.Map{"id": id})
}

func (h *DiscussionHandler) comments(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	tree, err := h.service.Comments(c.UserContext(), id)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "comments retrieved", tree)
}

func (h *DiscussionHandler) addComment(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.CommentCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidBody(c)
	}

	comment, err := h.service.AddComment(c.UserContext(), actorFromContext(c), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "comment added", comment)
}

func (h *DiscussionHandler) deleteComment(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.DeleteComment(c.UserContext(), actorFromContext(c), id); err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "comment deleted", fiber.Map{"id": id})
}

func (h *DiscussionHandler) handleError(c *fiber.Ctx, err error) error {
	return respondError(c, h.logger, err)
}
