package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/sseth345/srilanka-learning-platform/internal/dto"
	"github.com/sseth345/srilanka-learning-platform/internal/service"
	"github.com/sseth345/srilanka-learning-platform/internal/utils"
)

// UserHandler serves profiles and the user directory.
type UserHandler struct {
	service service.UserService
	logger  zerolog.Logger
}

// NewUserHandler constructs the handler.
func NewUserHandler(service service.UserService, logger zerolog.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		logger:  logger.With().Str("component", "user_handler").Logger(),
	}
}

// Register attaches user endpoints to the router group.
func (h *UserHandler) Register(router fiber.Router) {
	router.Get("/me", h.me)
	router.Put("/me", h.updateMe)
	router.Get("", h.list)
	router.Get("/:id", h.get)
}

func (h *UserHandler) me(c *fiber.Ctx) error {
	actor := actorFromContext(c)
	user, err := h.service.Get(c.UserContext(), actor, actor.ID)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "profile retrieved", user)
}

func (h *UserHandler) updateMe(c *fiber.Ctx) error {
	var payload dto.UpdateProfileRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidBody(c)
	}

	user, err := h.service.UpdateProfile(c.UserContext(), actorFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "profile updated", user)
}

func (h *UserHandler) list(c *fiber.Ctx) error {
	var query dto.UserListQuery
	if err := c.QueryParser(&query); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	users, meta, err := h.service.List(c.UserContext(), actorFromContext(c), query)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.OK(c, users, "users retrieved", meta)
}

func (h *UserHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	user, err := h.service.Get(c.UserContext(), actorFromContext(c), id)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "user retrieved", user)
}

func (h *UserHandler) handleError(c *fiber.Ctx, err error) error {
	return respondError(c, h.logger, err)
}
