package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/sseth345/srilanka-learning-platform/internal/dto"
	"github.com/sseth345/srilanka-learning-platform/internal/service"
	"github.com/sseth345/srilanka-learning-platform/internal/utils"
)

// AuthHandler exposes registration, login and token verification.
type AuthHandler struct {
	auth   service.AuthService
	users  service.UserService
	logger zerolog.Logger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(auth service.AuthService, users service.UserService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:   auth,
		users:  users,
		logger: logger.With().Str("component", "auth_handler").Logger(),
	}
}

// Register attaches the public credential endpoints.
func (h *AuthHandler) Register(router fiber.Router) {
	router.Post("/register", h.register)
	router.Post("/login", h.login)
}

// RegisterProtected attaches endpoints that require an authenticated caller.
func (h *AuthHandler) RegisterProtected(router fiber.Router) {
	router.Post("/verify", h.verify)
}

func (h *AuthHandler) register(c *fiber.Ctx) error {
	var payload dto.RegisterRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidBody(c)
	}

	response, err := h.auth.Register(c.UserContext(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "registration successful", response)
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	var payload dto.LoginRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidBody(c)
	}

	response, err := h.auth.Login(c.UserContext(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "login successful", response)
}

func (h *AuthHandler) verify(c *fiber.Ctx) error {
	actor := actorFromContext(c)
	user, err := h.users.Get(c.UserContext(), actor, actor.ID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "token valid", fiber.Map{"user": user})
}

func (h *AuthHandler) handleError(c *fiber.Ctx, err error) error {
	return respondError(c, h.logger, err)
}
