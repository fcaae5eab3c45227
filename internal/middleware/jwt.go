package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/sseth345/srilanka-learning-platform/internal/auth"
	"github.com/sseth345/srilanka-learning-platform/internal/models"
	"github.com/sseth345/srilanka-learning-platform/internal/utils"
)

// UserLookup resolves the account behind a verified token.
type UserLookup interface {
	GetByID(ctx context.Context, id uint) (models.User, error)
}

// Authenticate validates the bearer token and loads the caller. The stored role, not the
// token claim, is placed in the request locals.
func Authenticate(tokens *auth.TokenManager, users UserLookup) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authorization := c.Get(fiber.HeaderAuthorization)
		if authorization == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "authorization header missing")
		}

		const bearer = "Bearer "
		if len(authorization) < len(bearer) || !strings.EqualFold(authorization[:len(bearer)], bearer) {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid authorization header")
		}

		tokenString := strings.TrimSpace(authorization[len(bearer):])
		if tokenString == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		claims, err := tokens.Parse(tokenString)
		if err != nil {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		userID, err := claims.UserID()
		if err != nil {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token claims")
		}

		user, err := users.GetByID(c.UserContext(), userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.SendError(c, fiber.StatusUnauthorized, "account no longer exists")
			}
			return err
		}

		c.Locals("user_id", user.ID)
		c.Locals("user_role", strings.ToLower(strings.TrimSpace(user.Role)))
		return c.Next()
	}
}
