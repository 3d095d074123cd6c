package handler

import (
	"strings"

	"github.com/SirapobM/Api-test/internal/auth/domain"
	autherror "github.com/SirapobM/Api-test/internal/errors"
	"github.com/gofiber/fiber/v2"
)

const callerLocalKey = "caller"

// RequireAuth resolves the bearer token to a user once and stores the
// resolved identity in request locals for handlers to pick up. All failure
// modes (missing, malformed, unknown, expired) answer with the same 401.
func (h *AuthHandler) RequireAuth(c *fiber.Ctx) error {
	token, ok := strings.CutPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
	if !ok || token == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": autherror.ErrUnauthenticated.Error()})
	}

	caller, err := h.userService.Authenticate(c.UserContext(), token)
	if err != nil {
		return h.fail(c, err)
	}

	c.Locals(callerLocalKey, caller)

	return c.Next()
}

// CallerFromCtx returns the identity resolved by RequireAuth, or nil when the
// request never passed it.
func CallerFromCtx(c *fiber.Ctx) *domain.User {
	caller, _ := c.Locals(callerLocalKey).(*domain.User)

	return caller
}
