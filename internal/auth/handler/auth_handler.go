package handler

import (
	"errors"

	"github.com/SirapobM/Api-test/internal/auth/dto"
	"github.com/SirapobM/Api-test/internal/auth/service"
	autherror "github.com/SirapobM/Api-test/internal/errors"
	"github.com/SirapobM/Api-test/internal/logging"
	"github.com/SirapobM/Api-test/internal/validation"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	userService *service.UserService
	log         logging.Logger
}

func NewAuthHandler(userService *service.UserService, log logging.Logger) *AuthHandler {
	return &AuthHandler{userService: userService, log: log}
}

// fail maps service errors onto HTTP responses. Anything outside the known
// taxonomy becomes a generic 500 so store failures never leak internals.
func (h *AuthHandler) fail(c *fiber.Ctx, err error) error {
	var violations validation.Violations

	switch {
	case errors.As(err, &violations):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": violations})
	case errors.Is(err, autherror.ErrEmailAlreadyInUse):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, autherror.ErrInvalidCredentials),
		errors.Is(err, autherror.ErrUnauthenticated),
		errors.Is(err, autherror.ErrInvalidRefreshToken):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, autherror.ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	default:
		h.log.Error(c.UserContext(), "request failed", "path", c.Path(), "error", err)

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "an unexpected error occurred",
		})
	}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var input dto.RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid input",
		})
	}

	user, err := h.userService.Register(c.UserContext(), input)
	if err != nil {
		return h.fail(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"user": dto.NewUserOutput(user),
	})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input dto.LoginInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid input",
		})
	}

	resp, err := h.userService.Login(c.UserContext(), input)
	if err != nil {
		return h.fail(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var input dto.RefreshInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}

	resp, err := h.userService.Refresh(c.UserContext(), input.RefreshToken)
	if err != nil {
		return h.fail(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	caller := CallerFromCtx(c)
	if caller == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": autherror.ErrUnauthenticated.Error()})
	}

	if err := h.userService.Logout(c.UserContext(), caller); err != nil {
		return h.fail(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Successfully logged out"})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	caller := CallerFromCtx(c)
	if caller == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": autherror.ErrUnauthenticated.Error()})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"user": dto.NewUserOutput(caller)})
}
