package handler

import (
	"github.com/SirapobM/Api-test/internal/auth/dto"
	"github.com/gofiber/fiber/v2"
)

func (h *AuthHandler) UpdateUser(c *fiber.Ctx) error {
	id := c.Params("id")

	var input dto.UpdateUserInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}

	user, err := h.userService.UpdateUser(c.UserContext(), id, input)
	if err != nil {
		return h.fail(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "User updated successfully",
		"user":    dto.NewUserOutput(user),
	})
}

func (h *AuthHandler) DeleteUser(c *fiber.Ctx) error {
	id := c.Params("id")

	if err := h.userService.DeleteUser(c.UserContext(), id); err != nil {
		return h.fail(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "User deleted successfully"})
}
