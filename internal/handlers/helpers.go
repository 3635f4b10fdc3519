package handlers

import "github.com/gofiber/fiber/v2"

// activationError emits the structured error shape of the activation
// protocol. Clients classify on the machine code only; descriptions are
// free to change.
func activationError(c *fiber.Ctx, status int, errorCode string, description string) error {
	return c.Status(status).JSON(fiber.Map{
		"error":             errorCode,
		"error_description": description,
	})
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestID").(string); ok {
		return id
	}
	return ""
}
