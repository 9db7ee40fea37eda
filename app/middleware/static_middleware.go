package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// ServeUI hands the single-page UI to any GET that is not an API or
// health-check route, so a page reload lands on the app instead of a 404.
func ServeUI(indexPath string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()

		if c.Method() != fiber.MethodGet ||
			strings.HasPrefix(path, "/api/") ||
			strings.HasPrefix(path, "/check/") {
			return c.Next()
		}

		if strings.HasPrefix(path, "/.well-known/") {
			return c.JSON(fiber.Map{
				"status": "ignored dynamic-static",
			})
		}

		return c.SendFile(indexPath)
	}
}
