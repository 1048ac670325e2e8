// middleware/gateway.go
package middleware

import (
	"log"
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// GatewayAuthMiddleware gates every route behind the clan gateway's shared
// service token. Bingo reads and admin writes alike never face the open
// internet directly.
func GatewayAuthMiddleware() fiber.Handler {
	expected := os.Getenv("BINGO_SERVICE_TOKEN")
	if expected == "" {
		log.Fatal("❌ BINGO_SERVICE_TOKEN is not set — cannot authenticate gateway requests")
	}

	return func(c *fiber.Ctx) error {
		token := c.Get("Authorization")
		if token == "" {
			log.Printf("🚫 [Gateway] No Authorization header on %s", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "gateway authentication token missing",
			})
		}
		// The gateway sends "Bearer <token>"; tolerate a raw token too.
		token = strings.TrimPrefix(token, "Bearer ")

		if token != expected {
			log.Printf("🚫 [Gateway] Bad token on %s", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid gateway authentication token",
			})
		}
		return c.Next()
	}
}
