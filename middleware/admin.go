// middleware/admin.go
package middleware

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// AdminClaims is the payload the admin dashboard's tokens carry.
type AdminClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// AdminAuthMiddleware verifies an HMAC-signed admin JWT and requires the
// admin role. Used on the control-surface routes; the gateway token alone
// is not enough to mutate event state.
func AdminAuthMiddleware() fiber.Handler {
	secret := []byte(os.Getenv("ADMIN_JWT_SECRET"))
	if len(secret) == 0 {
		// An empty HMAC key would verify any attacker-minted token.
		log.Fatal("❌ ADMIN_JWT_SECRET is not set — admin routes cannot verify tokens")
	}

	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing or invalid authorization header",
			})
		}
		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

		token, err := jwt.ParseWithClaims(tokenStr, &AdminClaims{}, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return secret, nil
		})
		if err != nil || !token.Valid {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid token",
			})
		}

		claims, ok := token.Claims.(*AdminClaims)
		if !ok || claims.Role != "admin" {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "admin role required",
			})
		}

		c.Locals("adminID", claims.Subject)
		return c.Next()
	}
}
