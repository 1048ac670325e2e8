package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

func adminApp(t *testing.T) *fiber.App {
	t.Helper()
	app := fiber.New()
	app.Get("/secured", AdminAuthMiddleware(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func mintToken(t *testing.T, key []byte, role string) string {
	t.Helper()
	claims := AdminClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "operator",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role: role,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestAdminAuthMiddleware(t *testing.T) {
	t.Setenv("ADMIN_JWT_SECRET", "test-secret")
	app := adminApp(t)

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"no header", "", fiber.StatusUnauthorized},
		{"valid admin token", "Bearer " + mintToken(t, []byte("test-secret"), "admin"), fiber.StatusOK},
		{"wrong role", "Bearer " + mintToken(t, []byte("test-secret"), "viewer"), fiber.StatusForbidden},
		{"wrong key", "Bearer " + mintToken(t, []byte("other-secret"), "admin"), fiber.StatusUnauthorized},
		{"empty key", "Bearer " + mintToken(t, []byte{}, "admin"), fiber.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/secured", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("request: %v", err)
			}
			if resp.StatusCode != tc.want {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tc.want)
			}
		})
	}
}
