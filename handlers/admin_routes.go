// handlers/admin_routes.go
package handlers

import (
	"errors"

	"clan-bingo-system/middleware"
	"clan-bingo-system/services"

	"github.com/gofiber/fiber/v2"
)

// SetupAdminRoutes wires the operator control surface. Everything here
// requires an admin JWT on top of the gateway token, and every mutation
// funnels through the standard recompute pass.
func SetupAdminRoutes(app *fiber.App, admin *services.AdminService, lifecycle *services.LifecycleService) {
	secured := app.Group("/admin/bingo", middleware.AdminAuthMiddleware())

	secured.Post("/force-complete", func(c *fiber.Ctx) error {
		err := admin.ForceCompleteCurrentEvent()
		if errors.Is(err, services.ErrNoActiveEvent) {
			return c.Status(404).JSON(fiber.Map{"error": "no active bingo event"})
		}
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "failed to complete event", "cause": err.Error()})
		}
		return c.JSON(fiber.Map{"status": "completed"})
	})

	secured.Post("/extra-points", func(c *fiber.Ctx) error {
		var body struct {
			EventID  uint  `json:"event_id"`
			PlayerID uint  `json:"player_id"`
			TaskID   uint  `json:"task_id"`
			Delta    int64 `json:"delta"`
		}
		if err := c.BodyParser(&body); err != nil || body.EventID == 0 || body.PlayerID == 0 || body.TaskID == 0 {
			return c.Status(400).JSON(fiber.Map{"error": "event_id, player_id and task_id are required"})
		}

		err := admin.AdjustExtraPoints(body.EventID, body.PlayerID, body.TaskID, body.Delta)
		if errors.Is(err, services.ErrTaskNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "no progress row for that player and task"})
		}
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "failed to adjust points", "cause": err.Error()})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})

	secured.Post("/progress", func(c *fiber.Ctx) error {
		var body struct {
			EventID  uint  `json:"event_id"`
			PlayerID uint  `json:"player_id"`
			TaskID   uint  `json:"task_id"`
			Value    int64 `json:"value"`
		}
		if err := c.BodyParser(&body); err != nil || body.EventID == 0 || body.PlayerID == 0 || body.TaskID == 0 {
			return c.Status(400).JSON(fiber.Map{"error": "event_id, player_id and task_id are required"})
		}

		err := admin.SetTaskProgress(body.EventID, body.PlayerID, body.TaskID, body.Value)
		if errors.Is(err, services.ErrTaskNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "task not found"})
		}
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "failed to set progress", "cause": err.Error()})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})

	secured.Post("/reset", func(c *fiber.Ctx) error {
		var body struct {
			EventID  uint `json:"event_id"`
			PlayerID uint `json:"player_id"`
		}
		if err := c.BodyParser(&body); err != nil || body.EventID == 0 || body.PlayerID == 0 {
			return c.Status(400).JSON(fiber.Map{"error": "event_id and player_id are required"})
		}

		if err := admin.ResetPlayer(body.EventID, body.PlayerID); err != nil {
			if errors.Is(err, services.ErrPlayerNotFound) {
				return c.Status(404).JSON(fiber.Map{"error": "player not found"})
			}
			return c.Status(500).JSON(fiber.Map{"error": "failed to reset player", "cause": err.Error()})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})

	secured.Post("/recompute", func(c *fiber.Ctx) error {
		var body struct {
			EventID uint `json:"event_id"`
		}
		if err := c.BodyParser(&body); err != nil || body.EventID == 0 {
			return c.Status(400).JSON(fiber.Map{"error": "event_id is required"})
		}

		err := lifecycle.RunRecompute(body.EventID)
		if errors.Is(err, services.ErrEventNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "event not found"})
		}
		if errors.Is(err, services.ErrNoActiveEvent) {
			return c.Status(409).JSON(fiber.Map{"error": "event is not ongoing"})
		}
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "recompute failed", "cause": err.Error()})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})
}
