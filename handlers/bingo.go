// handlers/bingo.go
package handlers

import (
	"errors"
	"strconv"
	"time"

	"clan-bingo-system/models"
	"clan-bingo-system/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// SetupBingoRoutes wires the public read surfaces and the team operations.
// All routes sit behind the gateway token; none need the admin role.
func SetupBingoRoutes(app *fiber.App,
	lifecycle *services.LifecycleService,
	notifications *services.NotificationService,
	teams *services.TeamService) {

	app.Get("/bingo/state", func(c *fiber.Ctx) error {
		state, err := lifecycle.ActiveEvent()
		if errors.Is(err, services.ErrNoActiveEvent) {
			return c.Status(404).JSON(fiber.Map{"error": "no active bingo event"})
		}
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "DB error fetching state", "cause": err.Error()})
		}
		return c.JSON(state)
	})

	app.Get("/bingo/board", func(c *fiber.Ctx) error {
		state, err := lifecycle.ActiveEvent()
		if errors.Is(err, services.ErrNoActiveEvent) {
			return c.Status(404).JSON(fiber.Map{"error": "no active bingo event"})
		}
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "DB error fetching state", "cause": err.Error()})
		}

		var board models.BingoBoard
		err = lifecycle.DB.Preload("Cells.Task").First(&board, "board_id = ?", state.BoardID).Error
		if err != nil {
			return c.Status(404).JSON(fiber.Map{"error": "bingo board not found"})
		}
		return c.JSON(board)
	})

	app.Get("/bingo/leaderboard", func(c *fiber.Ctx) error {
		limit, _ := strconv.Atoi(c.Query("limit", "25"))
		teamsTrack := c.Query("track") == "teams"

		entries, err := notifications.CurrentLeaderboard(teamsTrack, limit)
		if errors.Is(err, services.ErrNoActiveEvent) {
			return c.Status(404).JSON(fiber.Map{"error": "no active bingo event"})
		}
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "DB error fetching leaderboard", "cause": err.Error()})
		}
		return c.JSON(entries)
	})

	app.Get("/bingo/completions", func(c *fiber.Ctx) error {
		since, err := parseSince(c.Query("since"))
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid since (use RFC3339)"})
		}
		completions, err := notifications.CompletionsSince(since)
		if errors.Is(err, services.ErrNoActiveEvent) {
			return c.Status(404).JSON(fiber.Map{"error": "no active bingo event"})
		}
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "DB error fetching completions", "cause": err.Error()})
		}
		return c.JSON(completions)
	})

	app.Get("/bingo/awards", func(c *fiber.Ctx) error {
		since, err := parseSince(c.Query("since"))
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid since (use RFC3339)"})
		}
		awards, err := notifications.AwardsSince(since)
		if errors.Is(err, services.ErrNoActiveEvent) {
			return c.Status(404).JSON(fiber.Map{"error": "no active bingo event"})
		}
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "DB error fetching awards", "cause": err.Error()})
		}
		return c.JSON(awards)
	})

	app.Get("/bingo/progress/:player_id", func(c *fiber.Ctx) error {
		playerID, err := strconv.ParseUint(c.Params("player_id"), 10, 32)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid player_id"})
		}
		state, err := lifecycle.ActiveEvent()
		if errors.Is(err, services.ErrNoActiveEvent) {
			return c.Status(404).JSON(fiber.Map{"error": "no active bingo event"})
		}
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "DB error fetching state", "cause": err.Error()})
		}

		var rows []models.TaskProgress
		err = lifecycle.DB.Where("event_id = ? AND player_id = ?", state.EventID, playerID).Find(&rows).Error
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "DB error fetching progress", "cause": err.Error()})
		}

		var cells []models.BingoBoardCell
		err = lifecycle.DB.Preload("Task").Where("board_id = ?", state.BoardID).Find(&cells).Error
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "DB error fetching board", "cause": err.Error()})
		}
		taskByID := make(map[uint]models.BingoTask, len(cells))
		var boardPoints int64
		for _, cell := range cells {
			if _, seen := taskByID[cell.TaskID]; seen {
				continue
			}
			taskByID[cell.TaskID] = cell.Task
			boardPoints += cell.Task.BasePoints
		}

		type progressRow struct {
			models.TaskProgress
			PartialPoints int64 `json:"partial_points"`
		}
		enriched := make([]progressRow, 0, len(rows))
		var earned int64
		for _, row := range rows {
			task, ok := taskByID[row.TaskID]
			if !ok {
				continue
			}
			partial := services.PartialPoints(row.ProgressValue, task.Value, task.BasePoints)
			earned += partial
			enriched = append(enriched, progressRow{TaskProgress: row, PartialPoints: partial})
		}
		return c.JSON(fiber.Map{
			"rows":               enriched,
			"partial_points":     earned,
			"overall_percentage": services.OverallPercentage(earned, boardPoints),
		})
	})

	app.Post("/bingo/teams", func(c *fiber.Ctx) error {
		var body struct {
			TeamName  string `json:"team_name"`
			Passkey   string `json:"passkey"`
			CaptainID uint   `json:"captain_id"`
		}
		if err := c.BodyParser(&body); err != nil || body.TeamName == "" || body.CaptainID == 0 {
			return c.Status(400).JSON(fiber.Map{"error": "team_name and captain_id are required"})
		}

		state, err := lifecycle.ActiveEvent()
		if errors.Is(err, services.ErrNoActiveEvent) {
			return c.Status(404).JSON(fiber.Map{"error": "no active bingo event"})
		}
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "DB error fetching state", "cause": err.Error()})
		}

		passkey := body.Passkey
		if passkey == "" {
			passkey = uuid.NewString()[:8]
		}

		team, err := teams.CreateTeam(state.EventID, body.TeamName, passkey, body.CaptainID)
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "failed to create team", "cause": err.Error()})
		}
		return c.Status(201).JSON(fiber.Map{
			"team":    team,
			"passkey": passkey,
		})
	})

	app.Post("/bingo/teams/join", func(c *fiber.Ctx) error {
		var body struct {
			TeamName string `json:"team_name"`
			Passkey  string `json:"passkey"`
			PlayerID uint   `json:"player_id"`
		}
		if err := c.BodyParser(&body); err != nil || body.TeamName == "" || body.PlayerID == 0 {
			return c.Status(400).JSON(fiber.Map{"error": "team_name and player_id are required"})
		}

		state, err := lifecycle.ActiveEvent()
		if errors.Is(err, services.ErrNoActiveEvent) {
			return c.Status(404).JSON(fiber.Map{"error": "no active bingo event"})
		}
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "DB error fetching state", "cause": err.Error()})
		}

		team, err := teams.JoinTeam(state.EventID, body.TeamName, body.Passkey, body.PlayerID)
		if errors.Is(err, services.ErrTeamNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "team not found"})
		}
		if err != nil {
			return c.Status(403).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(team)
	})

	app.Post("/bingo/teams/leave", func(c *fiber.Ctx) error {
		var body struct {
			PlayerID uint `json:"player_id"`
		}
		if err := c.BodyParser(&body); err != nil || body.PlayerID == 0 {
			return c.Status(400).JSON(fiber.Map{"error": "player_id is required"})
		}

		state, err := lifecycle.ActiveEvent()
		if errors.Is(err, services.ErrNoActiveEvent) {
			return c.Status(404).JSON(fiber.Map{"error": "no active bingo event"})
		}
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "DB error fetching state", "cause": err.Error()})
		}

		err = teams.LeaveTeam(state.EventID, body.PlayerID)
		if errors.Is(err, services.ErrTeamNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "player is not on a team"})
		}
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "failed to leave team", "cause": err.Error()})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})
}

// parseSince defaults to 24h ago when the query param is absent.
func parseSince(raw string) (time.Time, error) {
	if raw == "" {
		return time.Now().Add(-24 * time.Hour), nil
	}
	return time.Parse(time.RFC3339, raw)
}
