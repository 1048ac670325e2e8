package services

import (
	"time"

	"clan-bingo-system/models"

	"gorm.io/gorm"
)

// NotificationService exposes the query surfaces the presentation layer
// polls: fresh completions, fresh pattern awards, current standings.
type NotificationService struct {
	DB          *gorm.DB
	Lifecycle   *LifecycleService
	Leaderboard *LeaderboardService
}

func NewNotificationService(db *gorm.DB, lifecycle *LifecycleService, leaderboard *LeaderboardService) *NotificationService {
	return &NotificationService{DB: db, Lifecycle: lifecycle, Leaderboard: leaderboard}
}

// TaskCompletion is one completed task with its display context.
type TaskCompletion struct {
	EventID       uint      `json:"event_id"`
	PlayerID      uint      `json:"player_id"`
	RSN           string    `json:"rsn"`
	TeamID        uint      `json:"team_id"`
	TaskID        uint      `json:"task_id"`
	Description   string    `json:"description"`
	PointsAwarded int64     `json:"points_awarded"`
	LastUpdated   time.Time `json:"last_updated"`
}

// CompletionsSince returns tasks completed after the given time for the
// active event.
func (s *NotificationService) CompletionsSince(since time.Time) ([]TaskCompletion, error) {
	state, err := s.Lifecycle.ActiveEvent()
	if err != nil {
		return nil, err
	}

	var completions []TaskCompletion
	err = s.DB.Raw(`
		SELECT btp.event_id, btp.player_id, p.rsn, btp.team_id, btp.task_id,
		       bt.description, btp.points_awarded, btp.last_updated
		FROM bingo_task_progress btp
		JOIN bingo_tasks bt ON bt.task_id = btp.task_id
		LEFT JOIN players p ON p.player_id = btp.player_id
		WHERE btp.event_id = ?
		  AND btp.status = ?
		  AND btp.last_updated > ?
		ORDER BY btp.last_updated ASC`,
		state.EventID, models.ProgressCompleted, since).Scan(&completions).Error
	if err != nil {
		return nil, err
	}
	return completions, nil
}

// AwardsSince returns pattern awards granted after the given time for the
// active event.
func (s *NotificationService) AwardsSince(since time.Time) ([]models.PatternAward, error) {
	state, err := s.Lifecycle.ActiveEvent()
	if err != nil {
		return nil, err
	}

	var awards []models.PatternAward
	err = s.DB.Where("event_id = ? AND awarded_at > ?", state.EventID, since).
		Order("awarded_at ASC").Find(&awards).Error
	if err != nil {
		return nil, err
	}
	return awards, nil
}

// CurrentLeaderboard returns the active event's standings for one track.
func (s *NotificationService) CurrentLeaderboard(teams bool, limit int) ([]models.LeaderboardEntry, error) {
	state, err := s.Lifecycle.ActiveEvent()
	if err != nil {
		return nil, err
	}
	return s.Leaderboard.TopEntries(state.EventID, teams, limit)
}
