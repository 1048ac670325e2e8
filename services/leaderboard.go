package services

import (
	"log"

	"clan-bingo-system/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LeaderboardService recomputes standings from scratch on every pass, so a
// pass over unchanged progress rows is a no-op.
type LeaderboardService struct {
	DB          *gorm.DB
	Recognition *RecognitionService
}

func NewLeaderboardService(db *gorm.DB, recognition *RecognitionService) *LeaderboardService {
	return &LeaderboardService{DB: db, Recognition: recognition}
}

// UpdateLeaderboard recomputes both tracks for an event.
func (s *LeaderboardService) UpdateLeaderboard(eventID uint) error {
	if err := s.awardCompletionPoints(eventID); err != nil {
		return err
	}
	if err := s.updatePlayerTrack(eventID); err != nil {
		return err
	}
	return s.updateTeamTrack(eventID)
}

// awardCompletionPoints stamps base points onto completed rows exactly
// once. The conditional write is the award-once guarantee: a second pass
// matches zero rows.
func (s *LeaderboardService) awardCompletionPoints(eventID uint) error {
	return s.DB.Exec(`
		UPDATE bingo_task_progress
		SET points_awarded = (
			SELECT base_points FROM bingo_tasks
			WHERE bingo_tasks.task_id = bingo_task_progress.task_id
		)
		WHERE event_id = ?
		  AND status = ?
		  AND points_awarded = 0`,
		eventID, models.ProgressCompleted).Error
}

// taskTotals is one aggregated progress row per participant.
type taskTotals struct {
	PlayerID       uint
	TeamID         uint
	CompletedTasks int64
	PointsSum      int64
	ExtraSum       int64
}

func (s *LeaderboardService) upsertEntry(entry models.LeaderboardEntry) error {
	return s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_id"}, {Name: "player_id"}, {Name: "team_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"total_points", "completed_tasks", "pattern_bonus"}),
	}).Create(&entry).Error
}

// updatePlayerTrack sums each player's completed-task points, extra points
// and pattern bonuses into their leaderboard row.
func (s *LeaderboardService) updatePlayerTrack(eventID uint) error {
	var totals []taskTotals
	err := s.DB.Raw(`
		SELECT player_id,
		       COUNT(CASE WHEN status = ? THEN 1 END) AS completed_tasks,
		       COALESCE(SUM(points_awarded), 0)       AS points_sum,
		       COALESCE(SUM(extra_points), 0)         AS extra_sum
		FROM bingo_task_progress
		WHERE event_id = ?
		GROUP BY player_id`,
		models.ProgressCompleted, eventID).Scan(&totals).Error
	if err != nil {
		return err
	}

	bonuses, err := s.Recognition.PatternBonusTotals(eventID)
	if err != nil {
		return err
	}

	for _, t := range totals {
		bonus := bonuses[ParticipantKey{PlayerID: t.PlayerID}]
		entry := models.LeaderboardEntry{
			EventID:        eventID,
			PlayerID:       t.PlayerID,
			TotalPoints:    t.PointsSum + t.ExtraSum + bonus,
			CompletedTasks: t.CompletedTasks,
			PatternBonus:   bonus,
		}
		if err := s.upsertEntry(entry); err != nil {
			log.Printf("DB error upserting leaderboard row for player %d: %v", t.PlayerID, err)
		}
	}
	return nil
}

// updateTeamTrack re-derives each team's effective allocation per task and
// awards base points once per completed shared task.
func (s *LeaderboardService) updateTeamTrack(eventID uint) error {
	var rows []models.TaskProgress
	if err := s.DB.Where("event_id = ? AND team_id > 0", eventID).Find(&rows).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	type teamTask struct {
		TeamID uint
		TaskID uint
	}
	grouped := make(map[teamTask][]models.TaskProgress)
	extraByTeam := make(map[uint]int64)
	for _, r := range rows {
		key := teamTask{TeamID: r.TeamID, TaskID: r.TaskID}
		grouped[key] = append(grouped[key], r)
		extraByTeam[r.TeamID] += r.ExtraPoints
	}

	taskIDs := make([]uint, 0, len(grouped))
	for key := range grouped {
		taskIDs = append(taskIDs, key.TaskID)
	}
	var tasks []models.BingoTask
	if err := s.DB.Where("task_id IN ?", taskIDs).Find(&tasks).Error; err != nil {
		return err
	}
	taskByID := make(map[uint]models.BingoTask, len(tasks))
	for _, t := range tasks {
		taskByID[t.TaskID] = t
	}

	pointsByTeam := make(map[uint]int64)
	completedByTeam := make(map[uint]int64)

	for key, members := range grouped {
		task, ok := taskByID[key.TaskID]
		if !ok || task.Value <= 0 {
			continue
		}

		progress := make([]MemberProgress, 0, len(members))
		for _, m := range members {
			progress = append(progress, MemberProgress{PlayerID: m.PlayerID, Raw: m.ProgressValue})
		}
		reconciled := CalculateTeamEffectiveProgress(progress, task.Value)

		var sum int64
		for _, m := range reconciled {
			sum += m.Effective
			// Persist the capped share; completed rows keep their value.
			err := s.DB.Model(&models.TaskProgress{}).
				Where("event_id = ? AND player_id = ? AND task_id = ? AND status <> ? AND progress_value > ?",
					eventID, m.PlayerID, key.TaskID, models.ProgressCompleted, m.Effective).
				Update("progress_value", m.Effective).Error
			if err != nil {
				log.Printf("DB error capping team progress for player %d task %d: %v", m.PlayerID, key.TaskID, err)
			}
		}
		if sum >= task.Value {
			pointsByTeam[key.TeamID] += task.BasePoints
			completedByTeam[key.TeamID]++
		}
	}

	bonuses, err := s.Recognition.PatternBonusTotals(eventID)
	if err != nil {
		return err
	}

	for teamID := range extraByTeam {
		bonus := bonuses[ParticipantKey{TeamID: teamID}]
		entry := models.LeaderboardEntry{
			EventID:        eventID,
			TeamID:         teamID,
			TotalPoints:    pointsByTeam[teamID] + extraByTeam[teamID] + bonus,
			CompletedTasks: completedByTeam[teamID],
			PatternBonus:   bonus,
		}
		if err := s.upsertEntry(entry); err != nil {
			log.Printf("DB error upserting leaderboard row for team %d: %v", teamID, err)
		}
	}
	return nil
}

// TopEntries returns an event's standings, one track at a time.
func (s *LeaderboardService) TopEntries(eventID uint, teams bool, limit int) ([]models.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 25
	}
	query := s.DB.Where("event_id = ?", eventID).Order("total_points DESC").Limit(limit)
	if teams {
		query = query.Where("team_id > 0")
	} else {
		query = query.Where("player_id > 0")
	}
	var entries []models.LeaderboardEntry
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
