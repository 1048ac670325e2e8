package services

import (
	"errors"
	"log"

	"clan-bingo-system/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProgressService computes per-player task progress for ongoing events from
// stat snapshots against event baselines. Team members are routed through
// the team reconciler instead of being written directly.
type ProgressService struct {
	DB    *gorm.DB
	Teams *TeamService
}

func NewProgressService(db *gorm.DB, teams *TeamService) *ProgressService {
	return &ProgressService{DB: db, Teams: teams}
}

// statValue reads the latest snapshot for a (player, task type, parameter)
// key. A missing snapshot row reads as zero.
func (s *ProgressService) statValue(playerID uint, taskType models.TaskType, parameter string) (int64, error) {
	attrs, err := models.ResolveDataAttributes(taskType)
	if err != nil {
		return 0, err
	}
	var stat models.PlayerStat
	err = s.DB.Where("player_id = ? AND domain = ? AND metric = ?", playerID, attrs.Domain, parameter).First(&stat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return stat.ValueFor(attrs.Column), nil
}

// baselineValue reads the stored baseline for a (event, player, data key).
// A missing baseline reads as zero, matching a player tracked from the
// event's very start.
func (s *ProgressService) baselineValue(eventID, playerID uint, dataKey string) (int64, error) {
	var baseline models.EventBaseline
	err := s.DB.Where("event_id = ? AND player_id = ? AND data_key = ?", eventID, playerID, dataKey).First(&baseline).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return baseline.DataValue, nil
}

// RawProgress computes max(0, current − baseline) for one player and task.
func (s *ProgressService) RawProgress(eventID, playerID uint, task models.BingoTask) (int64, error) {
	current, err := s.statValue(playerID, task.Type, task.Parameter)
	if err != nil {
		return 0, err
	}
	dataKey, err := models.DataKey(task.Type, task.Parameter)
	if err != nil {
		return 0, err
	}
	baseline, err := s.baselineValue(eventID, playerID, dataKey)
	if err != nil {
		return 0, err
	}
	raw := current - baseline
	if raw < 0 {
		raw = 0
	}
	return raw, nil
}

// ProgressStatus derives the status for a capped progress value.
func ProgressStatus(capped, target int64) string {
	switch {
	case capped >= target:
		return models.ProgressCompleted
	case capped > 0:
		return models.ProgressInProgress
	default:
		return models.ProgressIncomplete
	}
}

// UpsertTaskProgress applies the completed-barrier write rules: insert only
// when capped > 0, update only a non-completed row with strictly greater
// progress. Regressions from stale reads are silently dropped.
func (s *ProgressService) UpsertTaskProgress(eventID, playerID, teamID, taskID uint, capped, target int64) error {
	status := ProgressStatus(capped, target)

	var existing models.TaskProgress
	err := s.DB.Where("event_id = ? AND player_id = ? AND task_id = ?", eventID, playerID, taskID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if capped <= 0 {
			return nil
		}
		record := models.TaskProgress{
			EventID:       eventID,
			PlayerID:      playerID,
			TeamID:        teamID,
			TaskID:        taskID,
			ProgressValue: capped,
			Status:        status,
		}
		return s.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&record).Error
	}
	if err != nil {
		return err
	}

	if existing.Status == models.ProgressCompleted {
		return nil
	}
	if capped <= existing.ProgressValue {
		// Stale read or no movement.
		return nil
	}

	return s.DB.Model(&models.TaskProgress{}).
		Where("progress_id = ? AND status <> ?", existing.ProgressID, models.ProgressCompleted).
		Updates(map[string]interface{}{
			"progress_value": capped,
			"status":         status,
			"team_id":        teamID,
		}).Error
}

// boardTasks loads the tasks placed on a board.
func (s *ProgressService) boardTasks(boardID uint) ([]models.BingoTask, error) {
	var cells []models.BingoBoardCell
	if err := s.DB.Preload("Task").Where("board_id = ?", boardID).Find(&cells).Error; err != nil {
		return nil, err
	}
	if len(cells) == 0 {
		return nil, ErrBoardNotFound
	}
	tasks := make([]models.BingoTask, 0, len(cells))
	seen := make(map[uint]bool, len(cells))
	for _, c := range cells {
		if seen[c.TaskID] {
			continue
		}
		seen[c.TaskID] = true
		tasks = append(tasks, c.Task)
	}
	return tasks, nil
}

// UpdateEventProgress runs one full progress pass for an ongoing event:
// every task on the board, every active participant. Solo players are
// written directly; team members are reconciled per team so shared targets
// are never double-credited. Per-participant stat failures skip that pair
// and continue the batch.
func (s *ProgressService) UpdateEventProgress(eventID, boardID uint) error {
	tasks, err := s.boardTasks(boardID)
	if err != nil {
		return err
	}

	var players []models.Player
	if err := s.DB.Where("is_active = ?", true).Find(&players).Error; err != nil {
		return err
	}

	teamByPlayer, err := s.Teams.MembershipIndex(eventID)
	if err != nil {
		return err
	}

	for _, task := range tasks {
		if task.Type == models.TaskDrop {
			// Drop tasks have no stat source; progress arrives through the
			// admin surface only.
			continue
		}

		rawByTeam := make(map[uint]map[uint]int64)
		for _, player := range players {
			raw, err := s.RawProgress(eventID, player.PlayerID, task)
			if err != nil {
				log.Printf("[ProgressEngine] Skipping player %d task %d: %v", player.PlayerID, task.TaskID, err)
				continue
			}

			teamID, onTeam := teamByPlayer[player.PlayerID]
			if !onTeam {
				capped := raw
				if capped > task.Value {
					capped = task.Value
				}
				if err := s.UpsertTaskProgress(eventID, player.PlayerID, 0, task.TaskID, capped, task.Value); err != nil {
					log.Printf("DB error writing progress for player %d task %d: %v", player.PlayerID, task.TaskID, err)
				}
				continue
			}

			members := rawByTeam[teamID]
			if members == nil {
				members = make(map[uint]int64)
				rawByTeam[teamID] = members
			}
			members[player.PlayerID] = raw
		}

		for teamID, members := range rawByTeam {
			if err := s.Teams.ReconcileTeamTask(eventID, teamID, task, members, s.UpsertTaskProgress); err != nil {
				log.Printf("[ProgressEngine] Team %d reconcile failed for task %d: %v", teamID, task.TaskID, err)
			}
		}
	}
	return nil
}

// RecordEventBaseline snapshots every active player's stats for every
// data-based task on the event's board. Runs at activation.
func (s *ProgressService) RecordEventBaseline(eventID, boardID uint) error {
	return s.recordBaselines(eventID, boardID, nil, models.BaselineInitial)
}

// RecordLateJoinBaselines snapshots players who have no baseline yet for an
// ongoing event, so late joiners start from their current stats instead of
// lifetime totals.
func (s *ProgressService) RecordLateJoinBaselines(eventID, boardID uint) error {
	var existing []models.EventBaseline
	if err := s.DB.Select("player_id").Where("event_id = ?", eventID).Find(&existing).Error; err != nil {
		return err
	}
	seen := make(map[uint]bool, len(existing))
	for _, b := range existing {
		seen[b.PlayerID] = true
	}

	var players []models.Player
	if err := s.DB.Where("is_active = ?", true).Find(&players).Error; err != nil {
		return err
	}
	var newcomers []models.Player
	for _, p := range players {
		if !seen[p.PlayerID] {
			newcomers = append(newcomers, p)
		}
	}
	if len(newcomers) == 0 {
		return nil
	}
	return s.recordBaselines(eventID, boardID, newcomers, models.BaselineLateJoin)
}

// recordBaselines writes snapshot rows for the given players (all active
// players when nil) against the board's data-based tasks.
func (s *ProgressService) recordBaselines(eventID, boardID uint, players []models.Player, baselineType string) error {
	if players == nil {
		if err := s.DB.Where("is_active = ?", true).Find(&players).Error; err != nil {
			return err
		}
	}
	tasks, err := s.boardTasks(boardID)
	if err != nil {
		return err
	}

	recorded := 0
	for _, player := range players {
		for _, task := range tasks {
			dataKey, err := models.DataKey(task.Type, task.Parameter)
			if err != nil {
				continue
			}
			value, err := s.statValue(player.PlayerID, task.Type, task.Parameter)
			if err != nil {
				log.Printf("[ProgressEngine] Baseline skipped for player %d key %s: %v", player.PlayerID, dataKey, err)
				continue
			}
			baseline := models.EventBaseline{
				EventID:      eventID,
				PlayerID:     player.PlayerID,
				RSN:          player.RSN,
				DataKey:      dataKey,
				DataValue:    value,
				BaselineType: baselineType,
			}
			err = s.DB.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "event_id"}, {Name: "player_id"}, {Name: "data_key"}},
				DoUpdates: clause.AssignmentColumns([]string{"data_value", "baseline_type"}),
			}).Create(&baseline).Error
			if err != nil {
				log.Printf("DB error recording baseline for player %d key %s: %v", player.PlayerID, dataKey, err)
				continue
			}
			recorded++
		}
	}
	log.Printf("📊 [ProgressEngine] Recorded %d %s baselines for event #%d", recorded, baselineType, eventID)
	return nil
}

// InitializeTaskProgress seeds zero-value progress rows for every active
// player and board task so the presentation layer always has a full grid.
func (s *ProgressService) InitializeTaskProgress(eventID, boardID uint) error {
	tasks, err := s.boardTasks(boardID)
	if err != nil {
		return err
	}
	var players []models.Player
	if err := s.DB.Where("is_active = ?", true).Find(&players).Error; err != nil {
		return err
	}
	teamByPlayer, err := s.Teams.MembershipIndex(eventID)
	if err != nil {
		return err
	}

	for _, player := range players {
		for _, task := range tasks {
			record := models.TaskProgress{
				EventID:  eventID,
				PlayerID: player.PlayerID,
				TeamID:   teamByPlayer[player.PlayerID],
				TaskID:   task.TaskID,
				Status:   models.ProgressIncomplete,
			}
			if err := s.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&record).Error; err != nil {
				return err
			}
		}
	}
	log.Printf("[ProgressEngine] Task progress initialized for event #%d", eventID)
	return nil
}
