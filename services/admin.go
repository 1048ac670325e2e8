package services

import (
	"errors"
	"log"

	"clan-bingo-system/models"

	"gorm.io/gorm"
)

// AdminService is the control surface for event operators. Every mutation
// finishes by re-running the standard recompute pass, so admin writes can
// never bypass the progress and award invariants.
type AdminService struct {
	DB        *gorm.DB
	Lifecycle *LifecycleService
}

func NewAdminService(db *gorm.DB, lifecycle *LifecycleService) *AdminService {
	return &AdminService{DB: db, Lifecycle: lifecycle}
}

// ForceCompleteCurrentEvent ends the active event immediately.
func (s *AdminService) ForceCompleteCurrentEvent() error {
	state, err := s.Lifecycle.ActiveEvent()
	if err != nil {
		return err
	}
	log.Printf("🛠️ [Admin] Force-completing event #%d", state.EventID)
	return s.Lifecycle.ForceComplete(state.EventID)
}

// AdjustExtraPoints adds (or with a negative delta, removes) manually
// granted points on one progress row.
func (s *AdminService) AdjustExtraPoints(eventID, playerID, taskID uint, delta int64) error {
	result := s.DB.Model(&models.TaskProgress{}).
		Where("event_id = ? AND player_id = ? AND task_id = ?", eventID, playerID, taskID).
		Update("extra_points", gorm.Expr("extra_points + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	log.Printf("🛠️ [Admin] Extra points %+d for player %d on task %d (event #%d)", delta, playerID, taskID, eventID)
	return s.Lifecycle.RunRecompute(eventID)
}

// SetTaskProgress overrides a progress value directly. The value is capped
// at the task target and the status re-derived; dropping a row out of
// completed also clears its awarded points.
func (s *AdminService) SetTaskProgress(eventID, playerID, taskID uint, value int64) error {
	var task models.BingoTask
	err := s.DB.First(&task, "task_id = ?", taskID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrTaskNotFound
	}
	if err != nil {
		return err
	}

	if value < 0 {
		value = 0
	}
	if value > task.Value {
		value = task.Value
	}
	status := ProgressStatus(value, task.Value)

	updates := map[string]interface{}{
		"progress_value": value,
		"status":         status,
	}
	if status != models.ProgressCompleted {
		updates["points_awarded"] = 0
	}

	result := s.DB.Model(&models.TaskProgress{}).
		Where("event_id = ? AND player_id = ? AND task_id = ?", eventID, playerID, taskID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		record := models.TaskProgress{
			EventID:       eventID,
			PlayerID:      playerID,
			TaskID:        taskID,
			ProgressValue: value,
			Status:        status,
		}
		if err := s.DB.Create(&record).Error; err != nil {
			return err
		}
	}

	log.Printf("🛠️ [Admin] Progress set to %d for player %d on task %d (event #%d)", value, playerID, taskID, eventID)
	return s.Lifecycle.RunRecompute(eventID)
}

// ResetPlayer wipes a player's baselines and progress for an event. The
// following recompute re-records a fresh baseline, so the player restarts
// from their current stats.
func (s *AdminService) ResetPlayer(eventID, playerID uint) error {
	var player models.Player
	if err := s.DB.First(&player, "player_id = ?", playerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPlayerNotFound
		}
		return err
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ? AND player_id = ?", eventID, playerID).
			Delete(&models.EventBaseline{}).Error; err != nil {
			return err
		}
		return tx.Where("event_id = ? AND player_id = ?", eventID, playerID).
			Delete(&models.TaskProgress{}).Error
	})
	if err != nil {
		return err
	}
	log.Printf("🛠️ [Admin] Reset baselines and progress for player %d (event #%d)", playerID, eventID)
	return s.Lifecycle.RunRecompute(eventID)
}
