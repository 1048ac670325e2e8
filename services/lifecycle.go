package services

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"clan-bingo-system/models"

	"gorm.io/gorm"
)

// DefaultEventDuration is how long an event runs when no explicit end time
// is set.
const DefaultEventDuration = 28 * 24 * time.Hour

// ArchiveExporter ships a completed event's archived rows to external
// storage. Export failures never block rotation.
type ArchiveExporter interface {
	ExportEventArchive(event models.BingoEvent, rows []models.BingoHistory) error
}

// LifecycleService drives events through upcoming → ongoing → completed and
// rotates a fresh event in when one finishes.
type LifecycleService struct {
	DB          *gorm.DB
	TaskGen     *TaskGenService
	Boards      *BoardService
	Progress    *ProgressService
	Teams       *TeamService
	Recognition *RecognitionService
	Leaderboard *LeaderboardService
	Duration    time.Duration
	Exporter    ArchiveExporter

	mu         sync.Mutex
	eventLocks map[uint]*sync.Mutex
}

func NewLifecycleService(db *gorm.DB, taskGen *TaskGenService, boards *BoardService,
	progress *ProgressService, teams *TeamService, recognition *RecognitionService,
	leaderboard *LeaderboardService, duration time.Duration) *LifecycleService {
	if duration <= 0 {
		duration = DefaultEventDuration
	}
	return &LifecycleService{
		DB:          db,
		TaskGen:     taskGen,
		Boards:      boards,
		Progress:    progress,
		Teams:       teams,
		Recognition: recognition,
		Leaderboard: leaderboard,
		Duration:    duration,
		eventLocks:  make(map[uint]*sync.Mutex),
	}
}

// lockEvent serializes all recompute work per event. A scheduled tick and
// an admin command racing the same event would otherwise interleave
// baseline-delta reads and upserts.
func (s *LifecycleService) lockEvent(eventID uint) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.eventLocks[eventID]
	if !ok {
		lock = &sync.Mutex{}
		s.eventLocks[eventID] = lock
	}
	return lock
}

// dropLock forgets a completed event's lock so the map stays bounded
// across rotations. Completed events never tick again.
func (s *LifecycleService) dropLock(eventID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.eventLocks, eventID)
}

// Tick runs one full lifecycle pass: bootstrap when empty, activate due
// upcoming events, recompute ongoing ones and complete those past their
// window. Per-event failures are logged and the pass continues.
func (s *LifecycleService) Tick() error {
	var count int64
	if err := s.DB.Model(&models.BingoState{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		if err := s.Bootstrap(); err != nil {
			return err
		}
	}

	var states []models.BingoState
	if err := s.DB.Where("state IN ?", []string{models.StateUpcoming, models.StateOngoing}).Find(&states).Error; err != nil {
		return err
	}

	for _, state := range states {
		lock := s.lockEvent(state.EventID)
		lock.Lock()
		if err := s.tickEvent(state); err != nil {
			log.Printf("[Lifecycle] Event #%d tick failed: %v", state.EventID, err)
		}
		lock.Unlock()
	}
	return nil
}

func (s *LifecycleService) tickEvent(state models.BingoState) error {
	// Re-read under the lock; a racing pass may have advanced the state.
	if err := s.DB.First(&state, "event_id = ?", state.EventID).Error; err != nil {
		return err
	}

	now := time.Now()
	switch state.State {
	case models.StateUpcoming:
		if state.StartTime == nil || !state.StartTime.After(now) {
			return s.activateEvent(&state)
		}
		return nil
	case models.StateOngoing:
		return s.runOngoing(&state, now)
	default:
		return nil
	}
}

// Bootstrap creates the very first event: catalog, board, state row, and
// immediate activation.
func (s *LifecycleService) Bootstrap() error {
	log.Println("🚀 [Lifecycle] No bingo events found, bootstrapping...")
	state, err := s.createUpcomingEvent(nil)
	if err != nil {
		return err
	}
	return s.activateEvent(state)
}

// createUpcomingEvent generates the catalog, composes a board and writes
// the event + state rows. startTime nil means "activate on next tick".
func (s *LifecycleService) createUpcomingEvent(startTime *time.Time) (*models.BingoState, error) {
	if err := s.TaskGen.GenerateDynamicTasks(); err != nil {
		return nil, err
	}

	event := models.BingoEvent{
		EventName:   "Auto-Bingo",
		Description: "Auto-generated bingo event",
		CreatedBy:   "system",
	}
	if err := s.DB.Create(&event).Error; err != nil {
		return nil, err
	}
	event.EventName = fmt.Sprintf("Auto-Bingo #%d", event.EventID)
	if err := s.DB.Model(&event).Update("event_name", event.EventName).Error; err != nil {
		return nil, err
	}

	board, err := s.Boards.ComposeBoard(event.EventID)
	if err != nil {
		return nil, err
	}

	state := models.BingoState{
		EventID:   event.EventID,
		BoardID:   board.BoardID,
		State:     models.StateUpcoming,
		StartTime: startTime,
	}
	if err := s.DB.Create(&state).Error; err != nil {
		return nil, err
	}

	// Persist the wake time so the scheduler can rebuild after a restart.
	if startTime != nil {
		if err := s.scheduleWake(event.EventID, *startTime); err != nil {
			log.Printf("[Lifecycle] Failed to persist wake for event #%d: %v", event.EventID, err)
		}
	}

	log.Printf("📅 [Lifecycle] Event #%d created (upcoming, board #%d)", event.EventID, board.BoardID)
	return &state, nil
}

func (s *LifecycleService) scheduleWake(eventID uint, wakeAt time.Time) error {
	schedule := models.RotationSchedule{
		EntityKey: fmt.Sprintf("bingo_event_%d", eventID),
		WakeAt:    wakeAt,
	}
	return s.DB.Where("entity_key = ?", schedule.EntityKey).
		Assign(models.RotationSchedule{WakeAt: wakeAt}).
		FirstOrCreate(&schedule).Error
}

// activateEvent flips an event to ongoing and seeds its tracking rows:
// baselines for every eligible player, zero-value progress for every
// (player, task) pair, and a membership/progress team-id sweep.
func (s *LifecycleService) activateEvent(state *models.BingoState) error {
	now := time.Now()
	end := now.Add(s.Duration)
	updates := map[string]interface{}{
		"state":      models.StateOngoing,
		"start_time": now,
	}
	if state.EndTime == nil {
		updates["end_time"] = end
	} else {
		end = *state.EndTime
	}
	if err := s.DB.Model(&models.BingoState{}).Where("event_id = ?", state.EventID).Updates(updates).Error; err != nil {
		return err
	}
	state.State = models.StateOngoing
	state.StartTime = &now
	state.EndTime = &end

	if err := s.Progress.RecordEventBaseline(state.EventID, state.BoardID); err != nil {
		return err
	}
	if err := s.Progress.InitializeTaskProgress(state.EventID, state.BoardID); err != nil {
		return err
	}
	if err := s.reconcileTeamIDs(state.EventID); err != nil {
		return err
	}
	if err := s.scheduleWake(state.EventID, end); err != nil {
		log.Printf("[Lifecycle] Failed to persist wake for event #%d: %v", state.EventID, err)
	}

	log.Printf("🟢 [Lifecycle] Event #%d is now ongoing (ends %s)", state.EventID, end.Format(time.RFC3339))
	return nil
}

// reconcileTeamIDs re-stamps progress rows whose team id drifted from the
// membership table.
func (s *LifecycleService) reconcileTeamIDs(eventID uint) error {
	index, err := s.Teams.MembershipIndex(eventID)
	if err != nil {
		return err
	}

	var rows []models.TaskProgress
	if err := s.DB.Where("event_id = ?", eventID).Find(&rows).Error; err != nil {
		return err
	}
	for _, row := range rows {
		want := index[row.PlayerID]
		if row.TeamID == want {
			continue
		}
		err := s.DB.Model(&models.TaskProgress{}).
			Where("progress_id = ?", row.ProgressID).
			Update("team_id", want).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// RunRecompute executes the standard recompute pass for an ongoing event:
// late-join baselines, progress, patterns, leaderboard. Admin mutations go
// through here as well so they can never bypass the invariants.
func (s *LifecycleService) RunRecompute(eventID uint) error {
	var state models.BingoState
	err := s.DB.First(&state, "event_id = ?", eventID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrEventNotFound
	}
	if err != nil {
		return err
	}
	if state.State != models.StateOngoing {
		return ErrNoActiveEvent
	}

	lock := s.lockEvent(eventID)
	lock.Lock()
	defer lock.Unlock()
	return s.recomputeLocked(&state)
}

func (s *LifecycleService) recomputeLocked(state *models.BingoState) error {
	if err := s.Progress.RecordLateJoinBaselines(state.EventID, state.BoardID); err != nil {
		log.Printf("[Lifecycle] Late-join baseline pass failed for event #%d: %v", state.EventID, err)
	}
	if err := s.Progress.UpdateEventProgress(state.EventID, state.BoardID); err != nil {
		return err
	}
	if _, err := s.Recognition.CheckPatterns(state.EventID, state.BoardID); err != nil {
		return err
	}
	return s.Leaderboard.UpdateLeaderboard(state.EventID)
}

// runOngoing recomputes an event and completes it when its window has
// passed or someone finished the whole board.
func (s *LifecycleService) runOngoing(state *models.BingoState, now time.Time) error {
	if err := s.recomputeLocked(state); err != nil {
		return err
	}

	expired := false
	if state.EndTime != nil && !state.EndTime.After(now) {
		expired = true
	} else if state.StartTime != nil && now.Sub(*state.StartTime) >= s.Duration {
		expired = true
	}

	if !expired {
		winner, err := s.Recognition.FullBoardWinner(state.EventID, state.BoardID)
		if err != nil {
			return err
		}
		if winner != nil {
			log.Printf("🏆 [Lifecycle] Full board completed on event #%d (player %d, team %d)",
				state.EventID, winner.PlayerID, winner.TeamID)
			expired = true
		}
	}

	if !expired {
		return nil
	}
	return s.completeEvent(state)
}

// ForceComplete ends an ongoing event now, through the same path a natural
// expiry takes.
func (s *LifecycleService) ForceComplete(eventID uint) error {
	var state models.BingoState
	err := s.DB.First(&state, "event_id = ?", eventID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrEventNotFound
	}
	if err != nil {
		return err
	}
	if state.State != models.StateOngoing {
		return ErrNoActiveEvent
	}

	lock := s.lockEvent(eventID)
	lock.Lock()
	defer lock.Unlock()

	if err := s.recomputeLocked(&state); err != nil {
		log.Printf("[Lifecycle] Final recompute failed for event #%d: %v", eventID, err)
	}
	return s.completeEvent(&state)
}

// completeEvent archives the event, marks it completed and rotates the next
// one in with the roster carried forward.
func (s *LifecycleService) completeEvent(state *models.BingoState) error {
	archived, err := s.archiveEvent(state)
	if err != nil {
		return err
	}

	if err := s.DB.Model(&models.BingoState{}).
		Where("event_id = ?", state.EventID).
		Update("state", models.StateCompleted).Error; err != nil {
		return err
	}
	s.DB.Where("entity_key = ?", fmt.Sprintf("bingo_event_%d", state.EventID)).Delete(&models.RotationSchedule{})

	if s.Exporter != nil {
		var event models.BingoEvent
		if err := s.DB.First(&event, "event_id = ?", state.EventID).Error; err == nil {
			if err := s.Exporter.ExportEventArchive(event, archived); err != nil {
				log.Printf("[Lifecycle] Archive export failed for event #%d: %v", state.EventID, err)
			}
		}
	}

	if err := s.TaskGen.ClearDynamicTasks(); err != nil {
		return err
	}

	now := time.Now()
	next, err := s.createUpcomingEvent(&now)
	if err != nil {
		return err
	}
	if err := s.Teams.CarryForwardRoster(state.EventID, next.EventID); err != nil {
		log.Printf("[Lifecycle] Roster carry-forward failed: %v", err)
	}

	s.dropLock(state.EventID)
	log.Printf("🏁 [Lifecycle] Event #%d completed, event #%d queued", state.EventID, next.EventID)
	return nil
}

// archiveEvent copies live progress rows into bingo_history and deletes
// them, in one transaction so a failure leaves the live rows intact.
func (s *LifecycleService) archiveEvent(state *models.BingoState) ([]models.BingoHistory, error) {
	var rows []models.TaskProgress
	if err := s.DB.Where("event_id = ?", state.EventID).Find(&rows).Error; err != nil {
		return nil, err
	}

	archived := make([]models.BingoHistory, 0, len(rows))
	now := time.Now()
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		for _, row := range rows {
			record := models.BingoHistory{
				EventID:       row.EventID,
				BoardID:       state.BoardID,
				PlayerID:      row.PlayerID,
				TeamID:        row.TeamID,
				TaskID:        row.TaskID,
				ProgressValue: row.ProgressValue,
				Status:        row.Status,
				PointsAwarded: row.PointsAwarded,
				ExtraPoints:   row.ExtraPoints,
				CompletedAt:   now,
			}
			if err := tx.Create(&record).Error; err != nil {
				return err
			}
			archived = append(archived, record)
		}
		return tx.Where("event_id = ?", state.EventID).Delete(&models.TaskProgress{}).Error
	})
	if err != nil {
		return nil, err
	}

	log.Printf("🗃️ [Lifecycle] Archived %d progress rows for event #%d", len(archived), state.EventID)
	return archived, nil
}

// ActiveEvent returns the single ongoing event's state.
func (s *LifecycleService) ActiveEvent() (*models.BingoState, error) {
	var state models.BingoState
	err := s.DB.Where("state = ?", models.StateOngoing).First(&state).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoActiveEvent
	}
	if err != nil {
		return nil, err
	}
	return &state, nil
}
