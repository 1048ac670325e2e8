package services

import (
	"errors"
	"testing"

	"clan-bingo-system/models"
)

// startedEvent bootstraps a full live event and returns its state.
func startedEvent(t *testing.T, svc *LifecycleService) *models.BingoState {
	t.Helper()
	if err := svc.Tick(); err != nil {
		t.Fatalf("tick: %v", err)
	}
	state, err := svc.ActiveEvent()
	if err != nil {
		t.Fatalf("active event: %v", err)
	}
	return state
}

func TestAdjustExtraPointsFlowsToLeaderboard(t *testing.T) {
	db := newTestDB(t)
	seedCatalog(t, db)
	seedDropItems(t, db)
	seedPlayer(t, db, 1, "alice")
	lifecycle := newLifecycle(t, db)
	admin := NewAdminService(db, lifecycle)
	state := startedEvent(t, lifecycle)

	var row models.TaskProgress
	if err := db.First(&row, "event_id = ? AND player_id = ?", state.EventID, 1).Error; err != nil {
		t.Fatalf("load progress row: %v", err)
	}

	if err := admin.AdjustExtraPoints(state.EventID, 1, row.TaskID, 25); err != nil {
		t.Fatalf("adjust: %v", err)
	}

	var entry models.LeaderboardEntry
	if err := db.First(&entry, "event_id = ? AND player_id = ?", state.EventID, 1).Error; err != nil {
		t.Fatalf("load entry: %v", err)
	}
	if entry.TotalPoints != 25 {
		t.Fatalf("total_points = %d, want 25 from the manual grant", entry.TotalPoints)
	}

	// A second grant stacks on the first.
	if err := admin.AdjustExtraPoints(state.EventID, 1, row.TaskID, -10); err != nil {
		t.Fatalf("adjust down: %v", err)
	}
	db.First(&entry, "event_id = ? AND player_id = ?", state.EventID, 1)
	if entry.TotalPoints != 15 {
		t.Fatalf("total_points = %d, want 15 after the deduction", entry.TotalPoints)
	}

	// No row, no adjustment.
	if err := admin.AdjustExtraPoints(state.EventID, 999, row.TaskID, 5); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("missing row error = %v, want ErrTaskNotFound", err)
	}
}

func TestSetTaskProgressCapsAndDerivesStatus(t *testing.T) {
	db := newTestDB(t)
	seedCatalog(t, db)
	seedDropItems(t, db)
	seedPlayer(t, db, 1, "alice")
	lifecycle := newLifecycle(t, db)
	admin := NewAdminService(db, lifecycle)
	state := startedEvent(t, lifecycle)

	var row models.TaskProgress
	if err := db.First(&row, "event_id = ? AND player_id = ?", state.EventID, 1).Error; err != nil {
		t.Fatalf("load progress row: %v", err)
	}
	var task models.BingoTask
	if err := db.First(&task, "task_id = ?", row.TaskID).Error; err != nil {
		t.Fatalf("load task: %v", err)
	}

	// Overshooting the target caps at it and completes the row.
	if err := admin.SetTaskProgress(state.EventID, 1, task.TaskID, task.Value*10); err != nil {
		t.Fatalf("set progress: %v", err)
	}
	db.First(&row, "progress_id = ?", row.ProgressID)
	if row.ProgressValue != task.Value || row.Status != models.ProgressCompleted {
		t.Fatalf("got value=%d status=%s, want %d/completed", row.ProgressValue, row.Status, task.Value)
	}
	if row.PointsAwarded != task.BasePoints {
		t.Fatalf("points_awarded = %d, want %d after recompute", row.PointsAwarded, task.BasePoints)
	}

	// Winding it back clears the award.
	if err := admin.SetTaskProgress(state.EventID, 1, task.TaskID, 0); err != nil {
		t.Fatalf("unset progress: %v", err)
	}
	db.First(&row, "progress_id = ?", row.ProgressID)
	if row.Status != models.ProgressIncomplete || row.PointsAwarded != 0 {
		t.Fatalf("got status=%s points=%d, want incomplete/0", row.Status, row.PointsAwarded)
	}

	if err := admin.SetTaskProgress(state.EventID, 1, 99999, 5); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("unknown task error = %v, want ErrTaskNotFound", err)
	}
}

func TestResetPlayerRebaselines(t *testing.T) {
	db := newTestDB(t)
	seedCatalog(t, db)
	seedDropItems(t, db)
	seedPlayer(t, db, 1, "alice")
	seedStat(t, db, 1, "bosses", "zulrah", 100, 0)
	lifecycle := newLifecycle(t, db)
	admin := NewAdminService(db, lifecycle)
	state := startedEvent(t, lifecycle)

	if err := admin.ResetPlayer(state.EventID, 1); err != nil {
		t.Fatalf("reset: %v", err)
	}

	// The recompute re-records the player as a fresh (late-join) baseline.
	var baseline models.EventBaseline
	err := db.First(&baseline, "event_id = ? AND player_id = ?", state.EventID, 1).Error
	if err != nil {
		t.Fatalf("baseline not re-recorded: %v", err)
	}
	if baseline.BaselineType != models.BaselineLateJoin {
		t.Fatalf("baseline type = %s, want %s", baseline.BaselineType, models.BaselineLateJoin)
	}

	if err := admin.ResetPlayer(state.EventID, 99); !errors.Is(err, ErrPlayerNotFound) {
		t.Fatalf("unknown player error = %v, want ErrPlayerNotFound", err)
	}
}

func TestForceCompleteCurrentEventNeedsActive(t *testing.T) {
	db := newTestDB(t)
	lifecycle := newLifecycle(t, db)
	admin := NewAdminService(db, lifecycle)

	if err := admin.ForceCompleteCurrentEvent(); !errors.Is(err, ErrNoActiveEvent) {
		t.Fatalf("error = %v, want ErrNoActiveEvent", err)
	}
}
