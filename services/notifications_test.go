package services

import (
	"errors"
	"testing"
	"time"

	"clan-bingo-system/models"
)

func TestCompletionsSince(t *testing.T) {
	db := newTestDB(t)
	seedCatalog(t, db)
	seedDropItems(t, db)
	seedPlayer(t, db, 1, "alice")
	seedStat(t, db, 1, "bosses", "zulrah", 0, 0)
	lifecycle := newLifecycle(t, db)
	leaderboard := NewLeaderboardService(db, NewRecognitionService(db))
	svc := NewNotificationService(db, lifecycle, leaderboard)
	state := startedEvent(t, lifecycle)

	cutoff := time.Now().Add(-time.Minute)

	completions, err := svc.CompletionsSince(cutoff)
	if err != nil {
		t.Fatalf("completions: %v", err)
	}
	if len(completions) != 0 {
		t.Fatalf("got %d completions before any task finished", len(completions))
	}

	var row models.TaskProgress
	if err := db.First(&row, "event_id = ? AND player_id = ?", state.EventID, 1).Error; err != nil {
		t.Fatalf("load progress row: %v", err)
	}
	var task models.BingoTask
	if err := db.First(&task, "task_id = ?", row.TaskID).Error; err != nil {
		t.Fatalf("load task: %v", err)
	}
	err = db.Model(&models.TaskProgress{}).Where("progress_id = ?", row.ProgressID).
		Updates(map[string]interface{}{
			"progress_value": task.Value,
			"status":         models.ProgressCompleted,
			"points_awarded": task.BasePoints,
		}).Error
	if err != nil {
		t.Fatalf("complete row: %v", err)
	}

	completions, err = svc.CompletionsSince(cutoff)
	if err != nil {
		t.Fatalf("completions: %v", err)
	}
	if len(completions) != 1 {
		t.Fatalf("got %d completions, want 1", len(completions))
	}
	got := completions[0]
	if got.RSN != "alice" || got.Description != task.Description || got.PointsAwarded != task.BasePoints {
		t.Fatalf("completion = %+v, want alice finishing %q", got, task.Description)
	}

	// A cutoff in the future filters it out again.
	completions, err = svc.CompletionsSince(time.Now().Add(time.Minute))
	if err != nil {
		t.Fatalf("completions: %v", err)
	}
	if len(completions) != 0 {
		t.Fatalf("future cutoff returned %d completions", len(completions))
	}
}

func TestAwardsSince(t *testing.T) {
	db := newTestDB(t)
	seedCatalog(t, db)
	seedDropItems(t, db)
	lifecycle := newLifecycle(t, db)
	recognition := NewRecognitionService(db)
	svc := NewNotificationService(db, lifecycle, NewLeaderboardService(db, recognition))
	state := startedEvent(t, lifecycle)

	cutoff := time.Now().Add(-time.Minute)

	var cells []models.BingoBoardCell
	if err := db.Preload("Task").Where("board_id = ? AND grid_row = 0", state.BoardID).Find(&cells).Error; err != nil {
		t.Fatalf("load cells: %v", err)
	}
	for _, cell := range cells {
		completeCell(t, db, state.EventID, 7, 0, cell.Task)
	}
	if _, err := recognition.CheckPatterns(state.EventID, state.BoardID); err != nil {
		t.Fatalf("check patterns: %v", err)
	}

	awards, err := svc.AwardsSince(cutoff)
	if err != nil {
		t.Fatalf("awards: %v", err)
	}
	if len(awards) == 0 {
		t.Fatal("fresh line award not reported")
	}
	for _, a := range awards {
		if a.EventID != state.EventID {
			t.Fatalf("award for event %d leaked into event %d's feed", a.EventID, state.EventID)
		}
	}
}

func TestNotificationsRequireActiveEvent(t *testing.T) {
	db := newTestDB(t)
	lifecycle := newLifecycle(t, db)
	svc := NewNotificationService(db, lifecycle, NewLeaderboardService(db, NewRecognitionService(db)))

	// Tick would bootstrap; leave the table empty instead.
	if _, err := svc.CompletionsSince(time.Now()); !errors.Is(err, ErrNoActiveEvent) {
		t.Fatalf("completions error = %v, want ErrNoActiveEvent", err)
	}
	if _, err := svc.AwardsSince(time.Now()); !errors.Is(err, ErrNoActiveEvent) {
		t.Fatalf("awards error = %v, want ErrNoActiveEvent", err)
	}
	if _, err := svc.CurrentLeaderboard(false, 10); !errors.Is(err, ErrNoActiveEvent) {
		t.Fatalf("leaderboard error = %v, want ErrNoActiveEvent", err)
	}
}
