package services

import (
	"fmt"
	"testing"

	"clan-bingo-system/models"

	"gorm.io/gorm"
)

// seedFullBoard creates a 3x5 board with one distinct task per cell and
// returns it with tasks indexed [row][col].
func seedFullBoard(t *testing.T, db *gorm.DB, eventID uint) (*models.BingoBoard, [][]models.BingoTask) {
	t.Helper()

	board := models.BingoBoard{BoardName: fmt.Sprintf("board-%d", eventID), Rows: 3, Cols: 5, EventID: eventID, CreatedBy: "system"}
	if err := db.Create(&board).Error; err != nil {
		t.Fatalf("create board: %v", err)
	}

	tasks := make([][]models.BingoTask, 3)
	for row := 0; row < 3; row++ {
		tasks[row] = make([]models.BingoTask, 5)
		for col := 0; col < 5; col++ {
			task := models.BingoTask{
				Category: "Boss", Type: models.TaskKill,
				Description: fmt.Sprintf("Kill %d Zulrah variant %d-%d", 10, row, col),
				Parameter:   fmt.Sprintf("boss_%d_%d", row, col),
				Value:       10, BasePoints: 20, IsDynamic: true,
			}
			if err := db.Create(&task).Error; err != nil {
				t.Fatalf("create task: %v", err)
			}
			cell := models.BingoBoardCell{BoardID: board.BoardID, TaskID: task.TaskID, Row: row, Col: col}
			if err := db.Create(&cell).Error; err != nil {
				t.Fatalf("create cell: %v", err)
			}
			tasks[row][col] = task
		}
	}
	return &board, tasks
}

func completeCell(t *testing.T, db *gorm.DB, eventID, playerID, teamID uint, task models.BingoTask) {
	t.Helper()
	row := models.TaskProgress{
		EventID: eventID, PlayerID: playerID, TeamID: teamID, TaskID: task.TaskID,
		ProgressValue: task.Value, Status: models.ProgressCompleted, PointsAwarded: task.BasePoints,
	}
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("complete cell: %v", err)
	}
}

func TestCheckPatternsAwardsLineOnce(t *testing.T) {
	db := newTestDB(t)
	svc := NewRecognitionService(db)
	board, tasks := seedFullBoard(t, db, 1)

	for col := 0; col < 5; col++ {
		completeCell(t, db, 1, 7, 0, tasks[0][col])
	}

	awards, err := svc.CheckPatterns(1, board.BoardID)
	if err != nil {
		t.Fatalf("check patterns: %v", err)
	}
	if len(awards) == 0 {
		t.Fatal("completed top row produced no awards")
	}

	foundLine := false
	for _, a := range awards {
		if a.PatternKey == "row_0" {
			foundLine = true
			if a.PlayerID != 7 || a.TeamID != 0 {
				t.Fatalf("award attributed to player=%d team=%d, want 7/0", a.PlayerID, a.TeamID)
			}
			if a.BonusPoints != PatternBonus(PatternLine) {
				t.Fatalf("line bonus = %d, want %d", a.BonusPoints, PatternBonus(PatternLine))
			}
		}
	}
	if !foundLine {
		t.Fatal("row_0 line award missing")
	}

	// Re-running the matcher never duplicates an award.
	for i := 0; i < 3; i++ {
		again, err := svc.CheckPatterns(1, board.BoardID)
		if err != nil {
			t.Fatalf("re-check patterns: %v", err)
		}
		if len(again) != 0 {
			t.Fatalf("pass %d re-awarded %d patterns", i, len(again))
		}
	}

	var count int64
	db.Model(&models.PatternAward{}).Where("event_id = ? AND pattern_key = ?", 1, "row_0").Count(&count)
	if count != 1 {
		t.Fatalf("row_0 stored %d times, want 1", count)
	}
}

func TestCheckPatternsSeparatesPlayersAndTeams(t *testing.T) {
	db := newTestDB(t)
	svc := NewRecognitionService(db)
	board, tasks := seedFullBoard(t, db, 1)

	// Team 3 completes the top row through two members' shares.
	for col := 0; col < 3; col++ {
		completeCell(t, db, 1, 1, 3, tasks[0][col])
	}
	for col := 3; col < 5; col++ {
		completeCell(t, db, 1, 2, 3, tasks[0][col])
	}

	awards, err := svc.CheckPatterns(1, board.BoardID)
	if err != nil {
		t.Fatalf("check patterns: %v", err)
	}

	teamAward := false
	for _, a := range awards {
		if a.PatternKey != "row_0" {
			continue
		}
		if a.TeamID == 3 && a.PlayerID == 0 {
			teamAward = true
		}
		if a.TeamID == 0 {
			t.Fatalf("player %d awarded row_0 without completing it alone", a.PlayerID)
		}
	}
	if !teamAward {
		t.Fatal("team 3 did not receive the row_0 award")
	}
}

func TestFullBoardWinner(t *testing.T) {
	db := newTestDB(t)
	svc := NewRecognitionService(db)
	board, tasks := seedFullBoard(t, db, 1)

	winner, err := svc.FullBoardWinner(1, board.BoardID)
	if err != nil {
		t.Fatalf("full board winner: %v", err)
	}
	if winner != nil {
		t.Fatalf("empty board returned winner %+v", winner)
	}

	for row := 0; row < 3; row++ {
		for col := 0; col < 5; col++ {
			completeCell(t, db, 1, 7, 0, tasks[row][col])
		}
	}
	if _, err := svc.CheckPatterns(1, board.BoardID); err != nil {
		t.Fatalf("check patterns: %v", err)
	}

	winner, err = svc.FullBoardWinner(1, board.BoardID)
	if err != nil {
		t.Fatalf("full board winner: %v", err)
	}
	if winner == nil {
		t.Fatal("blacked-out board has no winner")
	}
	if winner.PlayerID != 7 {
		t.Fatalf("winner player = %d, want 7", winner.PlayerID)
	}
}

func TestPatternBonusTotals(t *testing.T) {
	db := newTestDB(t)
	svc := NewRecognitionService(db)
	board, tasks := seedFullBoard(t, db, 1)

	for col := 0; col < 5; col++ {
		completeCell(t, db, 1, 7, 0, tasks[0][col])
	}
	if _, err := svc.CheckPatterns(1, board.BoardID); err != nil {
		t.Fatalf("check patterns: %v", err)
	}

	totals, err := svc.PatternBonusTotals(1)
	if err != nil {
		t.Fatalf("bonus totals: %v", err)
	}
	got := totals[ParticipantKey{PlayerID: 7}]
	if got < PatternBonus(PatternLine) {
		t.Fatalf("player 7 bonus total = %d, want at least %d", got, PatternBonus(PatternLine))
	}
}
