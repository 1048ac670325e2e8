package services

import (
	"errors"
	"log"

	"clan-bingo-system/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecognitionService detects completed patterns on an event's board and
// awards each (participant, pattern) bonus at most once.
type RecognitionService struct {
	DB *gorm.DB
}

func NewRecognitionService(db *gorm.DB) *RecognitionService {
	return &RecognitionService{DB: db}
}

// ParticipantKey distinguishes the player and team award tracks. Exactly one
// of PlayerID/TeamID is non-zero.
type ParticipantKey struct {
	PlayerID uint
	TeamID   uint
}

// loadBoard fetches the board with its cells.
func (s *RecognitionService) loadBoard(boardID uint) (*models.BingoBoard, error) {
	var board models.BingoBoard
	err := s.DB.Preload("Cells").First(&board, "board_id = ?", boardID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBoardNotFound
	}
	if err != nil {
		return nil, err
	}
	return &board, nil
}

// completedCells groups the event's completed progress rows into per-player
// and per-team sets of board cells. A task counts for a team when any member
// row carrying that team id is completed.
func (s *RecognitionService) completedCells(eventID uint, cells []models.BingoBoardCell) (map[ParticipantKey]map[Cell]bool, error) {
	taskCells := make(map[uint][]Cell, len(cells))
	for _, c := range cells {
		taskCells[c.TaskID] = append(taskCells[c.TaskID], Cell{Row: c.Row, Col: c.Col})
	}

	var rows []models.TaskProgress
	if err := s.DB.Where("event_id = ? AND status = ?", eventID, models.ProgressCompleted).Find(&rows).Error; err != nil {
		return nil, err
	}

	done := make(map[ParticipantKey]map[Cell]bool)
	mark := func(key ParticipantKey, taskID uint) {
		set := done[key]
		if set == nil {
			set = make(map[Cell]bool)
			done[key] = set
		}
		for _, cell := range taskCells[taskID] {
			set[cell] = true
		}
	}
	for _, row := range rows {
		mark(ParticipantKey{PlayerID: row.PlayerID}, row.TaskID)
		if row.TeamID != 0 {
			mark(ParticipantKey{TeamID: row.TeamID}, row.TaskID)
		}
	}
	return done, nil
}

// CheckPatterns evaluates every pattern for every participant with completed
// cells and inserts missing awards. Safe to call on every tick: the unique
// index on (board, event, player, team, pattern_key) makes repeats no-ops.
func (s *RecognitionService) CheckPatterns(eventID, boardID uint) ([]models.PatternAward, error) {
	board, err := s.loadBoard(boardID)
	if err != nil {
		return nil, err
	}
	done, err := s.completedCells(eventID, board.Cells)
	if err != nil {
		return nil, err
	}
	if len(done) == 0 {
		return nil, nil
	}

	catalog := BuildPatternCatalog(board.Rows, board.Cols)

	var newAwards []models.PatternAward
	for key, cellSet := range done {
		for _, pattern := range catalog {
			if !patternSatisfied(pattern, cellSet) {
				continue
			}
			award := models.PatternAward{
				BoardID:     boardID,
				EventID:     eventID,
				PlayerID:    key.PlayerID,
				TeamID:      key.TeamID,
				PatternKey:  pattern.Key,
				BonusPoints: PatternBonus(pattern.Type),
			}
			result := s.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&award)
			if result.Error != nil {
				log.Printf("DB error awarding pattern %s for event %d: %v", pattern.Key, eventID, result.Error)
				continue
			}
			if result.RowsAffected > 0 {
				log.Printf("🎯 Pattern %s awarded (event %d, player %d, team %d, +%d)",
					pattern.Key, eventID, key.PlayerID, key.TeamID, award.BonusPoints)
				newAwards = append(newAwards, award)
			}
		}
	}
	return newAwards, nil
}

func patternSatisfied(pattern Pattern, done map[Cell]bool) bool {
	for _, cell := range pattern.Cells {
		if !done[cell] {
			return false
		}
	}
	return true
}

// FullBoardWinner reports the first participant holding a full_board award
// for the event, if any. Used to end an event early.
func (s *RecognitionService) FullBoardWinner(eventID, boardID uint) (*models.PatternAward, error) {
	var award models.PatternAward
	err := s.DB.Where("event_id = ? AND board_id = ? AND pattern_key = ?", eventID, boardID, FullBoardKey).
		Order("awarded_at ASC").First(&award).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &award, nil
}

// PatternBonusTotals sums awarded bonus points per participant for an event.
func (s *RecognitionService) PatternBonusTotals(eventID uint) (map[ParticipantKey]int64, error) {
	var awards []models.PatternAward
	if err := s.DB.Where("event_id = ?", eventID).Find(&awards).Error; err != nil {
		return nil, err
	}
	totals := make(map[ParticipantKey]int64, len(awards))
	for _, a := range awards {
		totals[ParticipantKey{PlayerID: a.PlayerID, TeamID: a.TeamID}] += a.BonusPoints
	}
	return totals, nil
}
