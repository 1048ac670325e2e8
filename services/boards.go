package services

import (
	"fmt"
	"log"
	"math/rand"
	"sort"
	"time"

	"clan-bingo-system/models"

	"gorm.io/gorm"
)

const scoreTaskCap = 3

// BoardService composes balanced boards from the dynamic task catalog.
type BoardService struct {
	DB   *gorm.DB
	Rng  *rand.Rand
	Rows int
	Cols int
}

func NewBoardService(db *gorm.DB, rng *rand.Rand, rows, cols int) *BoardService {
	if rows <= 0 {
		rows = 3
	}
	if cols <= 0 {
		cols = 5
	}
	return &BoardService{DB: db, Rng: rng, Rows: rows, Cols: cols}
}

// rankedTask pairs a task with the last time its underlying metric was put
// on a board. Least-recently-selected tasks are drawn first.
type rankedTask struct {
	Task         models.BingoTask
	LastSelected time.Time
}

// loadRankedTasks joins the dynamic catalog against the metric rotation
// timestamps. Tasks without a metric (drops) rank as never selected.
func (s *BoardService) loadRankedTasks() ([]rankedTask, error) {
	var tasks []models.BingoTask
	if err := s.DB.Where("is_dynamic = ?", true).Find(&tasks).Error; err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, ErrTaskNotFound
	}

	var metrics []models.CatalogMetric
	if err := s.DB.Find(&metrics).Error; err != nil {
		return nil, err
	}
	lastSelected := make(map[string]time.Time, len(metrics))
	for _, m := range metrics {
		lastSelected[m.Name] = m.LastSelectedAt
	}

	ranked := make([]rankedTask, len(tasks))
	for i, t := range tasks {
		ranked[i] = rankedTask{Task: t, LastSelected: lastSelected[t.Parameter]}
	}
	return ranked, nil
}

// SelectBalancedTasks picks totalTasks tasks spread across task types:
// each type contributes floor(total/types) least-recently-selected tasks,
// Score capped at three, then remaining slots backfill from any type under
// the same cap.
func (s *BoardService) SelectBalancedTasks(totalTasks int) ([]models.BingoTask, error) {
	ranked, err := s.loadRankedTasks()
	if err != nil {
		return nil, err
	}

	sort.Slice(ranked, func(i, j int) bool { return ranked[i].LastSelected.Before(ranked[j].LastSelected) })

	groups := make(map[models.TaskType][]rankedTask)
	for _, rt := range ranked {
		groups[rt.Task.Type] = append(groups[rt.Task.Type], rt)
	}

	perType := totalTasks / len(groups)
	picked := make([]models.BingoTask, 0, totalTasks)
	pickedIDs := make(map[uint]bool, totalTasks)
	scoreCount := 0

	take := func(rt rankedTask) {
		picked = append(picked, rt.Task)
		pickedIDs[rt.Task.TaskID] = true
		if rt.Task.Type == models.TaskScore {
			scoreCount++
		}
	}

	for taskType, group := range groups {
		limit := perType
		if taskType == models.TaskScore && limit > scoreTaskCap {
			limit = scoreTaskCap
		}
		for i := 0; i < limit && i < len(group); i++ {
			take(group[i])
		}
	}

	// Quotas can under-fill the board when a type has few tasks; backfill
	// from the global least-recently-selected order.
	for _, rt := range ranked {
		if len(picked) >= totalTasks {
			break
		}
		if pickedIDs[rt.Task.TaskID] {
			continue
		}
		if rt.Task.Type == models.TaskScore && scoreCount >= scoreTaskCap {
			continue
		}
		take(rt)
	}

	if len(picked) > totalTasks {
		picked = picked[:totalTasks]
	}
	return picked, nil
}

// ComposeBoard creates a board for the event, lays the selected tasks out
// row-major after a shuffle, and advances each selected metric's rotation
// timestamp.
func (s *BoardService) ComposeBoard(eventID uint) (*models.BingoBoard, error) {
	totalTasks := s.Rows * s.Cols
	tasks, err := s.SelectBalancedTasks(totalTasks)
	if err != nil {
		return nil, err
	}
	if len(tasks) < totalTasks {
		return nil, fmt.Errorf("board needs %d tasks, catalog yielded %d", totalTasks, len(tasks))
	}

	s.Rng.Shuffle(len(tasks), func(i, j int) { tasks[i], tasks[j] = tasks[j], tasks[i] })

	board := models.BingoBoard{
		BoardName: fmt.Sprintf("Auto-Bingo #%d", eventID),
		Rows:      s.Rows,
		Cols:      s.Cols,
		IsActive:  true,
		EventID:   eventID,
		CreatedBy: "system",
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&board).Error; err != nil {
			return err
		}

		now := time.Now()
		for i, task := range tasks {
			cell := models.BingoBoardCell{
				BoardID: board.BoardID,
				Row:     i / s.Cols,
				Col:     i % s.Cols,
				TaskID:  task.TaskID,
			}
			if err := tx.Create(&cell).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.CatalogMetric{}).
				Where("name = ?", task.Parameter).
				Update("last_selected_at", now).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("🧩 [BoardComposer] Board #%d composed for event #%d (%dx%d)", board.BoardID, eventID, s.Rows, s.Cols)
	return &board, nil
}
