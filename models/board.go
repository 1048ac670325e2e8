package models

import (
	"time"
)

// BingoBoard is the grid an event's tasks are laid onto.
type BingoBoard struct {
	BoardID   uint      `json:"board_id" gorm:"column:board_id;primaryKey;autoIncrement"`
	BoardName string    `json:"board_name" gorm:"not null;uniqueIndex:idx_board_event"`
	Rows      int       `json:"rows" gorm:"column:grid_rows;default:3"`
	Cols      int       `json:"cols" gorm:"column:grid_cols;default:5"`
	IsActive  bool      `json:"is_active"`
	EventID   uint      `json:"event_id" gorm:"column:event_id;uniqueIndex:idx_board_event"`
	CreatedBy string    `json:"created_by" gorm:"not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`

	Cells []BingoBoardCell `json:"cells,omitempty" gorm:"foreignKey:BoardID"`
}

func (BingoBoard) TableName() string { return "bingo_boards" }

// CellCount returns the number of cells the grid holds.
func (b *BingoBoard) CellCount() int { return b.Rows * b.Cols }

// BingoBoardCell binds one task to one (row, col) position on a board.
type BingoBoardCell struct {
	CellID  uint `json:"cell_id" gorm:"column:cell_id;primaryKey;autoIncrement"`
	BoardID uint `json:"board_id" gorm:"column:board_id;not null;uniqueIndex:idx_cell_position"`
	Row     int  `json:"row" gorm:"column:grid_row;uniqueIndex:idx_cell_position"`
	Col     int  `json:"col" gorm:"column:grid_col;uniqueIndex:idx_cell_position"`
	TaskID  uint `json:"task_id" gorm:"column:task_id;not null;index"`
	IsBonus bool `json:"is_bonus" gorm:"default:false"`

	Task BingoTask `json:"task,omitempty" gorm:"foreignKey:TaskID;references:TaskID"`
}

func (BingoBoardCell) TableName() string { return "bingo_board_cells" }
