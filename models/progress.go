package models

import (
	"time"
)

// Progress statuses. Status is monotonic: once completed, no write may
// change it or decrease progress_value.
const (
	ProgressIncomplete = "incomplete"
	ProgressInProgress = "in-progress"
	ProgressCompleted  = "completed"
)

// Baseline types.
const (
	BaselineInitial  = "initial"
	BaselineLateJoin = "late_join"
)

// EventBaseline is a stat snapshot taken at event activation (or when a
// player joins late). Immutable once written for a given key.
type EventBaseline struct {
	BaselineID   uint      `json:"baseline_id" gorm:"column:baseline_id;primaryKey;autoIncrement"`
	EventID      uint      `json:"event_id" gorm:"column:event_id;not null;uniqueIndex:idx_baseline_key"`
	PlayerID     uint      `json:"player_id" gorm:"column:player_id;not null;uniqueIndex:idx_baseline_key"`
	RSN          string    `json:"rsn" gorm:"column:rsn"`
	DataKey      string    `json:"data_key" gorm:"column:data_key;not null;uniqueIndex:idx_baseline_key"`
	DataValue    int64     `json:"data_value" gorm:"column:data_value;not null"`
	BaselineType string    `json:"baseline_type" gorm:"column:baseline_type;type:varchar(16);not null"`
	RecordedAt   time.Time `json:"recorded_at" gorm:"autoCreateTime"`
}

func (EventBaseline) TableName() string { return "bingo_event_baseline" }

// TaskProgress is one participant's progress toward one task on the active
// board. progress_value is always capped at the task target.
type TaskProgress struct {
	ProgressID    uint      `json:"progress_id" gorm:"column:progress_id;primaryKey;autoIncrement"`
	EventID       uint      `json:"event_id" gorm:"column:event_id;not null;uniqueIndex:idx_progress_key"`
	PlayerID      uint      `json:"player_id" gorm:"column:player_id;not null;uniqueIndex:idx_progress_key"`
	TeamID        uint      `json:"team_id" gorm:"column:team_id;default:0;index"`
	TaskID        uint      `json:"task_id" gorm:"column:task_id;not null;uniqueIndex:idx_progress_key"`
	ProgressValue int64     `json:"progress_value" gorm:"column:progress_value;default:0"`
	Status        string    `json:"status" gorm:"type:varchar(16);default:'incomplete'"`
	PointsAwarded int64     `json:"points_awarded" gorm:"column:points_awarded;default:0"`
	ExtraPoints   int64     `json:"extra_points" gorm:"column:extra_points;default:0"`
	LastUpdated   time.Time `json:"last_updated" gorm:"column:last_updated;autoUpdateTime"`
}

func (TaskProgress) TableName() string { return "bingo_task_progress" }

// BingoHistory is the append-only archive a completed event's progress rows
// are copied into before the live rows are deleted.
type BingoHistory struct {
	HistoryID     uint      `json:"history_id" gorm:"column:history_id;primaryKey;autoIncrement"`
	EventID       uint      `json:"event_id" gorm:"column:event_id;not null;index"`
	BoardID       uint      `json:"board_id" gorm:"column:board_id;not null"`
	PlayerID      uint      `json:"player_id" gorm:"column:player_id"`
	TeamID        uint      `json:"team_id" gorm:"column:team_id;default:0"`
	TaskID        uint      `json:"task_id" gorm:"column:task_id"`
	ProgressValue int64     `json:"progress_value" gorm:"column:progress_value;default:0"`
	Status        string    `json:"status" gorm:"type:varchar(16)"`
	PointsAwarded int64     `json:"points_awarded" gorm:"column:points_awarded;default:0"`
	ExtraPoints   int64     `json:"extra_points" gorm:"column:extra_points;default:0"`
	CompletedAt   time.Time `json:"completed_at" gorm:"column:completed_at"`
}

func (BingoHistory) TableName() string { return "bingo_history" }
