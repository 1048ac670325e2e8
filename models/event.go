package models

import (
	"time"
)

// Event states. An event moves upcoming → ongoing → completed and a
// completed event's id is never reused.
const (
	StateUpcoming  = "upcoming"
	StateOngoing   = "ongoing"
	StateCompleted = "completed"
)

// BingoEvent is the identity row for one bingo cycle.
type BingoEvent struct {
	EventID     uint      `json:"event_id" gorm:"column:event_id;primaryKey;autoIncrement"`
	EventName   string    `json:"event_name" gorm:"not null"`
	Description string    `json:"description"`
	CreatedBy   string    `json:"created_by" gorm:"default:'system'"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (BingoEvent) TableName() string { return "bingo_events" }

// BingoState carries the lifecycle of an event: its board binding, state and
// scheduling window. Exactly one row per event.
type BingoState struct {
	EventID     uint       `json:"event_id" gorm:"column:event_id;primaryKey"`
	BoardID     uint       `json:"board_id" gorm:"column:board_id;not null"`
	State       string     `json:"state" gorm:"type:varchar(16);default:'upcoming';index"`
	StartTime   *time.Time `json:"start_time,omitempty"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	LastUpdated time.Time  `json:"last_updated" gorm:"autoUpdateTime"`
}

func (BingoState) TableName() string { return "bingo_state" }
