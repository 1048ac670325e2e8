package models

import (
	"fmt"
	"time"
)

// TaskType is the closed set of progress sources a task can track.
// Anything else is rejected at the boundary instead of leaking into queries.
type TaskType string

const (
	TaskKill  TaskType = "Kill"
	TaskExp   TaskType = "Exp"
	TaskLevel TaskType = "Level"
	TaskScore TaskType = "Score"
	TaskDrop  TaskType = "Drop"
)

// DataAttributes maps a task type onto the stat-snapshot domain and column
// it reads from (e.g. Kill → bosses/kills).
type DataAttributes struct {
	Domain string
	Column string
}

var taskDataAttributes = map[TaskType]DataAttributes{
	TaskKill:  {Domain: "bosses", Column: "kills"},
	TaskExp:   {Domain: "skills", Column: "exp"},
	TaskLevel: {Domain: "skills", Column: "level"},
	TaskScore: {Domain: "activities", Column: "score"},
}

// ResolveDataAttributes returns the stat domain/column for a data-based task
// type. Drop tasks have no stat source and are rejected here alongside
// unknown types.
func ResolveDataAttributes(t TaskType) (DataAttributes, error) {
	attrs, ok := taskDataAttributes[t]
	if !ok {
		return DataAttributes{}, fmt.Errorf("task type %q has no stat-data mapping", t)
	}
	return attrs, nil
}

// DataKey builds the baseline key for a (type, parameter) pair,
// e.g. "bosses_zulrah_kills".
func DataKey(t TaskType, parameter string) (string, error) {
	attrs, err := ResolveDataAttributes(t)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s_%s_%s", attrs.Domain, parameter, attrs.Column), nil
}

// BingoTask is one eligible task in the catalog. Dynamic tasks are
// regenerated each event cycle; the unique index prevents duplicate
// generation across restarts.
type BingoTask struct {
	TaskID       uint      `json:"task_id" gorm:"column:task_id;primaryKey;autoIncrement"`
	Category     string    `json:"category" gorm:"not null;uniqueIndex:idx_task_identity"`
	Type         TaskType  `json:"type" gorm:"type:varchar(16);not null;uniqueIndex:idx_task_identity"`
	Description  string    `json:"description" gorm:"not null"`
	Parameter    string    `json:"parameter" gorm:"uniqueIndex:idx_task_identity"`
	Value        int64     `json:"value" gorm:"uniqueIndex:idx_task_identity"`
	BasePoints   int64     `json:"base_points" gorm:"default:0"`
	IsDynamic    bool      `json:"is_dynamic"`
	IsRepeatable bool      `json:"is_repeatable" gorm:"default:false"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (BingoTask) TableName() string { return "bingo_tasks" }
