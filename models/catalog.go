package models

import (
	"time"
)

// Catalog metric kinds.
const (
	MetricSkill    = "Skill"
	MetricBoss     = "Boss"
	MetricActivity = "Activity"
)

// CatalogMetric is one skill/boss/activity eligible for task generation.
// last_selected_at drives board rotation fairness: recently used metrics are
// de-prioritized on the next cycle.
type CatalogMetric struct {
	MetricID       uint      `json:"metric_id" gorm:"column:metric_id;primaryKey;autoIncrement"`
	Name           string    `json:"name" gorm:"not null;uniqueIndex:idx_catalog_metric"`
	DisplayName    string    `json:"display_name"`
	Kind           string    `json:"kind" gorm:"type:varchar(16);not null;uniqueIndex:idx_catalog_metric"`
	Tier           string    `json:"tier" gorm:"type:varchar(24);default:'ordinary'"`
	LastSelectedAt time.Time `json:"last_selected_at" gorm:"column:last_selected_at"`
}

func (CatalogMetric) TableName() string { return "catalog_metrics" }

// DropItem is one entry in the static drop-item pool used for Drop tasks.
type DropItem struct {
	ItemID    uint      `json:"item_id" gorm:"column:item_id;primaryKey;autoIncrement"`
	Name      string    `json:"name" gorm:"not null;uniqueIndex"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (DropItem) TableName() string { return "drop_items" }

// RotationSchedule is the persisted "next wake" record for one schedulable
// entity. The scheduler rebuilds its in-memory timer set from these rows on
// every process start, so timers survive restarts.
type RotationSchedule struct {
	ScheduleID uint      `json:"schedule_id" gorm:"column:schedule_id;primaryKey;autoIncrement"`
	EntityKey  string    `json:"entity_key" gorm:"column:entity_key;not null;uniqueIndex"`
	WakeAt     time.Time `json:"wake_at" gorm:"column:wake_at;not null"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt  time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (RotationSchedule) TableName() string { return "rotation_schedules" }
