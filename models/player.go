package models

import (
	"time"
)

// Player mirrors a registered clan member from the membership registry.
// Rows are written by the stat sync worker only; the engine treats them as
// read-only.
type Player struct {
	PlayerID  uint      `json:"player_id" gorm:"column:player_id;primaryKey"`
	RSN       string    `json:"rsn" gorm:"column:rsn;not null;index"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Player) TableName() string { return "players" }

// PlayerStat is the latest stat snapshot for one (player, domain, metric)
// key, mirrored from the hiscores sync service.
type PlayerStat struct {
	StatID    uint      `json:"stat_id" gorm:"column:stat_id;primaryKey;autoIncrement"`
	PlayerID  uint      `json:"player_id" gorm:"column:player_id;not null;uniqueIndex:idx_player_stat"`
	Domain    string    `json:"domain" gorm:"type:varchar(16);not null;uniqueIndex:idx_player_stat"`
	Metric    string    `json:"metric" gorm:"not null;uniqueIndex:idx_player_stat"`
	Kills     int64     `json:"kills" gorm:"default:0"`
	Exp       int64     `json:"exp" gorm:"default:0"`
	Level     int64     `json:"level" gorm:"default:0"`
	Score     int64     `json:"score" gorm:"default:0"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (PlayerStat) TableName() string { return "player_stats" }

// ValueFor returns the snapshot column a task type reads.
func (s *PlayerStat) ValueFor(column string) int64 {
	switch column {
	case "kills":
		return s.Kills
	case "exp":
		return s.Exp
	case "level":
		return s.Level
	case "score":
		return s.Score
	}
	return 0
}
