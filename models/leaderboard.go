package models

import (
	"time"
)

// LeaderboardEntry is one participant's ranked standing for an event.
// Player entries carry team_id=0; team entries carry player_id=0.
type LeaderboardEntry struct {
	LeaderboardID  uint      `json:"leaderboard_id" gorm:"column:leaderboard_id;primaryKey;autoIncrement"`
	EventID        uint      `json:"event_id" gorm:"column:event_id;not null;uniqueIndex:idx_leaderboard_key"`
	PlayerID       uint      `json:"player_id" gorm:"column:player_id;default:0;uniqueIndex:idx_leaderboard_key"`
	TeamID         uint      `json:"team_id" gorm:"column:team_id;default:0;uniqueIndex:idx_leaderboard_key"`
	TotalPoints    int64     `json:"total_points" gorm:"column:total_points;default:0"`
	CompletedTasks int64     `json:"completed_tasks" gorm:"column:completed_tasks;default:0"`
	PatternBonus   int64     `json:"pattern_bonus" gorm:"column:pattern_bonus;default:0"`
	LastUpdated    time.Time `json:"last_updated" gorm:"column:last_updated;autoUpdateTime"`
}

func (LeaderboardEntry) TableName() string { return "bingo_leaderboard" }

// PatternAward records a one-time shape bonus. The unique index makes
// re-awarding a no-op.
type PatternAward struct {
	AwardedID   uint      `json:"awarded_id" gorm:"column:awarded_id;primaryKey;autoIncrement"`
	BoardID     uint      `json:"board_id" gorm:"column:board_id;not null;uniqueIndex:idx_pattern_award"`
	EventID     uint      `json:"event_id" gorm:"column:event_id;not null;uniqueIndex:idx_pattern_award"`
	PlayerID    uint      `json:"player_id" gorm:"column:player_id;default:0;uniqueIndex:idx_pattern_award"`
	TeamID      uint      `json:"team_id" gorm:"column:team_id;default:0;uniqueIndex:idx_pattern_award"`
	PatternKey  string    `json:"pattern_key" gorm:"column:pattern_key;not null;uniqueIndex:idx_pattern_award"`
	BonusPoints int64     `json:"bonus_points" gorm:"column:bonus_points;default:0"`
	AwardedAt   time.Time `json:"awarded_at" gorm:"autoCreateTime"`
}

func (PatternAward) TableName() string { return "bingo_patterns_awarded" }
