package models

import (
	"time"
)

// BingoTeam groups players sharing task progress for one event. The roster
// is carried forward to the next event when the current one completes.
type BingoTeam struct {
	TeamID    uint      `json:"team_id" gorm:"column:team_id;primaryKey;autoIncrement"`
	EventID   uint      `json:"event_id" gorm:"column:event_id;not null;uniqueIndex:idx_team_event"`
	TeamName  string    `json:"team_name" gorm:"not null;uniqueIndex:idx_team_event"`
	CaptainID uint      `json:"captain_id" gorm:"column:captain_id"`
	Passkey   string    `json:"-" gorm:"column:passkey"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`

	Members []BingoTeamMember `json:"members,omitempty" gorm:"foreignKey:TeamID"`
}

func (BingoTeam) TableName() string { return "bingo_teams" }

// BingoTeamMember links a player to a team. One active team per player per
// event is enforced at join time.
type BingoTeamMember struct {
	TeamMemberID uint      `json:"team_member_id" gorm:"column:team_member_id;primaryKey;autoIncrement"`
	TeamID       uint      `json:"team_id" gorm:"column:team_id;not null;uniqueIndex:idx_team_member"`
	PlayerID     uint      `json:"player_id" gorm:"column:player_id;not null;uniqueIndex:idx_team_member"`
	JoinedAt     time.Time `json:"joined_at" gorm:"autoCreateTime"`
}

func (BingoTeamMember) TableName() string { return "bingo_team_members" }
