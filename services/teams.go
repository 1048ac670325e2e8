package services

import (
	"errors"
	"fmt"
	"log"
	"sort"

	"clan-bingo-system/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MemberProgress carries one team member's raw progress on a shared task
// and the effective share credited after reconciliation.
type MemberProgress struct {
	PlayerID  uint
	Raw       int64
	Effective int64
}

// CalculateTeamEffectiveProgress splits a shared target across members so
// the credited sum never exceeds it. Members are sorted ascending by raw
// progress and credited min(raw, remaining) in that order: smaller
// contributors keep full credit for their own work, the largest absorbs the
// remainder, and everyone after the target is exhausted gets zero. The
// returned slice is in sorted order.
func CalculateTeamEffectiveProgress(members []MemberProgress, target int64) []MemberProgress {
	out := make([]MemberProgress, len(members))
	copy(out, members)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Raw < out[j].Raw })

	remaining := target
	for i := range out {
		effective := out[i].Raw
		if effective > remaining {
			effective = remaining
		}
		out[i].Effective = effective
		remaining -= effective
	}
	return out
}

// TeamService manages team rosters and reconciles shared task progress.
type TeamService struct {
	DB *gorm.DB
}

func NewTeamService(db *gorm.DB) *TeamService {
	return &TeamService{DB: db}
}

// MembershipIndex maps player id → team id for one event.
func (s *TeamService) MembershipIndex(eventID uint) (map[uint]uint, error) {
	var teams []models.BingoTeam
	if err := s.DB.Preload("Members").Where("event_id = ?", eventID).Find(&teams).Error; err != nil {
		return nil, err
	}
	index := make(map[uint]uint)
	for _, team := range teams {
		for _, m := range team.Members {
			index[m.PlayerID] = team.TeamID
		}
	}
	return index, nil
}

// CreateTeam registers a team for an event with its creator as captain.
func (s *TeamService) CreateTeam(eventID uint, teamName, passkey string, captainID uint) (*models.BingoTeam, error) {
	team := models.BingoTeam{
		EventID:   eventID,
		TeamName:  teamName,
		CaptainID: captainID,
		Passkey:   passkey,
	}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&team).Error; err != nil {
			return err
		}
		member := models.BingoTeamMember{TeamID: team.TeamID, PlayerID: captainID}
		return tx.Create(&member).Error
	})
	if err != nil {
		return nil, err
	}
	log.Printf("👥 [TeamManager] Team %q created for event #%d (captain %d)", teamName, eventID, captainID)
	return &team, nil
}

// JoinTeam adds a player to a team after checking the passkey and removing
// any prior membership for the event, then synchronizes the newcomer
// against existing team progress.
func (s *TeamService) JoinTeam(eventID uint, teamName, passkey string, playerID uint) (*models.BingoTeam, error) {
	var team models.BingoTeam
	err := s.DB.Where("event_id = ? AND team_name = ?", eventID, teamName).First(&team).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTeamNotFound
	}
	if err != nil {
		return nil, err
	}
	if team.Passkey != "" && team.Passkey != passkey {
		return nil, fmt.Errorf("wrong passkey for team %q", teamName)
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		// One team per player per event.
		if err := tx.Where("player_id = ? AND team_id IN (?)", playerID,
			tx.Model(&models.BingoTeam{}).Select("team_id").Where("event_id = ?", eventID),
		).Delete(&models.BingoTeamMember{}).Error; err != nil {
			return err
		}
		member := models.BingoTeamMember{TeamID: team.TeamID, PlayerID: playerID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&member).Error; err != nil {
			return err
		}
		return tx.Model(&models.TaskProgress{}).
			Where("event_id = ? AND player_id = ?", eventID, playerID).
			Update("team_id", team.TeamID).Error
	})
	if err != nil {
		return nil, err
	}

	if err := s.SyncNewMember(eventID, team.TeamID, playerID); err != nil {
		log.Printf("[TeamManager] Join sync failed for player %d: %v", playerID, err)
	}
	return &team, nil
}

// LeaveTeam removes a player from their team and detaches their progress
// rows back to the solo track.
func (s *TeamService) LeaveTeam(eventID, playerID uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("player_id = ? AND team_id IN (?)", playerID,
			tx.Model(&models.BingoTeam{}).Select("team_id").Where("event_id = ?", eventID),
		).Delete(&models.BingoTeamMember{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrTeamNotFound
		}
		return tx.Model(&models.TaskProgress{}).
			Where("event_id = ? AND player_id = ?", eventID, playerID).
			Update("team_id", 0).Error
	})
}

// progressWriter is the barrier-respecting upsert reconciled values flow
// through.
type progressWriter func(eventID, playerID, teamID, taskID uint, capped, target int64) error

// ReconcileTeamTask persists effective per-member shares for one shared
// task and marks every member row completed once the credited sum reaches
// the target.
func (s *TeamService) ReconcileTeamTask(eventID, teamID uint, task models.BingoTask, rawByPlayer map[uint]int64, write progressWriter) error {
	members := make([]MemberProgress, 0, len(rawByPlayer))
	for playerID, raw := range rawByPlayer {
		members = append(members, MemberProgress{PlayerID: playerID, Raw: raw})
	}
	reconciled := CalculateTeamEffectiveProgress(members, task.Value)

	var sum int64
	for _, m := range reconciled {
		sum += m.Effective
		if err := write(eventID, m.PlayerID, teamID, task.TaskID, m.Effective, task.Value); err != nil {
			log.Printf("DB error writing team progress for player %d task %d: %v", m.PlayerID, task.TaskID, err)
		}
	}

	if sum >= task.Value {
		err := s.DB.Model(&models.TaskProgress{}).
			Where("event_id = ? AND team_id = ? AND task_id = ? AND status <> ?",
				eventID, teamID, task.TaskID, models.ProgressCompleted).
			Update("status", models.ProgressCompleted).Error
		if err != nil {
			return err
		}
		log.Printf("✅ [TeamManager] Team %d completed task %d (event #%d)", teamID, task.TaskID, eventID)
	}
	return nil
}

// SyncNewMember caps a joining player's progress against what the team has
// already allocated on each shared task, and inherits team-wide
// completions. An existing completed row for the player is respected.
func (s *TeamService) SyncNewMember(eventID, teamID, playerID uint) error {
	var rows []models.TaskProgress
	if err := s.DB.Where("event_id = ? AND team_id = ?", eventID, teamID).Find(&rows).Error; err != nil {
		return err
	}

	byTask := make(map[uint][]models.TaskProgress)
	for _, r := range rows {
		byTask[r.TaskID] = append(byTask[r.TaskID], r)
	}

	for taskID, teamRows := range byTask {
		var task models.BingoTask
		if err := s.DB.First(&task, "task_id = ?", taskID).Error; err != nil {
			continue
		}
		if task.Value <= 0 {
			continue
		}

		alreadyCompleted := false
		teamCompleted := false
		members := make([]MemberProgress, 0, len(teamRows))
		for _, r := range teamRows {
			members = append(members, MemberProgress{PlayerID: r.PlayerID, Raw: r.ProgressValue})
			if r.Status == models.ProgressCompleted {
				teamCompleted = true
				if r.PlayerID == playerID {
					alreadyCompleted = true
				}
			}
		}

		if !alreadyCompleted {
			reconciled := CalculateTeamEffectiveProgress(members, task.Value)
			for _, m := range reconciled {
				if m.PlayerID != playerID {
					continue
				}
				record := models.TaskProgress{
					EventID:       eventID,
					PlayerID:      playerID,
					TeamID:        teamID,
					TaskID:        taskID,
					ProgressValue: m.Effective,
					Status:        models.ProgressInProgress,
				}
				err := s.DB.Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "event_id"}, {Name: "player_id"}, {Name: "task_id"}},
					DoUpdates: clause.AssignmentColumns([]string{"progress_value", "team_id"}),
				}).Create(&record).Error
				if err != nil {
					return err
				}
			}
		}

		if teamCompleted && !alreadyCompleted {
			err := s.DB.Model(&models.TaskProgress{}).
				Where("event_id = ? AND player_id = ? AND task_id = ?", eventID, playerID, taskID).
				Update("status", models.ProgressCompleted).Error
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// CarryForwardRoster clones an event's teams and memberships onto the next
// event so rosters survive rotation.
func (s *TeamService) CarryForwardRoster(fromEventID, toEventID uint) error {
	var teams []models.BingoTeam
	if err := s.DB.Preload("Members").Where("event_id = ?", fromEventID).Find(&teams).Error; err != nil {
		return err
	}
	if len(teams) == 0 {
		return nil
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		for _, team := range teams {
			next := models.BingoTeam{
				EventID:   toEventID,
				TeamName:  team.TeamName,
				CaptainID: team.CaptainID,
				Passkey:   team.Passkey,
			}
			if err := tx.Create(&next).Error; err != nil {
				return err
			}
			for _, m := range team.Members {
				member := models.BingoTeamMember{TeamID: next.TeamID, PlayerID: m.PlayerID}
				if err := tx.Create(&member).Error; err != nil {
					return err
				}
			}
		}
		log.Printf("👥 [TeamManager] Carried %d teams from event #%d to #%d", len(teams), fromEventID, toEventID)
		return nil
	})
}
