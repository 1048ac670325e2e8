package services

import (
	"testing"

	"clan-bingo-system/models"
)

func TestCalculateTeamEffectiveProgress(t *testing.T) {
	tests := []struct {
		name   string
		raw    []int64
		target int64
		want   []int64
	}{
		{"largest absorbs remainder", []int64{10, 30, 50}, 40, []int64{10, 30, 0}},
		{"exhausted on first member", []int64{5, 5, 5}, 3, []int64{3, 0, 0}},
		{"under target keeps all", []int64{5, 10}, 40, []int64{5, 10}},
		{"exact split", []int64{10, 30}, 40, []int64{10, 30}},
		{"single member capped", []int64{100}, 40, []int64{40}},
		{"empty team", nil, 40, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			members := make([]MemberProgress, len(tt.raw))
			for i, raw := range tt.raw {
				members[i] = MemberProgress{PlayerID: uint(i + 1), Raw: raw}
			}
			got := CalculateTeamEffectiveProgress(members, tt.target)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d members, want %d", len(got), len(tt.want))
			}
			var sum int64
			for i, m := range got {
				if m.Effective != tt.want[i] {
					t.Fatalf("member %d effective = %d, want %d", i, m.Effective, tt.want[i])
				}
				sum += m.Effective
			}
			if sum > tt.target {
				t.Fatalf("effective sum %d exceeds target %d", sum, tt.target)
			}
		})
	}
}

func TestCalculateTeamEffectiveProgressSortsAscending(t *testing.T) {
	members := []MemberProgress{
		{PlayerID: 1, Raw: 50},
		{PlayerID: 2, Raw: 10},
		{PlayerID: 3, Raw: 30},
	}
	got := CalculateTeamEffectiveProgress(members, 40)

	byPlayer := make(map[uint]int64, len(got))
	for _, m := range got {
		byPlayer[m.PlayerID] = m.Effective
	}
	if byPlayer[2] != 10 || byPlayer[3] != 30 || byPlayer[1] != 0 {
		t.Fatalf("effective by player = %v, want {2:10, 3:30, 1:0}", byPlayer)
	}
}

func TestReconcileTeamTaskMarksCompletion(t *testing.T) {
	db := newTestDB(t)
	teams := NewTeamService(db)
	progress := NewProgressService(db, teams)

	task := models.BingoTask{
		Category: "Boss", Type: models.TaskKill, Description: "Kill 40 Zulrah",
		Parameter: "zulrah", Value: 40, BasePoints: 50, IsDynamic: true,
	}
	if err := db.Create(&task).Error; err != nil {
		t.Fatalf("create task: %v", err)
	}

	raw := map[uint]int64{1: 10, 2: 30, 3: 50}
	if err := teams.ReconcileTeamTask(7, 9, task, raw, progress.UpsertTaskProgress); err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	var rows []models.TaskProgress
	if err := db.Where("event_id = ? AND team_id = ?", 7, 9).Find(&rows).Error; err != nil {
		t.Fatalf("load rows: %v", err)
	}

	var sum int64
	for _, row := range rows {
		if row.Status != models.ProgressCompleted {
			t.Fatalf("player %d status = %s, want completed", row.PlayerID, row.Status)
		}
		sum += row.ProgressValue
	}
	if sum > task.Value {
		t.Fatalf("persisted team progress %d exceeds target %d", sum, task.Value)
	}
}

func TestReconcileTeamTaskBelowTarget(t *testing.T) {
	db := newTestDB(t)
	teams := NewTeamService(db)
	progress := NewProgressService(db, teams)

	task := models.BingoTask{
		Category: "Boss", Type: models.TaskKill, Description: "Kill 40 Vorkath",
		Parameter: "vorkath", Value: 40, BasePoints: 50, IsDynamic: true,
	}
	if err := db.Create(&task).Error; err != nil {
		t.Fatalf("create task: %v", err)
	}

	raw := map[uint]int64{1: 5, 2: 10}
	if err := teams.ReconcileTeamTask(7, 9, task, raw, progress.UpsertTaskProgress); err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	var completed int64
	db.Model(&models.TaskProgress{}).
		Where("event_id = ? AND team_id = ? AND status = ?", 7, 9, models.ProgressCompleted).
		Count(&completed)
	if completed != 0 {
		t.Fatalf("got %d completed rows below target, want 0", completed)
	}
}

func TestJoinTeamSyncsAgainstTeamProgress(t *testing.T) {
	db := newTestDB(t)
	teams := NewTeamService(db)

	seedPlayer(t, db, 1, "captain")
	seedPlayer(t, db, 2, "joiner")

	task := models.BingoTask{
		Category: "Boss", Type: models.TaskKill, Description: "Kill 40 Kraken",
		Parameter: "kraken", Value: 40, BasePoints: 50, IsDynamic: true,
	}
	if err := db.Create(&task).Error; err != nil {
		t.Fatalf("create task: %v", err)
	}

	team, err := teams.CreateTeam(7, "alpha", "secret", 1)
	if err != nil {
		t.Fatalf("create team: %v", err)
	}

	// The team already completed the task before player 2 joins, and
	// player 2 brings along a solo in-progress row.
	rows := []models.TaskProgress{
		{EventID: 7, PlayerID: 1, TeamID: team.TeamID, TaskID: task.TaskID,
			ProgressValue: 40, Status: models.ProgressCompleted},
		{EventID: 7, PlayerID: 2, TeamID: 0, TaskID: task.TaskID,
			ProgressValue: 10, Status: models.ProgressInProgress},
	}
	if err := db.Create(&rows).Error; err != nil {
		t.Fatalf("create progress: %v", err)
	}

	if _, err := teams.JoinTeam(7, "alpha", "secret", 2); err != nil {
		t.Fatalf("join team: %v", err)
	}

	var row models.TaskProgress
	err = db.Where("event_id = ? AND player_id = ? AND task_id = ?", 7, 2, task.TaskID).First(&row).Error
	if err != nil {
		t.Fatalf("joiner has no progress row: %v", err)
	}
	if row.Status != models.ProgressCompleted {
		t.Fatalf("joiner status = %s, want completed (inherited)", row.Status)
	}
}

func TestJoinTeamRejectsWrongPasskey(t *testing.T) {
	db := newTestDB(t)
	teams := NewTeamService(db)
	seedPlayer(t, db, 1, "captain")

	if _, err := teams.CreateTeam(7, "alpha", "secret", 1); err != nil {
		t.Fatalf("create team: %v", err)
	}
	if _, err := teams.JoinTeam(7, "alpha", "wrong", 2); err == nil {
		t.Fatal("join with wrong passkey should fail")
	}
	if _, err := teams.JoinTeam(7, "missing", "secret", 2); err != ErrTeamNotFound {
		t.Fatalf("join missing team error = %v, want ErrTeamNotFound", err)
	}
}

func TestCarryForwardRoster(t *testing.T) {
	db := newTestDB(t)
	teams := NewTeamService(db)
	seedPlayer(t, db, 1, "captain")
	seedPlayer(t, db, 2, "member")

	team, err := teams.CreateTeam(7, "alpha", "secret", 1)
	if err != nil {
		t.Fatalf("create team: %v", err)
	}
	member := models.BingoTeamMember{TeamID: team.TeamID, PlayerID: 2}
	if err := db.Create(&member).Error; err != nil {
		t.Fatalf("add member: %v", err)
	}

	if err := teams.CarryForwardRoster(7, 8); err != nil {
		t.Fatalf("carry forward: %v", err)
	}

	index, err := teams.MembershipIndex(8)
	if err != nil {
		t.Fatalf("membership index: %v", err)
	}
	if len(index) != 2 {
		t.Fatalf("new event roster has %d members, want 2", len(index))
	}
	if index[1] == team.TeamID {
		t.Fatal("carried roster should use a new team id")
	}
}
