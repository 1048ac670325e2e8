package services

import (
	"math/rand"
	"testing"
	"time"

	"clan-bingo-system/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	err = db.AutoMigrate(
		&models.Player{},
		&models.PlayerStat{},
		&models.CatalogMetric{},
		&models.DropItem{},
		&models.BingoTask{},
		&models.BingoEvent{},
		&models.BingoState{},
		&models.BingoBoard{},
		&models.BingoBoardCell{},
		&models.BingoTeam{},
		&models.BingoTeamMember{},
		&models.EventBaseline{},
		&models.TaskProgress{},
		&models.BingoHistory{},
		&models.LeaderboardEntry{},
		&models.PatternAward{},
		&models.RotationSchedule{},
	)
	if err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// testRng returns a deterministic random source.
func testRng() *rand.Rand {
	return rand.New(rand.NewSource(42))
}

// seedPlayer inserts an active player.
func seedPlayer(t *testing.T, db *gorm.DB, id uint, rsn string) {
	t.Helper()
	player := models.Player{PlayerID: id, RSN: rsn, IsActive: true}
	if err := db.Create(&player).Error; err != nil {
		t.Fatalf("seed player %d: %v", id, err)
	}
}

// seedStat inserts or updates a stat snapshot.
func seedStat(t *testing.T, db *gorm.DB, playerID uint, domain, metric string, kills, exp int64) {
	t.Helper()
	var stat models.PlayerStat
	err := db.Where("player_id = ? AND domain = ? AND metric = ?", playerID, domain, metric).First(&stat).Error
	if err == nil {
		stat.Kills = kills
		stat.Exp = exp
		if err := db.Save(&stat).Error; err != nil {
			t.Fatalf("update stat: %v", err)
		}
		return
	}
	stat = models.PlayerStat{PlayerID: playerID, Domain: domain, Metric: metric, Kills: kills, Exp: exp}
	if err := db.Create(&stat).Error; err != nil {
		t.Fatalf("seed stat: %v", err)
	}
}

// seedCatalog inserts enough metrics across all kinds to fill a 3x5 board.
func seedCatalog(t *testing.T, db *gorm.DB) {
	t.Helper()
	metrics := []models.CatalogMetric{
		{Name: "zulrah", DisplayName: "Zulrah", Kind: models.MetricBoss, Tier: TierOrdinary},
		{Name: "vorkath", DisplayName: "Vorkath", Kind: models.MetricBoss, Tier: TierOrdinary},
		{Name: "kraken", DisplayName: "Kraken", Kind: models.MetricBoss, Tier: TierOrdinary},
		{Name: "cerberus", DisplayName: "Cerberus", Kind: models.MetricBoss, Tier: TierOrdinary},
		{Name: "chambers_of_xeric", DisplayName: "Chambers Of Xeric", Kind: models.MetricBoss, Tier: TierRaid},
		{Name: "corporeal_beast", DisplayName: "Corporeal Beast", Kind: models.MetricBoss, Tier: TierHard},
		{Name: "mimic", DisplayName: "Mimic", Kind: models.MetricBoss, Tier: TierRare},
		{Name: "slayer", DisplayName: "Slayer", Kind: models.MetricSkill, Tier: "slow"},
		{Name: "herblore", DisplayName: "Herblore", Kind: models.MetricSkill, Tier: "expensive"},
		{Name: "mining", DisplayName: "Mining", Kind: models.MetricSkill, Tier: TierOrdinary},
		{Name: "fishing", DisplayName: "Fishing", Kind: models.MetricSkill, Tier: TierOrdinary},
		{Name: "woodcutting", DisplayName: "Woodcutting", Kind: models.MetricSkill, Tier: TierOrdinary},
		{Name: "agility", DisplayName: "Agility", Kind: models.MetricSkill, Tier: "slow"},
		{Name: "easy_clue_scrolls", DisplayName: "Easy Clue Scrolls", Kind: models.MetricActivity, Tier: "easy_clue"},
		{Name: "hard_clue_scrolls", DisplayName: "Hard Clue Scrolls", Kind: models.MetricActivity, Tier: "hard_clue"},
		{Name: "master_clue_scrolls", DisplayName: "Master Clue Scrolls", Kind: models.MetricActivity, Tier: "master_clue"},
	}
	for i := range metrics {
		metrics[i].LastSelectedAt = time.Unix(int64(i), 0)
		if err := db.Create(&metrics[i]).Error; err != nil {
			t.Fatalf("seed metric %s: %v", metrics[i].Name, err)
		}
	}
}
