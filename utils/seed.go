// utils/seed.go
package utils

import (
	"log"
	"strings"

	"clan-bingo-system/models"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// metricSeed is one catalog entry: display name, kind and rotation tier.
type metricSeed struct {
	Display string
	Kind    string
	Tier    string
}

var metricSeeds = []metricSeed{
	// Skills
	{"Attack", models.MetricSkill, "ordinary"},
	{"Strength", models.MetricSkill, "ordinary"},
	{"Defence", models.MetricSkill, "ordinary"},
	{"Ranged", models.MetricSkill, "ordinary"},
	{"Magic", models.MetricSkill, "ordinary"},
	{"Hitpoints", models.MetricSkill, "ordinary"},
	{"Prayer", models.MetricSkill, "expensive"},
	{"Construction", models.MetricSkill, "expensive"},
	{"Herblore", models.MetricSkill, "expensive"},
	{"Slayer", models.MetricSkill, "slow"},
	{"Runecrafting", models.MetricSkill, "slow"},
	{"Hunter", models.MetricSkill, "slow"},
	{"Agility", models.MetricSkill, "slow"},
	{"Farming", models.MetricSkill, "slow"},
	{"Mining", models.MetricSkill, "ordinary"},
	{"Smithing", models.MetricSkill, "ordinary"},
	{"Fishing", models.MetricSkill, "ordinary"},
	{"Cooking", models.MetricSkill, "ordinary"},
	{"Woodcutting", models.MetricSkill, "ordinary"},
	{"Firemaking", models.MetricSkill, "ordinary"},
	{"Fletching", models.MetricSkill, "ordinary"},
	{"Crafting", models.MetricSkill, "ordinary"},
	{"Thieving", models.MetricSkill, "ordinary"},

	// Bosses
	{"Chambers Of Xeric", models.MetricBoss, "raid"},
	{"Tombs Of Amascut", models.MetricBoss, "raid"},
	{"Theatre Of Blood", models.MetricBoss, "raid"},
	{"Corporeal Beast", models.MetricBoss, "hard"},
	{"Hespori", models.MetricBoss, "special"},
	{"Skotizo", models.MetricBoss, "special"},
	{"Bryophyta", models.MetricBoss, "special"},
	{"Obor", models.MetricBoss, "special"},
	{"Mimic", models.MetricBoss, "rare"},
	{"Tztok Jad", models.MetricBoss, "minigame"},
	{"Tzkal Zuk", models.MetricBoss, "minigame"},
	{"Sol Heredit", models.MetricBoss, "minigame"},
	{"The Corrupted Gauntlet", models.MetricBoss, "minigame"},
	{"The Gauntlet", models.MetricBoss, "minigame"},
	{"Lunar Chests", models.MetricBoss, "loot"},
	{"Barrows Chests", models.MetricBoss, "loot"},
	{"Zulrah", models.MetricBoss, "ordinary"},
	{"Vorkath", models.MetricBoss, "ordinary"},
	{"King Black Dragon", models.MetricBoss, "ordinary"},
	{"Giant Mole", models.MetricBoss, "ordinary"},
	{"Kraken", models.MetricBoss, "ordinary"},
	{"Cerberus", models.MetricBoss, "ordinary"},
	{"Abyssal Sire", models.MetricBoss, "ordinary"},
	{"Alchemical Hydra", models.MetricBoss, "ordinary"},
	{"Grotesque Guardians", models.MetricBoss, "ordinary"},
	{"Callisto", models.MetricBoss, "ordinary"},
	{"Venenatis", models.MetricBoss, "ordinary"},
	{"Vetion", models.MetricBoss, "ordinary"},
	{"Scorpia", models.MetricBoss, "ordinary"},

	// Activities
	{"Guardians Of The Rift Games", models.MetricActivity, "minigame"},
	{"Beginner Clue Scrolls", models.MetricActivity, "easy_clue"},
	{"Easy Clue Scrolls", models.MetricActivity, "easy_clue"},
	{"Medium Clue Scrolls", models.MetricActivity, "medium_clue"},
	{"Hard Clue Scrolls", models.MetricActivity, "hard_clue"},
	{"Elite Clue Scrolls", models.MetricActivity, "elite_clue"},
	{"Master Clue Scrolls", models.MetricActivity, "master_clue"},
}

var dropItemSeeds = []models.DropItem{
	{Name: "Dragon Warhammer", Source: "Lizardman Shaman"},
	{Name: "Twisted Bow", Source: "Chambers Of Xeric"},
	{Name: "Scythe Of Vitur", Source: "Theatre Of Blood"},
	{Name: "Tumeken's Shadow", Source: "Tombs Of Amascut"},
	{Name: "Abyssal Whip", Source: "Abyssal Demon"},
	{Name: "Draconic Visage", Source: "Vorkath"},
	{Name: "Zenyte Shard", Source: "Demonic Gorilla"},
	{Name: "Ranger Boots", Source: "Medium Clue Scroll"},
}

// MetricKey normalizes a display name into the snake_case key the stat
// snapshots use, e.g. "Chambers Of Xeric" → "chambers_of_xeric".
func MetricKey(display string) string {
	return strings.ReplaceAll(slug.Make(display), "-", "_")
}

// SeedCatalog fills catalog_metrics and drop_items when they are empty.
// Missing catalog data is the one startup failure the engine cannot recover
// from, so errors here are returned to main for a fatal exit.
func SeedCatalog(db *gorm.DB) error {
	for _, seed := range metricSeeds {
		metric := models.CatalogMetric{
			Name:        MetricKey(seed.Display),
			DisplayName: seed.Display,
			Kind:        seed.Kind,
			Tier:        seed.Tier,
		}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&metric).Error; err != nil {
			return err
		}
	}

	for _, item := range dropItemSeeds {
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&item).Error; err != nil {
			return err
		}
	}

	var metricCount int64
	if err := db.Model(&models.CatalogMetric{}).Count(&metricCount).Error; err != nil {
		return err
	}
	log.Printf("🌱 [Seed] Catalog ready (%d metrics)", metricCount)
	return nil
}
