package services

import (
	"log"
	"math/rand"
	"strings"

	"clan-bingo-system/models"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gorm.io/gorm"
)

// valueRange is a bounded, stepped range targets are drawn from.
type valueRange struct {
	Min, Max, Step int64
}

// Target ranges per boss tier.
var bossValueRanges = map[string]valueRange{
	TierRaid:     {Min: 5, Max: 35, Step: 5},
	TierHard:     {Min: 2, Max: 20, Step: 2},
	TierSpecial:  {Min: 1, Max: 15, Step: 2},
	TierMinigame: {Min: 1, Max: 5, Step: 1},
	TierRare:     {Min: 1, Max: 1, Step: 1},
	TierLoot:     {Min: 1, Max: 40, Step: 1},
	TierOrdinary: {Min: 10, Max: 150, Step: 5},
}

// Target ranges per activity tier.
var activityValueRanges = map[string]valueRange{
	"minigame":    {Min: 20, Max: 75, Step: 5},
	"easy_clue":   {Min: 10, Max: 60, Step: 5},
	"medium_clue": {Min: 10, Max: 40, Step: 1},
	"hard_clue":   {Min: 5, Max: 20, Step: 1},
	"elite_clue":  {Min: 1, Max: 5, Step: 1},
	"master_clue": {Min: 1, Max: 1, Step: 1},
}

// XP target bounds per skill tier. Slow and expensive skills get smaller
// targets so a month of play can realistically finish them.
var skillXPBounds = map[string]struct{ Min, MaxRandom int64 }{
	TierOrdinary: {Min: 750_000, MaxRandom: 3_500_000},
	"slow":       {Min: 250_000, MaxRandom: 1_000_000},
	"expensive":  {Min: 350_000, MaxRandom: 1_500_000},
	TierHard:     {Min: 250_000, MaxRandom: 1_000_000},
}

// Verb used in boss task descriptions, per tier.
var bossActionText = map[string]string{
	TierRaid:     "Complete",
	TierHard:     "Defeat",
	TierMinigame: "Defeat",
	TierLoot:     "Loot",
	TierOrdinary: "Kill",
	TierSpecial:  "Kill",
	TierRare:     "Kill",
}

// TaskGenService builds the dynamic task catalog from the metric tables.
// The RNG is injected so generation is reproducible under test.
type TaskGenService struct {
	DB  *gorm.DB
	Rng *rand.Rand

	printer *message.Printer
}

func NewTaskGenService(db *gorm.DB, rng *rand.Rand) *TaskGenService {
	return &TaskGenService{DB: db, Rng: rng, printer: message.NewPrinter(language.English)}
}

// randomValue draws from a stepped range: min, min+step, ..., max.
func (s *TaskGenService) randomValue(r valueRange) int64 {
	steps := (r.Max-r.Min)/r.Step + 1
	return r.Min + s.Rng.Int63n(steps)*r.Step
}

// roundXP rounds an XP target down to a clean step: 5k below 1M, 10k above.
func roundXP(xp int64) int64 {
	step := int64(5000)
	if xp >= 1_000_000 {
		step = 10000
	}
	return xp / step * step
}

// displayName prefers the curated display name and falls back to
// title-casing the raw metric name.
func displayName(m models.CatalogMetric) string {
	if m.DisplayName != "" {
		return m.DisplayName
	}
	parts := strings.Split(m.Name, "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}

// GenerateDynamicTasks populates the catalog for a new event cycle. It is a
// no-op when dynamic tasks already exist, so restarts never duplicate the
// catalog.
func (s *TaskGenService) GenerateDynamicTasks() error {
	log.Println("🔄 [TaskGenerator] Generating dynamic bingo tasks...")

	var existing int64
	if err := s.DB.Model(&models.BingoTask{}).Where("is_dynamic = ?", true).Count(&existing).Error; err != nil {
		return err
	}
	if existing > 0 {
		log.Println("[TaskGenerator] Dynamic tasks already exist, skipping generation")
		return nil
	}

	if err := s.generateSkillTasks(); err != nil {
		return err
	}
	if err := s.generateBossTasks(); err != nil {
		return err
	}
	if err := s.generateActivityTasks(); err != nil {
		return err
	}
	if err := s.generateDropTasks(); err != nil {
		return err
	}

	log.Println("🎲 [TaskGenerator] Dynamic bingo tasks generated")
	return nil
}

// ClearDynamicTasks removes the generated catalog so the next cycle starts
// fresh. Static (hand-curated) tasks are untouched.
func (s *TaskGenService) ClearDynamicTasks() error {
	result := s.DB.Where("is_dynamic = ?", true).Delete(&models.BingoTask{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		log.Printf("[TaskGenerator] Cleared %d dynamic tasks", result.RowsAffected)
	}
	return nil
}

// descriptionExists guards against duplicate tasks within one generation run.
func (s *TaskGenService) descriptionExists(description string) (bool, error) {
	var count int64
	err := s.DB.Model(&models.BingoTask{}).Where("description = ?", description).Count(&count).Error
	return count > 0, err
}

func (s *TaskGenService) insertTask(task models.BingoTask) error {
	exists, err := s.descriptionExists(task.Description)
	if err != nil {
		return err
	}
	if exists {
		log.Printf("⚠️ [TaskGenerator] Duplicate task skipped: %s", task.Description)
		return nil
	}
	return s.DB.Create(&task).Error
}

func (s *TaskGenService) generateSkillTasks() error {
	var skills []models.CatalogMetric
	if err := s.DB.Where("kind = ?", models.MetricSkill).Order("last_selected_at ASC").Find(&skills).Error; err != nil {
		return err
	}

	for _, skill := range skills {
		bounds, ok := skillXPBounds[skill.Tier]
		if !ok {
			bounds = skillXPBounds[TierOrdinary]
		}
		value := roundXP(s.Rng.Int63n(bounds.MaxRandom) + bounds.Min)
		description := s.printer.Sprintf("Gain %d XP in %s", value, displayName(skill))

		task := models.BingoTask{
			Category:    models.MetricSkill,
			Type:        models.TaskExp,
			Description: description,
			Parameter:   skill.Name,
			Value:       value,
			BasePoints:  CalculateBasePoints(models.TaskExp, skill.Tier, value),
			IsDynamic:   true,
		}
		if err := s.insertTask(task); err != nil {
			return err
		}
	}
	return nil
}

func (s *TaskGenService) generateBossTasks() error {
	var bosses []models.CatalogMetric
	if err := s.DB.Where("kind = ?", models.MetricBoss).Order("last_selected_at ASC").Find(&bosses).Error; err != nil {
		return err
	}

	for _, boss := range bosses {
		vr, ok := bossValueRanges[boss.Tier]
		if !ok {
			vr = bossValueRanges[TierOrdinary]
		}
		value := s.randomValue(vr)

		action, ok := bossActionText[boss.Tier]
		if !ok {
			action = "Kill"
		}
		description := s.printer.Sprintf("%s %d %s", action, value, displayName(boss))

		task := models.BingoTask{
			Category:    models.MetricBoss,
			Type:        models.TaskKill,
			Description: description,
			Parameter:   boss.Name,
			Value:       value,
			BasePoints:  CalculateBasePoints(models.TaskKill, boss.Tier, value),
			IsDynamic:   true,
		}
		if err := s.insertTask(task); err != nil {
			return err
		}
	}
	return nil
}

func (s *TaskGenService) generateActivityTasks() error {
	var activities []models.CatalogMetric
	if err := s.DB.Where("kind = ?", models.MetricActivity).Order("last_selected_at ASC").Find(&activities).Error; err != nil {
		return err
	}

	for _, activity := range activities {
		vr, ok := activityValueRanges[activity.Tier]
		if !ok {
			// Activities without a tuned range are not taskable.
			continue
		}
		value := s.randomValue(vr)
		description := s.printer.Sprintf("Complete %d %s", value, displayName(activity))

		task := models.BingoTask{
			Category:    models.MetricActivity,
			Type:        models.TaskScore,
			Description: description,
			Parameter:   activity.Name,
			Value:       value,
			BasePoints:  CalculateBasePoints(models.TaskScore, activity.Tier, value),
			IsDynamic:   true,
		}
		if err := s.insertTask(task); err != nil {
			return err
		}
	}
	return nil
}

func (s *TaskGenService) generateDropTasks() error {
	var items []models.DropItem
	if err := s.DB.Find(&items).Error; err != nil {
		return err
	}

	for _, item := range items {
		description := s.printer.Sprintf("Receive a %s as a drop", item.Name)
		task := models.BingoTask{
			Category:    "Drop",
			Type:        models.TaskDrop,
			Description: description,
			Parameter:   item.Name,
			Value:       1,
			BasePoints:  CalculateBasePoints(models.TaskDrop, TierOrdinary, 1),
			IsDynamic:   true,
		}
		if err := s.insertTask(task); err != nil {
			return err
		}
	}
	return nil
}
