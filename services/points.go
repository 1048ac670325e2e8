package services

import (
	"math"

	"clan-bingo-system/models"
)

// Metric tiers. Bosses carry one of the boss tiers; skills are either
// ordinary or hard (slow/expensive-to-train).
const (
	TierOrdinary = "ordinary"
	TierHard     = "hard"
	TierRaid     = "raid"
	TierSpecial  = "special"
	TierMinigame = "minigame"
	TierRare     = "rare"
	TierLoot     = "loot"
)

// Kill-point multipliers by boss tier.
var killTierMultipliers = map[string]int64{
	TierRaid:     5,
	TierHard:     6,
	TierSpecial:  20,
	TierMinigame: 50,
	TierRare:     500,
}

const (
	dropTaskPoints    = 50
	defaultTaskPoints = 10
)

// CalculateBasePoints computes a task's base point value from its type,
// target value, and the tier of the metric it tracks.
func CalculateBasePoints(taskType models.TaskType, tier string, value int64) int64 {
	switch taskType {
	case models.TaskExp:
		points := int64(math.Floor(float64(value) * 4 / 100000))
		if tier == TierHard {
			points *= 2
		}
		return points
	case models.TaskKill:
		points := int64(math.Floor(float64(value) * 1.25))
		if mult, ok := killTierMultipliers[tier]; ok {
			points *= mult
		}
		return points
	case models.TaskDrop:
		return dropTaskPoints
	default:
		return defaultTaskPoints
	}
}

// PartialPoints computes the point share a participant has earned on one
// task: progress is capped at the target and scaled against base points,
// rounded per task.
func PartialPoints(progress, target, basePoints int64) int64 {
	if target <= 0 {
		return 0
	}
	effective := progress
	if effective > target {
		effective = target
	}
	return int64(math.Round(float64(effective) / float64(target) * float64(basePoints)))
}

// OverallPercentage expresses earned points as a share of the whole board.
func OverallPercentage(partial, totalBoardPoints int64) float64 {
	if totalBoardPoints <= 0 {
		return 0
	}
	return float64(partial) / float64(totalBoardPoints) * 100
}

// Bonus points granted the first time a pattern is completed, by pattern
// type. Scaled to how hard the shape is to finish.
var patternBonusPoints = map[string]int64{
	PatternLine:           250,
	PatternMultipleLines:  400,
	PatternDiagonal:       150,
	PatternBothDiagonals:  350,
	PatternX:              300,
	PatternCorners:        200,
	PatternCross:          300,
	PatternOuterBorder:    500,
	PatternFullBoard:      1000,
	PatternCheckerboard:   400,
	PatternZigZag:         350,
	PatternCrosshatch:     300,
	PatternClanEmblem:     150,
}

// PatternBonus returns the one-time bonus for completing a pattern type.
func PatternBonus(patternType string) int64 {
	return patternBonusPoints[patternType]
}
