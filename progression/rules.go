// Package progression holds the pure leveling and XP rules shared by every
// profile store variant. Keeping them here guarantees the persisted and the
// local-fallback paths compute identical results.
package progression

import (
	"time"

	"debatecraft/models"
)

const (
	// XPPerLevel is the flat XP cost of each level.
	XPPerLevel = 200

	// DefaultRoundLimit is the number of user arguments in a standard session.
	DefaultRoundLimit = 3

	// ScoreFloor is the final score used when a session ends with no scored rounds.
	ScoreFloor = 75

	// Debate XP: base scales the mean score, plus a small per-argument bonus.
	debateXPMultiplier  = 2.5
	perArgumentBonus    = 10
	perArgumentBonusCap = 100
)

// LevelForXP maps cumulative XP to a level. Monotonic non-decreasing;
// LevelForXP(0) == 1.
func LevelForXP(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return xp/XPPerLevel + 1
}

// QuizXP converts a quiz result into the XP awarded for a module:
// floor(correct/total * xpReward). A zero-question quiz awards nothing.
func QuizXP(correct, total, xpReward int) int {
	if total <= 0 {
		return 0
	}
	if correct < 0 {
		correct = 0
	}
	if correct > total {
		correct = total
	}
	return correct * xpReward / total
}

// DebateFinalScore is the mean of the per-round scores, or ScoreFloor when
// none were recorded.
func DebateFinalScore(roundScores []int) int {
	if len(roundScores) == 0 {
		return ScoreFloor
	}
	sum := 0
	for _, s := range roundScores {
		sum += s
	}
	return sum / len(roundScores)
}

// DebateXP derives the XP award for a completed session from its mean score
// and the number of arguments the user made. The per-argument bonus is
// capped so marathon sessions cannot farm XP.
func DebateXP(finalScore, arguments int) int {
	base := int(float64(finalScore) * debateXPMultiplier)
	bonus := arguments * perArgumentBonus
	if bonus > perArgumentBonusCap {
		bonus = perArgumentBonusCap
	}
	return base + bonus
}

// ApplyModuleCompletion mutates p with a completed module: XP, level,
// streak, and completed-set membership. Completing the same module twice is
// a no-op so XP cannot be double-awarded.
func ApplyModuleCompletion(p *models.UserProfile, moduleID string, xpGained int, now time.Time) {
	if p.HasCompletedModule(moduleID) {
		return
	}
	p.XP += xpGained
	p.Level = LevelForXP(p.XP)
	p.CurrentStreak++
	p.CompletedModules = append(p.CompletedModules, moduleID)
	p.UpdatedAt = now
}

// ApplyDebateSession mutates p with a finished debate: XP, level, and the
// session record appended to history.
func ApplyDebateSession(p *models.UserProfile, rec models.DebateSessionRecord, now time.Time) {
	p.XP += rec.XPGained
	p.Level = LevelForXP(p.XP)
	p.DebateHistory = append(p.DebateHistory, rec)
	p.UpdatedAt = now
}

// ApplyFallaciesSpotted adds correctly identified fallacies to the running
// tally used by the fallacy-hunting achievement.
func ApplyFallaciesSpotted(p *models.UserProfile, n int, now time.Time) {
	if n <= 0 {
		return
	}
	p.FallaciesSpotted += n
	p.UpdatedAt = now
}
