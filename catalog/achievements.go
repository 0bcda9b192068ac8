package catalog

import (
	"time"

	"debatecraft/models"
)

// debateWinScore is the final score at or above which a practice debate
// counts as a win for achievement purposes.
const debateWinScore = 70

// AchievementDef pairs a badge definition with the predicate that unlocks
// it. The predicate is evaluated against the updated profile after every
// mutation; the store guarantees at-most-once unlocking per id.
type AchievementDef struct {
	ID          string
	Title       string
	Description string
	Icon        string
	Rarity      models.Rarity
	Unlocked    func(p *models.UserProfile) bool
}

// Achievement materializes the definition as a profile entry stamped at now.
func (d AchievementDef) Achievement(now time.Time) models.Achievement {
	return models.Achievement{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		Icon:        d.Icon,
		Rarity:      d.Rarity,
		UnlockedAt:  now,
	}
}

// Achievements is the fixed badge catalog. A user's unlocked set is always a
// subset of this, keyed by id.
var Achievements = []AchievementDef{
	{
		ID:          "first-steps",
		Title:       "First Steps",
		Description: "Complete your first learning module",
		Icon:        "🎯",
		Rarity:      models.RarityCommon,
		Unlocked: func(p *models.UserProfile) bool {
			return len(p.CompletedModules) >= 1
		},
	},
	{
		ID:          "logic-detective",
		Title:       "Logic Detective",
		Description: "Identify 10 logical fallacies correctly",
		Icon:        "🕵️",
		Rarity:      models.RarityRare,
		Unlocked: func(p *models.UserProfile) bool {
			return p.FallaciesSpotted >= 10
		},
	},
	{
		ID:          "debate-champion",
		Title:       "Debate Champion",
		Description: "Win 5 practice debates in a row",
		Icon:        "🏆",
		Rarity:      models.RarityEpic,
		Unlocked: func(p *models.UserProfile) bool {
			if len(p.DebateHistory) < 5 {
				return false
			}
			for _, rec := range p.DebateHistory[len(p.DebateHistory)-5:] {
				if rec.FinalScore < debateWinScore {
					return false
				}
			}
			return true
		},
	},
	{
		ID:          "master-rhetorician",
		Title:       "Master Rhetorician",
		Description: "Complete every advanced module",
		Icon:        "👑",
		Rarity:      models.RarityLegendary,
		Unlocked: func(p *models.UserProfile) bool {
			advanced := 0
			for _, m := range Modules {
				if m.Difficulty != models.DifficultyAdvanced {
					continue
				}
				advanced++
				if !p.HasCompletedModule(m.ID) {
					return false
				}
			}
			return advanced > 0
		},
	},
}

// AchievementByID looks up a catalog entry.
func AchievementByID(id string) (AchievementDef, bool) {
	for _, d := range Achievements {
		if d.ID == id {
			return d, true
		}
	}
	return AchievementDef{}, false
}

// NewlyUnlocked returns catalog entries whose predicate now holds but which
// the profile has not unlocked yet.
func NewlyUnlocked(p *models.UserProfile) []AchievementDef {
	var out []AchievementDef
	for _, d := range Achievements {
		if !p.HasAchievement(d.ID) && d.Unlocked(p) {
			out = append(out, d)
		}
	}
	return out
}
