package models

import "time"

// GradeLevel buckets users by school stage.
type GradeLevel string

const (
	GradeMiddle  GradeLevel = "middle"
	GradeHigh    GradeLevel = "high"
	GradeCollege GradeLevel = "college"
)

// Rarity classifies how hard an achievement is to earn.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// Achievement is an unlocked badge on a user's profile. The definition
// (title, icon, rarity) comes from the fixed catalog; UnlockedAt is stamped
// when the user earns it.
type Achievement struct {
	ID          string    `json:"id" bson:"id"`
	Title       string    `json:"title" bson:"title"`
	Description string    `json:"description" bson:"description"`
	Icon        string    `json:"icon" bson:"icon"`
	Rarity      Rarity    `json:"rarity" bson:"rarity"`
	UnlockedAt  time.Time `json:"unlockedAt" bson:"unlockedAt"`
}

// UserProfile holds a user's progress state. It is mutated only through the
// profile store's operations; level is always derived from XP by the
// progression rules, never set directly.
type UserProfile struct {
	ID               string        `json:"id" bson:"_id"`
	Name             string        `json:"name" bson:"name"`
	Email            string        `json:"email" bson:"email"`
	Level            int           `json:"level" bson:"level"`
	XP               int           `json:"xp" bson:"xp"`
	CurrentStreak    int           `json:"currentStreak" bson:"currentStreak"`
	GradeLevel       GradeLevel    `json:"gradeLevel" bson:"gradeLevel"`
	Achievements     []Achievement `json:"achievements" bson:"achievements"`
	CompletedModules []string      `json:"completedModules" bson:"completedModules"`
	FallaciesSpotted int           `json:"fallaciesSpotted" bson:"fallaciesSpotted"`

	DebateHistory []DebateSessionRecord `json:"debateHistory" bson:"debateHistory"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// HasCompletedModule reports whether moduleID is in the completed set.
func (p *UserProfile) HasCompletedModule(moduleID string) bool {
	for _, id := range p.CompletedModules {
		if id == moduleID {
			return true
		}
	}
	return false
}

// HasAchievement reports whether the achievement id is already unlocked.
func (p *UserProfile) HasAchievement(id string) bool {
	for _, a := range p.Achievements {
		if a.ID == id {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers can hand out snapshots without
// exposing the store's internal slices.
func (p *UserProfile) Clone() *UserProfile {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Achievements = append([]Achievement(nil), p.Achievements...)
	cp.CompletedModules = append([]string(nil), p.CompletedModules...)
	cp.DebateHistory = append([]DebateSessionRecord(nil), p.DebateHistory...)
	return &cp
}
