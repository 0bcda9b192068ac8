// Package store owns UserProfile persistence. All variants apply mutations
// through the shared progression rules, so a profile's XP and level come out
// identical whether persistence succeeded or degraded to local state.
package store

import (
	"context"
	"errors"
	"time"

	"debatecraft/catalog"
	"debatecraft/models"
	"debatecraft/progression"
)

var (
	ErrProfileNotFound    = errors.New("profile not found")
	ErrAchievementUnknown = errors.New("achievement not in catalog")
)

// ProfileStore is the single write path for user profiles. Every mutator
// returns the resulting profile snapshot so callers always see consistent
// progress, even when the backend is unreachable (see Resilient).
type ProfileStore interface {
	GetProfile(ctx context.Context, id string) (*models.UserProfile, error)
	CreateProfile(ctx context.Context, p *models.UserProfile) (*models.UserProfile, error)
	ApplyModuleCompletion(ctx context.Context, id, moduleID string, xpGained int) (*models.UserProfile, error)
	ApplyDebateSession(ctx context.Context, id string, rec models.DebateSessionRecord) (*models.UserProfile, error)
	RecordFallaciesSpotted(ctx context.Context, id string, n int) (*models.UserProfile, error)
	UnlockAchievement(ctx context.Context, id, achievementID string) (*models.UserProfile, error)
}

// autoUnlock evaluates the achievement predicates against the updated
// profile and unlocks whatever newly holds. Membership checks make this
// idempotent across repeated evaluation.
func autoUnlock(p *models.UserProfile, now time.Time) {
	for _, d := range catalog.NewlyUnlocked(p) {
		p.Achievements = append(p.Achievements, d.Achievement(now))
	}
}

// The mutate* helpers are the one place each mutation's semantics live;
// every store variant calls these on its own copy of the profile.

func mutateModuleCompletion(p *models.UserProfile, moduleID string, xpGained int, now time.Time) {
	progression.ApplyModuleCompletion(p, moduleID, xpGained, now)
	autoUnlock(p, now)
}

func mutateDebateSession(p *models.UserProfile, rec models.DebateSessionRecord, now time.Time) {
	progression.ApplyDebateSession(p, rec, now)
	autoUnlock(p, now)
}

func mutateFallaciesSpotted(p *models.UserProfile, n int, now time.Time) {
	progression.ApplyFallaciesSpotted(p, n, now)
	autoUnlock(p, now)
}

func mutateUnlockAchievement(p *models.UserProfile, achievementID string, now time.Time) error {
	if p.HasAchievement(achievementID) {
		return nil
	}
	def, ok := catalog.AchievementByID(achievementID)
	if !ok {
		return ErrAchievementUnknown
	}
	p.Achievements = append(p.Achievements, def.Achievement(now))
	p.UpdatedAt = now
	return nil
}

// normalizeNewProfile fills the derived and default fields of a profile
// being created.
func normalizeNewProfile(p *models.UserProfile, now time.Time) {
	if p.GradeLevel == "" {
		p.GradeLevel = models.GradeHigh
	}
	p.Level = progression.LevelForXP(p.XP)
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
}
