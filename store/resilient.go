package store

import (
	"context"
	"errors"

	"debatecraft/models"
	"debatecraft/pkg/logger"

	"go.uber.org/zap"
)

// Resilient fronts a primary store with an in-memory mirror. Reads and
// writes go to the primary first; on success the mirror is refreshed with
// the returned snapshot, on failure the same mutation is replayed against
// the mirror. Because every variant runs the shared progression rules,
// the degraded result carries the same XP and level the primary would
// have produced.
type Resilient struct {
	primary ProfileStore
	mirror  *LocalStore
}

func NewResilient(primary ProfileStore) *Resilient {
	return &Resilient{primary: primary, mirror: NewLocalStore()}
}

func (r *Resilient) GetProfile(ctx context.Context, id string) (*models.UserProfile, error) {
	p, err := r.primary.GetProfile(ctx, id)
	if err == nil {
		r.mirror.Put(p)
		return p, nil
	}
	if errors.Is(err, ErrProfileNotFound) || !r.mirror.Has(id) {
		return nil, err
	}
	logger.Log.Warn("profile store degraded, serving local copy",
		zap.String("profileId", id), zap.Error(err))
	return r.mirror.GetProfile(ctx, id)
}

func (r *Resilient) CreateProfile(ctx context.Context, p *models.UserProfile) (*models.UserProfile, error) {
	out, err := r.primary.CreateProfile(ctx, p)
	if err == nil {
		r.mirror.Put(out)
		return out, nil
	}
	logger.Log.Warn("profile store degraded, creating locally",
		zap.String("profileId", p.ID), zap.Error(err))
	return r.mirror.CreateProfile(ctx, p)
}

// fallback replays a mutation on the mirror after a primary failure. The
// mirror must already hold the profile from an earlier successful read.
// Logical errors are not infrastructure failures and pass straight through.
func (r *Resilient) fallback(id string, primaryErr error, fn func() (*models.UserProfile, error)) (*models.UserProfile, error) {
	if errors.Is(primaryErr, ErrProfileNotFound) || errors.Is(primaryErr, ErrAchievementUnknown) {
		return nil, primaryErr
	}
	if !r.mirror.Has(id) {
		return nil, primaryErr
	}
	logger.Log.Warn("profile store degraded, applying mutation locally",
		zap.String("profileId", id), zap.Error(primaryErr))
	return fn()
}

func (r *Resilient) ApplyModuleCompletion(ctx context.Context, id, moduleID string, xpGained int) (*models.UserProfile, error) {
	out, err := r.primary.ApplyModuleCompletion(ctx, id, moduleID, xpGained)
	if err == nil {
		r.mirror.Put(out)
		return out, nil
	}
	return r.fallback(id, err, func() (*models.UserProfile, error) {
		return r.mirror.ApplyModuleCompletion(ctx, id, moduleID, xpGained)
	})
}

func (r *Resilient) ApplyDebateSession(ctx context.Context, id string, rec models.DebateSessionRecord) (*models.UserProfile, error) {
	out, err := r.primary.ApplyDebateSession(ctx, id, rec)
	if err == nil {
		r.mirror.Put(out)
		return out, nil
	}
	return r.fallback(id, err, func() (*models.UserProfile, error) {
		return r.mirror.ApplyDebateSession(ctx, id, rec)
	})
}

func (r *Resilient) RecordFallaciesSpotted(ctx context.Context, id string, n int) (*models.UserProfile, error) {
	out, err := r.primary.RecordFallaciesSpotted(ctx, id, n)
	if err == nil {
		r.mirror.Put(out)
		return out, nil
	}
	return r.fallback(id, err, func() (*models.UserProfile, error) {
		return r.mirror.RecordFallaciesSpotted(ctx, id, n)
	})
}

func (r *Resilient) UnlockAchievement(ctx context.Context, id, achievementID string) (*models.UserProfile, error) {
	out, err := r.primary.UnlockAchievement(ctx, id, achievementID)
	if err == nil {
		r.mirror.Put(out)
		return out, nil
	}
	return r.fallback(id, err, func() (*models.UserProfile, error) {
		return r.mirror.UnlockAchievement(ctx, id, achievementID)
	})
}
