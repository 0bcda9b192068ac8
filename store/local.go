package store

import (
	"context"
	"sync"
	"time"

	"debatecraft/models"
)

// LocalStore keeps profiles in memory. It backs the demo/offline mode and
// serves as the mirror inside Resilient. Selected explicitly by
// configuration, never as a hidden fallback inside another client.
type LocalStore struct {
	mu       sync.RWMutex
	profiles map[string]*models.UserProfile
	clock    func() time.Time
}

func NewLocalStore() *LocalStore {
	return &LocalStore{
		profiles: make(map[string]*models.UserProfile),
		clock:    time.Now,
	}
}

func (s *LocalStore) GetProfile(_ context.Context, id string) (*models.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[id]
	if !ok {
		return nil, ErrProfileNotFound
	}
	return p.Clone(), nil
}

func (s *LocalStore) CreateProfile(_ context.Context, p *models.UserProfile) (*models.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := p.Clone()
	normalizeNewProfile(cp, s.clock())
	s.profiles[cp.ID] = cp
	return cp.Clone(), nil
}

// Put upserts a profile snapshot, used by Resilient to keep its mirror in
// step with the primary.
func (s *LocalStore) Put(p *models.UserProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.ID] = p.Clone()
}

// Has reports whether the profile is present without copying it.
func (s *LocalStore) Has(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.profiles[id]
	return ok
}

func (s *LocalStore) mutate(id string, fn func(p *models.UserProfile) error) (*models.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		return nil, ErrProfileNotFound
	}
	if err := fn(p); err != nil {
		return nil, err
	}
	return p.Clone(), nil
}

func (s *LocalStore) ApplyModuleCompletion(_ context.Context, id, moduleID string, xpGained int) (*models.UserProfile, error) {
	return s.mutate(id, func(p *models.UserProfile) error {
		mutateModuleCompletion(p, moduleID, xpGained, s.clock())
		return nil
	})
}

func (s *LocalStore) ApplyDebateSession(_ context.Context, id string, rec models.DebateSessionRecord) (*models.UserProfile, error) {
	return s.mutate(id, func(p *models.UserProfile) error {
		mutateDebateSession(p, rec, s.clock())
		return nil
	})
}

func (s *LocalStore) RecordFallaciesSpotted(_ context.Context, id string, n int) (*models.UserProfile, error) {
	return s.mutate(id, func(p *models.UserProfile) error {
		mutateFallaciesSpotted(p, n, s.clock())
		return nil
	})
}

func (s *LocalStore) UnlockAchievement(_ context.Context, id, achievementID string) (*models.UserProfile, error) {
	return s.mutate(id, func(p *models.UserProfile) error {
		return mutateUnlockAchievement(p, achievementID, s.clock())
	})
}
