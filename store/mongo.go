package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"debatecraft/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const profileCollection = "profiles"

// MongoStore persists profiles in MongoDB. Mutations load the document,
// apply the shared progression rules, and replace it, so the stored state
// always matches what the rules computed.
type MongoStore struct {
	coll  *mongo.Collection
	clock func() time.Time
}

func NewMongoStore(database *mongo.Database) *MongoStore {
	return &MongoStore{
		coll:  database.Collection(profileCollection),
		clock: time.Now,
	}
}

func (s *MongoStore) GetProfile(ctx context.Context, id string) (*models.UserProfile, error) {
	var p models.UserProfile
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return &p, nil
}

func (s *MongoStore) CreateProfile(ctx context.Context, p *models.UserProfile) (*models.UserProfile, error) {
	cp := p.Clone()
	normalizeNewProfile(cp, s.clock())
	opts := options.Replace().SetUpsert(true)
	if _, err := s.coll.ReplaceOne(ctx, bson.M{"_id": cp.ID}, cp, opts); err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}
	return cp, nil
}

func (s *MongoStore) mutate(ctx context.Context, id string, fn func(p *models.UserProfile) error) (*models.UserProfile, error) {
	p, err := s.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(p); err != nil {
		return nil, err
	}
	if _, err := s.coll.ReplaceOne(ctx, bson.M{"_id": id}, p); err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}
	return p, nil
}

func (s *MongoStore) ApplyModuleCompletion(ctx context.Context, id, moduleID string, xpGained int) (*models.UserProfile, error) {
	return s.mutate(ctx, id, func(p *models.UserProfile) error {
		mutateModuleCompletion(p, moduleID, xpGained, s.clock())
		return nil
	})
}

func (s *MongoStore) ApplyDebateSession(ctx context.Context, id string, rec models.DebateSessionRecord) (*models.UserProfile, error) {
	return s.mutate(ctx, id, func(p *models.UserProfile) error {
		mutateDebateSession(p, rec, s.clock())
		return nil
	})
}

func (s *MongoStore) RecordFallaciesSpotted(ctx context.Context, id string, n int) (*models.UserProfile, error) {
	return s.mutate(ctx, id, func(p *models.UserProfile) error {
		mutateFallaciesSpotted(p, n, s.clock())
		return nil
	})
}

func (s *MongoStore) UnlockAchievement(ctx context.Context, id, achievementID string) (*models.UserProfile, error) {
	return s.mutate(ctx, id, func(p *models.UserProfile) error {
		return mutateUnlockAchievement(p, achievementID, s.clock())
	})
}
