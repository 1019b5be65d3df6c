package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/interviewpro/backend/internal/models"
	"github.com/interviewpro/backend/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type SessionRepository interface {
	Create(ctx context.Context, s *models.Session) error
	GetByUniqueID(ctx context.Context, uniqueID string) (*models.Session, error)
	UpdateName(ctx context.Context, uniqueID, name string) error
	TouchLastActive(ctx context.Context, uniqueID string, at time.Time) error
	PushSpace(ctx context.Context, uniqueID string, spaceID primitive.ObjectID) error
}

type sessionRepo struct {
	col *mongo.Collection
}

func NewSessionRepo(db *mongo.Database) SessionRepository {
	return &sessionRepo{col: db.Collection("sessions")}
}

func (r *sessionRepo) Create(ctx context.Context, s *models.Session) error {
	now := time.Now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	if s.LastActive.IsZero() {
		s.LastActive = now
	}
	if s.Spaces == nil {
		s.Spaces = []primitive.ObjectID{}
	}
	_, err := r.col.InsertOne(ctx, s)
	return err
}

func (r *sessionRepo) GetByUniqueID(ctx context.Context, uniqueID string) (*models.Session, error) {
	var s models.Session
	err := r.col.FindOne(ctx, bson.M{"unique_id": uniqueID}).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	return &s, err
}

func (r *sessionRepo) UpdateName(ctx context.Context, uniqueID, name string) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"unique_id": uniqueID},
		bson.M{"$set": bson.M{"name": name}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (r *sessionRepo) TouchLastActive(ctx context.Context, uniqueID string, at time.Time) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"unique_id": uniqueID},
		bson.M{"$set": bson.M{"last_active": at.UTC()}},
	)
	return err
}

func (r *sessionRepo) PushSpace(ctx context.Context, uniqueID string, spaceID primitive.ObjectID) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"unique_id": uniqueID},
		bson.M{"$push": bson.M{"spaces": spaceID}},
	)
	return err
}
