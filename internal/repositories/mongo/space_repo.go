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
	"go.mongodb.org/mongo-driver/mongo/options"
)

type SpaceRepository interface {
	Create(ctx context.Context, sp *models.Space) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Space, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.Space, error)
	SetRoundStatus(ctx context.Context, spaceID primitive.ObjectID, roundName string, status models.RoundStatus) error
	SetRoundSummary(ctx context.Context, spaceID primitive.ObjectID, roundName, summary string, status models.RoundStatus) error
}

type spaceRepo struct {
	col *mongo.Collection
}

func NewSpaceRepo(db *mongo.Database) SpaceRepository {
	return &spaceRepo{col: db.Collection("spaces")}
}

func (r *spaceRepo) Create(ctx context.Context, sp *models.Space) error {
	now := time.Now().UTC()
	if sp.CreatedAt.IsZero() {
		sp.CreatedAt = now
	}
	sp.UpdatedAt = now
	if sp.ID.IsZero() {
		sp.ID = primitive.NewObjectID()
	}
	for i := range sp.InterviewRounds {
		if sp.InterviewRounds[i].ID.IsZero() {
			sp.InterviewRounds[i].ID = primitive.NewObjectID()
		}
		if sp.InterviewRounds[i].Status == "" {
			sp.InterviewRounds[i].Status = models.RoundNotCompleted
		}
	}
	_, err := r.col.InsertOne(ctx, sp)
	return err
}

func (r *spaceRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Space, error) {
	var sp models.Space
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&sp)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	return &sp, err
}

func (r *spaceRepo) ListByStudent(ctx context.Context, studentID string) ([]models.Space, error) {
	cur, err := r.col.Find(ctx,
		bson.M{"student_id": studentID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Space
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *spaceRepo) SetRoundStatus(ctx context.Context, spaceID primitive.ObjectID, roundName string, status models.RoundStatus) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": spaceID, "interview_rounds.name": roundName},
		bson.M{"$set": bson.M{
			"interview_rounds.$.status": status,
			"updated_at":                time.Now().UTC(),
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (r *spaceRepo) SetRoundSummary(ctx context.Context, spaceID primitive.ObjectID, roundName, summary string, status models.RoundStatus) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": spaceID, "interview_rounds.name": roundName},
		bson.M{"$set": bson.M{
			"interview_rounds.$.summary": summary,
			"interview_rounds.$.status":  status,
			"updated_at":                 time.Now().UTC(),
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return utils.ErrNotFound
	}
	return nil
}
