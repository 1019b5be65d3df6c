package mongo

import (
	"context"
	"time"

	"github.com/interviewpro/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type QuestionAnswerRepository interface {
	InsertMany(ctx context.Context, qas []models.QuestionAnswer) error
	ListByRound(ctx context.Context, spaceID primitive.ObjectID, roundName string) ([]models.QuestionAnswer, error)
}

type questionAnswerRepo struct {
	col *mongo.Collection
}

func NewQuestionAnswerRepo(db *mongo.Database) QuestionAnswerRepository {
	return &questionAnswerRepo{col: db.Collection("question_answers")}
}

func (r *questionAnswerRepo) InsertMany(ctx context.Context, qas []models.QuestionAnswer) error {
	if len(qas) == 0 {
		return nil
	}
	now := time.Now().UTC()
	docs := make([]any, 0, len(qas))
	for i := range qas {
		if qas[i].CreatedAt.IsZero() {
			// preserve submission order under the created_at sort
			qas[i].CreatedAt = now.Add(time.Duration(i) * time.Millisecond)
		}
		docs = append(docs, qas[i])
	}
	_, err := r.col.InsertMany(ctx, docs)
	return err
}

func (r *questionAnswerRepo) ListByRound(ctx context.Context, spaceID primitive.ObjectID, roundName string) ([]models.QuestionAnswer, error) {
	cur, err := r.col.Find(ctx,
		bson.M{"space_id": spaceID, "round_name": roundName},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.QuestionAnswer
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
