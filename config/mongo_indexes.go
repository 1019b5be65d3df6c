package config

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func EnsureMongoIndexes() error {
	if MongoClient == nil {
		return errors.New("MongoClient is nil; call InitMongo() first")
	}
	db := MongoDatabase()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// sessions indexes
	sessions := db.Collection("sessions")
	_, err := sessions.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "unique_id", Value: 1}},
			Options: options.Index().
				SetName("uniq_unique_id").
				SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "last_active", Value: -1}},
			Options: options.Index().SetName("by_last_active"),
		},
	})
	if err != nil {
		return err
	}

	// spaces indexes
	spaces := db.Collection("spaces")
	_, err = spaces.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "student_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("by_student_created"),
		},
	})
	if err != nil {
		return err
	}

	// question_answers indexes: bulk-inserted per round, read back in insert order
	qas := db.Collection("question_answers")
	_, err = qas.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "space_id", Value: 1},
				{Key: "round_name", Value: 1},
				{Key: "created_at", Value: 1},
			},
			Options: options.Index().SetName("by_round_created"),
		},
	})
	return err
}
