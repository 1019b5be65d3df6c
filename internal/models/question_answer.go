package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// QuestionAnswer is append-only: one document per answered question per
// round, written in bulk when a round finishes.
type QuestionAnswer struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SpaceID   primitive.ObjectID `bson:"space_id" json:"space_id"`
	RoundName string             `bson:"round_name" json:"round_name"`

	Question   string `bson:"question" json:"question"`
	Answer     string `bson:"answer" json:"answer"`
	IsFollowUp bool   `bson:"is_follow_up" json:"is_follow_up"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
