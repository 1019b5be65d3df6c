package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Session is the opaque-identifier identity record. Users "log in" by
// presenting the UniqueID they were handed at creation; there is no password.
type Session struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UniqueID string             `bson:"unique_id" json:"unique_id"` // 8-char hex bearer token
	Name     string             `bson:"name" json:"name"`

	Spaces []primitive.ObjectID `bson:"spaces" json:"spaces"`

	LastActive time.Time `bson:"last_active" json:"last_active"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
}
