package workers

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	SummaryStream = "summary:jobs"
	SummaryGroup  = "summary-workers"
)

// SummaryQueue enqueues finished rounds onto the summary stream. It is the
// services.SummaryEnqueuer implementation.
type SummaryQueue struct {
	Redis  *redis.Client
	Stream string
}

func NewSummaryQueue(rdb *redis.Client) *SummaryQueue {
	return &SummaryQueue{Redis: rdb, Stream: SummaryStream}
}

func (q *SummaryQueue) EnqueueSummary(ctx context.Context, spaceID primitive.ObjectID, roundName string) error {
	stream := q.Stream
	if stream == "" {
		stream = SummaryStream
	}
	return q.Redis.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]any{
			"space_id":   spaceID.Hex(),
			"round_name": roundName,
		},
	}).Err()
}
