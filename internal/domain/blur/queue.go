package blur

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// prewarmList is the Redis list holding photo IDs waiting for
// ahead-of-read derivation
const prewarmList = "blur:prewarm"

// ErrQueueEmpty is returned by Dequeue when no job arrived within the
// poll timeout
var ErrQueueEmpty = errors.New("prewarm queue is empty")

// Queue is the Redis-backed pre-warm queue. The API enqueues
// restricted-tier photos after upload or policy update; the blur
// worker dequeues and derives ahead of the first read. The queue is an
// optimization only; reads still derive lazily when it is down.
type Queue struct {
	client *redis.Client
}

// NewQueue creates a pre-warm queue. A nil client disables it.
func NewQueue(client *redis.Client) *Queue {
	return &Queue{client: client}
}

// Enqueue schedules a photo for ahead-of-read derivation
func (q *Queue) Enqueue(ctx context.Context, photoID uuid.UUID) error {
	if q.client == nil {
		return nil
	}
	if err := q.client.LPush(ctx, prewarmList, photoID.String()).Err(); err != nil {
		// Pre-warm is best effort; log and move on
		log.Warn().Err(err).Str("photo_id", photoID.String()).Msg("Failed to enqueue blur pre-warm")
		return err
	}
	return nil
}

// Dequeue blocks up to timeout for the next photo ID
func (q *Queue) Dequeue(ctx context.Context, timeout time.Duration) (uuid.UUID, error) {
	if q.client == nil {
		return uuid.Nil, ErrQueueEmpty
	}

	result, err := q.client.BRPop(ctx, timeout, prewarmList).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return uuid.Nil, ErrQueueEmpty
		}
		return uuid.Nil, err
	}
	// BRPop returns [key, value]
	if len(result) != 2 {
		return uuid.Nil, ErrQueueEmpty
	}

	photoID, err := uuid.Parse(result[1])
	if err != nil {
		return uuid.Nil, err
	}
	return photoID, nil
}
