package queue

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// RedisQueue carries "job created" events as job ids on a Redis list. Pop
// moves the id into a pending list (BLMOVE) and Ack removes it, so an id
// popped by a worker that dies before acking stays visible in the pending
// list and can be requeued. That gives at-least-once delivery; consumers must
// be idempotent per id.
type RedisQueue struct {
	rdb     *redis.Client
	queue   string
	pending string
}

func NewRedisQueue(rdb *redis.Client, queueName string) *RedisQueue {
	return &RedisQueue{
		rdb:     rdb,
		queue:   queueName,
		pending: queueName + ":pending",
	}
}

// Publish pushes a job id onto the queue.
func (q *RedisQueue) Publish(ctx context.Context, jobID string) error {
	return q.rdb.LPush(ctx, q.queue, jobID).Err()
}

// Pop blocks until an id is available, moving it to the pending list.
// The caller bounds the wait via ctx.
func (q *RedisQueue) Pop(ctx context.Context) (string, error) {
	return q.rdb.BLMove(ctx, q.queue, q.pending, "RIGHT", "LEFT", 0).Result()
}

// Ack removes a delivered id from the pending list.
func (q *RedisQueue) Ack(ctx context.Context, jobID string) error {
	return q.rdb.LRem(ctx, q.pending, 1, jobID).Err()
}

// RequeuePending moves every id in the pending list back onto the queue and
// returns how many moved. Duplicates with live deliveries are fine: the
// worker drops non-PENDING jobs.
func (q *RedisQueue) RequeuePending(ctx context.Context) (int, error) {
	ids, err := q.rdb.LRange(ctx, q.pending, 0, -1).Result()
	if err != nil {
		return 0, err
	}

	moved := 0
	for _, id := range ids {
		removed, err := q.rdb.LRem(ctx, q.pending, 1, id).Result()
		if err != nil {
			return moved, err
		}
		if removed == 0 {
			continue
		}
		if err := q.rdb.LPush(ctx, q.queue, id).Err(); err != nil {
			return moved, err
		}
		moved++
	}
	return moved, nil
}
