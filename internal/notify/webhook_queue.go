// README: Redis list used as the outbound webhook queue.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"kavach/internal/metrics"
)

const DefaultQueueKey = "notify:webhooks"

var ErrQueueEmpty = errors.New("webhook queue empty")

type WebhookQueue struct {
	client *redis.Client
	key    string
}

func NewWebhookQueue(client *redis.Client, key string) *WebhookQueue {
	if key == "" {
		key = DefaultQueueKey
	}
	return &WebhookQueue{client: client, key: key}
}

// Notify enqueues the event for the sender worker.
func (q *WebhookQueue) Notify(ctx context.Context, e Event) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if err := q.client.LPush(ctx, q.key, b).Err(); err != nil {
		metrics.NotificationsTotal.WithLabelValues("webhook_queue", "error").Inc()
		return err
	}
	metrics.NotificationsTotal.WithLabelValues("webhook_queue", "ok").Inc()
	return nil
}

func (q *WebhookQueue) BRPop(ctx context.Context, timeout time.Duration) (Event, error) {
	var e Event

	res, err := q.client.BRPop(ctx, timeout, q.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return e, ErrQueueEmpty
		}
		return e, err
	}
	if len(res) < 2 {
		return e, ErrQueueEmpty
	}
	if err := json.Unmarshal([]byte(res[1]), &e); err != nil {
		return e, err
	}
	return e, nil
}
