// Package redisbus implements the tracking event bus over Redis pub/sub.
// Each order gets its own channel, so a tracking stream only ever receives
// updates for the order it subscribed to.
package redisbus

import (
	"context"
	"encoding/json"
	"log/slog"

	"dispatch/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

// subscriberBuffer bounds how many updates a slow consumer may lag behind
// before delivery starts blocking on them.
const subscriberBuffer = 16

// RedisEventBus broadcasts position updates over Redis pub/sub channels.
type RedisEventBus struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRedisEventBus creates an event bus on top of an existing Redis client.
func NewRedisEventBus(client *redis.Client, logger *slog.Logger) *RedisEventBus {
	return &RedisEventBus{
		client: client,
		logger: logger.With("component", "redis_event_bus"),
	}
}

// Publish broadcasts the update on the order's channel as a JSON payload.
func (b *RedisEventBus) Publish(ctx context.Context, update ports.PositionUpdate) error {
	payload, err := json.Marshal(update)
	if err != nil {
		return err
	}

	return b.client.Publish(ctx, ports.OrderTopic(update.OrderID), payload).Err()
}

// Subscribe starts listening on the given topic. The returned channel is
// closed when ctx is cancelled or the Redis subscription drops. Payloads that
// fail to decode are logged and skipped; a tracking stream tolerates gaps but
// not termination.
func (b *RedisEventBus) Subscribe(ctx context.Context, topic string) (<-chan ports.PositionUpdate, error) {
	sub := b.client.Subscribe(ctx, topic)

	// Force the SUBSCRIBE round trip so a broken connection surfaces here
	// instead of as a silently dead stream.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, err
	}

	updates := make(chan ports.PositionUpdate, subscriberBuffer)

	go func() {
		defer close(updates)
		defer func() {
			_ = sub.Close()
		}()

		messages := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}

				var update ports.PositionUpdate
				if err := json.Unmarshal([]byte(msg.Payload), &update); err != nil {
					b.logger.WarnContext(ctx, "dropping undecodable position update",
						"topic", topic, "error", err)
					continue
				}

				select {
				case updates <- update:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return updates, nil
}
