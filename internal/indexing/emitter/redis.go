package emitter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/wiyan17/Notifwallet-bot/internal/core/domain"
	"github.com/wiyan17/Notifwallet-bot/internal/infra/redis"
)

// DefaultRecentLimit caps the per-network recent-events list.
const DefaultRecentLimit = 100

// RedisPublisher is the subset of the Redis client the emitter uses.
type RedisPublisher interface {
	Publish(ctx context.Context, channel string, payload []byte) (int64, error)
	PushRecent(ctx context.Context, network string, payload []byte, limit int64) error
	Close() error
}

// RedisEmitter publishes JSON events on "<prefix>:<network>" and keeps a
// short recent-events list per network.
type RedisEmitter struct {
	client      RedisPublisher
	prefix      string
	recentLimit int64
}

func NewRedisEmitter(client RedisPublisher, prefix string) *RedisEmitter {
	if prefix == "" {
		prefix = "notifwallet"
	}
	return &RedisEmitter{client: client, prefix: prefix, recentLimit: DefaultRecentLimit}
}

func (e *RedisEmitter) Name() string { return "redis" }

func (e *RedisEmitter) Emit(ctx context.Context, event *domain.TransferEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if _, err := e.client.Publish(ctx, redis.ChannelName(e.prefix, event.Network), payload); err != nil {
		return err
	}
	if e.recentLimit > 0 {
		return e.client.PushRecent(ctx, event.Network, payload, e.recentLimit)
	}
	return nil
}

func (e *RedisEmitter) Close() error {
	return e.client.Close()
}
