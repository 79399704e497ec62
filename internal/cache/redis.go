package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aman-zulfiqar/solana-trend-trader/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	recentAttemptsKey = "attempts:recent"
	recentAttemptsMax = 500
)

// RedisCache keeps a bounded list of recent swap attempts and fans them out
// over Pub/Sub.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(ctx context.Context, addr string) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   0,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &RedisCache{client: client}, nil
}

// NewRedisCacheFromClient wraps an existing client (shared with the wallet store).
func NewRedisCacheFromClient(client *redis.Client) (*RedisCache, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	return &RedisCache{client: client}, nil
}

func (r *RedisCache) AddRecentAttempt(ctx context.Context, attempt *models.SwapAttempt) error {
	data, err := json.Marshal(attempt)
	if err != nil {
		return fmt.Errorf("marshal attempt: %w", err)
	}

	pipe := r.client.Pipeline()
	pipe.LPush(ctx, recentAttemptsKey, data)
	pipe.LTrim(ctx, recentAttemptsKey, 0, recentAttemptsMax-1)
	_, err = pipe.Exec(ctx)
	return err
}

func (r *RedisCache) GetRecentAttempts(ctx context.Context, limit int64) ([]*models.SwapAttempt, error) {
	if limit < 1 {
		limit = 100
	}

	raw, err := r.client.LRange(ctx, recentAttemptsKey, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("lrange attempts: %w", err)
	}

	attempts := make([]*models.SwapAttempt, 0, len(raw))
	for _, item := range raw {
		var a models.SwapAttempt
		if err := json.Unmarshal([]byte(item), &a); err != nil {
			continue // skip corrupt entries
		}
		attempts = append(attempts, &a)
	}
	return attempts, nil
}

// PublishAttempt publishes an attempt to per-user and firehose channels.
func (r *RedisCache) PublishAttempt(ctx context.Context, attempt *models.SwapAttempt) error {
	data, err := json.Marshal(attempt)
	if err != nil {
		return fmt.Errorf("marshal attempt: %w", err)
	}

	channels := []string{
		"attempts:all",
		fmt.Sprintf("attempts:user:%s", attempt.UserID),
		fmt.Sprintf("attempts:state:%s", attempt.State),
	}

	pipe := r.client.Pipeline()
	for _, channel := range channels {
		pipe.Publish(ctx, channel, data)
	}
	_, err = pipe.Exec(ctx)
	return err
}

// SubscribeAttempts subscribes to the attempt firehose until ctx is done.
func (r *RedisCache) SubscribeAttempts(ctx context.Context, handler func(*models.SwapAttempt)) error {
	pubsub := r.client.Subscribe(ctx, "attempts:all")
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var a models.SwapAttempt
			if err := json.Unmarshal([]byte(msg.Payload), &a); err != nil {
				continue
			}
			handler(&a)
		}
	}
}

func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}
