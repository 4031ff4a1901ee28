package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/arcadehub/backend/internal/models"
)

type RedisClient struct {
	client *redis.Client
	ctx    context.Context
}

const (
	chatChannel        = "chat"
	leaderboardTTL     = 15 * time.Second
	leaderboardKeyTmpl = "leaderboard:%s:%d"
)

// NewRedisClient creates a new Redis client
func NewRedisClient(addr, password string, db int) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx := context.Background()

	// Test connection
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisClient{
		client: client,
		ctx:    ctx,
	}, nil
}

// Close closes the Redis connection
func (r *RedisClient) Close() error {
	return r.client.Close()
}

// GetClient returns the underlying Redis client
func (r *RedisClient) GetClient() *redis.Client {
	return r.client
}

// Chat events

// PublishChatMessage publishes a posted message so a push transport can
// attach later; clients currently poll, so failures here are non-fatal.
func (r *RedisClient) PublishChatMessage(msg *models.ChatMessage) error {
	event := models.ChatEvent{Event: models.EventChatMessage, Message: msg}
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return r.client.Publish(r.ctx, chatChannel, data).Err()
}

// SubscribeToChatMessages subscribes to the chat events channel
func (r *RedisClient) SubscribeToChatMessages() *redis.PubSub {
	return r.client.Subscribe(r.ctx, chatChannel)
}

// Leaderboard cache

// CacheLeaderboard stores a computed leaderboard page under a short TTL.
func (r *RedisClient) CacheLeaderboard(gameType string, limit int, entries []models.LeaderboardEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return err
	}

	key := fmt.Sprintf(leaderboardKeyTmpl, gameType, limit)
	return r.client.Set(r.ctx, key, data, leaderboardTTL).Err()
}

// GetCachedLeaderboard returns a cached page, or (nil, nil) on a miss.
func (r *RedisClient) GetCachedLeaderboard(gameType string, limit int) ([]models.LeaderboardEntry, error) {
	key := fmt.Sprintf(leaderboardKeyTmpl, gameType, limit)
	data, err := r.client.Get(r.ctx, key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var entries []models.LeaderboardEntry
	if err := json.Unmarshal([]byte(data), &entries); err != nil {
		return nil, err
	}

	return entries, nil
}

// InvalidateLeaderboard drops every cached page for a game after a save.
func (r *RedisClient) InvalidateLeaderboard(gameType string) error {
	pattern := fmt.Sprintf("leaderboard:%s:*", gameType)
	iter := r.client.Scan(r.ctx, 0, pattern, 0).Iterator()
	for iter.Next(r.ctx) {
		if err := r.client.Del(r.ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// AllowAction implements a Redis-backed token-bucket limiter per key (user+action).
// Returns true if the action is allowed, false if rate-limited.
func (r *RedisClient) AllowAction(userID uuid.UUID, action string, rate int, burst int) (bool, error) {
	key := fmt.Sprintf("rl:%s:%s", action, userID.String())
	// Lua script: manage tokens and last timestamp
	script := `
local key = KEYS[1]
local rate = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local vals = redis.call('HMGET', key, 'tokens', 'last')
local tokens = tonumber(vals[1])
local last = tonumber(vals[2])
if tokens == nil then tokens = burst end
if last == nil then last = now end
local delta = math.max(0, now - last)
local new_tokens = math.min(burst, tokens + (delta * rate / 1000))
if new_tokens >= 1 then
	new_tokens = new_tokens - 1
	redis.call('HMSET', key, 'tokens', new_tokens, 'last', now)
	redis.call('PEXPIRE', key, 60000)
	return 1
else
	redis.call('HMSET', key, 'tokens', new_tokens, 'last', now)
	redis.call('PEXPIRE', key, 60000)
	return 0
end
`

	now := time.Now().UnixNano() / int64(time.Millisecond)
	res, err := r.client.Eval(r.ctx, script, []string{key}, rate, burst, now).Result()
	if err != nil {
		return false, err
	}
	switch v := res.(type) {
	case int64:
		return v == 1, nil
	case int:
		return v == 1, nil
	default:
		return false, fmt.Errorf("unexpected result from rate limiter: %T %v", res, res)
	}
}
