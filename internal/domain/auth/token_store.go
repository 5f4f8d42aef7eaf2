package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// TokenStore holds issued refresh tokens keyed by hash, with explicit
// set/get/clear operations and an expiry injected per token.
type TokenStore interface {
	Set(ctx context.Context, tokenHash string, userID uuid.UUID, ttl time.Duration) error
	Get(ctx context.Context, tokenHash string) (uuid.UUID, error)
	Clear(ctx context.Context, tokenHash string) error
	ClearAll(ctx context.Context, userID uuid.UUID) error
}

const refreshKeyPrefix = "refresh:"

// RedisTokenStore keeps refresh tokens in Redis with a per-key TTL.
type RedisTokenStore struct {
	client *redis.Client
}

// NewRedisTokenStore creates a Redis-backed token store
func NewRedisTokenStore(client *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{client: client}
}

func (s *RedisTokenStore) Set(ctx context.Context, tokenHash string, userID uuid.UUID, ttl time.Duration) error {
	if err := s.client.Set(ctx, refreshKeyPrefix+tokenHash, userID.String(), ttl).Err(); err != nil {
		return err
	}
	// Secondary index so ClearAll can revoke every session of a user.
	return s.client.SAdd(ctx, userSessionsKey(userID), tokenHash).Err()
}

func (s *RedisTokenStore) Get(ctx context.Context, tokenHash string) (uuid.UUID, error) {
	val, err := s.client.Get(ctx, refreshKeyPrefix+tokenHash).Result()
	if err != nil {
		return uuid.Nil, ErrInvalidRefreshToken
	}
	return uuid.Parse(val)
}

func (s *RedisTokenStore) Clear(ctx context.Context, tokenHash string) error {
	return s.client.Del(ctx, refreshKeyPrefix+tokenHash).Err()
}

func (s *RedisTokenStore) ClearAll(ctx context.Context, userID uuid.UUID) error {
	key := userSessionsKey(userID)
	hashes, err := s.client.SMembers(ctx, key).Result()
	if err != nil {
		return err
	}
	for _, h := range hashes {
		if err := s.client.Del(ctx, refreshKeyPrefix+h).Err(); err != nil {
			return err
		}
	}
	return s.client.Del(ctx, key).Err()
}

func userSessionsKey(userID uuid.UUID) string {
	return "user_sessions:" + userID.String()
}
