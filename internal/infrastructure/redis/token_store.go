package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"setlist-sync/internal/domain"

	"github.com/go-redis/redis/v8"
)

const refreshTokenPrefix = "refresh_token:"

// RedisTokenStore keeps refresh tokens with a TTL so logout and rotation can
// revoke them server-side.
type RedisTokenStore struct {
	client *redis.Client
}

func NewRedisTokenStore(client *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{client: client}
}

func (s *RedisTokenStore) SaveRefreshToken(ctx context.Context, token, userID string, ttl time.Duration) error {
	return s.client.Set(ctx, refreshTokenPrefix+token, userID, ttl).Err()
}

func (s *RedisTokenStore) UserForRefreshToken(ctx context.Context, token string) (string, error) {
	userID, err := s.client.Get(ctx, refreshTokenPrefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", fmt.Errorf("%w: unknown refresh token", domain.ErrAuthenticationFailed)
		}
		return "", err
	}
	return userID, nil
}

func (s *RedisTokenStore) RevokeRefreshToken(ctx context.Context, token string) error {
	return s.client.Del(ctx, refreshTokenPrefix+token).Err()
}
