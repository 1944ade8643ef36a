package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/anonto42/nano-forum/backend/internal/models"
	"github.com/redis/go-redis/v9"
)

const redisSessionPrefix = "forum:session:"

// RedisSessionRepository keeps sessions as JSON values whose key TTL matches
// the session expiry, so Redis does the pruning.
type RedisSessionRepository struct {
	client *redis.Client
}

func NewRedisSessionRepository(client *redis.Client) *RedisSessionRepository {
	return &RedisSessionRepository{client: client}
}

func (r *RedisSessionRepository) CreateSession(ctx context.Context, session *models.Session) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, redisSessionPrefix+session.ID, data, ttl).Err()
}

func (r *RedisSessionRepository) GetSession(ctx context.Context, id string) (*models.Session, error) {
	data, err := r.client.Get(ctx, redisSessionPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var session models.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	if session.Expired(time.Now()) {
		return nil, ErrNotFound
	}
	return &session, nil
}

func (r *RedisSessionRepository) DeleteSession(ctx context.Context, id string) error {
	return r.client.Del(ctx, redisSessionPrefix+id).Err()
}

// DeleteExpired is a no-op: keys expire on their own.
func (r *RedisSessionRepository) DeleteExpired(context.Context, time.Time) (int64, error) {
	return 0, nil
}
