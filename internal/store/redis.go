package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mindwell/care-portal/internal/model"
)

const redisOpTimeout = 2 * time.Second

// RedisStore keeps the pair in Redis under a single hash keyed by the
// portal session identifier.  Both fields are written in one HSET so a
// reader on another instance never observes a split pair.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore builds a store for the given session id.  The caller owns
// the client's lifecycle.
func NewRedisStore(client *redis.Client, sessionID string) *RedisStore {
	return &RedisStore{
		client: client,
		key:    "care-portal:session:" + sessionID + ":tokens",
	}
}

func (s *RedisStore) Set(access, refresh string) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	return s.client.HSet(ctx, s.key, "access_token", access, "refresh_token", refresh).Err()
}

func (s *RedisStore) Get() (model.Credentials, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	fields, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return model.Credentials{}, err
	}
	return model.Credentials{
		Access:  fields["access_token"],
		Refresh: fields["refresh_token"],
	}, nil
}

func (s *RedisStore) Clear() error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	return s.client.Del(ctx, s.key).Err()
}
