package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"
)

const sessionKeyPrefix = "session:"

// RedisStore はセッションを Redis に保存します。有効期限は Redis の TTL に任せます。
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore は RedisStore を作成します。
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Create(ctx context.Context, key string, record *Record, ttl time.Duration) (bool, error) {
	payload, err := json.Marshal(record)
	if err != nil {
		return false, err
	}
	ok, err := s.rdb.SetNX(ctx, redisKey(key), payload, ttl).Result()
	if err != nil {
		return false, oops.Code("SESSION_CREATE_FAILED").With("user_id", record.UserID).Wrap(err)
	}
	return ok, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (*Record, error) {
	data, err := s.rdb.Get(ctx, redisKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, oops.Code("SESSION_GET_FAILED").Wrap(err)
	}
	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, oops.Code("SESSION_DECODE_FAILED").Wrap(err)
	}
	return &record, nil
}

func (s *RedisStore) Refresh(ctx context.Context, key string, record *Record, ttl time.Duration) (bool, error) {
	payload, err := json.Marshal(record)
	if err != nil {
		return false, err
	}
	// SET XX: 並行して破棄されたセッションを復活させない
	ok, err := s.rdb.SetXX(ctx, redisKey(key), payload, ttl).Result()
	if err != nil {
		return false, oops.Code("SESSION_REFRESH_FAILED").With("user_id", record.UserID).Wrap(err)
	}
	return ok, nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, redisKey(key)).Err(); err != nil {
		return oops.Code("SESSION_DELETE_FAILED").Wrap(err)
	}
	return nil
}

func redisKey(key string) string {
	return sessionKeyPrefix + key
}
