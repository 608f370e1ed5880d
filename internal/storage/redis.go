package storage

import (
	"context"
	"encoding/json"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps values as JSON blobs in redis under a common prefix.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
	ctx    context.Context
	logger *log.Logger
}

func NewRedisStore(rdb *redis.Client, prefix string, ctx context.Context, logger *log.Logger) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: prefix, ctx: ctx, logger: logger}
}

func (s *RedisStore) Get(key string, dst any) bool {
	raw, err := s.rdb.Get(s.ctx, s.prefix+key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

func (s *RedisStore) Set(key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		s.logger.Warn("storage: encode failed", "key", key, "err", err)
		return
	}
	if err := s.rdb.Set(s.ctx, s.prefix+key, raw, 0).Err(); err != nil {
		s.logger.Warn("storage: redis set failed", "key", key, "err", err)
	}
}

func (s *RedisStore) Remove(key string) {
	if err := s.rdb.Del(s.ctx, s.prefix+key).Err(); err != nil {
		s.logger.Warn("storage: redis del failed", "key", key, "err", err)
	}
}
