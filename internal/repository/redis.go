package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/cuttlegame/cuttle-server-go/internal/config"
)

const redisKeyPrefix = "cuttle:session:"

// RedisStore persists session records as JSON blobs with a TTL, for
// deployments that treat sessions as expendable hot state.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewRedisStore(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	logger.Info("redis session store initialized",
		zap.String("address", cfg.Address),
		zap.Duration("ttl", cfg.TTL),
	)
	return &RedisStore{client: client, ttl: cfg.TTL, logger: logger}, nil
}

func (s *RedisStore) Save(ctx context.Context, record *Record) error {
	stored := cloneRecord(record)
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	stored.UpdatedAt = time.Now().UTC()

	payload, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", record.ID, err)
	}
	if err := s.client.Set(ctx, redisKeyPrefix+record.ID, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("save session %s: %w", record.ID, err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, id string) (*Record, error) {
	payload, err := s.client.Get(ctx, redisKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	record := &Record{}
	if err := json.Unmarshal(payload, record); err != nil {
		return nil, fmt.Errorf("unmarshal session %s: %w", id, err)
	}
	return record, nil
}

func (s *RedisStore) List(ctx context.Context) ([]string, error) {
	var ids []string
	iter := s.client.Scan(ctx, 0, redisKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		ids = append(ids, strings.TrimPrefix(iter.Val(), redisKeyPrefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan sessions: %w", err)
	}
	return ids, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	deleted, err := s.client.Del(ctx, redisKeyPrefix+id).Result()
	if err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	if deleted == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *RedisStore) Close() {
	_ = s.client.Close()
}
