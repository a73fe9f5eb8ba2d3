package docstore

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/survey-backend/internal/platform/logger"
)

// RedisMedium keeps the document under one key. SET replaces the value atomically.
type RedisMedium struct {
	rdb *goredis.Client
	key string
	log *logger.Logger
}

func NewRedisMedium(rdb *goredis.Client, key string, baseLog *logger.Logger) *RedisMedium {
	if key == "" {
		key = "survey:results"
	}
	return &RedisMedium{rdb: rdb, key: key, log: baseLog.With("medium", "redis", "key", key)}
}

func (m *RedisMedium) Describe() string { return "redis:" + m.key }

func (m *RedisMedium) Init(ctx context.Context, seed []byte) (bool, error) {
	created, err := m.rdb.SetNX(ctx, m.key, seed, 0).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx: %w", err)
	}
	if created {
		m.log.Debug("Created survey document")
	}
	return created, nil
}

func (m *RedisMedium) Load(ctx context.Context) ([]byte, error) {
	b, err := m.rdb.Get(ctx, m.key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			m.log.Debug("Survey document key missing")
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return b, nil
}

func (m *RedisMedium) Save(ctx context.Context, doc []byte) error {
	ok, err := m.rdb.SetXX(ctx, m.key, doc, goredis.KeepTTL).Result()
	if err != nil {
		m.log.Warn("Saving survey document failed", "error", err)
		return fmt.Errorf("redis set: %w", err)
	}
	if !ok {
		m.log.Warn("Saving survey document failed", "error", ErrNotFound)
		return ErrNotFound
	}
	return nil
}

func (m *RedisMedium) Close() error { return m.rdb.Close() }
