package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/sessions_bot/internal/model"
	"github.com/Freeeeeet/sessions_bot/internal/service"
	"github.com/redis/go-redis/v9"
)

// DefaultPointerKey ключ Redis, под которым лежит указатель
const DefaultPointerKey = "sessions:display_pointer"

// RedisPointerStore хранит указатель JSON-строкой в Redis
type RedisPointerStore struct {
	rdb *redis.Client
	key string
}

func NewRedisPointerStore(rdb *redis.Client, key string) *RedisPointerStore {
	if key == "" {
		key = DefaultPointerKey
	}
	return &RedisPointerStore{rdb: rdb, key: key}
}

// Get получает указатель, nil если ключа нет
func (s *RedisPointerStore) Get(ctx context.Context) (*model.DisplayPointer, error) {
	raw, err := s.rdb.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get display pointer: %w", err)
	}

	var pointer model.DisplayPointer
	if err := json.Unmarshal(raw, &pointer); err != nil {
		return nil, fmt.Errorf("decode display pointer: %w", err)
	}

	return &pointer, nil
}

// Save перезаписывает указатель без срока жизни
func (s *RedisPointerStore) Save(ctx context.Context, pointer model.DisplayPointer) error {
	pointer.UpdatedAt = time.Now().UTC()

	raw, err := json.Marshal(pointer)
	if err != nil {
		return fmt.Errorf("encode display pointer: %w", err)
	}

	if err := s.rdb.Set(ctx, s.key, raw, 0).Err(); err != nil {
		return fmt.Errorf("save display pointer: %w", err)
	}

	return nil
}

var _ service.PointerStore = (*RedisPointerStore)(nil)
