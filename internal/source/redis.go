package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"user-search/internal/domain"
)

// stringGetter - часть redis.Cmdable, которая нужна источнику
type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// RedisSource - JSON массив записей, хранящийся строкой под одним ключом
type RedisSource struct {
	client stringGetter
	key    string
}

// NewRedisSource создает источник поверх готового клиента
func NewRedisSource(client stringGetter, key string) *RedisSource {
	return &RedisSource{client: client, key: key}
}

// Load читает ключ и разбирает документ при каждом вызове
func (s *RedisSource) Load(ctx context.Context) ([]domain.UserRecord, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("redis key %q not found", s.key)
		}
		return nil, fmt.Errorf("redis get %q: %w", s.key, err)
	}

	records, err := decodeRecords(data)
	if err != nil {
		return nil, fmt.Errorf("redis key %q: %w", s.key, err)
	}
	return records, nil
}

// ConnectRedis - создает клиент и проверяет соединение
func ConnectRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:            addr,
		Password:        password,
		DB:              db,
		PoolSize:        10,
		MinIdleConns:    1,
		PoolTimeout:     4 * time.Second,
		ConnMaxIdleTime: 5 * time.Minute,
		// повторы отключены: поиск не ретраится, ошибка уходит вызывающему
		MaxRetries: -1,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}
