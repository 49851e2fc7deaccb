package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"fleetdesk/internal/config"
	"fleetdesk/internal/models"

	"github.com/redis/go-redis/v9"
)

// RedisStagingRepository stores departure slots in Redis so a session
// survives a process restart between departure and arrival capture.
type RedisStagingRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient создает новый клиент Redis на основе конфигурации
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func NewRedisStagingRepository(client *redis.Client, ttl time.Duration) *RedisStagingRepository {
	return &RedisStagingRepository{
		client: client,
		ttl:    ttl,
	}
}

func stagingKey(sessionID string) string {
	return fmt.Sprintf("departure_slot:%s", sessionID)
}

func (r *RedisStagingRepository) GetDeparture(ctx context.Context, sessionID string) (*models.Departure, error) {
	if r.client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	val, err := r.client.Get(ctx, stagingKey(sessionID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get departure from redis: %w", err)
	}

	var dep models.Departure
	if err := json.Unmarshal([]byte(val), &dep); err != nil {
		return nil, fmt.Errorf("failed to unmarshal departure: %w", err)
	}

	return &dep, nil
}

func (r *RedisStagingRepository) SetDeparture(ctx context.Context, sessionID string, dep *models.Departure) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	data, err := json.Marshal(dep)
	if err != nil {
		return fmt.Errorf("failed to marshal departure: %w", err)
	}

	if err := r.client.Set(ctx, stagingKey(sessionID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set departure in redis: %w", err)
	}

	return nil
}

func (r *RedisStagingRepository) ClearDeparture(ctx context.Context, sessionID string) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := r.client.Del(ctx, stagingKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete departure from redis: %w", err)
	}
	return nil
}

// Ping проверяет соединение с Redis
func Ping(ctx context.Context, client *redis.Client) error {
	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

// Close закрывает соединение с Redis
func Close(client *redis.Client) error {
	if client != nil {
		return client.Close()
	}
	return nil
}
