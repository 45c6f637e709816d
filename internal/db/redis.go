package db

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
)

// NewRedisClient устанавливает соединение с Redis по переменным окружения
func NewRedisClient() (*redis.Client, error) {
	redisHost := os.Getenv("REDIS_HOST")
	redisPort := os.Getenv("REDIS_PORT")

	if redisHost == "" {
		redisHost = "localhost"
	}
	if redisPort == "" {
		redisPort = "6379"
	}

	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", redisHost, redisPort),
		Password:     os.Getenv("REDIS_PASSWORD"),
		DB:           0,
		PoolSize:     50,
		MinIdleConns: 10,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	// Проверяем подключение к Redis
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ошибка подключения к Redis: %w", err)
	}

	return client, nil
}

// Ключи отозванных токенов живут до истечения срока самого токена
const revokedTokenPrefix = "revoked_token:"

// RevokeToken помечает токен отозванным по его jti.
// TTL равен оставшемуся сроку жизни токена, чтобы ключи не копились.
func RevokeToken(ctx context.Context, client *redis.Client, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		// Токен уже истек, отзывать нечего
		return nil
	}
	return client.Set(ctx, revokedTokenPrefix+jti, "1", ttl).Err()
}

// IsTokenRevoked проверяет, отозван ли токен с указанным jti
func IsTokenRevoked(ctx context.Context, client *redis.Client, jti string) (bool, error) {
	n, err := client.Exists(ctx, revokedTokenPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
