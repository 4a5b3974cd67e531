package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/transfers/config"
	"github.com/Domenick1991/transfers/internal/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client    *redis.Client
	routesTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, routesTTL time.Duration) *RedisCache {
	return NewRedisCacheWithClient(
		redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		routesTTL,
	)
}

func NewRedisCacheWithClient(client *redis.Client, routesTTL time.Duration) *RedisCache {
	return &RedisCache{client: client, routesTTL: routesTTL}
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// GetRoutes returns nil without error on a cache miss.
func (c *RedisCache) GetRoutes(ctx context.Context) ([]domain.Route, error) {
	data, err := c.client.Get(ctx, routesKey()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var routes []domain.Route
	if err := json.Unmarshal(data, &routes); err != nil {
		return nil, err
	}
	return routes, nil
}

func (c *RedisCache) SetRoutes(ctx context.Context, routes []domain.Route) error {
	payload, err := json.Marshal(routes)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, routesKey(), payload, c.routesTTL).Err()
}

func (c *RedisCache) InvalidateRoutes(ctx context.Context) error {
	return c.client.Del(ctx, routesKey()).Err()
}

var releaseLockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// AcquireResourceLock takes the lock and returns the token that owns it.
func (c *RedisCache) AcquireResourceLock(ctx context.Context, kind domain.ResourceKind, id int64, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := c.client.SetNX(ctx, resourceLockKey(kind, id), token, ttl).Result()
	if err != nil || !ok {
		return "", false, err
	}
	return token, true, nil
}

// ReleaseResourceLock deletes the lock only while token still owns it; a lock
// that expired and was taken by another request is left alone.
func (c *RedisCache) ReleaseResourceLock(ctx context.Context, kind domain.ResourceKind, id int64, token string) error {
	return releaseLockScript.Run(ctx, c.client, []string{resourceLockKey(kind, id)}, token).Err()
}

func routesKey() string {
	return "cache:routes"
}

func resourceLockKey(kind domain.ResourceKind, id int64) string {
	return fmt.Sprintf("lock:%s:%d", kind, id)
}
