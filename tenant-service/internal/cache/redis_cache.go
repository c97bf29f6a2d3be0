package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/junoblue/launch/tenant-service/internal/config"
	"github.com/junoblue/launch/tenant-service/internal/domain"
)

// RedisTenantCache implements TenantCache on Redis string keys holding
// tenant JSON.
type RedisTenantCache struct {
	client *redis.Client
	prefix string
}

// NewRedisClient connects to Redis and pings it.
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// NewRedisTenantCache wraps client. Close closes the client.
func NewRedisTenantCache(client *redis.Client, prefix string) *RedisTenantCache {
	return &RedisTenantCache{
		client: client,
		prefix: prefix,
	}
}

func (c *RedisTenantCache) BuildKeyByID(tenantID string) string {
	return fmt.Sprintf("%s:id:%s", c.prefix, tenantID)
}

func (c *RedisTenantCache) BuildKeyBySubdomain(subdomain string) string {
	return fmt.Sprintf("%s:subdomain:%s", c.prefix, subdomain)
}

func (c *RedisTenantCache) Get(ctx context.Context, key string) (*domain.Tenant, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var tenant domain.Tenant
	if err := json.Unmarshal(data, &tenant); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache data: %w", err)
	}

	return &tenant, nil
}

func (c *RedisTenantCache) Set(ctx context.Context, key string, tenant *domain.Tenant, ttl time.Duration) error {
	data, err := json.Marshal(tenant)
	if err != nil {
		return fmt.Errorf("failed to marshal cache data: %w", err)
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set in redis: %w", err)
	}

	return nil
}

func (c *RedisTenantCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete from redis: %w", err)
	}

	return nil
}

func (c *RedisTenantCache) Close() error {
	return c.client.Close()
}
