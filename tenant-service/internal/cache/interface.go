package cache

import (
	"context"
	"errors"
	"time"

	"github.com/junoblue/launch/tenant-service/internal/domain"
)

var ErrCacheMiss = errors.New("cache miss")

// TenantCache holds tenant records for the hot lookup paths. Misses return
// ErrCacheMiss.
type TenantCache interface {
	Get(ctx context.Context, key string) (*domain.Tenant, error)
	Set(ctx context.Context, key string, tenant *domain.Tenant, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	BuildKeyByID(tenantID string) string
	BuildKeyBySubdomain(subdomain string) string
	Close() error
}

// NopCache never stores anything. Used when caching is disabled.
type NopCache struct{}

func (NopCache) Get(context.Context, string) (*domain.Tenant, error) {
	return nil, ErrCacheMiss
}

func (NopCache) Set(context.Context, string, *domain.Tenant, time.Duration) error { return nil }
func (NopCache) Delete(context.Context, ...string) error                          { return nil }
func (NopCache) BuildKeyByID(tenantID string) string                              { return tenantID }
func (NopCache) BuildKeyBySubdomain(subdomain string) string                      { return subdomain }
func (NopCache) Close() error                                                     { return nil }
