package repository

import (
	"context"
	"errors"

	"github.com/junoblue/launch/tenant-service/internal/domain"
)

var (
	ErrTenantNotFound   = errors.New("tenant not found")
	ErrSubdomainExists  = errors.New("subdomain already exists")
	ErrTenantIDRequired = errors.New("tenant id is required")
)

// TenantRepository defines the interface for tenant data persistence.
type TenantRepository interface {
	// Create inserts t. The caller assigns t.ID.
	Create(ctx context.Context, t *domain.Tenant) error
	GetByID(ctx context.Context, id string) (*domain.Tenant, error)
	GetBySubdomain(ctx context.Context, subdomain string) (*domain.Tenant, error)
	SubdomainExists(ctx context.Context, subdomain string) (bool, error)
	UpdateSettings(ctx context.Context, id string, settings domain.Settings) (*domain.Tenant, error)
	// UpdateLogo stores the new logo and thumbnail keys and returns the
	// tenant as it was before, so the caller can drop the previous objects.
	UpdateLogo(ctx context.Context, id, logoKey, thumbKey string) (previous *domain.Tenant, err error)
}
