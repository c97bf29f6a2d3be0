package service

import (
	"context"
	"io"

	"github.com/junoblue/launch/pkg/jwt"
	"github.com/junoblue/launch/tenant-service/internal/domain"
)

// TenantService defines the interface for tenant business logic.
type TenantService interface {
	// CreateTenant registers a tenant and its owner and signs the owner in.
	CreateTenant(ctx context.Context, req *domain.CreateTenantRequest) (*domain.CreateTenantResponse, error)
	GetBySubdomain(ctx context.Context, subdomain string) (*domain.TenantResponse, error)
	GetByID(ctx context.Context, tenantID string) (*domain.TenantResponse, error)
	CheckSubdomain(ctx context.Context, subdomain string) (*domain.SubdomainAvailability, error)
	UpdateSettings(ctx context.Context, tenantID, userID string, req *domain.UpdateSettingsRequest) (*domain.TenantResponse, error)
	// UploadLogo stores r as the tenant's logo. size is -1 when unknown.
	UploadLogo(ctx context.Context, tenantID, userID string, r io.Reader, size int64, contentType string) (*domain.TenantResponse, error)
	OpenSession(ctx context.Context, tenantID, userID string) (*domain.SessionResponse, error)
	RefreshToken(ctx context.Context, req *domain.RefreshTokenRequest) (*domain.AuthResponse, error)
	// InvalidateTenant drops cached copies of a tenant.
	InvalidateTenant(ctx context.Context, tenantID, subdomain string) error
}

// TokenIssuer is the part of jwt.Manager the service uses.
type TokenIssuer interface {
	GenerateTokenPair(userID, tenantID string, roles []string) (*jwt.TokenPair, error)
	ValidateToken(token string) (*jwt.Claims, error)
	RefreshTokens(refreshToken string) (*jwt.TokenPair, error)
}
