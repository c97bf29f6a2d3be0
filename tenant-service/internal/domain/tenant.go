package domain

import (
	"time"
)

// Status is the lifecycle state of a tenant.
type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusSuspended Status = "suspended"
)

// Modules a tenant can switch on.
const (
	FeatureEcommerce  = "ecommerce"
	FeatureCRM        = "crm"
	FeatureERP        = "erp"
	FeatureAccounting = "accounting"
)

// AllFeatures lists every module, in display order.
var AllFeatures = []string{FeatureEcommerce, FeatureCRM, FeatureERP, FeatureAccounting}

// Themes accepted in settings.
const (
	ThemeLight  = "light"
	ThemeDark   = "dark"
	ThemeSystem = "system"
)

// Settings is the per-tenant presentation and module configuration.
type Settings struct {
	Theme    string   `json:"theme"`
	Language string   `json:"language"`
	Timezone string   `json:"timezone"`
	Features []string `json:"features"`
}

// DefaultSettings is what a new tenant starts with: every module enabled.
func DefaultSettings() Settings {
	return Settings{
		Theme:    ThemeSystem,
		Language: "en",
		Timezone: "UTC",
		Features: append([]string(nil), AllFeatures...),
	}
}

// Tenant represents a tenant entity. ID is a tenant UILD and OwnerID a
// user UILD.
type Tenant struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Subdomain    string    `json:"subdomain"`
	Status       Status    `json:"status"`
	OwnerID      string    `json:"owner_id"`
	Settings     Settings  `json:"settings"`
	LogoKey      string    `json:"logo_key,omitempty"`
	LogoThumbKey string    `json:"logo_thumb_key,omitempty"` // raster logos only
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CreateTenantRequest represents a tenant sign-up.
type CreateTenantRequest struct {
	Name      string `json:"name" binding:"required,max=100"`
	Subdomain string `json:"subdomain" binding:"required"`
}

// UpdateSettingsRequest is a partial settings update; nil fields are kept.
type UpdateSettingsRequest struct {
	Theme    *string   `json:"theme" binding:"omitempty,oneof=light dark system"`
	Language *string   `json:"language" binding:"omitempty,min=2,max=16"`
	Timezone *string   `json:"timezone"`
	Features *[]string `json:"features"`
}

// RefreshTokenRequest represents a refresh token request.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// TenantResponse represents a tenant in API responses.
type TenantResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Subdomain    string    `json:"subdomain"`
	Status       Status    `json:"status"`
	OwnerID      string    `json:"owner_id"`
	Settings     Settings  `json:"settings"`
	LogoURL      string    `json:"logo_url,omitempty"`
	LogoThumbURL string    `json:"logo_thumb_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ToResponse converts Tenant to TenantResponse without the logo URLs.
// The service layer resolves them from the stored keys.
func (t *Tenant) ToResponse() TenantResponse {
	return TenantResponse{
		ID:        t.ID,
		Name:      t.Name,
		Subdomain: t.Subdomain,
		Status:    t.Status,
		OwnerID:   t.OwnerID,
		Settings:  t.Settings,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

// AuthResponse carries the owner's tokens.
type AuthResponse struct {
	TenantID     string `json:"tenant_id"`
	UserID       string `json:"user_id"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"`
}

// CreateTenantResponse is returned by sign-up.
type CreateTenantResponse struct {
	Tenant TenantResponse `json:"tenant"`
	Auth   AuthResponse   `json:"auth"`
}

// SubdomainAvailability answers an availability check.
type SubdomainAvailability struct {
	Subdomain string `json:"subdomain"`
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

// SessionResponse is returned when a tenant session is opened.
type SessionResponse struct {
	SessionID string `json:"session_id"`
	TenantID  string `json:"tenant_id"`
	UserID    string `json:"user_id"`
}
