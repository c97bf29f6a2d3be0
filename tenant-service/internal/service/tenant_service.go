package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"time"
	_ "time/tzdata" // timezone validation on hosts without zoneinfo

	"github.com/junoblue/launch/pkg/jwt"
	"github.com/junoblue/launch/pkg/log"
	"github.com/junoblue/launch/pkg/pubsub"
	"github.com/junoblue/launch/pkg/storage"
	"github.com/junoblue/launch/pkg/uild"
	"github.com/junoblue/launch/tenant-service/internal/audit"
	"github.com/junoblue/launch/tenant-service/internal/cache"
	"github.com/junoblue/launch/tenant-service/internal/domain"
	"github.com/junoblue/launch/tenant-service/internal/repository"
	"github.com/junoblue/launch/tenant-service/internal/thumbnail"
)

var (
	ErrTenantNotFound      = errors.New("tenant not found")
	ErrInvalidSettings     = errors.New("invalid settings")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUnsupportedLogoType = errors.New("unsupported logo content type")
	ErrInvalidLogo         = errors.New("invalid logo image")
)

// RoleOwner is granted to the user who registers a tenant.
const RoleOwner = "owner"

const logoURLExpiry = time.Hour

var logoContentTypes = map[string]struct{}{
	"image/png":     {},
	"image/jpeg":    {},
	"image/webp":    {},
	"image/svg+xml": {},
}

// Deps collects what the tenant service talks to. Events may be nil, in
// which case nothing is published.
type Deps struct {
	Repo     repository.TenantRepository
	Cache    cache.TenantCache
	IDs      IDSource
	Tokens   TokenIssuer
	Assets   storage.Storage
	Events   pubsub.Publisher
	CacheTTL time.Duration
}

// tenantServiceImpl implements TenantService interface.
type tenantServiceImpl struct {
	Deps
}

// NewTenantService creates a new tenant service.
func NewTenantService(deps Deps) TenantService {
	if deps.Cache == nil {
		deps.Cache = cache.NopCache{}
	}
	if deps.IDs == nil {
		deps.IDs = NewLocalIDs(nil)
	}
	return &tenantServiceImpl{Deps: deps}
}

// LogoKey is where a tenant's logo object lives.
func LogoKey(tenantID, documentID string) string {
	return "tenants/" + tenantID + "/" + documentID
}

// ThumbKey is where the thumbnail of the logo at logoKey lives.
func ThumbKey(logoKey string) string {
	return logoKey + ".thumb.png"
}

// CreateTenant registers a new tenant.
func (s *tenantServiceImpl) CreateTenant(ctx context.Context, req *domain.CreateTenantRequest) (*domain.CreateTenantResponse, error) {
	l := log.Ctx(ctx)

	subdomain := NormalizeSubdomain(req.Subdomain)
	if err := CheckSubdomain(subdomain); err != nil {
		return nil, err
	}

	tenantID, err := s.IDs.NewID(ctx, uild.TypeTenant, uild.Metadata{"subdomain": subdomain})
	if err != nil {
		l.Error().Err(err).Msg("failed to mint tenant id")
		return nil, err
	}
	ownerID, err := s.IDs.NewID(ctx, uild.TypeUser, uild.Metadata{"tenant": tenantID, "role": RoleOwner})
	if err != nil {
		l.Error().Err(err).Msg("failed to mint owner id")
		return nil, err
	}

	tenant := &domain.Tenant{
		ID:        tenantID,
		Name:      req.Name,
		Subdomain: subdomain,
		Status:    domain.StatusActive,
		OwnerID:   ownerID,
		Settings:  domain.DefaultSettings(),
	}
	if err := s.Repo.Create(ctx, tenant); err != nil {
		if !errors.Is(err, repository.ErrSubdomainExists) {
			l.Error().Err(err).Str(log.FieldTenantID, tenantID).Msg("failed to create tenant")
		}
		return nil, err
	}

	tokens, err := s.Tokens.GenerateTokenPair(ownerID, tenantID, []string{RoleOwner})
	if err != nil {
		l.Error().Err(err).Str(log.FieldTenantID, tenantID).Msg("failed to generate tokens after create")
		return nil, err
	}

	s.publish(ctx, tenantID, domain.EventCreated, domain.CreatedPayload{
		Name:      tenant.Name,
		Subdomain: tenant.Subdomain,
		OwnerID:   ownerID,
	})
	audit.LogWithDetail(ctx, audit.ActionCreate, tenantID, ownerID, subdomain, "tenant created")

	return &domain.CreateTenantResponse{
		Tenant: s.toResponse(ctx, tenant),
		Auth:   authResponse(tenantID, ownerID, tokens),
	}, nil
}

// GetBySubdomain looks a tenant up by subdomain, cache first.
func (s *tenantServiceImpl) GetBySubdomain(ctx context.Context, subdomain string) (*domain.TenantResponse, error) {
	subdomain = NormalizeSubdomain(subdomain)
	if err := CheckSubdomain(subdomain); err != nil {
		if errors.Is(err, ErrReservedSubdomain) {
			return nil, ErrTenantNotFound
		}
		return nil, err
	}

	tenant, err := s.cached(ctx, s.Cache.BuildKeyBySubdomain(subdomain), func() (*domain.Tenant, error) {
		return s.Repo.GetBySubdomain(ctx, subdomain)
	})
	if err != nil {
		return nil, err
	}

	resp := s.toResponse(ctx, tenant)
	return &resp, nil
}

// GetByID looks a tenant up by its UILD.
func (s *tenantServiceImpl) GetByID(ctx context.Context, tenantID string) (*domain.TenantResponse, error) {
	tenant, err := s.getTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	resp := s.toResponse(ctx, tenant)
	return &resp, nil
}

// CheckSubdomain reports whether subdomain could be registered right now.
func (s *tenantServiceImpl) CheckSubdomain(ctx context.Context, subdomain string) (*domain.SubdomainAvailability, error) {
	subdomain = NormalizeSubdomain(subdomain)
	result := &domain.SubdomainAvailability{Subdomain: subdomain}

	if err := CheckSubdomain(subdomain); err != nil {
		var se *SubdomainError
		if errors.As(err, &se) {
			result.Reason = se.Reason
		}
		return result, nil
	}

	taken, err := s.Repo.SubdomainExists(ctx, subdomain)
	if err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Msg("failed to check subdomain")
		return nil, err
	}
	if taken {
		result.Reason = "subdomain is already taken"
		return result, nil
	}

	result.Available = true
	return result, nil
}

// UpdateSettings merges req into the tenant's settings.
func (s *tenantServiceImpl) UpdateSettings(ctx context.Context, tenantID, userID string, req *domain.UpdateSettingsRequest) (*domain.TenantResponse, error) {
	l := log.Ctx(ctx)

	current, err := s.getTenantFresh(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	settings, err := mergeSettings(current.Settings, req)
	if err != nil {
		return nil, err
	}

	updated, err := s.Repo.UpdateSettings(ctx, tenantID, settings)
	if err != nil {
		if errors.Is(err, repository.ErrTenantNotFound) {
			return nil, ErrTenantNotFound
		}
		l.Error().Err(err).Str(log.FieldTenantID, tenantID).Msg("failed to update settings")
		return nil, err
	}

	s.evict(ctx, updated)
	s.publish(ctx, tenantID, domain.EventSettingsUpdated, domain.SettingsUpdatedPayload{
		Subdomain: updated.Subdomain,
		Settings:  updated.Settings,
	})
	audit.Log(ctx, audit.ActionUpdateSettings, tenantID, userID, "tenant settings updated")

	resp := s.toResponse(ctx, updated)
	return &resp, nil
}

// mergeSettings applies the non-nil fields of req to base and validates
// the result.
func mergeSettings(base domain.Settings, req *domain.UpdateSettingsRequest) (domain.Settings, error) {
	out := base
	if req.Theme != nil {
		switch *req.Theme {
		case domain.ThemeLight, domain.ThemeDark, domain.ThemeSystem:
			out.Theme = *req.Theme
		default:
			return base, fmt.Errorf("%w: unknown theme %q", ErrInvalidSettings, *req.Theme)
		}
	}
	if req.Language != nil {
		if *req.Language == "" {
			return base, fmt.Errorf("%w: language is empty", ErrInvalidSettings)
		}
		out.Language = *req.Language
	}
	if req.Timezone != nil {
		if _, err := time.LoadLocation(*req.Timezone); err != nil || *req.Timezone == "" {
			return base, fmt.Errorf("%w: unknown timezone %q", ErrInvalidSettings, *req.Timezone)
		}
		out.Timezone = *req.Timezone
	}
	if req.Features != nil {
		for _, f := range *req.Features {
			if !slices.Contains(domain.AllFeatures, f) {
				return base, fmt.Errorf("%w: unknown feature %q", ErrInvalidSettings, f)
			}
		}
		// Keep the canonical order and drop duplicates.
		features := make([]string, 0, len(*req.Features))
		for _, f := range domain.AllFeatures {
			if slices.Contains(*req.Features, f) {
				features = append(features, f)
			}
		}
		out.Features = features
	}
	return out, nil
}

// UploadLogo stores a new logo under a fresh document id and drops the
// previous objects. PNG and JPEG logos also get a square thumbnail; they
// are buffered in memory, so callers bound r.
func (s *tenantServiceImpl) UploadLogo(ctx context.Context, tenantID, userID string, r io.Reader, size int64, contentType string) (*domain.TenantResponse, error) {
	l := log.Ctx(ctx)

	if _, ok := logoContentTypes[contentType]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLogoType, contentType)
	}
	if _, err := s.getTenantFresh(ctx, tenantID); err != nil {
		return nil, err
	}
	if s.Assets == nil {
		return nil, errors.New("logo storage is not configured")
	}

	var thumb []byte
	if thumbnail.Supported(contentType) {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("read logo: %w", err)
		}
		thumb, err = thumbnail.Render(data, thumbnail.DefaultSize)
		if err != nil {
			if errors.Is(err, thumbnail.ErrUndecodable) {
				return nil, fmt.Errorf("%w: not a valid %s", ErrInvalidLogo, contentType)
			}
			return nil, err
		}
		r, size = bytes.NewReader(data), int64(len(data))
	}

	docID, err := s.IDs.NewID(ctx, uild.TypeDocument, uild.Metadata{"tenant": tenantID, "content_type": contentType})
	if err != nil {
		l.Error().Err(err).Msg("failed to mint document id")
		return nil, err
	}
	key := LogoKey(tenantID, docID)

	if err := s.Assets.Write(ctx, key, r, size, contentType); err != nil {
		l.Error().Err(err).Str(log.FieldTenantID, tenantID).Msg("failed to store logo")
		return nil, err
	}
	written := []string{key}

	thumbKey := ""
	if thumb != nil {
		thumbKey = ThumbKey(key)
		if err := s.Assets.Write(ctx, thumbKey, bytes.NewReader(thumb), int64(len(thumb)), thumbnail.ContentType); err != nil {
			l.Error().Err(err).Str(log.FieldTenantID, tenantID).Msg("failed to store logo thumbnail")
			s.removeAssets(ctx, written...)
			return nil, err
		}
		written = append(written, thumbKey)
	}

	previous, err := s.Repo.UpdateLogo(ctx, tenantID, key, thumbKey)
	if err != nil {
		s.removeAssets(ctx, written...)
		if errors.Is(err, repository.ErrTenantNotFound) {
			return nil, ErrTenantNotFound
		}
		l.Error().Err(err).Str(log.FieldTenantID, tenantID).Msg("failed to update logo")
		return nil, err
	}
	s.removeAssets(ctx, previous.LogoKey, previous.LogoThumbKey)

	updated, err := s.getTenantFresh(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	s.evict(ctx, updated)
	s.publish(ctx, tenantID, domain.EventLogoUpdated, domain.LogoUpdatedPayload{
		Subdomain: updated.Subdomain,
		LogoKey:   key,
	})
	audit.LogWithDetail(ctx, audit.ActionUpdateLogo, tenantID, userID, key, "tenant logo updated")

	resp := s.toResponse(ctx, updated)
	return &resp, nil
}

// OpenSession mints a session id bound to the tenant.
func (s *tenantServiceImpl) OpenSession(ctx context.Context, tenantID, userID string) (*domain.SessionResponse, error) {
	tenant, err := s.getTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if tenant.Status != domain.StatusActive {
		return nil, fmt.Errorf("%w: tenant is %s", ErrTenantNotFound, tenant.Status)
	}

	sessionID, err := s.IDs.NewID(ctx, uild.TypeSession, uild.Metadata{"tenant": tenantID, "type": "tenant"})
	if err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Msg("failed to mint session id")
		return nil, err
	}

	audit.LogWithDetail(ctx, audit.ActionOpenSession, tenantID, userID, sessionID, "tenant session opened")

	return &domain.SessionResponse{SessionID: sessionID, TenantID: tenantID, UserID: userID}, nil
}

// RefreshToken trades a refresh token for a new pair as long as the
// tenant still exists and is active.
func (s *tenantServiceImpl) RefreshToken(ctx context.Context, req *domain.RefreshTokenRequest) (*domain.AuthResponse, error) {
	l := log.Ctx(ctx)

	claims, err := s.Tokens.ValidateToken(req.RefreshToken)
	if err != nil || claims.Type != jwt.TypeRefresh {
		l.Warn().Err(err).Msg("rejected refresh token")
		return nil, ErrInvalidCredentials
	}

	tenant, err := s.getTenant(ctx, claims.TenantID)
	if err != nil {
		if errors.Is(err, ErrTenantNotFound) || errors.Is(err, ErrInvalidTenantID) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if tenant.Status != domain.StatusActive {
		return nil, ErrInvalidCredentials
	}

	pair, err := s.Tokens.RefreshTokens(req.RefreshToken)
	if err != nil {
		l.Warn().Err(err).Msg("failed to refresh token")
		return nil, ErrInvalidCredentials
	}

	audit.Log(ctx, audit.ActionRefreshToken, claims.TenantID, claims.UserID, "token refreshed")

	resp := authResponse(claims.TenantID, claims.UserID, pair)
	return &resp, nil
}

// InvalidateTenant drops the id and subdomain cache entries.
func (s *tenantServiceImpl) InvalidateTenant(ctx context.Context, tenantID, subdomain string) error {
	keys := []string{s.Cache.BuildKeyByID(tenantID)}
	if subdomain != "" {
		keys = append(keys, s.Cache.BuildKeyBySubdomain(subdomain))
	}
	return s.Cache.Delete(ctx, keys...)
}

// getTenant validates the id and reads through the cache.
func (s *tenantServiceImpl) getTenant(ctx context.Context, tenantID string) (*domain.Tenant, error) {
	if err := CheckTenantID(tenantID); err != nil {
		return nil, err
	}
	return s.cached(ctx, s.Cache.BuildKeyByID(tenantID), func() (*domain.Tenant, error) {
		return s.Repo.GetByID(ctx, tenantID)
	})
}

// getTenantFresh validates the id and skips the cache; writes start from
// the stored row.
func (s *tenantServiceImpl) getTenantFresh(ctx context.Context, tenantID string) (*domain.Tenant, error) {
	if err := CheckTenantID(tenantID); err != nil {
		return nil, err
	}
	tenant, err := s.Repo.GetByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, repository.ErrTenantNotFound) {
			return nil, ErrTenantNotFound
		}
		l := log.Ctx(ctx)
		l.Error().Err(err).Str(log.FieldTenantID, tenantID).Msg("failed to get tenant")
		return nil, err
	}
	return tenant, nil
}

// cached returns the entry under key or loads and stores it. Cache
// failures are logged and otherwise ignored.
func (s *tenantServiceImpl) cached(ctx context.Context, key string, load func() (*domain.Tenant, error)) (*domain.Tenant, error) {
	l := log.Ctx(ctx)

	tenant, err := s.Cache.Get(ctx, key)
	if err == nil {
		return tenant, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		l.Warn().Err(err).Str("key", key).Msg("tenant cache read failed")
	}

	tenant, err = load()
	if err != nil {
		if errors.Is(err, repository.ErrTenantNotFound) {
			return nil, ErrTenantNotFound
		}
		l.Error().Err(err).Str("key", key).Msg("failed to load tenant")
		return nil, err
	}

	if err := s.Cache.Set(ctx, key, tenant, s.CacheTTL); err != nil {
		l.Warn().Err(err).Str("key", key).Msg("tenant cache write failed")
	}
	return tenant, nil
}

func (s *tenantServiceImpl) evict(ctx context.Context, t *domain.Tenant) {
	if err := s.InvalidateTenant(ctx, t.ID, t.Subdomain); err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Str(log.FieldTenantID, t.ID).Msg("tenant cache eviction failed")
	}
}

// publish sends an event on the tenant's channel. Delivery is best effort.
func (s *tenantServiceImpl) publish(ctx context.Context, tenantID, eventType string, payload any) {
	if s.Events == nil {
		return
	}
	l := log.Ctx(ctx)

	event, err := pubsub.NewEvent(eventType, tenantID, payload)
	if err != nil {
		l.Error().Err(err).Str("event_type", eventType).Msg("failed to build tenant event")
		return
	}
	if err := s.Events.Publish(ctx, pubsub.Channel(domain.EventEntity, tenantID), event); err != nil {
		l.Warn().Err(err).Str("event_type", eventType).Str(log.FieldTenantID, tenantID).Msg("failed to publish tenant event")
	}
}

// removeAssets deletes objects that are no longer referenced. Empty keys
// are skipped and failures only logged.
func (s *tenantServiceImpl) removeAssets(ctx context.Context, keys ...string) {
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := s.Assets.Delete(ctx, key); err != nil {
			l := log.Ctx(ctx)
			l.Warn().Err(err).Str("key", key).Msg("failed to delete logo object")
		}
	}
}

func (s *tenantServiceImpl) toResponse(ctx context.Context, t *domain.Tenant) domain.TenantResponse {
	resp := t.ToResponse()
	if s.Assets == nil {
		return resp
	}
	resp.LogoURL = s.assetURL(ctx, t.LogoKey)
	resp.LogoThumbURL = s.assetURL(ctx, t.LogoThumbKey)
	return resp
}

func (s *tenantServiceImpl) assetURL(ctx context.Context, key string) string {
	if key == "" {
		return ""
	}
	url, err := s.Assets.GetURL(ctx, key, logoURLExpiry)
	if err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Str("key", key).Msg("failed to resolve logo url")
	}
	return url
}
