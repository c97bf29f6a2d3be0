package consumer

import (
	"context"

	"github.com/junoblue/launch/pkg/log"
	"github.com/junoblue/launch/pkg/pubsub"
	"github.com/junoblue/launch/tenant-service/internal/domain"
)

// Invalidator drops cached tenants.
type Invalidator interface {
	InvalidateTenant(ctx context.Context, tenantID, subdomain string) error
}

// CacheInvalidator evicts the cache entries of tenants changed by any
// replica.
type CacheInvalidator struct {
	target Invalidator
}

// NewCacheInvalidator creates an invalidator that evicts through target.
func NewCacheInvalidator(target Invalidator) *CacheInvalidator {
	return &CacheInvalidator{target: target}
}

// HandleEvent evicts on settings and logo changes and ignores the rest.
func (ci *CacheInvalidator) HandleEvent(ctx context.Context, ev *pubsub.Event) {
	l := log.L()

	var subdomain string
	switch ev.Type {
	case domain.EventSettingsUpdated:
		var p domain.SettingsUpdatedPayload
		if err := ev.UnmarshalPayload(&p); err != nil {
			l.Warn().Err(err).Str("event_type", ev.Type).Msg("malformed tenant event")
			return
		}
		subdomain = p.Subdomain
	case domain.EventLogoUpdated:
		var p domain.LogoUpdatedPayload
		if err := ev.UnmarshalPayload(&p); err != nil {
			l.Warn().Err(err).Str("event_type", ev.Type).Msg("malformed tenant event")
			return
		}
		subdomain = p.Subdomain
	default:
		return
	}

	if err := ci.target.InvalidateTenant(ctx, ev.Subject, subdomain); err != nil {
		l.Error().Err(err).Str(log.FieldTenantID, ev.Subject).Msg("failed to invalidate tenant cache")
		return
	}
	l.Debug().Str(log.FieldTenantID, ev.Subject).Str("event_type", ev.Type).Msg("tenant cache invalidated")
}
