package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/junoblue/launch/pkg/database"
	"github.com/junoblue/launch/tenant-service/internal/domain"
)

// GormTenantRepository implements TenantRepository using GORM.
type GormTenantRepository struct {
	db *gorm.DB
}

// NewGormTenantRepository creates a new GORM-based tenant repository.
func NewGormTenantRepository(db *gorm.DB) *GormTenantRepository {
	return &GormTenantRepository{db: db}
}

// Create creates a new tenant.
func (r *GormTenantRepository) Create(ctx context.Context, t *domain.Tenant) error {
	if t.ID == "" {
		return ErrTenantIDRequired
	}
	if t.Status == "" {
		t.Status = domain.StatusActive
	}

	model := domain.TenantToModel(t)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return r.handleError(err)
	}

	t.CreatedAt = model.CreatedAt
	t.UpdatedAt = model.UpdatedAt
	return nil
}

// GetByID retrieves a tenant by ID.
func (r *GormTenantRepository) GetByID(ctx context.Context, id string) (*domain.Tenant, error) {
	return r.first(r.db.WithContext(ctx), "id = ?", id)
}

// GetBySubdomain retrieves a tenant by subdomain.
func (r *GormTenantRepository) GetBySubdomain(ctx context.Context, subdomain string) (*domain.Tenant, error) {
	return r.first(r.db.WithContext(ctx), "subdomain = ?", subdomain)
}

// SubdomainExists reports whether subdomain is taken.
func (r *GormTenantRepository) SubdomainExists(ctx context.Context, subdomain string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.TenantModel{}).
		Where("subdomain = ?", subdomain).
		Count(&n).Error
	return n > 0, err
}

// UpdateSettings replaces the settings columns and returns the updated tenant.
func (r *GormTenantRepository) UpdateSettings(ctx context.Context, id string, s domain.Settings) (*domain.Tenant, error) {
	var updated *domain.Tenant
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&domain.TenantModel{}).
			Where("id = ?", id).
			Updates(map[string]any{
				"theme":    s.Theme,
				"language": s.Language,
				"timezone": s.Timezone,
				"features": database.StringArray(s.Features),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrTenantNotFound
		}

		var err error
		updated, err = r.first(tx, "id = ?", id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// UpdateLogo swaps the logo keys inside a transaction.
func (r *GormTenantRepository) UpdateLogo(ctx context.Context, id, logoKey, thumbKey string) (*domain.Tenant, error) {
	var previous *domain.Tenant
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		previous, err = r.first(tx, "id = ?", id)
		if err != nil {
			return err
		}
		return tx.Model(&domain.TenantModel{}).
			Where("id = ?", id).
			Updates(map[string]any{"logo_key": logoKey, "logo_thumb_key": thumbKey}).Error
	})
	if err != nil {
		return nil, err
	}
	return previous, nil
}

func (r *GormTenantRepository) first(db *gorm.DB, query string, arg any) (*domain.Tenant, error) {
	var model domain.TenantModel
	if err := db.First(&model, query, arg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTenantNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// handleError converts database-specific errors to domain errors.
func (r *GormTenantRepository) handleError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrSubdomainExists
	}

	errStr := err.Error()

	// PostgreSQL, SQLite and MySQL unique constraint violations
	if strings.Contains(errStr, "duplicate key") ||
		strings.Contains(errStr, "UNIQUE constraint") ||
		strings.Contains(errStr, "Duplicate entry") {
		if strings.Contains(errStr, "subdomain") {
			return ErrSubdomainExists
		}
	}

	return err
}
