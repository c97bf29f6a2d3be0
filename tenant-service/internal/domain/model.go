package domain

import (
	"time"

	"github.com/junoblue/launch/pkg/database"
)

// TenantModel is the GORM model for tenants table.
type TenantModel struct {
	ID           string               `gorm:"type:varchar(64);primaryKey"`
	Name         string               `gorm:"type:varchar(100);not null"`
	Subdomain    string               `gorm:"type:varchar(63);uniqueIndex;not null"`
	Status       string               `gorm:"type:varchar(16);not null;default:active"`
	OwnerID      string               `gorm:"type:varchar(64);index;not null"`
	Theme        string               `gorm:"type:varchar(16)"`
	Language     string               `gorm:"type:varchar(16)"`
	Timezone     string               `gorm:"type:varchar(64)"`
	Features     database.StringArray `gorm:"type:text"`
	LogoKey      string               `gorm:"type:varchar(255)"`
	LogoThumbKey string               `gorm:"type:varchar(255)"`
	CreatedAt    time.Time            `gorm:"autoCreateTime"`
	UpdatedAt    time.Time            `gorm:"autoUpdateTime"`
}

// TableName specifies the table name for TenantModel.
func (TenantModel) TableName() string {
	return "tenants"
}

// ToDomain converts TenantModel to domain Tenant.
func (m *TenantModel) ToDomain() *Tenant {
	features := []string(m.Features)
	if features == nil {
		features = []string{}
	}
	return &Tenant{
		ID:        m.ID,
		Name:      m.Name,
		Subdomain: m.Subdomain,
		Status:    Status(m.Status),
		OwnerID:   m.OwnerID,
		Settings: Settings{
			Theme:    m.Theme,
			Language: m.Language,
			Timezone: m.Timezone,
			Features: features,
		},
		LogoKey:      m.LogoKey,
		LogoThumbKey: m.LogoThumbKey,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// TenantToModel converts domain Tenant to TenantModel.
func TenantToModel(t *Tenant) *TenantModel {
	return &TenantModel{
		ID:           t.ID,
		Name:         t.Name,
		Subdomain:    t.Subdomain,
		Status:       string(t.Status),
		OwnerID:      t.OwnerID,
		Theme:        t.Settings.Theme,
		Language:     t.Settings.Language,
		Timezone:     t.Settings.Timezone,
		Features:     database.StringArray(t.Settings.Features),
		LogoKey:      t.LogoKey,
		LogoThumbKey: t.LogoThumbKey,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}
