package domain

// EventEntity names the tenant event streams: "tenant:<id>:events".
const EventEntity = "tenant"

// Event types published on a tenant's channel.
const (
	EventCreated         = "tenant.created"
	EventSettingsUpdated = "tenant.settings_updated"
	EventLogoUpdated     = "tenant.logo_updated"
)

// CreatedPayload is the payload of EventCreated.
type CreatedPayload struct {
	Name      string `json:"name"`
	Subdomain string `json:"subdomain"`
	OwnerID   string `json:"owner_id"`
}

// SettingsUpdatedPayload is the payload of EventSettingsUpdated.
type SettingsUpdatedPayload struct {
	Subdomain string   `json:"subdomain"`
	Settings  Settings `json:"settings"`
}

// LogoUpdatedPayload is the payload of EventLogoUpdated.
type LogoUpdatedPayload struct {
	Subdomain string `json:"subdomain"`
	LogoKey   string `json:"logo_key"`
}
