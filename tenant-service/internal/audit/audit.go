package audit

import (
	"context"

	"github.com/junoblue/launch/pkg/log"
)

// Audit actions for tenant-service.
const (
	ActionCreate         = "tenant.create"
	ActionUpdateSettings = "tenant.update_settings"
	ActionUpdateLogo     = "tenant.update_logo"
	ActionOpenSession    = "tenant.open_session"
	ActionRefreshToken   = "tenant.refresh_token"
)

// Field constants for audit entries.
const (
	FieldAction = "action"
	FieldDetail = "detail"
)

// Log emits a structured audit log entry via the context logger.
func Log(ctx context.Context, action, tenantID, userID, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldTenantID, tenantID).
		Str(log.FieldUserID, userID).
		Msg(msg)
}

// LogWithDetail emits an audit log with extra detail field.
func LogWithDetail(ctx context.Context, action, tenantID, userID, detail, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldTenantID, tenantID).
		Str(log.FieldUserID, userID).
		Str(FieldDetail, detail).
		Msg(msg)
}
