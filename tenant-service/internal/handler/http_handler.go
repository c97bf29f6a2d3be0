package handler

import (
	"errors"
	"fmt"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/junoblue/launch/pkg/health"
	"github.com/junoblue/launch/pkg/log"
	"github.com/junoblue/launch/pkg/middleware"
	"github.com/junoblue/launch/pkg/response"
	"github.com/junoblue/launch/tenant-service/internal/domain"
	"github.com/junoblue/launch/tenant-service/internal/repository"
	"github.com/junoblue/launch/tenant-service/internal/service"
)

// DefaultMaxLogoBytes caps logo uploads when no limit is configured.
const DefaultMaxLogoBytes = 2 << 20

// Handler handles HTTP requests for tenant service.
type Handler struct {
	tenantService  service.TenantService
	authMiddleware *middleware.AuthMiddleware
	health         *health.Checker
	maxLogoBytes   int64
	events         *StreamHandler
}

// NewHandler creates a new HTTP handler.
func NewHandler(tenantService service.TenantService, authMiddleware *middleware.AuthMiddleware, checker *health.Checker, maxLogoBytes int64) *Handler {
	if maxLogoBytes <= 0 {
		maxLogoBytes = DefaultMaxLogoBytes
	}
	return &Handler{
		tenantService:  tenantService,
		authMiddleware: authMiddleware,
		health:         checker,
		maxLogoBytes:   maxLogoBytes,
	}
}

// WithEventStream enables the owner websocket at /tenants/id/:id/events.
func (h *Handler) WithEventStream(events *StreamHandler) *Handler {
	h.events = events
	return h
}

// RegisterRoutes registers all routes.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.health.GinHandler())

	api := r.Group("/api/v1")
	{
		// Public routes
		api.POST("/tenants", h.CreateTenant)
		api.GET("/tenants/:subdomain", h.GetBySubdomain)
		api.GET("/tenants/id/:id", h.GetByID)
		api.GET("/subdomains/:subdomain", h.CheckSubdomain)
		api.POST("/auth/refresh", h.RefreshToken)

		// Owner routes
		owned := api.Group("/tenants/id/:id")
		owned.Use(h.authMiddleware.RequireAuth(), h.authMiddleware.RequireTenant("id"))
		{
			owned.PATCH("/settings", h.UpdateSettings)
			owned.PUT("/logo", h.UploadLogo)
			owned.POST("/sessions", h.OpenSession)
			if h.events != nil {
				owned.GET("/events", h.events.ServeEvents)
			}
		}
	}
}

// CreateTenant handles tenant sign-up.
func (h *Handler) CreateTenant(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	var req domain.CreateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid create tenant request")
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.tenantService.CreateTenant(ctx, &req)
	if err != nil {
		h.fail(c, err, "create tenant")
		return
	}

	response.Created(c, result)
}

// GetBySubdomain returns a tenant by subdomain.
func (h *Handler) GetBySubdomain(c *gin.Context) {
	tenant, err := h.tenantService.GetBySubdomain(c.Request.Context(), c.Param("subdomain"))
	if err != nil {
		h.fail(c, err, "get tenant")
		return
	}
	response.Success(c, tenant)
}

// GetByID returns a tenant by id.
func (h *Handler) GetByID(c *gin.Context) {
	tenant, err := h.tenantService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, "get tenant")
		return
	}
	response.Success(c, tenant)
}

// CheckSubdomain reports whether a subdomain can be registered.
func (h *Handler) CheckSubdomain(c *gin.Context) {
	result, err := h.tenantService.CheckSubdomain(c.Request.Context(), c.Param("subdomain"))
	if err != nil {
		h.fail(c, err, "check subdomain")
		return
	}
	response.Success(c, result)
}

// RefreshToken handles token refresh.
func (h *Handler) RefreshToken(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	var req domain.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid refresh token request")
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.tenantService.RefreshToken(ctx, &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Unauthorized(c, "invalid or expired refresh token")
			return
		}
		h.fail(c, err, "refresh token")
		return
	}

	response.Success(c, result)
}

// UpdateSettings applies a partial settings update.
func (h *Handler) UpdateSettings(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	var req domain.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid update settings request")
		response.BadRequest(c, err.Error())
		return
	}

	tenant, err := h.tenantService.UpdateSettings(ctx, c.Param("id"), middleware.GetUserID(c), &req)
	if err != nil {
		h.fail(c, err, "update settings")
		return
	}
	response.Success(c, tenant)
}

// UploadLogo stores the raw request body as the tenant logo. The
// Content-Type header names the image type.
func (h *Handler) UploadLogo(c *gin.Context) {
	ctx := c.Request.Context()

	contentType, _, err := mime.ParseMediaType(c.GetHeader("Content-Type"))
	if err != nil {
		response.UnsupportedMediaType(c, "missing or malformed Content-Type")
		return
	}
	if c.Request.ContentLength > h.maxLogoBytes {
		response.PayloadTooLarge(c, fmt.Sprintf("logo exceeds %d bytes", h.maxLogoBytes))
		return
	}

	body := http.MaxBytesReader(c.Writer, c.Request.Body, h.maxLogoBytes)
	tenant, err := h.tenantService.UploadLogo(ctx, c.Param("id"), middleware.GetUserID(c), body, c.Request.ContentLength, contentType)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.PayloadTooLarge(c, fmt.Sprintf("logo exceeds %d bytes", h.maxLogoBytes))
			return
		}
		h.fail(c, err, "upload logo")
		return
	}
	response.Success(c, tenant)
}

// OpenSession mints a tenant session id for the caller.
func (h *Handler) OpenSession(c *gin.Context) {
	session, err := h.tenantService.OpenSession(c.Request.Context(), c.Param("id"), middleware.GetUserID(c))
	if err != nil {
		h.fail(c, err, "open session")
		return
	}
	response.Created(c, session)
}

// fail maps service errors onto the response envelope.
func (h *Handler) fail(c *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, service.ErrInvalidTenantID):
		response.InvalidID(c, err.Error())
	case errors.Is(err, service.ErrInvalidSubdomain),
		errors.Is(err, service.ErrReservedSubdomain),
		errors.Is(err, service.ErrInvalidSettings),
		errors.Is(err, service.ErrInvalidLogo):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrUnsupportedLogoType):
		response.UnsupportedMediaType(c, err.Error())
	case errors.Is(err, service.ErrTenantNotFound):
		response.NotFound(c, "tenant not found")
	case errors.Is(err, repository.ErrSubdomainExists):
		response.Conflict(c, "subdomain already exists")
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Unauthorized(c, "invalid credentials")
	default:
		l := log.Ctx(c.Request.Context())
		l.Error().Err(err).Str(log.FieldTenantID, c.Param("id")).Msg(action + " failed")
		response.InternalError(c, "failed to "+action)
	}
}
