package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/junoblue/launch/id-service/internal/generator"
	idgrpc "github.com/junoblue/launch/id-service/internal/grpc"
	"github.com/junoblue/launch/pkg/health"
	"github.com/junoblue/launch/pkg/idrpc"
	"github.com/junoblue/launch/pkg/log"
	"github.com/junoblue/launch/pkg/response"
	"github.com/junoblue/launch/pkg/uild"
)

// GenerateRequest is the body of POST /api/v1/ids. Count defaults to 1.
type GenerateRequest struct {
	Type     string        `json:"type" binding:"required"`
	Format   string        `json:"format"`
	Metadata uild.Metadata `json:"metadata"`
	Count    *int          `json:"count"`
}

type GenerateResponse struct {
	IDs []string `json:"ids"`
}

type ValidateResponse struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

// Handler handles HTTP requests for the id service.
type Handler struct {
	formats *generator.Formats
	health  *health.Checker
}

// NewHandler creates a new HTTP handler.
func NewHandler(formats *generator.Formats, checker *health.Checker) *Handler {
	return &Handler{formats: formats, health: checker}
}

// RegisterRoutes registers all routes.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.health.GinHandler())

	api := r.Group("/api/v1")
	{
		api.POST("/ids", h.Generate)
		api.GET("/ids/:id", h.Parse)
		api.GET("/ids/:id/validate", h.Validate)
		api.GET("/types", h.ListTypes)
	}
}

// Generate mints one or more ids.
func (h *Handler) Generate(c *gin.Context) {
	l := log.Ctx(c.Request.Context())

	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid generate request")
		response.BadRequest(c, err.Error())
		return
	}

	gen, ok := h.generator(c, req.Format)
	if !ok {
		return
	}

	count := 1
	if req.Count != nil {
		count = *req.Count
	}

	ids, err := generator.GenerateBatch(gen, req.Type, count, req.Metadata)
	if err != nil {
		switch {
		case errors.Is(err, uild.ErrUnknownType):
			response.UnknownType(c, err.Error())
		case errors.Is(err, uild.ErrInvalidCount):
			response.BadRequest(c, err.Error())
		default:
			l.Error().Err(err).Msg("generate failed")
			response.InternalError(c, "failed to generate id")
		}
		return
	}

	l.Debug().
		Str(log.FieldEntityType, req.Type).
		Str(log.FieldIDFormat, req.Format).
		Int(log.FieldCount, len(ids)).
		Msg("ids generated")

	response.Created(c, GenerateResponse{IDs: ids})
}

// Validate reports whether the path id is well formed.
func (h *Handler) Validate(c *gin.Context) {
	gen, ok := h.generator(c, c.Query("format"))
	if !ok {
		return
	}

	valid, reason := gen.Validate(c.Param("id"))
	response.Success(c, ValidateResponse{Valid: valid, Reason: reason})
}

// Parse decodes the path id.
func (h *Handler) Parse(c *gin.Context) {
	gen, ok := h.generator(c, c.Query("format"))
	if !ok {
		return
	}

	result, err := gen.Parse(c.Param("id"))
	if err != nil {
		response.InvalidID(c, err.Error())
		return
	}
	response.Success(c, idgrpc.ParseResponse(result))
}

// ListTypes returns the entity type registry and the available formats.
func (h *Handler) ListTypes(c *gin.Context) {
	entries := h.formats.Registry().Entries()
	types := make([]idrpc.EntityType, 0, len(entries))
	for _, e := range entries {
		types = append(types, idrpc.EntityType{Type: e.Type, Prefix: e.Prefix})
	}

	response.Success(c, idrpc.ListTypesResponse{
		Types:         types,
		Formats:       h.formats.Names(),
		DefaultFormat: h.formats.Default(),
	})
}

func (h *Handler) generator(c *gin.Context, format string) (generator.Generator, bool) {
	gen, err := h.formats.Get(format)
	if err != nil {
		response.UnknownType(c, err.Error())
		return nil, false
	}
	return gen, true
}
