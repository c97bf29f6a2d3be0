package handler

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/junoblue/launch/pkg/log"
	"github.com/junoblue/launch/pkg/middleware"
	"github.com/junoblue/launch/tenant-service/internal/stream"
)

// StreamHandler upgrades owner requests to a websocket that receives the
// tenant's events.
type StreamHandler struct {
	hub      *stream.Hub
	cfg      stream.Config
	upgrader websocket.Upgrader
}

// NewStreamHandler creates a stream handler. An empty allowedOrigins
// accepts any origin.
func NewStreamHandler(hub *stream.Hub, cfg stream.Config, allowedOrigins []string) *StreamHandler {
	return &StreamHandler{
		hub: hub,
		cfg: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if len(allowedOrigins) == 0 {
					return true
				}
				return slices.Contains(allowedOrigins, r.Header.Get("Origin"))
			},
		},
	}
}

// ServeEvents handles GET /api/v1/tenants/id/:id/events.
func (s *StreamHandler) ServeEvents(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already answered the request.
		l := log.Ctx(c.Request.Context())
		l.Warn().Err(err).Str(log.FieldTenantID, c.Param("id")).Msg("websocket upgrade failed")
		return
	}

	client := stream.NewClient(s.hub, conn, c.Param("id"), middleware.GetUserID(c), s.cfg)
	go client.Run()
}
