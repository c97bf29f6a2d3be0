package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/junoblue/launch/pkg/jwt"
	"github.com/junoblue/launch/pkg/log"
	"github.com/junoblue/launch/pkg/response"
)

const (
	// UserIDKey and TenantIDKey match the log field names so the request
	// log picks the caller up.
	UserIDKey     = log.FieldUserID
	TenantIDKey   = log.FieldTenantID
	RolesKey      = "roles"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// TokenValidator verifies access tokens.
type TokenValidator interface {
	ValidateAccessToken(token string) (*jwt.Claims, error)
}

// AuthMiddleware validates bearer tokens locally.
type AuthMiddleware struct {
	validator TokenValidator
}

// NewAuthMiddleware creates a new auth middleware.
func NewAuthMiddleware(validator TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{validator: validator}
}

// RequireAuth returns a Gin middleware that validates JWT tokens.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" {
			response.Unauthorized(c, "missing authorization header")
			return
		}
		if !strings.HasPrefix(authHeader, BearerPrefix) {
			response.Unauthorized(c, "invalid authorization format")
			return
		}

		claims, err := m.validator.ValidateAccessToken(strings.TrimPrefix(authHeader, BearerPrefix))
		if err != nil {
			response.Unauthorized(c, err.Error())
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(TenantIDKey, claims.TenantID)
		c.Set(RolesKey, claims.Roles)

		c.Next()
	}
}

// RequireTenant rejects callers whose token belongs to a tenant other than
// the one named by the path parameter. Use after RequireAuth.
func (m *AuthMiddleware) RequireTenant(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetTenantID(c) != c.Param(param) {
			response.Forbidden(c, "token does not grant access to this tenant")
			return
		}
		c.Next()
	}
}

// GetUserID extracts user ID from Gin context.
func GetUserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}

// GetTenantID extracts the tenant ID from Gin context.
func GetTenantID(c *gin.Context) string {
	return c.GetString(TenantIDKey)
}

// GetRoles extracts roles from Gin context.
func GetRoles(c *gin.Context) []string {
	return c.GetStringSlice(RolesKey)
}
