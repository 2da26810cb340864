package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/stockcentral/internal/utils"
)

// TokenAuthenticator validates admin access tokens.
type TokenAuthenticator interface {
	Authenticate(token string) (*utils.Claims, error)
}

// AdminAuthMiddleware resolves the admin principal from the auth cookie or a
// bearer header. Failures abort with an empty body.
type AdminAuthMiddleware struct {
	auth       TokenAuthenticator
	cookieName string
}

func NewAdminAuthMiddleware(auth TokenAuthenticator, cookieName string) *AdminAuthMiddleware {
	return &AdminAuthMiddleware{auth: auth, cookieName: cookieName}
}

func (m *AdminAuthMiddleware) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := m.extractToken(c)
		if token == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		claims, err := m.auth.Authenticate(token)
		if err != nil {
			log.Debug().Err(err).Str("ip", c.ClientIP()).Msg("admin token rejected")
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		c.Set("admin_claims", claims)
		c.Set("admin_id", claims.UserID)
		c.Next()
	}
}

func (m *AdminAuthMiddleware) extractToken(c *gin.Context) string {
	if v, err := c.Cookie(m.cookieName); err == nil && v != "" {
		return v
	}
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// RequireCapability aborts with 403 unless the authenticated admin holds capability.
func RequireCapability(capability string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetAdminClaims(c)
		if claims == nil {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		if !claims.HasCapability(capability) {
			log.Warn().Int("admin_id", claims.UserID).Str("capability", capability).Msg("admin lacks capability")
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		c.Next()
	}
}

// GetAdminClaims returns the authenticated admin from context.
func GetAdminClaims(c *gin.Context) *utils.Claims {
	v, ok := c.Get("admin_claims")
	if !ok {
		return nil
	}
	claims, _ := v.(*utils.Claims)
	return claims
}
