// README: Firebase ID-token auth and role gates for the API groups.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"kavach/internal/infra"
	"kavach/internal/types"
)

const (
	RoleUser       = "user"
	RoleAdmin      = "admin"
	RoleSuperadmin = "superadmin"
)

const (
	ctxUID       = "auth.uid"
	ctxRole      = "auth.role"
	ctxStationID = "auth.station_id"
)

// Auth verifies the bearer token and stores uid, role and station claims on the context.
func Auth(verifier infra.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		raw = strings.TrimSpace(raw)
		if !ok || raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		token, err := verifier.VerifyIDToken(c.Request.Context(), raw)
		if err != nil || token == nil || token.UID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		role := RoleUser
		if v, ok := token.Claims["role"].(string); ok && v != "" {
			role = v
		}
		c.Set(ctxUID, token.UID)
		c.Set(ctxRole, role)
		if v, ok := token.Claims["stationId"].(string); ok {
			c.Set(ctxStationID, v)
		}
		c.Next()
	}
}

// RequireRole rejects callers whose role is not in roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := CallerRole(c)
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden: " + strings.Join(roles, " or ") + " role required"})
	}
}

func CallerUID(c *gin.Context) types.ID {
	return types.ID(c.GetString(ctxUID))
}

func CallerRole(c *gin.Context) string {
	return c.GetString(ctxRole)
}

// CallerStationID is the station a station admin belongs to; empty for other roles.
func CallerStationID(c *gin.Context) types.ID {
	return types.ID(c.GetString(ctxStationID))
}
