package middleware

import (
	"net/http"
	"strings"

	"vendora/utils"

	"github.com/gin-gonic/gin"
)

// ActorAuthMiddleware resolves the acting party from the bearer token and
// places its id and role on the context. Authorization decisions stay in the
// booking engine; this only establishes identity.
func ActorAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		actorID, role, err := utils.ParseActor(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set("actorID", actorID)
		c.Set("actorRole", role)
		c.Next()
	}
}
