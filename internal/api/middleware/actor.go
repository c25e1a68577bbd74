package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// actorKey is the Gin context key holding the authenticated actor ID.
const actorKey = "actor_id"

// ActorHeader carries the account identity resolved by the fronting
// auth layer.
const ActorHeader = "X-Actor-ID"

// Actor requires an actor identity on every request. Authentication
// itself happens upstream; this only enforces that the identity header
// arrived.
func Actor() gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID := c.GetHeader(ActorHeader)
		if actorID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "missing actor identity",
			})
			return
		}
		c.Set(actorKey, actorID)
		c.Next()
	}
}

// GetActorID returns the actor ID set by the Actor middleware.
func GetActorID(c *gin.Context) string {
	return c.GetString(actorKey)
}
