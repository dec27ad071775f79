package middleware

import (
	"github.com/gin-gonic/gin"
)

// OptionalAuthMiddleware attaches the actor when a valid token is sent and
// lets anonymous viewers through otherwise. Read routes only need the actor
// ID, so a token without a name is not looked up in the directory.
func OptionalAuthMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}
		if actor, err := authenticate(c, secret, nil); err == nil {
			setActor(c, actor)
		}
		c.Next()
	}
}
