package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const userIDKey = "userId"

// Principal records the caller's user id from the X-User-Id header or the
// userId query parameter. Multipart form values are attached later by the
// handler with SetUserID so the body is not parsed before size checks.
func Principal() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader("X-User-Id"))
		if id == "" {
			id = strings.TrimSpace(c.Query("userId"))
		}
		if id != "" {
			c.Set(userIDKey, id)
		}
		c.Next()
	}
}

// SetUserID stores the user id for logging and rate limiting.
func SetUserID(c *gin.Context, id string) {
	if id = strings.TrimSpace(id); id != "" {
		c.Set(userIDKey, id)
	}
}

// UserIDFromContext fetches the user ID set by Principal or SetUserID.
func UserIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(userIDKey)
	if id, ok := val.(string); ok {
		return id
	}
	return ""
}
