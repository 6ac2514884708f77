package respond

import "github.com/gin-gonic/gin"

// JSON writes payload with the given status. Responses carry CV contents, so
// intermediaries are told not to cache them.
func JSON(c *gin.Context, status int, payload any) {
	c.Header("Cache-Control", "no-store")
	c.JSON(status, payload)
}
