package middleware

import (
	"github.com/gin-gonic/gin"

	"mise/internal/shared/id"
)

// RequestID tags every request with an id, honoring one supplied by the
// caller, and echoes it back in the response headers.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = id.MustGenerateWithPrefix(id.PrefixRequest, id.DefaultLength)
		}

		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)

		c.Next()
	}
}
