package requestid

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// Header carries the request ID on the wire, inbound and outbound.
	Header     = "X-Request-ID"
	contextKey = "request_id"
)

// Middleware tags every request with an ID. An inbound X-Request-ID is
// trusted and echoed back so upstream proxies can correlate logs.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(Header)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(contextKey, id)
		c.Header(Header, id)
		c.Next()
	}
}

// Value reads the request ID assigned by Middleware, or "" outside it.
func Value(c *gin.Context) string {
	id, _ := c.Value(contextKey).(string)
	return id
}
