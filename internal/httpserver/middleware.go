package httpserver

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	requestIDHeader  = "X-Request-ID"
	customerIDHeader = "X-Customer-ID"
	requestIDKey     = "request_id"
)

// requestIDMiddleware echoes the caller's request id or assigns a new one.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func (h *handlers) log(c *gin.Context) *zap.Logger {
	return h.logger.With(zap.String(requestIDKey, c.GetString(requestIDKey)))
}
