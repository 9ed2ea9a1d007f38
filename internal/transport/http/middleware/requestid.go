package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ErlanBelekov/secure-login/internal/reqctx"
)

// RequestID injects a request ID into the context and response header.
// An incoming X-Request-ID is kept only if it parses as a UUID, and is
// echoed in canonical form; anything else is replaced with a new UUID v4.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := reqctx.NewRequestID()
		if incoming, err := uuid.Parse(c.GetHeader("X-Request-ID")); err == nil {
			id = incoming.String()
		}

		ctx := reqctx.WithRequestID(c.Request.Context(), id)
		c.Request = c.Request.WithContext(ctx)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}
