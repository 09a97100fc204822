// Package middleware provides the gin middleware chain for the HTTP API:
// request identification, structured request logging, panic recovery, and
// token-bucket rate limiting.
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HeaderRequestID is the header carrying the request correlation ID.
const HeaderRequestID = "X-Request-ID"

// contextKeyRequestID is the gin context key under which the request ID is
// stored for downstream handlers and middleware.
const contextKeyRequestID = "request_id"

// RequestID propagates the caller-supplied X-Request-ID or generates a fresh
// UUID when the header is absent.  The resolved ID is stored in the gin
// context and echoed on the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(contextKeyRequestID, id)
		c.Writer.Header().Set(HeaderRequestID, id)
		c.Next()
	}
}

// RequestIDFrom returns the request ID resolved by RequestID, or "" when the
// middleware did not run.
func RequestIDFrom(c *gin.Context) string {
	return c.GetString(contextKeyRequestID)
}
