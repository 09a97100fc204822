package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/PatentGym/internal/infrastructure/monitoring/logging"
	apperrors "github.com/turtacn/PatentGym/pkg/errors"
)

// Recovery converts a handler panic into a 500 response with the standard
// error envelope instead of tearing down the connection.
func Recovery(logger logging.Logger) gin.HandlerFunc {
	logger = logger.Named("http.recovery")
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("handler panic",
					logging.String("method", c.Request.Method),
					logging.String("path", c.Request.URL.Path),
					logging.String("request_id", RequestIDFrom(c)),
					logging.Any("panic", r),
					logging.String("stack", string(debug.Stack())),
				)
				appErr := apperrors.New(apperrors.ErrCodeInternal, "internal server error").
					WithDetail(fmt.Sprintf("%v", r))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": gin.H{
						"code":       appErr.Code.String(),
						"message":    appErr.Message,
						"request_id": RequestIDFrom(c),
					},
				})
			}
		}()
		c.Next()
	}
}
