package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const RequestIDHeader = "X-Request-ID"

// WithLogging tags every request with an ID and logs its completion.
func WithLogging(lggr *zap.SugaredLogger) gin.HandlerFunc {
	lggr = lggr.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		reqID := c.GetHeader(RequestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Header(RequestIDHeader, reqID)

		c.Next()

		fields := []interface{}{
			"id", reqID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"remote", c.ClientIP(),
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, "errors", c.Errors.String())
		}
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			lggr.Errorw("request completed", fields...)
		default:
			lggr.Infow("request completed", fields...)
		}
	}
}

// Recovery turns panics into a JSON 500. Outside production the panic value
// is echoed back.
func Recovery(lggr *zap.SugaredLogger, production bool) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		lggr.Errorw("panic recovered", "path", c.Request.URL.Path, "panic", recovered)
		msg := "Internal server error"
		if !production {
			if err, ok := recovered.(error); ok {
				msg = err.Error()
			} else if s, ok := recovered.(string); ok {
				msg = s
			}
		}
		abort(c, http.StatusInternalServerError, msg)
	})
}
