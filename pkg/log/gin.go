package log

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const headerRequestID = "X-Request-ID"

// GinMiddleware logs every request with a stable request_id. The id is
// taken from the X-Request-ID header when the caller supplies one and
// minted otherwise, echoed back in the response, and baked into a child
// logger that rides the request context.
func GinMiddleware(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		reqID := requestID(c)
		c.Header(headerRequestID, reqID)

		child := logger.With().
			Str(FieldRequestID, reqID).
			Str(FieldMethod, c.Request.Method).
			Str(FieldPath, c.Request.URL.Path).
			Str(FieldClientIP, c.ClientIP()).
			Logger()
		c.Request = c.Request.WithContext(IntoContext(c.Request.Context(), child))

		c.Next()

		status := c.Writer.Status()
		evt := child.Info()
		switch {
		case status >= 500:
			evt = child.Error()
		case status >= 400:
			evt = child.Warn()
		}

		evt = evt.
			Int(FieldStatus, status).
			Float64(FieldLatency, float64(time.Since(start).Milliseconds()))

		// The auth middleware runs after this one, so the actor keys are
		// only readable once the chain has finished.
		if userID, ok := c.Get(FieldUserID); ok {
			evt = evt.Str(FieldUserID, userID.(string))
		}
		if username, ok := c.Get(FieldUsername); ok {
			evt = evt.Str(FieldUsername, username.(string))
		}
		if len(c.Errors) > 0 {
			evt = evt.Str("gin_errors", c.Errors.String())
		}

		evt.Msg("request completed")
	}
}

func requestID(c *gin.Context) string {
	if id := c.GetHeader(headerRequestID); id != "" {
		return id
	}
	return uuid.New().String()
}
