package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/quillbase/blogserver/internal/constants"
	ctxutil "github.com/quillbase/blogserver/pkg/context"
	"github.com/quillbase/blogserver/pkg/logger"
)

// RequestContext assigns each request an ID, records client info and the
// start time in the request context, and echoes the ID back in the
// X-Request-ID header.
func RequestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(constants.HeaderXRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := c.Request.Context()
		ctx = ctxutil.WithRequestID(ctx, requestID)
		ctx = ctxutil.WithClientInfo(ctx, c.ClientIP(), c.Request.UserAgent())
		ctx = ctxutil.WithStartTime(ctx, time.Now())

		c.Request = c.Request.WithContext(ctx)
		c.Header(constants.HeaderXRequestID, requestID)

		logger.InfoWithContext(ctx, "Request started").
			String("method", c.Request.Method).
			String("path", c.Request.URL.Path).
			String("query", c.Request.URL.RawQuery).
			Log()

		c.Next()

		logger.InfoWithContext(ctx, "Request completed").
			String("method", c.Request.Method).
			String("path", c.Request.URL.Path).
			Int("status_code", c.Writer.Status()).
			Int("response_size", c.Writer.Size()).
			Duration(ctxutil.GetDuration(ctx)).
			Log()
	}
}
