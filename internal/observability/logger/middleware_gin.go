package logger

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	obscontext "github.com/smallbiznis/bizledger/internal/observability/context"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	requestIDHeader = "X-Request-Id"
	actorIDHeader   = "X-Actor-Id"
)

// MiddlewareConfig controls request logging.
type MiddlewareConfig struct {
	// Debug attaches the cause of 5xx responses.
	Debug bool
	// ErrorClassifier maps a handler error to its (type, code) pair.
	ErrorClassifier func(err error) (string, string)
}

// GinMiddleware seeds the request context with correlation ids and writes one
// access entry per API call once the handler has finished.
func GinMiddleware(cfg MiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		requestID := requestID(c)

		ctx := obscontext.WithRequestID(c.Request.Context(), requestID)
		ctx = obscontext.WithClientIP(ctx, c.ClientIP())
		ctx = obscontext.WithUserAgent(ctx, c.Request.UserAgent())
		ctx = obscontext.WithActorID(ctx, strings.TrimSpace(c.GetHeader(actorIDHeader)))
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Int64("duration_ms", time.Since(started).Milliseconds()),
			zap.Int("bytes_out", max(c.Writer.Size(), 0)),
		}
		if key := strings.TrimSpace(c.GetHeader("Idempotency-Key")); key != "" {
			fields = append(fields, zap.Bool("idempotent", true))
		}
		if last := c.Errors.Last(); last != nil {
			fields = append(fields, errorFields(cfg, last.Err, status)...)
		}

		FromContext(c.Request.Context()).Check(accessLevel(route, status), "api_request").Write(fields...)
	}
}

func errorFields(cfg MiddlewareConfig, err error, status int) []zap.Field {
	var fields []zap.Field
	if cfg.ErrorClassifier != nil {
		kind, code := cfg.ErrorClassifier(err)
		fields = append(fields, zap.String("error_type", kind))
		if code != "" {
			fields = append(fields, zap.String("error_code", code))
		}
	}
	if cfg.Debug && status >= http.StatusInternalServerError {
		fields = append(fields, zap.NamedError("cause", err))
	}
	return fields
}

func requestID(c *gin.Context) string {
	id := strings.TrimSpace(c.GetHeader(requestIDHeader))
	if id == "" {
		id = uuid.NewString()
	}
	c.Set("request_id", id)
	c.Header(requestIDHeader, id)
	return id
}

// accessLevel keeps health checks and the event stream out of info logs and raises
// client and server failures.
func accessLevel(route string, status int) zapcore.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zapcore.ErrorLevel
	case status == http.StatusTooManyRequests || status == http.StatusConflict:
		return zapcore.WarnLevel
	}
	switch route {
	case "/metrics", "/health", "/api/events":
		return zapcore.DebugLevel
	default:
		return zapcore.InfoLevel
	}
}
