package server

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/bizledger/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/bizledger/internal/observability/metrics"
	"go.uber.org/zap"
)

const rateLimitReasonClientWrite = "client-write"

// WriteRateLimit throttles mutating requests per client. Reads pass through.
func (s *Server) WriteRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !isWriteMethod(c.Request.Method) || !s.limiter.Enabled() {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		endpoint := normalizeRateLimitEndpoint(c)
		result, err := s.limiter.AllowWrite(ctx, c.ClientIP())
		if err != nil {
			// Fail open while redis is unreachable.
			logger.FromContext(ctx).Warn("write rate limit check failed", zap.Error(err))
			c.Next()
			return
		}
		if !result.Allowed {
			logger.FromContext(ctx).Warn("write rate limit exceeded",
				zap.String("reason", rateLimitReasonClientWrite),
				zap.String("endpoint", endpoint),
			)
			recordRateLimitDenied(ctx, endpoint, rateLimitReasonClientWrite, s.obsMetrics)

			seconds := int(math.Ceil(result.RetryAfter.Seconds()))
			if seconds < 1 {
				seconds = 1
			}
			c.Header("Retry-After", strconv.Itoa(seconds))
			c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
			c.Header("X-RateLimit-Remaining", "0")
			AbortWithError(c, ErrRateLimited)
			return
		}

		recordRateLimitAllowed(ctx, endpoint, s.obsMetrics)
		c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		c.Next()
	}
}

func isWriteMethod(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}

func recordRateLimitAllowed(ctx context.Context, endpoint string, metrics *obsmetrics.Metrics) {
	if metrics == nil {
		return
	}
	metrics.RecordRateLimitAllowed(ctx, endpoint)
}

func recordRateLimitDenied(ctx context.Context, endpoint, reason string, metrics *obsmetrics.Metrics) {
	if metrics == nil {
		return
	}
	metrics.RecordRateLimitDenied(ctx, endpoint, reason)
}

func normalizeRateLimitEndpoint(c *gin.Context) string {
	if c == nil {
		return "unknown"
	}
	endpoint := strings.TrimSpace(c.FullPath())
	if endpoint == "" {
		endpoint = strings.TrimSpace(c.Request.URL.Path)
	}
	if endpoint == "" {
		endpoint = "unknown"
	}
	return endpoint
}
