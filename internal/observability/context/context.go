package context

import (
	"context"
	"strings"
)

type ctxKey string

const (
	requestIDKey ctxKey = "request_id"
	clientIPKey  ctxKey = "client_ip"
	userAgentKey ctxKey = "user_agent"
	actorIDKey   ctxKey = "actor_id"
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return withString(ctx, requestIDKey, requestID)
}

func RequestIDFromContext(ctx context.Context) string {
	return stringFrom(ctx, requestIDKey)
}

func WithClientIP(ctx context.Context, ip string) context.Context {
	return withString(ctx, clientIPKey, ip)
}

func ClientIPFromContext(ctx context.Context) string {
	return stringFrom(ctx, clientIPKey)
}

func WithUserAgent(ctx context.Context, userAgent string) context.Context {
	return withString(ctx, userAgentKey, userAgent)
}

func UserAgentFromContext(ctx context.Context) string {
	return stringFrom(ctx, userAgentKey)
}

// WithActorID records the caller-supplied operator id (X-Actor-Id header).
// It is informational only; requests are not authenticated.
func WithActorID(ctx context.Context, actorID string) context.Context {
	return withString(ctx, actorIDKey, actorID)
}

func ActorIDFromContext(ctx context.Context) string {
	return stringFrom(ctx, actorIDKey)
}

func withString(ctx context.Context, key ctxKey, value string) context.Context {
	value = strings.TrimSpace(value)
	if value == "" {
		return ctx
	}
	return context.WithValue(ctx, key, value)
}

func stringFrom(ctx context.Context, key ctxKey) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(key).(string)
	return value
}
