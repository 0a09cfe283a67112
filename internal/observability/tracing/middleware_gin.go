package tracing

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	obscontext "github.com/smallbiznis/bizledger/internal/observability/context"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/baggage"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const httpTracerName = "bizledger/http"

// GinMiddleware opens one server span per API call. Spans are renamed to the
// matched route once the handler chain has run, so ids never end up in names.
func GinMiddleware() gin.HandlerFunc {
	tracer := otel.Tracer(httpTracerName)
	return func(c *gin.Context) {
		method := strings.ToUpper(c.Request.Method)
		ctx := ExtractContext(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		ctx, span := tracer.Start(ctx, "ledger "+method, trace.WithSpanKind(trace.SpanKindServer))
		ctx = withRequestBaggage(ctx, span)

		c.Request = c.Request.WithContext(ctx)
		started := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		span.SetName("ledger " + method + " " + route)
		span.SetAttributes(SafeAttributes(
			attribute.String("http.method", method),
			attribute.String("http.route", route),
			attribute.Int("http.status_code", status),
			attribute.String("ledger.resource", ledgerResource(route)),
			attribute.Bool("ledger.mutation", isMutation(method)),
			attribute.Bool("ledger.idempotent", strings.TrimSpace(c.GetHeader("Idempotency-Key")) != ""),
			attribute.Int64("ledger.duration_ms", time.Since(started).Milliseconds()),
		)...)

		switch {
		case status == http.StatusTooManyRequests:
			span.AddEvent("write throttled")
		case status >= http.StatusInternalServerError:
			if last := c.Errors.Last(); last != nil {
				if safe := SafeError(last.Err); safe != nil {
					span.RecordError(safe)
				}
			}
			span.SetStatus(codes.Error, "ledger request failed")
		}
		span.End()
	}
}

func withRequestBaggage(ctx context.Context, span trace.Span) context.Context {
	requestID := obscontext.RequestIDFromContext(ctx)
	if requestID == "" {
		return ctx
	}
	span.SetAttributes(attribute.String("request_id", requestID))
	member, err := baggage.NewMember("request_id", requestID)
	if err != nil {
		return ctx
	}
	bag, err := baggage.New(member)
	if err != nil {
		return ctx
	}
	return baggage.ContextWithBaggage(ctx, bag)
}

// ledgerResource maps a route such as /api/accounting/transactions/:id to
// "transactions" and /api/shop/sales to "shop.sales".
func ledgerResource(route string) string {
	parts := strings.Split(strings.Trim(route, "/"), "/")
	if len(parts) < 2 || parts[0] != "api" {
		return "other"
	}
	parts = parts[1:]
	switch parts[0] {
	case "accounting":
		if len(parts) > 1 {
			return parts[1]
		}
		return "accounting"
	case "shop":
		if len(parts) > 1 {
			return "shop." + parts[1]
		}
		return "shop"
	default:
		return parts[0]
	}
}

func isMutation(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}
