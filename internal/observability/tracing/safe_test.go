package tracing

import (
	"errors"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/attribute"
)

func TestSafeAttributesDropsBlockedKeys(t *testing.T) {
	attrs := SafeAttributes(
		attribute.String("http.route", "/api/projects"),
		attribute.String("db.statement", "SELECT 1"),
	)
	if len(attrs) != 1 || attrs[0].Key != "http.route" {
		t.Fatalf("expected only http.route, got %v", attrs)
	}
}

func TestSafeAttributesTruncates(t *testing.T) {
	attrs := SafeAttributes(attribute.String("http.route", strings.Repeat("a", 400)))
	if got := len(attrs[0].Value.AsString()); got != maxAttributeValueLen {
		t.Fatalf("expected truncated length %d, got %d", maxAttributeValueLen, got)
	}
}

func TestSafeErrorKeepsFirstLine(t *testing.T) {
	err := SafeError(errors.New("insert failed\nDETAIL: key (id)=(1)"))
	if err.Error() != "insert failed" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if SafeError(nil) != nil {
		t.Fatalf("expected nil for nil error")
	}
}
