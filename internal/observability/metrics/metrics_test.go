package metrics

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestFilterAttributesDropsForbiddenLabels(t *testing.T) {
	attrs := FilterAttributes(
		attribute.String("transaction_type", "INCOME"),
		attribute.String("account_id", "456"),
		attribute.String("operation", "create"),
	)
	if len(attrs) != 2 {
		t.Fatalf("expected 2 attributes, got %d", len(attrs))
	}
	for _, attr := range attrs {
		if attr.Key == "account_id" {
			t.Fatalf("expected account_id to be dropped")
		}
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.RecordTransaction(context.Background(), "INCOME", "create")
	m.RecordEventPublished(context.Background(), "transaction_created")
	m.RecordSale(context.Background())
}

func TestNewWithNoopProvider(t *testing.T) {
	m, err := New(Config{ServiceName: "bizledger"}, noop.NewMeterProvider())
	if err != nil {
		t.Fatalf("new metrics: %v", err)
	}
	m.RecordBalanceMutation(context.Background(), "transfer", 2)
	m.RecordRateLimitDenied(context.Background(), "/api/accounting/transactions", "exhausted")
}
