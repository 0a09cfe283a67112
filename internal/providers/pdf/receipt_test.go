package pdf

import (
	"bytes"
	"context"
	"io"
	"testing"
)

func TestGenerateReceiptProducesPDF(t *testing.T) {
	provider := New()

	reader, err := provider.GenerateReceipt(context.Background(), ReceiptData{
		BusinessName:  "Bizledger",
		ReceiptNumber: "01J9ZQ3V6N8Y2K4T5W7X9A1B3C",
		SoldAt:        "2026-03-01 10:00",
		AccountName:   "Cash",
		Currency:      "ETB",
		Items: []ReceiptItem{
			{Description: "Cement bag", Quantity: "2", UnitPrice: "450.00", Amount: "900.00"},
		},
		Total: "900.00",
	})
	if err != nil {
		t.Fatalf("generate receipt: %v", err)
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("read receipt: %v", err)
	}
	if !bytes.HasPrefix(body, []byte("%PDF")) {
		t.Fatalf("expected PDF header, got %q", body[:min(len(body), 8)])
	}
}

func TestGenerateReceiptRequiresNumber(t *testing.T) {
	if _, err := New().GenerateReceipt(context.Background(), ReceiptData{}); err == nil {
		t.Fatalf("expected error for missing receipt number")
	}
}
