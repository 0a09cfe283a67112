package pdf

import (
	"context"
	"io"

	"go.uber.org/fx"
)

var Module = fx.Module("providers.pdf",
	fx.Provide(New),
)

// Provider renders printable documents.
type Provider interface {
	GenerateReceipt(ctx context.Context, data ReceiptData) (io.Reader, error)
}

type PDFProvider struct{}

func New() Provider {
	return &PDFProvider{}
}
