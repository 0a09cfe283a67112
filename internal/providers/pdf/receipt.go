package pdf

import (
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// ReceiptData is the pre-formatted content of a sale receipt.
type ReceiptData struct {
	BusinessName  string
	ReceiptNumber string
	SoldAt        string
	CustomerName  string
	AccountName   string
	Currency      string
	Items         []ReceiptItem
	Total         string
}

type ReceiptItem struct {
	Description string
	Quantity    string
	UnitPrice   string
	Amount      string
}

func (p *PDFProvider) GenerateReceipt(ctx context.Context, receipt ReceiptData) (io.Reader, error) {
	if receipt.ReceiptNumber == "" {
		return nil, errors.New("receipt number is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(20,
		text.NewCol(8, receipt.BusinessName, props.Text{
			Size:  18,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
		text.NewCol(4, "Sales receipt", props.Text{
			Size:  14,
			Style: fontstyle.Bold,
			Align: align.Right,
		}),
	)

	m.AddRow(22,
		col.New(6).Add(
			text.New("Receipt number: "+receipt.ReceiptNumber, props.Text{Top: 0}),
			text.New("Date: "+receipt.SoldAt, props.Text{Top: 5}),
			text.New("Paid into: "+receipt.AccountName, props.Text{Top: 10}),
		),
		col.New(6).Add(
			text.New("Customer", props.Text{Style: fontstyle.Bold, Align: align.Right}),
			text.New(customerLabel(receipt.CustomerName), props.Text{Top: 5, Align: align.Right}),
		),
	)

	m.AddRow(10,
		text.NewCol(6, "Item", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Qty", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Unit price", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Amount", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	for _, item := range receipt.Items {
		m.AddRow(8,
			text.NewCol(6, item.Description, props.Text{Size: 9}),
			text.NewCol(2, item.Quantity, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, item.UnitPrice, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, item.Amount, props.Text{Size: 9, Align: align.Right}),
		)
	}

	m.AddRow(12,
		col.New(8),
		text.NewCol(2, "Total", props.Text{Size: 10, Style: fontstyle.Bold, Top: 3}),
		text.NewCol(2, receipt.Total+" "+receipt.Currency, props.Text{Size: 10, Style: fontstyle.Bold, Top: 3, Align: align.Right}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}

	return bytes.NewReader(doc.GetBytes()), nil
}

func customerLabel(name string) string {
	if name == "" {
		return "Walk-in customer"
	}
	return name
}
