package cashflow

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestAllocateRepaymentsFIFO(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2026, 1, d, 0, 0, 0, 0, time.UTC) }

	taken := []Entry{
		{ID: 2, Type: TypeDebtTaken, Amount: decimal.NewFromInt(500), Date: day(5)},
		{ID: 1, Type: TypeDebtTaken, Amount: decimal.NewFromInt(1000), Date: day(1)},
	}
	repaid := []Entry{
		{ID: 10, Type: TypeDebtRepaid, Amount: decimal.NewFromInt(700), Date: day(3)},
		{ID: 11, Type: TypeDebtRepaid, Amount: decimal.NewFromInt(600), Date: day(6)},
	}

	paid := AllocateRepayments(taken, repaid)

	if !paid[1].Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("expected first debt fully repaid, got %s", paid[1])
	}
	if !paid[2].Equal(decimal.NewFromInt(300)) {
		t.Fatalf("expected second debt repaid 300, got %s", paid[2])
	}
}

func TestAllocateRepaymentsIgnoresEarlierPayments(t *testing.T) {
	taken := []Entry{{ID: 1, Amount: decimal.NewFromInt(100), Date: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)}}
	repaid := []Entry{{ID: 2, Amount: decimal.NewFromInt(100), Date: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}}

	paid := AllocateRepayments(taken, repaid)
	if !paid[1].IsZero() {
		t.Fatalf("expected repayment before the debt to be ignored, got %s", paid[1])
	}
}
