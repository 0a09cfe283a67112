package cashflow

import (
	"time"

	"github.com/shopspring/decimal"
)

// Origin records who produced a transaction row.
type Origin string

const (
	OriginUserEntry       Origin = "user-entry"
	OriginAdvanceSnapshot Origin = "advance-snapshot"
	OriginSale            Origin = "sale"
)

func (o Origin) Valid() bool {
	switch o {
	case OriginUserEntry, OriginAdvanceSnapshot, OriginSale:
		return true
	default:
		return false
	}
}

// Entry is the ledger view of a transaction used by the pure rules.
type Entry struct {
	ID            int64
	Type          TransactionType
	Amount        decimal.Decimal
	Category      string
	Description   string
	Date          time.Time
	AccountID     int64
	FromAccountID int64
	ToAccountID   int64
	ProjectID     int64
	Origin        Origin
}

// Delta is a signed change to one account balance.
type Delta struct {
	AccountID int64
	Amount    decimal.Decimal
}

// BalanceDeltas returns the balance changes an entry applies.
// Transfers debit the source and credit the destination whichever tag they use.
// Informational and unknown types change nothing.
func BalanceDeltas(e Entry) []Delta {
	if !e.Amount.IsPositive() {
		return nil
	}
	if IsTransfer(e.Type) {
		if e.FromAccountID == 0 || e.ToAccountID == 0 || e.FromAccountID == e.ToAccountID {
			return nil
		}
		return []Delta{
			{AccountID: e.FromAccountID, Amount: e.Amount.Neg()},
			{AccountID: e.ToAccountID, Amount: e.Amount},
		}
	}

	c := Classify(e.Type)
	if c.Sign == 0 || e.AccountID == 0 {
		return nil
	}
	return []Delta{{AccountID: e.AccountID, Amount: e.Amount.Mul(decimal.NewFromInt(int64(c.Sign)))}}
}

// Reverse negates every delta.
func Reverse(deltas []Delta) []Delta {
	out := make([]Delta, 0, len(deltas))
	for _, d := range deltas {
		out = append(out, Delta{AccountID: d.AccountID, Amount: d.Amount.Neg()})
	}
	return out
}

// Merge sums deltas per account, dropping accounts whose net change is zero.
// The result keeps the order in which accounts first appear.
func Merge(groups ...[]Delta) []Delta {
	order := make([]int64, 0)
	sums := make(map[int64]decimal.Decimal)
	for _, group := range groups {
		for _, d := range group {
			if _, seen := sums[d.AccountID]; !seen {
				order = append(order, d.AccountID)
				sums[d.AccountID] = decimal.Zero
			}
			sums[d.AccountID] = sums[d.AccountID].Add(d.Amount)
		}
	}
	out := make([]Delta, 0, len(order))
	for _, id := range order {
		if sums[id].IsZero() {
			continue
		}
		out = append(out, Delta{AccountID: id, Amount: sums[id]})
	}
	return out
}
