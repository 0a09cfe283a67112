package cashflow

import (
	"sort"

	"github.com/shopspring/decimal"
)

// AllocateRepayments settles repayments against debts first in, first out.
// A repayment only settles debts taken on or before its own date; whatever it
// cannot place is dropped. The result maps debt entry id to the amount repaid.
func AllocateRepayments(taken, repaid []Entry) map[int64]decimal.Decimal {
	debts := append([]Entry(nil), taken...)
	payments := append([]Entry(nil), repaid...)
	sortByDate(debts)
	sortByDate(payments)

	paid := make(map[int64]decimal.Decimal, len(debts))
	for _, d := range debts {
		paid[d.ID] = decimal.Zero
	}

	for _, p := range payments {
		left := p.Amount
		for _, d := range debts {
			if !left.IsPositive() {
				break
			}
			if d.Date.After(p.Date) {
				break
			}
			open := d.Amount.Sub(paid[d.ID])
			if !open.IsPositive() {
				continue
			}
			applied := decimal.Min(open, left)
			paid[d.ID] = paid[d.ID].Add(applied)
			left = left.Sub(applied)
		}
	}
	return paid
}

func sortByDate(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Date.Equal(entries[j].Date) {
			return entries[i].ID < entries[j].ID
		}
		return entries[i].Date.Before(entries[j].Date)
	})
}
