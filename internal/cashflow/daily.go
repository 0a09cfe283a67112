package cashflow

import "github.com/shopspring/decimal"

// DaySummary totals one day of entries with the canonical classifier.
type DaySummary struct {
	Income           decimal.Decimal
	Expense          decimal.Decimal
	NetFlow          decimal.Decimal
	TransactionCount int
	IncomeCount      int
	ExpenseCount     int
	UnknownEntries   []int64
}

func SummarizeDay(entries []Entry, window Window) DaySummary {
	out := DaySummary{Income: decimal.Zero, Expense: decimal.Zero}
	for _, e := range entries {
		if !window.Contains(e.Date) {
			continue
		}
		out.TransactionCount++
		c := Classify(e.Type)
		switch {
		case !c.Known:
			out.UnknownEntries = append(out.UnknownEntries, e.ID)
		case c.Bucket == BucketIncome:
			out.Income = out.Income.Add(e.Amount)
			out.IncomeCount++
		case c.Bucket == BucketExpense:
			out.Expense = out.Expense.Add(e.Amount)
			out.ExpenseCount++
		}
	}
	out.NetFlow = out.Income.Sub(out.Expense)
	return out
}
