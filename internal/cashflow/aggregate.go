package cashflow

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

const monthLayout = "2006-01"

// Window bounds transactionDate inclusively. A zero bound is open.
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) Contains(t time.Time) bool {
	if !w.Start.IsZero() && t.Before(w.Start) {
		return false
	}
	if !w.End.IsZero() && t.After(w.End) {
		return false
	}
	return true
}

// AccountBalance is the account view used for distribution.
type AccountBalance struct {
	ID      int64
	Name    string
	Type    string
	Balance decimal.Decimal
}

type MonthlyPoint struct {
	Month   string          `json:"month"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Net     decimal.Decimal `json:"net"`
}

type AccountShare struct {
	AccountID string          `json:"accountId"`
	Name      string          `json:"name"`
	Type      string          `json:"type"`
	Balance   decimal.Decimal `json:"balance"`
	Share     decimal.Decimal `json:"share"`
}

type OverviewStats struct {
	TotalIncome         decimal.Decimal `json:"totalIncome"`
	TotalExpenses       decimal.Decimal `json:"totalExpenses"`
	FixedAssetExpenses  decimal.Decimal `json:"fixedAssetExpenses"`
	NetFlow             decimal.Decimal `json:"netFlow"`
	TotalBalance        decimal.Decimal `json:"totalBalance"`
	TransactionCount    int             `json:"transactionCount"`
	MonthlyCashFlow     []MonthlyPoint  `json:"monthlyCashFlow"`
	AccountDistribution []AccountShare  `json:"accountDistribution"`

	// UnknownEntries lists ids of rows whose type was not recognised.
	UnknownEntries []int64 `json:"-"`
}

// FixedAssetFunc reports whether a category is a capital purchase.
type FixedAssetFunc func(category string) bool

// Aggregate computes overview totals for entries inside window.
func Aggregate(entries []Entry, accounts []AccountBalance, window Window, isFixedAsset FixedAssetFunc) OverviewStats {
	if isFixedAsset == nil {
		isFixedAsset = func(string) bool { return false }
	}

	stats := OverviewStats{
		TotalIncome:        decimal.Zero,
		TotalExpenses:      decimal.Zero,
		FixedAssetExpenses: decimal.Zero,
	}
	months := make(map[string]*MonthlyPoint)

	for _, e := range entries {
		if !window.Contains(e.Date) {
			continue
		}
		stats.TransactionCount++

		c := Classify(e.Type)
		if !c.Known {
			stats.UnknownEntries = append(stats.UnknownEntries, e.ID)
			continue
		}
		if c.Bucket == BucketInformational {
			continue
		}

		key := e.Date.UTC().Format(monthLayout)
		point, ok := months[key]
		if !ok {
			point = &MonthlyPoint{Month: key, Income: decimal.Zero, Expense: decimal.Zero}
			months[key] = point
		}

		switch c.Bucket {
		case BucketIncome:
			stats.TotalIncome = stats.TotalIncome.Add(e.Amount)
			point.Income = point.Income.Add(e.Amount)
		case BucketExpense:
			if isFixedAsset(e.Category) {
				stats.FixedAssetExpenses = stats.FixedAssetExpenses.Add(e.Amount)
			} else {
				stats.TotalExpenses = stats.TotalExpenses.Add(e.Amount)
			}
			point.Expense = point.Expense.Add(e.Amount)
		}
	}

	stats.NetFlow = stats.TotalIncome.Sub(stats.TotalExpenses)
	stats.MonthlyCashFlow = fillMonths(months)
	stats.AccountDistribution, stats.TotalBalance = distribute(accounts)
	return stats
}

// fillMonths orders points ascending and inserts empty months between them.
func fillMonths(months map[string]*MonthlyPoint) []MonthlyPoint {
	if len(months) == 0 {
		return []MonthlyPoint{}
	}
	keys := make([]string, 0, len(months))
	for k := range months {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	first, _ := time.Parse(monthLayout, keys[0])
	last, _ := time.Parse(monthLayout, keys[len(keys)-1])

	out := make([]MonthlyPoint, 0, len(keys))
	for cursor := first; !cursor.After(last); cursor = cursor.AddDate(0, 1, 0) {
		key := cursor.Format(monthLayout)
		point, ok := months[key]
		if !ok {
			point = &MonthlyPoint{Month: key, Income: decimal.Zero, Expense: decimal.Zero}
		}
		point.Net = point.Income.Sub(point.Expense)
		out = append(out, *point)
	}
	return out
}

var hundred = decimal.NewFromInt(100)

func distribute(accounts []AccountBalance) ([]AccountShare, decimal.Decimal) {
	total := decimal.Zero
	positive := decimal.Zero
	for _, a := range accounts {
		total = total.Add(a.Balance)
		if a.Balance.IsPositive() {
			positive = positive.Add(a.Balance)
		}
	}

	out := make([]AccountShare, 0, len(accounts))
	for _, a := range accounts {
		share := decimal.Zero
		if a.Balance.IsPositive() && positive.IsPositive() {
			share = a.Balance.Div(positive).Mul(hundred).Round(2)
		}
		out = append(out, AccountShare{
			AccountID: formatID(a.ID),
			Name:      a.Name,
			Type:      a.Type,
			Balance:   a.Balance,
			Share:     share,
		})
	}
	return out, total
}
