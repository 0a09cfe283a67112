package service

import (
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/bizledger/internal/cashflow"
	expensedomain "github.com/smallbiznis/bizledger/internal/expense/domain"
	"github.com/smallbiznis/bizledger/internal/project/domain"
	transactiondomain "github.com/smallbiznis/bizledger/internal/transaction/domain"
)

func terms(project domain.Project) cashflow.ProjectTerms {
	return cashflow.ProjectTerms{
		AgreementAmount: project.AgreementAmount,
		AdvancePaid:     project.AdvancePaid,
		CreatedAt:       project.CreatedAt,
	}
}

func summarize(project domain.Project, txs []transactiondomain.Transaction, rule cashflow.AdvanceRule) domain.Summary {
	totalPaid := rule.TotalPaid(terms(project), transactiondomain.Entries(txs))
	return domain.Summary{
		Project:         project,
		TotalPaid:       totalPaid,
		RemainingAmount: cashflow.RemainingAmount(project.AgreementAmount, totalPaid),
	}
}

// payments returns the rows that settle the agreement, leaving out the advance record.
func payments(project domain.Project, txs []transactiondomain.Transaction, rule cashflow.AdvanceRule) []transactiondomain.Transaction {
	out := make([]transactiondomain.Transaction, 0)
	projectTerms := terms(project)
	for _, tx := range txs {
		if !cashflow.CountsAsPayment(tx.Type) {
			continue
		}
		if rule.IsAdvanceRecord(tx.Entry(), projectTerms) {
			continue
		}
		out = append(out, tx)
	}
	return out
}

func buildDetail(
	project domain.Project,
	txs []transactiondomain.Transaction,
	expenses []expensedomain.Expense,
	materials []domain.MaterialUsage,
	labor []domain.LaborRecord,
	rule cashflow.AdvanceRule,
) domain.Detail {
	totalExpenses := decimal.Zero
	for _, e := range expenses {
		totalExpenses = totalExpenses.Add(e.Amount)
	}
	for _, m := range materials {
		totalExpenses = totalExpenses.Add(m.TotalCost)
	}
	for _, l := range labor {
		totalExpenses = totalExpenses.Add(l.TotalCost)
	}

	summary := summarize(project, txs, rule)
	if txs == nil {
		txs = []transactiondomain.Transaction{}
	}
	if expenses == nil {
		expenses = []expensedomain.Expense{}
	}
	if materials == nil {
		materials = []domain.MaterialUsage{}
	}
	if labor == nil {
		labor = []domain.LaborRecord{}
	}
	return domain.Detail{
		Summary:       summary,
		Expenses:      expenses,
		MaterialsUsed: materials,
		LaborRecords:  labor,
		Transactions:  txs,
		Payments:      payments(project, txs, rule),
		TotalExpenses: totalExpenses,
		Profit:        summary.TotalPaid.Sub(totalExpenses),
	}
}
