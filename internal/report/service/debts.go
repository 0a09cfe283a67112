package service

import (
	"context"
	"sort"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/bizledger/internal/cashflow"
	projectdomain "github.com/smallbiznis/bizledger/internal/project/domain"
	"github.com/smallbiznis/bizledger/internal/report/domain"
	transactiondomain "github.com/smallbiznis/bizledger/internal/transaction/domain"
)

const unassignedName = "Unassigned"

type counterparty struct {
	kind domain.CounterpartyType
	id   snowflake.ID
}

// counterpartyOf picks the party a debt row is owed to or by. Customer wins
// over vendor, vendor over employee.
func counterpartyOf(tx *transactiondomain.Transaction) counterparty {
	switch {
	case tx.CustomerID != nil && *tx.CustomerID != 0:
		return counterparty{kind: domain.CounterpartyCustomer, id: *tx.CustomerID}
	case tx.VendorID != nil && *tx.VendorID != 0:
		return counterparty{kind: domain.CounterpartyVendor, id: *tx.VendorID}
	case tx.EmployeeID != nil && *tx.EmployeeID != 0:
		return counterparty{kind: domain.CounterpartyEmployee, id: *tx.EmployeeID}
	default:
		return counterparty{kind: domain.CounterpartyUnassigned}
	}
}

func tableOf(kind domain.CounterpartyType) string {
	switch kind {
	case domain.CounterpartyCustomer:
		return "customers"
	case domain.CounterpartyVendor:
		return "vendors"
	case domain.CounterpartyEmployee:
		return "employees"
	default:
		return ""
	}
}

type debtGroup struct {
	party  counterparty
	taken  []*transactiondomain.Transaction
	repaid []*transactiondomain.Transaction
}

// companyDebts loads debt rows without a project grouped by counterparty.
func (s *Service) companyDebts(ctx context.Context) ([]*debtGroup, error) {
	rows, err := s.txRepo.List(ctx, s.db, transactiondomain.ListFilter{
		Types: []cashflow.TransactionType{cashflow.TypeDebtTaken, cashflow.TypeDebtRepaid},
	})
	if err != nil {
		return nil, err
	}

	index := make(map[counterparty]*debtGroup)
	groups := make([]*debtGroup, 0)
	for _, row := range rows {
		if idOrZero(row.ProjectID) != 0 {
			continue
		}
		party := counterpartyOf(row)
		group, ok := index[party]
		if !ok {
			group = &debtGroup{party: party}
			index[party] = group
			groups = append(groups, group)
		}
		if row.Type == cashflow.TypeDebtTaken {
			group.taken = append(group.taken, row)
		} else {
			group.repaid = append(group.repaid, row)
		}
	}
	return groups, nil
}

// partyNames resolves display names for every counterparty in groups.
func (s *Service) partyNames(ctx context.Context, groups []*debtGroup) (map[counterparty]string, error) {
	ids := make(map[domain.CounterpartyType][]snowflake.ID)
	for _, g := range groups {
		if g.party.kind == domain.CounterpartyUnassigned {
			continue
		}
		ids[g.party.kind] = append(ids[g.party.kind], g.party.id)
	}

	out := make(map[counterparty]string, len(groups))
	for kind, list := range ids {
		names, err := s.repo.Names(ctx, s.db, tableOf(kind), list)
		if err != nil {
			return nil, err
		}
		for id, name := range names {
			out[counterparty{kind: kind, id: id}] = name
		}
	}
	for _, g := range groups {
		if _, ok := out[g.party]; !ok {
			out[g.party] = unassignedName
		}
	}
	return out, nil
}

func (s *Service) Debts(ctx context.Context) (domain.DebtsReport, error) {
	groups, err := s.companyDebts(ctx)
	if err != nil {
		return domain.DebtsReport{}, err
	}
	names, err := s.partyNames(ctx, groups)
	if err != nil {
		return domain.DebtsReport{}, err
	}

	report := domain.DebtsReport{
		CompanyDebts: make([]domain.CompanyDebt, 0, len(groups)),
		ProjectDebts: make([]domain.ProjectDebt, 0),
		Totals: domain.DebtTotals{
			CompanyOutstanding: decimal.Zero,
			ProjectOutstanding: decimal.Zero,
		},
	}

	for _, g := range groups {
		taken := sumAmounts(g.taken)
		repaid := sumAmounts(g.repaid)
		debt := domain.CompanyDebt{
			CounterpartyType: g.party.kind,
			Name:             names[g.party],
			Taken:            taken,
			Repaid:           repaid,
			Outstanding:      cashflow.RemainingAmount(taken, repaid),
		}
		if g.party.id != 0 {
			debt.CounterpartyID = g.party.id.String()
		}
		report.CompanyDebts = append(report.CompanyDebts, debt)
		report.Totals.CompanyOutstanding = report.Totals.CompanyOutstanding.Add(debt.Outstanding)
	}
	sort.SliceStable(report.CompanyDebts, func(i, j int) bool {
		a, b := report.CompanyDebts[i], report.CompanyDebts[j]
		if !a.Outstanding.Equal(b.Outstanding) {
			return a.Outstanding.GreaterThan(b.Outstanding)
		}
		return a.Name < b.Name
	})

	projects, err := s.projectSvc.List(ctx, projectdomain.ListProjectRequest{})
	if err != nil {
		return domain.DebtsReport{}, err
	}
	for _, p := range projects {
		if p.Status == projectdomain.StatusCancelled || !p.RemainingAmount.IsPositive() {
			continue
		}
		report.ProjectDebts = append(report.ProjectDebts, domain.ProjectDebt{
			ProjectID:       p.ID.String(),
			Name:            p.Name,
			CustomerID:      p.CustomerID.String(),
			AgreementAmount: p.AgreementAmount,
			TotalPaid:       p.TotalPaid,
			RemainingAmount: p.RemainingAmount,
		})
		report.Totals.ProjectOutstanding = report.Totals.ProjectOutstanding.Add(p.RemainingAmount)
	}

	report.Totals.TotalOutstanding = report.Totals.CompanyOutstanding.Add(report.Totals.ProjectOutstanding)
	return report, nil
}

func sumAmounts(rows []*transactiondomain.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, row := range rows {
		total = total.Add(row.Amount)
	}
	return total
}

func entriesOf(rows []*transactiondomain.Transaction) []cashflow.Entry {
	out := make([]cashflow.Entry, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Entry())
	}
	return out
}
