package service

import (
	"context"
	"sort"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bizledger/internal/cashflow"
	projectdomain "github.com/smallbiznis/bizledger/internal/project/domain"
	"github.com/smallbiznis/bizledger/internal/report/domain"
	"go.uber.org/zap"
)

func (s *Service) PaymentSchedule(ctx context.Context) ([]domain.ScheduleItem, error) {
	now := s.clock.Now()
	states, err := s.repo.ScheduleStates(ctx, s.db)
	if err != nil {
		return nil, err
	}

	items, err := s.projectItems(ctx)
	if err != nil {
		return nil, err
	}
	debts, err := s.debtItems(ctx)
	if err != nil {
		return nil, err
	}
	items = append(items, debts...)

	for i := range items {
		item := &items[i]
		current := states[item.ID].Status
		item.Status = cashflow.NextScheduleStatus(current, item.DueDate, now, item.RemainingAmount)
		if item.Status != cashflow.SchedulePaid || current == cashflow.SchedulePaid {
			continue
		}
		if err := s.repo.MarkPaid(ctx, s.db, item.ID, now); err != nil {
			return nil, err
		}
		s.log.Info("schedule item paid", zap.String("item", item.ID))
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].DueDate.Before(items[j].DueDate)
	})
	return items, nil
}

func (s *Service) projectItems(ctx context.Context) ([]domain.ScheduleItem, error) {
	projects, err := s.projectSvc.List(ctx, projectdomain.ListProjectRequest{})
	if err != nil {
		return nil, err
	}

	customerIDs := make([]snowflake.ID, 0, len(projects))
	for _, p := range projects {
		customerIDs = append(customerIDs, p.CustomerID)
	}
	customers, err := s.repo.Names(ctx, s.db, "customers", customerIDs)
	if err != nil {
		return nil, err
	}

	out := make([]domain.ScheduleItem, 0, len(projects))
	for _, p := range projects {
		if p.Status == projectdomain.StatusCancelled {
			continue
		}
		out = append(out, domain.ScheduleItem{
			ID:              "project-" + p.ID.String(),
			SourceType:      domain.SourceProject,
			SourceID:        p.ID.String(),
			Title:           p.Name,
			Counterparty:    customers[p.CustomerID],
			DueDate:         p.CompletionDate,
			Amount:          p.AgreementAmount,
			PaidAmount:      p.TotalPaid,
			RemainingAmount: p.RemainingAmount,
		})
	}
	return out, nil
}

// debtItems lists company level debts that carry a due date. Repayments to the
// same counterparty settle the oldest debt first.
func (s *Service) debtItems(ctx context.Context) ([]domain.ScheduleItem, error) {
	groups, err := s.companyDebts(ctx)
	if err != nil {
		return nil, err
	}
	names, err := s.partyNames(ctx, groups)
	if err != nil {
		return nil, err
	}

	out := make([]domain.ScheduleItem, 0)
	for _, g := range groups {
		paid := cashflow.AllocateRepayments(entriesOf(g.taken), entriesOf(g.repaid))
		for _, debt := range g.taken {
			if debt.DueDate == nil {
				continue
			}
			settled := paid[debt.ID.Int64()]
			out = append(out, domain.ScheduleItem{
				ID:              "debt-" + debt.ID.String(),
				SourceType:      domain.SourceDebt,
				SourceID:        debt.ID.String(),
				Title:           debt.Description,
				Counterparty:    names[g.party],
				DueDate:         *debt.DueDate,
				Amount:          debt.Amount,
				PaidAmount:      settled,
				RemainingAmount: cashflow.RemainingAmount(debt.Amount, settled),
			})
		}
	}
	return out, nil
}
