package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/smallbiznis/bizledger/internal/account/domain"
	"github.com/smallbiznis/bizledger/internal/cache"
	"github.com/smallbiznis/bizledger/internal/cashflow"
	"github.com/smallbiznis/bizledger/internal/clock"
	"github.com/smallbiznis/bizledger/internal/config"
	"github.com/smallbiznis/bizledger/internal/events"
	"github.com/smallbiznis/bizledger/internal/observability/metrics"
	projectdomain "github.com/smallbiznis/bizledger/internal/project/domain"
	"github.com/smallbiznis/bizledger/internal/report/domain"
	transactiondomain "github.com/smallbiznis/bizledger/internal/transaction/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultOverviewTTL = 30 * time.Second

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	Clock         clock.Clock
	Cfg           config.Config
	Repo          domain.Repository
	TxRepo        transactiondomain.Repository
	AccountRepo   accountdomain.Repository
	ProjectSvc    projectdomain.Service
	Reporting     *config.ReportingConfigHolder `optional:"true"`
	Hub           *events.Hub                   `optional:"true"`
	LedgerMetrics *metrics.LedgerMetrics        `optional:"true"`
}

type Service struct {
	db            *gorm.DB
	log           *zap.Logger
	clock         clock.Clock
	repo          domain.Repository
	txRepo        transactiondomain.Repository
	accountRepo   accountdomain.Repository
	projectSvc    projectdomain.Service
	reporting     *config.ReportingConfigHolder
	ledgerMetrics *metrics.LedgerMetrics
	overviews     cache.Cache[string, cashflow.OverviewStats]
	overviewTTL   time.Duration
}

func New(p Params) domain.Service {
	svc := &Service{
		db:            p.DB,
		log:           p.Log.Named("report.service"),
		clock:         p.Clock,
		repo:          p.Repo,
		txRepo:        p.TxRepo,
		accountRepo:   p.AccountRepo,
		projectSvc:    p.ProjectSvc,
		reporting:     p.Reporting,
		ledgerMetrics: p.LedgerMetrics,
		overviews:     cache.NewTTLCache[string, cashflow.OverviewStats](),
		overviewTTL:   defaultOverviewTTL,
	}
	if p.Cfg.ReportCacheTTLSec > 0 {
		svc.overviewTTL = time.Duration(p.Cfg.ReportCacheTTLSec) * time.Second
	}
	p.Hub.Listen(func(events.Event) { svc.overviews.Purge() })
	return svc
}

func (s *Service) Overview(ctx context.Context, req domain.OverviewRequest) (cashflow.OverviewStats, error) {
	start, end, err := resolveRange(req, s.clock.Now())
	if err != nil {
		return cashflow.OverviewStats{}, err
	}

	key := fmt.Sprintf("%d:%d", unixOrZero(start), unixOrZero(end))
	if stats, ok := s.overviews.Get(key); ok {
		return stats, nil
	}

	entries, err := s.entries(ctx, start, end)
	if err != nil {
		return cashflow.OverviewStats{}, err
	}
	accounts, err := s.accountRepo.List(ctx, s.db, accountdomain.ListFilter{})
	if err != nil {
		return cashflow.OverviewStats{}, err
	}
	balances := make([]cashflow.AccountBalance, 0, len(accounts))
	for _, a := range accounts {
		balances = append(balances, cashflow.AccountBalance{
			ID:      a.ID.Int64(),
			Name:    a.Name,
			Type:    string(a.Type),
			Balance: a.Balance,
		})
	}

	stats := cashflow.Aggregate(entries, balances, window(start, end), s.reporting.Get().IsFixedAsset)
	s.noteUnknown(stats.UnknownEntries, "overview")
	s.overviews.Set(key, stats, s.overviewTTL)
	return stats, nil
}

func (s *Service) Daily(ctx context.Context, date *time.Time) (domain.DailyReport, error) {
	day := s.clock.Now()
	if date != nil && !date.IsZero() {
		day = *date
	}
	start := startOfDay(day)
	end := start.AddDate(0, 0, 1)

	entries, err := s.entries(ctx, start, end)
	if err != nil {
		return domain.DailyReport{}, err
	}
	summary := cashflow.SummarizeDay(entries, window(start, end))
	s.noteUnknown(summary.UnknownEntries, "daily")

	newProjects, err := s.repo.CountProjectsCreated(ctx, s.db, start, end)
	if err != nil {
		return domain.DailyReport{}, err
	}
	expenses, err := s.repo.SumExpenses(ctx, s.db, start, end)
	if err != nil {
		return domain.DailyReport{}, err
	}
	sales, salesTotal, err := s.repo.SalesBetween(ctx, s.db, start, end)
	if err != nil {
		return domain.DailyReport{}, err
	}

	return domain.DailyReport{
		Date:             start.Format(time.DateOnly),
		Income:           summary.Income,
		Expense:          summary.Expense,
		NetFlow:          summary.NetFlow,
		TransactionCount: summary.TransactionCount,
		IncomeCount:      summary.IncomeCount,
		ExpenseCount:     summary.ExpenseCount,
		NewProjects:      newProjects,
		ExpensesRecorded: expenses,
		Sales:            sales,
		SalesTotal:       salesTotal,
	}, nil
}

func (s *Service) entries(ctx context.Context, start, end time.Time) ([]cashflow.Entry, error) {
	filter := transactiondomain.ListFilter{}
	if !start.IsZero() {
		filter.From = &start
	}
	if !end.IsZero() {
		filter.To = &end
	}
	rows, err := s.txRepo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}
	out := make([]cashflow.Entry, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Entry())
	}
	return out, nil
}

func (s *Service) noteUnknown(ids []int64, source string) {
	if len(ids) == 0 {
		return
	}
	for _, id := range ids {
		s.log.Warn("UnknownTransactionType", zap.Int64("transaction_id", id), zap.String("source", source))
	}
	if s.ledgerMetrics != nil {
		for range ids {
			s.ledgerMetrics.IncClassifierFallback(source)
		}
	}
}

// resolveRange returns [start, end) for a report range. Zero bounds are open.
func resolveRange(req domain.OverviewRequest, now time.Time) (time.Time, time.Time, error) {
	now = now.UTC()
	switch req.Range {
	case domain.RangeToday:
		start := startOfDay(now)
		return start, start.AddDate(0, 0, 1), nil
	case domain.RangeMonth:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, 0), nil
	case "", domain.RangeAll:
		return time.Time{}, time.Time{}, nil
	case domain.RangeCustom:
		if req.From == nil || req.From.IsZero() {
			return time.Time{}, time.Time{}, domain.ErrInvalidFrom
		}
		start := startOfDay(*req.From)
		var end time.Time
		if req.To != nil && !req.To.IsZero() {
			end = startOfDay(*req.To).AddDate(0, 0, 1)
			if !end.After(start) {
				return time.Time{}, time.Time{}, domain.ErrInvalidTo
			}
		}
		return start, end, nil
	default:
		return time.Time{}, time.Time{}, domain.ErrInvalidRange
	}
}

// window converts an exclusive end into the inclusive window Aggregate expects.
func window(start, end time.Time) cashflow.Window {
	w := cashflow.Window{Start: start}
	if !end.IsZero() {
		w.End = end.Add(-time.Nanosecond)
	}
	return w
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func unixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func idOrZero(id *snowflake.ID) snowflake.ID {
	if id == nil {
		return 0
	}
	return *id
}
