package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	accountdomain "github.com/smallbiznis/bizledger/internal/account/domain"
	accountrepository "github.com/smallbiznis/bizledger/internal/account/repository"
	accountservice "github.com/smallbiznis/bizledger/internal/account/service"
	"github.com/smallbiznis/bizledger/internal/cashflow"
	"github.com/smallbiznis/bizledger/internal/clock"
	"github.com/smallbiznis/bizledger/internal/config"
	customerdomain "github.com/smallbiznis/bizledger/internal/customer/domain"
	customerrepository "github.com/smallbiznis/bizledger/internal/customer/repository"
	customerservice "github.com/smallbiznis/bizledger/internal/customer/service"
	"github.com/smallbiznis/bizledger/internal/events"
	expenserepository "github.com/smallbiznis/bizledger/internal/expense/repository"
	projectdomain "github.com/smallbiznis/bizledger/internal/project/domain"
	projectrepository "github.com/smallbiznis/bizledger/internal/project/repository"
	projectservice "github.com/smallbiznis/bizledger/internal/project/service"
	"github.com/smallbiznis/bizledger/internal/report/domain"
	"github.com/smallbiznis/bizledger/internal/report/repository"
	"github.com/smallbiznis/bizledger/internal/testutil"
	transactiondomain "github.com/smallbiznis/bizledger/internal/transaction/domain"
	transactionrepository "github.com/smallbiznis/bizledger/internal/transaction/repository"
	transactionservice "github.com/smallbiznis/bizledger/internal/transaction/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db        *gorm.DB
	clock     *clock.FakeClock
	accounts  accountdomain.Service
	customers customerdomain.Service
	txs       transactiondomain.Service
	txRepo    transactiondomain.Repository
	projects  projectdomain.Service
	svc       domain.Service
}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()

	db := testutil.NewDB(t)
	node := testutil.NewNode(t)
	log := zap.NewNop()
	hub := events.NewHub()
	bus := events.NewBus(events.BusParams{Cfg: config.Config{}, Log: log, Hub: hub})

	accountRepo := accountrepository.Provide()
	txRepo := transactionrepository.Provide()
	txSvc := transactionservice.New(transactionservice.Params{
		DB:          db,
		Log:         log,
		GenID:       node,
		Repo:        txRepo,
		AccountRepo: accountRepo,
		Events:      bus,
	})
	projectSvc := projectservice.New(projectservice.Params{
		DB:          db,
		Log:         log,
		GenID:       node,
		Repo:        projectrepository.Provide(),
		TxSvc:       txSvc,
		TxRepo:      txRepo,
		ExpenseRepo: expenserepository.Provide(),
		Events:      bus,
	})
	fakeClock := clock.NewFakeClock(now)

	return &fixture{
		db:    db,
		clock: fakeClock,
		accounts: accountservice.New(accountservice.Params{
			DB: db, Log: log, GenID: node, Repo: accountRepo, Events: bus,
		}),
		customers: customerservice.New(customerservice.Params{
			DB: db, Log: log, GenID: node, Repo: customerrepository.Provide(),
		}),
		txs:      txSvc,
		txRepo:   txRepo,
		projects: projectSvc,
		svc: New(Params{
			DB:          db,
			Log:         log,
			Clock:       fakeClock,
			Repo:        repository.Provide(),
			TxRepo:      txRepo,
			AccountRepo: accountRepo,
			ProjectSvc:  projectSvc,
			Hub:         hub,
		}),
	}
}

func (f *fixture) account(t *testing.T, name string) string {
	t.Helper()
	account, err := f.accounts.Create(context.Background(), accountdomain.CreateAccountRequest{
		Name: name,
		Type: "BANK",
	})
	require.NoError(t, err)
	return account.ID.String()
}

func (f *fixture) customer(t *testing.T, name string) string {
	t.Helper()
	customer, err := f.customers.Create(context.Background(), customerdomain.CreateCustomerRequest{Name: name})
	require.NoError(t, err)
	return customer.ID.String()
}

func (f *fixture) record(t *testing.T, req transactiondomain.CreateTransactionRequest) transactiondomain.Transaction {
	t.Helper()
	item, err := f.txs.Create(context.Background(), req)
	require.NoError(t, err)
	return item
}

func at(year int, month time.Month, day, hour int) *time.Time {
	t := time.Date(year, month, day, hour, 0, 0, 0, time.UTC)
	return &t
}

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func mustID(t *testing.T, raw string) snowflake.ID {
	t.Helper()
	id, err := snowflake.ParseString(raw)
	require.NoError(t, err)
	return id
}

func TestOverviewTotals(t *testing.T) {
	f := newFixture(t, time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()
	acc := f.account(t, "Main")

	f.record(t, transactiondomain.CreateTransactionRequest{
		Description: "invoice", Amount: dec(1000), Type: "INCOME", AccountID: acc, TransactionDate: at(2025, 1, 10, 9),
	})
	f.record(t, transactiondomain.CreateTransactionRequest{
		Description: "truck", Amount: dec(200), Type: "EXPENSE", Category: "FIXED_ASSET_PURCHASE", AccountID: acc, TransactionDate: at(2025, 3, 2, 9),
	})
	f.record(t, transactiondomain.CreateTransactionRequest{
		Description: "fuel", Amount: dec(100), Type: "EXPENSE", AccountID: acc, TransactionDate: at(2025, 3, 3, 9),
	})
	f.record(t, transactiondomain.CreateTransactionRequest{
		Description: "note", Amount: dec(50), Type: "OTHER", AccountID: acc, TransactionDate: at(2025, 3, 4, 9),
	})

	stats, err := f.svc.Overview(ctx, domain.OverviewRequest{Range: domain.RangeAll})
	require.NoError(t, err)

	assert.True(t, stats.TotalIncome.Equal(dec(1000)), "income %s", stats.TotalIncome)
	assert.True(t, stats.TotalExpenses.Equal(dec(100)), "expenses %s", stats.TotalExpenses)
	assert.True(t, stats.FixedAssetExpenses.Equal(dec(200)), "fixed assets %s", stats.FixedAssetExpenses)
	assert.True(t, stats.NetFlow.Equal(dec(900)), "net %s", stats.NetFlow)
	assert.True(t, stats.TotalBalance.Equal(dec(700)), "balance %s", stats.TotalBalance)
	assert.Equal(t, 4, stats.TransactionCount)

	require.Len(t, stats.MonthlyCashFlow, 3)
	assert.Equal(t, "2025-02", stats.MonthlyCashFlow[1].Month)
	assert.True(t, stats.MonthlyCashFlow[1].Net.IsZero())
	assert.True(t, stats.MonthlyCashFlow[2].Expense.Equal(dec(300)))

	require.Len(t, stats.AccountDistribution, 1)
	assert.True(t, stats.AccountDistribution[0].Share.Equal(dec(100)))

	month, err := f.svc.Overview(ctx, domain.OverviewRequest{Range: domain.RangeMonth})
	require.NoError(t, err)
	assert.True(t, month.TotalIncome.IsZero())
	assert.Equal(t, 3, month.TransactionCount)
}

func TestOverviewCacheIsPurgedByEvents(t *testing.T) {
	f := newFixture(t, time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()
	acc := f.account(t, "Main")

	f.record(t, transactiondomain.CreateTransactionRequest{
		Description: "first", Amount: dec(100), Type: "INCOME", AccountID: acc, TransactionDate: at(2025, 3, 1, 9),
	})
	stats, err := f.svc.Overview(ctx, domain.OverviewRequest{Range: domain.RangeAll})
	require.NoError(t, err)
	require.True(t, stats.TotalIncome.Equal(dec(100)))

	// A row written behind the services' back publishes nothing, so the cached value stays.
	accountID := mustID(t, acc)
	silent := transactiondomain.Transaction{
		ID:              999,
		Description:     "silent",
		Amount:          dec(40),
		Type:            cashflow.TypeIncome,
		TransactionDate: *at(2025, 3, 2, 9),
		AccountID:       &accountID,
		Origin:          cashflow.OriginUserEntry,
		CreatedAt:       time.Now().UTC(),
		UpdatedAt:       time.Now().UTC(),
	}
	require.NoError(t, f.txRepo.Insert(ctx, f.db, &silent))
	stats, err = f.svc.Overview(ctx, domain.OverviewRequest{Range: domain.RangeAll})
	require.NoError(t, err)
	assert.True(t, stats.TotalIncome.Equal(dec(100)))

	f.record(t, transactiondomain.CreateTransactionRequest{
		Description: "second", Amount: dec(60), Type: "INCOME", AccountID: acc, TransactionDate: at(2025, 3, 3, 9),
	})
	stats, err = f.svc.Overview(ctx, domain.OverviewRequest{Range: domain.RangeAll})
	require.NoError(t, err)
	assert.True(t, stats.TotalIncome.Equal(dec(200)), "income %s", stats.TotalIncome)
}

func TestOverviewCustomRange(t *testing.T) {
	f := newFixture(t, time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()
	acc := f.account(t, "Main")

	f.record(t, transactiondomain.CreateTransactionRequest{
		Description: "late on the 10th", Amount: dec(10), Type: "INCOME", AccountID: acc, TransactionDate: at(2025, 3, 10, 23),
	})
	f.record(t, transactiondomain.CreateTransactionRequest{
		Description: "the 11th", Amount: dec(20), Type: "INCOME", AccountID: acc, TransactionDate: at(2025, 3, 11, 1),
	})

	stats, err := f.svc.Overview(ctx, domain.OverviewRequest{
		Range: domain.RangeCustom,
		From:  at(2025, 3, 10, 0),
		To:    at(2025, 3, 10, 0),
	})
	require.NoError(t, err)
	assert.True(t, stats.TotalIncome.Equal(dec(10)), "income %s", stats.TotalIncome)

	_, err = f.svc.Overview(ctx, domain.OverviewRequest{Range: domain.RangeCustom})
	assert.ErrorIs(t, err, domain.ErrInvalidFrom)

	_, err = f.svc.Overview(ctx, domain.OverviewRequest{
		Range: domain.RangeCustom,
		From:  at(2025, 3, 10, 0),
		To:    at(2025, 3, 8, 0),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTo)

	_, err = f.svc.Overview(ctx, domain.OverviewRequest{Range: "fortnight"})
	assert.ErrorIs(t, err, domain.ErrInvalidRange)
}

func TestDailyUsesCanonicalClassifier(t *testing.T) {
	f := newFixture(t, time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()
	acc := f.account(t, "Main")

	day := at(2025, 3, 12, 0)
	for _, req := range []transactiondomain.CreateTransactionRequest{
		{Description: "sale", Amount: dec(100), Type: "INCOME"},
		{Description: "loan back", Amount: dec(50), Type: "DEBT_REPAID"},
		{Description: "rent", Amount: dec(30), Type: "EXPENSE"},
		{Description: "loan out", Amount: dec(20), Type: "DEBT_TAKEN"},
		{Description: "memo", Amount: dec(5), Type: "OTHER"},
	} {
		req.AccountID = acc
		req.TransactionDate = at(2025, 3, 12, 10)
		f.record(t, req)
	}
	f.record(t, transactiondomain.CreateTransactionRequest{
		Description: "next day", Amount: dec(999), Type: "INCOME", AccountID: acc, TransactionDate: at(2025, 3, 13, 0),
	})

	report, err := f.svc.Daily(ctx, day)
	require.NoError(t, err)

	assert.Equal(t, "2025-03-12", report.Date)
	assert.True(t, report.Income.Equal(dec(150)), "income %s", report.Income)
	assert.True(t, report.Expense.Equal(dec(50)), "expense %s", report.Expense)
	assert.True(t, report.NetFlow.Equal(dec(100)))
	assert.Equal(t, 5, report.TransactionCount)
	assert.Equal(t, 2, report.IncomeCount)
	assert.Equal(t, 2, report.ExpenseCount)
	assert.Zero(t, report.Sales)
	assert.True(t, report.SalesTotal.IsZero())
}

func TestPaymentScheduleKeepsPaidTerminal(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	f := newFixture(t, now)
	ctx := context.Background()
	acc := f.account(t, "Main")
	cust := f.customer(t, "Acme")

	advance := dec(200)
	completion := now.AddDate(0, 0, -1)
	project, err := f.projects.Create(ctx, projectdomain.CreateProjectRequest{
		Name:             "Warehouse",
		CustomerID:       cust,
		AgreementAmount:  dec(1000),
		AdvancePaid:      &advance,
		AdvanceAccountID: acc,
		CompletionDate:   &completion,
	})
	require.NoError(t, err)

	due := now.AddDate(0, 1, 0)
	debt := f.record(t, transactiondomain.CreateTransactionRequest{
		Description: "supplier credit", Amount: dec(500), Type: "DEBT_TAKEN", AccountID: acc, CustomerID: cust,
		TransactionDate: at(2025, 5, 1, 9), DueDate: &due,
	})
	repayment := f.record(t, transactiondomain.CreateTransactionRequest{
		Description: "repayment", Amount: dec(500), Type: "DEBT_REPAID", AccountID: acc, CustomerID: cust,
		TransactionDate: at(2025, 5, 20, 9),
	})

	items, err := f.svc.PaymentSchedule(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)

	byID := map[string]domain.ScheduleItem{}
	for _, item := range items {
		byID[item.ID] = item
	}

	projectItem := byID["project-"+project.ID.String()]
	assert.Equal(t, domain.SourceProject, projectItem.SourceType)
	assert.Equal(t, "Acme", projectItem.Counterparty)
	assert.True(t, projectItem.PaidAmount.Equal(dec(200)), "paid %s", projectItem.PaidAmount)
	assert.True(t, projectItem.RemainingAmount.Equal(dec(800)))
	assert.Equal(t, cashflow.ScheduleOverdue, projectItem.Status)

	debtItem := byID["debt-"+debt.ID.String()]
	assert.Equal(t, domain.SourceDebt, debtItem.SourceType)
	assert.True(t, debtItem.RemainingAmount.IsZero())
	assert.Equal(t, cashflow.SchedulePaid, debtItem.Status)

	_, err = f.txs.Delete(ctx, repayment.ID.String())
	require.NoError(t, err)

	items, err = f.svc.PaymentSchedule(ctx)
	require.NoError(t, err)
	for _, item := range items {
		if item.ID == debtItem.ID {
			assert.True(t, item.RemainingAmount.Equal(dec(500)))
			assert.Equal(t, cashflow.SchedulePaid, item.Status)
		}
	}
}

func TestDebtsReport(t *testing.T) {
	f := newFixture(t, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()
	acc := f.account(t, "Main")
	cust := f.customer(t, "Acme")

	completion := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	project, err := f.projects.Create(ctx, projectdomain.CreateProjectRequest{
		Name:            "Fit-out",
		CustomerID:      cust,
		AgreementAmount: dec(800),
		CompletionDate:  &completion,
	})
	require.NoError(t, err)

	f.record(t, transactiondomain.CreateTransactionRequest{
		Description: "loan", Amount: dec(500), Type: "DEBT_TAKEN", AccountID: acc, CustomerID: cust, TransactionDate: at(2025, 5, 1, 9),
	})
	f.record(t, transactiondomain.CreateTransactionRequest{
		Description: "part", Amount: dec(200), Type: "DEBT_REPAID", AccountID: acc, CustomerID: cust, TransactionDate: at(2025, 5, 2, 9),
	})
	f.record(t, transactiondomain.CreateTransactionRequest{
		Description: "cash advance", Amount: dec(100), Type: "DEBT_TAKEN", AccountID: acc, TransactionDate: at(2025, 5, 3, 9),
	})
	f.record(t, transactiondomain.CreateTransactionRequest{
		Description: "project loan", Amount: dec(70), Type: "DEBT_TAKEN", AccountID: acc, ProjectID: project.ID.String(), TransactionDate: at(2025, 5, 4, 9),
	})

	report, err := f.svc.Debts(ctx)
	require.NoError(t, err)

	require.Len(t, report.CompanyDebts, 2)
	first := report.CompanyDebts[0]
	assert.Equal(t, domain.CounterpartyCustomer, first.CounterpartyType)
	assert.Equal(t, cust, first.CounterpartyID)
	assert.Equal(t, "Acme", first.Name)
	assert.True(t, first.Outstanding.Equal(dec(300)))

	second := report.CompanyDebts[1]
	assert.Equal(t, domain.CounterpartyUnassigned, second.CounterpartyType)
	assert.Equal(t, unassignedName, second.Name)
	assert.True(t, second.Outstanding.Equal(dec(100)))

	require.Len(t, report.ProjectDebts, 1)
	assert.Equal(t, project.ID.String(), report.ProjectDebts[0].ProjectID)
	assert.True(t, report.ProjectDebts[0].RemainingAmount.Equal(dec(800)))

	assert.True(t, report.Totals.CompanyOutstanding.Equal(dec(400)))
	assert.True(t, report.Totals.ProjectOutstanding.Equal(dec(800)))
	assert.True(t, report.Totals.TotalOutstanding.Equal(dec(1200)))
}

func TestResolveRange(t *testing.T) {
	now := time.Date(2025, 2, 14, 15, 30, 0, 0, time.UTC)

	start, end, err := resolveRange(domain.OverviewRequest{Range: domain.RangeToday}, now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 2, 14, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC), end)

	start, end, err = resolveRange(domain.OverviewRequest{Range: domain.RangeMonth}, now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), end)

	start, end, err = resolveRange(domain.OverviewRequest{}, now)
	require.NoError(t, err)
	assert.True(t, start.IsZero())
	assert.True(t, end.IsZero())

	w := window(time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	assert.True(t, w.Contains(time.Date(2025, 2, 28, 23, 59, 59, 0, time.UTC)))
	assert.False(t, w.Contains(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)))
}
