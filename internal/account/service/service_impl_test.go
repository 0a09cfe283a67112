package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/bizledger/internal/account/domain"
	"github.com/smallbiznis/bizledger/internal/account/repository"
	auditdomain "github.com/smallbiznis/bizledger/internal/audit/domain"
	auditrepository "github.com/smallbiznis/bizledger/internal/audit/repository"
	auditservice "github.com/smallbiznis/bizledger/internal/audit/service"
	"github.com/smallbiznis/bizledger/internal/cashflow"
	"github.com/smallbiznis/bizledger/internal/testutil"
	transactiondomain "github.com/smallbiznis/bizledger/internal/transaction/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupAccountService(t *testing.T) (domain.Service, auditdomain.Service, *gorm.DB) {
	t.Helper()
	db := testutil.NewDB(t)
	node := testutil.NewNode(t)
	audit := auditservice.NewService(auditservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  auditrepository.Provide(),
	})
	svc := New(Params{
		DB:       db,
		Log:      zap.NewNop(),
		GenID:    node,
		Repo:     repository.Provide(),
		AuditSvc: audit,
	})
	return svc, audit, db
}

func TestCreateAccountDefaults(t *testing.T) {
	svc, audit, _ := setupAccountService(t)
	ctx := context.Background()

	account, err := svc.Create(ctx, domain.CreateAccountRequest{Name: "  Till  ", Type: "cash"})
	require.NoError(t, err)
	assert.Equal(t, "Till", account.Name)
	assert.Equal(t, domain.AccountTypeCash, account.Type)
	assert.Equal(t, domain.DefaultCurrency, account.Currency)
	assert.True(t, account.Balance.IsZero())
	assert.True(t, account.IsActive)

	logs, err := audit.List(ctx, auditdomain.ListAuditLogRequest{Action: "account.create"})
	require.NoError(t, err)
	require.Len(t, logs.AuditLogs, 1)
	require.NotNil(t, logs.AuditLogs[0].TargetID)
	assert.Equal(t, account.ID.String(), *logs.AuditLogs[0].TargetID)
}

func TestCreateAccountValidation(t *testing.T) {
	svc, _, _ := setupAccountService(t)
	ctx := context.Background()
	negative := decimal.NewFromInt(-1)

	cases := []struct {
		name string
		req  domain.CreateAccountRequest
		want error
	}{
		{"empty name", domain.CreateAccountRequest{Name: " ", Type: "BANK"}, domain.ErrInvalidName},
		{"bad type", domain.CreateAccountRequest{Name: "x", Type: "CRYPTO"}, domain.ErrInvalidType},
		{"negative balance", domain.CreateAccountRequest{Name: "x", Type: "BANK", Balance: &negative}, domain.ErrInvalidBalance},
		{"bad currency", domain.CreateAccountRequest{Name: "x", Type: "BANK", Currency: "GBP"}, domain.ErrInvalidCurrency},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	items, err := svc.List(ctx, domain.ListAccountRequest{})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCreateAccountReportsEveryInvalidField(t *testing.T) {
	svc, _, _ := setupAccountService(t)
	negative := decimal.NewFromInt(-20)

	_, err := svc.Create(context.Background(), domain.CreateAccountRequest{
		Name:     "",
		Type:     "BANK",
		Balance:  &negative,
		Currency: "GBP",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidName)
	assert.ErrorIs(t, err, domain.ErrInvalidBalance)
	assert.ErrorIs(t, err, domain.ErrInvalidCurrency)
	assert.NotErrorIs(t, err, domain.ErrInvalidType)
}

func TestUpdateAccountKeepsBalance(t *testing.T) {
	svc, _, _ := setupAccountService(t)
	ctx := context.Background()
	opening := decimal.NewFromInt(500)

	account, err := svc.Create(ctx, domain.CreateAccountRequest{Name: "Bank", Type: "BANK", Balance: &opening, Currency: "usd"})
	require.NoError(t, err)
	assert.Equal(t, "USD", account.Currency)

	name := "Main bank"
	inactive := false
	updated, err := svc.Update(ctx, account.ID.String(), domain.UpdateAccountRequest{Name: &name, IsActive: &inactive})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
	assert.False(t, updated.IsActive)
	assert.True(t, updated.Balance.Equal(opening))

	_, err = svc.Update(ctx, "123", domain.UpdateAccountRequest{Name: &name})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.GetByID(ctx, "abc")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestDeleteAccountInUse(t *testing.T) {
	svc, _, db := setupAccountService(t)
	ctx := context.Background()

	used, err := svc.Create(ctx, domain.CreateAccountRequest{Name: "Used", Type: "BANK"})
	require.NoError(t, err)
	spare, err := svc.Create(ctx, domain.CreateAccountRequest{Name: "Spare", Type: "BANK"})
	require.NoError(t, err)

	now := time.Now().UTC()
	ref := transactiondomain.Transaction{
		ID:              1,
		Description:     "move",
		Amount:          decimal.NewFromInt(5),
		Type:            cashflow.TypeTransferOut,
		TransactionDate: now,
		FromAccountID:   &spare.ID,
		ToAccountID:     &used.ID,
		Origin:          cashflow.OriginUserEntry,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	require.NoError(t, db.Create(&ref).Error)

	assert.ErrorIs(t, svc.Delete(ctx, used.ID.String()), domain.ErrAccountInUse)
	assert.ErrorIs(t, svc.Delete(ctx, spare.ID.String()), domain.ErrAccountInUse)

	require.NoError(t, db.Delete(&transactiondomain.Transaction{}, ref.ID).Error)
	require.NoError(t, svc.Delete(ctx, spare.ID.String()))
	_, err = svc.GetByID(ctx, spare.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
