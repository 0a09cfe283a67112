package service

import (
	"context"
	"testing"

	auditdomain "github.com/smallbiznis/bizledger/internal/audit/domain"
	auditrepository "github.com/smallbiznis/bizledger/internal/audit/repository"
	auditservice "github.com/smallbiznis/bizledger/internal/audit/service"
	"github.com/smallbiznis/bizledger/internal/supplier/domain"
	"github.com/smallbiznis/bizledger/internal/testutil"
	"github.com/smallbiznis/bizledger/pkg/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupVendorService(t *testing.T) (domain.Service, auditdomain.Service) {
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
		Repo:     repository.ProvideStore[domain.Vendor](db),
		AuditSvc: audit,
	})
	return svc, audit
}

func TestCreateAndFindVendor(t *testing.T) {
	svc, audit := setupVendorService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.CreateVendorRequest{
		Name:          " Cement Depot ",
		ContactPerson: "Abebe",
		Email:         "orders@cement.example",
	})
	require.NoError(t, err)
	assert.Equal(t, "Cement Depot", created.Name)
	require.NotNil(t, created.ContactPerson)
	assert.Nil(t, created.Phone)

	found, err := svc.GetByID(ctx, created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	logs, err := audit.List(ctx, auditdomain.ListAuditLogRequest{Action: "vendor.create"})
	require.NoError(t, err)
	assert.Len(t, logs.AuditLogs, 1)

	_, err = svc.GetByID(ctx, "98765")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.GetByID(ctx, "not-an-id")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestCreateVendorValidation(t *testing.T) {
	svc, _ := setupVendorService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateVendorRequest{Name: "  "})
	assert.ErrorIs(t, err, domain.ErrInvalidName)
	_, err = svc.Create(ctx, domain.CreateVendorRequest{Name: "Timber", Email: "timber.example"})
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)

	items, err := svc.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestListVendorsFiltersByName(t *testing.T) {
	svc, _ := setupVendorService(t)
	ctx := context.Background()

	for _, name := range []string{"Steel Works", "Paint House", "steel yard"} {
		_, err := svc.Create(ctx, domain.CreateVendorRequest{Name: name})
		require.NoError(t, err)
	}

	items, err := svc.List(ctx, "STEEL")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Steel Works", items[0].Name)
	assert.Equal(t, "steel yard", items[1].Name)
}
