package service

import (
	"context"
	"testing"
	"time"

	auditdomain "github.com/smallbiznis/bizledger/internal/audit/domain"
	"github.com/smallbiznis/bizledger/internal/audit/repository"
	obscontext "github.com/smallbiznis/bizledger/internal/observability/context"
	"github.com/smallbiznis/bizledger/internal/testutil"
	"github.com/smallbiznis/bizledger/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupAuditService(t *testing.T) auditdomain.Service {
	t.Helper()
	return NewService(Params{
		DB:    testutil.NewDB(t),
		Log:   zap.NewNop(),
		GenID: testutil.NewNode(t),
		Repo:  repository.Provide(),
	})
}

func TestRecordCapturesRequestContext(t *testing.T) {
	svc := setupAuditService(t)
	node := testutil.NewNode(t)
	id := node.Generate()

	ctx := obscontext.WithRequestID(context.Background(), "req-7")
	ctx = obscontext.WithActorID(ctx, "cashier-2")
	ctx = obscontext.WithClientIP(ctx, "10.0.0.4")

	require.NoError(t, svc.Record(ctx, nil, auditdomain.Entry{
		Action:   "Transaction.Create",
		Target:   auditdomain.TargetTransaction,
		TargetID: id,
		Metadata: map[string]any{"amount": "120", "phone": "+251911223344"},
	}))

	logs, err := svc.List(ctx, auditdomain.ListAuditLogRequest{TargetID: id.String()})
	require.NoError(t, err)
	require.Len(t, logs.AuditLogs, 1)

	entry := logs.AuditLogs[0]
	assert.Equal(t, "transaction.create", entry.Action)
	assert.Equal(t, string(auditdomain.ActorTypeOperator), entry.ActorType)
	require.NotNil(t, entry.ActorID)
	assert.Equal(t, "cashier-2", *entry.ActorID)
	require.NotNil(t, entry.RequestID)
	assert.Equal(t, "req-7", *entry.RequestID)
	assert.Equal(t, "120", entry.Metadata["amount"])
	assert.Equal(t, "****3344", entry.Metadata["phone"])
}

func TestRecordRejectsMismatchedAction(t *testing.T) {
	svc := setupAuditService(t)
	ctx := context.Background()

	err := svc.Record(ctx, nil, auditdomain.Entry{Action: "sale.create", Target: auditdomain.TargetProduct})
	assert.ErrorIs(t, err, auditdomain.ErrInvalidAction)

	err = svc.Record(ctx, nil, auditdomain.Entry{Action: "invoice.create", Target: "invoice"})
	assert.ErrorIs(t, err, auditdomain.ErrInvalidTarget)

	err = svc.Record(ctx, nil, auditdomain.Entry{Action: "project..create", Target: auditdomain.TargetProject})
	assert.ErrorIs(t, err, auditdomain.ErrInvalidAction)
}

func TestListMatchesResourcePrefix(t *testing.T) {
	svc := setupAuditService(t)
	ctx := context.Background()
	node := testutil.NewNode(t)

	for _, action := range []string{"project.create", "project.labor.create", "expense.create"} {
		target := auditdomain.TargetProject
		if action == "expense.create" {
			target = auditdomain.TargetExpense
		}
		require.NoError(t, svc.Record(ctx, nil, auditdomain.Entry{Action: action, Target: target, TargetID: node.Generate()}))
	}

	logs, err := svc.List(ctx, auditdomain.ListAuditLogRequest{Action: "project.*"})
	require.NoError(t, err)
	assert.Len(t, logs.AuditLogs, 2)

	logs, err = svc.List(ctx, auditdomain.ListAuditLogRequest{Action: "project.create"})
	require.NoError(t, err)
	assert.Len(t, logs.AuditLogs, 1)

	_, err = svc.List(ctx, auditdomain.ListAuditLogRequest{Action: "drop table;"})
	assert.ErrorIs(t, err, auditdomain.ErrInvalidAction)
}

func TestListRejectsInvertedWindow(t *testing.T) {
	svc := setupAuditService(t)
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	end := start.Add(-time.Hour)

	_, err := svc.List(context.Background(), auditdomain.ListAuditLogRequest{StartAt: &start, EndAt: &end})
	assert.ErrorIs(t, err, auditdomain.ErrInvalidTimeRange)
}

func TestListPagesWithCursor(t *testing.T) {
	svc := setupAuditService(t)
	ctx := context.Background()
	node := testutil.NewNode(t)

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.Record(ctx, nil, auditdomain.Entry{
			Action:   "account.update",
			Target:   auditdomain.TargetAccount,
			TargetID: node.Generate(),
		}))
	}

	first, err := svc.List(ctx, auditdomain.ListAuditLogRequest{
		Pagination: pagination.Pagination{PageSize: 2},
		TargetType: "account",
	})
	require.NoError(t, err)
	assert.Len(t, first.AuditLogs, 2)
	assert.True(t, first.HasMore)
	assert.NotEmpty(t, first.NextPageToken)

	_, err = svc.List(ctx, auditdomain.ListAuditLogRequest{
		Pagination: pagination.Pagination{PageToken: "not-a-cursor"},
	})
	assert.ErrorIs(t, err, auditdomain.ErrInvalidPageToken)
}
