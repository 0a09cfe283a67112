package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	accountrepository "github.com/smallbiznis/bizledger/internal/account/repository"
	accountservice "github.com/smallbiznis/bizledger/internal/account/service"
	auditrepository "github.com/smallbiznis/bizledger/internal/audit/repository"
	auditservice "github.com/smallbiznis/bizledger/internal/audit/service"
	"github.com/smallbiznis/bizledger/internal/clock"
	"github.com/smallbiznis/bizledger/internal/config"
	customerrepository "github.com/smallbiznis/bizledger/internal/customer/repository"
	customerservice "github.com/smallbiznis/bizledger/internal/customer/service"
	"github.com/smallbiznis/bizledger/internal/events"
	expenserepository "github.com/smallbiznis/bizledger/internal/expense/repository"
	projectrepository "github.com/smallbiznis/bizledger/internal/project/repository"
	projectservice "github.com/smallbiznis/bizledger/internal/project/service"
	reportrepository "github.com/smallbiznis/bizledger/internal/report/repository"
	reportservice "github.com/smallbiznis/bizledger/internal/report/service"
	"github.com/smallbiznis/bizledger/internal/testutil"
	transactionrepository "github.com/smallbiznis/bizledger/internal/transaction/repository"
	transactionservice "github.com/smallbiznis/bizledger/internal/transaction/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type apiHarness struct {
	srv *Server
	hub *events.Hub
}

func newAPIHarness(t *testing.T) *apiHarness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(t)
	node := testutil.NewNode(t)
	log := zap.NewNop()
	cfg := config.Config{DefaultCurrency: "ETB"}

	hub := events.NewHub()
	bus := events.NewBus(events.BusParams{Cfg: cfg, Log: log, Hub: hub})

	auditSvc := auditservice.NewService(auditservice.Params{DB: db, Log: log, GenID: node, Repo: auditrepository.Provide()})
	accountRepo := accountrepository.Provide()
	txRepo := transactionrepository.Provide()

	accountSvc := accountservice.New(accountservice.Params{
		DB: db, Log: log, GenID: node, Repo: accountRepo, AuditSvc: auditSvc, Events: bus,
	})
	txSvc := transactionservice.New(transactionservice.Params{
		DB: db, Log: log, GenID: node, Repo: txRepo, AccountRepo: accountRepo, AuditSvc: auditSvc, Events: bus,
	})
	projectSvc := projectservice.New(projectservice.Params{
		DB: db, Log: log, GenID: node,
		Repo:        projectrepository.Provide(),
		TxSvc:       txSvc,
		TxRepo:      txRepo,
		ExpenseRepo: expenserepository.Provide(),
		AuditSvc:    auditSvc,
		Events:      bus,
	})
	customerSvc := customerservice.New(customerservice.Params{
		DB: db, Log: log, GenID: node, Repo: customerrepository.Provide(), AuditSvc: auditSvc,
	})
	reportSvc := reportservice.New(reportservice.Params{
		DB:          db,
		Log:         log,
		Clock:       clock.SystemClock{},
		Cfg:         cfg,
		Repo:        reportrepository.Provide(),
		TxRepo:      txRepo,
		AccountRepo: accountRepo,
		ProjectSvc:  projectSvc,
		Hub:         hub,
	})

	srv := NewServer(ServerParams{
		Gin:         NewEngine(EngineParams{}),
		Cfg:         cfg,
		AccountSvc:  accountSvc,
		TxSvc:       txSvc,
		ProjectSvc:  projectSvc,
		CustomerSvc: customerSvc,
		ReportSvc:   reportSvc,
		AuditSvc:    auditSvc,
		Hub:         hub,
	})
	return &apiHarness{srv: srv, hub: hub}
}

func (h *apiHarness) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Buffer
	if body != "" {
		reader = bytes.NewBufferString(body)
	} else {
		reader = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	h.srv.Engine().ServeHTTP(resp, req)
	return resp
}

// data decodes the {"data": ...} envelope into out.
func data(t *testing.T, resp *httptest.ResponseRecorder, out any) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope), resp.Body.String())
	require.NoError(t, json.Unmarshal(envelope.Data, out), resp.Body.String())
}

func apiError(t *testing.T, resp *httptest.ResponseRecorder) errorPayload {
	t.Helper()
	var out errorResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out), resp.Body.String())
	return out.Error
}

type accountView struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Balance decimal.Decimal `json:"balance"`
}

type idView struct {
	ID string `json:"id"`
}

func (h *apiHarness) balance(t *testing.T, accountID string) decimal.Decimal {
	t.Helper()
	resp := h.do(t, http.MethodGet, "/api/accounting/accounts", "")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var accounts []accountView
	data(t, resp, &accounts)
	for _, account := range accounts {
		if account.ID == accountID {
			return account.Balance
		}
	}
	t.Fatalf("account %s not listed", accountID)
	return decimal.Zero
}

func (h *apiHarness) createAccount(t *testing.T, body string) string {
	t.Helper()
	resp := h.do(t, http.MethodPost, "/api/accounting/accounts", body)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	var account accountView
	data(t, resp, &account)
	require.NotEmpty(t, account.ID)
	return account.ID
}

func TestAPIDeleteTransactionRestoresBalance(t *testing.T) {
	h := newAPIHarness(t)

	accountID := h.createAccount(t, `{"name":"CBE","type":"BANK","balance":0,"currency":"ETB"}`)

	resp := h.do(t, http.MethodPost, "/api/accounting/transactions",
		`{"type":"INCOME","amount":1000,"description":"Deposit","accountId":"`+accountID+`"}`)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	var created idView
	data(t, resp, &created)

	assert.True(t, h.balance(t, accountID).Equal(decimal.NewFromInt(1000)))

	resp = h.do(t, http.MethodDelete, "/api/accounting/transactions/"+created.ID, "")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var deleted struct {
		Message string       `json:"message"`
		Event   events.Event `json:"event"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &deleted))
	assert.NotEmpty(t, deleted.Message)
	assert.Equal(t, events.TypeTransactionDeleted, deleted.Event.Type)
	assert.Equal(t, created.ID, deleted.Event.TransactionID)
	assert.Contains(t, deleted.Event.AccountIDs, accountID)

	assert.True(t, h.balance(t, accountID).IsZero())

	resp = h.do(t, http.MethodGet, "/api/accounting/transactions/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestAPIProjectRemainingAmount(t *testing.T) {
	h := newAPIHarness(t)

	accountID := h.createAccount(t, `{"name":"Cash box","type":"CASH","currency":"ETB"}`)

	resp := h.do(t, http.MethodPost, "/api/customers", `{"name":"Abebe Construction"}`)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	var customer idView
	data(t, resp, &customer)

	resp = h.do(t, http.MethodPost, "/api/projects", `{
		"name":"Warehouse roof",
		"customerId":"`+customer.ID+`",
		"agreementAmount":10000,
		"advancePaid":2000,
		"advanceAccountId":"`+accountID+`",
		"completionDate":"2026-12-31"
	}`)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	var project idView
	data(t, resp, &project)

	resp = h.do(t, http.MethodPost, "/api/accounting/transactions",
		`{"type":"INCOME","amount":3000,"description":"Second installment","accountId":"`+accountID+`","projectId":"`+project.ID+`"}`)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	resp = h.do(t, http.MethodGet, "/api/projects/"+project.ID, "")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var detail struct {
		TotalPaid       decimal.Decimal `json:"totalPaid"`
		RemainingAmount decimal.Decimal `json:"remainingAmount"`
	}
	data(t, resp, &detail)
	assert.True(t, detail.TotalPaid.Equal(decimal.NewFromInt(5000)), detail.TotalPaid.String())
	assert.True(t, detail.RemainingAmount.Equal(decimal.NewFromInt(5000)), detail.RemainingAmount.String())

	// The advance credited the account once and the installment once.
	assert.True(t, h.balance(t, accountID).Equal(decimal.NewFromInt(5000)))
}

func TestAPIValidationErrorsAreFieldKeyed(t *testing.T) {
	h := newAPIHarness(t)

	resp := h.do(t, http.MethodPost, "/api/accounting/accounts", `{"type":"BANK","currency":"ETB"}`)
	require.Equal(t, http.StatusBadRequest, resp.Code)
	payload := apiError(t, resp)
	assert.Equal(t, "validation_error", payload.Type)
	require.Len(t, payload.Errors, 1)
	assert.Equal(t, "name", payload.Errors[0].Field)
	assert.Equal(t, "invalid_name", payload.Errors[0].Code)

	resp = h.do(t, http.MethodPost, "/api/accounting/accounts", `{"name":"Wallet","type":"BANK","balance":-5}`)
	require.Equal(t, http.StatusBadRequest, resp.Code)
	payload = apiError(t, resp)
	require.Len(t, payload.Errors, 1)
	assert.Equal(t, "balance", payload.Errors[0].Field)

	resp = h.do(t, http.MethodPost, "/api/accounting/accounts", `{"name":"Wallet","type":"SAFE"}`)
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "invalid_type", apiError(t, resp).Errors[0].Code)

	accountID := h.createAccount(t, `{"name":"Wallet","type":"CASH"}`)

	resp = h.do(t, http.MethodPost, "/api/accounting/transactions",
		`{"type":"INCOME","amount":0,"description":"Nothing","accountId":"`+accountID+`"}`)
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "amount", apiError(t, resp).Errors[0].Field)

	resp = h.do(t, http.MethodPost, "/api/accounting/transactions",
		`{"type":"REFUND","amount":10,"description":"Odd","accountId":"`+accountID+`"}`)
	require.Equal(t, http.StatusBadRequest, resp.Code)
	payload = apiError(t, resp)
	assert.Equal(t, "unknown_transaction_type", payload.Errors[0].Code)
	assert.Equal(t, "type", payload.Errors[0].Field)

	resp = h.do(t, http.MethodPost, "/api/accounting/transactions",
		`{"type":"INCOME","amount":10,"description":"Late","accountId":"`+accountID+`","transactionDate":"yesterday"}`)
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "transactionDate", apiError(t, resp).Errors[0].Field)

	assert.True(t, h.balance(t, accountID).IsZero())
}

func TestAPIDeleteReferencedAccountConflicts(t *testing.T) {
	h := newAPIHarness(t)

	accountID := h.createAccount(t, `{"name":"CBE","type":"BANK"}`)
	resp := h.do(t, http.MethodPost, "/api/accounting/transactions",
		`{"type":"EXPENSE","amount":"12.50","description":"Fuel","accountId":"`+accountID+`"}`)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	resp = h.do(t, http.MethodDelete, "/api/accounting/accounts/"+accountID, "")
	require.Equal(t, http.StatusConflict, resp.Code)
	assert.Equal(t, "account_in_use", apiError(t, resp).Message)

	assert.True(t, h.balance(t, accountID).Equal(decimal.RequireFromString("-12.5")))
}

func TestAPIOverviewReport(t *testing.T) {
	h := newAPIHarness(t)

	accountID := h.createAccount(t, `{"name":"CBE","type":"BANK"}`)
	for _, body := range []string{
		`{"type":"INCOME","amount":800,"description":"Sale","accountId":"` + accountID + `"}`,
		`{"type":"EXPENSE","amount":300,"description":"Rent","accountId":"` + accountID + `"}`,
		`{"type":"OTHER","amount":50,"description":"Note","accountId":"` + accountID + `"}`,
	} {
		resp := h.do(t, http.MethodPost, "/api/accounting/transactions", body)
		require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	}

	resp := h.do(t, http.MethodGet, "/api/accounting/reports?range=all", "")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var stats struct {
		TotalIncome   decimal.Decimal `json:"totalIncome"`
		TotalExpenses decimal.Decimal `json:"totalExpenses"`
		NetFlow       decimal.Decimal `json:"netFlow"`
	}
	data(t, resp, &stats)
	assert.True(t, stats.TotalIncome.Equal(decimal.NewFromInt(800)))
	assert.True(t, stats.TotalExpenses.Equal(decimal.NewFromInt(300)))
	assert.True(t, stats.NetFlow.Equal(decimal.NewFromInt(500)))

	resp = h.do(t, http.MethodGet, "/api/accounting/reports?range=fortnight", "")
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "range", apiError(t, resp).Errors[0].Field)

	resp = h.do(t, http.MethodGet, "/api/accounting/reports?range=custom&from=2026-13-01", "")
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "invalid_from", apiError(t, resp).Errors[0].Code)
}

func TestAPIStreamEventsReplaysBacklog(t *testing.T) {
	h := newAPIHarness(t)

	accountID := h.createAccount(t, `{"name":"CBE","type":"BANK"}`)
	resp := h.do(t, http.MethodPost, "/api/accounting/transactions",
		`{"type":"INCOME","amount":25,"description":"Tip","accountId":"`+accountID+`"}`)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/api/events?topics=transactions", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	h.srv.Engine().ServeHTTP(rec, req)

	body := rec.Body.String()
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(body, "retry: 2000\n\n"), body)
	assert.Contains(t, body, "event: transaction_created\n")
	assert.NotContains(t, body, "account_updated")

	resp = h.do(t, http.MethodGet, "/api/events?topics=invoices", "")
	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestAPIAuditLogsRecordMutations(t *testing.T) {
	h := newAPIHarness(t)

	h.createAccount(t, `{"name":"CBE","type":"BANK"}`)

	resp := h.do(t, http.MethodGet, "/api/audit-logs?pageSize=10", "")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var logs []struct {
		Action     string `json:"action"`
		TargetType string `json:"targetType"`
	}
	data(t, resp, &logs)
	require.NotEmpty(t, logs)
	assert.Equal(t, "account", logs[0].TargetType)
}

func TestAPIUnknownRouteIsNotFound(t *testing.T) {
	h := newAPIHarness(t)

	resp := h.do(t, http.MethodGet, "/api/invoices", "")
	require.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "not_found", apiError(t, resp).Type)
}
