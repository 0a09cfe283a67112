package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/bizledger/internal/cashflow"
	"github.com/smallbiznis/bizledger/internal/events"
	"gorm.io/gorm"
)

type CreateTransactionRequest struct {
	Description     string          `json:"description"`
	Amount          decimal.Decimal `json:"amount"`
	Type            string          `json:"type"`
	Category        string          `json:"category"`
	TransactionDate *time.Time      `json:"transactionDate"`
	AccountID       string          `json:"accountId"`
	FromAccountID   string          `json:"fromAccountId"`
	ToAccountID     string          `json:"toAccountId"`
	ProjectID       string          `json:"projectId"`
	CustomerID      string          `json:"customerId"`
	VendorID        string          `json:"vendorId"`
	EmployeeID      string          `json:"employeeId"`
	UserID          string          `json:"userId"`
	DueDate         *time.Time      `json:"dueDate"`
	Reference       string          `json:"reference"`
}

// UpdateTransactionRequest replaces the editable fields of a transaction.
type UpdateTransactionRequest = CreateTransactionRequest

type ListTransactionRequest struct {
	Limit               int
	IncludeDebts        bool
	IncludeProjectDebts bool
	Type                string
	AccountID           string
	ProjectID           string
	From                *time.Time
	To                  *time.Time
}

type DeleteResult struct {
	Message string       `json:"message"`
	Event   events.Event `json:"event"`
}

type Service interface {
	Create(ctx context.Context, req CreateTransactionRequest) (Transaction, error)
	Update(ctx context.Context, id string, req UpdateTransactionRequest) (Transaction, error)
	Delete(ctx context.Context, id string) (DeleteResult, error)
	GetByID(ctx context.Context, id string) (Transaction, error)
	List(ctx context.Context, req ListTransactionRequest) ([]Transaction, error)

	// Record inserts a prepared row and applies its balance effect inside tx.
	// Callers own the surrounding transaction and publish their own events.
	Record(ctx context.Context, tx *gorm.DB, item *Transaction) ([]cashflow.Delta, error)
}

const (
	DefaultListLimit = 100
	MaxListLimit     = 500
)

var (
	ErrInvalidID              = errors.New("invalid_id")
	ErrInvalidAmount          = errors.New("invalid_amount")
	ErrInvalidType            = errors.New("invalid_type")
	ErrInvalidDescription     = errors.New("invalid_description")
	ErrInvalidDate            = errors.New("invalid_transaction_date")
	ErrInvalidAccountID       = errors.New("invalid_account_id")
	ErrInvalidFromAccountID   = errors.New("invalid_from_account_id")
	ErrInvalidToAccountID     = errors.New("invalid_to_account_id")
	ErrInvalidProjectID       = errors.New("invalid_project_id")
	ErrInvalidCustomerID      = errors.New("invalid_customer_id")
	ErrInvalidVendorID        = errors.New("invalid_vendor_id")
	ErrInvalidEmployeeID      = errors.New("invalid_employee_id")
	ErrInvalidDueDate         = errors.New("invalid_due_date")
	ErrInvalidLimit           = errors.New("invalid_limit")
	ErrNotFound               = errors.New("not_found")
	ErrUnknownTransactionType = errors.New("unknown_transaction_type")
)
