package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type ExpenseRequest struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	ExpenseDate *time.Time      `json:"expenseDate"`
	ProjectID   string          `json:"projectId"`
	EmployeeID  string          `json:"employeeId"`
	VendorID    string          `json:"vendorId"`
	ReceiptURL  string          `json:"receiptUrl"`
}

type ListExpenseRequest struct {
	ProjectID string
	Category  string
	From      *time.Time
	To        *time.Time
}

type Service interface {
	Create(ctx context.Context, req ExpenseRequest) (Expense, error)
	Update(ctx context.Context, id string, req ExpenseRequest) (Expense, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, req ListExpenseRequest) ([]Expense, error)
}

var (
	ErrInvalidID          = errors.New("invalid_id")
	ErrInvalidDescription = errors.New("invalid_description")
	ErrInvalidAmount      = errors.New("invalid_amount")
	ErrInvalidCategory    = errors.New("invalid_category")
	ErrInvalidExpenseDate = errors.New("invalid_expense_date")
	ErrInvalidProjectID   = errors.New("invalid_project_id")
	ErrInvalidEmployeeID  = errors.New("invalid_employee_id")
	ErrInvalidVendorID    = errors.New("invalid_vendor_id")
	ErrNotFound           = errors.New("not_found")
)
