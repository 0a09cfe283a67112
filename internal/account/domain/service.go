package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

type CreateAccountRequest struct {
	Name          string           `json:"name"`
	Type          string           `json:"type"`
	Balance       *decimal.Decimal `json:"balance"`
	Currency      string           `json:"currency"`
	AccountNumber string           `json:"accountNumber"`
	Description   string           `json:"description"`
}

type UpdateAccountRequest struct {
	Name          *string `json:"name"`
	Type          *string `json:"type"`
	Currency      *string `json:"currency"`
	AccountNumber *string `json:"accountNumber"`
	Description   *string `json:"description"`
	IsActive      *bool   `json:"isActive"`
}

type ListAccountRequest struct {
	ActiveOnly bool
	Type       string
}

type Service interface {
	Create(ctx context.Context, req CreateAccountRequest) (Account, error)
	List(ctx context.Context, req ListAccountRequest) ([]Account, error)
	GetByID(ctx context.Context, id string) (Account, error)
	Update(ctx context.Context, id string, req UpdateAccountRequest) (Account, error)
	Delete(ctx context.Context, id string) error
}

var (
	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidName     = errors.New("invalid_name")
	ErrInvalidType     = errors.New("invalid_type")
	ErrInvalidBalance  = errors.New("invalid_balance")
	ErrInvalidCurrency = errors.New("invalid_currency")
	ErrNotFound        = errors.New("not_found")
	ErrAccountInUse    = errors.New("account_in_use")
)
