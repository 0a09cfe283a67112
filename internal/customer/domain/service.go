package domain

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/bizledger/pkg/db/pagination"
)

// ListCustomerRequest filters customers. Search matches name, phone, email
// or company case-insensitively.
type ListCustomerRequest struct {
	PageToken   string
	PageSize    int32
	Search      string
	Name        string
	Email       string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type ListCustomerFilter struct {
	Search      string
	Name        string
	Email       string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type ListCustomerResponse struct {
	pagination.PageInfo
	Customers []Customer `json:"customers"`
}

type CreateCustomerRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Company string `json:"company"`
}

type UpdateCustomerRequest struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
	Company *string `json:"company"`
}

type GetCustomerRequest struct {
	ID string
}

type Service interface {
	Create(context.Context, CreateCustomerRequest) (Customer, error)
	Update(context.Context, string, UpdateCustomerRequest) (Customer, error)
	List(context.Context, ListCustomerRequest) (ListCustomerResponse, error)
	GetByID(context.Context, GetCustomerRequest) (Customer, error)
}

var (
	ErrInvalidName      = errors.New("invalid_name")
	ErrInvalidEmail     = errors.New("invalid_email")
	ErrInvalidID        = errors.New("invalid_id")
	ErrInvalidPageToken = errors.New("invalid_page_token")
	ErrNotFound         = errors.New("not_found")
)
