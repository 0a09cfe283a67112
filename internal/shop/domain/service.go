package domain

import (
	"context"
	"errors"
	"io"

	"github.com/shopspring/decimal"
)

type CreateProductRequest struct {
	Name        string           `json:"name"`
	SKU         string           `json:"sku"`
	Description string           `json:"description"`
	Price       decimal.Decimal  `json:"price"`
	Cost        *decimal.Decimal `json:"cost"`
	Stock       int64            `json:"stock"`
	Unit        string           `json:"unit"`
}

type ListProductRequest struct {
	ActiveOnly bool
	Search     string
}

type CheckoutItem struct {
	ProductID string `json:"productId"`
	Quantity  int64  `json:"quantity"`
}

// CheckoutRequest is a point of sale basket. IdempotencyKey is taken from the
// Idempotency-Key header.
type CheckoutRequest struct {
	Items          []CheckoutItem `json:"items"`
	AccountID      string         `json:"accountId"`
	CustomerID     string         `json:"customerId"`
	IdempotencyKey string         `json:"-"`
}

type Service interface {
	CreateProduct(ctx context.Context, req CreateProductRequest) (Product, error)
	ListProducts(ctx context.Context, req ListProductRequest) ([]Product, error)
	Checkout(ctx context.Context, req CheckoutRequest) (Sale, error)
	ListSales(ctx context.Context, limit int) ([]Sale, error)
	GetSale(ctx context.Context, id string) (Sale, error)
	Receipt(ctx context.Context, id string) (io.Reader, Sale, error)
}

const (
	DefaultUnit     = "pcs"
	SalesCategory   = "SALES"
	DefaultSaleList = 50
	MaxSaleList     = 200
)

var (
	ErrInvalidID          = errors.New("invalid_id")
	ErrInvalidName        = errors.New("invalid_name")
	ErrInvalidSKU         = errors.New("invalid_sku")
	ErrInvalidPrice       = errors.New("invalid_price")
	ErrInvalidCost        = errors.New("invalid_cost")
	ErrInvalidStock       = errors.New("invalid_stock")
	ErrInvalidItems       = errors.New("invalid_items")
	ErrInvalidProductID   = errors.New("invalid_product_id")
	ErrInvalidQuantity    = errors.New("invalid_quantity")
	ErrInvalidAccountID   = errors.New("invalid_account_id")
	ErrInvalidCustomerID  = errors.New("invalid_customer_id")
	ErrDuplicateSKU       = errors.New("duplicate_sku")
	ErrInsufficientStock  = errors.New("insufficient_stock")
	ErrCheckoutInProgress = errors.New("checkout_in_progress")
	ErrNotFound           = errors.New("not_found")
)
