package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ListFilter struct {
	ActiveOnly bool
	Type       AccountType
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, account *Account) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Account, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]*Account, error)
	Update(ctx context.Context, db *gorm.DB, account *Account) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	// AdjustBalance applies balance = balance + delta and reports rows affected.
	AdjustBalance(ctx context.Context, db *gorm.DB, id snowflake.ID, delta decimal.Decimal) (int64, error)
	CountTransactionRefs(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error)
}
