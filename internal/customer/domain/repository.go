package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bizledger/pkg/db/pagination"
	"gorm.io/gorm"
)

// Repository persists customers. Every method runs on the handle it is given
// so callers can enlist it in their own transaction.
type Repository interface {
	Create(ctx context.Context, db *gorm.DB, customer *Customer) error
	Save(ctx context.Context, db *gorm.DB, customer *Customer) error
	// FindByID returns nil, nil when the customer does not exist.
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Customer, error)
	List(ctx context.Context, db *gorm.DB, filter ListCustomerFilter, page pagination.Pagination) ([]*Customer, error)
}
