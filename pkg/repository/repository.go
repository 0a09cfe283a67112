package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bizledger/pkg/db/option"
	"gorm.io/gorm"
)

// Repository stores simple reference records such as vendors and employees
// that need no custom queries beyond filtering and ordering.
type Repository[T any] interface {
	WithTrx(tx *gorm.DB) Repository[T]
	Create(ctx context.Context, record *T) error
	// FindByID returns nil, nil when no row has the id.
	FindByID(ctx context.Context, id snowflake.ID) (*T, error)
	List(ctx context.Context, opts ...option.QueryOption) ([]*T, error)
}
