package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bizledger/internal/cashflow"
	"gorm.io/gorm"
)

type ListFilter struct {
	Limit               int
	Types               []cashflow.TransactionType
	AccountID           *snowflake.ID
	ProjectID           *snowflake.ID
	From                *time.Time
	To                  *time.Time
	ExcludeDebts        bool
	ExcludeProjectDebts bool
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, tx *Transaction) error
	Update(ctx context.Context, db *gorm.DB, tx *Transaction) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Transaction, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]*Transaction, error)
	ListByProjects(ctx context.Context, db *gorm.DB, projectIDs []snowflake.ID) ([]*Transaction, error)
	// Exists reports whether a row with id exists in one of the referenceable tables.
	Exists(ctx context.Context, db *gorm.DB, table string, id snowflake.ID) (bool, error)
}
