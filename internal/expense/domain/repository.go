package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListFilter struct {
	ProjectID *snowflake.ID
	Category  Category
	From      *time.Time
	To        *time.Time
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, expense *Expense) error
	Update(ctx context.Context, db *gorm.DB, expense *Expense) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Expense, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]*Expense, error)
	// DetachProject clears project_id on every expense of the project.
	DetachProject(ctx context.Context, db *gorm.DB, projectID snowflake.ID) error
	Exists(ctx context.Context, db *gorm.DB, table string, id snowflake.ID) (bool, error)
}
