package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListFilter struct {
	Status     Status
	CustomerID *snowflake.ID
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, project *Project) error
	Update(ctx context.Context, db *gorm.DB, project *Project) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Project, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]*Project, error)

	InsertMaterial(ctx context.Context, db *gorm.DB, item *MaterialUsage) error
	ListMaterials(ctx context.Context, db *gorm.DB, projectID snowflake.ID) ([]MaterialUsage, error)
	InsertLabor(ctx context.Context, db *gorm.DB, item *LaborRecord) error
	ListLabor(ctx context.Context, db *gorm.DB, projectID snowflake.ID) ([]LaborRecord, error)
	// DeleteChildren removes the materials and labor rows of a project.
	DeleteChildren(ctx context.Context, db *gorm.DB, projectID snowflake.ID) error

	CountTransactionRefs(ctx context.Context, db *gorm.DB, projectID snowflake.ID) (int64, error)
	CustomerExists(ctx context.Context, db *gorm.DB, customerID snowflake.ID) (bool, error)
	EmployeeExists(ctx context.Context, db *gorm.DB, employeeID snowflake.ID) (bool, error)
}
