package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Repository interface {
	CountProjectsCreated(ctx context.Context, db *gorm.DB, from, to time.Time) (int64, error)
	SumExpenses(ctx context.Context, db *gorm.DB, from, to time.Time) (decimal.Decimal, error)
	SalesBetween(ctx context.Context, db *gorm.DB, from, to time.Time) (int64, decimal.Decimal, error)

	ScheduleStates(ctx context.Context, db *gorm.DB) (map[string]ScheduleState, error)
	MarkPaid(ctx context.Context, db *gorm.DB, itemKey string, paidAt time.Time) error

	// Names resolves display names for ids in one of the party tables.
	Names(ctx context.Context, db *gorm.DB, table string, ids []snowflake.ID) (map[snowflake.ID]string, error)
}
