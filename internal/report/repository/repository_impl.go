package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/bizledger/internal/cashflow"
	"github.com/smallbiznis/bizledger/internal/report/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

var partyTables = map[string]struct{}{
	"customers": {},
	"vendors":   {},
	"employees": {},
}

func (r *repo) CountProjectsCreated(ctx context.Context, db *gorm.DB, from, to time.Time) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(*) FROM projects WHERE created_at >= ? AND created_at < ?`,
		from, to,
	).Scan(&count).Error
	return count, err
}

func (r *repo) SumExpenses(ctx context.Context, db *gorm.DB, from, to time.Time) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := db.WithContext(ctx).Raw(
		`SELECT SUM(amount) FROM expenses WHERE expense_date >= ? AND expense_date < ?`,
		from, to,
	).Scan(&total).Error
	if err != nil || !total.Valid {
		return decimal.Zero, err
	}
	return total.Decimal, nil
}

func (r *repo) SalesBetween(ctx context.Context, db *gorm.DB, from, to time.Time) (int64, decimal.Decimal, error) {
	var row struct {
		Count int64
		Total decimal.NullDecimal
	}
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(*) AS count, SUM(total) AS total FROM sales WHERE sold_at >= ? AND sold_at < ?`,
		from, to,
	).Scan(&row).Error
	if err != nil {
		return 0, decimal.Zero, err
	}
	if !row.Total.Valid {
		return row.Count, decimal.Zero, nil
	}
	return row.Count, row.Total.Decimal, nil
}

func (r *repo) ScheduleStates(ctx context.Context, db *gorm.DB) (map[string]domain.ScheduleState, error) {
	var rows []domain.ScheduleState
	if err := db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]domain.ScheduleState, len(rows))
	for _, row := range rows {
		out[row.ItemKey] = row
	}
	return out, nil
}

func (r *repo) MarkPaid(ctx context.Context, db *gorm.DB, itemKey string, paidAt time.Time) error {
	state := domain.ScheduleState{
		ItemKey:   itemKey,
		Status:    cashflow.SchedulePaid,
		PaidAt:    paidAt,
		UpdatedAt: paidAt,
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&state).Error
}

func (r *repo) Names(ctx context.Context, db *gorm.DB, table string, ids []snowflake.ID) (map[snowflake.ID]string, error) {
	if _, ok := partyTables[table]; !ok {
		return nil, fmt.Errorf("report: table %q has no names", table)
	}
	out := make(map[snowflake.ID]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []struct {
		ID   snowflake.ID
		Name string
	}
	err := db.WithContext(ctx).Raw(`SELECT id, name FROM `+table+` WHERE id IN ?`, ids).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ID] = row.Name
	}
	return out, nil
}
