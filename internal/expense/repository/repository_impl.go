package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bizledger/internal/expense/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

var referenceTables = map[string]struct{}{
	"projects":  {},
	"employees": {},
	"vendors":   {},
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, expense *domain.Expense) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO expenses (id, description, amount, category, expense_date, project_id, employee_id, vendor_id, receipt_url, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		expense.ID,
		expense.Description,
		expense.Amount,
		expense.Category,
		expense.ExpenseDate,
		expense.ProjectID,
		expense.EmployeeID,
		expense.VendorID,
		expense.ReceiptURL,
		expense.CreatedAt,
		expense.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, expense *domain.Expense) error {
	return db.WithContext(ctx).Exec(
		`UPDATE expenses
		 SET description = ?, amount = ?, category = ?, expense_date = ?, project_id = ?, employee_id = ?,
		     vendor_id = ?, receipt_url = ?, updated_at = ?
		 WHERE id = ?`,
		expense.Description,
		expense.Amount,
		expense.Category,
		expense.ExpenseDate,
		expense.ProjectID,
		expense.EmployeeID,
		expense.VendorID,
		expense.ReceiptURL,
		expense.UpdatedAt,
		expense.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM expenses WHERE id = ?`, id).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Expense, error) {
	var expense domain.Expense
	err := db.WithContext(ctx).Raw(
		`SELECT id, description, amount, category, expense_date, project_id, employee_id, vendor_id, receipt_url, created_at, updated_at
		 FROM expenses WHERE id = ?`,
		id,
	).Scan(&expense).Error
	if err != nil {
		return nil, err
	}
	if expense.ID == 0 {
		return nil, nil
	}
	return &expense, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]*domain.Expense, error) {
	var expenses []*domain.Expense
	stmt := db.WithContext(ctx).Model(&domain.Expense{})
	if filter.ProjectID != nil {
		stmt = stmt.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.Category != "" {
		stmt = stmt.Where("category = ?", filter.Category)
	}
	if filter.From != nil {
		stmt = stmt.Where("expense_date >= ?", *filter.From)
	}
	if filter.To != nil {
		stmt = stmt.Where("expense_date < ?", *filter.To)
	}
	if err := stmt.Order("expense_date desc, id desc").Find(&expenses).Error; err != nil {
		return nil, err
	}
	return expenses, nil
}

func (r *repo) DetachProject(ctx context.Context, db *gorm.DB, projectID snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`UPDATE expenses SET project_id = NULL, updated_at = ? WHERE project_id = ?`,
		time.Now().UTC(),
		projectID,
	).Error
}

func (r *repo) Exists(ctx context.Context, db *gorm.DB, table string, id snowflake.ID) (bool, error) {
	if _, ok := referenceTables[table]; !ok {
		return false, fmt.Errorf("expense: table %q is not referenceable", table)
	}
	var count int64
	err := db.WithContext(ctx).Raw(`SELECT COUNT(*) FROM `+table+` WHERE id = ?`, id).Scan(&count).Error
	return count > 0, err
}
