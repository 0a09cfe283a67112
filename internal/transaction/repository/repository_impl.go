package repository

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bizledger/internal/cashflow"
	"github.com/smallbiznis/bizledger/internal/transaction/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

const selectColumns = `id, description, amount, type, category, transaction_date, account_id, from_account_id, to_account_id,
	project_id, customer_id, vendor_id, employee_id, user_id, due_date, reference, origin, created_at, updated_at`

// referenceTables lists the tables a transaction may point at.
var referenceTables = map[string]struct{}{
	"accounts":  {},
	"projects":  {},
	"customers": {},
	"vendors":   {},
	"employees": {},
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, tx *domain.Transaction) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO transactions (`+selectColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID,
		tx.Description,
		tx.Amount,
		tx.Type,
		tx.Category,
		tx.TransactionDate,
		tx.AccountID,
		tx.FromAccountID,
		tx.ToAccountID,
		tx.ProjectID,
		tx.CustomerID,
		tx.VendorID,
		tx.EmployeeID,
		tx.UserID,
		tx.DueDate,
		tx.Reference,
		tx.Origin,
		tx.CreatedAt,
		tx.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, tx *domain.Transaction) error {
	return db.WithContext(ctx).Exec(
		`UPDATE transactions
		 SET description = ?, amount = ?, type = ?, category = ?, transaction_date = ?, account_id = ?,
		     from_account_id = ?, to_account_id = ?, project_id = ?, customer_id = ?, vendor_id = ?,
		     employee_id = ?, user_id = ?, due_date = ?, reference = ?, updated_at = ?
		 WHERE id = ?`,
		tx.Description,
		tx.Amount,
		tx.Type,
		tx.Category,
		tx.TransactionDate,
		tx.AccountID,
		tx.FromAccountID,
		tx.ToAccountID,
		tx.ProjectID,
		tx.CustomerID,
		tx.VendorID,
		tx.EmployeeID,
		tx.UserID,
		tx.DueDate,
		tx.Reference,
		tx.UpdatedAt,
		tx.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM transactions WHERE id = ?`, id).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Transaction, error) {
	var item domain.Transaction
	err := db.WithContext(ctx).Raw(
		`SELECT `+selectColumns+` FROM transactions WHERE id = ?`,
		id,
	).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]*domain.Transaction, error) {
	stmt := db.WithContext(ctx).Model(&domain.Transaction{})
	if len(filter.Types) > 0 {
		stmt = stmt.Where("type IN ?", filter.Types)
	}
	if filter.AccountID != nil {
		id := *filter.AccountID
		stmt = stmt.Where("(account_id = ? OR from_account_id = ? OR to_account_id = ?)", id, id, id)
	}
	if filter.ProjectID != nil {
		stmt = stmt.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.From != nil {
		stmt = stmt.Where("transaction_date >= ?", *filter.From)
	}
	if filter.To != nil {
		stmt = stmt.Where("transaction_date < ?", *filter.To)
	}
	if filter.ExcludeDebts {
		stmt = stmt.Where("type NOT IN ?", []cashflow.TransactionType{cashflow.TypeDebtTaken, cashflow.TypeDebtRepaid})
	}
	if filter.ExcludeProjectDebts {
		stmt = stmt.Where("NOT (project_id IS NOT NULL AND type IN ?)", []cashflow.TransactionType{cashflow.TypeDebtTaken, cashflow.TypeDebtRepaid})
	}
	if filter.Limit > 0 {
		stmt = stmt.Limit(filter.Limit)
	}

	var items []*domain.Transaction
	if err := stmt.Order("transaction_date desc, id desc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListByProjects(ctx context.Context, db *gorm.DB, projectIDs []snowflake.ID) ([]*domain.Transaction, error) {
	if len(projectIDs) == 0 {
		return nil, nil
	}
	var items []*domain.Transaction
	err := db.WithContext(ctx).
		Model(&domain.Transaction{}).
		Where("project_id IN ?", projectIDs).
		Order("transaction_date asc, id asc").
		Find(&items).Error
	return items, err
}

func (r *repo) Exists(ctx context.Context, db *gorm.DB, table string, id snowflake.ID) (bool, error) {
	if _, ok := referenceTables[table]; !ok {
		return false, fmt.Errorf("transaction: table %q is not referenceable", table)
	}
	var count int64
	err := db.WithContext(ctx).Raw(`SELECT COUNT(*) FROM `+table+` WHERE id = ?`, id).Scan(&count).Error
	return count > 0, err
}
