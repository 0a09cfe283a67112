package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/bizledger/internal/account/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, account *domain.Account) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO accounts (id, name, type, balance, currency, account_number, description, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		account.ID,
		account.Name,
		account.Type,
		account.Balance,
		account.Currency,
		account.AccountNumber,
		account.Description,
		account.IsActive,
		account.CreatedAt,
		account.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Account, error) {
	var account domain.Account
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, type, balance, currency, account_number, description, is_active, created_at, updated_at
		 FROM accounts WHERE id = ?`,
		id,
	).Scan(&account).Error
	if err != nil {
		return nil, err
	}
	if account.ID == 0 {
		return nil, nil
	}
	return &account, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]*domain.Account, error) {
	var accounts []*domain.Account
	stmt := db.WithContext(ctx).Model(&domain.Account{})
	if filter.ActiveOnly {
		stmt = stmt.Where("is_active = ?", true)
	}
	if filter.Type != "" {
		stmt = stmt.Where("type = ?", filter.Type)
	}
	if err := stmt.Order("name asc, id asc").Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, account *domain.Account) error {
	return db.WithContext(ctx).Exec(
		`UPDATE accounts
		 SET name = ?, type = ?, currency = ?, account_number = ?, description = ?, is_active = ?, updated_at = ?
		 WHERE id = ?`,
		account.Name,
		account.Type,
		account.Currency,
		account.AccountNumber,
		account.Description,
		account.IsActive,
		account.UpdatedAt,
		account.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM accounts WHERE id = ?`, id).Error
}

func (r *repo) AdjustBalance(ctx context.Context, db *gorm.DB, id snowflake.ID, delta decimal.Decimal) (int64, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE accounts SET balance = balance + ?, updated_at = ? WHERE id = ?`,
		delta,
		time.Now().UTC(),
		id,
	)
	return result.RowsAffected, result.Error
}

func (r *repo) CountTransactionRefs(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(*) FROM transactions
		 WHERE account_id = ? OR from_account_id = ? OR to_account_id = ?`,
		id, id, id,
	).Scan(&count).Error
	return count, err
}
