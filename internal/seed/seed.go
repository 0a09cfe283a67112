package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	accountdomain "github.com/smallbiznis/bizledger/internal/account/domain"
	"gorm.io/gorm"
)

const (
	defaultAccountName     = "Cash"
	defaultAccountCurrency = "ETB"
)

// EnsureDefaultAccount creates a cash account on an empty ledger so sales and
// manual entries have somewhere to land.
func EnsureDefaultAccount(db *gorm.DB, node *snowflake.Node, currency string) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}
	if node == nil {
		return errors.New("seed id generator is required")
	}
	if currency == "" {
		currency = defaultAccountCurrency
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&accountdomain.Account{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		now := time.Now().UTC()
		account := accountdomain.Account{
			ID:        node.Generate(),
			Name:      defaultAccountName,
			Type:      accountdomain.AccountTypeCash,
			Balance:   decimal.Zero,
			Currency:  currency,
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		return tx.Create(&account).Error
	})
}
