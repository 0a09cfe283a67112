package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type AccountType string

const (
	AccountTypeBank        AccountType = "BANK"
	AccountTypeCash        AccountType = "CASH"
	AccountTypeMobileMoney AccountType = "MOBILE_MONEY"
)

func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeBank, AccountTypeCash, AccountTypeMobileMoney:
		return true
	default:
		return false
	}
}

const DefaultCurrency = "ETB"

var SupportedCurrencies = []string{"ETB", "USD", "EUR"}

// Account is a cash holding. Balance is cached and only moves through ledger writes.
type Account struct {
	ID            snowflake.ID    `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name          string          `gorm:"not null" json:"name"`
	Type          AccountType     `gorm:"type:varchar(32);not null" json:"type"`
	Balance       decimal.Decimal `gorm:"type:numeric(20,4);not null;default:0" json:"balance"`
	Currency      string          `gorm:"type:varchar(8);not null" json:"currency"`
	AccountNumber *string         `json:"accountNumber,omitempty"`
	Description   *string         `json:"description,omitempty"`
	IsActive      bool            `gorm:"not null;default:true" json:"isActive"`
	CreatedAt     time.Time       `gorm:"not null" json:"createdAt"`
	UpdatedAt     time.Time       `gorm:"not null" json:"updatedAt"`
}

func (Account) TableName() string { return "accounts" }
