package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Product struct {
	ID          snowflake.ID    `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name        string          `gorm:"not null" json:"name"`
	SKU         string          `gorm:"type:varchar(128);not null;uniqueIndex" json:"sku"`
	Description *string         `json:"description,omitempty"`
	Price       decimal.Decimal `gorm:"type:numeric(20,4);not null" json:"price"`
	Cost        decimal.Decimal `gorm:"type:numeric(20,4);not null;default:0" json:"cost"`
	Stock       int64           `gorm:"not null;default:0" json:"stock"`
	Unit        string          `gorm:"type:varchar(32);not null" json:"unit"`
	IsActive    bool            `gorm:"not null;default:true" json:"isActive"`
	CreatedAt   time.Time       `gorm:"not null" json:"createdAt"`
	UpdatedAt   time.Time       `gorm:"not null" json:"updatedAt"`
}

func (Product) TableName() string { return "products" }

type Sale struct {
	ID             snowflake.ID    `gorm:"primaryKey;autoIncrement:false" json:"id"`
	ReceiptNumber  string          `gorm:"type:varchar(32);not null;uniqueIndex" json:"receiptNumber"`
	IdempotencyKey *string         `gorm:"type:varchar(128);uniqueIndex" json:"-"`
	CustomerID     *snowflake.ID   `gorm:"index" json:"customerId,omitempty"`
	AccountID      snowflake.ID    `gorm:"not null" json:"accountId"`
	Total          decimal.Decimal `gorm:"type:numeric(20,4);not null" json:"total"`
	TransactionID  snowflake.ID    `gorm:"not null" json:"transactionId"`
	SoldAt         time.Time       `gorm:"not null;index" json:"soldAt"`
	CreatedAt      time.Time       `gorm:"not null" json:"createdAt"`
	Items          []SaleItem      `gorm:"-" json:"items"`
}

func (Sale) TableName() string { return "sales" }

type SaleItem struct {
	ID          snowflake.ID    `gorm:"primaryKey;autoIncrement:false" json:"id"`
	SaleID      snowflake.ID    `gorm:"not null;index" json:"saleId"`
	ProductID   snowflake.ID    `gorm:"not null" json:"productId"`
	ProductName string          `gorm:"not null" json:"productName"`
	Quantity    int64           `gorm:"not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(20,4);not null" json:"unitPrice"`
	LineTotal   decimal.Decimal `gorm:"type:numeric(20,4);not null" json:"lineTotal"`
}

func (SaleItem) TableName() string { return "sale_items" }
