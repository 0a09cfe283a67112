package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryLabor     Category = "Labor"
	CategoryMaterial  Category = "Material"
	CategoryTransport Category = "Transport"
	CategoryEquipment Category = "Equipment"
	CategoryUtilities Category = "Utilities"
	CategoryOther     Category = "Other"
)

var Categories = []Category{
	CategoryLabor,
	CategoryMaterial,
	CategoryTransport,
	CategoryEquipment,
	CategoryUtilities,
	CategoryOther,
}

// ParseCategory matches case-insensitively and returns the canonical spelling.
func ParseCategory(raw string) (Category, bool) {
	raw = strings.TrimSpace(raw)
	for _, c := range Categories {
		if strings.EqualFold(string(c), raw) {
			return c, true
		}
	}
	return "", false
}

// Expense is a cost record. It does not move account balances.
type Expense struct {
	ID          snowflake.ID    `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Description string          `gorm:"not null" json:"description"`
	Amount      decimal.Decimal `gorm:"type:numeric(20,4);not null" json:"amount"`
	Category    Category        `gorm:"type:varchar(32);not null" json:"category"`
	ExpenseDate time.Time       `gorm:"not null;index" json:"expenseDate"`
	ProjectID   *snowflake.ID   `gorm:"index" json:"projectId,omitempty"`
	EmployeeID  *snowflake.ID   `json:"employeeId,omitempty"`
	VendorID    *snowflake.ID   `json:"vendorId,omitempty"`
	ReceiptURL  *string         `json:"receiptUrl,omitempty"`
	CreatedAt   time.Time       `gorm:"not null" json:"createdAt"`
	UpdatedAt   time.Time       `gorm:"not null" json:"updatedAt"`
}

func (Expense) TableName() string { return "expenses" }
