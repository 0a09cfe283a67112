package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/bizledger/internal/cashflow"
)

// Transaction is one ledger row. Amount is always positive; the type carries
// the direction.
type Transaction struct {
	ID              snowflake.ID             `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Description     string                   `gorm:"not null" json:"description"`
	Amount          decimal.Decimal          `gorm:"type:numeric(20,4);not null" json:"amount"`
	Type            cashflow.TransactionType `gorm:"type:varchar(32);not null;index" json:"type"`
	Category        string                   `gorm:"type:varchar(64)" json:"category"`
	TransactionDate time.Time                `gorm:"not null;index" json:"transactionDate"`
	AccountID       *snowflake.ID            `gorm:"index" json:"accountId,omitempty"`
	FromAccountID   *snowflake.ID            `gorm:"index" json:"fromAccountId,omitempty"`
	ToAccountID     *snowflake.ID            `gorm:"index" json:"toAccountId,omitempty"`
	ProjectID       *snowflake.ID            `gorm:"index" json:"projectId,omitempty"`
	CustomerID      *snowflake.ID            `gorm:"index" json:"customerId,omitempty"`
	VendorID        *snowflake.ID            `json:"vendorId,omitempty"`
	EmployeeID      *snowflake.ID            `json:"employeeId,omitempty"`
	UserID          *string                  `json:"userId,omitempty"`
	DueDate         *time.Time               `json:"dueDate,omitempty"`
	Reference       *string                  `json:"reference,omitempty"`
	Origin          cashflow.Origin          `gorm:"type:varchar(32);not null;default:'user-entry'" json:"origin"`
	CreatedAt       time.Time                `gorm:"not null" json:"createdAt"`
	UpdatedAt       time.Time                `gorm:"not null" json:"updatedAt"`
}

func (Transaction) TableName() string { return "transactions" }

// Entry converts the row into the form the ledger rules operate on.
func (t Transaction) Entry() cashflow.Entry {
	return cashflow.Entry{
		ID:            int64(t.ID),
		Type:          t.Type,
		Amount:        t.Amount,
		Category:      t.Category,
		Description:   t.Description,
		Date:          t.TransactionDate,
		AccountID:     idValue(t.AccountID),
		FromAccountID: idValue(t.FromAccountID),
		ToAccountID:   idValue(t.ToAccountID),
		ProjectID:     idValue(t.ProjectID),
		Origin:        t.Origin,
	}
}

// AccountIDs lists every account the row touches.
func (t Transaction) AccountIDs() []int64 {
	out := make([]int64, 0, 2)
	for _, id := range []*snowflake.ID{t.AccountID, t.FromAccountID, t.ToAccountID} {
		if v := idValue(id); v != 0 {
			out = append(out, v)
		}
	}
	return out
}

func Entries(items []Transaction) []cashflow.Entry {
	out := make([]cashflow.Entry, 0, len(items))
	for _, item := range items {
		out = append(out, item.Entry())
	}
	return out
}

func idValue(id *snowflake.ID) int64 {
	if id == nil {
		return 0
	}
	return int64(*id)
}
