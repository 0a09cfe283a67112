package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	expensedomain "github.com/smallbiznis/bizledger/internal/expense/domain"
	transactiondomain "github.com/smallbiznis/bizledger/internal/transaction/domain"
)

type Status string

const (
	StatusPlanned    Status = "PLANNED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusOnHold     Status = "ON_HOLD"
	StatusCancelled  Status = "CANCELLED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPlanned, StatusInProgress, StatusCompleted, StatusOnHold, StatusCancelled:
		return true
	default:
		return false
	}
}

// Project is a customer engagement. AdvancePaid is the deposit captured at
// creation and is never re-derived from transactions.
type Project struct {
	ID              snowflake.ID    `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name            string          `gorm:"not null" json:"name"`
	Description     *string         `json:"description,omitempty"`
	CustomerID      snowflake.ID    `gorm:"not null;index" json:"customerId"`
	AgreementAmount decimal.Decimal `gorm:"type:numeric(20,4);not null" json:"agreementAmount"`
	AdvancePaid     decimal.Decimal `gorm:"type:numeric(20,4);not null;default:0" json:"advancePaid"`
	Status          Status          `gorm:"type:varchar(32);not null" json:"status"`
	StartDate       *time.Time      `json:"startDate,omitempty"`
	CompletionDate  time.Time       `gorm:"not null" json:"completionDate"`
	CreatedAt       time.Time       `gorm:"not null" json:"createdAt"`
	UpdatedAt       time.Time       `gorm:"not null" json:"updatedAt"`
}

func (Project) TableName() string { return "projects" }

type MaterialUsage struct {
	ID        snowflake.ID    `gorm:"primaryKey;autoIncrement:false" json:"id"`
	ProjectID snowflake.ID    `gorm:"not null;index" json:"projectId"`
	Name      string          `gorm:"not null" json:"name"`
	Quantity  decimal.Decimal `gorm:"type:numeric(20,4);not null" json:"quantity"`
	UnitCost  decimal.Decimal `gorm:"type:numeric(20,4);not null" json:"unitCost"`
	TotalCost decimal.Decimal `gorm:"type:numeric(20,4);not null" json:"totalCost"`
	UsedAt    time.Time       `gorm:"not null" json:"usedAt"`
	CreatedAt time.Time       `gorm:"not null" json:"createdAt"`
}

func (MaterialUsage) TableName() string { return "project_materials" }

type LaborRecord struct {
	ID         snowflake.ID    `gorm:"primaryKey;autoIncrement:false" json:"id"`
	ProjectID  snowflake.ID    `gorm:"not null;index" json:"projectId"`
	EmployeeID *snowflake.ID   `json:"employeeId,omitempty"`
	WorkerName string          `gorm:"not null" json:"workerName"`
	Hours      decimal.Decimal `gorm:"type:numeric(20,4);not null" json:"hours"`
	Rate       decimal.Decimal `gorm:"type:numeric(20,4);not null" json:"rate"`
	TotalCost  decimal.Decimal `gorm:"type:numeric(20,4);not null" json:"totalCost"`
	WorkDate   time.Time       `gorm:"not null" json:"workDate"`
	CreatedAt  time.Time       `gorm:"not null" json:"createdAt"`
}

func (LaborRecord) TableName() string { return "project_labor" }

// Summary is a project with its reconciled payment position.
type Summary struct {
	Project
	TotalPaid       decimal.Decimal `json:"totalPaid"`
	RemainingAmount decimal.Decimal `json:"remainingAmount"`
}

// Detail is the full project read with nested records and computed totals.
type Detail struct {
	Summary
	Expenses      []expensedomain.Expense         `json:"expenses"`
	MaterialsUsed []MaterialUsage                 `json:"materialsUsed"`
	LaborRecords  []LaborRecord                   `json:"laborRecords"`
	Transactions  []transactiondomain.Transaction `json:"transactions"`
	Payments      []transactiondomain.Transaction `json:"payments"`
	TotalExpenses decimal.Decimal                 `json:"totalExpenses"`
	Profit        decimal.Decimal                 `json:"profit"`
}
