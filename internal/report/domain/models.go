package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/bizledger/internal/cashflow"
)

type Range string

const (
	RangeToday  Range = "today"
	RangeMonth  Range = "month"
	RangeAll    Range = "all"
	RangeCustom Range = "custom"
)

type OverviewRequest struct {
	Range Range
	From  *time.Time
	To    *time.Time
}

type DailyReport struct {
	Date             string          `json:"date"`
	Income           decimal.Decimal `json:"income"`
	Expense          decimal.Decimal `json:"expense"`
	NetFlow          decimal.Decimal `json:"netFlow"`
	TransactionCount int             `json:"transactionCount"`
	IncomeCount      int             `json:"incomeCount"`
	ExpenseCount     int             `json:"expenseCount"`
	NewProjects      int64           `json:"newProjects"`
	ExpensesRecorded decimal.Decimal `json:"expensesRecorded"`
	Sales            int64           `json:"sales"`
	SalesTotal       decimal.Decimal `json:"salesTotal"`
}

type SourceType string

const (
	SourceProject SourceType = "project"
	SourceDebt    SourceType = "debt"
)

type ScheduleItem struct {
	ID              string                  `json:"id"`
	SourceType      SourceType              `json:"sourceType"`
	SourceID        string                  `json:"sourceId"`
	Title           string                  `json:"title"`
	Counterparty    string                  `json:"counterparty"`
	DueDate         time.Time               `json:"dueDate"`
	Amount          decimal.Decimal         `json:"amount"`
	PaidAmount      decimal.Decimal         `json:"paidAmount"`
	RemainingAmount decimal.Decimal         `json:"remainingAmount"`
	Status          cashflow.ScheduleStatus `json:"status"`
}

// ScheduleState persists the terminal Paid status of a schedule item.
type ScheduleState struct {
	ItemKey   string                  `gorm:"primaryKey;type:varchar(64)" json:"itemKey"`
	Status    cashflow.ScheduleStatus `gorm:"type:varchar(16);not null" json:"status"`
	PaidAt    time.Time               `gorm:"not null" json:"paidAt"`
	UpdatedAt time.Time               `gorm:"not null" json:"updatedAt"`
}

func (ScheduleState) TableName() string { return "payment_schedule_states" }

type CounterpartyType string

const (
	CounterpartyCustomer   CounterpartyType = "customer"
	CounterpartyVendor     CounterpartyType = "vendor"
	CounterpartyEmployee   CounterpartyType = "employee"
	CounterpartyUnassigned CounterpartyType = "unassigned"
)

type CompanyDebt struct {
	CounterpartyType CounterpartyType `json:"counterpartyType"`
	CounterpartyID   string           `json:"counterpartyId,omitempty"`
	Name             string           `json:"name"`
	Taken            decimal.Decimal  `json:"taken"`
	Repaid           decimal.Decimal  `json:"repaid"`
	Outstanding      decimal.Decimal  `json:"outstanding"`
}

type ProjectDebt struct {
	ProjectID       string          `json:"projectId"`
	Name            string          `json:"name"`
	CustomerID      string          `json:"customerId"`
	AgreementAmount decimal.Decimal `json:"agreementAmount"`
	TotalPaid       decimal.Decimal `json:"totalPaid"`
	RemainingAmount decimal.Decimal `json:"remainingAmount"`
}

type DebtTotals struct {
	CompanyOutstanding decimal.Decimal `json:"companyOutstanding"`
	ProjectOutstanding decimal.Decimal `json:"projectOutstanding"`
	TotalOutstanding   decimal.Decimal `json:"totalOutstanding"`
}

type DebtsReport struct {
	CompanyDebts []CompanyDebt `json:"companyDebts"`
	ProjectDebts []ProjectDebt `json:"projectDebts"`
	Totals       DebtTotals    `json:"totals"`
}
