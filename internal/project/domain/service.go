package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type CreateProjectRequest struct {
	Name             string           `json:"name"`
	Description      string           `json:"description"`
	CustomerID       string           `json:"customerId"`
	AgreementAmount  decimal.Decimal  `json:"agreementAmount"`
	AdvancePaid      *decimal.Decimal `json:"advancePaid"`
	AdvanceAccountID string           `json:"advanceAccountId"`
	Status           string           `json:"status"`
	StartDate        *time.Time       `json:"startDate"`
	CompletionDate   *time.Time       `json:"completionDate"`
}

type UpdateProjectRequest struct {
	Name            string           `json:"name"`
	Description     string           `json:"description"`
	CustomerID      string           `json:"customerId"`
	AgreementAmount decimal.Decimal  `json:"agreementAmount"`
	AdvancePaid     *decimal.Decimal `json:"advancePaid"`
	Status          string           `json:"status"`
	StartDate       *time.Time       `json:"startDate"`
	CompletionDate  *time.Time       `json:"completionDate"`
}

type ListProjectRequest struct {
	Status     string
	CustomerID string
}

type AddMaterialRequest struct {
	Name     string          `json:"name"`
	Quantity decimal.Decimal `json:"quantity"`
	UnitCost decimal.Decimal `json:"unitCost"`
	UsedAt   *time.Time      `json:"usedAt"`
}

type AddLaborRequest struct {
	EmployeeID string          `json:"employeeId"`
	WorkerName string          `json:"workerName"`
	Hours      decimal.Decimal `json:"hours"`
	Rate       decimal.Decimal `json:"rate"`
	WorkDate   *time.Time      `json:"workDate"`
}

type Service interface {
	Create(ctx context.Context, req CreateProjectRequest) (Detail, error)
	Update(ctx context.Context, id string, req UpdateProjectRequest) (Detail, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (Detail, error)
	List(ctx context.Context, req ListProjectRequest) ([]Summary, error)
	AddMaterial(ctx context.Context, projectID string, req AddMaterialRequest) (MaterialUsage, error)
	AddLabor(ctx context.Context, projectID string, req AddLaborRequest) (LaborRecord, error)
}

const AdvanceDescriptionPrefix = "Advance payment for project"

var (
	ErrInvalidID               = errors.New("invalid_id")
	ErrInvalidName             = errors.New("invalid_name")
	ErrInvalidCustomerID       = errors.New("invalid_customer_id")
	ErrInvalidAgreementAmount  = errors.New("invalid_agreement_amount")
	ErrInvalidAdvancePaid      = errors.New("invalid_advance_paid")
	ErrInvalidAdvanceAccountID = errors.New("invalid_advance_account_id")
	ErrInvalidStatus           = errors.New("invalid_status")
	ErrInvalidCompletionDate   = errors.New("invalid_completion_date")
	ErrInvalidQuantity         = errors.New("invalid_quantity")
	ErrInvalidUnitCost         = errors.New("invalid_unit_cost")
	ErrInvalidWorkerName       = errors.New("invalid_worker_name")
	ErrInvalidHours            = errors.New("invalid_hours")
	ErrInvalidRate             = errors.New("invalid_rate")
	ErrInvalidEmployeeID       = errors.New("invalid_employee_id")
	ErrNotFound                = errors.New("not_found")
	ErrProjectInUse            = errors.New("project_in_use")
)
