package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Employee struct {
	ID        snowflake.ID     `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name      string           `gorm:"not null;index" json:"name"`
	Email     *string          `json:"email,omitempty"`
	Phone     *string          `json:"phone,omitempty"`
	Address   *string          `json:"address,omitempty"`
	Position  *string          `json:"position,omitempty"`
	Salary    *decimal.Decimal `gorm:"type:numeric(20,4)" json:"salary,omitempty"`
	IsActive  bool             `gorm:"not null;default:true" json:"isActive"`
	CreatedAt time.Time        `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time        `gorm:"not null" json:"updatedAt"`
}

func (Employee) TableName() string { return "employees" }

type CreateEmployeeRequest struct {
	Name     string           `json:"name"`
	Email    string           `json:"email"`
	Phone    string           `json:"phone"`
	Address  string           `json:"address"`
	Position string           `json:"position"`
	Salary   *decimal.Decimal `json:"salary"`
}

type ListEmployeeRequest struct {
	Name       string
	ActiveOnly bool
}

type Service interface {
	Create(ctx context.Context, req CreateEmployeeRequest) (Employee, error)
	List(ctx context.Context, req ListEmployeeRequest) ([]Employee, error)
	GetByID(ctx context.Context, id string) (Employee, error)
}

var (
	ErrInvalidID     = errors.New("invalid_id")
	ErrInvalidName   = errors.New("invalid_name")
	ErrInvalidEmail  = errors.New("invalid_email")
	ErrInvalidSalary = errors.New("invalid_salary")
	ErrNotFound      = errors.New("not_found")
)
