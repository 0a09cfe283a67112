package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Vendor struct {
	ID            snowflake.ID `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name          string       `gorm:"not null;index" json:"name"`
	ContactPerson *string      `json:"contactPerson,omitempty"`
	Email         *string      `json:"email,omitempty"`
	Phone         *string      `json:"phone,omitempty"`
	Address       *string      `json:"address,omitempty"`
	CreatedAt     time.Time    `gorm:"not null" json:"createdAt"`
	UpdatedAt     time.Time    `gorm:"not null" json:"updatedAt"`
}

func (Vendor) TableName() string { return "vendors" }

type CreateVendorRequest struct {
	Name          string `json:"name"`
	ContactPerson string `json:"contactPerson"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
}

type Service interface {
	Create(ctx context.Context, req CreateVendorRequest) (Vendor, error)
	List(ctx context.Context, name string) ([]Vendor, error)
	GetByID(ctx context.Context, id string) (Vendor, error)
}

var (
	ErrInvalidID    = errors.New("invalid_id")
	ErrInvalidName  = errors.New("invalid_name")
	ErrInvalidEmail = errors.New("invalid_email")
	ErrNotFound     = errors.New("not_found")
)
