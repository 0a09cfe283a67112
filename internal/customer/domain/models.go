package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Customer struct {
	ID        snowflake.ID `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name      string       `gorm:"not null;index" json:"name"`
	Email     *string      `json:"email,omitempty"`
	Phone     *string      `json:"phone,omitempty"`
	Address   *string      `json:"address,omitempty"`
	Company   *string      `json:"company,omitempty"`
	CreatedAt time.Time    `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time    `gorm:"not null" json:"updatedAt"`
}

func (Customer) TableName() string { return "customers" }
