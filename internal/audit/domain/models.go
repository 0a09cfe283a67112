package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type ActorType string

const (
	ActorTypeSystem   ActorType = "system"
	ActorTypeOperator ActorType = "operator"
)

// Target is the kind of ledger record an entry refers to.
type Target string

const (
	TargetAccount     Target = "account"
	TargetTransaction Target = "transaction"
	TargetProject     Target = "project"
	TargetCustomer    Target = "customer"
	TargetVendor      Target = "vendor"
	TargetEmployee    Target = "employee"
	TargetExpense     Target = "expense"
	TargetProduct     Target = "product"
	TargetSale        Target = "sale"
)

// Entry is what services hand to Record. Action is "<target>.<verb>", with an
// optional middle segment for child records such as "project.labor.create".
type Entry struct {
	Action   string
	Target   Target
	TargetID snowflake.ID
	Metadata map[string]any
}

type AuditLog struct {
	ID         snowflake.ID      `gorm:"primaryKey" json:"id"`
	ActorType  string            `gorm:"not null" json:"actorType"`
	ActorID    *string           `json:"actorId,omitempty"`
	Action     string            `gorm:"not null;index" json:"action"`
	TargetType string            `gorm:"not null;index:idx_audit_target" json:"targetType"`
	TargetID   *string           `gorm:"index:idx_audit_target" json:"targetId,omitempty"`
	Metadata   datatypes.JSONMap `json:"metadata,omitempty"`
	RequestID  *string           `json:"requestId,omitempty"`
	IPAddress  *string           `json:"ipAddress,omitempty"`
	UserAgent  *string           `json:"userAgent,omitempty"`
	CreatedAt  time.Time         `gorm:"not null;index" json:"createdAt"`
}

func (AuditLog) TableName() string { return "audit_logs" }

type AuditCursor struct {
	ID        snowflake.ID
	CreatedAt time.Time
}

// ListFilter narrows a listing. An ActionPrefix of "transaction." matches
// every transaction action.
type ListFilter struct {
	Action       string
	ActionPrefix string
	TargetType   string
	TargetID     string
	StartAt      *time.Time
	EndAt        *time.Time
	Cursor       *AuditCursor
	Limit        int
}
