package domain

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/bizledger/pkg/db/pagination"
	"gorm.io/gorm"
)

// ListAuditLogRequest filters the trail. Action may end in ".*" to match a
// whole resource, e.g. "project.*".
type ListAuditLogRequest struct {
	pagination.Pagination
	Action     string
	TargetType string
	TargetID   string
	StartAt    *time.Time
	EndAt      *time.Time
}

type ListAuditLogResponse struct {
	pagination.PageInfo
	AuditLogs []AuditLog `json:"auditLogs"`
}

type Service interface {
	// Record appends an entry. A non-nil tx writes inside the caller's transaction.
	Record(ctx context.Context, tx *gorm.DB, entry Entry) error
	List(ctx context.Context, req ListAuditLogRequest) (ListAuditLogResponse, error)
}

var (
	ErrInvalidPageToken = errors.New("invalid_page_token")
	ErrInvalidTimeRange = errors.New("invalid_time_range")
	ErrInvalidAction    = errors.New("invalid_action")
	ErrInvalidTarget    = errors.New("invalid_target")
)
