package repository

import (
	"context"
	"strings"

	"github.com/smallbiznis/bizledger/internal/audit/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, entry *domain.AuditLog) error {
	if entry == nil {
		return nil
	}
	return db.WithContext(ctx).Create(entry).Error
}

// List returns up to Limit+1 rows, newest first, so the caller can tell
// whether another page exists.
func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]*domain.AuditLog, error) {
	var logs []*domain.AuditLog
	err := db.WithContext(ctx).
		Model(&domain.AuditLog{}).
		Scopes(byAction(filter), byTarget(filter), inWindow(filter), after(filter.Cursor)).
		Order("created_at desc, id desc").
		Scopes(limit(filter.Limit)).
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

func byAction(filter domain.ListFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if action := strings.TrimSpace(filter.Action); action != "" {
			db = db.Where("action = ?", action)
		}
		if prefix := strings.TrimSpace(filter.ActionPrefix); prefix != "" {
			db = db.Where("action LIKE ?", prefix+"%")
		}
		return db
	}
}

func byTarget(filter domain.ListFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if targetType := strings.TrimSpace(filter.TargetType); targetType != "" {
			db = db.Where("target_type = ?", targetType)
		}
		if targetID := strings.TrimSpace(filter.TargetID); targetID != "" {
			db = db.Where("target_id = ?", targetID)
		}
		return db
	}
}

func inWindow(filter domain.ListFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if filter.StartAt != nil {
			db = db.Where("created_at >= ?", filter.StartAt.UTC())
		}
		if filter.EndAt != nil {
			db = db.Where("created_at <= ?", filter.EndAt.UTC())
		}
		return db
	}
}

func after(cursor *domain.AuditCursor) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if cursor == nil {
			return db
		}
		return db.Where("(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}
}

func limit(n int) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if n <= 0 {
			return db
		}
		return db.Limit(n + 1)
	}
}
