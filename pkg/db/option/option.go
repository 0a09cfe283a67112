package option

import (
	"fmt"

	"gorm.io/gorm"
)

// QueryOption mutates a gorm statement before it runs.
type QueryOption interface {
	Apply(db *gorm.DB) *gorm.DB
}

type queryOptionFunc func(db *gorm.DB) *gorm.DB

func (f queryOptionFunc) Apply(db *gorm.DB) *gorm.DB {
	return f(db)
}

func WithLimit(limit int) QueryOption {
	return queryOptionFunc(func(db *gorm.DB) *gorm.DB {
		if limit <= 0 {
			return db
		}
		return db.Limit(limit)
	})
}

func WithOffset(offset int) QueryOption {
	return queryOptionFunc(func(db *gorm.DB) *gorm.DB {
		if offset <= 0 {
			return db
		}
		return db.Offset(offset)
	})
}

// WithSortBy orders by a column; desc selects descending order.
func WithSortBy(column string, desc bool) QueryOption {
	return queryOptionFunc(func(db *gorm.DB) *gorm.DB {
		if column == "" {
			return db
		}
		direction := "ASC"
		if desc {
			direction = "DESC"
		}
		return db.Order(fmt.Sprintf("%s %s", column, direction))
	})
}

func WithWhere(query string, args ...any) QueryOption {
	return queryOptionFunc(func(db *gorm.DB) *gorm.DB {
		return db.Where(query, args...)
	})
}
