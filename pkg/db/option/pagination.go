package option

import (
	"github.com/smallbiznis/bizledger/pkg/db/pagination"
	"gorm.io/gorm"
)

// ApplyPagination seeks past the page token, newest first by (created_at, id),
// and fetches one extra row so the caller can tell whether another page
// exists. An unreadable token restarts from the first page; services reject
// bad tokens before they get here.
func ApplyPagination(page pagination.Pagination) QueryOption {
	return queryOptionFunc(func(db *gorm.DB) *gorm.DB {
		if pos, err := pagination.ParseToken(page.PageToken); err == nil && pos != nil {
			db = db.Where("created_at < ? OR (created_at = ? AND id < ?)", pos.CreatedAt, pos.CreatedAt, int64(pos.ID))
		}
		return db.Limit(page.Size() + 1)
	})
}
