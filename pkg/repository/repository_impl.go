package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bizledger/pkg/db/option"
	"gorm.io/gorm"
)

type store[T any] struct {
	db *gorm.DB
}

func ProvideStore[T any](db *gorm.DB) Repository[T] {
	return &store[T]{db: db}
}

func (s *store[T]) WithTrx(tx *gorm.DB) Repository[T] {
	if tx == nil {
		return s
	}
	return &store[T]{db: tx}
}

func (s *store[T]) Create(ctx context.Context, record *T) error {
	return s.db.WithContext(ctx).Create(record).Error
}

func (s *store[T]) FindByID(ctx context.Context, id snowflake.ID) (*T, error) {
	var record T
	err := s.db.WithContext(ctx).Where("id = ?", int64(id)).Take(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *store[T]) List(ctx context.Context, opts ...option.QueryOption) ([]*T, error) {
	stmt := s.db.WithContext(ctx).Model(new(T))
	for _, opt := range opts {
		stmt = opt.Apply(stmt)
	}
	var records []*T
	if err := stmt.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
