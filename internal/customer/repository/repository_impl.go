package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bizledger/internal/customer/domain"
	"github.com/smallbiznis/bizledger/pkg/db/option"
	"github.com/smallbiznis/bizledger/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, customer *domain.Customer) error {
	return db.WithContext(ctx).Create(customer).Error
}

// Save rewrites the contact fields; created_at is never touched.
func (r *repo) Save(ctx context.Context, db *gorm.DB, customer *domain.Customer) error {
	return db.WithContext(ctx).
		Model(&domain.Customer{ID: customer.ID}).
		Select("name", "email", "phone", "address", "company", "updated_at").
		Updates(customer).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Customer, error) {
	var customer domain.Customer
	err := db.WithContext(ctx).Where("id = ?", id).Take(&customer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListCustomerFilter, page pagination.Pagination) ([]*domain.Customer, error) {
	opts := []option.QueryOption{option.ApplyPagination(page)}
	if term := strings.ToLower(strings.TrimSpace(filter.Search)); term != "" {
		like := "%" + term + "%"
		opts = append(opts, option.WithWhere(
			"LOWER(name) LIKE ? OR LOWER(COALESCE(phone, '')) LIKE ? OR LOWER(COALESCE(email, '')) LIKE ? OR LOWER(COALESCE(company, '')) LIKE ?",
			like, like, like, like,
		))
	}
	if name := strings.ToLower(strings.TrimSpace(filter.Name)); name != "" {
		opts = append(opts, option.WithWhere("LOWER(name) LIKE ?", "%"+name+"%"))
	}
	if email := strings.TrimSpace(filter.Email); email != "" {
		opts = append(opts, option.WithWhere("email = ?", email))
	}
	if filter.CreatedFrom != nil {
		opts = append(opts, option.WithWhere("created_at >= ?", filter.CreatedFrom.UTC()))
	}
	if filter.CreatedTo != nil {
		opts = append(opts, option.WithWhere("created_at <= ?", filter.CreatedTo.UTC()))
	}

	stmt := db.WithContext(ctx).Model(&domain.Customer{})
	for _, opt := range opts {
		stmt = opt.Apply(stmt)
	}

	var customers []*domain.Customer
	if err := stmt.Order("created_at desc, id desc").Find(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}
