package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ProductFilter struct {
	ActiveOnly bool
	Search     string
}

type Repository interface {
	InsertProduct(ctx context.Context, db *gorm.DB, product *Product) error
	FindProduct(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Product, error)
	ListProducts(ctx context.Context, db *gorm.DB, filter ProductFilter) ([]*Product, error)
	SKUExists(ctx context.Context, db *gorm.DB, sku string) (bool, error)
	// DecrementStock lowers stock only when enough is on hand and reports the rows changed.
	DecrementStock(ctx context.Context, db *gorm.DB, productID snowflake.ID, quantity int64) (int64, error)

	InsertSale(ctx context.Context, db *gorm.DB, sale *Sale) error
	InsertSaleItem(ctx context.Context, db *gorm.DB, item *SaleItem) error
	FindSale(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Sale, error)
	FindSaleByIdempotencyKey(ctx context.Context, db *gorm.DB, key string) (*Sale, error)
	ListSales(ctx context.Context, db *gorm.DB, limit int) ([]*Sale, error)
	ListSaleItems(ctx context.Context, db *gorm.DB, saleIDs []snowflake.ID) ([]SaleItem, error)
	CustomerExists(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error)
}
