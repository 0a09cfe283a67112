package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bizledger/internal/shop/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertProduct(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO products (id, name, sku, description, price, cost, stock, unit, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		product.ID,
		product.Name,
		product.SKU,
		product.Description,
		product.Price,
		product.Cost,
		product.Stock,
		product.Unit,
		product.IsActive,
		product.CreatedAt,
		product.UpdatedAt,
	).Error
}

func (r *repo) FindProduct(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Product, error) {
	var product domain.Product
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, sku, description, price, cost, stock, unit, is_active, created_at, updated_at
		 FROM products WHERE id = ?`,
		id,
	).Scan(&product).Error
	if err != nil {
		return nil, err
	}
	if product.ID == 0 {
		return nil, nil
	}
	return &product, nil
}

func (r *repo) ListProducts(ctx context.Context, db *gorm.DB, filter domain.ProductFilter) ([]*domain.Product, error) {
	var products []*domain.Product
	stmt := db.WithContext(ctx).Model(&domain.Product{})
	if filter.ActiveOnly {
		stmt = stmt.Where("is_active = ?", true)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		stmt = stmt.Where("(LOWER(name) LIKE ? OR LOWER(sku) LIKE ?)", pattern, pattern)
	}
	if err := stmt.Order("name asc, id asc").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *repo) SKUExists(ctx context.Context, db *gorm.DB, sku string) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Raw(`SELECT COUNT(*) FROM products WHERE sku = ?`, sku).Scan(&count).Error
	return count > 0, err
}

func (r *repo) DecrementStock(ctx context.Context, db *gorm.DB, productID snowflake.ID, quantity int64) (int64, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE products SET stock = stock - ? WHERE id = ? AND stock >= ?`,
		quantity,
		productID,
		quantity,
	)
	return result.RowsAffected, result.Error
}

func (r *repo) InsertSale(ctx context.Context, db *gorm.DB, sale *domain.Sale) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO sales (id, receipt_number, idempotency_key, customer_id, account_id, total, transaction_id, sold_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sale.ID,
		sale.ReceiptNumber,
		sale.IdempotencyKey,
		sale.CustomerID,
		sale.AccountID,
		sale.Total,
		sale.TransactionID,
		sale.SoldAt,
		sale.CreatedAt,
	).Error
}

func (r *repo) InsertSaleItem(ctx context.Context, db *gorm.DB, item *domain.SaleItem) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO sale_items (id, sale_id, product_id, product_name, quantity, unit_price, line_total)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		item.ID,
		item.SaleID,
		item.ProductID,
		item.ProductName,
		item.Quantity,
		item.UnitPrice,
		item.LineTotal,
	).Error
}

const saleColumns = `id, receipt_number, idempotency_key, customer_id, account_id, total, transaction_id, sold_at, created_at`

func (r *repo) FindSale(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Sale, error) {
	var sale domain.Sale
	err := db.WithContext(ctx).Raw(`SELECT `+saleColumns+` FROM sales WHERE id = ?`, id).Scan(&sale).Error
	if err != nil {
		return nil, err
	}
	if sale.ID == 0 {
		return nil, nil
	}
	return &sale, nil
}

func (r *repo) FindSaleByIdempotencyKey(ctx context.Context, db *gorm.DB, key string) (*domain.Sale, error) {
	var sale domain.Sale
	err := db.WithContext(ctx).Raw(`SELECT `+saleColumns+` FROM sales WHERE idempotency_key = ?`, key).Scan(&sale).Error
	if err != nil {
		return nil, err
	}
	if sale.ID == 0 {
		return nil, nil
	}
	return &sale, nil
}

func (r *repo) ListSales(ctx context.Context, db *gorm.DB, limit int) ([]*domain.Sale, error) {
	var sales []*domain.Sale
	err := db.WithContext(ctx).
		Model(&domain.Sale{}).
		Order("sold_at desc, id desc").
		Limit(limit).
		Find(&sales).Error
	return sales, err
}

func (r *repo) ListSaleItems(ctx context.Context, db *gorm.DB, saleIDs []snowflake.ID) ([]domain.SaleItem, error) {
	if len(saleIDs) == 0 {
		return nil, nil
	}
	var items []domain.SaleItem
	err := db.WithContext(ctx).
		Where("sale_id IN ?", saleIDs).
		Order("id asc").
		Find(&items).Error
	return items, err
}

func (r *repo) CustomerExists(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Raw(`SELECT COUNT(*) FROM customers WHERE id = ?`, id).Scan(&count).Error
	return count > 0, err
}
