package service

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	accountdomain "github.com/smallbiznis/bizledger/internal/account/domain"
	accountrepository "github.com/smallbiznis/bizledger/internal/account/repository"
	"github.com/smallbiznis/bizledger/internal/cashflow"
	"github.com/smallbiznis/bizledger/internal/config"
	customerrepository "github.com/smallbiznis/bizledger/internal/customer/repository"
	"github.com/smallbiznis/bizledger/internal/shop/domain"
	"github.com/smallbiznis/bizledger/internal/shop/repository"
	"github.com/smallbiznis/bizledger/internal/testutil"
	transactiondomain "github.com/smallbiznis/bizledger/internal/transaction/domain"
	transactionrepository "github.com/smallbiznis/bizledger/internal/transaction/repository"
	transactionservice "github.com/smallbiznis/bizledger/internal/transaction/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type shopHarness struct {
	db   *gorm.DB
	node *snowflake.Node
	svc  domain.Service
}

func newShopHarness(t *testing.T) *shopHarness {
	t.Helper()
	db := testutil.NewDB(t)
	node := testutil.NewNode(t)
	log := zap.NewNop()

	accountRepo := accountrepository.Provide()
	txs := transactionservice.New(transactionservice.Params{
		DB:          db,
		Log:         log,
		GenID:       node,
		Repo:        transactionrepository.Provide(),
		AccountRepo: accountRepo,
	})
	return &shopHarness{
		db:   db,
		node: node,
		svc: New(Params{
			DB:           db,
			Log:          log,
			Cfg:          config.Config{BusinessName: "Corner Shop", DefaultCurrency: "ETB"},
			GenID:        node,
			Repo:         repository.Provide(),
			TxSvc:        txs,
			AccountRepo:  accountRepo,
			CustomerRepo: customerrepository.Provide(),
		}),
	}
}

func (h *shopHarness) account(t *testing.T) snowflake.ID {
	t.Helper()
	now := time.Now().UTC()
	account := accountdomain.Account{
		ID:        h.node.Generate(),
		Name:      "Till",
		Type:      accountdomain.AccountTypeCash,
		Balance:   decimal.Zero,
		Currency:  "ETB",
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, h.db.Create(&account).Error)
	return account.ID
}

func (h *shopHarness) product(t *testing.T, name, price string, stock int64) domain.Product {
	t.Helper()
	product, err := h.svc.CreateProduct(context.Background(), domain.CreateProductRequest{
		Name:  name,
		Price: decimal.RequireFromString(price),
		Stock: stock,
	})
	require.NoError(t, err)
	return product
}

func (h *shopHarness) stock(t *testing.T, id snowflake.ID) int64 {
	t.Helper()
	var product domain.Product
	require.NoError(t, h.db.First(&product, "id = ?", id).Error)
	return product.Stock
}

func (h *shopHarness) balance(t *testing.T, id snowflake.ID) decimal.Decimal {
	t.Helper()
	var account accountdomain.Account
	require.NoError(t, h.db.First(&account, "id = ?", id).Error)
	return account.Balance
}

func (h *shopHarness) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, h.db.Model(model).Count(&n).Error)
	return n
}

func TestCreateProductDerivesUniqueSKU(t *testing.T) {
	h := newShopHarness(t)

	first := h.product(t, "Red Paint", "120", 4)
	second := h.product(t, "Red Paint", "125", 2)

	assert.Equal(t, "red-paint", first.SKU)
	assert.Equal(t, "red-paint-2", second.SKU)
	assert.Equal(t, domain.DefaultUnit, first.Unit)
	assert.True(t, first.Cost.IsZero())
}

func TestCreateProductRejectsDuplicateExplicitSKU(t *testing.T) {
	h := newShopHarness(t)
	ctx := context.Background()

	_, err := h.svc.CreateProduct(ctx, domain.CreateProductRequest{Name: "Brush", SKU: "BR 01", Price: decimal.NewFromInt(30)})
	require.NoError(t, err)

	_, err = h.svc.CreateProduct(ctx, domain.CreateProductRequest{Name: "Other brush", SKU: "br-01", Price: decimal.NewFromInt(35)})
	require.ErrorIs(t, err, domain.ErrDuplicateSKU)
}

func TestCreateProductValidation(t *testing.T) {
	h := newShopHarness(t)
	negative := decimal.NewFromInt(-1)

	cases := []struct {
		name string
		req  domain.CreateProductRequest
		want error
	}{
		{"blank name", domain.CreateProductRequest{Name: "  ", Price: decimal.NewFromInt(1)}, domain.ErrInvalidName},
		{"zero price", domain.CreateProductRequest{Name: "Nail", Price: decimal.Zero}, domain.ErrInvalidPrice},
		{"negative cost", domain.CreateProductRequest{Name: "Nail", Price: decimal.NewFromInt(1), Cost: &negative}, domain.ErrInvalidCost},
		{"negative stock", domain.CreateProductRequest{Name: "Nail", Price: decimal.NewFromInt(1), Stock: -3}, domain.ErrInvalidStock},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := h.svc.CreateProduct(context.Background(), tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
	assert.Zero(t, h.count(t, &domain.Product{}))
}

func TestCheckoutRecordsSaleAndIncome(t *testing.T) {
	h := newShopHarness(t)
	ctx := context.Background()
	accountID := h.account(t)
	paint := h.product(t, "Paint", "100.50", 5)
	brush := h.product(t, "Brush", "20", 10)

	sale, err := h.svc.Checkout(ctx, domain.CheckoutRequest{
		AccountID: accountID.String(),
		Items: []domain.CheckoutItem{
			{ProductID: paint.ID.String(), Quantity: 2},
			{ProductID: brush.ID.String(), Quantity: 1},
			{ProductID: paint.ID.String(), Quantity: 1},
		},
	})
	require.NoError(t, err)

	assert.True(t, sale.Total.Equal(decimal.RequireFromString("321.5")), "total %s", sale.Total)
	assert.Len(t, sale.Items, 2)
	assert.NotEmpty(t, sale.ReceiptNumber)
	assert.Equal(t, int64(2), h.stock(t, paint.ID))
	assert.Equal(t, int64(9), h.stock(t, brush.ID))
	assert.True(t, h.balance(t, accountID).Equal(decimal.RequireFromString("321.5")))

	var record transactiondomain.Transaction
	require.NoError(t, h.db.First(&record, "id = ?", sale.TransactionID).Error)
	assert.Equal(t, cashflow.TypeIncome, record.Type)
	assert.Equal(t, cashflow.OriginSale, record.Origin)
	assert.Equal(t, domain.SalesCategory, record.Category)

	listed, err := h.svc.ListSales(ctx, 0)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Len(t, listed[0].Items, 2)
}

func TestCheckoutInsufficientStockRollsBack(t *testing.T) {
	h := newShopHarness(t)
	ctx := context.Background()
	accountID := h.account(t)
	paint := h.product(t, "Paint", "100", 5)
	brush := h.product(t, "Brush", "20", 2)

	_, err := h.svc.Checkout(ctx, domain.CheckoutRequest{
		AccountID: accountID.String(),
		Items: []domain.CheckoutItem{
			{ProductID: paint.ID.String(), Quantity: 1},
			{ProductID: brush.ID.String(), Quantity: 3},
		},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.Equal(t, int64(5), h.stock(t, paint.ID))
	assert.Equal(t, int64(2), h.stock(t, brush.ID))
	assert.True(t, h.balance(t, accountID).IsZero())
	assert.Zero(t, h.count(t, &domain.Sale{}))
	assert.Zero(t, h.count(t, &domain.SaleItem{}))
	assert.Zero(t, h.count(t, &transactiondomain.Transaction{}))
}

func TestCheckoutValidation(t *testing.T) {
	h := newShopHarness(t)
	accountID := h.account(t)
	paint := h.product(t, "Paint", "100", 5)

	cases := []struct {
		name string
		req  domain.CheckoutRequest
		want error
	}{
		{"empty basket", domain.CheckoutRequest{AccountID: accountID.String()}, domain.ErrInvalidItems},
		{"zero quantity", domain.CheckoutRequest{AccountID: accountID.String(), Items: []domain.CheckoutItem{{ProductID: paint.ID.String()}}}, domain.ErrInvalidQuantity},
		{"bad product", domain.CheckoutRequest{AccountID: accountID.String(), Items: []domain.CheckoutItem{{ProductID: "x", Quantity: 1}}}, domain.ErrInvalidProductID},
		{"unknown product", domain.CheckoutRequest{AccountID: accountID.String(), Items: []domain.CheckoutItem{{ProductID: h.node.Generate().String(), Quantity: 1}}}, domain.ErrInvalidProductID},
		{"missing account", domain.CheckoutRequest{Items: []domain.CheckoutItem{{ProductID: paint.ID.String(), Quantity: 1}}}, domain.ErrInvalidAccountID},
		{"unknown account", domain.CheckoutRequest{AccountID: h.node.Generate().String(), Items: []domain.CheckoutItem{{ProductID: paint.ID.String(), Quantity: 1}}}, domain.ErrInvalidAccountID},
		{"unknown customer", domain.CheckoutRequest{AccountID: accountID.String(), CustomerID: h.node.Generate().String(), Items: []domain.CheckoutItem{{ProductID: paint.ID.String(), Quantity: 1}}}, domain.ErrInvalidCustomerID},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := h.svc.Checkout(context.Background(), tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
	assert.Equal(t, int64(5), h.stock(t, paint.ID))
}

func TestCheckoutIdempotencyKeyReplays(t *testing.T) {
	h := newShopHarness(t)
	ctx := context.Background()
	accountID := h.account(t)
	paint := h.product(t, "Paint", "100", 5)

	req := domain.CheckoutRequest{
		AccountID:      accountID.String(),
		IdempotencyKey: "till-1-0001",
		Items:          []domain.CheckoutItem{{ProductID: paint.ID.String(), Quantity: 2}},
	}
	first, err := h.svc.Checkout(ctx, req)
	require.NoError(t, err)
	second, err := h.svc.Checkout(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, second.Items, 1)
	assert.Equal(t, int64(3), h.stock(t, paint.ID))
	assert.True(t, h.balance(t, accountID).Equal(decimal.NewFromInt(200)))
	assert.Equal(t, int64(1), h.count(t, &domain.Sale{}))
}

func TestReceiptRendersPDF(t *testing.T) {
	h := newShopHarness(t)
	ctx := context.Background()
	accountID := h.account(t)
	paint := h.product(t, "Paint", "100", 5)

	sale, err := h.svc.Checkout(ctx, domain.CheckoutRequest{
		AccountID: accountID.String(),
		Items:     []domain.CheckoutItem{{ProductID: paint.ID.String(), Quantity: 1}},
	})
	require.NoError(t, err)

	reader, got, err := h.svc.Receipt(ctx, sale.ID.String())
	require.NoError(t, err)
	assert.Equal(t, sale.ReceiptNumber, got.ReceiptNumber)
	body, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.True(t, len(body) > 4 && string(body[:4]) == "%PDF", "expected a pdf document")

	_, _, err = h.svc.Receipt(ctx, h.node.Generate().String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = h.svc.GetSale(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}
