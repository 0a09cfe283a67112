package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	accountdomain "github.com/smallbiznis/bizledger/internal/account/domain"
	auditdomain "github.com/smallbiznis/bizledger/internal/audit/domain"
	"github.com/smallbiznis/bizledger/internal/cashflow"
	"github.com/smallbiznis/bizledger/internal/config"
	customerdomain "github.com/smallbiznis/bizledger/internal/customer/domain"
	"github.com/smallbiznis/bizledger/internal/events"
	"github.com/smallbiznis/bizledger/internal/observability/metrics"
	"github.com/smallbiznis/bizledger/internal/providers/pdf"
	"github.com/smallbiznis/bizledger/internal/ratelimit"
	"github.com/smallbiznis/bizledger/internal/shop/domain"
	transactiondomain "github.com/smallbiznis/bizledger/internal/transaction/domain"
	"github.com/smallbiznis/bizledger/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	Cfg          config.Config
	GenID        *snowflake.Node
	Repo         domain.Repository
	TxSvc        transactiondomain.Service
	AccountRepo  accountdomain.Repository
	CustomerRepo customerdomain.Repository
	PDF          pdf.Provider            `optional:"true"`
	Limiter      *ratelimit.WriteLimiter `optional:"true"`
	AuditSvc     auditdomain.Service     `optional:"true"`
	Events       events.Publisher        `optional:"true"`
	Metrics      *metrics.Metrics        `optional:"true"`
	Ledger       *metrics.LedgerMetrics  `optional:"true"`
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	cfg          config.Config
	genID        *snowflake.Node
	repo         domain.Repository
	txSvc        transactiondomain.Service
	accountRepo  accountdomain.Repository
	customerRepo customerdomain.Repository
	pdf          pdf.Provider
	limiter      *ratelimit.WriteLimiter
	auditSvc     auditdomain.Service
	events       events.Publisher
	metrics      *metrics.Metrics
	ledger       *metrics.LedgerMetrics
}

func New(p Params) domain.Service {
	publisher := p.Events
	if publisher == nil {
		publisher = events.Nop{}
	}
	renderer := p.PDF
	if renderer == nil {
		renderer = pdf.New()
	}
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("shop.service"),
		cfg:          p.Cfg,
		genID:        p.GenID,
		repo:         p.Repo,
		txSvc:        p.TxSvc,
		accountRepo:  p.AccountRepo,
		customerRepo: p.CustomerRepo,
		pdf:          renderer,
		limiter:      p.Limiter,
		auditSvc:     p.AuditSvc,
		events:       publisher,
		metrics:      p.Metrics,
		ledger:       p.Ledger,
	}
}

func (s *Service) CreateProduct(ctx context.Context, req domain.CreateProductRequest) (domain.Product, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Product{}, domain.ErrInvalidName
	}
	if req.Price.IsNegative() || req.Price.IsZero() {
		return domain.Product{}, domain.ErrInvalidPrice
	}
	cost := decimal.Zero
	if req.Cost != nil {
		cost = *req.Cost
	}
	if cost.IsNegative() {
		return domain.Product{}, domain.ErrInvalidCost
	}
	if req.Stock < 0 {
		return domain.Product{}, domain.ErrInvalidStock
	}
	unit := strings.TrimSpace(req.Unit)
	if unit == "" {
		unit = domain.DefaultUnit
	}

	now := time.Now().UTC()
	product := domain.Product{
		ID:          s.genID.Generate(),
		Name:        name,
		Description: optionalString(req.Description),
		Price:       req.Price,
		Cost:        cost,
		Stock:       req.Stock,
		Unit:        unit,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sku, err := s.resolveSKU(ctx, tx, req.SKU, name)
		if err != nil {
			return err
		}
		product.SKU = sku
		if err := s.repo.InsertProduct(ctx, tx, &product); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return domain.ErrDuplicateSKU
			}
			return err
		}
		return s.audit(ctx, tx, "product.create", auditdomain.TargetProduct, product.ID, map[string]any{
			"name":  product.Name,
			"sku":   product.SKU,
			"price": product.Price.String(),
			"stock": product.Stock,
		})
	})
	if err != nil {
		return domain.Product{}, err
	}
	return product, nil
}

// resolveSKU slugs an explicit SKU, or derives one from the name and suffixes
// it until it is free.
func (s *Service) resolveSKU(ctx context.Context, tx *gorm.DB, raw, name string) (string, error) {
	if strings.TrimSpace(raw) != "" {
		sku := slug.Make(raw)
		if sku == "" {
			return "", domain.ErrInvalidSKU
		}
		exists, err := s.repo.SKUExists(ctx, tx, sku)
		if err != nil {
			return "", err
		}
		if exists {
			return "", domain.ErrDuplicateSKU
		}
		return sku, nil
	}

	base := slug.Make(name)
	if base == "" {
		base = "product"
	}
	candidate := base
	for i := 2; ; i++ {
		exists, err := s.repo.SKUExists(ctx, tx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

func (s *Service) ListProducts(ctx context.Context, req domain.ListProductRequest) ([]domain.Product, error) {
	items, err := s.repo.ListProducts(ctx, s.db, domain.ProductFilter{
		ActiveOnly: req.ActiveOnly,
		Search:     strings.ToLower(strings.TrimSpace(req.Search)),
	})
	if err != nil {
		return nil, err
	}
	products := make([]domain.Product, 0, len(items))
	for _, item := range items {
		if item != nil {
			products = append(products, *item)
		}
	}
	return products, nil
}

// Checkout sells a basket atomically: stock, sale rows, the INCOME
// transaction and the account balance commit together or not at all.
func (s *Service) Checkout(ctx context.Context, req domain.CheckoutRequest) (sale domain.Sale, err error) {
	started := time.Now()
	defer func() {
		if s.ledger != nil {
			s.ledger.ObserveWrite("sale_checkout", started, err)
		}
	}()

	lines, err := normalizeItems(req.Items)
	if err != nil {
		return domain.Sale{}, err
	}
	accountID, err := snowflake.ParseString(strings.TrimSpace(req.AccountID))
	if err != nil || accountID <= 0 {
		return domain.Sale{}, domain.ErrInvalidAccountID
	}
	var customerID *snowflake.ID
	if raw := strings.TrimSpace(req.CustomerID); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil || id <= 0 {
			return domain.Sale{}, domain.ErrInvalidCustomerID
		}
		customerID = &id
	}

	key := strings.TrimSpace(req.IdempotencyKey)
	if key != "" {
		existing, err := s.findByKey(ctx, key)
		if err != nil || existing != nil {
			if existing != nil {
				return *existing, nil
			}
			return domain.Sale{}, err
		}

		lease, err := s.limiter.HoldCheckout(ctx, key)
		if err != nil {
			if errors.Is(err, ratelimit.ErrLocked) {
				return domain.Sale{}, domain.ErrCheckoutInProgress
			}
			return domain.Sale{}, err
		}
		defer func() {
			if releaseErr := lease.Release(context.WithoutCancel(ctx)); releaseErr != nil {
				s.log.Warn("release checkout lease failed", zap.Error(releaseErr))
			}
		}()

		// The previous holder may have committed while we waited.
		if existing, err := s.findByKey(ctx, key); err != nil || existing != nil {
			if existing != nil {
				return *existing, nil
			}
			return domain.Sale{}, err
		}
	}

	now := time.Now().UTC()
	sale = domain.Sale{
		ID:            s.genID.Generate(),
		ReceiptNumber: ulid.MustNew(ulid.Timestamp(now), rand.Reader).String(),
		CustomerID:    customerID,
		AccountID:     accountID,
		SoldAt:        now,
		CreatedAt:     now,
	}
	if key != "" {
		sale.IdempotencyKey = &key
	}

	var record transactiondomain.Transaction
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if customerID != nil {
			ok, err := s.repo.CustomerExists(ctx, tx, *customerID)
			if err != nil {
				return err
			}
			if !ok {
				return domain.ErrInvalidCustomerID
			}
		}

		total := decimal.Zero
		items := make([]domain.SaleItem, 0, len(lines))
		for _, line := range lines {
			product, err := s.repo.FindProduct(ctx, tx, line.productID)
			if err != nil {
				return err
			}
			if product == nil || !product.IsActive {
				return domain.ErrInvalidProductID
			}
			rows, err := s.repo.DecrementStock(ctx, tx, product.ID, line.quantity)
			if err != nil {
				return err
			}
			if rows == 0 {
				return domain.ErrInsufficientStock
			}

			lineTotal := product.Price.Mul(decimal.NewFromInt(line.quantity))
			total = total.Add(lineTotal)
			items = append(items, domain.SaleItem{
				ID:          s.genID.Generate(),
				SaleID:      sale.ID,
				ProductID:   product.ID,
				ProductName: product.Name,
				Quantity:    line.quantity,
				UnitPrice:   product.Price,
				LineTotal:   lineTotal,
			})
		}
		sale.Total = total
		sale.Items = items

		record = transactiondomain.Transaction{
			Description:     "Sale " + sale.ReceiptNumber,
			Amount:          total,
			Type:            cashflow.TypeIncome,
			Category:        domain.SalesCategory,
			TransactionDate: now,
			AccountID:       &accountID,
			CustomerID:      customerID,
			Reference:       &sale.ReceiptNumber,
			Origin:          cashflow.OriginSale,
		}
		if _, err := s.txSvc.Record(ctx, tx, &record); err != nil {
			if errors.Is(err, transactiondomain.ErrInvalidAccountID) {
				return domain.ErrInvalidAccountID
			}
			return err
		}
		sale.TransactionID = record.ID

		if err := s.repo.InsertSale(ctx, tx, &sale); err != nil {
			return err
		}
		for i := range items {
			if err := s.repo.InsertSaleItem(ctx, tx, &items[i]); err != nil {
				return err
			}
		}
		return s.audit(ctx, tx, "sale.create", auditdomain.TargetSale, sale.ID, map[string]any{
			"receiptNumber": sale.ReceiptNumber,
			"total":         sale.Total.String(),
			"items":         len(items),
		})
	})
	if err != nil {
		return domain.Sale{}, err
	}

	if s.metrics != nil {
		s.metrics.RecordSale(ctx)
		s.metrics.RecordTransaction(ctx, string(record.Type), "create")
	}
	s.events.Publish(ctx, events.New(events.TypeSaleCreated, events.TopicShop).
		WithTransaction(int64(record.ID)).
		WithAccounts(int64(accountID)))
	s.events.Publish(ctx, events.New(events.TypeTransactionCreated, events.TopicTransactions).
		WithTransaction(int64(record.ID)).
		WithAccounts(int64(accountID)))
	return sale, nil
}

func (s *Service) ListSales(ctx context.Context, limit int) ([]domain.Sale, error) {
	switch {
	case limit <= 0:
		limit = domain.DefaultSaleList
	case limit > domain.MaxSaleList:
		limit = domain.MaxSaleList
	}

	rows, err := s.repo.ListSales(ctx, s.db, limit)
	if err != nil {
		return nil, err
	}
	ids := make([]snowflake.ID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	items, err := s.repo.ListSaleItems(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}
	bySale := make(map[snowflake.ID][]domain.SaleItem, len(rows))
	for _, item := range items {
		bySale[item.SaleID] = append(bySale[item.SaleID], item)
	}

	sales := make([]domain.Sale, 0, len(rows))
	for _, row := range rows {
		sale := *row
		sale.Items = bySale[row.ID]
		if sale.Items == nil {
			sale.Items = []domain.SaleItem{}
		}
		sales = append(sales, sale)
	}
	return sales, nil
}

func (s *Service) GetSale(ctx context.Context, id string) (domain.Sale, error) {
	saleID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || saleID == 0 {
		return domain.Sale{}, domain.ErrInvalidID
	}
	sale, err := s.repo.FindSale(ctx, s.db, saleID)
	if err != nil {
		return domain.Sale{}, err
	}
	if sale == nil {
		return domain.Sale{}, domain.ErrNotFound
	}
	return s.withItems(ctx, *sale)
}

// Receipt renders the sale as a PDF.
func (s *Service) Receipt(ctx context.Context, id string) (io.Reader, domain.Sale, error) {
	sale, err := s.GetSale(ctx, id)
	if err != nil {
		return nil, domain.Sale{}, err
	}

	data := pdf.ReceiptData{
		BusinessName:  s.cfg.BusinessName,
		ReceiptNumber: sale.ReceiptNumber,
		SoldAt:        sale.SoldAt.Format("2006-01-02 15:04"),
		Currency:      s.cfg.DefaultCurrency,
		Total:         sale.Total.StringFixed(2),
	}
	account, err := s.accountRepo.FindByID(ctx, s.db, sale.AccountID)
	if err != nil {
		return nil, domain.Sale{}, err
	}
	if account != nil {
		data.AccountName = account.Name
		data.Currency = account.Currency
	}
	if sale.CustomerID != nil {
		customer, err := s.customerRepo.FindByID(ctx, s.db, *sale.CustomerID)
		if err != nil {
			return nil, domain.Sale{}, err
		}
		if customer != nil {
			data.CustomerName = customer.Name
		}
	}
	for _, item := range sale.Items {
		data.Items = append(data.Items, pdf.ReceiptItem{
			Description: item.ProductName,
			Quantity:    fmt.Sprintf("%d", item.Quantity),
			UnitPrice:   item.UnitPrice.StringFixed(2),
			Amount:      item.LineTotal.StringFixed(2),
		})
	}

	reader, err := s.pdf.GenerateReceipt(ctx, data)
	if err != nil {
		return nil, domain.Sale{}, err
	}
	return reader, sale, nil
}

func (s *Service) findByKey(ctx context.Context, key string) (*domain.Sale, error) {
	sale, err := s.repo.FindSaleByIdempotencyKey(ctx, s.db, key)
	if err != nil || sale == nil {
		return nil, err
	}
	withItems, err := s.withItems(ctx, *sale)
	if err != nil {
		return nil, err
	}
	return &withItems, nil
}

func (s *Service) withItems(ctx context.Context, sale domain.Sale) (domain.Sale, error) {
	items, err := s.repo.ListSaleItems(ctx, s.db, []snowflake.ID{sale.ID})
	if err != nil {
		return domain.Sale{}, err
	}
	if items == nil {
		items = []domain.SaleItem{}
	}
	sale.Items = items
	return sale, nil
}

func (s *Service) audit(ctx context.Context, tx *gorm.DB, action string, target auditdomain.Target, id snowflake.ID, metadata map[string]any) error {
	if s.auditSvc == nil {
		return nil
	}
	return s.auditSvc.Record(ctx, tx, auditdomain.Entry{
		Action:   action,
		Target:   target,
		TargetID: id,
		Metadata: metadata,
	})
}

type line struct {
	productID snowflake.ID
	quantity  int64
}

// normalizeItems validates the basket and merges repeated products.
func normalizeItems(items []domain.CheckoutItem) ([]line, error) {
	if len(items) == 0 {
		return nil, domain.ErrInvalidItems
	}
	index := make(map[snowflake.ID]int, len(items))
	lines := make([]line, 0, len(items))
	for _, item := range items {
		id, err := snowflake.ParseString(strings.TrimSpace(item.ProductID))
		if err != nil || id <= 0 {
			return nil, domain.ErrInvalidProductID
		}
		if item.Quantity <= 0 {
			return nil, domain.ErrInvalidQuantity
		}
		if i, ok := index[id]; ok {
			lines[i].quantity += item.Quantity
			continue
		}
		index[id] = len(lines)
		lines = append(lines, line{productID: id, quantity: item.Quantity})
	}
	return lines, nil
}

func optionalString(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
