package server

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	accountdomain "github.com/smallbiznis/bizledger/internal/account/domain"
	customerdomain "github.com/smallbiznis/bizledger/internal/customer/domain"
	shopdomain "github.com/smallbiznis/bizledger/internal/shop/domain"
)

const (
	idempotencyKeyHeader  = "Idempotency-Key"
	maxIdempotencyKeySize = 128
	shopCustomerPageSize  = 250
)

type createProductRequest struct {
	Name        string           `json:"name" binding:"required"`
	SKU         string           `json:"sku"`
	Description string           `json:"description"`
	Price       decimal.Decimal  `json:"price" binding:"decimal_gt0"`
	Cost        *decimal.Decimal `json:"cost" binding:"omitempty,decimal_gte0"`
	Stock       int64            `json:"stock" binding:"gte=0"`
	Unit        string           `json:"unit"`
}

type checkoutItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int64  `json:"quantity" binding:"gt=0"`
}

type checkoutRequest struct {
	Items      []checkoutItemRequest `json:"items" binding:"required,min=1,dive"`
	AccountID  string                `json:"accountId" binding:"required"`
	CustomerID string                `json:"customerId"`
}

func (s *Server) ListProducts(c *gin.Context) {
	activeOnly, err := parseOptionalBool(c.Query("activeOnly"), true)
	if err != nil {
		AbortWithError(c, newValidationError("activeOnly", "invalid_active_only", "invalid activeOnly"))
		return
	}

	products, err := s.shopSvc.ListProducts(c.Request.Context(), shopdomain.ListProductRequest{
		ActiveOnly: activeOnly,
		Search:     strings.TrimSpace(c.Query("search")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": products})
}

func (s *Server) CreateProduct(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	product, err := s.shopSvc.CreateProduct(c.Request.Context(), shopdomain.CreateProductRequest{
		Name:        req.Name,
		SKU:         req.SKU,
		Description: req.Description,
		Price:       req.Price,
		Cost:        req.Cost,
		Stock:       req.Stock,
		Unit:        req.Unit,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": product})
}

// ListShopAccounts returns the accounts a sale may be paid into.
func (s *Server) ListShopAccounts(c *gin.Context) {
	accounts, err := s.accountSvc.List(c.Request.Context(), accountdomain.ListAccountRequest{ActiveOnly: true})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": accounts})
}

// ListShopCustomers is the flat customer picker used at checkout.
func (s *Server) ListShopCustomers(c *gin.Context) {
	resp, err := s.customerSvc.List(c.Request.Context(), customerdomain.ListCustomerRequest{
		PageSize: shopCustomerPageSize,
		Search:   strings.TrimSpace(c.Query("search")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp.Customers})
}

func (s *Server) ListSales(c *gin.Context) {
	limit, err := parseOptionalInt(c.Query("limit"))
	if err != nil || limit < 0 {
		AbortWithError(c, newValidationError("limit", "invalid_limit", "invalid limit"))
		return
	}

	sales, err := s.shopSvc.ListSales(c.Request.Context(), limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": sales})
}

func (s *Server) Checkout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	key := strings.TrimSpace(c.GetHeader(idempotencyKeyHeader))
	if len(key) > maxIdempotencyKeySize {
		AbortWithError(c, newValidationError("idempotencyKey", "invalid_idempotency_key", "idempotency key too long"))
		return
	}

	items := make([]shopdomain.CheckoutItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, shopdomain.CheckoutItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	sale, err := s.shopSvc.Checkout(c.Request.Context(), shopdomain.CheckoutRequest{
		Items:          items,
		AccountID:      req.AccountID,
		CustomerID:     req.CustomerID,
		IdempotencyKey: key,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": sale})
}

func (s *Server) GetSaleReceipt(c *gin.Context) {
	reader, sale, err := s.shopSvc.Receipt(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", "receipt-"+sale.ReceiptNumber+".pdf"))
	c.Data(http.StatusOK, "application/pdf", body)
}

func isShopValidationError(err error) bool {
	return errorIn(err,
		shopdomain.ErrInvalidID,
		shopdomain.ErrInvalidName,
		shopdomain.ErrInvalidSKU,
		shopdomain.ErrInvalidPrice,
		shopdomain.ErrInvalidCost,
		shopdomain.ErrInvalidStock,
		shopdomain.ErrInvalidItems,
		shopdomain.ErrInvalidProductID,
		shopdomain.ErrInvalidQuantity,
		shopdomain.ErrInvalidAccountID,
		shopdomain.ErrInvalidCustomerID,
	)
}
