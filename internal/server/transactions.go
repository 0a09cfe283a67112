package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	transactiondomain "github.com/smallbiznis/bizledger/internal/transaction/domain"
)

// transactionRequest is the wire form shared by create and update. Dates are
// parsed after binding so a bad date reports against its own field.
type transactionRequest struct {
	Description     string          `json:"description" binding:"required"`
	Amount          decimal.Decimal `json:"amount" binding:"decimal_gt0"`
	Type            string          `json:"type" binding:"required"`
	Category        string          `json:"category"`
	TransactionDate string          `json:"transactionDate"`
	AccountID       string          `json:"accountId"`
	FromAccountID   string          `json:"fromAccountId"`
	ToAccountID     string          `json:"toAccountId"`
	ProjectID       string          `json:"projectId"`
	CustomerID      string          `json:"customerId"`
	VendorID        string          `json:"vendorId"`
	EmployeeID      string          `json:"employeeId"`
	UserID          string          `json:"userId"`
	DueDate         string          `json:"dueDate"`
	Reference       string          `json:"reference"`
}

func (r transactionRequest) toDomain() (transactiondomain.CreateTransactionRequest, error) {
	txDate, err := parseTimeField(r.TransactionDate, "transactionDate")
	if err != nil {
		return transactiondomain.CreateTransactionRequest{}, err
	}
	dueDate, err := parseTimeField(r.DueDate, "dueDate")
	if err != nil {
		return transactiondomain.CreateTransactionRequest{}, err
	}

	return transactiondomain.CreateTransactionRequest{
		Description:     r.Description,
		Amount:          r.Amount,
		Type:            r.Type,
		Category:        r.Category,
		TransactionDate: txDate,
		AccountID:       r.AccountID,
		FromAccountID:   r.FromAccountID,
		ToAccountID:     r.ToAccountID,
		ProjectID:       r.ProjectID,
		CustomerID:      r.CustomerID,
		VendorID:        r.VendorID,
		EmployeeID:      r.EmployeeID,
		UserID:          r.UserID,
		DueDate:         dueDate,
		Reference:       r.Reference,
	}, nil
}

type listTransactionsQuery struct {
	Limit               string `form:"limit"`
	IncludeDebts        string `form:"includeDebts"`
	IncludeProjectDebts string `form:"includeProjectDebts"`
	Type                string `form:"type"`
	AccountID           string `form:"accountId"`
	ProjectID           string `form:"projectId"`
	From                string `form:"from"`
	To                  string `form:"to"`
}

func (s *Server) ListTransactions(c *gin.Context) {
	var query listTransactionsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	limit, err := parseOptionalInt(query.Limit)
	if err != nil {
		AbortWithError(c, transactiondomain.ErrInvalidLimit)
		return
	}
	includeDebts, err := parseOptionalBool(query.IncludeDebts, true)
	if err != nil {
		AbortWithError(c, newValidationError("includeDebts", "invalid_include_debts", "invalid includeDebts"))
		return
	}
	includeProjectDebts, err := parseOptionalBool(query.IncludeProjectDebts, true)
	if err != nil {
		AbortWithError(c, newValidationError("includeProjectDebts", "invalid_include_project_debts", "invalid includeProjectDebts"))
		return
	}
	from, err := parseTimeField(query.From, "from")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	to, err := parseTimeField(query.To, "to")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	items, err := s.txSvc.List(c.Request.Context(), transactiondomain.ListTransactionRequest{
		Limit:               limit,
		IncludeDebts:        includeDebts,
		IncludeProjectDebts: includeProjectDebts,
		Type:                strings.TrimSpace(query.Type),
		AccountID:           strings.TrimSpace(query.AccountID),
		ProjectID:           strings.TrimSpace(query.ProjectID),
		From:                from,
		To:                  to,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) CreateTransaction(c *gin.Context) {
	var req transactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}
	input, err := req.toDomain()
	if err != nil {
		AbortWithError(c, err)
		return
	}

	item, err := s.txSvc.Create(c.Request.Context(), input)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": item})
}

func (s *Server) GetTransactionByID(c *gin.Context) {
	item, err := s.txSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) UpdateTransaction(c *gin.Context) {
	var req transactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}
	input, err := req.toDomain()
	if err != nil {
		AbortWithError(c, err)
		return
	}

	item, err := s.txSvc.Update(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

// DeleteTransaction answers with {message, event} at the top level so
// listeners can reuse the event without a second lookup.
func (s *Server) DeleteTransaction(c *gin.Context) {
	result, err := s.txSvc.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func isTransactionValidationError(err error) bool {
	return errorIn(err,
		transactiondomain.ErrInvalidID,
		transactiondomain.ErrInvalidAmount,
		transactiondomain.ErrInvalidType,
		transactiondomain.ErrInvalidDescription,
		transactiondomain.ErrInvalidDate,
		transactiondomain.ErrInvalidAccountID,
		transactiondomain.ErrInvalidFromAccountID,
		transactiondomain.ErrInvalidToAccountID,
		transactiondomain.ErrInvalidProjectID,
		transactiondomain.ErrInvalidCustomerID,
		transactiondomain.ErrInvalidVendorID,
		transactiondomain.ErrInvalidEmployeeID,
		transactiondomain.ErrInvalidDueDate,
		transactiondomain.ErrInvalidLimit,
		transactiondomain.ErrUnknownTransactionType,
	)
}
