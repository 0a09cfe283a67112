package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	expensedomain "github.com/smallbiznis/bizledger/internal/expense/domain"
)

type expenseRequest struct {
	Description string          `json:"description" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"decimal_gt0"`
	Category    string          `json:"category"`
	ExpenseDate string          `json:"expenseDate"`
	ProjectID   string          `json:"projectId"`
	EmployeeID  string          `json:"employeeId"`
	VendorID    string          `json:"vendorId"`
	ReceiptURL  string          `json:"receiptUrl"`
}

func (r expenseRequest) toDomain() (expensedomain.ExpenseRequest, error) {
	expenseDate, err := parseTimeField(r.ExpenseDate, "expenseDate")
	if err != nil {
		return expensedomain.ExpenseRequest{}, err
	}
	return expensedomain.ExpenseRequest{
		Description: r.Description,
		Amount:      r.Amount,
		Category:    r.Category,
		ExpenseDate: expenseDate,
		ProjectID:   r.ProjectID,
		EmployeeID:  r.EmployeeID,
		VendorID:    r.VendorID,
		ReceiptURL:  r.ReceiptURL,
	}, nil
}

func (s *Server) ListExpenses(c *gin.Context) {
	from, err := parseTimeField(c.Query("from"), "from")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	to, err := parseTimeField(c.Query("to"), "to")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	items, err := s.expenseSvc.List(c.Request.Context(), expensedomain.ListExpenseRequest{
		ProjectID: strings.TrimSpace(c.Query("projectId")),
		Category:  strings.TrimSpace(c.Query("category")),
		From:      from,
		To:        to,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) CreateExpense(c *gin.Context) {
	var req expenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}
	input, err := req.toDomain()
	if err != nil {
		AbortWithError(c, err)
		return
	}

	item, err := s.expenseSvc.Create(c.Request.Context(), input)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": item})
}

func (s *Server) UpdateExpense(c *gin.Context) {
	var req expenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}
	input, err := req.toDomain()
	if err != nil {
		AbortWithError(c, err)
		return
	}

	item, err := s.expenseSvc.Update(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) DeleteExpense(c *gin.Context) {
	if err := s.expenseSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"message": "expense deleted"}})
}

func isExpenseValidationError(err error) bool {
	return errorIn(err,
		expensedomain.ErrInvalidID,
		expensedomain.ErrInvalidDescription,
		expensedomain.ErrInvalidAmount,
		expensedomain.ErrInvalidCategory,
		expensedomain.ErrInvalidExpenseDate,
		expensedomain.ErrInvalidProjectID,
		expensedomain.ErrInvalidEmployeeID,
		expensedomain.ErrInvalidVendorID,
	)
}
