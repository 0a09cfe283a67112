package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	accountdomain "github.com/smallbiznis/bizledger/internal/account/domain"
)

type createAccountRequest struct {
	Name          string           `json:"name" binding:"required"`
	Type          string           `json:"type" binding:"required"`
	Balance       *decimal.Decimal `json:"balance" binding:"omitempty,decimal_gte0"`
	Currency      string           `json:"currency"`
	AccountNumber string           `json:"accountNumber"`
	Description   string           `json:"description"`
}

type updateAccountRequest struct {
	Name          *string `json:"name"`
	Type          *string `json:"type"`
	Currency      *string `json:"currency"`
	AccountNumber *string `json:"accountNumber"`
	Description   *string `json:"description"`
	IsActive      *bool   `json:"isActive"`
}

func (s *Server) ListAccounts(c *gin.Context) {
	activeOnly, err := parseOptionalBool(c.Query("activeOnly"), false)
	if err != nil {
		AbortWithError(c, newValidationError("activeOnly", "invalid_active_only", "invalid activeOnly"))
		return
	}

	accounts, err := s.accountSvc.List(c.Request.Context(), accountdomain.ListAccountRequest{
		ActiveOnly: activeOnly,
		Type:       strings.TrimSpace(c.Query("type")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": accounts})
}

func (s *Server) CreateAccount(c *gin.Context) {
	var req createAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	account, err := s.accountSvc.Create(c.Request.Context(), accountdomain.CreateAccountRequest{
		Name:          req.Name,
		Type:          req.Type,
		Balance:       req.Balance,
		Currency:      req.Currency,
		AccountNumber: req.AccountNumber,
		Description:   req.Description,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": account})
}

func (s *Server) GetAccountByID(c *gin.Context) {
	account, err := s.accountSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": account})
}

func (s *Server) UpdateAccount(c *gin.Context) {
	var req updateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	account, err := s.accountSvc.Update(c.Request.Context(), c.Param("id"), accountdomain.UpdateAccountRequest{
		Name:          req.Name,
		Type:          req.Type,
		Currency:      req.Currency,
		AccountNumber: req.AccountNumber,
		Description:   req.Description,
		IsActive:      req.IsActive,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": account})
}

func (s *Server) DeleteAccount(c *gin.Context) {
	if err := s.accountSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"message": "account deleted"}})
}

func isAccountValidationError(err error) bool {
	return errorIn(err,
		accountdomain.ErrInvalidID,
		accountdomain.ErrInvalidName,
		accountdomain.ErrInvalidType,
		accountdomain.ErrInvalidBalance,
		accountdomain.ErrInvalidCurrency,
	)
}
