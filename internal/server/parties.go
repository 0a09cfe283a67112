package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	customerdomain "github.com/smallbiznis/bizledger/internal/customer/domain"
	employeedomain "github.com/smallbiznis/bizledger/internal/employee/domain"
	vendordomain "github.com/smallbiznis/bizledger/internal/supplier/domain"
	"github.com/smallbiznis/bizledger/pkg/db/pagination"
)

type createCustomerRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Company string `json:"company"`
}

type updateCustomerRequest struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
	Company *string `json:"company"`
}

type createVendorRequest struct {
	Name          string `json:"name" binding:"required"`
	ContactPerson string `json:"contactPerson"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
}

type createEmployeeRequest struct {
	Name     string           `json:"name" binding:"required"`
	Email    string           `json:"email"`
	Phone    string           `json:"phone"`
	Address  string           `json:"address"`
	Position string           `json:"position"`
	Salary   *decimal.Decimal `json:"salary" binding:"omitempty,decimal_gte0"`
}

func (s *Server) CreateCustomer(c *gin.Context) {
	var req createCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	resp, err := s.customerSvc.Create(c.Request.Context(), customerdomain.CreateCustomerRequest{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Phone:   req.Phone,
		Address: req.Address,
		Company: req.Company,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) UpdateCustomer(c *gin.Context) {
	var req updateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	resp, err := s.customerSvc.Update(c.Request.Context(), c.Param("id"), customerdomain.UpdateCustomerRequest{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
		Company: req.Company,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListCustomers(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Name        string `form:"name"`
		Email       string `form:"email"`
		CreatedFrom string `form:"createdFrom"`
		CreatedTo   string `form:"createdTo"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	createdFrom, err := parseTimeField(query.CreatedFrom, "createdFrom")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	createdTo, err := parseTimeField(query.CreatedTo, "createdTo")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.customerSvc.List(c.Request.Context(), customerdomain.ListCustomerRequest{
		PageToken:   query.PageToken,
		PageSize:    int32(query.PageSize),
		Name:        strings.TrimSpace(query.Name),
		Email:       strings.TrimSpace(query.Email),
		CreatedFrom: createdFrom,
		CreatedTo:   createdTo,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetCustomerByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.customerSvc.GetByID(c.Request.Context(), customerdomain.GetCustomerRequest{
		ID: id,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListVendors(c *gin.Context) {
	vendors, err := s.vendorSvc.List(c.Request.Context(), strings.TrimSpace(c.Query("name")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": vendors})
}

func (s *Server) CreateVendor(c *gin.Context) {
	var req createVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	resp, err := s.vendorSvc.Create(c.Request.Context(), vendordomain.CreateVendorRequest{
		Name:          req.Name,
		ContactPerson: req.ContactPerson,
		Email:         req.Email,
		Phone:         req.Phone,
		Address:       req.Address,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) GetVendorByID(c *gin.Context) {
	resp, err := s.vendorSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListEmployees(c *gin.Context) {
	activeOnly, err := parseOptionalBool(c.Query("activeOnly"), false)
	if err != nil {
		AbortWithError(c, newValidationError("activeOnly", "invalid_active_only", "invalid activeOnly"))
		return
	}

	employees, err := s.employeeSvc.List(c.Request.Context(), employeedomain.ListEmployeeRequest{
		Name:       strings.TrimSpace(c.Query("name")),
		ActiveOnly: activeOnly,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": employees})
}

func (s *Server) CreateEmployee(c *gin.Context) {
	var req createEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	resp, err := s.employeeSvc.Create(c.Request.Context(), employeedomain.CreateEmployeeRequest{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Address:  req.Address,
		Position: req.Position,
		Salary:   req.Salary,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) GetEmployeeByID(c *gin.Context) {
	resp, err := s.employeeSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func isPartyValidationError(err error) bool {
	return errorIn(err,
		customerdomain.ErrInvalidName,
		customerdomain.ErrInvalidEmail,
		customerdomain.ErrInvalidID,
		customerdomain.ErrInvalidPageToken,
		vendordomain.ErrInvalidID,
		vendordomain.ErrInvalidName,
		vendordomain.ErrInvalidEmail,
		employeedomain.ErrInvalidID,
		employeedomain.ErrInvalidName,
		employeedomain.ErrInvalidEmail,
		employeedomain.ErrInvalidSalary,
	)
}
