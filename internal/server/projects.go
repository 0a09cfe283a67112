package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	projectdomain "github.com/smallbiznis/bizledger/internal/project/domain"
)

type projectRequest struct {
	Name             string           `json:"name" binding:"required"`
	Description      string           `json:"description"`
	CustomerID       string           `json:"customerId" binding:"required"`
	AgreementAmount  decimal.Decimal  `json:"agreementAmount" binding:"decimal_gt0"`
	AdvancePaid      *decimal.Decimal `json:"advancePaid" binding:"omitempty,decimal_gte0"`
	AdvanceAccountID string           `json:"advanceAccountId"`
	Status           string           `json:"status"`
	StartDate        string           `json:"startDate"`
	CompletionDate   string           `json:"completionDate" binding:"required"`
}

type materialRequest struct {
	Name     string          `json:"name" binding:"required"`
	Quantity decimal.Decimal `json:"quantity" binding:"decimal_gt0"`
	UnitCost decimal.Decimal `json:"unitCost" binding:"decimal_gte0"`
	UsedAt   string          `json:"usedAt"`
}

type laborRequest struct {
	EmployeeID string          `json:"employeeId"`
	WorkerName string          `json:"workerName"`
	Hours      decimal.Decimal `json:"hours" binding:"decimal_gt0"`
	Rate       decimal.Decimal `json:"rate" binding:"decimal_gte0"`
	WorkDate   string          `json:"workDate"`
}

func (s *Server) ListProjects(c *gin.Context) {
	projects, err := s.projectSvc.List(c.Request.Context(), projectdomain.ListProjectRequest{
		Status:     strings.TrimSpace(c.Query("status")),
		CustomerID: strings.TrimSpace(c.Query("customerId")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": projects})
}

func (s *Server) CreateProject(c *gin.Context) {
	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}
	startDate, err := parseTimeField(req.StartDate, "startDate")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	completionDate, err := parseTimeField(req.CompletionDate, "completionDate")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	detail, err := s.projectSvc.Create(c.Request.Context(), projectdomain.CreateProjectRequest{
		Name:             req.Name,
		Description:      req.Description,
		CustomerID:       req.CustomerID,
		AgreementAmount:  req.AgreementAmount,
		AdvancePaid:      req.AdvancePaid,
		AdvanceAccountID: req.AdvanceAccountID,
		Status:           req.Status,
		StartDate:        startDate,
		CompletionDate:   completionDate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": detail})
}

func (s *Server) GetProjectByID(c *gin.Context) {
	detail, err := s.projectSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": detail})
}

func (s *Server) UpdateProject(c *gin.Context) {
	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}
	startDate, err := parseTimeField(req.StartDate, "startDate")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	completionDate, err := parseTimeField(req.CompletionDate, "completionDate")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	detail, err := s.projectSvc.Update(c.Request.Context(), c.Param("id"), projectdomain.UpdateProjectRequest{
		Name:            req.Name,
		Description:     req.Description,
		CustomerID:      req.CustomerID,
		AgreementAmount: req.AgreementAmount,
		AdvancePaid:     req.AdvancePaid,
		Status:          req.Status,
		StartDate:       startDate,
		CompletionDate:  completionDate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": detail})
}

func (s *Server) DeleteProject(c *gin.Context) {
	if err := s.projectSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"message": "project deleted"}})
}

func (s *Server) AddProjectMaterial(c *gin.Context) {
	var req materialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}
	usedAt, err := parseTimeField(req.UsedAt, "usedAt")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	material, err := s.projectSvc.AddMaterial(c.Request.Context(), c.Param("id"), projectdomain.AddMaterialRequest{
		Name:     req.Name,
		Quantity: req.Quantity,
		UnitCost: req.UnitCost,
		UsedAt:   usedAt,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": material})
}

func (s *Server) AddProjectLabor(c *gin.Context) {
	var req laborRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}
	workDate, err := parseTimeField(req.WorkDate, "workDate")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	record, err := s.projectSvc.AddLabor(c.Request.Context(), c.Param("id"), projectdomain.AddLaborRequest{
		EmployeeID: req.EmployeeID,
		WorkerName: req.WorkerName,
		Hours:      req.Hours,
		Rate:       req.Rate,
		WorkDate:   workDate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": record})
}

func isProjectValidationError(err error) bool {
	return errorIn(err,
		projectdomain.ErrInvalidID,
		projectdomain.ErrInvalidName,
		projectdomain.ErrInvalidCustomerID,
		projectdomain.ErrInvalidAgreementAmount,
		projectdomain.ErrInvalidAdvancePaid,
		projectdomain.ErrInvalidAdvanceAccountID,
		projectdomain.ErrInvalidStatus,
		projectdomain.ErrInvalidCompletionDate,
		projectdomain.ErrInvalidQuantity,
		projectdomain.ErrInvalidUnitCost,
		projectdomain.ErrInvalidWorkerName,
		projectdomain.ErrInvalidHours,
		projectdomain.ErrInvalidRate,
		projectdomain.ErrInvalidEmployeeID,
	)
}
