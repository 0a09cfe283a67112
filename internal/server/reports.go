package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	reportdomain "github.com/smallbiznis/bizledger/internal/report/domain"
)

type overviewQuery struct {
	Range string `form:"range"`
	From  string `form:"from"`
	To    string `form:"to"`
}

// GetOverviewReport serves the accounting dashboard. An explicit from without
// a range is read as a custom window.
func (s *Server) GetOverviewReport(c *gin.Context) {
	var query overviewQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	from, err := parseOptionalTime(query.From)
	if err != nil {
		AbortWithError(c, reportdomain.ErrInvalidFrom)
		return
	}
	to, err := parseOptionalTime(query.To)
	if err != nil {
		AbortWithError(c, reportdomain.ErrInvalidTo)
		return
	}

	rng := reportdomain.Range(strings.ToLower(strings.TrimSpace(query.Range)))
	if rng == "" && from != nil {
		rng = reportdomain.RangeCustom
	}

	stats, err := s.reportSvc.Overview(c.Request.Context(), reportdomain.OverviewRequest{
		Range: rng,
		From:  from,
		To:    to,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": stats})
}

func (s *Server) GetDailyReport(c *gin.Context) {
	date, err := parseTimeField(c.Query("date"), "date")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	report, err := s.reportSvc.Daily(c.Request.Context(), date)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": report})
}

func (s *Server) GetPaymentSchedule(c *gin.Context) {
	items, err := s.reportSvc.PaymentSchedule(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) GetDebtsReport(c *gin.Context) {
	report, err := s.reportSvc.Debts(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": report})
}

func isReportValidationError(err error) bool {
	return errorIn(err,
		reportdomain.ErrInvalidRange,
		reportdomain.ErrInvalidFrom,
		reportdomain.ErrInvalidTo,
	)
}
