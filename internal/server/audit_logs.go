package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/smallbiznis/bizledger/internal/audit/domain"
	"github.com/smallbiznis/bizledger/pkg/db/pagination"
)

type listAuditLogsQuery struct {
	pagination.Pagination
	Action     string `form:"action"`
	TargetType string `form:"targetType"`
	TargetID   string `form:"targetId"`
	StartAt    string `form:"startAt"`
	EndAt      string `form:"endAt"`
	From       string `form:"from"`
	To         string `form:"to"`
}

func (s *Server) ListAuditLogs(c *gin.Context) {
	var query listAuditLogsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	startAtValue := strings.TrimSpace(query.StartAt)
	if startAtValue == "" {
		startAtValue = strings.TrimSpace(query.From)
	}
	startAt, err := parseTimeField(startAtValue, "startAt")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	endAtValue := strings.TrimSpace(query.EndAt)
	if endAtValue == "" {
		endAtValue = strings.TrimSpace(query.To)
	}
	endAt, err := parseTimeField(endAtValue, "endAt")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.auditSvc.List(c.Request.Context(), auditdomain.ListAuditLogRequest{
		Pagination: pagination.Pagination{
			PageToken: strings.TrimSpace(query.PageToken),
			PageSize:  query.PageSize,
		},
		Action:     strings.TrimSpace(query.Action),
		TargetType: strings.TrimSpace(query.TargetType),
		TargetID:   strings.TrimSpace(query.TargetID),
		StartAt:    startAt,
		EndAt:      endAt,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp.AuditLogs, "pageInfo": resp.PageInfo})
}

func isAuditValidationError(err error) bool {
	return errorIn(err,
		auditdomain.ErrInvalidPageToken,
		auditdomain.ErrInvalidTimeRange,
		auditdomain.ErrInvalidAction,
	)
}
