package server

import (
	"net/http"
	"strings"

	auditdomain "github.com/civicworks/caseboard/internal/audit/domain"
	"github.com/civicworks/caseboard/pkg/db/pagination"
	"github.com/gin-gonic/gin"
)

type listAuditLogsQuery struct {
	pagination.Pagination
	ActorID    string `form:"actor_id"`
	ObjectType string `form:"object_type"`
	Action     string `form:"action"`
}

func (s *Server) ListAuditLogs(c *gin.Context) {
	var query listAuditLogsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.auditSvc.List(c.Request.Context(), auditdomain.ListFilter{
		ActorID:    strings.TrimSpace(query.ActorID),
		ObjectType: strings.TrimSpace(query.ObjectType),
		Action:     strings.TrimSpace(query.Action),
	}, query.Pagination)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
