package server

import (
	"net/http"
	"strings"

	auditdomain "github.com/civicworks/caseboard/internal/audit/domain"
	compliancedomain "github.com/civicworks/caseboard/internal/compliance/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) ListCompliance(c *gin.Context) {
	var req compliancedomain.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.complianceSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ComplianceSummary(c *gin.Context) {
	var req compliancedomain.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.complianceSvc.Summary(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreateCompliance(c *gin.Context) {
	var wire compliancedomain.Wire
	if err := c.ShouldBindJSON(&wire); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.complianceSvc.Create(c.Request.Context(), wire)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.auditSvc.Record(c.Request.Context(), auditdomain.Entry{
		Action:     "compliance.create",
		ObjectType: "compliance",
		ObjectID:   resp.ID.String(),
		Metadata:   map[string]interface{}{"employer_no": resp.EmployerNo},
	})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateCompliance(c *gin.Context) {
	var req compliancedomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = strings.TrimSpace(c.Param("id"))

	resp, err := s.complianceSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.auditSvc.Record(c.Request.Context(), auditdomain.Entry{
		Action:     "compliance.update",
		ObjectType: "compliance",
		ObjectID:   req.ID,
	})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
