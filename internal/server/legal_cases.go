package server

import (
	"fmt"
	"net/http"
	"strings"

	auditdomain "github.com/civicworks/caseboard/internal/audit/domain"
	legaldomain "github.com/civicworks/caseboard/internal/legalcase/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) ListLegalCases(c *gin.Context) {
	var req legaldomain.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.legalSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreateLegalCase(c *gin.Context) {
	var wire legaldomain.Wire
	if err := c.ShouldBindJSON(&wire); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.legalSvc.Create(c.Request.Context(), wire)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.auditSvc.Record(c.Request.Context(), auditdomain.Entry{
		Action:     "legal_case.create",
		ObjectType: "legal_case",
		ObjectID:   resp.ID.String(),
		Metadata:   map[string]interface{}{"case_no": resp.CaseNo},
	})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateLegalCaseStatus(c *gin.Context) {
	var req legaldomain.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = strings.TrimSpace(c.Param("id"))

	resp, err := s.legalSvc.UpdateStatus(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.auditSvc.Record(c.Request.Context(), auditdomain.Entry{
		Action:     "legal_case.update_status",
		ObjectType: "legal_case",
		ObjectID:   req.ID,
		Metadata:   map[string]interface{}{"record_status": resp.RecordStatus},
	})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) BulkTransitionLegalCases(c *gin.Context) {
	var req legaldomain.BulkTransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.legalSvc.BulkTransition(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.auditSvc.Record(c.Request.Context(), auditdomain.Entry{
		Action:     "legal_case.bulk_transition",
		ObjectType: "legal_case",
		Metadata: map[string]interface{}{
			"action":  req.Action,
			"updated": len(result.Updated),
			"missing": len(result.Missing),
			"errors":  len(result.Errors),
		},
	})

	message := "bulk transition failed"
	if result.FullySuccessful() {
		message = fmt.Sprintf("%d cases updated", len(result.Updated))
	}

	c.JSON(http.StatusOK, gin.H{"message": message, "data": result})
}
