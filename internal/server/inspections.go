package server

import (
	"net/http"
	"strings"

	auditdomain "github.com/civicworks/caseboard/internal/audit/domain"
	inspectiondomain "github.com/civicworks/caseboard/internal/inspection/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) ListInspections(c *gin.Context) {
	var req inspectiondomain.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.inspectionSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreateInspection(c *gin.Context) {
	var wire inspectiondomain.Wire
	if err := c.ShouldBindJSON(&wire); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.inspectionSvc.Create(c.Request.Context(), wire)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.auditSvc.Record(c.Request.Context(), auditdomain.Entry{
		Action:     "inspection.create",
		ObjectType: "inspection",
		ObjectID:   resp.ID.String(),
		Metadata:   map[string]interface{}{"employer_no": resp.EmployerNo},
	})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateInspection(c *gin.Context) {
	var req inspectiondomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = strings.TrimSpace(c.Param("id"))

	resp, err := s.inspectionSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.auditSvc.Record(c.Request.Context(), auditdomain.Entry{
		Action:     "inspection.update",
		ObjectType: "inspection",
		ObjectID:   req.ID,
	})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
