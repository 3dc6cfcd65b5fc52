package server

import (
	"net/http"

	dashboarddomain "github.com/civicworks/caseboard/internal/dashboard/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) DashboardSummary(c *gin.Context) {
	var req dashboarddomain.SummaryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.dashboardSvc.Summary(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ComplianceDashboard(c *gin.Context) {
	var req dashboarddomain.SummaryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.dashboardSvc.Compliance(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
