package server

import (
	"net/http"
	"strings"

	auditdomain "github.com/civicworks/caseboard/internal/audit/domain"
	regiondomain "github.com/civicworks/caseboard/internal/region/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) ListRegions(c *gin.Context) {
	resp, err := s.regionSvc.ListRegions(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreateRegion(c *gin.Context) {
	var req regiondomain.CreateRegionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.regionSvc.CreateRegion(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.auditSvc.Record(c.Request.Context(), auditdomain.Entry{
		Action:     "region.create",
		ObjectType: "region",
		ObjectID:   resp.ID.String(),
		Metadata:   map[string]interface{}{"name": resp.Name},
	})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateRegion(c *gin.Context) {
	var req regiondomain.UpdateRegionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = strings.TrimSpace(c.Param("id"))

	resp, err := s.regionSvc.UpdateRegion(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.auditSvc.Record(c.Request.Context(), auditdomain.Entry{
		Action:     "region.update",
		ObjectType: "region",
		ObjectID:   req.ID,
	})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteRegion(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if err := s.regionSvc.DeleteRegion(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	s.auditSvc.Record(c.Request.Context(), auditdomain.Entry{
		Action:     "region.delete",
		ObjectType: "region",
		ObjectID:   id,
	})

	c.JSON(http.StatusOK, gin.H{"message": "region deleted"})
}

func (s *Server) ListBranches(c *gin.Context) {
	regionID := strings.TrimSpace(c.Query("region_id"))
	resp, err := s.regionSvc.ListBranches(c.Request.Context(), regionID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreateBranch(c *gin.Context) {
	var req regiondomain.CreateBranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.regionSvc.CreateBranch(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.auditSvc.Record(c.Request.Context(), auditdomain.Entry{
		Action:     "branch.create",
		ObjectType: "branch",
		ObjectID:   resp.ID.String(),
		Metadata:   map[string]interface{}{"name": resp.Name},
	})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateBranch(c *gin.Context) {
	var req regiondomain.UpdateBranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = strings.TrimSpace(c.Param("id"))

	resp, err := s.regionSvc.UpdateBranch(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.auditSvc.Record(c.Request.Context(), auditdomain.Entry{
		Action:     "branch.update",
		ObjectType: "branch",
		ObjectID:   req.ID,
	})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteBranch(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if err := s.regionSvc.DeleteBranch(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	s.auditSvc.Record(c.Request.Context(), auditdomain.Entry{
		Action:     "branch.delete",
		ObjectType: "branch",
		ObjectID:   id,
	})

	c.JSON(http.StatusOK, gin.H{"message": "branch deleted"})
}
