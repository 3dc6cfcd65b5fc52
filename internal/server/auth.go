package server

import (
	"net/http"
	"strings"

	auditdomain "github.com/civicworks/caseboard/internal/audit/domain"
	authdomain "github.com/civicworks/caseboard/internal/auth/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) Login(c *gin.Context) {
	var req authdomain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	resp, err := s.authsvc.Login(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.auditSvc.Record(c.Request.Context(), auditdomain.Entry{
		Action:     "auth.login",
		ObjectType: "user",
		ObjectID:   resp.User.ID.String(),
		Metadata:   map[string]interface{}{"username": resp.User.Username},
	})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) Refresh(c *gin.Context) {
	var req authdomain.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.authsvc.Refresh(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) Me(c *gin.Context) {
	resp, err := s.userSvc.Profile(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ChangePassword(c *gin.Context) {
	var req authdomain.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.authsvc.ChangePassword(c.Request.Context(), req); err != nil {
		AbortWithError(c, err)
		return
	}

	s.auditSvc.Record(c.Request.Context(), auditdomain.Entry{
		Action:     "auth.change_password",
		ObjectType: "user",
	})

	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}
