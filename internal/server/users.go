package server

import (
	"net/http"
	"strings"

	auditdomain "github.com/civicworks/caseboard/internal/audit/domain"
	userdomain "github.com/civicworks/caseboard/internal/user/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) ListUsers(c *gin.Context) {
	resp, err := s.userSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetUserByID(c *gin.Context) {
	resp, err := s.userSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreateUser(c *gin.Context) {
	var req userdomain.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.userSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.auditSvc.Record(c.Request.Context(), auditdomain.Entry{
		Action:     "user.create",
		ObjectType: "user",
		ObjectID:   resp.ID.String(),
		Metadata:   map[string]interface{}{"username": resp.Username, "role": resp.Role},
	})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateUser(c *gin.Context) {
	var req userdomain.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = strings.TrimSpace(c.Param("id"))

	resp, err := s.userSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.auditSvc.Record(c.Request.Context(), auditdomain.Entry{
		Action:     "user.update",
		ObjectType: "user",
		ObjectID:   req.ID,
		Metadata:   map[string]interface{}{"role": resp.Role},
	})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) Profile(c *gin.Context) {
	resp, err := s.userSvc.Profile(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateProfile(c *gin.Context) {
	var req userdomain.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.userSvc.UpdateProfile(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.auditSvc.Record(c.Request.Context(), auditdomain.Entry{
		Action:     "user.update_profile",
		ObjectType: "user",
		ObjectID:   resp.ID.String(),
	})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UploadProfilePicture(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		AbortWithError(c, newValidationError("file", "missing_file", "file is required"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	defer file.Close()

	url, err := s.userSvc.UploadPicture(c.Request.Context(), fileHeader.Filename, file)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.auditSvc.Record(c.Request.Context(), auditdomain.Entry{
		Action:     "user.upload_picture",
		ObjectType: "user",
		Metadata:   map[string]interface{}{"url": url},
	})

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"url": url}})
}
