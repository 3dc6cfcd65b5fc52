package server

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	auditdomain "github.com/civicworks/caseboard/internal/audit/domain"
	claimdomain "github.com/civicworks/caseboard/internal/claim/domain"
	"github.com/civicworks/caseboard/internal/spreadsheet"
	"github.com/gin-gonic/gin"
)

func (s *Server) ClaimsDashboard(c *gin.Context) {
	var req claimdomain.DashboardRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.claimSvc.Dashboard(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListClaims(c *gin.Context) {
	var req claimdomain.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.claimSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreateClaim(c *gin.Context) {
	var wire claimdomain.Wire
	if err := c.ShouldBindJSON(&wire); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.claimSvc.Create(c.Request.Context(), wire)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.auditSvc.Record(c.Request.Context(), auditdomain.Entry{
		Action:     "claim.create",
		ObjectType: "claim",
		ObjectID:   resp.ID.String(),
		Metadata:   map[string]interface{}{"claim_no": resp.ClaimNo},
	})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateClaimStatus(c *gin.Context) {
	var req claimdomain.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = strings.TrimSpace(c.Param("id"))

	resp, err := s.claimSvc.UpdateStatus(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.auditSvc.Record(c.Request.Context(), auditdomain.Entry{
		Action:     "claim.update_status",
		ObjectType: "claim",
		ObjectID:   req.ID,
		Metadata:   map[string]interface{}{"record_status": resp.RecordStatus},
	})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) BulkTransitionClaims(c *gin.Context) {
	var req claimdomain.BulkTransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.claimSvc.BulkTransition(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.auditSvc.Record(c.Request.Context(), auditdomain.Entry{
		Action:     "claim.bulk_transition",
		ObjectType: "claim",
		Metadata: map[string]interface{}{
			"action":  req.Action,
			"updated": len(result.Updated),
			"missing": len(result.Missing),
			"errors":  len(result.Errors),
		},
	})

	message := "bulk transition failed"
	if result.FullySuccessful() {
		message = fmt.Sprintf("%d claims updated", len(result.Updated))
	}

	c.JSON(http.StatusOK, gin.H{"message": message, "data": result})
}

func (s *Server) UploadClaimsReport(c *gin.Context) {
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

	result, err := s.claimSvc.Import(c.Request.Context(), fileHeader.Filename, file)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.auditSvc.Record(c.Request.Context(), auditdomain.Entry{
		Action:     "claim.import",
		ObjectType: "claim",
		Metadata: map[string]interface{}{
			"filename":         fileHeader.Filename,
			"uploaded_records": result.UploadedRecords,
		},
	})

	c.JSON(http.StatusOK, gin.H{"data": result})
}

func (s *Server) ExportClaims(c *gin.Context) {
	var req claimdomain.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	format, ok := spreadsheet.ParseFormat(c.Query("format"))
	if !ok {
		AbortWithError(c, newValidationError("format", "invalid_format", "format must be xlsx or csv"))
		return
	}

	// Build the document before touching response headers, so a failed
	// export still comes back as a JSON error and not a broken download.
	var buf bytes.Buffer
	exportReq := claimdomain.ExportRequest{ListRequest: req, Format: format}
	if err := s.claimSvc.Export(c.Request.Context(), exportReq, &buf); err != nil {
		AbortWithError(c, err)
		return
	}

	s.auditSvc.Record(c.Request.Context(), auditdomain.Entry{
		Action:     "claim.export",
		ObjectType: "claim",
		Metadata:   map[string]interface{}{"format": string(format)},
	})

	contentType := "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	if format == spreadsheet.FormatCSV {
		contentType = "text/csv"
	}
	c.Header("Content-Disposition", `attachment; filename="claims.`+string(format)+`"`)
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

func (s *Server) ClaimMetrics(c *gin.Context) {
	var req claimdomain.MetricsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.claimSvc.Metrics(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
