package server

import (
	"errors"
	"net/http"
	"strings"

	auditdomain "github.com/civicworks/caseboard/internal/audit/domain"
	authdomain "github.com/civicworks/caseboard/internal/auth/domain"
	"github.com/civicworks/caseboard/internal/authz"
	"github.com/civicworks/caseboard/internal/casefile"
	claimdomain "github.com/civicworks/caseboard/internal/claim/domain"
	compliancedomain "github.com/civicworks/caseboard/internal/compliance/domain"
	"github.com/civicworks/caseboard/internal/identity"
	inspectiondomain "github.com/civicworks/caseboard/internal/inspection/domain"
	legaldomain "github.com/civicworks/caseboard/internal/legalcase/domain"
	regiondomain "github.com/civicworks/caseboard/internal/region/domain"
	"github.com/civicworks/caseboard/internal/spreadsheet"
	userdomain "github.com/civicworks/caseboard/internal/user/domain"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string                 `json:"type"`
	Message string                 `json:"message"`
	Errors  []ValidationError      `json:"errors,omitempty"`
	Rows    []spreadsheet.RowError `json:"rows,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict")
	ErrInternal           = errors.New("internal_error")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrTooManyRequests    = errors.New("too_many_requests")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if impErr := asImportError(err); impErr != nil {
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "import_validation_failed",
			Message: "import rejected, no rows were saved",
			Rows:    impErr.Errors,
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, authdomain.ErrInvalidCredentials),
		errors.Is(err, authdomain.ErrInvalidToken),
		errors.Is(err, authdomain.ErrTokenExpired),
		errors.Is(err, authdomain.ErrUserDisabled):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden),
		errors.Is(err, authz.ErrForbidden),
		errors.Is(err, casefile.ErrRoleNotPermitted):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case errors.Is(err, ErrConflict),
		errors.Is(err, userdomain.ErrUserExists),
		errors.Is(err, claimdomain.ErrClaimExists),
		errors.Is(err, legaldomain.ErrCaseExists),
		errors.Is(err, regiondomain.ErrRegionExists),
		errors.Is(err, regiondomain.ErrBranchExists),
		errors.Is(err, regiondomain.ErrRegionInUse),
		errors.Is(err, regiondomain.ErrBranchInUse):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "conflict",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, ErrTooManyRequests):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "too_many_requests",
			Message: "too many requests",
		}
	case errors.Is(err, ErrServiceUnavailable):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

// classifyErrorForLog feeds the request logger so access logs carry the
// same taxonomy the JSON payloads use.
func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	if status >= http.StatusInternalServerError {
		return "server_error", payload.Type
	}
	return "client_error", payload.Type
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func asImportError(err error) *claimdomain.ImportError {
	var impErr *claimdomain.ImportError
	if errors.As(err, &impErr) && impErr != nil {
		return impErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, identity.ErrInvalidUserID),
		errors.Is(err, casefile.ErrInvalidStatus),
		errors.Is(err, casefile.ErrInvalidAction),
		errors.Is(err, casefile.ErrTransitionNotAllowed),
		errors.Is(err, casefile.ErrEmptySelection),
		errors.Is(err, authdomain.ErrWeakPassword),
		errors.Is(err, spreadsheet.ErrEmptyFile),
		errors.Is(err, spreadsheet.ErrMissingHeader),
		errors.Is(err, spreadsheet.ErrUnsupportedFormat),
		errors.Is(err, spreadsheet.ErrTooManyRows),
		errors.Is(err, auditdomain.ErrInvalidFilter):
		return true
	case isClaimValidationError(err),
		isComplianceValidationError(err),
		isInspectionValidationError(err),
		isLegalCaseValidationError(err),
		isRegionValidationError(err),
		isUserValidationError(err):
		return true
	default:
		return false
	}
}

func isClaimValidationError(err error) bool {
	switch err {
	case claimdomain.ErrInvalidID,
		claimdomain.ErrInvalidClaimNo,
		claimdomain.ErrInvalidPeriod,
		claimdomain.ErrNoRegion:
		return true
	default:
		return false
	}
}

func isComplianceValidationError(err error) bool {
	switch err {
	case compliancedomain.ErrInvalidID,
		compliancedomain.ErrInvalidEmployer,
		compliancedomain.ErrInvalidPeriod:
		return true
	default:
		return false
	}
}

func isInspectionValidationError(err error) bool {
	switch err {
	case inspectiondomain.ErrInvalidID,
		inspectiondomain.ErrInvalidEmployer,
		inspectiondomain.ErrInvalidType:
		return true
	default:
		return false
	}
}

func isLegalCaseValidationError(err error) bool {
	switch err {
	case legaldomain.ErrInvalidID,
		legaldomain.ErrInvalidCaseNo,
		legaldomain.ErrInvalidParty:
		return true
	default:
		return false
	}
}

func isRegionValidationError(err error) bool {
	switch err {
	case regiondomain.ErrInvalidName,
		regiondomain.ErrInvalidID,
		regiondomain.ErrInvalidRegion,
		regiondomain.ErrRegionMismatch:
		return true
	default:
		return false
	}
}

func isUserValidationError(err error) bool {
	switch err {
	case userdomain.ErrInvalidUsername,
		userdomain.ErrInvalidEmail,
		userdomain.ErrInvalidPassword,
		userdomain.ErrInvalidRole,
		userdomain.ErrInvalidID,
		userdomain.ErrInvalidPicture:
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, claimdomain.ErrNotFound),
		errors.Is(err, compliancedomain.ErrNotFound),
		errors.Is(err, inspectiondomain.ErrNotFound),
		errors.Is(err, legaldomain.ErrNotFound),
		errors.Is(err, regiondomain.ErrNotFound),
		errors.Is(err, userdomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	default:
		return err.Error()
	}
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	default:
		return "invalid value"
	}
}
