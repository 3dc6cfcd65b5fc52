package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	auditdomain "github.com/civicworks/caseboard/internal/audit/domain"
	authdomain "github.com/civicworks/caseboard/internal/auth/domain"
	"github.com/civicworks/caseboard/internal/casefile"
	claimdomain "github.com/civicworks/caseboard/internal/claim/domain"
	"github.com/civicworks/caseboard/internal/config"
	"github.com/civicworks/caseboard/internal/spreadsheet"
	"github.com/civicworks/caseboard/pkg/db/pagination"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuthService struct{}

func (f *fakeAuthService) Login(context.Context, authdomain.LoginRequest) (authdomain.LoginResponse, error) {
	return authdomain.LoginResponse{}, nil
}

func (f *fakeAuthService) Refresh(context.Context, authdomain.RefreshRequest) (authdomain.LoginResponse, error) {
	return authdomain.LoginResponse{}, nil
}

func (f *fakeAuthService) ChangePassword(context.Context, authdomain.ChangePasswordRequest) error {
	return nil
}

func (f *fakeAuthService) Verify(_ context.Context, token string) (authdomain.Claims, error) {
	if token != "good-token" {
		return authdomain.Claims{}, authdomain.ErrInvalidToken
	}
	return authdomain.Claims{UserID: "42", Username: "tester", Role: casefile.RoleManager}, nil
}

type fakeAuthzService struct {
	err error
}

func (f *fakeAuthzService) Authorize(context.Context, string, string, string) error {
	return f.err
}

type fakeAuditService struct {
	entries []auditdomain.Entry
}

func (f *fakeAuditService) Record(_ context.Context, entry auditdomain.Entry) {
	f.entries = append(f.entries, entry)
}

func (f *fakeAuditService) List(context.Context, auditdomain.ListFilter, pagination.Pagination) (auditdomain.ListResponse, error) {
	return auditdomain.ListResponse{}, nil
}

type fakeClaimService struct {
	bulkResult   casefile.BulkResult
	bulkErr      error
	importResult claimdomain.ImportResult
	importErr    error
	exportBody   string
	exportErr    error
}

func (f *fakeClaimService) Create(context.Context, claimdomain.Wire) (claimdomain.View, error) {
	return claimdomain.View{}, nil
}

func (f *fakeClaimService) List(context.Context, claimdomain.ListRequest) (claimdomain.ListResponse, error) {
	return claimdomain.ListResponse{}, nil
}

func (f *fakeClaimService) GetByID(context.Context, string) (claimdomain.View, error) {
	return claimdomain.View{}, nil
}

func (f *fakeClaimService) UpdateStatus(context.Context, claimdomain.UpdateStatusRequest) (claimdomain.View, error) {
	return claimdomain.View{}, nil
}

func (f *fakeClaimService) BulkTransition(context.Context, claimdomain.BulkTransitionRequest) (casefile.BulkResult, error) {
	return f.bulkResult, f.bulkErr
}

func (f *fakeClaimService) Dashboard(context.Context, claimdomain.DashboardRequest) (claimdomain.DashboardResponse, error) {
	return claimdomain.DashboardResponse{}, nil
}

func (f *fakeClaimService) Metrics(context.Context, claimdomain.MetricsRequest) (claimdomain.Metrics, error) {
	return claimdomain.Metrics{}, nil
}

func (f *fakeClaimService) Import(context.Context, string, io.Reader) (claimdomain.ImportResult, error) {
	return f.importResult, f.importErr
}

func (f *fakeClaimService) Export(_ context.Context, _ claimdomain.ExportRequest, w io.Writer) error {
	if f.exportErr != nil {
		return f.exportErr
	}
	_, err := io.WriteString(w, f.exportBody)
	return err
}

func newTestServer(t *testing.T, claims *fakeClaimService, authzErr error) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	engine := gin.New()
	engine.Use(RequestContext())
	engine.Use(ErrorHandlingMiddleware())

	return NewServer(ServerParams{
		Gin:      engine,
		Cfg:      config.Config{StorageDir: t.TempDir()},
		Authsvc:  &fakeAuthService{},
		AuthzSvc: &fakeAuthzService{err: authzErr},
		AuditSvc: &fakeAuditService{},
		ClaimSvc: claims,
	})
}

func doRequest(srv *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.Engine().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorPayload {
	t.Helper()
	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func TestAPIRequiresBearerToken(t *testing.T) {
	srv := newTestServer(t, &fakeClaimService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/claims/manage-claims", nil)
	rec := doRequest(srv, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", decodeError(t, rec).Type)

	req = httptest.NewRequest(http.MethodGet, "/api/claims/manage-claims", nil)
	req.Header.Set("Authorization", "Bearer stale-token")
	rec = doRequest(srv, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAPIForbiddenRole(t *testing.T) {
	srv := newTestServer(t, &fakeClaimService{}, casefile.ErrRoleNotPermitted)

	req := httptest.NewRequest(http.MethodGet, "/api/claims/manage-claims", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := doRequest(srv, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "forbidden", decodeError(t, rec).Type)
}

func TestBulkTransitionMessage(t *testing.T) {
	claims := &fakeClaimService{
		bulkResult: casefile.BulkResult{
			Updated: []string{"1", "2"},
			Missing: []string{},
			Errors:  []string{},
		},
	}
	srv := newTestServer(t, claims, nil)

	body := strings.NewReader(`{"ids":["1","2"],"action":"review"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/claims/manage-claims", body)
	req.Header.Set("Authorization", "Bearer good-token")
	req.Header.Set("Content-Type", "application/json")

	rec := doRequest(srv, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Message string              `json:"message"`
		Data    casefile.BulkResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "2 claims updated", resp.Message)
	assert.Len(t, resp.Data.Updated, 2)
}

func TestBulkTransitionPartialMessage(t *testing.T) {
	claims := &fakeClaimService{
		bulkResult: casefile.BulkResult{
			Updated: []string{"1"},
			Missing: []string{"77"},
			Errors:  []string{},
		},
	}
	srv := newTestServer(t, claims, nil)

	body := strings.NewReader(`{"ids":["1","77"],"action":"review"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/claims/manage-claims", body)
	req.Header.Set("Authorization", "Bearer good-token")
	req.Header.Set("Content-Type", "application/json")

	rec := doRequest(srv, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "bulk transition failed")
}

func TestUploadMissingFile(t *testing.T) {
	srv := newTestServer(t, &fakeClaimService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/claims/upload-claims-report", nil)
	req.Header.Set("Authorization", "Bearer good-token")

	rec := doRequest(srv, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	payload := decodeError(t, rec)
	assert.Equal(t, "validation_error", payload.Type)
	require.Len(t, payload.Errors, 1)
	assert.Equal(t, "file", payload.Errors[0].Field)
}

func TestExportServesDownloadHeaders(t *testing.T) {
	claims := &fakeClaimService{exportBody: "Claim ID,Employer\nCLM-001,Acme\n"}
	srv := newTestServer(t, claims, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/claims/export?format=csv", nil)
	req.Header.Set("Authorization", "Bearer good-token")

	rec := doRequest(srv, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="claims.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, claims.exportBody, rec.Body.String())
}

func TestExportFailureStaysJSON(t *testing.T) {
	claims := &fakeClaimService{exportErr: claimdomain.ErrInvalidPeriod}
	srv := newTestServer(t, claims, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/claims/export?format=csv&period=June+2025", nil)
	req.Header.Set("Authorization", "Bearer good-token")

	rec := doRequest(srv, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
	assert.Empty(t, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "validation_error", decodeError(t, rec).Type)
}

func TestUploadRejectedBatchPayload(t *testing.T) {
	claims := &fakeClaimService{
		importErr: &claimdomain.ImportError{
			Errors: []spreadsheet.RowError{
				{Row: 3, Column: "Claimant", Message: "required"},
				{Row: 5, Column: "Amount Requested", Message: "not a number", Value: "abc"},
			},
		},
	}
	srv := newTestServer(t, claims, nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "claims.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("Claim ID,Employer\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/claims/upload-claims-report", &buf)
	req.Header.Set("Authorization", "Bearer good-token")
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := doRequest(srv, req)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	payload := decodeError(t, rec)
	assert.Equal(t, "import_validation_failed", payload.Type)
	require.Len(t, payload.Rows, 2)
	assert.Equal(t, 3, payload.Rows[0].Row)
	assert.Equal(t, 5, payload.Rows[1].Row)
}
