package domain

import (
	"context"
	"errors"
	"io"

	"github.com/civicworks/caseboard/internal/casefile"
	"github.com/civicworks/caseboard/internal/spreadsheet"
	"github.com/civicworks/caseboard/pkg/db/pagination"
)

type ListRequest struct {
	RecordStatus string `form:"record_status"`
	ClaimType    string `form:"claim_type"`
	RegionID     string `form:"region_id"`
	BranchID     string `form:"branch_id"`
	Period       string `form:"period"`
	PeriodFrom   string `form:"period_from"`
	PeriodTo     string `form:"period_to"`
	Search       string `form:"search"`

	Page pagination.Pagination
}

type ListResponse struct {
	pagination.PageInfo
	Claims []View `json:"claims"`
}

type UpdateStatusRequest struct {
	ID           string `json:"-"`
	RecordStatus string `json:"record_status"`
}

type BulkTransitionRequest struct {
	IDs    []string `json:"ids"`
	Action string   `json:"action"`
}

// Metrics is the aggregate block on the claims dashboard.
type Metrics struct {
	TotalClaims       int64   `json:"total_claims"`
	PendingClaims     int64   `json:"pending_claims"`
	ReviewedClaims    int64   `json:"reviewed_claims"`
	ApprovedClaims    int64   `json:"approved_claims"`
	TotalRequested    float64 `json:"total_requested"`
	TotalPaid         float64 `json:"total_paid"`
	AvgProcessingDays float64 `json:"avg_processing_days"`
}

// SeriesPoint is one month on the dashboard chart.
type SeriesPoint struct {
	Period     string  `json:"period"`
	Count      int64   `json:"count"`
	AmountPaid float64 `json:"amount_paid"`
}

type DashboardRequest struct {
	// ClaimID switches the endpoint into single-record detail mode when
	// present.
	ClaimID  string `form:"claim_id"`
	RegionID string `form:"region_id"`
	Period   string `form:"period"`

	Page pagination.Pagination
}

type DashboardResponse struct {
	pagination.PageInfo
	Claims  []View        `json:"claims"`
	Metrics Metrics       `json:"metrics"`
	Series  []SeriesPoint `json:"series"`
}

type MetricsRequest struct {
	RegionID string `form:"region_id"`
	Period   string `form:"period"`
}

type ImportResult struct {
	BatchRef        string `json:"batch_ref"`
	UploadedRecords int    `json:"uploaded_records"`
	Region          string `json:"region"`
}

// ImportError carries the exhaustive row error list for a rejected
// batch.
type ImportError struct {
	Errors []spreadsheet.RowError `json:"errors"`
}

func (e *ImportError) Error() string { return "import_validation_failed" }

type ExportRequest struct {
	ListRequest
	Format spreadsheet.Format
}

type Service interface {
	Create(ctx context.Context, wire Wire) (View, error)
	List(ctx context.Context, req ListRequest) (ListResponse, error)
	GetByID(ctx context.Context, id string) (View, error)
	UpdateStatus(ctx context.Context, req UpdateStatusRequest) (View, error)
	BulkTransition(ctx context.Context, req BulkTransitionRequest) (casefile.BulkResult, error)
	Dashboard(ctx context.Context, req DashboardRequest) (DashboardResponse, error)
	Metrics(ctx context.Context, req MetricsRequest) (Metrics, error)
	Import(ctx context.Context, filename string, content io.Reader) (ImportResult, error)
	Export(ctx context.Context, req ExportRequest, w io.Writer) error
}

var (
	ErrInvalidID      = errors.New("invalid_id")
	ErrInvalidClaimNo = errors.New("invalid_claim_no")
	ErrInvalidPeriod  = errors.New("invalid_period")
	ErrNotFound       = errors.New("not_found")
	ErrClaimExists    = errors.New("claim_exists")
	ErrNoRegion       = errors.New("no_region_assigned")
)
