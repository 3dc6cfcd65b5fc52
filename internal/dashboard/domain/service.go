package domain

import (
	"context"

	claimdomain "github.com/civicworks/caseboard/internal/claim/domain"
	compliancedomain "github.com/civicworks/caseboard/internal/compliance/domain"
)

type SummaryRequest struct {
	RegionID string `form:"region_id"`
	Period   string `form:"period"`
}

// Summary is the cross-module block on the landing dashboard.
type Summary struct {
	Claims      claimdomain.Metrics      `json:"claims"`
	Compliance  compliancedomain.Summary `json:"compliance"`
	Inspections int64                    `json:"inspections"`
	LegalCases  int64                    `json:"legal_cases"`
}

type Service interface {
	Summary(ctx context.Context, req SummaryRequest) (Summary, error)
	Compliance(ctx context.Context, req SummaryRequest) (compliancedomain.Summary, error)
}
