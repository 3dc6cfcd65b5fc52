package service

import (
	"context"

	claimdomain "github.com/civicworks/caseboard/internal/claim/domain"
	compliancedomain "github.com/civicworks/caseboard/internal/compliance/domain"
	"github.com/civicworks/caseboard/internal/dashboard/domain"
	inspectiondomain "github.com/civicworks/caseboard/internal/inspection/domain"
	legalcasedomain "github.com/civicworks/caseboard/internal/legalcase/domain"
	"github.com/civicworks/caseboard/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log         *zap.Logger
	Claims      claimdomain.Service
	Compliance  compliancedomain.Service
	Inspections inspectiondomain.Service
	LegalCases  legalcasedomain.Service
}

type Service struct {
	log         *zap.Logger
	claims      claimdomain.Service
	compliance  compliancedomain.Service
	inspections inspectiondomain.Service
	legalCases  legalcasedomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		log:         p.Log.Named("dashboard.service"),
		claims:      p.Claims,
		compliance:  p.Compliance,
		inspections: p.Inspections,
		legalCases:  p.LegalCases,
	}
}

// countPage asks a list endpoint for one row just to read the total.
var countPage = pagination.Pagination{Page: 1, PerPage: 1}

func (s *Service) Summary(ctx context.Context, req domain.SummaryRequest) (domain.Summary, error) {
	claimMetrics, err := s.claims.Metrics(ctx, claimdomain.MetricsRequest{
		RegionID: req.RegionID,
		Period:   req.Period,
	})
	if err != nil {
		return domain.Summary{}, err
	}

	complianceSummary, err := s.compliance.Summary(ctx, compliancedomain.ListRequest{
		RegionID: req.RegionID,
		Period:   req.Period,
	})
	if err != nil {
		return domain.Summary{}, err
	}

	inspections, err := s.inspections.List(ctx, inspectiondomain.ListRequest{
		RegionID: req.RegionID,
		Page:     countPage,
	})
	if err != nil {
		return domain.Summary{}, err
	}

	legalCases, err := s.legalCases.List(ctx, legalcasedomain.ListRequest{
		RegionID: req.RegionID,
		Page:     countPage,
	})
	if err != nil {
		return domain.Summary{}, err
	}

	return domain.Summary{
		Claims:      claimMetrics,
		Compliance:  complianceSummary,
		Inspections: inspections.TotalCount,
		LegalCases:  legalCases.TotalCount,
	}, nil
}

func (s *Service) Compliance(ctx context.Context, req domain.SummaryRequest) (compliancedomain.Summary, error) {
	return s.compliance.Summary(ctx, compliancedomain.ListRequest{
		RegionID: req.RegionID,
		Period:   req.Period,
	})
}
