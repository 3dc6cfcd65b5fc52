package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/civicworks/caseboard/internal/casefile"
	"github.com/civicworks/caseboard/internal/identity"
	"github.com/civicworks/caseboard/internal/inspection/domain"
	"github.com/civicworks/caseboard/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("inspection.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, wire domain.Wire) (domain.InspectionRecord, error) {
	record := wire.Normalize()
	if record.EmployerNo == "" || record.EmployerName == "" {
		return domain.InspectionRecord{}, domain.ErrInvalidEmployer
	}
	if record.InspectionType == "" {
		return domain.InspectionRecord{}, domain.ErrInvalidType
	}

	if ident, ok := identity.FromContext(ctx); ok {
		record.CreatedBy = ident.UserID
		if ident.RegionID != 0 {
			record.RegionID = ident.RegionID
		}
	}

	now := time.Now().UTC()
	record.ID = s.genID.Generate()
	record.CreatedAt = now
	record.UpdatedAt = now

	if err := s.repo.Insert(ctx, s.db, &record); err != nil {
		return domain.InspectionRecord{}, err
	}

	s.log.Info("inspection recorded",
		zap.String("employer_no", record.EmployerNo),
		zap.String("inspection_type", record.InspectionType),
	)
	return record, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (domain.InspectionRecord, error) {
	id, err := parseID(req.ID)
	if err != nil {
		return domain.InspectionRecord{}, err
	}

	record, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.InspectionRecord{}, err
	}
	if record == nil {
		return domain.InspectionRecord{}, domain.ErrNotFound
	}

	patch := req.Wire.Normalize()
	if patch.EmployerNo != "" {
		record.EmployerNo = patch.EmployerNo
	}
	if patch.EmployerName != "" {
		record.EmployerName = patch.EmployerName
	}
	if patch.InspectionType != "" {
		record.InspectionType = patch.InspectionType
	}
	if patch.Findings != "" {
		record.Findings = patch.Findings
	}
	if req.Wire.EmployeesCovered != nil {
		record.EmployeesCovered = patch.EmployeesCovered
	}
	if patch.DateInspected != nil {
		record.DateInspected = patch.DateInspected
	}

	record.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, record); err != nil {
		return domain.InspectionRecord{}, err
	}
	return *record, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (domain.ListResponse, error) {
	filter := domain.ListFilter{
		InspectionType: resolveSentinel(req.InspectionType),
		Search:         strings.TrimSpace(req.Search),
	}

	if raw := resolveSentinel(req.RegionID); raw != "" {
		id, err := parseID(raw)
		if err != nil {
			return domain.ListResponse{}, err
		}
		filter.RegionID = id
	}
	if raw := resolveSentinel(req.BranchID); raw != "" {
		id, err := parseID(raw)
		if err != nil {
			return domain.ListResponse{}, err
		}
		filter.BranchID = id
	}

	if ident, ok := identity.FromContext(ctx); ok && ident.RegionID != 0 && strings.EqualFold(ident.Role, casefile.RoleRegional) {
		filter.RegionID = ident.RegionID
	}

	page := req.Page.Normalize()
	records, total, err := s.repo.List(ctx, s.db, filter, page)
	if err != nil {
		return domain.ListResponse{}, err
	}

	return domain.ListResponse{
		PageInfo: pagination.BuildPageInfo(page, total),
		Records:  records,
	}, nil
}

func resolveSentinel(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if strings.EqualFold(trimmed, "all") {
		return ""
	}
	return trimmed
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
