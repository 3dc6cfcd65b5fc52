package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/civicworks/caseboard/internal/casefile"
	"github.com/civicworks/caseboard/internal/compliance/domain"
	"github.com/civicworks/caseboard/internal/identity"
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
		log:   p.Log.Named("compliance.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, wire domain.Wire) (domain.View, error) {
	entry := wire.Normalize()
	if entry.EmployerNo == "" || entry.EmployerName == "" {
		return domain.View{}, domain.ErrInvalidEmployer
	}
	if entry.Period != "" && !casefile.ValidPeriod(entry.Period) {
		return domain.View{}, domain.ErrInvalidPeriod
	}

	if ident, ok := identity.FromContext(ctx); ok {
		entry.CreatedBy = ident.UserID
		if ident.RegionID != 0 {
			entry.RegionID = ident.RegionID
		}
	}

	now := time.Now().UTC()
	entry.ID = s.genID.Generate()
	entry.CreatedAt = now
	entry.UpdatedAt = now

	if err := s.repo.Insert(ctx, s.db, &entry); err != nil {
		return domain.View{}, err
	}

	s.log.Info("compliance entry created",
		zap.String("employer_no", entry.EmployerNo),
		zap.String("period", entry.Period),
	)
	return entry.View(), nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (domain.View, error) {
	id, err := parseID(req.ID)
	if err != nil {
		return domain.View{}, err
	}

	entry, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.View{}, err
	}
	if entry == nil {
		return domain.View{}, domain.ErrNotFound
	}

	patch := req.Wire.Normalize()
	if patch.EmployerNo != "" {
		entry.EmployerNo = patch.EmployerNo
	}
	if patch.EmployerName != "" {
		entry.EmployerName = patch.EmployerName
	}
	if req.Wire.AmountBilled != nil {
		entry.AmountBilled = patch.AmountBilled
	}
	if req.Wire.AmountCollected != nil {
		entry.AmountCollected = patch.AmountCollected
	}
	if req.Wire.DebtEstablished != nil {
		entry.DebtEstablished = patch.DebtEstablished
	}
	if req.Wire.DebtRecovered != nil {
		entry.DebtRecovered = patch.DebtRecovered
	}
	if patch.Period != "" {
		if !casefile.ValidPeriod(patch.Period) {
			return domain.View{}, domain.ErrInvalidPeriod
		}
		entry.Period = patch.Period
	}

	entry.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, entry); err != nil {
		return domain.View{}, err
	}
	return entry.View(), nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (domain.ListResponse, error) {
	filter, err := s.resolveFilter(ctx, req)
	if err != nil {
		return domain.ListResponse{}, err
	}

	page := req.Page.Normalize()
	entries, total, err := s.repo.List(ctx, s.db, filter, page)
	if err != nil {
		return domain.ListResponse{}, err
	}

	views := make([]domain.View, 0, len(entries))
	for _, entry := range entries {
		views = append(views, entry.View())
	}

	return domain.ListResponse{
		PageInfo: pagination.BuildPageInfo(page, total),
		Entries:  views,
	}, nil
}

func (s *Service) Summary(ctx context.Context, req domain.ListRequest) (domain.Summary, error) {
	filter, err := s.resolveFilter(ctx, req)
	if err != nil {
		return domain.Summary{}, err
	}
	return s.repo.Aggregate(ctx, s.db, filter)
}

func (s *Service) resolveFilter(ctx context.Context, req domain.ListRequest) (domain.ListFilter, error) {
	filter := domain.ListFilter{
		Search: strings.TrimSpace(req.Search),
	}

	for _, period := range []struct {
		raw  string
		dest *string
	}{
		{req.Period, &filter.Period},
		{req.PeriodFrom, &filter.PeriodFrom},
		{req.PeriodTo, &filter.PeriodTo},
	} {
		value := resolveSentinel(period.raw)
		if value == "" {
			continue
		}
		if !casefile.ValidPeriod(value) {
			return domain.ListFilter{}, domain.ErrInvalidPeriod
		}
		*period.dest = value
	}

	if raw := resolveSentinel(req.RegionID); raw != "" {
		id, err := parseID(raw)
		if err != nil {
			return domain.ListFilter{}, err
		}
		filter.RegionID = id
	}
	if raw := resolveSentinel(req.BranchID); raw != "" {
		id, err := parseID(raw)
		if err != nil {
			return domain.ListFilter{}, err
		}
		filter.BranchID = id
	}

	if ident, ok := identity.FromContext(ctx); ok && ident.RegionID != 0 && strings.EqualFold(ident.Role, casefile.RoleRegional) {
		filter.RegionID = ident.RegionID
	}

	return filter, nil
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
