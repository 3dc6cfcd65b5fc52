package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/civicworks/caseboard/internal/casefile"
	"github.com/civicworks/caseboard/internal/identity"
	"github.com/civicworks/caseboard/internal/legalcase/domain"
	"github.com/civicworks/caseboard/internal/observability/metrics"
	"github.com/civicworks/caseboard/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Repo    domain.Repository
	Metrics *metrics.Metrics
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	repo    domain.Repository
	metrics *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("legalcase.service"),
		genID:   p.GenID,
		repo:    p.Repo,
		metrics: p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, wire domain.Wire) (domain.LegalCase, error) {
	legalCase := wire.Normalize()
	if legalCase.CaseNo == "" {
		return domain.LegalCase{}, domain.ErrInvalidCaseNo
	}
	if legalCase.Plaintiff == "" || legalCase.Defendant == "" {
		return domain.LegalCase{}, domain.ErrInvalidParty
	}

	existing, err := s.repo.FindByCaseNo(ctx, s.db, legalCase.CaseNo)
	if err != nil {
		return domain.LegalCase{}, err
	}
	if existing != nil {
		return domain.LegalCase{}, domain.ErrCaseExists
	}

	if ident, ok := identity.FromContext(ctx); ok {
		legalCase.CreatedBy = ident.UserID
		if ident.RegionID != 0 {
			legalCase.RegionID = ident.RegionID
		}
	}

	now := time.Now().UTC()
	legalCase.ID = s.genID.Generate()
	legalCase.CreatedAt = now
	legalCase.UpdatedAt = now

	if err := s.repo.Insert(ctx, s.db, &legalCase); err != nil {
		return domain.LegalCase{}, err
	}

	s.log.Info("legal case filed",
		zap.String("case_no", legalCase.CaseNo),
		zap.String("case_type", legalCase.CaseType),
	)
	return legalCase, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (domain.ListResponse, error) {
	filter := domain.ListFilter{
		RecordStatus: resolveSentinel(req.RecordStatus),
		CaseType:     resolveSentinel(req.CaseType),
		Search:       strings.TrimSpace(req.Search),
	}

	if raw := resolveSentinel(req.RegionID); raw != "" {
		id, err := parseID(raw)
		if err != nil {
			return domain.ListResponse{}, err
		}
		filter.RegionID = id
	}

	if ident, ok := identity.FromContext(ctx); ok && ident.RegionID != 0 && strings.EqualFold(ident.Role, casefile.RoleRegional) {
		filter.RegionID = ident.RegionID
	}

	page := req.Page.Normalize()
	cases, total, err := s.repo.List(ctx, s.db, filter, page)
	if err != nil {
		return domain.ListResponse{}, err
	}

	return domain.ListResponse{
		PageInfo: pagination.BuildPageInfo(page, total),
		Cases:    cases,
	}, nil
}

func (s *Service) UpdateStatus(ctx context.Context, req domain.UpdateStatusRequest) (domain.LegalCase, error) {
	id, err := parseID(req.ID)
	if err != nil {
		return domain.LegalCase{}, err
	}

	target, ok := casefile.ParseStatus(req.RecordStatus)
	if !ok {
		return domain.LegalCase{}, casefile.ErrInvalidStatus
	}
	action, err := casefile.ActionFor(target)
	if err != nil {
		return domain.LegalCase{}, err
	}

	legalCase, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.LegalCase{}, err
	}
	if legalCase == nil {
		return domain.LegalCase{}, domain.ErrNotFound
	}

	role := ""
	if ident, ok := identity.FromContext(ctx); ok {
		role = ident.Role
	}

	next, err := casefile.Authorize(role, casefile.Status(legalCase.RecordStatus), action)
	if err != nil {
		return domain.LegalCase{}, err
	}

	legalCase.RecordStatus = string(next)
	legalCase.UpdatedAt = time.Now().UTC()
	if err := s.repo.UpdateStatus(ctx, s.db, legalCase); err != nil {
		return domain.LegalCase{}, err
	}
	return *legalCase, nil
}

func (s *Service) BulkTransition(ctx context.Context, req domain.BulkTransitionRequest) (casefile.BulkResult, error) {
	result := casefile.NewBulkResult()

	if len(req.IDs) == 0 {
		return result, casefile.ErrEmptySelection
	}

	action, ok := casefile.ParseAction(req.Action)
	if !ok {
		return result, casefile.ErrInvalidAction
	}

	role := ""
	if ident, ok := identity.FromContext(ctx); ok {
		role = ident.Role
	}
	if !casefile.RoleCanPerform(role, action) {
		return result, casefile.ErrRoleNotPermitted
	}

	ids := make([]snowflake.ID, 0, len(req.IDs))
	for _, raw := range req.IDs {
		id, err := parseID(raw)
		if err != nil {
			result.Errors = append(result.Errors, raw)
			continue
		}
		ids = append(ids, id)
	}

	cases, err := s.repo.FindByIDs(ctx, s.db, ids)
	if err != nil {
		return result, err
	}

	found := make(map[snowflake.ID]*domain.LegalCase, len(cases))
	for i := range cases {
		found[cases[i].ID] = &cases[i]
	}

	now := time.Now().UTC()
	for _, id := range ids {
		legalCase, ok := found[id]
		if !ok {
			result.Missing = append(result.Missing, id.String())
			continue
		}

		next, err := casefile.Transition(casefile.Status(legalCase.RecordStatus), action)
		if err != nil {
			result.Errors = append(result.Errors, id.String())
			continue
		}

		legalCase.RecordStatus = string(next)
		legalCase.UpdatedAt = now
		if err := s.repo.UpdateStatus(ctx, s.db, legalCase); err != nil {
			s.log.Warn("bulk transition write failed",
				zap.String("case_id", id.String()),
				zap.Error(err),
			)
			result.Errors = append(result.Errors, id.String())
			continue
		}
		result.Updated = append(result.Updated, id.String())
	}

	outcome := "partial"
	if result.FullySuccessful() {
		outcome = "success"
	}
	s.metrics.RecordBulkTransition(ctx, "legal_case", string(action), outcome)

	return result, nil
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
