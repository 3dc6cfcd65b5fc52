package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/civicworks/caseboard/internal/casefile"
	"github.com/civicworks/caseboard/internal/claim/domain"
	"github.com/civicworks/caseboard/internal/config"
	"github.com/civicworks/caseboard/internal/identity"
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
	Policy  *config.ImportPolicyHolder
	Metrics *metrics.Metrics
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	repo    domain.Repository
	policy  *config.ImportPolicyHolder
	metrics *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("claim.service"),
		genID:   p.GenID,
		repo:    p.Repo,
		policy:  p.Policy,
		metrics: p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, wire domain.Wire) (domain.View, error) {
	claim := wire.Normalize()
	if claim.ClaimNo == "" {
		return domain.View{}, domain.ErrInvalidClaimNo
	}

	existing, err := s.repo.FindByClaimNo(ctx, s.db, claim.ClaimNo)
	if err != nil {
		return domain.View{}, err
	}
	if existing != nil {
		return domain.View{}, domain.ErrClaimExists
	}

	if ident, ok := identity.FromContext(ctx); ok {
		claim.CreatedBy = ident.UserID
		// Region users can only file claims into their own region.
		if ident.RegionID != 0 {
			claim.RegionID = ident.RegionID
		}
	}

	now := time.Now().UTC()
	claim.ID = s.genID.Generate()
	claim.CreatedAt = now
	claim.UpdatedAt = now

	if err := s.repo.Insert(ctx, s.db, &claim); err != nil {
		return domain.View{}, err
	}

	s.log.Info("claim created",
		zap.String("claim_no", claim.ClaimNo),
		zap.String("record_status", claim.RecordStatus),
	)
	return claim.View(), nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (domain.ListResponse, error) {
	filter, err := s.resolveFilter(ctx, req)
	if err != nil {
		return domain.ListResponse{}, err
	}

	page := req.Page.Normalize()
	claims, total, err := s.repo.List(ctx, s.db, filter, page)
	if err != nil {
		return domain.ListResponse{}, err
	}

	return domain.ListResponse{
		PageInfo: pagination.BuildPageInfo(page, total),
		Claims:   views(claims),
	}, nil
}

func (s *Service) GetByID(ctx context.Context, rawID string) (domain.View, error) {
	id, err := parseID(rawID)
	if err != nil {
		return domain.View{}, err
	}

	claim, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.View{}, err
	}
	if claim == nil {
		return domain.View{}, domain.ErrNotFound
	}
	if !s.regionVisible(ctx, claim.RegionID) {
		return domain.View{}, domain.ErrNotFound
	}
	return claim.View(), nil
}

// UpdateStatus moves one claim through the review lifecycle. The wire
// carries a target status; the transition that produces it is derived
// and authorized against the caller's role.
func (s *Service) UpdateStatus(ctx context.Context, req domain.UpdateStatusRequest) (domain.View, error) {
	id, err := parseID(req.ID)
	if err != nil {
		return domain.View{}, err
	}

	target, ok := casefile.ParseStatus(req.RecordStatus)
	if !ok {
		return domain.View{}, casefile.ErrInvalidStatus
	}
	action, err := casefile.ActionFor(target)
	if err != nil {
		return domain.View{}, err
	}

	claim, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.View{}, err
	}
	if claim == nil {
		return domain.View{}, domain.ErrNotFound
	}
	if !s.regionVisible(ctx, claim.RegionID) {
		return domain.View{}, domain.ErrNotFound
	}

	role := ""
	if ident, ok := identity.FromContext(ctx); ok {
		role = ident.Role
	}

	next, err := casefile.Authorize(role, casefile.Status(claim.RecordStatus), action)
	if err != nil {
		return domain.View{}, err
	}

	claim.RecordStatus = string(next)
	claim.UpdatedAt = time.Now().UTC()
	if err := s.repo.UpdateStatus(ctx, s.db, claim); err != nil {
		return domain.View{}, err
	}

	s.log.Info("claim status updated",
		zap.String("claim_no", claim.ClaimNo),
		zap.String("record_status", claim.RecordStatus),
	)
	return claim.View(), nil
}

// BulkTransition applies one action to many claims. Every requested id
// lands in exactly one of updated, missing, or errors; callers treat
// the batch as successful only when missing and errors are empty and
// at least one record was updated.
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

	claims, err := s.repo.FindByIDs(ctx, s.db, ids)
	if err != nil {
		return result, err
	}

	found := make(map[snowflake.ID]*domain.Claim, len(claims))
	for i := range claims {
		found[claims[i].ID] = &claims[i]
	}

	now := time.Now().UTC()
	for _, id := range ids {
		claim, ok := found[id]
		if !ok {
			result.Missing = append(result.Missing, id.String())
			continue
		}
		if !s.regionVisible(ctx, claim.RegionID) {
			result.Errors = append(result.Errors, id.String())
			continue
		}

		next, err := casefile.Transition(casefile.Status(claim.RecordStatus), action)
		if err != nil {
			result.Errors = append(result.Errors, id.String())
			continue
		}

		claim.RecordStatus = string(next)
		claim.UpdatedAt = now
		if err := s.repo.UpdateStatus(ctx, s.db, claim); err != nil {
			s.log.Warn("bulk transition write failed",
				zap.String("claim_id", id.String()),
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
	s.metrics.RecordBulkTransition(ctx, "claim", string(action), outcome)

	s.log.Info("bulk transition finished",
		zap.String("action", string(action)),
		zap.Int("updated", len(result.Updated)),
		zap.Int("missing", len(result.Missing)),
		zap.Int("errors", len(result.Errors)),
	)
	return result, nil
}

// Dashboard serves both the paginated overview and, when a claim_id is
// supplied, single-claim detail. The two modes share one route and are
// disambiguated by parameter presence.
func (s *Service) Dashboard(ctx context.Context, req domain.DashboardRequest) (domain.DashboardResponse, error) {
	if strings.TrimSpace(req.ClaimID) != "" {
		view, err := s.GetByID(ctx, req.ClaimID)
		if err != nil {
			return domain.DashboardResponse{}, err
		}
		return domain.DashboardResponse{
			PageInfo: pagination.SinglePage(1),
			Claims:   []domain.View{view},
		}, nil
	}

	filter, err := s.resolveFilter(ctx, domain.ListRequest{
		RegionID: req.RegionID,
		Period:   req.Period,
	})
	if err != nil {
		return domain.DashboardResponse{}, err
	}

	page := req.Page.Normalize()
	claims, total, err := s.repo.List(ctx, s.db, filter, page)
	if err != nil {
		return domain.DashboardResponse{}, err
	}

	aggregates, err := s.repo.Aggregate(ctx, s.db, filter)
	if err != nil {
		return domain.DashboardResponse{}, err
	}

	series, err := s.repo.MonthlySeries(ctx, s.db, filter)
	if err != nil {
		return domain.DashboardResponse{}, err
	}

	return domain.DashboardResponse{
		PageInfo: pagination.BuildPageInfo(page, total),
		Claims:   views(claims),
		Metrics:  aggregates,
		Series:   series,
	}, nil
}

func (s *Service) Metrics(ctx context.Context, req domain.MetricsRequest) (domain.Metrics, error) {
	filter, err := s.resolveFilter(ctx, domain.ListRequest{
		RegionID: req.RegionID,
		Period:   req.Period,
	})
	if err != nil {
		return domain.Metrics{}, err
	}
	return s.repo.Aggregate(ctx, s.db, filter)
}

// resolveFilter maps wire query params to a repository filter. Sentinel
// values ("all" or empty) disable a dimension; regional users are
// always pinned to their own region regardless of what they ask for.
func (s *Service) resolveFilter(ctx context.Context, req domain.ListRequest) (domain.ListFilter, error) {
	filter := domain.ListFilter{
		RecordStatus: resolveSentinel(req.RecordStatus),
		ClaimType:    resolveSentinel(req.ClaimType),
		Search:       strings.TrimSpace(req.Search),
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

// regionVisible gates record access for regional users.
func (s *Service) regionVisible(ctx context.Context, recordRegion snowflake.ID) bool {
	ident, ok := identity.FromContext(ctx)
	if !ok {
		return true
	}
	if !strings.EqualFold(ident.Role, casefile.RoleRegional) || ident.RegionID == 0 {
		return true
	}
	return recordRegion == ident.RegionID
}

func views(claims []domain.Claim) []domain.View {
	out := make([]domain.View, 0, len(claims))
	for _, claim := range claims {
		out = append(out, claim.View())
	}
	return out
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
