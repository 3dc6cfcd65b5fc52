package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/civicworks/caseboard/internal/region/domain"
	"github.com/gosimple/slug"
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
		log:   p.Log.Named("region.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) CreateRegion(ctx context.Context, req domain.CreateRegionRequest) (domain.Region, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Region{}, domain.ErrInvalidName
	}

	now := time.Now().UTC()
	region := domain.Region{
		ID:        s.genID.Generate(),
		Code:      slug.Make(name),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.InsertRegion(ctx, s.db, &region); err != nil {
		return domain.Region{}, err
	}
	return region, nil
}

func (s *Service) UpdateRegion(ctx context.Context, req domain.UpdateRegionRequest) (domain.Region, error) {
	id, err := parseID(req.ID)
	if err != nil {
		return domain.Region{}, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Region{}, domain.ErrInvalidName
	}

	region, err := s.repo.FindRegionByID(ctx, s.db, id)
	if err != nil {
		return domain.Region{}, err
	}
	if region == nil {
		return domain.Region{}, domain.ErrNotFound
	}

	region.Name = name
	region.Code = slug.Make(name)
	region.UpdatedAt = time.Now().UTC()
	if err := s.repo.UpdateRegion(ctx, s.db, region); err != nil {
		return domain.Region{}, err
	}
	return *region, nil
}

func (s *Service) ListRegions(ctx context.Context) ([]domain.Region, error) {
	return s.repo.ListRegions(ctx, s.db)
}

func (s *Service) DeleteRegion(ctx context.Context, rawID string) error {
	id, err := parseID(rawID)
	if err != nil {
		return err
	}

	region, err := s.repo.FindRegionByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if region == nil {
		return domain.ErrNotFound
	}

	count, err := s.repo.RegionReferenceCount(ctx, s.db, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return domain.ErrRegionInUse
	}

	return s.repo.DeleteRegion(ctx, s.db, id)
}

func (s *Service) CreateBranch(ctx context.Context, req domain.CreateBranchRequest) (domain.Branch, error) {
	regionID, err := parseID(req.RegionID)
	if err != nil {
		return domain.Branch{}, domain.ErrInvalidRegion
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Branch{}, domain.ErrInvalidName
	}

	region, err := s.repo.FindRegionByID(ctx, s.db, regionID)
	if err != nil {
		return domain.Branch{}, err
	}
	if region == nil {
		return domain.Branch{}, domain.ErrInvalidRegion
	}

	now := time.Now().UTC()
	branch := domain.Branch{
		ID:        s.genID.Generate(),
		RegionID:  regionID,
		Code:      slug.Make(region.Name + " " + name),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.InsertBranch(ctx, s.db, &branch); err != nil {
		return domain.Branch{}, err
	}
	return branch, nil
}

func (s *Service) UpdateBranch(ctx context.Context, req domain.UpdateBranchRequest) (domain.Branch, error) {
	id, err := parseID(req.ID)
	if err != nil {
		return domain.Branch{}, err
	}

	branch, err := s.repo.FindBranchByID(ctx, s.db, id)
	if err != nil {
		return domain.Branch{}, err
	}
	if branch == nil {
		return domain.Branch{}, domain.ErrNotFound
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		branch.Name = name
	}
	if req.RegionID != "" {
		regionID, err := parseID(req.RegionID)
		if err != nil {
			return domain.Branch{}, domain.ErrInvalidRegion
		}
		region, err := s.repo.FindRegionByID(ctx, s.db, regionID)
		if err != nil {
			return domain.Branch{}, err
		}
		if region == nil {
			return domain.Branch{}, domain.ErrInvalidRegion
		}
		branch.RegionID = regionID
	}

	branch.UpdatedAt = time.Now().UTC()
	if err := s.repo.UpdateBranch(ctx, s.db, branch); err != nil {
		return domain.Branch{}, err
	}
	return *branch, nil
}

func (s *Service) ListBranches(ctx context.Context, rawRegionID string) ([]domain.Branch, error) {
	var regionID snowflake.ID
	if trimmed := strings.TrimSpace(rawRegionID); trimmed != "" && !strings.EqualFold(trimmed, "all") {
		id, err := parseID(trimmed)
		if err != nil {
			return nil, domain.ErrInvalidRegion
		}
		regionID = id
	}
	return s.repo.ListBranches(ctx, s.db, regionID)
}

func (s *Service) DeleteBranch(ctx context.Context, rawID string) error {
	id, err := parseID(rawID)
	if err != nil {
		return err
	}

	branch, err := s.repo.FindBranchByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if branch == nil {
		return domain.ErrNotFound
	}

	count, err := s.repo.BranchReferenceCount(ctx, s.db, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return domain.ErrBranchInUse
	}

	return s.repo.DeleteBranch(ctx, s.db, id)
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
