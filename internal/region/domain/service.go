package domain

import (
	"context"
	"errors"
)

type CreateRegionRequest struct {
	Name string `json:"name"`
}

type UpdateRegionRequest struct {
	ID   string `json:"-"`
	Name string `json:"name"`
}

type CreateBranchRequest struct {
	RegionID string `json:"region_id"`
	Name     string `json:"name"`
}

type UpdateBranchRequest struct {
	ID       string `json:"-"`
	RegionID string `json:"region_id"`
	Name     string `json:"name"`
}

type Service interface {
	CreateRegion(ctx context.Context, req CreateRegionRequest) (Region, error)
	UpdateRegion(ctx context.Context, req UpdateRegionRequest) (Region, error)
	ListRegions(ctx context.Context) ([]Region, error)
	DeleteRegion(ctx context.Context, id string) error

	CreateBranch(ctx context.Context, req CreateBranchRequest) (Branch, error)
	UpdateBranch(ctx context.Context, req UpdateBranchRequest) (Branch, error)
	ListBranches(ctx context.Context, regionID string) ([]Branch, error)
	DeleteBranch(ctx context.Context, id string) error
}

var (
	ErrInvalidName    = errors.New("invalid_name")
	ErrInvalidID      = errors.New("invalid_id")
	ErrInvalidRegion  = errors.New("invalid_region")
	ErrNotFound       = errors.New("not_found")
	ErrRegionExists   = errors.New("region_exists")
	ErrBranchExists   = errors.New("branch_exists")
	ErrRegionInUse    = errors.New("region_in_use")
	ErrBranchInUse    = errors.New("branch_in_use")
	ErrRegionMismatch = errors.New("branch_region_mismatch")
)
