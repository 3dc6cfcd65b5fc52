package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	InsertRegion(ctx context.Context, db *gorm.DB, region *Region) error
	UpdateRegion(ctx context.Context, db *gorm.DB, region *Region) error
	FindRegionByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Region, error)
	ListRegions(ctx context.Context, db *gorm.DB) ([]Region, error)
	DeleteRegion(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	RegionReferenceCount(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error)

	InsertBranch(ctx context.Context, db *gorm.DB, branch *Branch) error
	UpdateBranch(ctx context.Context, db *gorm.DB, branch *Branch) error
	FindBranchByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Branch, error)
	ListBranches(ctx context.Context, db *gorm.DB, regionID snowflake.ID) ([]Branch, error)
	DeleteBranch(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	BranchReferenceCount(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error)
}
