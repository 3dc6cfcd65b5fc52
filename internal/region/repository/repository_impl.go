package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/civicworks/caseboard/internal/region/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertRegion(ctx context.Context, db *gorm.DB, region *domain.Region) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO regions (id, code, name, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		region.ID,
		region.Code,
		region.Name,
		region.CreatedAt,
		region.UpdatedAt,
	).Error
}

func (r *repo) UpdateRegion(ctx context.Context, db *gorm.DB, region *domain.Region) error {
	return db.WithContext(ctx).Exec(
		`UPDATE regions SET code = ?, name = ?, updated_at = ? WHERE id = ?`,
		region.Code,
		region.Name,
		region.UpdatedAt,
		region.ID,
	).Error
}

func (r *repo) FindRegionByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Region, error) {
	var region domain.Region
	err := db.WithContext(ctx).Raw(
		`SELECT id, code, name, created_at, updated_at FROM regions WHERE id = ?`,
		id,
	).Scan(&region).Error
	if err != nil {
		return nil, err
	}
	if region.ID == 0 {
		return nil, nil
	}
	return &region, nil
}

func (r *repo) ListRegions(ctx context.Context, db *gorm.DB) ([]domain.Region, error) {
	var regions []domain.Region
	err := db.WithContext(ctx).
		Model(&domain.Region{}).
		Order("name asc").
		Find(&regions).Error
	if err != nil {
		return nil, err
	}
	return regions, nil
}

func (r *repo) DeleteRegion(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM regions WHERE id = ?`, id).Error
}

// RegionReferenceCount counts rows in every table that can point at a
// region. A non-zero count blocks deletion.
func (r *repo) RegionReferenceCount(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT (SELECT COUNT(*) FROM branches WHERE region_id = ?)
		      + (SELECT COUNT(*) FROM claims WHERE region_id = ?)
		      + (SELECT COUNT(*) FROM compliance_entries WHERE region_id = ?)
		      + (SELECT COUNT(*) FROM inspection_records WHERE region_id = ?)
		      + (SELECT COUNT(*) FROM legal_cases WHERE region_id = ?)
		      + (SELECT COUNT(*) FROM users WHERE region_id = ?)`,
		id, id, id, id, id, id,
	).Scan(&count).Error
	return count, err
}

func (r *repo) InsertBranch(ctx context.Context, db *gorm.DB, branch *domain.Branch) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO branches (id, region_id, code, name, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		branch.ID,
		branch.RegionID,
		branch.Code,
		branch.Name,
		branch.CreatedAt,
		branch.UpdatedAt,
	).Error
}

func (r *repo) UpdateBranch(ctx context.Context, db *gorm.DB, branch *domain.Branch) error {
	return db.WithContext(ctx).Exec(
		`UPDATE branches SET region_id = ?, code = ?, name = ?, updated_at = ? WHERE id = ?`,
		branch.RegionID,
		branch.Code,
		branch.Name,
		branch.UpdatedAt,
		branch.ID,
	).Error
}

func (r *repo) FindBranchByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Branch, error) {
	var branch domain.Branch
	err := db.WithContext(ctx).Raw(
		`SELECT id, region_id, code, name, created_at, updated_at FROM branches WHERE id = ?`,
		id,
	).Scan(&branch).Error
	if err != nil {
		return nil, err
	}
	if branch.ID == 0 {
		return nil, nil
	}
	return &branch, nil
}

func (r *repo) ListBranches(ctx context.Context, db *gorm.DB, regionID snowflake.ID) ([]domain.Branch, error) {
	stmt := db.WithContext(ctx).Model(&domain.Branch{})
	if regionID != 0 {
		stmt = stmt.Where("region_id = ?", regionID)
	}
	var branches []domain.Branch
	err := stmt.Order("name asc").Find(&branches).Error
	if err != nil {
		return nil, err
	}
	return branches, nil
}

func (r *repo) DeleteBranch(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM branches WHERE id = ?`, id).Error
}

func (r *repo) BranchReferenceCount(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT (SELECT COUNT(*) FROM claims WHERE branch_id = ?)
		      + (SELECT COUNT(*) FROM compliance_entries WHERE branch_id = ?)
		      + (SELECT COUNT(*) FROM inspection_records WHERE branch_id = ?)
		      + (SELECT COUNT(*) FROM legal_cases WHERE branch_id = ?)
		      + (SELECT COUNT(*) FROM users WHERE branch_id = ?)`,
		id, id, id, id, id,
	).Scan(&count).Error
	return count, err
}
