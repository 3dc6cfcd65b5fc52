package repository

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/civicworks/caseboard/internal/inspection/domain"
	"github.com/civicworks/caseboard/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, record *domain.InspectionRecord) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO inspection_records (id, employer_no, employer_name, inspection_type, record_status, findings, employees_covered, date_inspected, region_id, branch_id, created_by, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.EmployerNo,
		record.EmployerName,
		record.InspectionType,
		record.RecordStatus,
		record.Findings,
		record.EmployeesCovered,
		record.DateInspected,
		nullableID(record.RegionID),
		nullableID(record.BranchID),
		nullableID(record.CreatedBy),
		record.CreatedAt,
		record.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, record *domain.InspectionRecord) error {
	return db.WithContext(ctx).Exec(
		`UPDATE inspection_records SET employer_no = ?, employer_name = ?, inspection_type = ?, findings = ?, employees_covered = ?, date_inspected = ?, updated_at = ?
		 WHERE id = ?`,
		record.EmployerNo,
		record.EmployerName,
		record.InspectionType,
		record.Findings,
		record.EmployeesCovered,
		record.DateInspected,
		record.UpdatedAt,
		record.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.InspectionRecord, error) {
	var record domain.InspectionRecord
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM inspection_records WHERE id = ?`, id,
	).Scan(&record).Error
	if err != nil {
		return nil, err
	}
	if record.ID == 0 {
		return nil, nil
	}
	return &record, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter, page pagination.Pagination) ([]domain.InspectionRecord, int64, error) {
	stmt := db.WithContext(ctx).Model(&domain.InspectionRecord{})
	if filter.InspectionType != "" {
		stmt = stmt.Where("inspection_type = ?", filter.InspectionType)
	}
	if filter.RegionID != 0 {
		stmt = stmt.Where("region_id = ?", filter.RegionID)
	}
	if filter.BranchID != 0 {
		stmt = stmt.Where("branch_id = ?", filter.BranchID)
	}
	if filter.Search != "" {
		needle := "%" + strings.ToLower(filter.Search) + "%"
		stmt = stmt.Where(
			"LOWER(employer_no) LIKE ? OR LOWER(employer_name) LIKE ?",
			needle, needle,
		)
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var records []domain.InspectionRecord
	err := page.Apply(stmt).
		Order("created_at desc, id desc").
		Find(&records).Error
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func nullableID(id snowflake.ID) interface{} {
	if id == 0 {
		return nil
	}
	return id
}
