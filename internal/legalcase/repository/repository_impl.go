package repository

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/civicworks/caseboard/internal/legalcase/domain"
	"github.com/civicworks/caseboard/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, legalCase *domain.LegalCase) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO legal_cases (id, case_no, plaintiff, defendant, case_type, record_status, amount_claimed, amount_awarded, date_filed, date_closed, region_id, branch_id, created_by, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		legalCase.ID,
		legalCase.CaseNo,
		legalCase.Plaintiff,
		legalCase.Defendant,
		legalCase.CaseType,
		legalCase.RecordStatus,
		legalCase.AmountClaimed,
		legalCase.AmountAwarded,
		legalCase.DateFiled,
		legalCase.DateClosed,
		nullableID(legalCase.RegionID),
		nullableID(legalCase.BranchID),
		nullableID(legalCase.CreatedBy),
		legalCase.CreatedAt,
		legalCase.UpdatedAt,
	).Error
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, legalCase *domain.LegalCase) error {
	return db.WithContext(ctx).Exec(
		`UPDATE legal_cases SET record_status = ?, updated_at = ? WHERE id = ?`,
		legalCase.RecordStatus,
		legalCase.UpdatedAt,
		legalCase.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.LegalCase, error) {
	var legalCase domain.LegalCase
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM legal_cases WHERE id = ?`, id,
	).Scan(&legalCase).Error
	if err != nil {
		return nil, err
	}
	if legalCase.ID == 0 {
		return nil, nil
	}
	return &legalCase, nil
}

func (r *repo) FindByCaseNo(ctx context.Context, db *gorm.DB, caseNo string) (*domain.LegalCase, error) {
	var legalCase domain.LegalCase
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM legal_cases WHERE case_no = ?`, caseNo,
	).Scan(&legalCase).Error
	if err != nil {
		return nil, err
	}
	if legalCase.ID == 0 {
		return nil, nil
	}
	return &legalCase, nil
}

func (r *repo) FindByIDs(ctx context.Context, db *gorm.DB, ids []snowflake.ID) ([]domain.LegalCase, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var cases []domain.LegalCase
	err := db.WithContext(ctx).
		Model(&domain.LegalCase{}).
		Where("id IN ?", ids).
		Find(&cases).Error
	if err != nil {
		return nil, err
	}
	return cases, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter, page pagination.Pagination) ([]domain.LegalCase, int64, error) {
	stmt := db.WithContext(ctx).Model(&domain.LegalCase{})
	if filter.RecordStatus != "" {
		stmt = stmt.Where("LOWER(record_status) = ?", strings.ToLower(filter.RecordStatus))
	}
	if filter.CaseType != "" {
		stmt = stmt.Where("case_type = ?", filter.CaseType)
	}
	if filter.RegionID != 0 {
		stmt = stmt.Where("region_id = ?", filter.RegionID)
	}
	if filter.Search != "" {
		needle := "%" + strings.ToLower(filter.Search) + "%"
		stmt = stmt.Where(
			"LOWER(case_no) LIKE ? OR LOWER(plaintiff) LIKE ? OR LOWER(defendant) LIKE ?",
			needle, needle, needle,
		)
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var cases []domain.LegalCase
	err := page.Apply(stmt).
		Order("created_at desc, id desc").
		Find(&cases).Error
	if err != nil {
		return nil, 0, err
	}
	return cases, total, nil
}

func nullableID(id snowflake.ID) interface{} {
	if id == 0 {
		return nil
	}
	return id
}
