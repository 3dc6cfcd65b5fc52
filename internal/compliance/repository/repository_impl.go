package repository

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/civicworks/caseboard/internal/compliance/domain"
	"github.com/civicworks/caseboard/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, entry *domain.ComplianceEntry) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO compliance_entries (id, employer_no, employer_name, record_status, amount_billed, amount_collected, debt_established, debt_recovered, period, region_id, branch_id, created_by, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.EmployerNo,
		entry.EmployerName,
		entry.RecordStatus,
		entry.AmountBilled,
		entry.AmountCollected,
		entry.DebtEstablished,
		entry.DebtRecovered,
		entry.Period,
		nullableID(entry.RegionID),
		nullableID(entry.BranchID),
		nullableID(entry.CreatedBy),
		entry.CreatedAt,
		entry.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, entry *domain.ComplianceEntry) error {
	return db.WithContext(ctx).Exec(
		`UPDATE compliance_entries SET employer_no = ?, employer_name = ?, amount_billed = ?, amount_collected = ?, debt_established = ?, debt_recovered = ?, period = ?, updated_at = ?
		 WHERE id = ?`,
		entry.EmployerNo,
		entry.EmployerName,
		entry.AmountBilled,
		entry.AmountCollected,
		entry.DebtEstablished,
		entry.DebtRecovered,
		entry.Period,
		entry.UpdatedAt,
		entry.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.ComplianceEntry, error) {
	var entry domain.ComplianceEntry
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM compliance_entries WHERE id = ?`, id,
	).Scan(&entry).Error
	if err != nil {
		return nil, err
	}
	if entry.ID == 0 {
		return nil, nil
	}
	return &entry, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter, page pagination.Pagination) ([]domain.ComplianceEntry, int64, error) {
	stmt := applyFilter(db.WithContext(ctx).Model(&domain.ComplianceEntry{}), filter)

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []domain.ComplianceEntry
	err := page.Apply(stmt).
		Order("period desc, id desc").
		Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func (r *repo) Aggregate(ctx context.Context, db *gorm.DB, filter domain.ListFilter) (domain.Summary, error) {
	var summary domain.Summary
	err := applyFilter(db.WithContext(ctx).Model(&domain.ComplianceEntry{}), filter).
		Select(
			`COALESCE(SUM(amount_billed), 0) AS total_billed,
			 COALESCE(SUM(amount_collected), 0) AS total_collected,
			 COALESCE(SUM(debt_established), 0) AS debt_established,
			 COALESCE(SUM(debt_recovered), 0) AS debt_recovered,
			 COUNT(*) AS entry_count`,
		).
		Scan(&summary).Error
	if err != nil {
		return domain.Summary{}, err
	}

	if summary.TotalBilled != 0 {
		summary.CollectionRate = summary.TotalCollected / summary.TotalBilled * 100
	}
	if summary.DebtEstablished != 0 {
		summary.RecoveryRate = summary.DebtRecovered / summary.DebtEstablished * 100
	}
	return summary, nil
}

func applyFilter(stmt *gorm.DB, filter domain.ListFilter) *gorm.DB {
	if filter.RegionID != 0 {
		stmt = stmt.Where("region_id = ?", filter.RegionID)
	}
	if filter.BranchID != 0 {
		stmt = stmt.Where("branch_id = ?", filter.BranchID)
	}
	if filter.Period != "" {
		stmt = stmt.Where("period = ?", filter.Period)
	}
	if filter.PeriodFrom != "" {
		stmt = stmt.Where("period >= ?", filter.PeriodFrom)
	}
	if filter.PeriodTo != "" {
		stmt = stmt.Where("period <= ?", filter.PeriodTo)
	}
	if filter.Search != "" {
		needle := "%" + strings.ToLower(filter.Search) + "%"
		stmt = stmt.Where(
			"LOWER(employer_no) LIKE ? OR LOWER(employer_name) LIKE ?",
			needle, needle,
		)
	}
	return stmt
}

func nullableID(id snowflake.ID) interface{} {
	if id == 0 {
		return nil
	}
	return id
}
