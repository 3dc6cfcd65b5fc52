package repository

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/civicworks/caseboard/internal/casefile"
	"github.com/civicworks/caseboard/internal/claim/domain"
	"github.com/civicworks/caseboard/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, claim *domain.Claim) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO claims (id, claim_no, employer, claimant, claim_type, record_status, amount_requested, amount_paid, sector, class, payment_period, date_processed, date_paid, region_id, branch_id, created_by, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		claim.ID,
		claim.ClaimNo,
		claim.Employer,
		claim.Claimant,
		claim.ClaimType,
		claim.RecordStatus,
		claim.AmountRequested,
		claim.AmountPaid,
		claim.Sector,
		claim.Class,
		claim.PaymentPeriod,
		claim.DateProcessed,
		claim.DatePaid,
		nullableID(claim.RegionID),
		nullableID(claim.BranchID),
		nullableID(claim.CreatedBy),
		claim.CreatedAt,
		claim.UpdatedAt,
	).Error
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, claim *domain.Claim) error {
	return db.WithContext(ctx).Exec(
		`UPDATE claims SET record_status = ?, updated_at = ? WHERE id = ?`,
		claim.RecordStatus,
		claim.UpdatedAt,
		claim.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Claim, error) {
	var claim domain.Claim
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM claims WHERE id = ?`, id,
	).Scan(&claim).Error
	if err != nil {
		return nil, err
	}
	if claim.ID == 0 {
		return nil, nil
	}
	return &claim, nil
}

func (r *repo) FindByClaimNo(ctx context.Context, db *gorm.DB, claimNo string) (*domain.Claim, error) {
	var claim domain.Claim
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM claims WHERE claim_no = ?`, claimNo,
	).Scan(&claim).Error
	if err != nil {
		return nil, err
	}
	if claim.ID == 0 {
		return nil, nil
	}
	return &claim, nil
}

func (r *repo) ExistingClaimNos(ctx context.Context, db *gorm.DB, claimNos []string) ([]string, error) {
	if len(claimNos) == 0 {
		return nil, nil
	}
	var existing []string
	err := db.WithContext(ctx).
		Model(&domain.Claim{}).
		Where("claim_no IN ?", claimNos).
		Pluck("claim_no", &existing).Error
	if err != nil {
		return nil, err
	}
	return existing, nil
}

func (r *repo) FindByIDs(ctx context.Context, db *gorm.DB, ids []snowflake.ID) ([]domain.Claim, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var claims []domain.Claim
	err := db.WithContext(ctx).
		Model(&domain.Claim{}).
		Where("id IN ?", ids).
		Find(&claims).Error
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter, page pagination.Pagination) ([]domain.Claim, int64, error) {
	stmt := applyFilter(db.WithContext(ctx).Model(&domain.Claim{}), filter)

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var claims []domain.Claim
	err := page.Apply(stmt).
		Order("created_at desc, id desc").
		Find(&claims).Error
	if err != nil {
		return nil, 0, err
	}
	return claims, total, nil
}

func (r *repo) ListAll(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.Claim, error) {
	var claims []domain.Claim
	err := applyFilter(db.WithContext(ctx).Model(&domain.Claim{}), filter).
		Order("created_at desc, id desc").
		Find(&claims).Error
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func (r *repo) InsertBatch(ctx context.Context, db *gorm.DB, claims []domain.Claim) error {
	if len(claims) == 0 {
		return nil
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range claims {
			if err := r.Insert(ctx, tx, &claims[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *repo) Aggregate(ctx context.Context, db *gorm.DB, filter domain.ListFilter) (domain.Metrics, error) {
	var metrics domain.Metrics
	err := applyFilter(db.WithContext(ctx).Model(&domain.Claim{}), filter).
		Select(
			`COUNT(*) AS total_claims,
			 SUM(CASE WHEN record_status = ? THEN 1 ELSE 0 END) AS pending_claims,
			 SUM(CASE WHEN record_status = ? THEN 1 ELSE 0 END) AS reviewed_claims,
			 SUM(CASE WHEN record_status = ? THEN 1 ELSE 0 END) AS approved_claims,
			 COALESCE(SUM(amount_requested), 0) AS total_requested,
			 COALESCE(SUM(amount_paid), 0) AS total_paid`,
			casefile.StatusPending,
			casefile.StatusReviewed,
			casefile.StatusApproved,
		).
		Scan(&metrics).Error
	if err != nil {
		return domain.Metrics{}, err
	}

	// Date arithmetic differs per backend, so the average is computed
	// over the processed/paid pairs in Go.
	var pairs []struct {
		DateProcessed *time.Time
		DatePaid      *time.Time
	}
	err = applyFilter(db.WithContext(ctx).Model(&domain.Claim{}), filter).
		Select("date_processed, date_paid").
		Where("date_processed IS NOT NULL AND date_paid IS NOT NULL").
		Scan(&pairs).Error
	if err != nil {
		return domain.Metrics{}, err
	}
	if len(pairs) > 0 {
		var totalDays float64
		for _, pair := range pairs {
			totalDays += pair.DatePaid.Sub(*pair.DateProcessed).Hours() / 24
		}
		metrics.AvgProcessingDays = totalDays / float64(len(pairs))
	}

	return metrics, nil
}

func (r *repo) MonthlySeries(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.SeriesPoint, error) {
	var series []domain.SeriesPoint
	err := applyFilter(db.WithContext(ctx).Model(&domain.Claim{}), filter).
		Select(`payment_period AS period, COUNT(*) AS count, COALESCE(SUM(amount_paid), 0) AS amount_paid`).
		Where("payment_period <> ''").
		Group("payment_period").
		Order("payment_period asc").
		Scan(&series).Error
	if err != nil {
		return nil, err
	}
	return series, nil
}

func applyFilter(stmt *gorm.DB, filter domain.ListFilter) *gorm.DB {
	if filter.RecordStatus != "" {
		stmt = stmt.Where("LOWER(record_status) = ?", strings.ToLower(filter.RecordStatus))
	}
	if filter.ClaimType != "" {
		stmt = stmt.Where("claim_type = ?", filter.ClaimType)
	}
	if filter.RegionID != 0 {
		stmt = stmt.Where("region_id = ?", filter.RegionID)
	}
	if filter.BranchID != 0 {
		stmt = stmt.Where("branch_id = ?", filter.BranchID)
	}
	if filter.Period != "" {
		stmt = stmt.Where("payment_period = ?", filter.Period)
	}
	if filter.PeriodFrom != "" {
		stmt = stmt.Where("payment_period >= ?", filter.PeriodFrom)
	}
	if filter.PeriodTo != "" {
		stmt = stmt.Where("payment_period <= ?", filter.PeriodTo)
	}
	if filter.Search != "" {
		needle := "%" + strings.ToLower(filter.Search) + "%"
		stmt = stmt.Where(
			"LOWER(claim_no) LIKE ? OR LOWER(employer) LIKE ? OR LOWER(claimant) LIKE ?",
			needle, needle, needle,
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
