package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/civicworks/caseboard/pkg/db/pagination"
	"gorm.io/gorm"
)

// ListFilter mirrors the in-memory filter engine in SQL. Sentinel
// values are resolved before the filter reaches the repository.
type ListFilter struct {
	RecordStatus string
	ClaimType    string
	RegionID     snowflake.ID
	BranchID     snowflake.ID
	Period       string
	PeriodFrom   string
	PeriodTo     string
	Search       string
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, claim *Claim) error
	UpdateStatus(ctx context.Context, db *gorm.DB, claim *Claim) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Claim, error)
	FindByClaimNo(ctx context.Context, db *gorm.DB, claimNo string) (*Claim, error)
	ExistingClaimNos(ctx context.Context, db *gorm.DB, claimNos []string) ([]string, error)
	FindByIDs(ctx context.Context, db *gorm.DB, ids []snowflake.ID) ([]Claim, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter, page pagination.Pagination) ([]Claim, int64, error)
	ListAll(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Claim, error)
	InsertBatch(ctx context.Context, db *gorm.DB, claims []Claim) error
	Aggregate(ctx context.Context, db *gorm.DB, filter ListFilter) (Metrics, error)
	MonthlySeries(ctx context.Context, db *gorm.DB, filter ListFilter) ([]SeriesPoint, error)
}
