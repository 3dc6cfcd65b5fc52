package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/civicworks/caseboard/internal/casefile"
	"github.com/civicworks/caseboard/pkg/db/pagination"
	"gorm.io/gorm"
)

type ComplianceEntry struct {
	ID              snowflake.ID `gorm:"primaryKey" json:"id"`
	EmployerNo      string       `gorm:"not null" json:"employer_no"`
	EmployerName    string       `gorm:"not null" json:"employer_name"`
	RecordStatus    string       `gorm:"not null;default:'pending'" json:"record_status"`
	AmountBilled    float64      `gorm:"not null;default:0" json:"amount_billed"`
	AmountCollected float64      `gorm:"not null;default:0" json:"amount_collected"`
	DebtEstablished float64      `gorm:"not null;default:0" json:"debt_established"`
	DebtRecovered   float64      `gorm:"not null;default:0" json:"debt_recovered"`
	Period          string       `gorm:"not null;default:'';index" json:"period"`
	RegionID        snowflake.ID `gorm:"index" json:"region_id,omitempty"`
	BranchID        snowflake.ID `gorm:"index" json:"branch_id,omitempty"`
	CreatedBy       snowflake.ID `json:"created_by,omitempty"`
	CreatedAt       time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// CollectionRate is collected/billed; recovery rate follows the same
// shape for the debt columns. Both are 0 when the denominator is 0.
type Rates struct {
	CollectionRate float64 `json:"collection_rate"`
	RecoveryRate   float64 `json:"recovery_rate"`
}

func (e ComplianceEntry) Rates() Rates {
	var rates Rates
	if e.AmountBilled != 0 {
		rates.CollectionRate = e.AmountCollected / e.AmountBilled * 100
	}
	if e.DebtEstablished != 0 {
		rates.RecoveryRate = e.DebtRecovered / e.DebtEstablished * 100
	}
	return rates
}

type View struct {
	ComplianceEntry
	Rates
}

func (e ComplianceEntry) View() View {
	return View{ComplianceEntry: e, Rates: e.Rates()}
}

// Wire is the inbound payload with tolerant numeric decoding.
type Wire struct {
	EmployerNo      string      `json:"employer_no"`
	EmployerName    string      `json:"employer_name"`
	AmountBilled    interface{} `json:"amount_billed"`
	AmountCollected interface{} `json:"amount_collected"`
	DebtEstablished interface{} `json:"debt_established"`
	DebtRecovered   interface{} `json:"debt_recovered"`
	Period          string      `json:"period"`
	RegionID        string      `json:"region_id"`
	BranchID        string      `json:"branch_id"`
}

func (w Wire) Normalize() ComplianceEntry {
	return ComplianceEntry{
		EmployerNo:      casefile.StringOr(w.EmployerNo, ""),
		EmployerName:    casefile.StringOr(w.EmployerName, ""),
		RecordStatus:    string(casefile.StatusPending),
		AmountBilled:    casefile.AmountOrZero(w.AmountBilled),
		AmountCollected: casefile.AmountOrZero(w.AmountCollected),
		DebtEstablished: casefile.AmountOrZero(w.DebtEstablished),
		DebtRecovered:   casefile.AmountOrZero(w.DebtRecovered),
		Period:          casefile.StringOr(w.Period, ""),
		RegionID:        parseOptionalID(w.RegionID),
		BranchID:        parseOptionalID(w.BranchID),
	}
}

type ListRequest struct {
	RegionID   string `form:"region_id"`
	BranchID   string `form:"branch_id"`
	Period     string `form:"period"`
	PeriodFrom string `form:"period_from"`
	PeriodTo   string `form:"period_to"`
	Search     string `form:"search"`

	Page pagination.Pagination
}

type ListResponse struct {
	pagination.PageInfo
	Entries []View `json:"entries"`
}

type UpdateRequest struct {
	ID string `json:"-"`
	Wire
}

// Summary feeds the compliance dashboard card.
type Summary struct {
	TotalBilled     float64 `json:"total_billed"`
	TotalCollected  float64 `json:"total_collected"`
	DebtEstablished float64 `json:"debt_established"`
	DebtRecovered   float64 `json:"debt_recovered"`
	CollectionRate  float64 `json:"collection_rate"`
	RecoveryRate    float64 `json:"recovery_rate"`
	EntryCount      int64   `json:"entry_count"`
}

type ListFilter struct {
	RegionID   snowflake.ID
	BranchID   snowflake.ID
	Period     string
	PeriodFrom string
	PeriodTo   string
	Search     string
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *ComplianceEntry) error
	Update(ctx context.Context, db *gorm.DB, entry *ComplianceEntry) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*ComplianceEntry, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter, page pagination.Pagination) ([]ComplianceEntry, int64, error)
	Aggregate(ctx context.Context, db *gorm.DB, filter ListFilter) (Summary, error)
}

type Service interface {
	Create(ctx context.Context, wire Wire) (View, error)
	Update(ctx context.Context, req UpdateRequest) (View, error)
	List(ctx context.Context, req ListRequest) (ListResponse, error)
	Summary(ctx context.Context, req ListRequest) (Summary, error)
}

var (
	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidEmployer = errors.New("invalid_employer")
	ErrInvalidPeriod   = errors.New("invalid_period")
	ErrNotFound        = errors.New("not_found")
)

func parseOptionalID(value string) snowflake.ID {
	id, err := snowflake.ParseString(value)
	if err != nil {
		return 0
	}
	return id
}
