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

// LegalCase moves through the same pending/reviewed/approved lifecycle
// as claims.
type LegalCase struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	CaseNo        string       `gorm:"not null;uniqueIndex" json:"case_no"`
	Plaintiff     string       `gorm:"not null" json:"plaintiff"`
	Defendant     string       `gorm:"not null" json:"defendant"`
	CaseType      string       `gorm:"not null" json:"case_type"`
	RecordStatus  string       `gorm:"not null;default:'pending';index" json:"record_status"`
	AmountClaimed float64      `gorm:"not null;default:0" json:"amount_claimed"`
	AmountAwarded float64      `gorm:"not null;default:0" json:"amount_awarded"`
	DateFiled     *time.Time   `json:"date_filed,omitempty"`
	DateClosed    *time.Time   `json:"date_closed,omitempty"`
	RegionID      snowflake.ID `gorm:"index" json:"region_id,omitempty"`
	BranchID      snowflake.ID `gorm:"index" json:"branch_id,omitempty"`
	CreatedBy     snowflake.ID `json:"created_by,omitempty"`
	CreatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

type Wire struct {
	CaseNo        string      `json:"case_no"`
	Plaintiff     string      `json:"plaintiff"`
	Defendant     string      `json:"defendant"`
	CaseType      string      `json:"case_type"`
	RecordStatus  string      `json:"record_status"`
	AmountClaimed interface{} `json:"amount_claimed"`
	AmountAwarded interface{} `json:"amount_awarded"`
	DateFiled     string      `json:"date_filed"`
	DateClosed    string      `json:"date_closed"`
	RegionID      string      `json:"region_id"`
	BranchID      string      `json:"branch_id"`
}

func (w Wire) Normalize() LegalCase {
	status, ok := casefile.ParseStatus(w.RecordStatus)
	if !ok {
		status = casefile.StatusPending
	}

	return LegalCase{
		CaseNo:        casefile.StringOr(w.CaseNo, ""),
		Plaintiff:     casefile.StringOr(w.Plaintiff, ""),
		Defendant:     casefile.StringOr(w.Defendant, ""),
		CaseType:      casefile.StringOr(w.CaseType, ""),
		RecordStatus:  string(status),
		AmountClaimed: casefile.AmountOrZero(w.AmountClaimed),
		AmountAwarded: casefile.AmountOrZero(w.AmountAwarded),
		DateFiled:     casefile.DateOrNil(w.DateFiled),
		DateClosed:    casefile.DateOrNil(w.DateClosed),
		RegionID:      parseOptionalID(w.RegionID),
		BranchID:      parseOptionalID(w.BranchID),
	}
}

type ListRequest struct {
	RecordStatus string `form:"record_status"`
	CaseType     string `form:"case_type"`
	RegionID     string `form:"region_id"`
	Search       string `form:"search"`

	Page pagination.Pagination
}

type ListResponse struct {
	pagination.PageInfo
	Cases []LegalCase `json:"cases"`
}

type UpdateStatusRequest struct {
	ID           string `json:"-"`
	RecordStatus string `json:"record_status"`
}

type BulkTransitionRequest struct {
	IDs    []string `json:"ids"`
	Action string   `json:"action"`
}

type ListFilter struct {
	RecordStatus string
	CaseType     string
	RegionID     snowflake.ID
	Search       string
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, legalCase *LegalCase) error
	UpdateStatus(ctx context.Context, db *gorm.DB, legalCase *LegalCase) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*LegalCase, error)
	FindByCaseNo(ctx context.Context, db *gorm.DB, caseNo string) (*LegalCase, error)
	FindByIDs(ctx context.Context, db *gorm.DB, ids []snowflake.ID) ([]LegalCase, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter, page pagination.Pagination) ([]LegalCase, int64, error)
}

type Service interface {
	Create(ctx context.Context, wire Wire) (LegalCase, error)
	List(ctx context.Context, req ListRequest) (ListResponse, error)
	UpdateStatus(ctx context.Context, req UpdateStatusRequest) (LegalCase, error)
	BulkTransition(ctx context.Context, req BulkTransitionRequest) (casefile.BulkResult, error)
}

var (
	ErrInvalidID     = errors.New("invalid_id")
	ErrInvalidCaseNo = errors.New("invalid_case_no")
	ErrInvalidParty  = errors.New("invalid_party")
	ErrNotFound      = errors.New("not_found")
	ErrCaseExists    = errors.New("case_exists")
)

func parseOptionalID(value string) snowflake.ID {
	id, err := snowflake.ParseString(value)
	if err != nil {
		return 0
	}
	return id
}
