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

type InspectionRecord struct {
	ID               snowflake.ID `gorm:"primaryKey" json:"id"`
	EmployerNo       string       `gorm:"not null" json:"employer_no"`
	EmployerName     string       `gorm:"not null" json:"employer_name"`
	InspectionType   string       `gorm:"not null" json:"inspection_type"`
	RecordStatus     string       `gorm:"not null;default:'pending'" json:"record_status"`
	Findings         string       `gorm:"not null;default:''" json:"findings"`
	EmployeesCovered int64        `gorm:"not null;default:0" json:"employees_covered"`
	DateInspected    *time.Time   `json:"date_inspected,omitempty"`
	RegionID         snowflake.ID `gorm:"index" json:"region_id,omitempty"`
	BranchID         snowflake.ID `gorm:"index" json:"branch_id,omitempty"`
	CreatedBy        snowflake.ID `json:"created_by,omitempty"`
	CreatedAt        time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

type Wire struct {
	EmployerNo       string      `json:"employer_no"`
	EmployerName     string      `json:"employer_name"`
	InspectionType   string      `json:"inspection_type"`
	Findings         string      `json:"findings"`
	EmployeesCovered interface{} `json:"employees_covered"`
	DateInspected    string      `json:"date_inspected"`
	RegionID         string      `json:"region_id"`
	BranchID         string      `json:"branch_id"`
}

func (w Wire) Normalize() InspectionRecord {
	return InspectionRecord{
		EmployerNo:       casefile.StringOr(w.EmployerNo, ""),
		EmployerName:     casefile.StringOr(w.EmployerName, ""),
		InspectionType:   casefile.StringOr(w.InspectionType, ""),
		RecordStatus:     string(casefile.StatusPending),
		Findings:         casefile.StringOr(w.Findings, ""),
		EmployeesCovered: casefile.CountOrZero(w.EmployeesCovered),
		DateInspected:    casefile.DateOrNil(w.DateInspected),
		RegionID:         parseOptionalID(w.RegionID),
		BranchID:         parseOptionalID(w.BranchID),
	}
}

type ListRequest struct {
	InspectionType string `form:"inspection_type"`
	RegionID       string `form:"region_id"`
	BranchID       string `form:"branch_id"`
	Search         string `form:"search"`

	Page pagination.Pagination
}

type ListResponse struct {
	pagination.PageInfo
	Records []InspectionRecord `json:"records"`
}

type UpdateRequest struct {
	ID string `json:"-"`
	Wire
}

type ListFilter struct {
	InspectionType string
	RegionID       snowflake.ID
	BranchID       snowflake.ID
	Search         string
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, record *InspectionRecord) error
	Update(ctx context.Context, db *gorm.DB, record *InspectionRecord) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*InspectionRecord, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter, page pagination.Pagination) ([]InspectionRecord, int64, error)
}

type Service interface {
	Create(ctx context.Context, wire Wire) (InspectionRecord, error)
	Update(ctx context.Context, req UpdateRequest) (InspectionRecord, error)
	List(ctx context.Context, req ListRequest) (ListResponse, error)
}

var (
	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidEmployer = errors.New("invalid_employer")
	ErrInvalidType     = errors.New("invalid_inspection_type")
	ErrNotFound        = errors.New("not_found")
)

func parseOptionalID(value string) snowflake.ID {
	id, err := snowflake.ParseString(value)
	if err != nil {
		return 0
	}
	return id
}
