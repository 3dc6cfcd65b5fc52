package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/civicworks/caseboard/internal/casefile"
)

type Claim struct {
	ID              snowflake.ID `gorm:"primaryKey" json:"id"`
	ClaimNo         string       `gorm:"not null;uniqueIndex" json:"claim_no"`
	Employer        string       `gorm:"not null" json:"employer"`
	Claimant        string       `gorm:"not null" json:"claimant"`
	ClaimType       string       `gorm:"not null" json:"claim_type"`
	RecordStatus    string       `gorm:"not null;default:'pending';index" json:"record_status"`
	AmountRequested float64      `gorm:"not null;default:0" json:"amount_requested"`
	AmountPaid      float64      `gorm:"not null;default:0" json:"amount_paid"`
	Sector          string       `gorm:"not null;default:''" json:"sector"`
	Class           string       `gorm:"not null;default:''" json:"class"`
	PaymentPeriod   string       `gorm:"not null;default:'';index" json:"payment_period"`
	DateProcessed   *time.Time   `json:"date_processed,omitempty"`
	DatePaid        *time.Time   `json:"date_paid,omitempty"`
	RegionID        snowflake.ID `gorm:"index" json:"region_id,omitempty"`
	BranchID        snowflake.ID `gorm:"index" json:"branch_id,omitempty"`
	CreatedBy       snowflake.ID `json:"created_by,omitempty"`
	CreatedAt       time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// View is a claim enriched with derived figures for list and detail
// responses.
type View struct {
	Claim
	Difference        float64 `json:"difference"`
	DifferencePercent float64 `json:"difference_percent"`
	ProcessingDays    int     `json:"processing_days"`
}

func (c Claim) View() View {
	fin := casefile.DeriveFinancials(c.AmountRequested, c.AmountPaid)
	return View{
		Claim:             c,
		Difference:        fin.Difference,
		DifferencePercent: fin.DifferencePercent,
		ProcessingDays:    casefile.ProcessingDays(c.DateProcessed, c.DatePaid),
	}
}

// Wire is the inbound payload shape. Field names follow the upstream
// feed, numeric fields arrive as numbers or strings, and anything can
// be absent.
type Wire struct {
	ClaimNo         string      `json:"claim_no"`
	Employer        string      `json:"employer"`
	Claimant        string      `json:"claimant"`
	ClaimType       string      `json:"claim_type"`
	RecordStatus    string      `json:"record_status"`
	AmountRequested interface{} `json:"amount_requested"`
	AmountPaid      interface{} `json:"amount_paid"`
	Sector          string      `json:"sector"`
	Class           string      `json:"class"`
	PaymentPeriod   string      `json:"payment_period"`
	DateProcessed   string      `json:"date_processed"`
	DatePaid        string      `json:"date_paid"`
	RegionID        string      `json:"region_id"`
	BranchID        string      `json:"branch_id"`
}

// Normalize maps a wire payload to a canonical claim. Missing optional
// fields default to zero values and malformed numbers become 0; the
// mapping never fails.
func (w Wire) Normalize() Claim {
	status, ok := casefile.ParseStatus(w.RecordStatus)
	if !ok {
		status = casefile.StatusPending
	}

	return Claim{
		ClaimNo:         casefile.StringOr(w.ClaimNo, ""),
		Employer:        casefile.StringOr(w.Employer, ""),
		Claimant:        casefile.StringOr(w.Claimant, ""),
		ClaimType:       casefile.StringOr(w.ClaimType, ""),
		RecordStatus:    string(status),
		AmountRequested: casefile.AmountOrZero(w.AmountRequested),
		AmountPaid:      casefile.AmountOrZero(w.AmountPaid),
		Sector:          casefile.StringOr(w.Sector, ""),
		Class:           casefile.StringOr(w.Class, ""),
		PaymentPeriod:   casefile.StringOr(w.PaymentPeriod, ""),
		DateProcessed:   casefile.DateOrNil(w.DateProcessed),
		DatePaid:        casefile.DateOrNil(w.DatePaid),
		RegionID:        parseOptionalID(w.RegionID),
		BranchID:        parseOptionalID(w.BranchID),
	}
}

func parseOptionalID(value string) snowflake.ID {
	id, err := snowflake.ParseString(value)
	if err != nil {
		return 0
	}
	return id
}
