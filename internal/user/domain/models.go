package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type User struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	Username     string       `gorm:"not null;uniqueIndex" json:"username"`
	Email        string       `gorm:"not null;uniqueIndex" json:"email"`
	PasswordHash string       `gorm:"not null" json:"-"`
	FullName     string       `gorm:"not null;default:''" json:"full_name"`
	Role         string       `gorm:"not null;default:'OFFICER'" json:"role"`
	RegionID     snowflake.ID `gorm:"index" json:"region_id,omitempty"`
	BranchID     snowflake.ID `gorm:"index" json:"branch_id,omitempty"`
	PictureURL   string       `gorm:"not null;default:''" json:"picture_url"`
	Active       bool         `gorm:"not null;default:true" json:"active"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}
