package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Region struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Code      string       `gorm:"not null;uniqueIndex" json:"code"`
	Name      string       `gorm:"not null" json:"name"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

type Branch struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	RegionID  snowflake.ID `gorm:"not null;index" json:"region_id"`
	Code      string       `gorm:"not null;uniqueIndex" json:"code"`
	Name      string       `gorm:"not null" json:"name"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}
