package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/civicworks/caseboard/pkg/db/pagination"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditLog records one mutating operation: who did what to which object.
type AuditLog struct {
	ID            snowflake.ID      `gorm:"primaryKey" json:"id"`
	ActorID       snowflake.ID      `gorm:"not null;index" json:"actor_id"`
	ActorUsername string            `gorm:"not null;default:''" json:"actor_username"`
	Action        string            `gorm:"not null" json:"action"`
	ObjectType    string            `gorm:"not null" json:"object_type"`
	ObjectID      string            `gorm:"not null;default:''" json:"object_id"`
	Metadata      datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	IPAddress     string            `gorm:"not null;default:''" json:"ip_address"`
	UserAgent     string            `gorm:"not null;default:''" json:"user_agent"`
	RequestID     string            `gorm:"not null;default:''" json:"request_id"`
	CreatedAt     time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP;index" json:"created_at"`
}

type Entry struct {
	Action     string
	ObjectType string
	ObjectID   string
	Metadata   map[string]interface{}
}

type ListFilter struct {
	ActorID    string
	ObjectType string
	Action     string
}

type ListResponse struct {
	pagination.PageInfo
	Logs []AuditLog `json:"logs"`
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, log *AuditLog) error
	List(ctx context.Context, db *gorm.DB, filter ListFilter, page pagination.Pagination) ([]AuditLog, int64, error)
}

type Service interface {
	// Record writes an audit entry for the principal on ctx. Failures
	// are logged and swallowed so auditing never fails the operation.
	Record(ctx context.Context, entry Entry)
	List(ctx context.Context, filter ListFilter, page pagination.Pagination) (ListResponse, error)
}

var ErrInvalidFilter = errors.New("invalid_filter")
