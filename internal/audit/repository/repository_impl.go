package repository

import (
	"context"

	"github.com/civicworks/caseboard/internal/audit/domain"
	"github.com/civicworks/caseboard/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, log *domain.AuditLog) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO audit_logs (id, actor_id, actor_username, action, object_type, object_id, metadata, ip_address, user_agent, request_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		log.ID,
		log.ActorID,
		log.ActorUsername,
		log.Action,
		log.ObjectType,
		log.ObjectID,
		log.Metadata,
		log.IPAddress,
		log.UserAgent,
		log.RequestID,
		log.CreatedAt,
	).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter, page pagination.Pagination) ([]domain.AuditLog, int64, error) {
	stmt := db.WithContext(ctx).Model(&domain.AuditLog{})
	if filter.ActorID != "" {
		stmt = stmt.Where("actor_id = ?", filter.ActorID)
	}
	if filter.ObjectType != "" {
		stmt = stmt.Where("object_type = ?", filter.ObjectType)
	}
	if filter.Action != "" {
		stmt = stmt.Where("action = ?", filter.Action)
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []domain.AuditLog
	err := page.Apply(stmt).
		Order("created_at desc, id desc").
		Find(&logs).Error
	if err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}
