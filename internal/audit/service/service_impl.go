package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/civicworks/caseboard/internal/audit/domain"
	"github.com/civicworks/caseboard/internal/identity"
	"github.com/civicworks/caseboard/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("audit.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Record(ctx context.Context, entry domain.Entry) {
	ident, ok := identity.FromContext(ctx)
	if !ok {
		return
	}

	metadata := datatypes.JSONMap{}
	for k, v := range entry.Metadata {
		metadata[k] = v
	}

	log := domain.AuditLog{
		ID:            s.genID.Generate(),
		ActorID:       ident.UserID,
		ActorUsername: ident.Username,
		Action:        entry.Action,
		ObjectType:    entry.ObjectType,
		ObjectID:      entry.ObjectID,
		Metadata:      metadata,
		IPAddress:     identity.IPAddressFromContext(ctx),
		UserAgent:     identity.UserAgentFromContext(ctx),
		RequestID:     identity.RequestIDFromContext(ctx),
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.repo.Insert(ctx, s.db, &log); err != nil {
		s.log.Warn("audit write failed",
			zap.String("action", entry.Action),
			zap.String("object_type", entry.ObjectType),
			zap.Error(err),
		)
	}
}

func (s *Service) List(ctx context.Context, filter domain.ListFilter, page pagination.Pagination) (domain.ListResponse, error) {
	page = page.Normalize()
	logs, total, err := s.repo.List(ctx, s.db, filter, page)
	if err != nil {
		return domain.ListResponse{}, err
	}

	return domain.ListResponse{
		PageInfo: pagination.BuildPageInfo(page, total),
		Logs:     logs,
	}, nil
}
