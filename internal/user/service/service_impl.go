package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/civicworks/caseboard/internal/auth/password"
	"github.com/civicworks/caseboard/internal/casefile"
	"github.com/civicworks/caseboard/internal/config"
	"github.com/civicworks/caseboard/internal/identity"
	"github.com/civicworks/caseboard/internal/user/domain"
	"github.com/oklog/ulid/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var allowedPictureExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
}

const maxPictureBytes = 5 << 20

type Params struct {
	fx.In

	Cfg   config.Config
	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	cfg   config.Config
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		cfg:   p.Cfg,
		db:    p.DB,
		log:   p.Log.Named("user.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateUserRequest) (domain.User, error) {
	username := strings.ToLower(strings.TrimSpace(req.Username))
	if username == "" {
		return domain.User{}, domain.ErrInvalidUsername
	}
	email := strings.TrimSpace(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return domain.User{}, domain.ErrInvalidEmail
	}
	if len(req.Password) < 8 {
		return domain.User{}, domain.ErrInvalidPassword
	}
	role := strings.ToUpper(strings.TrimSpace(req.Role))
	if !casefile.ValidRole(role) {
		return domain.User{}, domain.ErrInvalidRole
	}

	existing, err := s.repo.FindByUsername(ctx, s.db, username)
	if err != nil {
		return domain.User{}, err
	}
	if existing != nil {
		return domain.User{}, domain.ErrUserExists
	}

	hashed, err := password.Hash(req.Password)
	if err != nil {
		return domain.User{}, err
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:           s.genID.Generate(),
		Username:     username,
		Email:        email,
		PasswordHash: hashed,
		FullName:     strings.TrimSpace(req.FullName),
		Role:         role,
		RegionID:     parseOptionalID(req.RegionID),
		BranchID:     parseOptionalID(req.BranchID),
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Insert(ctx, s.db, &user); err != nil {
		return domain.User{}, err
	}

	s.log.Info("user created",
		zap.String("username", user.Username),
		zap.String("role", user.Role),
	)
	return user, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateUserRequest) (domain.User, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil || id == 0 {
		return domain.User{}, domain.ErrInvalidID
	}

	user, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.User{}, err
	}
	if user == nil {
		return domain.User{}, domain.ErrNotFound
	}

	if name := strings.TrimSpace(req.FullName); name != "" {
		user.FullName = name
	}
	if role := strings.ToUpper(strings.TrimSpace(req.Role)); role != "" {
		if !casefile.ValidRole(role) {
			return domain.User{}, domain.ErrInvalidRole
		}
		user.Role = role
	}
	if req.RegionID != "" {
		user.RegionID = parseOptionalID(req.RegionID)
	}
	if req.BranchID != "" {
		user.BranchID = parseOptionalID(req.BranchID)
	}
	if req.Active != nil {
		user.Active = *req.Active
	}

	user.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, user); err != nil {
		return domain.User{}, err
	}
	return *user, nil
}

func (s *Service) List(ctx context.Context) ([]domain.User, error) {
	return s.repo.List(ctx, s.db)
}

func (s *Service) GetByID(ctx context.Context, rawID string) (domain.User, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(rawID))
	if err != nil || id == 0 {
		return domain.User{}, domain.ErrInvalidID
	}

	user, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.User{}, err
	}
	if user == nil {
		return domain.User{}, domain.ErrNotFound
	}
	return *user, nil
}

func (s *Service) Profile(ctx context.Context) (domain.User, error) {
	ident, ok := identity.FromContext(ctx)
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return s.GetByID(ctx, ident.UserID.String())
}

func (s *Service) UpdateProfile(ctx context.Context, req domain.UpdateProfileRequest) (domain.User, error) {
	ident, ok := identity.FromContext(ctx)
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}

	user, err := s.repo.FindByID(ctx, s.db, ident.UserID)
	if err != nil {
		return domain.User{}, err
	}
	if user == nil {
		return domain.User{}, domain.ErrNotFound
	}

	if name := strings.TrimSpace(req.FullName); name != "" {
		user.FullName = name
	}
	if email := strings.TrimSpace(req.Email); email != "" {
		if !strings.Contains(email, "@") {
			return domain.User{}, domain.ErrInvalidEmail
		}
		user.Email = email
	}

	user.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, user); err != nil {
		return domain.User{}, err
	}
	return *user, nil
}

// UploadPicture stores a profile picture under the storage directory
// and records its public URL on the caller's user row.
func (s *Service) UploadPicture(ctx context.Context, filename string, content io.Reader) (string, error) {
	ident, ok := identity.FromContext(ctx)
	if !ok {
		return "", domain.ErrNotFound
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedPictureExts[ext] {
		return "", domain.ErrInvalidPicture
	}

	user, err := s.repo.FindByID(ctx, s.db, ident.UserID)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", domain.ErrNotFound
	}

	dir := filepath.Join(s.cfg.StorageDir, "profiles")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create storage dir: %w", err)
	}

	name := ulid.Make().String() + ext
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create picture file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, io.LimitReader(content, maxPictureBytes)); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write picture: %w", err)
	}

	publicURL := strings.TrimRight(s.cfg.StoragePublicURL, "/") + "/profiles/" + name
	user.PictureURL = publicURL
	user.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, user); err != nil {
		return "", err
	}

	return publicURL, nil
}

func parseOptionalID(value string) snowflake.ID {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return id
}
