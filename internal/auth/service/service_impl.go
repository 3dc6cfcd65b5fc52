package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/civicworks/caseboard/internal/auth/domain"
	"github.com/civicworks/caseboard/internal/auth/password"
	"github.com/civicworks/caseboard/internal/clock"
	"github.com/civicworks/caseboard/internal/config"
	"github.com/civicworks/caseboard/internal/identity"
	userdomain "github.com/civicworks/caseboard/internal/user/domain"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	tokenKindAccess  = "access"
	tokenKindRefresh = "refresh"
)

type tokenClaims struct {
	jwt.RegisteredClaims
	Kind     string `json:"kind"`
	Username string `json:"username"`
	Role     string `json:"role"`
	RegionID string `json:"region_id,omitempty"`
}

type Params struct {
	fx.In

	Cfg   config.Config
	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	Users userdomain.Repository
}

type Service struct {
	cfg   config.Config
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	users userdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		cfg:   p.Cfg,
		db:    p.DB,
		log:   p.Log.Named("auth.service"),
		clock: p.Clock,
		users: p.Users,
	}
}

func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error) {
	username := strings.ToLower(strings.TrimSpace(req.Username))
	if username == "" || req.Password == "" {
		return domain.LoginResponse{}, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByUsername(ctx, s.db, username)
	if err != nil {
		return domain.LoginResponse{}, err
	}
	if user == nil || !password.Verify(req.Password, user.PasswordHash) {
		return domain.LoginResponse{}, domain.ErrInvalidCredentials
	}
	if !user.Active {
		return domain.LoginResponse{}, domain.ErrUserDisabled
	}

	pair, err := s.issueTokens(user)
	if err != nil {
		return domain.LoginResponse{}, err
	}

	s.log.Info("user signed in",
		zap.String("username", user.Username),
		zap.String("role", user.Role),
	)
	return domain.LoginResponse{TokenPair: pair, User: *user}, nil
}

func (s *Service) Refresh(ctx context.Context, req domain.RefreshRequest) (domain.LoginResponse, error) {
	claims, err := s.parse(req.RefreshToken, tokenKindRefresh)
	if err != nil {
		return domain.LoginResponse{}, err
	}

	id, err := identity.ParseUserID(claims.Subject)
	if err != nil {
		return domain.LoginResponse{}, domain.ErrInvalidToken
	}

	user, err := s.users.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.LoginResponse{}, err
	}
	if user == nil {
		return domain.LoginResponse{}, domain.ErrInvalidToken
	}
	if !user.Active {
		return domain.LoginResponse{}, domain.ErrUserDisabled
	}

	pair, err := s.issueTokens(user)
	if err != nil {
		return domain.LoginResponse{}, err
	}
	return domain.LoginResponse{TokenPair: pair, User: *user}, nil
}

func (s *Service) ChangePassword(ctx context.Context, req domain.ChangePasswordRequest) error {
	ident, ok := identity.FromContext(ctx)
	if !ok {
		return domain.ErrInvalidToken
	}
	if len(req.NewPassword) < 8 {
		return domain.ErrWeakPassword
	}

	user, err := s.users.FindByID(ctx, s.db, ident.UserID)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrInvalidToken
	}
	if !password.Verify(req.CurrentPassword, user.PasswordHash) {
		return domain.ErrInvalidCredentials
	}

	hashed, err := password.Hash(req.NewPassword)
	if err != nil {
		return err
	}

	user.PasswordHash = hashed
	user.UpdatedAt = s.clock.Now().UTC()
	return s.users.Update(ctx, s.db, user)
}

func (s *Service) Verify(_ context.Context, accessToken string) (domain.Claims, error) {
	claims, err := s.parse(accessToken, tokenKindAccess)
	if err != nil {
		return domain.Claims{}, err
	}

	return domain.Claims{
		UserID:   claims.Subject,
		Username: claims.Username,
		Role:     claims.Role,
		RegionID: claims.RegionID,
	}, nil
}

func (s *Service) issueTokens(user *userdomain.User) (domain.TokenPair, error) {
	accessTTL := time.Duration(s.cfg.AccessTokenTTL) * time.Minute
	refreshTTL := time.Duration(s.cfg.RefreshTokenTTL) * time.Minute

	access, err := s.sign(user, tokenKindAccess, accessTTL)
	if err != nil {
		return domain.TokenPair{}, err
	}
	refresh, err := s.sign(user, tokenKindRefresh, refreshTTL)
	if err != nil {
		return domain.TokenPair{}, err
	}

	return domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(accessTTL.Seconds()),
	}, nil
}

func (s *Service) sign(user *userdomain.User, kind string, ttl time.Duration) (string, error) {
	now := s.clock.Now().UTC()
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.AppName,
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Kind:     kind,
		Username: user.Username,
		Role:     user.Role,
	}
	if user.RegionID != 0 {
		claims.RegionID = user.RegionID.String()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.AuthJWTSecret))
}

func (s *Service) parse(raw, kind string) (*tokenClaims, error) {
	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrInvalidToken
		}
		return []byte(s.cfg.AuthJWTSecret), nil
	}, jwt.WithTimeFunc(func() time.Time { return s.clock.Now() }))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrInvalidToken
	}
	if !token.Valid || claims.Kind != kind {
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}
