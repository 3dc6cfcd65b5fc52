package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/civicworks/caseboard/internal/auth/domain"
	"github.com/civicworks/caseboard/internal/auth/password"
	"github.com/civicworks/caseboard/internal/casefile"
	"github.com/civicworks/caseboard/internal/clock"
	"github.com/civicworks/caseboard/internal/config"
	"github.com/civicworks/caseboard/internal/identity"
	userdomain "github.com/civicworks/caseboard/internal/user/domain"
	userrepo "github.com/civicworks/caseboard/internal/user/repository"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newAuthService(t *testing.T) (*Service, *gorm.DB, *clock.FakeClock) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&userdomain.User{}))

	fc := clock.NewFakeClock(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	cfg := config.Config{
		AppName:         "caseboard-test",
		AuthJWTSecret:   "test-secret",
		AccessTokenTTL:  30,
		RefreshTokenTTL: 60,
	}

	svc := New(Params{
		Cfg:   cfg,
		DB:    db,
		Log:   zap.NewNop(),
		Clock: fc,
		Users: userrepo.Provide(),
	}).(*Service)
	return svc, db, fc
}

func seedUser(t *testing.T, db *gorm.DB, username, plain string, active bool) *userdomain.User {
	t.Helper()

	hash, err := password.Hash(plain)
	require.NoError(t, err)

	user := &userdomain.User{
		ID:           snowflake.ID(100),
		Username:     username,
		Email:        username + "@example.org",
		PasswordHash: hash,
		FullName:     "Test User",
		Role:         casefile.RoleManager,
		RegionID:     snowflake.ID(7),
		Active:       active,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestLogin(t *testing.T) {
	svc, db, _ := newAuthService(t)
	seedUser(t, db, "amina", "s3cret-pass", true)

	t.Run("success", func(t *testing.T) {
		resp, err := svc.Login(context.Background(), domain.LoginRequest{
			Username: "  Amina ",
			Password: "s3cret-pass",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.AccessToken)
		assert.NotEmpty(t, resp.RefreshToken)
		assert.EqualValues(t, 30*60, resp.ExpiresIn)
		assert.Equal(t, "amina", resp.User.Username)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(context.Background(), domain.LoginRequest{
			Username: "amina",
			Password: "wrong",
		})
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.Login(context.Background(), domain.LoginRequest{
			Username: "nobody",
			Password: "s3cret-pass",
		})
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})
}

func TestLoginDisabledUser(t *testing.T) {
	svc, db, _ := newAuthService(t)
	seedUser(t, db, "parked", "s3cret-pass", false)

	_, err := svc.Login(context.Background(), domain.LoginRequest{
		Username: "parked",
		Password: "s3cret-pass",
	})
	assert.ErrorIs(t, err, domain.ErrUserDisabled)
}

func TestVerifyAccessToken(t *testing.T) {
	svc, db, fc := newAuthService(t)
	user := seedUser(t, db, "amina", "s3cret-pass", true)

	resp, err := svc.Login(context.Background(), domain.LoginRequest{
		Username: "amina",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)

	claims, err := svc.Verify(context.Background(), resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.UserID)
	assert.Equal(t, "amina", claims.Username)
	assert.Equal(t, casefile.RoleManager, claims.Role)
	assert.Equal(t, user.RegionID.String(), claims.RegionID)

	// a refresh token never passes access verification
	_, err = svc.Verify(context.Background(), resp.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	fc.Advance(31 * time.Minute)
	_, err = svc.Verify(context.Background(), resp.AccessToken)
	assert.ErrorIs(t, err, domain.ErrTokenExpired)
}

func TestRefreshRoundTrip(t *testing.T) {
	svc, db, fc := newAuthService(t)
	seedUser(t, db, "amina", "s3cret-pass", true)

	resp, err := svc.Login(context.Background(), domain.LoginRequest{
		Username: "amina",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)

	// past the access TTL but inside the refresh TTL
	fc.Advance(45 * time.Minute)

	renewed, err := svc.Refresh(context.Background(), domain.RefreshRequest{
		RefreshToken: resp.RefreshToken,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, renewed.AccessToken)

	_, err = svc.Verify(context.Background(), renewed.AccessToken)
	assert.NoError(t, err)

	// an access token cannot stand in for a refresh token
	_, err = svc.Refresh(context.Background(), domain.RefreshRequest{
		RefreshToken: resp.AccessToken,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	fc.Advance(30 * time.Minute)
	_, err = svc.Refresh(context.Background(), domain.RefreshRequest{
		RefreshToken: resp.RefreshToken,
	})
	assert.ErrorIs(t, err, domain.ErrTokenExpired)
}

func TestChangePassword(t *testing.T) {
	svc, db, _ := newAuthService(t)
	user := seedUser(t, db, "amina", "s3cret-pass", true)

	ctx := identity.WithIdentity(context.Background(), identity.Identity{
		UserID: user.ID,
		Role:   user.Role,
	})

	err := svc.ChangePassword(ctx, domain.ChangePasswordRequest{
		CurrentPassword: "s3cret-pass",
		NewPassword:     "short",
	})
	assert.ErrorIs(t, err, domain.ErrWeakPassword)

	err = svc.ChangePassword(ctx, domain.ChangePasswordRequest{
		CurrentPassword: "not-the-one",
		NewPassword:     "a-new-long-pass",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	err = svc.ChangePassword(ctx, domain.ChangePasswordRequest{
		CurrentPassword: "s3cret-pass",
		NewPassword:     "a-new-long-pass",
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), domain.LoginRequest{
		Username: "amina",
		Password: "a-new-long-pass",
	})
	assert.NoError(t, err)
}
