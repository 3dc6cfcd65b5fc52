package domain

import (
	"context"
	"errors"

	userdomain "github.com/civicworks/caseboard/internal/user/domain"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// TokenPair carries the bearer tokens issued to a signed-in user.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

type LoginResponse struct {
	TokenPair
	User userdomain.User `json:"user"`
}

type Service interface {
	Login(ctx context.Context, req LoginRequest) (LoginResponse, error)
	Refresh(ctx context.Context, req RefreshRequest) (LoginResponse, error)
	ChangePassword(ctx context.Context, req ChangePasswordRequest) error

	// Verify parses and validates an access token, returning the claims
	// the HTTP middleware stamps onto the request context.
	Verify(ctx context.Context, accessToken string) (Claims, error)
}

// Claims is the identity material embedded in an access token.
type Claims struct {
	UserID   string
	Username string
	Role     string
	RegionID string
}

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidToken       = errors.New("invalid_token")
	ErrTokenExpired       = errors.New("token_expired")
	ErrUserDisabled       = errors.New("user_disabled")
	ErrWeakPassword       = errors.New("weak_password")
)
