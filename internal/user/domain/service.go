package domain

import (
	"context"
	"errors"
	"io"
)

type CreateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
	RegionID string `json:"region_id"`
	BranchID string `json:"branch_id"`
}

type UpdateUserRequest struct {
	ID       string `json:"-"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
	RegionID string `json:"region_id"`
	BranchID string `json:"branch_id"`
	Active   *bool  `json:"active"`
}

type UpdateProfileRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

type Service interface {
	Create(ctx context.Context, req CreateUserRequest) (User, error)
	Update(ctx context.Context, req UpdateUserRequest) (User, error)
	List(ctx context.Context) ([]User, error)
	GetByID(ctx context.Context, id string) (User, error)

	Profile(ctx context.Context) (User, error)
	UpdateProfile(ctx context.Context, req UpdateProfileRequest) (User, error)
	UploadPicture(ctx context.Context, filename string, content io.Reader) (string, error)
}

var (
	ErrInvalidUsername = errors.New("invalid_username")
	ErrInvalidEmail    = errors.New("invalid_email")
	ErrInvalidPassword = errors.New("invalid_password")
	ErrInvalidRole     = errors.New("invalid_role")
	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidPicture  = errors.New("invalid_picture")
	ErrUserExists      = errors.New("user_exists")
	ErrNotFound        = errors.New("not_found")
)
