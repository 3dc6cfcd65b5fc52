package repository

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/civicworks/caseboard/internal/user/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, user *domain.User) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO users (id, username, email, password_hash, full_name, role, region_id, branch_id, picture_url, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.FullName,
		user.Role,
		nullableID(user.RegionID),
		nullableID(user.BranchID),
		user.PictureURL,
		user.Active,
		user.CreatedAt,
		user.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, user *domain.User) error {
	return db.WithContext(ctx).Exec(
		`UPDATE users SET email = ?, password_hash = ?, full_name = ?, role = ?, region_id = ?, branch_id = ?, picture_url = ?, active = ?, updated_at = ?
		 WHERE id = ?`,
		user.Email,
		user.PasswordHash,
		user.FullName,
		user.Role,
		nullableID(user.RegionID),
		nullableID(user.BranchID),
		user.PictureURL,
		user.Active,
		user.UpdatedAt,
		user.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.User, error) {
	var user domain.User
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM users WHERE id = ?`, id,
	).Scan(&user).Error
	if err != nil {
		return nil, err
	}
	if user.ID == 0 {
		return nil, nil
	}
	return &user, nil
}

func (r *repo) FindByUsername(ctx context.Context, db *gorm.DB, username string) (*domain.User, error) {
	var user domain.User
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM users WHERE LOWER(username) = ?`,
		strings.ToLower(username),
	).Scan(&user).Error
	if err != nil {
		return nil, err
	}
	if user.ID == 0 {
		return nil, nil
	}
	return &user, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]domain.User, error) {
	var users []domain.User
	err := db.WithContext(ctx).
		Model(&domain.User{}).
		Order("username asc").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// nullableID keeps zero snowflake IDs out of foreign key columns.
func nullableID(id snowflake.ID) interface{} {
	if id == 0 {
		return nil
	}
	return id
}
