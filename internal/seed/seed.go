package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/civicworks/caseboard/internal/auth/password"
	"github.com/civicworks/caseboard/internal/casefile"
	userdomain "github.com/civicworks/caseboard/internal/user/domain"
	"gorm.io/gorm"
)

const (
	defaultAdminUsername = "admin"
	defaultAdminEmail    = "admin@caseboard.local"
	defaultAdminPassword = "changeme1"
	defaultAdminDisplay  = "Caseboard Admin"
)

// EnsureAdmin seeds the default admin account so a fresh install can
// be signed into without manual SQL. Existing accounts are left alone.
func EnsureAdmin(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user userdomain.User
		err := tx.WithContext(ctx).
			Where("username = ?", defaultAdminUsername).
			First(&user).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		hashed, err := password.Hash(defaultAdminPassword)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		user = userdomain.User{
			ID:           node.Generate(),
			Username:     defaultAdminUsername,
			Email:        defaultAdminEmail,
			PasswordHash: hashed,
			FullName:     defaultAdminDisplay,
			Role:         casefile.RoleAdmin,
			Active:       true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		return tx.WithContext(ctx).Create(&user).Error
	})
}
