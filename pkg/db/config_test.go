package db

import (
	"testing"

	"github.com/civicworks/caseboard/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigMapsAppSettings(t *testing.T) {
	cfg := NewConfig(config.Config{
		DBType:            "postgres",
		DBHost:            "db.internal",
		DBPort:            "5433",
		DBName:            "caseboard",
		DBUser:            "svc",
		DBPassword:        "hunter2",
		DBSSLMode:         "require",
		DBMaxIdleConn:     5,
		DBMaxOpenConn:     25,
		DBConnMaxLifetime: 1800,
		DBConnMaxIdleTime: 300,
	})

	assert.Equal(t, "postgres", cfg.Type)
	assert.Equal(t, "db.internal", cfg.Host)
	assert.Equal(t, "5433", cfg.Port)
	assert.Equal(t, "require", cfg.SSLMode)
	assert.Equal(t, 25, cfg.MaxOpenConn)
	assert.Equal(t, "caseboard.db", cfg.FilePath)
}

func TestDialectSelection(t *testing.T) {
	for _, dbType := range []string{"postgres", "mysql", "sqlite"} {
		d, err := Dialect(Config{Type: dbType, FilePath: "caseboard.db"})
		require.NoError(t, err, dbType)
		assert.Equal(t, dbType, d.Name())
	}

	_, err := Dialect(Config{Type: "oracle"})
	assert.Error(t, err)
}
