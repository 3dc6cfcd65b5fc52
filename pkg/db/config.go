package db

import "github.com/civicworks/caseboard/internal/config"

// Config carries the connection settings the storage layer needs,
// decoupled from the application env layer.
type Config struct {
	Type     string
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	// FilePath is the database file used by the sqlite backend.
	FilePath string

	MaxIdleConn     int
	MaxOpenConn     int
	ConnMaxLifetime int // seconds
	ConnMaxIdleTime int // seconds
}

// NewConfig maps the application config onto storage settings.
func NewConfig(cfg config.Config) Config {
	return Config{
		Type:            cfg.DBType,
		Host:            cfg.DBHost,
		Port:            cfg.DBPort,
		Name:            cfg.DBName,
		User:            cfg.DBUser,
		Password:        cfg.DBPassword,
		SSLMode:         cfg.DBSSLMode,
		FilePath:        "caseboard.db",
		MaxIdleConn:     cfg.DBMaxIdleConn,
		MaxOpenConn:     cfg.DBMaxOpenConn,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
	}
}
