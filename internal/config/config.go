package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string

	AuthJWTSecret   string
	AccessTokenTTL  int // minutes
	RefreshTokenTTL int // minutes

	OTLPEndpoint string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	HTTPAddr string

	// BootstrapAdmin seeds a default admin user on startup so a fresh
	// deployment is usable without manual SQL.
	BootstrapAdmin bool

	StorageDir       string
	StoragePublicURL string

	RateLimit RateLimitConfig
}

type RateLimitConfig struct {
	Enabled       bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	UploadRate    float64
	UploadBurst   int
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		AppName:         getenv("APP_SERVICE", "caseboard"),
		AppVersion:      getenv("APP_VERSION", "0.1.0"),
		Environment:     getenv("ENVIRONMENT", "development"),
		AuthJWTSecret:   strings.TrimSpace(getenv("AUTH_JWT_SECRET", "")),
		AccessTokenTTL:  getenvInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 30),
		RefreshTokenTTL: getenvInt("AUTH_REFRESH_TOKEN_TTL_MINUTES", 60*24*7),
		OTLPEndpoint:    getenv("OTLP_ENDPOINT", "localhost:4317"),

		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "caseboard"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", "postgres"),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 25),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 1800),
		DBConnMaxIdleTime: getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 300),

		HTTPAddr: getenv("HTTP_ADDR", ":8080"),

		BootstrapAdmin: getenvBool("BOOTSTRAP_ADMIN", true),

		StorageDir:       getenv("STORAGE_DIR", "./storage"),
		StoragePublicURL: getenv("STORAGE_PUBLIC_URL", "/storage"),

		RateLimit: RateLimitConfig{
			Enabled:       getenvBool("RATE_LIMIT_ENABLED", false),
			RedisAddr:     strings.TrimSpace(getenv("RATE_LIMIT_REDIS_ADDR", "")),
			RedisPassword: getenv("RATE_LIMIT_REDIS_PASSWORD", ""),
			RedisDB:       getenvInt("RATE_LIMIT_REDIS_DB", 0),
			UploadRate:    getenvFloat("RATE_LIMIT_UPLOAD_RATE", 1),
			UploadBurst:   getenvInt("RATE_LIMIT_UPLOAD_BURST", 5),
		},
	}

	return cfg
}

// Module wires config for fx consumers.
var Module = fx.Module("config",
	fx.Provide(Load),
	fx.Provide(NewImportPolicyHolder),
)

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}
