package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const DefaultPort = "4003"

// Config is read once at startup and handed to whatever needs it.
type Config struct {
	GoEnv              string
	Port               string
	LogLevel           string
	DatabaseURL        string
	DBMaxOpenConns     int
	DBMaxIdleConns     int
	RedisAddress       string
	RedisPassword      string
	RedisDB            int
	StorageProvider    string
	UploadDir          string
	GCSBucket          string
	GCSCredentialsJSON string
	CORSAllowedOrigins []string
	SkipMigrations     bool
}

var ErrMissingDatabaseURL = errors.New("DATABASE_URL is required")

// Load reads .env (if any) and the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		GoEnv:              strings.TrimSpace(os.Getenv("GO_ENV")),
		Port:               stringFromEnv("PORT", DefaultPort),
		LogLevel:           stringFromEnv("LOG_LEVEL", "info"),
		DatabaseURL:        strings.TrimSpace(os.Getenv("DATABASE_URL")),
		DBMaxOpenConns:     intFromEnv("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:     intFromEnv("DB_MAX_IDLE_CONNS", 10),
		RedisAddress:       strings.TrimSpace(os.Getenv("REDIS_ADDRESS")),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		RedisDB:            intFromEnv("REDIS_DB", 0),
		StorageProvider:    strings.ToLower(stringFromEnv("STORAGE_PROVIDER", "local")),
		UploadDir:          stringFromEnv("UPLOAD_DIR", "uploads"),
		GCSBucket:          strings.TrimSpace(os.Getenv("GCS_BUCKET")),
		GCSCredentialsJSON: os.Getenv("GCS_CREDENTIALS_JSON"),
		CORSAllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		SkipMigrations:     strings.EqualFold(strings.TrimSpace(os.Getenv("SKIP_MIGRATIONS")), "true"),
	}
	if cfg.DatabaseURL == "" {
		return cfg, ErrMissingDatabaseURL
	}
	return cfg, nil
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.GoEnv, "production")
}

func stringFromEnv(key string, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func intFromEnv(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
