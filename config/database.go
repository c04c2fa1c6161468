package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

const (
	DialectMySQL    = "mysql"
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

// Dialector picks the gorm driver from the shape of DATABASE_URL:
// postgres:// URLs, sqlite://path, or a MySQL DSN (optionally prefixed mysql://).
func Dialector(databaseURL string) (gorm.Dialector, string, error) {
	dsn := strings.TrimSpace(databaseURL)
	switch {
	case dsn == "":
		return nil, "", ErrMissingDatabaseURL
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return postgres.Open(dsn), DialectPostgres, nil
	case strings.HasPrefix(dsn, "sqlite://"):
		path := strings.TrimPrefix(dsn, "sqlite://")
		if path == "" {
			return nil, "", fmt.Errorf("sqlite database path is empty")
		}
		return sqlite.Open(withSQLiteDefaults(path)), DialectSQLite, nil
	default:
		parsed, err := gomysql.ParseDSN(strings.TrimPrefix(dsn, "mysql://"))
		if err != nil {
			return nil, "", fmt.Errorf("invalid mysql dsn: %w", err)
		}
		parsed.ParseTime = true
		// RowsAffected counts matched rows, not changed ones
		parsed.ClientFoundRows = true
		return mysql.Open(parsed.FormatDSN()), DialectMySQL, nil
	}
}

func withSQLiteDefaults(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	if !strings.Contains(path, "_busy_timeout") {
		path += sep + "_busy_timeout=5000"
		sep = "&"
	}
	if !strings.Contains(path, "_foreign_keys") {
		path += sep + "_foreign_keys=1"
	}
	return path
}

// OpenDatabase opens one connection pool without retrying.
func OpenDatabase(databaseURL string, maxOpen int, maxIdle int) (*gorm.DB, error) {
	dialector, dialect, err := Dialector(databaseURL)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(dialector, initConfig())
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if dialect == DialectSQLite {
		// sqlite allows a single writer
		maxOpen, maxIdle = 1, 1
	}
	if maxOpen > 0 {
		sqlDB.SetMaxOpenConns(maxOpen)
	}
	if maxIdle >= 0 {
		sqlDB.SetMaxIdleConns(maxIdle)
	}
	if dialect != DialectSQLite {
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
		sqlDB.SetConnMaxIdleTime(time.Minute)
	}

	if pluginErr := db.Use(otelgorm.NewPlugin()); pluginErr != nil {
		logg.WithError(pluginErr).Warn("db connected but failed to install otelgorm plugin")
	}
	return db, nil
}

// ConnectDatabaseWithRetry keeps trying with exponential backoff until the
// database answers or ctx is cancelled.
func ConnectDatabaseWithRetry(ctx context.Context, cfg Config) (*gorm.DB, error) {
	var attempt int
	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		attempt++
		db, err := OpenDatabase(cfg.DatabaseURL, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns)
		if err == nil {
			logg.WithField("attempt", attempt).Info("connected to database")
			return db, nil
		}

		sleep := time.Second * time.Duration(1<<min(attempt, 5))
		if sleep > 30*time.Second {
			sleep = 30 * time.Second
		}
		logg.WithFields(logrus.Fields{"attempt": attempt, "retry_in": sleep.String()}).WithError(err).Warn("failed to connect database")
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("connect database: %w", ctx.Err())
		case <-time.After(sleep):
		}
	}
}

func initConfig() *gorm.Config {
	return &gorm.Config{
		Logger:         initLog(),
		NamingStrategy: schema.NamingStrategy{},
		TranslateError: true,
	}
}

// gormWriter sends gorm's logger output to the shared logrus logger.
type gormWriter struct {
	logger *logrus.Logger
	level  logrus.Level
}

func (w gormWriter) Printf(format string, args ...interface{}) {
	w.logger.WithField("module", "gorm").Logf(w.level, format, args...)
}

func initLog() logger.Interface {
	level := logger.Error
	writer := gormWriter{logger: logg, level: logrus.WarnLevel}
	if strings.EqualFold(os.Getenv("GORM_LOG"), "info") {
		level = logger.Info
		writer.level = logrus.InfoLevel
	}
	return logger.New(
		writer,
		logger.Config{
			Colorful:                  false,
			LogLevel:                  level,
			SlowThreshold:             time.Second,
			IgnoreRecordNotFoundError: true,
		},
	)
}
