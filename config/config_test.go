package config

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestDialector_PicksDriverFromURL(t *testing.T) {
	cases := []struct {
		url     string
		dialect string
	}{
		{"postgres://inout:pw@localhost:5432/inout", DialectPostgres},
		{"postgresql://inout:pw@localhost/inout", DialectPostgres},
		{"sqlite:///tmp/inout.db", DialectSQLite},
		{"root:pw@tcp(127.0.0.1:3306)/inout", DialectMySQL},
		{"mysql://root:pw@tcp(127.0.0.1:3306)/inout", DialectMySQL},
	}
	for _, tc := range cases {
		_, dialect, err := Dialector(tc.url)
		if err != nil {
			t.Fatalf("Dialector(%q): %v", tc.url, err)
		}
		if dialect != tc.dialect {
			t.Fatalf("Dialector(%q) expected %s, got %s", tc.url, tc.dialect, dialect)
		}
	}

	if _, _, err := Dialector(""); !errors.Is(err, ErrMissingDatabaseURL) {
		t.Fatalf("expected ErrMissingDatabaseURL, got %v", err)
	}
	if _, _, err := Dialector("sqlite://"); err == nil {
		t.Fatalf("expected an error for an empty sqlite path")
	}
}

func TestWithSQLiteDefaults(t *testing.T) {
	got := withSQLiteDefaults("/tmp/a.db")
	if got != "/tmp/a.db?_busy_timeout=5000&_foreign_keys=1" {
		t.Fatalf("unexpected dsn %q", got)
	}
	got = withSQLiteDefaults("/tmp/a.db?_busy_timeout=100")
	if strings.Count(got, "_busy_timeout") != 1 || !strings.HasSuffix(got, "&_foreign_keys=1") {
		t.Fatalf("unexpected dsn %q", got)
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	if _, err := Load(); !errors.Is(err, ErrMissingDatabaseURL) {
		t.Fatalf("expected ErrMissingDatabaseURL, got %v", err)
	}

	t.Setenv("DATABASE_URL", "sqlite:///tmp/inout.db")
	t.Setenv("PORT", "")
	t.Setenv("REDIS_DB", "not-a-number")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:5173, https://inout.example.com ,")
	t.Setenv("SKIP_MIGRATIONS", "TRUE")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != DefaultPort || cfg.RedisDB != 0 || !cfg.SkipMigrations {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://inout.example.com" {
		t.Fatalf("unexpected origins %v", cfg.CORSAllowedOrigins)
	}
}

func TestGormLogger_WritesThroughLogrus(t *testing.T) {
	var buf bytes.Buffer
	out := logg.Out
	logg.SetOutput(&buf)
	t.Cleanup(func() { logg.SetOutput(out) })
	t.Setenv("GORM_LOG", "")

	initLog().Error(context.Background(), "insert failed: %s", "boom")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected one JSON log line, got %q: %v", buf.String(), err)
	}
	if entry["module"] != "gorm" || entry["level"] != "warning" {
		t.Fatalf("unexpected fields: %v", entry)
	}
	if msg, _ := entry["msg"].(string); !strings.Contains(msg, "insert failed: boom") {
		t.Fatalf("expected gorm message in %q", msg)
	}
}
