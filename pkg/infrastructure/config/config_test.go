package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"HTTP_ADDR", "DATABASE_URL", "SCENARIO_DIR", "DB_MAX_CONNS", "REQUEST_TIMEOUT_SECONDS"} {
		t.Setenv(k, "")
	}

	cfg := Load(filepath.Join(t.TempDir(), "missing.env"))

	if cfg.HTTPAddr != ":8080" {
		t.Errorf("expected :8080, got %s", cfg.HTTPAddr)
	}
	if cfg.UsesDatabase() {
		t.Error("expected scenario mode without DATABASE_URL")
	}
	if cfg.ScenarioDir != "scenario" {
		t.Errorf("expected scenario dir default, got %s", cfg.ScenarioDir)
	}
	if cfg.DBMaxConns != 10 {
		t.Errorf("expected 10 max conns, got %d", cfg.DBMaxConns)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("expected 30s timeout, got %v", cfg.RequestTimeout)
	}
}

func TestLoad_EnvFileAndOverrides(t *testing.T) {
	for _, k := range []string{"HTTP_ADDR", "DATABASE_URL", "SCENARIO_DIR", "DB_MAX_CONNS", "REQUEST_TIMEOUT_SECONDS"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	t.Setenv("DB_MAX_CONNS", "not-a-number")

	file := filepath.Join(t.TempDir(), "test.env")
	content := "HTTP_ADDR=:9090\nDATABASE_URL=postgres://localhost/quotes\nSCENARIO_DIR=/data/quotes\n"
	if err := os.WriteFile(file, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}

	cfg := Load(file)

	if cfg.HTTPAddr != ":9090" {
		t.Errorf("expected :9090 from env file, got %s", cfg.HTTPAddr)
	}
	if !cfg.UsesDatabase() {
		t.Error("expected database mode")
	}
	if cfg.ScenarioDir != "/data/quotes" {
		t.Errorf("expected /data/quotes, got %s", cfg.ScenarioDir)
	}
	if cfg.DBMaxConns != 10 {
		t.Errorf("expected fallback 10 for invalid DB_MAX_CONNS, got %d", cfg.DBMaxConns)
	}
}
